package factus

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Outcome son los datos reconciliables extraídos de una respuesta exitosa del
// proveedor: identificador externo y artefactos (hash firmado, QR, URLs).
type Outcome struct {
	ExternalID string
	CUFE       string
	QRData     string
	PublicURL  string
	PDFURL     string
	XMLURL     string
}

// nestedKey devuelve la llave del objeto anidado bajo "data" según el tipo de
// documento ("bill" para facturas, "credit_note" para notas crédito).
func nestedKey(kind string) string {
	if strings.EqualFold(kind, "credit_note") {
		return "credit_note"
	}
	if strings.EqualFold(kind, "debit_note") {
		return "debit_note"
	}
	return "bill"
}

// ExtractOutcome aplica las reglas de extracción, en orden estricto, sobre el
// cuerpo de una respuesta 2xx. La respuesta del proveedor no tiene una forma
// estable (a veces plana, a veces anidada bajo data.<tipo>), por lo que cada
// campo se resuelve con una tabla ordenada de rutas: la primera que produce un
// valor no vacío gana.
//
// Prioridad del identificador externo:
//
//	number → data.<tipo>.number → data.<tipo>.id → id → document_id → uuid
//
// Un ExternalID vacío con HTTP exitoso es un fallo parcial: sin identificador
// no hay forma de consultar estado ni descargar PDF/XML después.
func ExtractOutcome(body []byte, kind string) Outcome {
	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return Outcome{}
	}
	k := nestedKey(kind)

	return Outcome{
		ExternalID: lookupFirst(doc, [][]string{
			{"number"},
			{"data", k, "number"},
			{"data", k, "id"},
			{"id"},
			{"document_id"},
			{"uuid"},
		}),
		CUFE: lookupFirst(doc, [][]string{
			{"data", k, "cufe"},
			{"data", k, "cude"},
			{"cufe"},
			{"cude"},
		}),
		QRData: lookupFirst(doc, [][]string{
			{"data", k, "qr"},
			{"data", k, "qr_data"},
			{"qr"},
			{"qr_data"},
		}),
		PublicURL: lookupFirst(doc, [][]string{
			{"data", k, "public_url"},
			{"public_url"},
		}),
		PDFURL: lookupFirst(doc, [][]string{
			{"data", k, "pdf_download_url"},
			{"data", k, "pdf_url"},
			{"pdf_download_url"},
			{"pdf_url"},
		}),
		XMLURL: lookupFirst(doc, [][]string{
			{"data", k, "xml_download_url"},
			{"data", k, "xml_url"},
			{"xml_download_url"},
			{"xml_url"},
		}),
	}
}

// lookupFirst recorre las rutas en orden y devuelve el primer valor no vacío,
// coercionado a string y sin espacios alrededor.
func lookupFirst(doc map[string]any, paths [][]string) string {
	for _, path := range paths {
		if v := lookupPath(doc, path); v != "" {
			return v
		}
	}
	return ""
}

// lookupPath navega objetos anidados siguiendo la ruta de llaves.
func lookupPath(doc map[string]any, path []string) string {
	var current any = doc
	for _, key := range path {
		m, ok := current.(map[string]any)
		if !ok {
			return ""
		}
		current, ok = m[key]
		if !ok {
			return ""
		}
	}
	return coerceString(current)
}

// coerceString convierte strings, números y booleanos JSON a texto plano;
// objetos y arrays se descartan (no son identificadores usables).
func coerceString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
