// Package factus contiene las tablas de códigos fijas del proveedor de
// facturación electrónica (Factus / Halltec, Colombia): tipo de documento,
// concepto de corrección, tipo de identificación, régimen tributario, formas
// y métodos de pago, unidades de medida y municipios.
//
// Todas las funciones son puras y totales: cada tabla tiene un valor por
// defecto explícito y ninguna búsqueda retorna error.
package factus

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Códigos de tipo de documento del proveedor.
const (
	DocumentCodeInvoice    = "01"
	DocumentCodeExport     = "02"
	DocumentCodeCreditNote = "91"
	DocumentCodeDebitNote  = "92"
)

// DocumentCode traduce el tipo interno de documento al código del proveedor.
// Tipos desconocidos se tratan como factura de venta.
func DocumentCode(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "credit_note":
		return DocumentCodeCreditNote
	case "debit_note":
		return DocumentCodeDebitNote
	case "export":
		return DocumentCodeExport
	default:
		return DocumentCodeInvoice
	}
}

// ── Concepto de corrección (notas crédito) ────────────────────────────────────

// Conceptos de corrección DIAN para notas crédito.
const (
	CorrectionReturn     = 1 // Devolución parcial o total de bienes/servicios
	CorrectionAnnulment  = 2 // Anulación de la factura
	CorrectionRebate     = 3 // Rebaja o descuento parcial o total
	CorrectionPriceAdj   = 4 // Ajuste de precio
	CorrectionOther      = 5 // Otros
	correctionConceptMin = 1
	correctionConceptMax = 5
)

// correctionSynonyms mapea sinónimos (ya normalizados: minúsculas, sin tildes)
// al código numérico del concepto.
var correctionSynonyms = map[string]int{
	"devolucion":         CorrectionReturn,
	"devolucion parcial": CorrectionReturn,
	"devolucion total":   CorrectionReturn,
	"anulacion":          CorrectionAnnulment,
	"anulacion factura":  CorrectionAnnulment,
	"rebaja":             CorrectionRebate,
	"descuento":          CorrectionRebate,
	"rebaja o descuento": CorrectionRebate,
	"ajuste":             CorrectionPriceAdj,
	"ajuste de precio":   CorrectionPriceAdj,
	"ajuste precio":      CorrectionPriceAdj,
	"otros":              CorrectionOther,
	"otro":               CorrectionOther,
}

// CorrectionConceptCode traduce el concepto de corrección de una nota crédito
// al código DIAN 1..5. Acepta el número directamente (int o string numérico) o
// un sinónimo en texto, sin distinguir mayúsculas ni tildes. Entradas no
// reconocidas retornan 2 (anulación).
func CorrectionConceptCode(input string) int {
	s := normalizeText(input)
	if s == "" {
		return CorrectionAnnulment
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n >= correctionConceptMin && n <= correctionConceptMax {
			return n
		}
		return CorrectionAnnulment
	}
	if code, ok := correctionSynonyms[s]; ok {
		return code
	}
	return CorrectionAnnulment
}

// ── Organización y régimen ────────────────────────────────────────────────────

// OrganizationCode traduce el tipo de organización del cliente:
// persona jurídica = 1, persona natural = 2 (por defecto natural).
func OrganizationCode(orgType string) int {
	switch normalizeText(orgType) {
	case "juridica", "persona juridica", "1":
		return 1
	default:
		return 2
	}
}

// TaxRegimeCode traduce el régimen tributario: responsable de IVA = 1,
// no responsable = 2 (por defecto no responsable).
func TaxRegimeCode(regime string) int {
	switch normalizeText(regime) {
	case "responsable", "responsable de iva", "responsable iva", "comun", "1":
		return 1
	default:
		return 2
	}
}

// ── Tipo de documento de identificación ───────────────────────────────────────

var identificationTypes = map[string]int{
	"rc":   1, // Registro civil
	"ti":   2, // Tarjeta de identidad
	"cc":   3, // Cédula de ciudadanía
	"te":   4, // Tarjeta de extranjería
	"ce":   5, // Cédula de extranjería
	"nit":  6, // NIT
	"pas":  7, // Pasaporte
	"die":  8, // Documento de identificación extranjero
	"nuip": 10,
}

// IdentificationTypeCode traduce la sigla del documento de identificación al
// código del proveedor. Por defecto cédula de ciudadanía (3).
func IdentificationTypeCode(idType string) int {
	if code, ok := identificationTypes[normalizeText(idType)]; ok {
		return code
	}
	return 3
}

// ── Pago ──────────────────────────────────────────────────────────────────────

// PaymentFormCode traduce la forma de pago: contado = 1, crédito = 2
// (por defecto contado).
func PaymentFormCode(form string) int {
	switch normalizeText(form) {
	case "credito", "a credito", "2":
		return 2
	default:
		return 1
	}
}

var paymentMethods = map[string]int{
	"efectivo":          10,
	"cheque":            20,
	"consignacion":      42,
	"transferencia":     42,
	"tarjeta debito":    49,
	"tarjeta credito":   48,
	"credito ach":       47,
	"mutuo acuerdo":     30,
	"bonos":             71,
	"vales":             72,
}

// PaymentMethodCode traduce el medio de pago al código del proveedor.
// Por defecto efectivo (10).
func PaymentMethodCode(method string) int {
	s := normalizeText(method)
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	if code, ok := paymentMethods[s]; ok {
		return code
	}
	return 10
}

// ── Unidades de medida ────────────────────────────────────────────────────────

var measurementUnits = map[string]int{
	"unidad":     70,
	"und":        70,
	"kilogramo":  24,
	"kg":         24,
	"gramo":      23,
	"litro":      40,
	"lt":         40,
	"galon":      41,
	"metro":      38,
	"mt":         38,
	"centimetro": 35,
	"caja":       18,
	"par":        53,
	"servicio":   94,
	"hora":       25,
	"dia":        21,
}

// MeasurementUnitCode traduce la unidad de medida interna al código del
// proveedor. Por defecto unidad (70).
func MeasurementUnitCode(unit string) int {
	if code, ok := measurementUnits[normalizeText(unit)]; ok {
		return code
	}
	return 70
}

// ── Municipios ────────────────────────────────────────────────────────────────

// municipalityIDBogota es el id del proveedor para Bogotá D.C. (DANE 11001),
// usado como valor por defecto para códigos DANE no mapeados.
const municipalityIDBogota = 980

// municipalities mapea código DANE → id de municipio del proveedor.
// Cubre las capitales y ciudades principales; el catálogo completo se siembra
// en DB con cmd/seed_catalogos para el autocompletado (fuera del núcleo de emisión).
var municipalities = map[string]int{
	"11001": municipalityIDBogota, // Bogotá D.C.
	"05001": 112,                  // Medellín
	"76001": 1090,                 // Cali
	"08001": 47,                   // Barranquilla
	"13001": 128,                  // Cartagena
	"68001": 1018,                 // Bucaramanga
	"54001": 668,                  // Cúcuta
	"66001": 843,                  // Pereira
	"17001": 381,                  // Manizales
	"73001": 451,                  // Ibagué
	"52001": 697,                  // Pasto
	"50001": 1009,                 // Villavicencio
	"15001": 423,                  // Tunja
	"19001": 573,                  // Popayán
	"41001": 615,                  // Neiva
	"63001": 847,                  // Armenia
	"20001": 178,                  // Valledupar
	"23001": 186,                  // Montería
	"70001": 898,                  // Sincelejo
	"44001": 558,                  // Riohacha
	"47001": 588,                  // Santa Marta
}

// MunicipalityID traduce el código DANE local al id de municipio del proveedor.
// Códigos desconocidos o vacíos retornan el id de Bogotá.
func MunicipalityID(daneCode string) int {
	if id, ok := municipalities[strings.TrimSpace(daneCode)]; ok {
		return id
	}
	return municipalityIDBogota
}

// ── Normalización ─────────────────────────────────────────────────────────────

// foldAccents elimina marcas diacríticas (NFD → quitar Mn → NFC).
var foldAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeText recorta, pasa a minúsculas y elimina tildes para comparar
// contra las tablas de sinónimos.
func normalizeText(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	folded, _, err := transform.String(foldAccents, s)
	if err != nil {
		return s
	}
	return folded
}
