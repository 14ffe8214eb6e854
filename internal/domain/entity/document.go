package entity

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de documento electrónico.
const (
	DocumentKindInvoice    = "invoice"
	DocumentKindCreditNote = "credit_note"
	DocumentKindDebitNote  = "debit_note"
	DocumentKindExport     = "export"
)

// Estados locales del documento frente al proveedor de facturación electrónica.
const (
	DocumentStatusDraft     = "DRAFT"     // Guardado local, aún sin enviar (o con envío pendiente)
	DocumentStatusSubmitted = "SUBMITTED" // Aceptado por el proveedor; ExternalID siempre presente
	DocumentStatusFailed    = "FAILED"    // Rechazado, error de red agotado o respuesta sin identificador
)

// Document representa la cabecera de una factura o nota crédito.
// Un documento SUBMITTED siempre tiene ExternalID no vacío; esa es la llave
// para consultar estado y descargar PDF/XML en el proveedor.
type Document struct {
	ID            string
	CompanyID     string
	ClientID      string // opcional en notas crédito (el proveedor puede heredarlo de la factura original)
	Kind          string // invoice | credit_note | debit_note | export
	Prefix        string
	Number        string
	ReferenceCode string // código de referencia único para detección de duplicados en el proveedor
	Observation   string
	PaymentForm   string // contado | credito (vacío = contado)
	PaymentMethod string // efectivo, transferencia, tarjeta... (vacío = efectivo)
	EmissionDate  time.Time
	DueDate       time.Time
	NetTotal      decimal.Decimal
	TaxTotal      decimal.Decimal
	GrandTotal    decimal.Decimal

	Status       string
	ExternalID   string          // identificador asignado por el proveedor (ej: "SETP990000123")
	CUFE         string          // hash firmado CUFE/CUDE devuelto por el proveedor
	QRData       string          // payload del código QR
	PublicURL    string          // URL pública de consulta
	PDFURL       string          // URL de descarga del PDF
	XMLURL       string          // URL de descarga del XML firmado
	AttemptCount int             // intentos de emisión acumulados (monótono no decreciente)
	LastResponse json.RawMessage // última respuesta cruda del proveedor (blob de auditoría)
	LastError    string          // mensaje del último fallo (vacío si el último envío fue exitoso)
	ResponseAt   time.Time       // momento en que se registró LastResponse

	// Solo notas crédito / débito.
	RefDocumentID     string // documento original corregido (vacío = nota sin referencia)
	CorrectionConcept int    // concepto de corrección 1..5

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsCreditNote indica si el documento es una nota crédito.
func (d *Document) IsCreditNote() bool {
	return d.Kind == DocumentKindCreditNote
}

// FullNumber devuelve prefijo + número (ej: "SETP" + "990000123").
func (d *Document) FullNumber() string {
	return d.Prefix + d.Number
}
