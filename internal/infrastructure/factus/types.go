// Package factus implementa el cliente HTTP contra el proveedor tecnológico
// de facturación electrónica (API Factus): autenticación OAuth, envío de
// documentos con reintentos, extracción de la respuesta e inspección de
// artefactos descargados.
package factus

import (
	"encoding/json"
	"time"
)

// Rutas de la API del proveedor.
const (
	PathOAuthToken         = "/oauth/token"
	PathValidateBill       = "/v1/bills/validate"
	PathValidateCreditNote = "/v1/credit-notes/validate"
	PathShowBill           = "/v1/bills/show/"         // + número
	PathDownloadPDF        = "/v1/bills/download-pdf/" // + número
	PathDownloadXML        = "/v1/bills/download-xml/" // + número
)

// DocumentPayload es el cuerpo JSON que espera el proveedor en
// POST /v1/bills/validate y /v1/credit-notes/validate.
type DocumentPayload struct {
	NumberingRangeID      string           `json:"numbering_range_id,omitempty"`
	Document              string           `json:"document"` // código de tipo de documento ("01", "91"...)
	Number                string           `json:"number,omitempty"`
	Prefix                string           `json:"prefix,omitempty"`
	ReferenceCode         string           `json:"reference_code"`
	Observation           string           `json:"observation,omitempty"`
	PaymentForm           int              `json:"payment_form"`
	PaymentMethodCode     int              `json:"payment_method_code"`
	EmissionDate          string           `json:"emission_date"` // YYYY-MM-DD
	EmissionTime          string           `json:"emission_time"` // HH:mm:ss
	DueDate               string           `json:"due_date,omitempty"`
	BillID                string           `json:"bill_id,omitempty"`                 // factura original (notas crédito con referencia)
	CorrectionConceptCode int              `json:"correction_concept_code,omitempty"` // 1..5, solo notas crédito
	BillingPeriod         *BillingPeriod   `json:"billing_period,omitempty"`          // solo notas crédito sin referencia
	Establishment         *Establishment   `json:"establishment,omitempty"`
	Customer              *CustomerPayload `json:"customer,omitempty"`
	Items                 []ItemPayload    `json:"items"`
}

// BillingPeriod periodo facturado; obligatorio en notas crédito sin factura de referencia.
type BillingPeriod struct {
	StartDate string `json:"start_date"` // YYYY-MM-DD
	StartTime string `json:"start_time"` // HH:mm:ss
	EndDate   string `json:"end_date"`
	EndTime   string `json:"end_time"`
}

// Establishment datos de la sede emisora.
type Establishment struct {
	Name           string `json:"name"`
	Address        string `json:"address,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Email          string `json:"email,omitempty"`
	MunicipalityID int    `json:"municipality_id"`
}

// CustomerPayload adquiriente del documento.
type CustomerPayload struct {
	Identification       string `json:"identification"`
	DV                   string `json:"dv,omitempty"` // dígito de verificación (solo NIT)
	Company              string `json:"company,omitempty"`
	Names                string `json:"names,omitempty"`
	Address              string `json:"address,omitempty"`
	Email                string `json:"email,omitempty"`
	Phone                string `json:"phone,omitempty"`
	LegalOrganizationID  int    `json:"legal_organization_id"`  // 1 jurídica, 2 natural
	TributeID            int    `json:"tribute_id"`             // 1 responsable IVA, 2 no responsable
	IdentificationTypeID int    `json:"identification_document_id"`
	MunicipalityID       int    `json:"municipality_id"`
}

// ItemPayload línea del documento. Cantidades y montos van como números;
// los porcentajes como strings con dos decimales fijos (formato del proveedor).
type ItemPayload struct {
	CodeReference     string  `json:"code_reference"`
	Name              string  `json:"name"`
	Quantity          float64 `json:"quantity"`
	Price             float64 `json:"price"`
	DiscountRate      string  `json:"discount_rate"` // "0.00".."100.00"
	TaxRate           string  `json:"tax_rate"`      // "0.00", "5.00", "19.00"
	IsExcluded        int     `json:"is_excluded"`   // 1 = excluido de IVA
	UnitMeasureID     int     `json:"unit_measure_id"`
	StandardCodeID    int     `json:"standard_code_id"`
	TributeID         int     `json:"tribute_id"`
	WithholdingTaxes  []any   `json:"withholding_taxes"`
}

// SendOptions parámetros de un envío: timeout por intento, reintentos
// adicionales y base del backoff lineal.
type SendOptions struct {
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration
}

// SendResult resultado clasificado de un envío al proveedor.
// Success true implica Data con el cuerpo verbatim de la respuesta 2xx.
type SendResult struct {
	Success    bool
	StatusCode int             // 0 = sin respuesta (timeout / red)
	Data       json.RawMessage // cuerpo crudo de la respuesta (éxito o error)
	Error      string          // mensaje legible del fallo (vacío en éxito)
}
