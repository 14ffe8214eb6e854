package dto

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// CreateDocumentRequest body para POST /api/documents.
// Crea un documento en DRAFT; la emisión al proveedor es un paso aparte.
type CreateDocumentRequest struct {
	ClientID      string                `json:"client_id"`
	Kind          string                `json:"kind"` // invoice | credit_note
	EmissionDate  string                `json:"emission_date,omitempty"` // YYYY-MM-DD; vacío = hoy
	DueDate       string                `json:"due_date,omitempty"`
	Observation   string                `json:"observation,omitempty"`
	PaymentForm   string                `json:"payment_form,omitempty"`   // contado | credito
	PaymentMethod string                `json:"payment_method,omitempty"` // efectivo, transferencia...
	RefDocumentID string                `json:"ref_document_id,omitempty"` // solo notas crédito
	Correction    string                `json:"correction_concept,omitempty"`
	Items         []DocumentItemRequest `json:"items"`
}

// DocumentItemRequest línea del documento (producto, cantidad, precio unitario).
type DocumentItemRequest struct {
	ProductID    string          `json:"product_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	DiscountRate decimal.Decimal `json:"discount_rate"`
}

// DocumentResponse documento con detalle para GET /api/documents/:id.
type DocumentResponse struct {
	ID            string                 `json:"id"`
	CompanyID     string                 `json:"company_id"`
	ClientID      string                 `json:"client_id,omitempty"`
	ClientName    string                 `json:"client_name,omitempty"`
	Kind          string                 `json:"kind"`
	Prefix        string                 `json:"prefix,omitempty"`
	Number        string                 `json:"number,omitempty"`
	ReferenceCode string                 `json:"reference_code,omitempty"`
	EmissionDate  string                 `json:"emission_date"`
	DueDate       string                 `json:"due_date,omitempty"`
	NetTotal      decimal.Decimal        `json:"net_total"`
	TaxTotal      decimal.Decimal        `json:"tax_total"`
	GrandTotal    decimal.Decimal        `json:"grand_total"`
	Status        string                 `json:"status"`
	ExternalID    string                 `json:"external_id,omitempty"`
	CUFE          string                 `json:"cufe,omitempty"`
	QRData        string                 `json:"qr_data,omitempty"`
	PublicURL     string                 `json:"public_url,omitempty"`
	AttemptCount  int                    `json:"attempt_count"`
	LastError     string                 `json:"last_error,omitempty"`
	Items         []DocumentItemResponse `json:"items"`
}

// DocumentItemResponse línea de detalle en la respuesta.
type DocumentItemResponse struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"product_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	DiscountRate decimal.Decimal `json:"discount_rate"`
	TaxRate      decimal.Decimal `json:"tax_rate"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Total        decimal.Decimal `json:"total"`
}

// EmitResult resultado de POST /api/documents/:id/emit.
type EmitResult struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	ExternalID string          `json:"external_id,omitempty"`
	CUFE       string          `json:"cufe,omitempty"`
	Status     string          `json:"status"`
	Data       json.RawMessage `json:"data,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// ValidationResult resultado de la validación pre-vuelo (sin llamada de red).
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// DocumentStatusDTO respuesta ligera para el endpoint de polling
// GET /api/documents/:id/status.
type DocumentStatusDTO struct {
	ID           string `json:"id"`
	Status       string `json:"status"` // DRAFT|SUBMITTED|FAILED
	ExternalID   string `json:"external_id,omitempty"`
	CUFE         string `json:"cufe,omitempty"`
	AttemptCount int    `json:"attempt_count"`
	LastError    string `json:"last_error,omitempty"`
}

// CreateRangeRequest body para POST /api/ranges.
type CreateRangeRequest struct {
	DocumentKind string `json:"document_kind"`
	Prefix       string `json:"prefix"`
	RangeFrom    int64  `json:"range_from"`
	RangeTo      int64  `json:"range_to"`
	Current      int64  `json:"current,omitempty"` // vacío = range_from
	IsActive     bool   `json:"is_active"`
}

// RangeResponse rango de numeración en respuestas.
type RangeResponse struct {
	ID           string `json:"id"`
	CompanyID    string `json:"company_id"`
	DocumentKind string `json:"document_kind"`
	Prefix       string `json:"prefix"`
	RangeFrom    int64  `json:"range_from"`
	RangeTo      int64  `json:"range_to"`
	Current      int64  `json:"current"`
	IsActive     bool   `json:"is_active"`
}

// RangeStatsResponse métricas operativas de un rango para
// GET /api/ranges/:id/stats.
type RangeStatsResponse struct {
	ID          string  `json:"id"`
	Prefix      string  `json:"prefix"`
	Utilization float64 `json:"utilization_pct"` // 0..100
	Remaining   int64   `json:"remaining"`
	Status      string  `json:"status"` // OK | WARNING | CRITICAL
}

// CreateClientRequest body para POST /api/clients.
type CreateClientRequest struct {
	Name               string `json:"name"`
	IdentificationType string `json:"identification_type"`
	Identification     string `json:"identification"`
	VerificationDigit  string `json:"verification_digit,omitempty"`
	OrganizationType   string `json:"organization_type"`
	TaxRegime          string `json:"tax_regime,omitempty"`
	MunicipalityCode   string `json:"municipality_code,omitempty"`
	Address            string `json:"address,omitempty"`
	Email              string `json:"email,omitempty"`
	Phone              string `json:"phone,omitempty"`
}

// ClientResponse cliente en respuestas.
type ClientResponse struct {
	ID                 string `json:"id"`
	CompanyID          string `json:"company_id"`
	Name               string `json:"name"`
	IdentificationType string `json:"identification_type"`
	Identification     string `json:"identification"`
	OrganizationType   string `json:"organization_type"`
	MunicipalityCode   string `json:"municipality_code,omitempty"`
	Email              string `json:"email,omitempty"`
	Phone              string `json:"phone,omitempty"`
}
