package entity

import "time"

// Tipos de organización del cliente.
const (
	OrgTypeJuridica = "juridica"
	OrgTypeNatural  = "natural"
)

// Client representa el adquiriente del documento (facturación).
type Client struct {
	ID                 string
	CompanyID          string
	Name               string
	IdentificationType string // CC, NIT, CE, TI, PAS, RC, TE
	Identification     string // número de documento, sin dígito de verificación
	VerificationDigit  string // DV del NIT (vacío para otros tipos)
	OrganizationType   string // juridica | natural
	TaxRegime          string // "responsable" | "no_responsable"
	MunicipalityCode   string // código DANE del municipio (ej: "11001" Bogotá)
	Address            string
	Email              string
	Phone              string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
