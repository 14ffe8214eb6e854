package entity

import "time"

// Company representa la empresa emisora de los documentos (multi-tenant, enfoque Colombia).
type Company struct {
	ID               string
	Name             string
	NIT              string // NIT colombiano sin dígito de verificación
	DV               string // dígito de verificación
	Address          string
	MunicipalityCode string // código DANE de la sede principal
	Phone            string
	Email            string
	Status           string // active, suspended, inactive
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
