package dto

import "github.com/shopspring/decimal"

// CreateProductRequest body para POST /api/products.
type CreateProductRequest struct {
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	Taxable     *bool           `json:"taxable,omitempty"` // nil = true
	UNSPSCCode  string          `json:"unspsc_code,omitempty"`
	UnitMeasure string          `json:"unit_measure,omitempty"` // vacío = "unidad"
}

// ProductResponse producto en respuestas.
type ProductResponse struct {
	ID          string          `json:"id"`
	CompanyID   string          `json:"company_id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	Taxable     bool            `json:"taxable"`
	UNSPSCCode  string          `json:"unspsc_code,omitempty"`
	UnitMeasure string          `json:"unit_measure"`
}

// CreateCompanyRequest body para POST /api/companies.
type CreateCompanyRequest struct {
	Name             string `json:"name"`
	NIT              string `json:"nit"`
	DV               string `json:"dv"`
	Address          string `json:"address,omitempty"`
	MunicipalityCode string `json:"municipality_code,omitempty"`
	Phone            string `json:"phone,omitempty"`
	Email            string `json:"email,omitempty"`
}

// CompanyResponse empresa emisora en respuestas.
type CompanyResponse struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	NIT              string `json:"nit"`
	DV               string `json:"dv"`
	MunicipalityCode string `json:"municipality_code,omitempty"`
	Email            string `json:"email,omitempty"`
	Status           string `json:"status"`
}
