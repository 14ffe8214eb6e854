package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o servicio facturable.
type Product struct {
	ID          string
	CompanyID   string
	SKU         string // código único por empresa
	Name        string
	Description string
	Price       decimal.Decimal // precio de venta
	TaxRate     decimal.Decimal // IVA Colombia: 0, 5.00, 19.00 (porcentaje)
	Taxable     bool            // false = excluido de IVA (flag de exclusión en el payload)
	UNSPSCCode  string
	UnitMeasure string // código interno de unidad (unidad, kg, litro...)
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
