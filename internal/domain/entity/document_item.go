package entity

import "github.com/shopspring/decimal"

// DocumentItem representa una línea de detalle de un documento.
// Invariantes: Quantity > 0 y UnitPrice > 0.
type DocumentItem struct {
	ID           string
	DocumentID   string
	ProductID    string
	Quantity     decimal.Decimal
	UnitPrice    decimal.Decimal
	DiscountRate decimal.Decimal // porcentaje 0..100
	TaxRate      decimal.Decimal // porcentaje (ej: 19.00)
	Subtotal     decimal.Decimal
	TaxAmount    decimal.Decimal
	Total        decimal.Decimal
}
