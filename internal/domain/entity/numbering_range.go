package entity

import "time"

// NumberingRange representa un rango de numeración autorizado por la DIAN y
// registrado en el proveedor tecnológico. Current es el contador del próximo
// consecutivo; invariante: RangeFrom <= Current <= RangeTo + 1.
// La asignación falla con ErrRangeExhausted cuando Current >= RangeTo.
type NumberingRange struct {
	ID           string
	CompanyID    string
	DocumentKind string // invoice | credit_note | debit_note | export
	Prefix       string // prefijo autorizado (ej: "SETP", "FE")
	RangeFrom    int64
	RangeTo      int64
	Current      int64
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Remaining devuelve cuántos consecutivos quedan disponibles para asignar.
func (r *NumberingRange) Remaining() int64 {
	rem := r.RangeTo - r.Current
	if rem < 0 {
		return 0
	}
	return rem
}

// Exhausted indica si el rango ya no admite asignaciones.
func (r *NumberingRange) Exhausted() bool {
	return r.Current >= r.RangeTo
}

// Utilization devuelve el porcentaje consumido del rango (0..100).
func (r *NumberingRange) Utilization() float64 {
	total := r.RangeTo - r.RangeFrom + 1
	if total <= 0 {
		return 0
	}
	used := r.Current - r.RangeFrom
	if used < 0 {
		used = 0
	}
	if used > total {
		used = total
	}
	return float64(used) / float64(total) * 100
}
