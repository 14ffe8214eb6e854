package repository

import (
	"context"

	"github.com/tu-usuario/facturacion-api/internal/domain/entity"
)

// NumberingRangeRepository define el puerto de persistencia para rangos de numeración.
type NumberingRangeRepository interface {
	Create(ctx context.Context, r *entity.NumberingRange) error
	GetByID(ctx context.Context, id string) (*entity.NumberingRange, error)

	// GetActiveByCompanyAndKind devuelve el rango activo más reciente (created_at DESC)
	// para la empresa y tipo de documento dados. nil, nil si no hay rango activo.
	GetActiveByCompanyAndKind(ctx context.Context, companyID, kind string) (*entity.NumberingRange, error)

	ListByCompany(ctx context.Context, companyID string) ([]*entity.NumberingRange, error)
	Update(ctx context.Context, r *entity.NumberingRange) error

	// IncrementCurrent incrementa el contador de forma atómica
	// (UPDATE ... WHERE current < range_to RETURNING current) y devuelve el
	// valor resultante. Retorna domain.ErrRangeExhausted si el rango no admite
	// más consecutivos.
	IncrementCurrent(ctx context.Context, id string) (int64, error)
}
