package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/facturacion-api/internal/domain"
	"github.com/tu-usuario/facturacion-api/internal/domain/entity"
	"github.com/tu-usuario/facturacion-api/internal/domain/repository"
)

var _ repository.NumberingRangeRepository = (*NumberingRangeRepo)(nil)

// NumberingRangeRepo implementación del puerto NumberingRangeRepository sobre PostgreSQL.
type NumberingRangeRepo struct {
	q Querier
}

// NewNumberingRangeRepository construye el adaptador. Pasar pool o tx (Querier).
func NewNumberingRangeRepository(q Querier) *NumberingRangeRepo {
	return &NumberingRangeRepo{q: q}
}

const rangeColumns = `id, company_id, document_kind, prefix, range_from, range_to, current, is_active, created_at, updated_at`

// Create persiste un rango de numeración.
func (r *NumberingRangeRepo) Create(ctx context.Context, nr *entity.NumberingRange) error {
	query := `
		INSERT INTO numbering_ranges (id, company_id, document_kind, prefix, range_from, range_to, current, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		nr.ID, nr.CompanyID, nr.DocumentKind, nr.Prefix,
		nr.RangeFrom, nr.RangeTo, nr.Current, nr.IsActive, nr.CreatedAt, nr.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert numbering range: %w", err)
	}
	return nil
}

// GetByID obtiene un rango por ID. nil, nil si no existe.
func (r *NumberingRangeRepo) GetByID(ctx context.Context, id string) (*entity.NumberingRange, error) {
	query := `SELECT ` + rangeColumns + ` FROM numbering_ranges WHERE id = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, id))
}

// GetActiveByCompanyAndKind devuelve el rango activo más reciente para la
// empresa y tipo de documento. nil, nil si no hay rango activo.
func (r *NumberingRangeRepo) GetActiveByCompanyAndKind(ctx context.Context, companyID, kind string) (*entity.NumberingRange, error) {
	query := `
		SELECT ` + rangeColumns + `
		FROM numbering_ranges
		WHERE company_id = $1 AND document_kind = $2 AND is_active = true
		ORDER BY created_at DESC
		LIMIT 1`
	return r.scanOne(r.q.QueryRow(ctx, query, companyID, kind))
}

// ListByCompany lista los rangos de la empresa, los más recientes primero.
func (r *NumberingRangeRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.NumberingRange, error) {
	query := `SELECT ` + rangeColumns + ` FROM numbering_ranges WHERE company_id = $1 ORDER BY created_at DESC`
	rows, err := r.q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("query numbering ranges: %w", err)
	}
	defer rows.Close()

	var ranges []*entity.NumberingRange
	for rows.Next() {
		var nr entity.NumberingRange
		if err := rows.Scan(
			&nr.ID, &nr.CompanyID, &nr.DocumentKind, &nr.Prefix,
			&nr.RangeFrom, &nr.RangeTo, &nr.Current, &nr.IsActive, &nr.CreatedAt, &nr.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan numbering range: %w", err)
		}
		ranges = append(ranges, &nr)
	}
	return ranges, rows.Err()
}

// Update actualiza prefijo, límites y bandera de actividad (no el contador;
// ese solo se mueve con IncrementCurrent).
func (r *NumberingRangeRepo) Update(ctx context.Context, nr *entity.NumberingRange) error {
	query := `
		UPDATE numbering_ranges SET prefix = $2, range_from = $3, range_to = $4, is_active = $5, updated_at = $6
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, nr.ID, nr.Prefix, nr.RangeFrom, nr.RangeTo, nr.IsActive, nr.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update numbering range: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// IncrementCurrent incrementa el contador de forma atómica. La condición
// current < range_to en el UPDATE hace que dos emisiones concurrentes nunca
// obtengan el mismo consecutivo ni sobrepasen el rango, aun entre procesos.
func (r *NumberingRangeRepo) IncrementCurrent(ctx context.Context, id string) (int64, error) {
	query := `
		UPDATE numbering_ranges SET current = current + 1, updated_at = now()
		WHERE id = $1 AND current < range_to
		RETURNING current`
	var current int64
	err := r.q.QueryRow(ctx, query, id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// O el rango no existe o ya está agotado; se distingue con una lectura.
			nr, gerr := r.GetByID(ctx, id)
			if gerr != nil {
				return 0, gerr
			}
			if nr == nil {
				return 0, domain.ErrNotFound
			}
			return 0, domain.ErrRangeExhausted
		}
		return 0, fmt.Errorf("increment numbering range: %w", err)
	}
	return current, nil
}

func (r *NumberingRangeRepo) scanOne(row pgx.Row) (*entity.NumberingRange, error) {
	var nr entity.NumberingRange
	err := row.Scan(
		&nr.ID, &nr.CompanyID, &nr.DocumentKind, &nr.Prefix,
		&nr.RangeFrom, &nr.RangeTo, &nr.Current, &nr.IsActive, &nr.CreatedAt, &nr.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get numbering range: %w", err)
	}
	return &nr, nil
}
