package billing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/facturacion-api/internal/application/dto"
	"github.com/tu-usuario/facturacion-api/internal/domain"
	"github.com/tu-usuario/facturacion-api/internal/domain/entity"
	"github.com/tu-usuario/facturacion-api/internal/domain/repository"
)

// Umbrales de consecutivos restantes para el semáforo operativo de rangos.
const (
	rangeCriticalRemaining = 50
	rangeWarningRemaining  = 500
)

// NumberingUseCase administra los rangos de numeración: selección del rango
// activo, lectura del próximo consecutivo, asignación atómica y métricas.
//
// La asignación combina un mutex por rango (serializa el par leer+incrementar
// dentro del proceso) con un UPDATE atómico en DB (protege entre procesos):
// dos emisiones concurrentes nunca observan el mismo consecutivo.
type NumberingUseCase struct {
	repo repository.NumberingRangeRepository

	mu    sync.Mutex
	locks map[string]*sync.Mutex // por rango
}

// NewNumberingUseCase construye el caso de uso.
func NewNumberingUseCase(repo repository.NumberingRangeRepository) *NumberingUseCase {
	return &NumberingUseCase{
		repo:  repo,
		locks: make(map[string]*sync.Mutex),
	}
}

func (uc *NumberingUseCase) lockFor(rangeID string) *sync.Mutex {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	l, ok := uc.locks[rangeID]
	if !ok {
		l = &sync.Mutex{}
		uc.locks[rangeID] = l
	}
	return l
}

// GetActiveRange devuelve el rango activo más reciente para la empresa y tipo
// de documento. Si hay varios marcados activos gana el de created_at más nuevo
// (política explícita, no accidente del ORDER BY).
func (uc *NumberingUseCase) GetActiveRange(ctx context.Context, companyID, kind string) (*entity.NumberingRange, error) {
	r, err := uc.repo.GetActiveByCompanyAndKind(ctx, companyID, kind)
	if err != nil {
		return nil, fmt.Errorf("consultar rango activo: %w", err)
	}
	if r == nil {
		return nil, domain.ErrNoActiveRange
	}
	return r, nil
}

// GetRange devuelve un rango por id.
func (uc *NumberingUseCase) GetRange(ctx context.Context, rangeID string) (*entity.NumberingRange, error) {
	r, err := uc.repo.GetByID(ctx, rangeID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.ErrNotFound
	}
	return r, nil
}

// NextConsecutive devuelve el consecutivo que se asignaría a continuación,
// SIN incrementarlo. Retorna ErrRangeExhausted si el rango ya no admite
// asignaciones.
func (uc *NumberingUseCase) NextConsecutive(ctx context.Context, rangeID string) (int64, error) {
	r, err := uc.GetRange(ctx, rangeID)
	if err != nil {
		return 0, err
	}
	if r.Exhausted() {
		return 0, domain.ErrRangeExhausted
	}
	return r.Current, nil
}

// IncrementConsecutive incrementa el contador del rango de forma atómica y
// devuelve el nuevo valor.
func (uc *NumberingUseCase) IncrementConsecutive(ctx context.Context, rangeID string) (int64, error) {
	l := uc.lockFor(rangeID)
	l.Lock()
	defer l.Unlock()
	return uc.repo.IncrementCurrent(ctx, rangeID)
}

// Allocate asigna el próximo consecutivo del rango (reserva optimista: el
// número queda consumido aunque la emisión posterior falle). Devuelve el
// número asignado.
func (uc *NumberingUseCase) Allocate(ctx context.Context, rangeID string) (int64, error) {
	l := uc.lockFor(rangeID)
	l.Lock()
	defer l.Unlock()
	newCurrent, err := uc.repo.IncrementCurrent(ctx, rangeID)
	if err != nil {
		return 0, err
	}
	return newCurrent - 1, nil
}

// RangeStats devuelve las métricas operativas del rango: porcentaje de uso,
// consecutivos restantes y semáforo OK/WARNING/CRITICAL.
func (uc *NumberingUseCase) RangeStats(ctx context.Context, rangeID string) (*dto.RangeStatsResponse, error) {
	r, err := uc.GetRange(ctx, rangeID)
	if err != nil {
		return nil, err
	}
	remaining := r.Remaining()
	status := "OK"
	switch {
	case remaining <= rangeCriticalRemaining:
		status = "CRITICAL"
	case remaining <= rangeWarningRemaining:
		status = "WARNING"
	}
	return &dto.RangeStatsResponse{
		ID:          r.ID,
		Prefix:      r.Prefix,
		Utilization: r.Utilization(),
		Remaining:   remaining,
		Status:      status,
	}, nil
}

// CreateRange registra un nuevo rango de numeración.
func (uc *NumberingUseCase) CreateRange(ctx context.Context, companyID string, in dto.CreateRangeRequest) (*entity.NumberingRange, error) {
	if in.Prefix == "" || in.RangeFrom <= 0 || in.RangeTo < in.RangeFrom {
		return nil, domain.ErrInvalidInput
	}
	kind := in.DocumentKind
	if kind == "" {
		kind = entity.DocumentKindInvoice
	}
	current := in.Current
	if current == 0 {
		current = in.RangeFrom
	}
	if current < in.RangeFrom || current > in.RangeTo+1 {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	r := &entity.NumberingRange{
		ID:           uuid.New().String(),
		CompanyID:    companyID,
		DocumentKind: kind,
		Prefix:       in.Prefix,
		RangeFrom:    in.RangeFrom,
		RangeTo:      in.RangeTo,
		Current:      current,
		IsActive:     in.IsActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// ListRanges lista los rangos de la empresa.
func (uc *NumberingUseCase) ListRanges(ctx context.Context, companyID string) ([]*entity.NumberingRange, error) {
	return uc.repo.ListByCompany(ctx, companyID)
}
