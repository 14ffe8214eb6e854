package billing

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/facturacion-api/internal/application/dto"
	"github.com/tu-usuario/facturacion-api/internal/domain"
	"github.com/tu-usuario/facturacion-api/internal/domain/entity"
)

func seedRange(t *testing.T, repo *fakeRangeRepo, id string, from, to, current int64) *entity.NumberingRange {
	t.Helper()
	r := &entity.NumberingRange{
		ID:           id,
		CompanyID:    "empresa-1",
		DocumentKind: entity.DocumentKindInvoice,
		Prefix:       "SETP",
		RangeFrom:    from,
		RangeTo:      to,
		Current:      current,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	require.NoError(t, repo.Create(context.Background(), r))
	return r
}

func TestGetActiveRange_SinRangoActivo(t *testing.T) {
	uc := NewNumberingUseCase(newFakeRangeRepo())

	_, err := uc.GetActiveRange(context.Background(), "empresa-1", entity.DocumentKindInvoice)

	assert.ErrorIs(t, err, domain.ErrNoActiveRange)
}

func TestGetActiveRange_GanaElMasReciente(t *testing.T) {
	repo := newFakeRangeRepo()
	viejo := seedRange(t, repo, "rango-viejo", 1, 1000, 1)
	viejo.CreatedAt = time.Now().Add(-48 * time.Hour)
	seedRange(t, repo, "rango-nuevo", 1001, 2000, 1001)

	uc := NewNumberingUseCase(repo)
	r, err := uc.GetActiveRange(context.Background(), "empresa-1", entity.DocumentKindInvoice)

	require.NoError(t, err)
	assert.Equal(t, "rango-nuevo", r.ID, "con varios rangos activos gana el más reciente")
}

func TestNextConsecutive_NoIncrementa(t *testing.T) {
	repo := newFakeRangeRepo()
	seedRange(t, repo, "rango-1", 1, 100, 7)
	uc := NewNumberingUseCase(repo)

	n1, err := uc.NextConsecutive(context.Background(), "rango-1")
	require.NoError(t, err)
	n2, err := uc.NextConsecutive(context.Background(), "rango-1")
	require.NoError(t, err)

	assert.Equal(t, int64(7), n1)
	assert.Equal(t, int64(7), n2, "consultar el próximo consecutivo no debe incrementarlo")
}

func TestNextConsecutive_RangoAgotado(t *testing.T) {
	repo := newFakeRangeRepo()
	seedRange(t, repo, "rango-1", 1, 5, 5)
	uc := NewNumberingUseCase(repo)

	_, err := uc.NextConsecutive(context.Background(), "rango-1")

	assert.ErrorIs(t, err, domain.ErrRangeExhausted)
}

func TestAllocate_Secuencial(t *testing.T) {
	repo := newFakeRangeRepo()
	seedRange(t, repo, "rango-1", 1, 100, 1)
	uc := NewNumberingUseCase(repo)

	var asignados []int64
	for i := 0; i < 3; i++ {
		n, err := uc.Allocate(context.Background(), "rango-1")
		require.NoError(t, err)
		asignados = append(asignados, n)
	}

	assert.Equal(t, []int64{1, 2, 3}, asignados)
}

func TestAllocate_AgotaElRango(t *testing.T) {
	repo := newFakeRangeRepo()
	seedRange(t, repo, "rango-1", 1, 5, 5)
	uc := NewNumberingUseCase(repo)

	_, err := uc.Allocate(context.Background(), "rango-1")

	assert.ErrorIs(t, err, domain.ErrRangeExhausted)
}

func TestAllocate_ConcurrenteSinDuplicados(t *testing.T) {
	repo := newFakeRangeRepo()
	seedRange(t, repo, "rango-1", 1, 1000, 1)
	uc := NewNumberingUseCase(repo)

	const emisiones = 50
	var mu sync.Mutex
	vistos := make(map[int64]bool)

	var wg sync.WaitGroup
	for i := 0; i < emisiones; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := uc.Allocate(context.Background(), "rango-1")
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			assert.False(t, vistos[n], "consecutivo %d asignado dos veces", n)
			vistos[n] = true
		}()
	}
	wg.Wait()

	assert.Len(t, vistos, emisiones)
}

func TestRangeStats_Semaforo(t *testing.T) {
	tests := []struct {
		nombre   string
		current  int64
		esperado string
	}{
		{"holgado", 100, "OK"},
		{"advertencia", 9_600, "WARNING"},
		{"critico", 9_970, "CRITICAL"},
	}
	for _, tc := range tests {
		t.Run(tc.nombre, func(t *testing.T) {
			repo := newFakeRangeRepo()
			seedRange(t, repo, "rango-1", 1, 10_000, tc.current)
			uc := NewNumberingUseCase(repo)

			stats, err := uc.RangeStats(context.Background(), "rango-1")

			require.NoError(t, err)
			assert.Equal(t, tc.esperado, stats.Status)
			assert.Equal(t, int64(10_000-tc.current), stats.Remaining)
		})
	}
}

func TestCreateRange_Validaciones(t *testing.T) {
	uc := NewNumberingUseCase(newFakeRangeRepo())

	casos := []dto.CreateRangeRequest{
		{Prefix: "", RangeFrom: 1, RangeTo: 10},
		{Prefix: "SETP", RangeFrom: 0, RangeTo: 10},
		{Prefix: "SETP", RangeFrom: 10, RangeTo: 5},
		{Prefix: "SETP", RangeFrom: 10, RangeTo: 20, Current: 5},
	}
	for _, caso := range casos {
		_, err := uc.CreateRange(context.Background(), "empresa-1", caso)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
}

func TestCreateRange_CurrentPorDefecto(t *testing.T) {
	uc := NewNumberingUseCase(newFakeRangeRepo())

	r, err := uc.CreateRange(context.Background(), "empresa-1", dto.CreateRangeRequest{
		Prefix:    "SETP",
		RangeFrom: 990000001,
		RangeTo:   995000000,
		IsActive:  true,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(990000001), r.Current, "sin current explícito arranca en el límite inferior")
}
