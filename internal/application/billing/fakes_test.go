package billing

import (
	"context"
	"sort"
	"sync"

	"github.com/tu-usuario/facturacion-api/internal/domain"
	"github.com/tu-usuario/facturacion-api/internal/domain/entity"
)

// Repositorios en memoria para los tests del paquete.

type fakeDocumentRepo struct {
	mu        sync.Mutex
	docs      map[string]*entity.Document
	items     map[string][]*entity.DocumentItem
	updateErr error
	updates   int
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{
		docs:  make(map[string]*entity.Document),
		items: make(map[string][]*entity.DocumentItem),
	}
}

func (r *fakeDocumentRepo) Create(_ context.Context, doc *entity.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[doc.ID] = doc
	return nil
}

func (r *fakeDocumentRepo) CreateItem(_ context.Context, item *entity.DocumentItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.DocumentID] = append(r.items[item.DocumentID], item)
	return nil
}

func (r *fakeDocumentRepo) GetByID(_ context.Context, id string) (*entity.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.docs[id], nil
}

func (r *fakeDocumentRepo) GetByExternalID(_ context.Context, externalID string) (*entity.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.docs {
		if d.ExternalID == externalID {
			return d, nil
		}
	}
	return nil, nil
}

func (r *fakeDocumentRepo) GetItemsByDocumentID(_ context.Context, documentID string) ([]*entity.DocumentItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items[documentID], nil
}

func (r *fakeDocumentRepo) UpdateEmissionOutcome(_ context.Context, doc *entity.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	r.updates++
	r.docs[doc.ID] = doc
	return nil
}

func (r *fakeDocumentRepo) GetEmissionStatus(ctx context.Context, id string) (*entity.Document, error) {
	return r.GetByID(ctx, id)
}

type fakeClientRepo struct {
	clients map[string]*entity.Client
}

func newFakeClientRepo() *fakeClientRepo {
	return &fakeClientRepo{clients: make(map[string]*entity.Client)}
}

func (r *fakeClientRepo) Create(_ context.Context, c *entity.Client) error {
	r.clients[c.ID] = c
	return nil
}

func (r *fakeClientRepo) GetByID(_ context.Context, id string) (*entity.Client, error) {
	return r.clients[id], nil
}

func (r *fakeClientRepo) ListByCompany(_ context.Context, companyID string, _, _ int) ([]*entity.Client, error) {
	var out []*entity.Client
	for _, c := range r.clients {
		if c.CompanyID == companyID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeClientRepo) Update(_ context.Context, c *entity.Client) error {
	r.clients[c.ID] = c
	return nil
}

type fakeProductRepo struct {
	products map[string]*entity.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[string]*entity.Product)}
}

func (r *fakeProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	return r.products[id], nil
}

func (r *fakeProductRepo) ListByCompany(_ context.Context, companyID string, _, _ int) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, p := range r.products {
		if p.CompanyID == companyID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) Update(_ context.Context, p *entity.Product) error {
	r.products[p.ID] = p
	return nil
}

type fakeCompanyRepo struct {
	companies map[string]*entity.Company
}

func newFakeCompanyRepo() *fakeCompanyRepo {
	return &fakeCompanyRepo{companies: make(map[string]*entity.Company)}
}

func (r *fakeCompanyRepo) Create(_ context.Context, c *entity.Company) error {
	r.companies[c.ID] = c
	return nil
}

func (r *fakeCompanyRepo) GetByID(_ context.Context, id string) (*entity.Company, error) {
	return r.companies[id], nil
}

func (r *fakeCompanyRepo) List(_ context.Context, _, _ int) ([]*entity.Company, error) {
	var out []*entity.Company
	for _, c := range r.companies {
		out = append(out, c)
	}
	return out, nil
}

type fakeRangeRepo struct {
	mu     sync.Mutex
	ranges map[string]*entity.NumberingRange
}

func newFakeRangeRepo() *fakeRangeRepo {
	return &fakeRangeRepo{ranges: make(map[string]*entity.NumberingRange)}
}

func (r *fakeRangeRepo) Create(_ context.Context, nr *entity.NumberingRange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ranges[nr.ID] = nr
	return nil
}

func (r *fakeRangeRepo) GetByID(_ context.Context, id string) (*entity.NumberingRange, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if nr, ok := r.ranges[id]; ok {
		clone := *nr
		return &clone, nil
	}
	return nil, nil
}

func (r *fakeRangeRepo) GetActiveByCompanyAndKind(_ context.Context, companyID, kind string) (*entity.NumberingRange, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var candidates []*entity.NumberingRange
	for _, nr := range r.ranges {
		if nr.CompanyID == companyID && nr.DocumentKind == kind && nr.IsActive {
			candidates = append(candidates, nr)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].CreatedAt.After(candidates[j].CreatedAt)
	})
	clone := *candidates[0]
	return &clone, nil
}

func (r *fakeRangeRepo) ListByCompany(_ context.Context, companyID string) ([]*entity.NumberingRange, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.NumberingRange
	for _, nr := range r.ranges {
		if nr.CompanyID == companyID {
			out = append(out, nr)
		}
	}
	return out, nil
}

func (r *fakeRangeRepo) Update(_ context.Context, nr *entity.NumberingRange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ranges[nr.ID] = nr
	return nil
}

func (r *fakeRangeRepo) IncrementCurrent(_ context.Context, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	nr, ok := r.ranges[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	if nr.Current >= nr.RangeTo {
		return 0, domain.ErrRangeExhausted
	}
	nr.Current++
	return nr.Current, nil
}
