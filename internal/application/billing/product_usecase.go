package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/facturacion-api/internal/application/dto"
	"github.com/tu-usuario/facturacion-api/internal/domain"
	"github.com/tu-usuario/facturacion-api/internal/domain/entity"
	"github.com/tu-usuario/facturacion-api/internal/domain/repository"
)

// ProductUseCase casos de uso para el catálogo de productos facturables.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// Create registra un producto. Taxable por defecto es true; un producto
// excluido de IVA (Taxable=false) viaja con el flag de exclusión al proveedor.
func (uc *ProductUseCase) Create(ctx context.Context, companyID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if in.SKU == "" || in.Name == "" {
		return nil, fmt.Errorf("sku y name son requeridos: %w", domain.ErrInvalidInput)
	}
	if in.Price.Sign() <= 0 {
		return nil, fmt.Errorf("el precio debe ser mayor que cero: %w", domain.ErrInvalidInput)
	}
	taxable := true
	if in.Taxable != nil {
		taxable = *in.Taxable
	}
	unit := in.UnitMeasure
	if unit == "" {
		unit = "unidad"
	}
	now := time.Now()
	product := &entity.Product{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		SKU:         in.SKU,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		TaxRate:     in.TaxRate,
		Taxable:     taxable,
		UNSPSCCode:  in.UNSPSCCode,
		UnitMeasure: unit,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return productResponse(product), nil
}

// GetByID devuelve el producto verificando pertenencia a la empresa.
func (uc *ProductUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if companyID != "" && product.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return productResponse(product), nil
}

// List lista los productos de la empresa.
func (uc *ProductUseCase) List(ctx context.Context, companyID string, limit, offset int) ([]*dto.ProductResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	list, err := uc.repo.ListByCompany(ctx, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, productResponse(p))
	}
	return out, nil
}

func productResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:          p.ID,
		CompanyID:   p.CompanyID,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		TaxRate:     p.TaxRate,
		Taxable:     p.Taxable,
		UNSPSCCode:  p.UNSPSCCode,
		UnitMeasure: p.UnitMeasure,
	}
}
