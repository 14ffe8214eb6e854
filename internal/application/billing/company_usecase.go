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

// CompanyUseCase casos de uso para la empresa emisora.
type CompanyUseCase struct {
	repo repository.CompanyRepository
}

// NewCompanyUseCase construye el caso de uso.
func NewCompanyUseCase(repo repository.CompanyRepository) *CompanyUseCase {
	return &CompanyUseCase{repo: repo}
}

// Create registra una empresa emisora.
func (uc *CompanyUseCase) Create(ctx context.Context, in dto.CreateCompanyRequest) (*dto.CompanyResponse, error) {
	if in.Name == "" || in.NIT == "" {
		return nil, fmt.Errorf("name y nit son requeridos: %w", domain.ErrInvalidInput)
	}
	now := time.Now()
	company := &entity.Company{
		ID:               uuid.New().String(),
		Name:             in.Name,
		NIT:              in.NIT,
		DV:               in.DV,
		Address:          in.Address,
		MunicipalityCode: in.MunicipalityCode,
		Phone:            in.Phone,
		Email:            in.Email,
		Status:           "active",
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := uc.repo.Create(ctx, company); err != nil {
		return nil, err
	}
	return companyResponse(company), nil
}

// GetByID devuelve la empresa.
func (uc *CompanyUseCase) GetByID(ctx context.Context, id string) (*dto.CompanyResponse, error) {
	company, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	return companyResponse(company), nil
}

// List lista las empresas registradas.
func (uc *CompanyUseCase) List(ctx context.Context, limit, offset int) ([]*dto.CompanyResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.CompanyResponse, 0, len(list))
	for _, c := range list {
		out = append(out, companyResponse(c))
	}
	return out, nil
}

func companyResponse(c *entity.Company) *dto.CompanyResponse {
	return &dto.CompanyResponse{
		ID:               c.ID,
		Name:             c.Name,
		NIT:              c.NIT,
		DV:               c.DV,
		MunicipalityCode: c.MunicipalityCode,
		Email:            c.Email,
		Status:           c.Status,
	}
}
