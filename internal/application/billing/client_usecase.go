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

// ClientUseCase casos de uso para adquirientes (clientes de facturación).
type ClientUseCase struct {
	repo repository.ClientRepository
}

// NewClientUseCase construye el caso de uso.
func NewClientUseCase(repo repository.ClientRepository) *ClientUseCase {
	return &ClientUseCase{repo: repo}
}

// Create registra un cliente. Tipo de identificación y organización tienen
// defaults (CC, natural); los códigos del proveedor se resuelven al construir
// el payload, no aquí.
func (uc *ClientUseCase) Create(ctx context.Context, companyID string, in dto.CreateClientRequest) (*dto.ClientResponse, error) {
	if in.Name == "" || in.Identification == "" {
		return nil, fmt.Errorf("name e identification son requeridos: %w", domain.ErrInvalidInput)
	}
	idType := in.IdentificationType
	if idType == "" {
		idType = "CC"
	}
	orgType := in.OrganizationType
	if orgType == "" {
		orgType = entity.OrgTypeNatural
	}
	if orgType != entity.OrgTypeJuridica && orgType != entity.OrgTypeNatural {
		return nil, fmt.Errorf("tipo de organización %q no reconocido: %w", orgType, domain.ErrInvalidInput)
	}

	now := time.Now()
	client := &entity.Client{
		ID:                 uuid.New().String(),
		CompanyID:          companyID,
		Name:               in.Name,
		IdentificationType: idType,
		Identification:     in.Identification,
		VerificationDigit:  in.VerificationDigit,
		OrganizationType:   orgType,
		TaxRegime:          in.TaxRegime,
		MunicipalityCode:   in.MunicipalityCode,
		Address:            in.Address,
		Email:              in.Email,
		Phone:              in.Phone,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := uc.repo.Create(ctx, client); err != nil {
		return nil, err
	}
	return clientResponse(client), nil
}

// GetByID devuelve el cliente verificando pertenencia a la empresa.
func (uc *ClientUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.ClientResponse, error) {
	client, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, domain.ErrNotFound
	}
	if companyID != "" && client.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return clientResponse(client), nil
}

// List lista los clientes de la empresa.
func (uc *ClientUseCase) List(ctx context.Context, companyID string, limit, offset int) ([]*dto.ClientResponse, error) {
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
	out := make([]*dto.ClientResponse, 0, len(list))
	for _, c := range list {
		out = append(out, clientResponse(c))
	}
	return out, nil
}

func clientResponse(c *entity.Client) *dto.ClientResponse {
	return &dto.ClientResponse{
		ID:                 c.ID,
		CompanyID:          c.CompanyID,
		Name:               c.Name,
		IdentificationType: c.IdentificationType,
		Identification:     c.Identification,
		OrganizationType:   c.OrganizationType,
		MunicipalityCode:   c.MunicipalityCode,
		Email:              c.Email,
		Phone:              c.Phone,
	}
}
