package billing

import (
	"context"
	"fmt"

	"github.com/tu-usuario/facturacion-api/internal/domain"
	"github.com/tu-usuario/facturacion-api/internal/domain/entity"
	"github.com/tu-usuario/facturacion-api/internal/domain/repository"
)

// PDFUseCase arma los datos enriquecidos del documento (empresa, cliente,
// líneas con producto) y delega el dibujo al generador. Implementa
// LocalPDFRenderer.
type PDFUseCase struct {
	docs      repository.DocumentRepository
	clients   repository.ClientRepository
	products  repository.ProductRepository
	companies repository.CompanyRepository
	gen       DocumentPDFGenerator
}

// NewPDFUseCase construye el caso de uso.
func NewPDFUseCase(
	docs repository.DocumentRepository,
	clients repository.ClientRepository,
	products repository.ProductRepository,
	companies repository.CompanyRepository,
	gen DocumentPDFGenerator,
) *PDFUseCase {
	return &PDFUseCase{
		docs:      docs,
		clients:   clients,
		products:  products,
		companies: companies,
		gen:       gen,
	}
}

// Render genera el PDF local del documento.
func (uc *PDFUseCase) Render(ctx context.Context, documentID string) ([]byte, error) {
	doc, err := uc.docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("cargar documento: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("documento %s: %w", documentID, domain.ErrNotFound)
	}

	company, err := uc.companies.GetByID(ctx, doc.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("cargar empresa: %w", err)
	}

	var client *entity.Client
	if doc.ClientID != "" {
		client, err = uc.clients.GetByID(ctx, doc.ClientID)
		if err != nil {
			return nil, fmt.Errorf("cargar cliente: %w", err)
		}
	}

	items, err := uc.docs.GetItemsByDocumentID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("cargar líneas: %w", err)
	}

	lines := make([]DocumentLineForPDF, 0, len(items))
	for _, item := range items {
		line := DocumentLineForPDF{
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			TaxRate:   item.TaxRate,
			Total:     item.Total,
		}
		product, err := uc.products.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("cargar producto: %w", err)
		}
		if product != nil {
			line.Name = product.Name
			line.SKU = product.SKU
			line.UnitCode = product.UnitMeasure
		}
		lines = append(lines, line)
	}

	return uc.gen.GenerateDocumentPDF(ctx, doc, company, client, lines)
}
