package billing

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/facturacion-api/internal/domain/entity"
	"github.com/tu-usuario/facturacion-api/internal/infrastructure/factus"
)

// Submitter es el puerto hacia el sender HTTP del proveedor. La implementación
// real es factus.Sender; en tests se inyecta un fake.
type Submitter interface {
	Send(ctx context.Context, path string, payload any, opts factus.SendOptions) (*factus.SendResult, error)
}

// ProviderClient expone las consultas de solo lectura del proveedor
// (estado y descarga de artefactos).
type ProviderClient interface {
	GetBill(ctx context.Context, externalID string) (json.RawMessage, error)
	DownloadPDF(ctx context.Context, externalID string) ([]byte, string, error)
	DownloadXML(ctx context.Context, externalID string) ([]byte, string, error)
}

// DocumentPDFGenerator genera la representación gráfica local del documento
// (fallback cuando el proveedor aún no expone el PDF).
type DocumentPDFGenerator interface {
	GenerateDocumentPDF(
		ctx context.Context,
		doc *entity.Document,
		company *entity.Company,
		client *entity.Client,
		lines []DocumentLineForPDF,
	) ([]byte, error)
}

// DocumentLineForPDF línea enriquecida con datos de producto para el PDF.
type DocumentLineForPDF struct {
	Name      string
	SKU       string
	UnitCode  string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	TaxRate   decimal.Decimal
	Total     decimal.Decimal
}
