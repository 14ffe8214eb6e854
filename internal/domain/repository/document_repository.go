package repository

import (
	"context"

	"github.com/tu-usuario/facturacion-api/internal/domain/entity"
)

// DocumentRepository define el puerto de persistencia para Document y sus líneas.
type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	CreateItem(ctx context.Context, item *entity.DocumentItem) error
	GetByID(ctx context.Context, id string) (*entity.Document, error)
	GetByExternalID(ctx context.Context, externalID string) (*entity.Document, error)
	GetItemsByDocumentID(ctx context.Context, documentID string) ([]*entity.DocumentItem, error)

	// UpdateEmissionOutcome persiste el resultado de un intento de emisión:
	// status, external_id, cufe, qr_data, urls, attempt_count, last_response,
	// last_error y updated_at. Es la única escritura del reconciliador.
	UpdateEmissionOutcome(ctx context.Context, doc *entity.Document) error

	// GetEmissionStatus devuelve solo los campos de estado (ligero, para polling).
	GetEmissionStatus(ctx context.Context, id string) (*entity.Document, error)
}
