package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tu-usuario/facturacion-api/internal/application/dto"
	"github.com/tu-usuario/facturacion-api/internal/domain"
	"github.com/tu-usuario/facturacion-api/internal/domain/entity"
	"github.com/tu-usuario/facturacion-api/internal/domain/repository"
	"github.com/tu-usuario/facturacion-api/internal/infrastructure/factus"
	"github.com/tu-usuario/facturacion-api/pkg/logger"
)

// Tipos de artefacto descargables.
const (
	ArtifactPDF = "pdf"
	ArtifactXML = "xml"
)

// LocalPDFRenderer genera la representación gráfica local de un documento,
// usada como respaldo cuando el proveedor no entrega el PDF.
type LocalPDFRenderer interface {
	Render(ctx context.Context, documentID string) ([]byte, error)
}

// StatusUseCase resuelve el estado local y remoto de un documento emitido y
// la descarga de sus artefactos (PDF, XML firmado). Comparte el TokenManager
// con el pipeline de emisión pero queda fuera de su ruta crítica.
type StatusUseCase struct {
	docs     repository.DocumentRepository
	provider ProviderClient
	pdfGen   LocalPDFRenderer
	log      *logger.Logger
}

// NewStatusUseCase construye el caso de uso. pdfGen puede ser nil.
func NewStatusUseCase(docs repository.DocumentRepository, provider ProviderClient, pdfGen LocalPDFRenderer, log *logger.Logger) *StatusUseCase {
	return &StatusUseCase{docs: docs, provider: provider, pdfGen: pdfGen, log: log}
}

// GetLocalStatus devuelve el estado local del documento, pensado para polling
// desde la aplicación de facturación (consulta ligera, sin red).
func (uc *StatusUseCase) GetLocalStatus(ctx context.Context, documentID string) (*dto.DocumentStatusDTO, error) {
	doc, err := uc.docs.GetEmissionStatus(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("consultar estado: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("documento %s: %w", documentID, domain.ErrNotFound)
	}
	return &dto.DocumentStatusDTO{
		ID:           doc.ID,
		Status:       doc.Status,
		ExternalID:   doc.ExternalID,
		CUFE:         doc.CUFE,
		AttemptCount: doc.AttemptCount,
		LastError:    doc.LastError,
	}, nil
}

// GetRemoteStatus consulta el documento en el proveedor por su identificador
// externo y devuelve la respuesta cruda.
func (uc *StatusUseCase) GetRemoteStatus(ctx context.Context, externalID string) (json.RawMessage, error) {
	if strings.TrimSpace(externalID) == "" {
		return nil, fmt.Errorf("identificador externo vacío: %w", domain.ErrInvalidInput)
	}
	return uc.provider.GetBill(ctx, externalID)
}

// DownloadArtifact descarga el PDF o el XML firmado del documento desde el
// proveedor. Solo documentos SUBMITTED tienen artefactos; para el PDF, si el
// proveedor falla y hay generador local, se entrega la representación local.
func (uc *StatusUseCase) DownloadArtifact(ctx context.Context, documentID, kind string) ([]byte, string, error) {
	doc, err := uc.docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, "", fmt.Errorf("cargar documento: %w", err)
	}
	if doc == nil {
		return nil, "", fmt.Errorf("documento %s: %w", documentID, domain.ErrNotFound)
	}
	if doc.Status != entity.DocumentStatusSubmitted || doc.ExternalID == "" {
		return nil, "", fmt.Errorf("el documento no ha sido validado por el proveedor: %w", domain.ErrConflict)
	}

	switch strings.ToLower(kind) {
	case ArtifactPDF:
		data, name, err := uc.provider.DownloadPDF(ctx, doc.ExternalID)
		if err != nil && uc.pdfGen != nil {
			uc.log.Warn().Err(err).Str("document_id", doc.ID).
				Msg("Descarga de PDF del proveedor falló, generando representación local")
			return uc.localPDF(ctx, doc)
		}
		if err != nil {
			return nil, "", err
		}
		if name == "" {
			name = doc.FullNumber() + ".pdf"
		}
		return data, name, nil

	case ArtifactXML:
		data, name, err := uc.provider.DownloadXML(ctx, doc.ExternalID)
		if err != nil {
			return nil, "", err
		}
		uc.verifyXML(doc, data)
		if name == "" {
			name = doc.FullNumber() + ".xml"
		}
		return data, name, nil

	default:
		return nil, "", fmt.Errorf("tipo de artefacto %q: %w", kind, domain.ErrInvalidInput)
	}
}

// verifyXML contrasta el CUFE del XML descargado con el almacenado.
// Una discrepancia se registra pero no bloquea la descarga.
func (uc *StatusUseCase) verifyXML(doc *entity.Document, data []byte) {
	info, err := factus.InspectSignedXML(data)
	if err != nil {
		uc.log.Warn().Err(err).Str("document_id", doc.ID).
			Msg("XML descargado no inspeccionable")
		return
	}
	if doc.CUFE != "" && info.CUFE != "" && doc.CUFE != info.CUFE {
		uc.log.Error().
			Str("document_id", doc.ID).
			Str("cufe_local", doc.CUFE).
			Str("cufe_xml", info.CUFE).
			Msg("El CUFE del XML descargado no coincide con el almacenado")
	}
}

func (uc *StatusUseCase) localPDF(ctx context.Context, doc *entity.Document) ([]byte, string, error) {
	data, err := uc.pdfGen.Render(ctx, doc.ID)
	if err != nil {
		return nil, "", fmt.Errorf("generar PDF local: %w", err)
	}
	return data, doc.FullNumber() + ".pdf", nil
}
