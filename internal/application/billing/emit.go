package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tu-usuario/facturacion-api/internal/application/dto"
	"github.com/tu-usuario/facturacion-api/internal/domain"
	"github.com/tu-usuario/facturacion-api/internal/domain/entity"
	"github.com/tu-usuario/facturacion-api/internal/domain/repository"
	"github.com/tu-usuario/facturacion-api/internal/infrastructure/factus"
	"github.com/tu-usuario/facturacion-api/pkg/config"
	"github.com/tu-usuario/facturacion-api/pkg/logger"
)

// EmitUseCase orquesta el pipeline de emisión de un documento:
// validar → mapear payload → enviar al proveedor → reconciliar el resultado.
// Toda ruta de fallo (pre-vuelo o de red) termina con el documento persistido
// en FAILED y su contador de intentos incrementado.
type EmitUseCase struct {
	docs       repository.DocumentRepository
	mapper     *Mapper
	sender     Submitter
	reconciler *Reconciler
	cfg        config.FactusConfig
	log        *logger.Logger
}

// NewEmitUseCase construye el caso de uso de emisión.
func NewEmitUseCase(
	docs repository.DocumentRepository,
	mapper *Mapper,
	sender Submitter,
	reconciler *Reconciler,
	cfg config.FactusConfig,
	log *logger.Logger,
) *EmitUseCase {
	return &EmitUseCase{
		docs:       docs,
		mapper:     mapper,
		sender:     sender,
		reconciler: reconciler,
		cfg:        cfg,
		log:        log,
	}
}

// submitPath devuelve la ruta de validación del proveedor según el tipo.
func submitPath(kind string) string {
	if kind == entity.DocumentKindCreditNote {
		return factus.PathValidateCreditNote
	}
	return factus.PathValidateBill
}

// Execute emite el documento. El error de retorno cubre solo fallos de carga
// (documento inexistente); los fallos de emisión propiamente dichos viajan en
// el EmitResult y quedan persistidos en el documento.
func (uc *EmitUseCase) Execute(ctx context.Context, documentID string) (*dto.EmitResult, error) {
	doc, err := uc.docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("cargar documento: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("documento %s: %w", documentID, domain.ErrNotFound)
	}

	// Re-emitir un documento ya aceptado duplicaría la factura ante la DIAN.
	if doc.Status == entity.DocumentStatusSubmitted && doc.ExternalID != "" {
		return &dto.EmitResult{
			Success:    true,
			Message:    "El documento ya fue validado por el proveedor",
			ExternalID: doc.ExternalID,
			CUFE:       doc.CUFE,
			Status:     doc.Status,
		}, nil
	}

	validation, err := uc.mapper.Validate(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !validation.Valid {
		msg := "documento inválido: " + strings.Join(validation.Errors, "; ")
		uc.failLocal(ctx, doc, msg)
		return &dto.EmitResult{
			Success: false,
			Message: "El documento no pasó la validación pre-vuelo",
			Status:  doc.Status,
			Error:   msg,
		}, nil
	}

	payload, err := uc.mapper.BuildPayload(ctx, doc)
	if err != nil {
		uc.failLocal(ctx, doc, err.Error())
		return &dto.EmitResult{
			Success: false,
			Message: "No se pudo construir el payload del proveedor",
			Status:  doc.Status,
			Error:   err.Error(),
		}, nil
	}

	uc.log.Info().
		Str("document_id", doc.ID).
		Str("kind", doc.Kind).
		Str("number", doc.FullNumber()).
		Int("attempt", doc.AttemptCount+1).
		Msg("Emitiendo documento al proveedor")

	res, err := uc.sender.Send(ctx, submitPath(doc.Kind), payload, factus.SendOptions{
		Timeout:    uc.cfg.Timeout,
		Retries:    uc.cfg.Retries,
		RetryDelay: uc.cfg.RetryDelay,
	})
	if err != nil {
		// Fallo fatal antes de cualquier intento (credenciales, serialización).
		uc.failLocal(ctx, doc, err.Error())
		return &dto.EmitResult{
			Success: false,
			Message: "No se pudo autenticar con el proveedor",
			Status:  doc.Status,
			Error:   err.Error(),
		}, nil
	}

	out, perr := uc.reconciler.Reconcile(ctx, doc, res)
	if perr != nil {
		// La emisión ya ocurrió: el fallo de persistencia se reporta aparte
		// sin pisar el resultado del proveedor.
		uc.log.Warn().Err(perr).Str("document_id", doc.ID).
			Msg("Resultado de emisión sin persistir")
	}
	return out, nil
}

// failLocal persiste un fallo previo al envío (validación o mapeo) con el
// mismo contrato que un fallo de red: FAILED, mensaje e intento incrementado.
// La escritura es best-effort: su fallo se registra, no se propaga.
func (uc *EmitUseCase) failLocal(ctx context.Context, doc *entity.Document, msg string) {
	doc.Status = entity.DocumentStatusFailed
	doc.LastError = msg
	doc.AttemptCount++
	doc.UpdatedAt = time.Now()
	if err := uc.docs.UpdateEmissionOutcome(ctx, doc); err != nil {
		uc.log.Error().Err(err).Str("document_id", doc.ID).
			Msg("No se pudo persistir el fallo local de emisión")
	}
}
