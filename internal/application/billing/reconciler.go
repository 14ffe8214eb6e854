package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/tu-usuario/facturacion-api/internal/application/dto"
	"github.com/tu-usuario/facturacion-api/internal/domain/entity"
	"github.com/tu-usuario/facturacion-api/internal/domain/repository"
	"github.com/tu-usuario/facturacion-api/internal/infrastructure/factus"
	"github.com/tu-usuario/facturacion-api/pkg/logger"
)

// Reconciler traduce el resultado de un envío al proveedor en estado local
// durable. Se invoca después de CADA envío, exitoso o no: todo intento termina
// con el documento actualizado (SUBMITTED con identificadores, o FAILED con
// mensaje) y el contador de intentos incrementado, de modo que el llamador
// siempre puede re-consultar en vez de reconstruir estado desde una excepción.
type Reconciler struct {
	docs repository.DocumentRepository
	log  *logger.Logger
	now  func() time.Time
}

// NewReconciler construye el reconciliador.
func NewReconciler(docs repository.DocumentRepository, log *logger.Logger) *Reconciler {
	return &Reconciler{docs: docs, log: log, now: time.Now}
}

// Reconcile actualiza el documento según el resultado del envío y lo persiste.
// El error de retorno es exclusivamente de persistencia: no debe tumbar al
// llamador, pero sí reportarse por separado del resultado de la emisión.
func (r *Reconciler) Reconcile(ctx context.Context, doc *entity.Document, res *factus.SendResult) (*dto.EmitResult, error) {
	doc.AttemptCount++
	doc.LastResponse = res.Data
	doc.ResponseAt = r.now()
	doc.UpdatedAt = doc.ResponseAt

	var out *dto.EmitResult
	switch {
	case !res.Success:
		// Fallo de envío: no tocar identificadores previamente guardados.
		doc.Status = entity.DocumentStatusFailed
		doc.LastError = res.Error
		out = &dto.EmitResult{
			Success: false,
			Message: "La emisión del documento falló",
			Status:  doc.Status,
			Data:    res.Data,
			Error:   res.Error,
		}

	default:
		outcome := factus.ExtractOutcome(res.Data, doc.Kind)
		if outcome.ExternalID == "" {
			// Fallo parcial: HTTP exitoso pero sin identificador usable. Sin él
			// no hay consulta de estado ni descarga de PDF/XML posible.
			doc.Status = entity.DocumentStatusFailed
			doc.LastError = "el proveedor reportó éxito pero la respuesta no contiene un identificador de documento"
			out = &dto.EmitResult{
				Success: false,
				Message: "Respuesta del proveedor sin identificador de documento",
				Status:  doc.Status,
				Data:    res.Data,
				Error:   doc.LastError,
			}
		} else {
			doc.Status = entity.DocumentStatusSubmitted
			doc.LastError = ""
			mergeOutcome(doc, outcome)
			out = &dto.EmitResult{
				Success:    true,
				Message:    "Documento validado por el proveedor",
				ExternalID: doc.ExternalID,
				CUFE:       doc.CUFE,
				Status:     doc.Status,
				Data:       res.Data,
			}
		}
	}

	if err := r.docs.UpdateEmissionOutcome(ctx, doc); err != nil {
		r.log.Error().Err(err).
			Str("document_id", doc.ID).
			Str("status", doc.Status).
			Msg("No se pudo persistir el resultado de la emisión")
		return out, fmt.Errorf("persistir resultado de emisión: %w", err)
	}

	return out, nil
}

// mergeOutcome copia al documento solo los campos extraídos no vacíos; los
// valores previos sobreviven a una respuesta que no los repite.
func mergeOutcome(doc *entity.Document, o factus.Outcome) {
	doc.ExternalID = o.ExternalID
	if o.CUFE != "" {
		doc.CUFE = o.CUFE
	}
	if o.QRData != "" {
		doc.QRData = o.QRData
	}
	if o.PublicURL != "" {
		doc.PublicURL = o.PublicURL
	}
	if o.PDFURL != "" {
		doc.PDFURL = o.PDFURL
	}
	if o.XMLURL != "" {
		doc.XMLURL = o.XMLURL
	}
}
