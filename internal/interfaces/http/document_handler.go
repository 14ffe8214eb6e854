package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/facturacion-api/internal/application/billing"
	"github.com/tu-usuario/facturacion-api/internal/application/dto"
)

// DocumentHandler maneja las peticiones HTTP de documentos electrónicos
// (facturas y notas crédito, protegido).
type DocumentHandler struct {
	createUC *billing.CreateDocumentUseCase
	emitUC   *billing.EmitUseCase
	statusUC *billing.StatusUseCase
	mapper   *billing.Mapper
}

// NewDocumentHandler construye el handler.
func NewDocumentHandler(
	createUC *billing.CreateDocumentUseCase,
	emitUC *billing.EmitUseCase,
	statusUC *billing.StatusUseCase,
	mapper *billing.Mapper,
) *DocumentHandler {
	return &DocumentHandler{createUC: createUC, emitUC: emitUC, statusUC: statusUC, mapper: mapper}
}

// Create godoc
// @Summary      Crear documento en borrador
// @Tags         documents
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateDocumentRequest  true  "Factura o nota crédito"
// @Success      201   {object}  dto.DocumentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/documents [post]
func (h *DocumentHandler) Create(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "company_id requerido"})
	}
	var in dto.CreateDocumentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	doc, err := h.createUC.Execute(c.Context(), companyID, in)
	if err != nil {
		return mapDomainError(c, err)
	}
	out, err := h.createUC.Get(c.Context(), companyID, doc.ID)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Detalle del documento con sus líneas
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {object}  dto.DocumentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/documents/{id} [get]
func (h *DocumentHandler) GetByID(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "company_id requerido"})
	}
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	out, err := h.createUC.Get(c.Context(), companyID, id)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(out)
}

// Validate godoc
// @Summary      Validación pre-vuelo (sin llamada al proveedor)
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {object}  dto.ValidationResult
// @Router       /api/documents/{id}/validate [get]
func (h *DocumentHandler) Validate(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	out, err := h.mapper.Validate(c.Context(), id)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(out)
}

// Emit godoc
// @Summary      Emitir el documento al proveedor de facturación electrónica
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {object}  dto.EmitResult
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.EmitResult
// @Router       /api/documents/{id}/emit [post]
func (h *DocumentHandler) Emit(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	out, err := h.emitUC.Execute(c.Context(), id)
	if err != nil {
		return mapDomainError(c, err)
	}
	if !out.Success {
		// El fallo quedó persistido en el documento; el body trae el detalle.
		return c.Status(fiber.StatusUnprocessableEntity).JSON(out)
	}
	return c.JSON(out)
}

// Status godoc
// @Summary      Estado local del documento (para polling)
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {object}  dto.DocumentStatusDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/documents/{id}/status [get]
func (h *DocumentHandler) Status(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	out, err := h.statusUC.GetLocalStatus(c.Context(), id)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(out)
}

// RemoteStatus godoc
// @Summary      Estado del documento según el proveedor (respuesta cruda)
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {object}  object
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/documents/{id}/remote-status [get]
func (h *DocumentHandler) RemoteStatus(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	local, err := h.statusUC.GetLocalStatus(c.Context(), id)
	if err != nil {
		return mapDomainError(c, err)
	}
	if local.ExternalID == "" {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "NOT_SUBMITTED", Message: "el documento aún no tiene identificador del proveedor"})
	}
	raw, err := h.statusUC.GetRemoteStatus(c.Context(), local.ExternalID)
	if err != nil {
		return mapDomainError(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(raw)
}

// DownloadPDF godoc
// @Summary      Descargar la representación gráfica (PDF)
// @Tags         documents
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {file}  binary
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/documents/{id}/pdf [get]
func (h *DocumentHandler) DownloadPDF(c *fiber.Ctx) error {
	return h.download(c, billing.ArtifactPDF, "application/pdf")
}

// DownloadXML godoc
// @Summary      Descargar el XML firmado
// @Tags         documents
// @Security     Bearer
// @Produce      application/xml
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {file}  binary
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/documents/{id}/xml [get]
func (h *DocumentHandler) DownloadXML(c *fiber.Ctx) error {
	return h.download(c, billing.ArtifactXML, "application/xml")
}

func (h *DocumentHandler) download(c *fiber.Ctx, kind, contentType string) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	data, filename, err := h.statusUC.DownloadArtifact(c.Context(), id, kind)
	if err != nil {
		return mapDomainError(c, err)
	}
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}
