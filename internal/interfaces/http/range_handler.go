package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/facturacion-api/internal/application/billing"
	"github.com/tu-usuario/facturacion-api/internal/application/dto"
	"github.com/tu-usuario/facturacion-api/internal/domain/entity"
)

// RangeHandler maneja las peticiones HTTP de rangos de numeración (protegido).
type RangeHandler struct {
	uc *billing.NumberingUseCase
}

// NewRangeHandler construye el handler.
func NewRangeHandler(uc *billing.NumberingUseCase) *RangeHandler {
	return &RangeHandler{uc: uc}
}

func rangeResponse(r *entity.NumberingRange) *dto.RangeResponse {
	return &dto.RangeResponse{
		ID:           r.ID,
		CompanyID:    r.CompanyID,
		DocumentKind: r.DocumentKind,
		Prefix:       r.Prefix,
		RangeFrom:    r.RangeFrom,
		RangeTo:      r.RangeTo,
		Current:      r.Current,
		IsActive:     r.IsActive,
	}
}

// Create godoc
// @Summary      Registrar rango de numeración autorizado
// @Tags         ranges
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateRangeRequest  true  "Rango autorizado por la DIAN"
// @Success      201   {object}  dto.RangeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/ranges [post]
func (h *RangeHandler) Create(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "company_id requerido"})
	}
	var in dto.CreateRangeRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	r, err := h.uc.CreateRange(c.Context(), companyID, in)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(rangeResponse(r))
}

// List godoc
// @Summary      Listar rangos de la empresa
// @Tags         ranges
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.RangeResponse
// @Router       /api/ranges [get]
func (h *RangeHandler) List(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "company_id requerido"})
	}
	list, err := h.uc.ListRanges(c.Context(), companyID)
	if err != nil {
		return mapDomainError(c, err)
	}
	out := make([]*dto.RangeResponse, 0, len(list))
	for _, r := range list {
		out = append(out, rangeResponse(r))
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener rango por ID
// @Tags         ranges
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del rango"
// @Success      200  {object}  dto.RangeResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/ranges/{id} [get]
func (h *RangeHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	r, err := h.uc.GetRange(c.Context(), id)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(rangeResponse(r))
}

// Stats godoc
// @Summary      Métricas operativas del rango (consumo, restantes, semáforo)
// @Tags         ranges
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del rango"
// @Success      200  {object}  dto.RangeStatsResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/ranges/{id}/stats [get]
func (h *RangeHandler) Stats(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	out, err := h.uc.RangeStats(c.Context(), id)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(out)
}
