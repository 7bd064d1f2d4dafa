package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Kardex-api/internal/application/dto"
	"github.com/jhoicas/Kardex-api/internal/application/reconciliation"
)

// PoolCountHandler maneja el pool de conteos sueltos (protegido).
type PoolCountHandler struct {
	pool *reconciliation.PoolUseCase
}

// NewPoolCountHandler construye el handler.
func NewPoolCountHandler(pool *reconciliation.PoolUseCase) *PoolCountHandler {
	return &PoolCountHandler{pool: pool}
}

// Submit godoc
// @Summary      Enviar un conteo físico suelto (queda pending)
// @Tags         pool-counts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SubmitPoolCountRequest  true  "item_id, counted_qty"
// @Success      201   {object}  dto.PoolCountDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/pool-counts [post]
func (h *PoolCountHandler) Submit(c *fiber.Ctx) error {
	var in dto.SubmitPoolCountRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	count, err := h.pool.SubmitCount(c.Context(), in.ItemID, in.CountedQty, in.Notes, GetUserID(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewPoolCountDTO(count))
}

// ListPending godoc
// @Summary      Listar conteos pendientes de revisión
// @Tags         pool-counts
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.PoolCountDTO
// @Router       /api/pool-counts/pending [get]
func (h *PoolCountHandler) ListPending(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	counts, err := h.pool.ListPending(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return respondDomainError(c, err)
	}
	out := make([]dto.PoolCountDTO, 0, len(counts))
	for _, pc := range counts {
		out = append(out, dto.NewPoolCountDTO(pc))
	}
	return c.JSON(out)
}

// Apply godoc
// @Summary      Aprobar un lote de conteos (una sola transacción)
// @Description  Conteos ya resueltos se omiten; un ID desconocido aborta el
//               lote completo.
// @Tags         pool-counts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReviewPoolCountsRequest  true  "ids[]"
// @Success      200   {array}   dto.PoolCountDTO
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/pool-counts/apply [post]
func (h *PoolCountHandler) Apply(c *fiber.Ctx) error {
	var in dto.ReviewPoolCountsRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	applied, err := h.pool.ApplyCounts(c.Context(), in.IDs, GetUserID(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	out := make([]dto.PoolCountDTO, 0, len(applied))
	for _, pc := range applied {
		out = append(out, dto.NewPoolCountDTO(pc))
	}
	return c.JSON(out)
}

// Discard godoc
// @Summary      Descartar un lote de conteos sin emitir movimientos
// @Tags         pool-counts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReviewPoolCountsRequest  true  "ids[]"
// @Success      204   "sin contenido"
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/pool-counts/discard [post]
func (h *PoolCountHandler) Discard(c *fiber.Ctx) error {
	var in dto.ReviewPoolCountsRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.pool.DiscardCounts(c.Context(), in.IDs, GetUserID(c)); err != nil {
		return respondDomainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
