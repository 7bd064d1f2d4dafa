package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Kardex-api/internal/application/dto"
	"github.com/jhoicas/Kardex-api/internal/application/reconciliation"
)

// ReconciliationHandler maneja las sesiones de conteo físico (protegido).
type ReconciliationHandler struct {
	sessions *reconciliation.SessionUseCase
}

// NewReconciliationHandler construye el handler.
func NewReconciliationHandler(sessions *reconciliation.SessionUseCase) *ReconciliationHandler {
	return &ReconciliationHandler{sessions: sessions}
}

// Start godoc
// @Summary      Iniciar sesión de conteo (congela saldos de sistema)
// @Tags         reconciliation
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StartSessionRequest  false  "notes"
// @Success      201   {object}  dto.SessionResponse
// @Router       /api/reconciliations [post]
func (h *ReconciliationHandler) Start(c *fiber.Ctx) error {
	var in dto.StartSessionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	session, err := h.sessions.Start(c.Context(), in.Notes, GetUserID(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewSessionResponse(session))
}

// Get godoc
// @Summary      Consultar una sesión con sus filas
// @Tags         reconciliation
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la sesión"
// @Success      200  {object}  dto.SessionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reconciliations/{id} [get]
func (h *ReconciliationHandler) Get(c *fiber.Ctx) error {
	session, err := h.sessions.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.NewSessionResponse(session))
}

// UpdateItems godoc
// @Summary      Guardar conteos físicos (solo en draft, última escritura gana)
// @Tags         reconciliation
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la sesión"
// @Param        body  body  dto.UpdateSessionItemsRequest  true  "items[]"
// @Success      204   "sin contenido"
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/reconciliations/{id}/items [put]
func (h *ReconciliationHandler) UpdateItems(c *fiber.Ctx) error {
	var in dto.UpdateSessionItemsRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	updates := make([]reconciliation.ItemUpdate, 0, len(in.Items))
	for _, it := range in.Items {
		updates = append(updates, reconciliation.ItemUpdate{
			ItemRowID:   it.ItemRowID,
			PhysicalQty: it.PhysicalQty,
			Reason:      it.Reason,
			Notes:       it.Notes,
		})
	}
	if err := h.sessions.UpdateItems(c.Context(), c.Params("id"), updates, GetUserID(c)); err != nil {
		return respondDomainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Submit godoc
// @Summary      Enviar la sesión: emite un ajuste por cada varianza
// @Tags         reconciliation
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la sesión"
// @Success      200  {object}  dto.SessionResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/reconciliations/{id}/submit [post]
func (h *ReconciliationHandler) Submit(c *fiber.Ctx) error {
	session, err := h.sessions.Submit(c.Context(), c.Params("id"), GetUserID(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.NewSessionResponse(session))
}

// Discard godoc
// @Summary      Descartar la sesión sin emitir movimientos
// @Tags         reconciliation
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la sesión"
// @Success      204  "sin contenido"
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/reconciliations/{id}/discard [post]
func (h *ReconciliationHandler) Discard(c *fiber.Ctx) error {
	if err := h.sessions.Discard(c.Context(), c.Params("id"), GetUserID(c)); err != nil {
		return respondDomainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Delete godoc
// @Summary      Eliminar una sesión draft con sus filas
// @Tags         reconciliation
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la sesión"
// @Success      204  "sin contenido"
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/reconciliations/{id} [delete]
func (h *ReconciliationHandler) Delete(c *fiber.Ctx) error {
	if err := h.sessions.Delete(c.Context(), c.Params("id")); err != nil {
		return respondDomainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
