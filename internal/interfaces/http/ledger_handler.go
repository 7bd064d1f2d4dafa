package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Kardex-api/internal/application/dto"
	"github.com/jhoicas/Kardex-api/internal/application/ledger"
	domledger "github.com/jhoicas/Kardex-api/internal/domain/ledger"
)

// LedgerHandler maneja las peticiones HTTP del kardex (protegido).
type LedgerHandler struct {
	posting    *ledger.PostingUseCase
	allocation *ledger.AllocationUseCase
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(posting *ledger.PostingUseCase, allocation *ledger.AllocationUseCase) *LedgerHandler {
	return &LedgerHandler{posting: posting, allocation: allocation}
}

// PostInward godoc
// @Summary      Registrar entrada al kardex
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PostInwardRequest  true  "item_id, quantity; reason vacío = received"
// @Success      201   {object}  dto.PostingResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/ledger/inward [post]
func (h *LedgerHandler) PostInward(c *fiber.Ctx) error {
	var in dto.PostInwardRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.posting.PostInward(c.Context(), ledger.PostingInput{
		ItemID:      in.ItemID,
		Quantity:    in.Quantity,
		Reason:      in.Reason,
		ReferenceID: in.ReferenceID,
		Notes:       in.Notes,
		Location:    in.Location,
		Actor:       GetUserID(c),
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(postingResponse(result))
}

// PostOutward godoc
// @Summary      Registrar salida del kardex
// @Description  Rechaza la salida si el saldo disponible no alcanza, salvo que
//               el motivo o allow_negative permitan saldo negativo.
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PostOutwardRequest  true  "item_id, quantity, reason"
// @Success      201   {object}  dto.PostingResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/ledger/outward [post]
func (h *LedgerHandler) PostOutward(c *fiber.Ctx) error {
	var in dto.PostOutwardRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.posting.PostOutward(c.Context(), ledger.PostingInput{
		ItemID:        in.ItemID,
		Quantity:      in.Quantity,
		Reason:        in.Reason,
		ReferenceID:   in.ReferenceID,
		Notes:         in.Notes,
		Location:      in.Location,
		Actor:         GetUserID(c),
		AllowNegative: in.AllowNegative,
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(postingResponse(result))
}

// QuickInward godoc
// @Summary      Alta rápida de entradas (varios artículos, todo o nada)
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.QuickInwardRequest  true  "items[]"
// @Success      201   {array}   dto.PostingResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/ledger/inward/quick [post]
func (h *LedgerHandler) QuickInward(c *fiber.Ctx) error {
	var in dto.QuickInwardRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	items := make([]ledger.QuickInwardItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, ledger.QuickInwardItem{ItemID: it.ItemID, Quantity: it.Quantity})
	}
	results, err := h.posting.QuickInward(c.Context(), items, in.Location, GetUserID(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	out := make([]dto.PostingResponse, 0, len(results))
	for i := range results {
		out = append(out, postingResponse(&results[i]))
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// EditInward godoc
// @Summary      Editar cantidad/notas de una entrada
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la entrada"
// @Param        body  body  dto.EditInwardRequest  true  "quantity, notes"
// @Success      200   {object}  dto.PostingResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/ledger/entries/{id} [put]
func (h *LedgerHandler) EditInward(c *fiber.Ctx) error {
	var in dto.EditInwardRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.posting.EditInward(c.Context(), ledger.EditInwardInput{
		EntryID:  c.Params("id"),
		Quantity: in.Quantity,
		Notes:    in.Notes,
		Actor:    GetUserID(c),
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(postingResponse(result))
}

// DeleteEntry godoc
// @Summary      Borrar una entrada revirtiendo sus efectos
// @Description  ?force=true (solo admin) fuerza el borrado aunque la entrada
//               tenga efectos vinculados (lote completado, línea procesada).
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        id     path   string  true   "ID de la entrada"
// @Param        force  query  bool    false  "forzar reversión de efectos vinculados"
// @Success      200    {object}  dto.PostingResponse
// @Failure      400    {object}  dto.ErrorResponse
// @Failure      403    {object}  dto.ErrorResponse
// @Router       /api/ledger/entries/{id} [delete]
func (h *LedgerHandler) DeleteEntry(c *fiber.Ctx) error {
	force := c.QueryBool("force")
	if force && !IsAdmin(c) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "force requiere rol admin"})
	}
	result, err := h.posting.DeleteEntry(c.Context(), c.Params("id"), force, GetUserID(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(postingResponse(result))
}

// Undo godoc
// @Summary      Deshacer un movimiento propio (ventana de 24h)
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la entrada"
// @Success      200  {object}  dto.PostingResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/ledger/entries/{id}/undo [post]
func (h *LedgerHandler) Undo(c *fiber.Ctx) error {
	result, err := h.posting.Undo(c.Context(), c.Params("id"), GetUserID(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(postingResponse(result))
}

// Allocate godoc
// @Summary      (Re)asignar una entrada a producción, devolución o ajuste
// @Description  La asignación es exclusiva: asignar a un destino nuevo
//               revierte primero el anterior.
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la entrada"
// @Param        body  body  dto.AllocateRequest  true  "type: production|rto|adjustment"
// @Success      200   {object}  dto.AllocationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/ledger/entries/{id}/allocate [post]
func (h *LedgerHandler) Allocate(c *fiber.Ctx) error {
	var in dto.AllocateRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	target, err := domledger.ParseAllocationTarget(in.Type, in.AllocationID, in.Condition)
	if err != nil {
		return respondDomainError(c, err)
	}
	result, err := h.allocation.Allocate(c.Context(), c.Params("id"), target, GetUserID(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.AllocationResponse{
		EntryDeleted:     result.EntryDeleted,
		Reason:           result.Reason,
		ReferenceID:      result.ReferenceID,
		NewBalance:       result.NewBalance.Current,
		AvailableBalance: result.NewBalance.Available,
	})
}

// GetBalance godoc
// @Summary      Saldo actual y disponible de un artículo
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        itemId  path  string  true  "ID del artículo"
// @Success      200  {object}  dto.BalanceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/ledger/items/{itemId}/balance [get]
func (h *LedgerHandler) GetBalance(c *fiber.Ctx) error {
	itemID := c.Params("itemId")
	balance, err := h.posting.BalanceOf(c.Context(), itemID)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.NewBalanceResponse(itemID, *balance))
}

// ListEntries godoc
// @Summary      Historial de movimientos de un artículo
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        itemId  path   string  true   "ID del artículo"
// @Param        from    query  string  false  "RFC3339"
// @Param        to      query  string  false  "RFC3339"
// @Success      200  {array}  dto.MovementEntryDTO
// @Router       /api/ledger/items/{itemId}/entries [get]
func (h *LedgerHandler) ListEntries(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	from, err := parseTimeQuery(c.Query("from"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido (RFC3339)"})
	}
	to, err := parseTimeQuery(c.Query("to"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido (RFC3339)"})
	}

	entries, err := h.posting.ListEntries(c.Context(), c.Params("itemId"), from, to, page.Limit, page.Offset)
	if err != nil {
		return respondDomainError(c, err)
	}
	out := make([]dto.MovementEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.NewMovementEntryDTO(e))
	}
	return c.JSON(out)
}

func postingResponse(r *ledger.PostingResult) dto.PostingResponse {
	return dto.PostingResponse{
		TransactionID:    r.TransactionID,
		NewBalance:       r.NewBalance,
		AvailableBalance: r.AvailableBalance,
	}
}

func parseTimeQuery(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
