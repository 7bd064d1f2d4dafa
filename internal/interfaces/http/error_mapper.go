package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Kardex-api/internal/application/dto"
	"github.com/jhoicas/Kardex-api/internal/domain"
)

// respondDomainError traduce errores de dominio a códigos HTTP. Todos los
// handlers pasan por aquí para que la API responda los mismos códigos ante
// el mismo error sin importar la ruta.
func respondDomainError(c *fiber.Ctx, err error) error {
	var insufficient *domain.InsufficientStockError
	if errors.As(err, &insufficient) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "INSUFFICIENT_STOCK",
			Message: "stock disponible insuficiente: disponible " + insufficient.Available.String() + ", solicitado " + insufficient.Requested.String(),
		})
	}
	var negative *domain.NegativeBalanceError
	if errors.As(err, &negative) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "NEGATIVE_BALANCE",
			Message: "la salida dejaría el saldo en " + negative.Resulting.String() + " y el motivo '" + negative.Reason + "' no lo permite",
		})
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrItemNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "artículo no encontrado"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrItemInactive):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "ITEM_INACTIVE", Message: "el artículo está inactivo"})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "el registro ya existe"})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "no autenticado"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "operación no permitida para este usuario"})
	case errors.Is(err, domain.ErrUndoWindow):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "UNDO_WINDOW_EXPIRED", Message: "la ventana de deshacer (24h) ya venció"})
	case errors.Is(err, domain.ErrOutwardImmutable):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "OUTWARD_IMMUTABLE", Message: "las salidas no se editan; registre un movimiento compensatorio"})
	case errors.Is(err, domain.ErrLinkedEffect):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "LINKED_EFFECT", Message: "la entrada tiene efectos vinculados; requiere force (admin)"})
	case errors.Is(err, domain.ErrTerminalState):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "TERMINAL_STATE", Message: "la sesión ya fue enviada o descartada"})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "conflicto con el estado actual del recurso"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
