package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound         = errors.New("recurso no encontrado")
	ErrItemNotFound     = errors.New("artículo no encontrado")
	ErrItemInactive     = errors.New("artículo inactivo")
	ErrInvalidInput     = errors.New("entrada inválida")
	ErrDuplicate        = errors.New("recurso duplicado")
	ErrUnauthorized     = errors.New("no autorizado")
	ErrForbidden        = errors.New("acceso denegado")
	ErrConflict         = errors.New("conflicto con el estado actual")
	ErrTerminalState    = errors.New("el recurso está en estado terminal")
	ErrUndoWindow       = errors.New("ventana de anulación vencida")
	ErrLinkedEffect     = errors.New("el movimiento tiene efectos aplicados; requiere force")
	ErrOutwardImmutable = errors.New("las salidas no se editan; registrar un movimiento compensatorio")
)

// InsufficientStockError se retorna cuando una salida dejaría el saldo
// disponible por debajo de cero y la política no permite negativos.
type InsufficientStockError struct {
	ItemID    string
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %s: disponible %s, solicitado %s",
		e.ItemID, e.Available, e.Requested)
}

// NegativeBalanceError se retorna cuando el saldo resultante sería negativo
// y ni la política por motivo ni el override del caller lo permiten.
type NegativeBalanceError struct {
	ItemID    string
	Reason    string
	Resulting decimal.Decimal
}

func (e *NegativeBalanceError) Error() string {
	return fmt.Sprintf("saldo negativo no permitido para %s (motivo %s): resultaría %s",
		e.ItemID, e.Reason, e.Resulting)
}

// IsInsufficientStock azúcar para los handlers HTTP.
func IsInsufficientStock(err error) bool {
	var target *InsufficientStockError
	return errors.As(err, &target)
}

// IsNegativeBalance azúcar para los handlers HTTP.
func IsNegativeBalance(err error) bool {
	var target *NegativeBalanceError
	return errors.As(err, &target)
}
