package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Condición de una unidad devuelta (RTO: return-to-origin).
const (
	ReturnConditionGood         = "good"
	ReturnConditionUnopened     = "unopened"
	ReturnConditionDamaged      = "damaged"
	ReturnConditionWrongProduct = "wrong_product"
)

// ReturnLine es una línea de pedido devuelta pendiente de recepción física.
// El kardex marca la línea como procesada cuando una entrada se asigna a
// ella (o cuando la unidad dañada se da de baja).
type ReturnLine struct {
	ID            string
	OrderID       string
	ItemID        string
	Quantity      decimal.Decimal
	Processed     bool
	Condition     string  // vacío hasta procesar
	InwardEntryID *string // movimiento de entrada que la cubrió (nil si write-off)
	ReceivedAt    *time.Time
}

// Sellable indica si la unidad devuelta vuelve al inventario vendible.
func SellableCondition(condition string) bool {
	return condition == ReturnConditionGood || condition == ReturnConditionUnopened
}

// ClearProcessed revierte los marcadores de recepción (al reasignar la
// entrada que la cubría).
func (l *ReturnLine) ClearProcessed() {
	l.Processed = false
	l.Condition = ""
	l.InwardEntryID = nil
	l.ReceivedAt = nil
}

// MarkProcessed estampa la línea como recibida con su condición.
func (l *ReturnLine) MarkProcessed(condition string, entryID *string, now time.Time) {
	l.Processed = true
	l.Condition = condition
	l.InwardEntryID = entryID
	l.ReceivedAt = &now
}
