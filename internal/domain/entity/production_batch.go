package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un lote de producción.
const (
	BatchStatusPlanned    = "planned"
	BatchStatusInProgress = "in_progress"
	BatchStatusCompleted  = "completed"
)

// ProductionBatch es un lote de confección de un artículo. El kardex solo
// toca CompletedQty/Status/CompletedAt cuando una entrada se asigna o
// desasigna del lote; el resto del ciclo de vida vive en el módulo de
// producción.
type ProductionBatch struct {
	ID           string
	ItemID       string
	PlannedQty   decimal.Decimal
	CompletedQty decimal.Decimal
	Status       string
	CompletedAt  *time.Time
	CreatedAt    time.Time
}

// Credit suma cantidad completada (tope = PlannedQty) y recalcula estado.
func (b *ProductionBatch) Credit(qty decimal.Decimal, now time.Time) {
	b.CompletedQty = b.CompletedQty.Add(qty)
	if b.CompletedQty.GreaterThanOrEqual(b.PlannedQty) {
		b.CompletedQty = b.PlannedQty
		b.Status = BatchStatusCompleted
		b.CompletedAt = &now
		return
	}
	b.Status = BatchStatusInProgress
	b.CompletedAt = nil
}

// Debit revierte cantidad completada y degrada el estado
// (completed→in_progress, o in_progress→planned si queda en cero).
func (b *ProductionBatch) Debit(qty decimal.Decimal) {
	b.CompletedQty = b.CompletedQty.Sub(qty)
	if b.CompletedQty.LessThanOrEqual(decimal.Zero) {
		b.CompletedQty = decimal.Zero
		b.Status = BatchStatusPlanned
	} else {
		b.Status = BatchStatusInProgress
	}
	b.CompletedAt = nil
}
