package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una sesión de conteo físico. draft es el único estado editable;
// submitted y discarded son terminales.
const (
	ReconciliationDraft     = "draft"
	ReconciliationSubmitted = "submitted"
	ReconciliationDiscarded = "discarded"
)

// ReconciliationSession agrupa un ejercicio de conteo físico: congela el
// saldo de sistema de cada artículo activo al crearse y, al enviarse, emite
// un ajuste por cada varianza distinta de cero.
type ReconciliationSession struct {
	ID          string
	Status      string
	Notes       string
	CreatedBy   string
	CreatedAt   time.Time
	SubmittedAt *time.Time
	Items       []ReconciliationItem
}

// ReconciliationItem es la fila de conteo de un artículo dentro de la sesión.
// SystemQty queda congelado al crear la sesión; PhysicalQty y Variance son
// nulos hasta que el personal digita el conteo.
type ReconciliationItem struct {
	ID          string
	SessionID   string
	ItemID      string
	SystemQty   decimal.Decimal
	PhysicalQty *decimal.Decimal
	Variance    *decimal.Decimal // PhysicalQty - SystemQty
	Reason      string
	Notes       string
	UpdatedAt   time.Time
}

// IsDraft indica si la sesión todavía acepta ediciones.
func (s *ReconciliationSession) IsDraft() bool {
	return s.Status == ReconciliationDraft
}

// Estados de un conteo suelto (variante "pool", sin sesión).
const (
	PoolCountPending   = "pending"
	PoolCountApplied   = "applied"
	PoolCountDiscarded = "discarded"
)

// PoolCount es un conteo físico individual enviado por el personal contra un
// solo artículo, que un revisor aprueba o descarta en lote.
type PoolCount struct {
	ID         string
	ItemID     string
	SystemQty  decimal.Decimal // saldo de sistema al momento del conteo
	CountedQty decimal.Decimal
	Status     string
	Notes      string
	CountedBy  string
	CreatedAt  time.Time
	ReviewedBy string
	ReviewedAt *time.Time
}
