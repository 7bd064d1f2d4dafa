package repository

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceRow es el saldo materializado por artículo. Es una caché de
// lectura: cada ruta de escritura lo recalcula desde el historial completo
// dentro de la misma transacción, así el invariante
// current == Σ(inward) − Σ(outward) se preserva en todo punto quiescente.
type BalanceRow struct {
	ItemID     string
	CurrentQty decimal.Decimal
	UpdatedAt  time.Time
}

// BalanceRepository materializa el saldo por artículo y sirve de punto de
// serialización: GetForUpdate bloquea la fila (SELECT FOR UPDATE) para que
// dos operaciones concurrentes sobre el mismo artículo no se entrelacen.
type BalanceRepository interface {
	Get(itemID string) (*BalanceRow, error)
	GetForUpdate(itemID string) (*BalanceRow, error)
	Upsert(itemID string, current decimal.Decimal) error
}

// ReservationRepository expone la cantidad reservada por pedidos abiertos no
// despachados (alimenta el saldo disponible). El módulo de pedidos es el
// dueño de esas filas; el kardex solo las lee.
type ReservationRepository interface {
	ReservedQty(itemID string) (decimal.Decimal, error)
}
