package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

var _ repository.ReservationRepository = (*ReservationRepo)(nil)

// ReservationRepo lectura de reservas de pedidos abiertos (usable con pool o tx).
type ReservationRepo struct {
	q Querier
}

// NewReservationRepository construye el adaptador de reservas. Pasar pool o tx (Querier).
func NewReservationRepository(q Querier) *ReservationRepo {
	return &ReservationRepo{q: q}
}

// ReservedQty suma la cantidad reservada por pedidos aún no despachados.
func (r *ReservationRepo) ReservedQty(itemID string) (decimal.Decimal, error) {
	var reserved decimal.Decimal
	err := r.q.QueryRow(context.Background(),
		`SELECT COALESCE(SUM(quantity), 0) FROM order_reservations WHERE item_id = $1 AND NOT dispatched`,
		itemID,
	).Scan(&reserved)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum reservations: %w", err)
	}
	return reserved, nil
}
