package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

var _ repository.BalanceRepository = (*BalanceRepo)(nil)

// BalanceRepo saldo materializado por artículo (usable con pool o tx).
type BalanceRepo struct {
	q Querier
}

// NewBalanceRepository construye el adaptador de saldos. Pasar pool o tx (Querier).
func NewBalanceRepository(q Querier) *BalanceRepo {
	return &BalanceRepo{q: q}
}

// Get obtiene el saldo materializado. Sin fila, el saldo es cero.
func (r *BalanceRepo) Get(itemID string) (*repository.BalanceRow, error) {
	return r.get(itemID, false)
}

// GetForUpdate obtiene el saldo y bloquea la fila (SELECT FOR UPDATE). Si el
// artículo aún no tiene fila se inserta una en cero primero: el bloqueo por
// artículo necesita una fila que bloquear.
func (r *BalanceRepo) GetForUpdate(itemID string) (*repository.BalanceRow, error) {
	_, err := r.q.Exec(context.Background(),
		`INSERT INTO item_balances (item_id, current_qty) VALUES ($1, 0)
		 ON CONFLICT (item_id) DO NOTHING`, itemID)
	if err != nil {
		return nil, fmt.Errorf("seed balance row: %w", err)
	}
	return r.get(itemID, true)
}

func (r *BalanceRepo) get(itemID string, forUpdate bool) (*repository.BalanceRow, error) {
	query := `SELECT item_id, current_qty, updated_at FROM item_balances WHERE item_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var b repository.BalanceRow
	err := r.q.QueryRow(context.Background(), query, itemID).Scan(&b.ItemID, &b.CurrentQty, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &repository.BalanceRow{ItemID: itemID, CurrentQty: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return &b, nil
}

// Upsert materializa el saldo recalculado.
func (r *BalanceRepo) Upsert(itemID string, current decimal.Decimal) error {
	query := `
		INSERT INTO item_balances (item_id, current_qty, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (item_id)
		DO UPDATE SET current_qty = EXCLUDED.current_qty, updated_at = now()`
	_, err := r.q.Exec(context.Background(), query, itemID, current)
	if err != nil {
		return fmt.Errorf("upsert balance: %w", err)
	}
	return nil
}
