package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

var _ repository.WriteOffRepository = (*WriteOffRepo)(nil)

// WriteOffRepo bajas por devolución no vendible (usable con pool o tx).
type WriteOffRepo struct {
	q Querier
}

// NewWriteOffRepository construye el adaptador de bajas. Pasar pool o tx (Querier).
func NewWriteOffRepository(q Querier) *WriteOffRepo {
	return &WriteOffRepo{q: q}
}

// Create persiste el registro de baja.
func (r *WriteOffRepo) Create(w *repository.WriteOff) error {
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	query := `
		INSERT INTO write_offs (id, item_id, quantity, condition, return_line_id, notes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		w.ID, w.ItemID, w.Quantity, w.Condition, w.ReturnLineID, w.Notes, w.CreatedBy, w.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create write-off: %w", err)
	}
	return nil
}

// ListByItem lista las bajas de un artículo, más reciente primero.
func (r *WriteOffRepo) ListByItem(itemID string, limit, offset int) ([]*repository.WriteOff, error) {
	query := `
		SELECT id, item_id, quantity, condition, return_line_id, notes, created_by, created_at
		FROM write_offs WHERE item_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, itemID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list write-offs: %w", err)
	}
	defer rows.Close()
	var list []*repository.WriteOff
	for rows.Next() {
		var w repository.WriteOff
		if err := rows.Scan(&w.ID, &w.ItemID, &w.Quantity, &w.Condition,
			&w.ReturnLineID, &w.Notes, &w.CreatedBy, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan write-off: %w", err)
		}
		list = append(list, &w)
	}
	return list, rows.Err()
}
