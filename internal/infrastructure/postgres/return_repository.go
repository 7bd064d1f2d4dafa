package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

var _ repository.ReturnRepository = (*ReturnRepo)(nil)

// ReturnRepo líneas de pedidos devueltos y su marcador de recepción total
// (usable con pool o tx).
type ReturnRepo struct {
	q Querier
}

// NewReturnRepository construye el adaptador de devoluciones. Pasar pool o tx (Querier).
func NewReturnRepository(q Querier) *ReturnRepo {
	return &ReturnRepo{q: q}
}

const returnLineColumns = `id, order_id, item_id, quantity, processed, condition, inward_entry_id, received_at`

// GetLineByID obtiene una línea por ID. Devuelve nil si no existe.
func (r *ReturnRepo) GetLineByID(id string) (*entity.ReturnLine, error) {
	return r.getLine(`WHERE id = $1`, id, false)
}

// GetLineForUpdate obtiene la línea y bloquea la fila (SELECT FOR UPDATE).
func (r *ReturnRepo) GetLineForUpdate(id string) (*entity.ReturnLine, error) {
	return r.getLine(`WHERE id = $1`, id, true)
}

// FindLineByEntry busca la línea cuyo movimiento de entrada es entryID.
func (r *ReturnRepo) FindLineByEntry(entryID string) (*entity.ReturnLine, error) {
	return r.getLine(`WHERE inward_entry_id = $1`, entryID, false)
}

func (r *ReturnRepo) getLine(where, arg string, forUpdate bool) (*entity.ReturnLine, error) {
	query := `SELECT ` + returnLineColumns + ` FROM return_lines ` + where
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var l entity.ReturnLine
	err := r.q.QueryRow(context.Background(), query, arg).Scan(
		&l.ID, &l.OrderID, &l.ItemID, &l.Quantity, &l.Processed,
		&l.Condition, &l.InwardEntryID, &l.ReceivedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get return line: %w", err)
	}
	return &l, nil
}

// UpdateLine persiste los marcadores de procesamiento de la línea.
func (r *ReturnRepo) UpdateLine(l *entity.ReturnLine) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE return_lines SET processed = $2, condition = $3, inward_entry_id = $4, received_at = $5 WHERE id = $1`,
		l.ID, l.Processed, l.Condition, l.InwardEntryID, l.ReceivedAt,
	)
	if err != nil {
		return fmt.Errorf("update return line: %w", err)
	}
	return nil
}

// CountUnprocessed cuenta las líneas del pedido aún sin procesar.
func (r *ReturnRepo) CountUnprocessed(orderID string) (int, error) {
	var n int
	err := r.q.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM return_lines WHERE order_id = $1 AND NOT processed`,
		orderID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count unprocessed lines: %w", err)
	}
	return n, nil
}

// MarkOrderFullyReceived estampa el pedido como totalmente recibido.
func (r *ReturnRepo) MarkOrderFullyReceived(orderID string, at time.Time) error {
	query := `
		INSERT INTO return_orders (order_id, fully_received_at)
		VALUES ($1, $2)
		ON CONFLICT (order_id) DO UPDATE SET fully_received_at = EXCLUDED.fully_received_at`
	_, err := r.q.Exec(context.Background(), query, orderID, at)
	if err != nil {
		return fmt.Errorf("mark order fully received: %w", err)
	}
	return nil
}

// ClearOrderFullyReceived limpia el estampado al revertir una línea procesada.
func (r *ReturnRepo) ClearOrderFullyReceived(orderID string) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE return_orders SET fully_received_at = NULL WHERE order_id = $1`,
		orderID,
	)
	if err != nil {
		return fmt.Errorf("clear order fully received: %w", err)
	}
	return nil
}
