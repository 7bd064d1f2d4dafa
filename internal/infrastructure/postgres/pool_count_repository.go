package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

var _ repository.PoolCountRepository = (*PoolCountRepo)(nil)

// PoolCountRepo conteos sueltos del pool (usable con pool o tx).
type PoolCountRepo struct {
	q Querier
}

// NewPoolCountRepository construye el adaptador de conteos. Pasar pool o tx (Querier).
func NewPoolCountRepository(q Querier) *PoolCountRepo {
	return &PoolCountRepo{q: q}
}

const poolCountColumns = `id, item_id, system_qty, counted_qty, status, notes, counted_by, created_at, reviewed_by, reviewed_at`

// Create persiste un conteo pendiente.
func (r *PoolCountRepo) Create(c *entity.PoolCount) error {
	query := `
		INSERT INTO pool_counts (` + poolCountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	reviewedBy := (*string)(nil)
	if c.ReviewedBy != "" {
		reviewedBy = &c.ReviewedBy
	}
	_, err := r.q.Exec(context.Background(), query,
		c.ID, c.ItemID, c.SystemQty, c.CountedQty, c.Status, c.Notes,
		c.CountedBy, c.CreatedAt, reviewedBy, c.ReviewedAt,
	)
	if err != nil {
		return fmt.Errorf("create pool count: %w", err)
	}
	return nil
}

// GetByID obtiene un conteo por ID. Devuelve nil si no existe.
func (r *PoolCountRepo) GetByID(id string) (*entity.PoolCount, error) {
	return r.get(id, false)
}

// GetForUpdate obtiene el conteo y bloquea la fila (SELECT FOR UPDATE).
func (r *PoolCountRepo) GetForUpdate(id string) (*entity.PoolCount, error) {
	return r.get(id, true)
}

func (r *PoolCountRepo) get(id string, forUpdate bool) (*entity.PoolCount, error) {
	query := `SELECT ` + poolCountColumns + ` FROM pool_counts WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	c, err := scanPoolCount(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get pool count: %w", err)
	}
	return c, nil
}

// Update persiste el estado y los datos de revisión.
func (r *PoolCountRepo) Update(c *entity.PoolCount) error {
	reviewedBy := (*string)(nil)
	if c.ReviewedBy != "" {
		reviewedBy = &c.ReviewedBy
	}
	_, err := r.q.Exec(context.Background(),
		`UPDATE pool_counts SET status = $2, reviewed_by = $3, reviewed_at = $4 WHERE id = $1`,
		c.ID, c.Status, reviewedBy, c.ReviewedAt,
	)
	if err != nil {
		return fmt.Errorf("update pool count: %w", err)
	}
	return nil
}

// ListPending lista los conteos pendientes, más antiguo primero (orden de llegada).
func (r *PoolCountRepo) ListPending(limit, offset int) ([]*entity.PoolCount, error) {
	query := `SELECT ` + poolCountColumns + ` FROM pool_counts WHERE status = 'pending'
		ORDER BY created_at LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list pending counts: %w", err)
	}
	defer rows.Close()
	var list []*entity.PoolCount
	for rows.Next() {
		c, err := scanPoolCount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pool count: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func scanPoolCount(row pgx.Row) (*entity.PoolCount, error) {
	var c entity.PoolCount
	var reviewedBy *string
	err := row.Scan(&c.ID, &c.ItemID, &c.SystemQty, &c.CountedQty, &c.Status,
		&c.Notes, &c.CountedBy, &c.CreatedAt, &reviewedBy, &c.ReviewedAt)
	if err != nil {
		return nil, err
	}
	if reviewedBy != nil {
		c.ReviewedBy = *reviewedBy
	}
	return &c, nil
}
