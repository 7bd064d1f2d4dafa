package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

var _ repository.ProductionBatchRepository = (*ProductionBatchRepo)(nil)

// ProductionBatchRepo lotes de producción (usable con pool o tx).
type ProductionBatchRepo struct {
	q Querier
}

// NewProductionBatchRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewProductionBatchRepository(q Querier) *ProductionBatchRepo {
	return &ProductionBatchRepo{q: q}
}

const batchColumns = `id, item_id, planned_qty, completed_qty, status, completed_at, created_at`

// GetByID obtiene un lote por ID. Devuelve nil si no existe.
func (r *ProductionBatchRepo) GetByID(id string) (*entity.ProductionBatch, error) {
	return r.get(id, false)
}

// GetForUpdate obtiene el lote y bloquea la fila (SELECT FOR UPDATE).
func (r *ProductionBatchRepo) GetForUpdate(id string) (*entity.ProductionBatch, error) {
	return r.get(id, true)
}

func (r *ProductionBatchRepo) get(id string, forUpdate bool) (*entity.ProductionBatch, error) {
	query := `SELECT ` + batchColumns + ` FROM production_batches WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var b entity.ProductionBatch
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&b.ID, &b.ItemID, &b.PlannedQty, &b.CompletedQty, &b.Status, &b.CompletedAt, &b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get production batch: %w", err)
	}
	return &b, nil
}

// Update persiste la cantidad completada, el estado y el estampado de cierre.
func (r *ProductionBatchRepo) Update(b *entity.ProductionBatch) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE production_batches SET completed_qty = $2, status = $3, completed_at = $4 WHERE id = $1`,
		b.ID, b.CompletedQty, b.Status, b.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("update production batch: %w", err)
	}
	return nil
}
