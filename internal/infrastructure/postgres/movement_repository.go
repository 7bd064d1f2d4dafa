package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación del kardex sobre PostgreSQL (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, item_id, direction, quantity, reason, reference_id, notes, location, created_by, created_at`

// Create persiste una entrada del kardex.
func (r *MovementRepo) Create(m *entity.MovementEntry) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO movement_entries (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		m.ID, m.ItemID, m.Direction, m.Quantity, m.Reason,
		m.ReferenceID, m.Notes, m.Location, m.CreatedBy, m.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create movement entry: %w", err)
	}
	return nil
}

// GetByID obtiene una entrada por ID. Devuelve nil si no existe.
func (r *MovementRepo) GetByID(id string) (*entity.MovementEntry, error) {
	query := `SELECT ` + movementColumns + ` FROM movement_entries WHERE id = $1`
	m, err := scanMovement(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement entry: %w", err)
	}
	return m, nil
}

// ListByItem lista el historial de un artículo en un rango de fechas,
// más reciente primero.
func (r *MovementRepo) ListByItem(itemID string, from, to *time.Time, limit, offset int) ([]*entity.MovementEntry, error) {
	query := `SELECT ` + movementColumns + ` FROM movement_entries WHERE item_id = $1`
	args := []any{itemID}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list by item: %w", err)
	}
	defer rows.Close()
	var list []*entity.MovementEntry
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement entry: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// SumByDirection agrega el historial completo del artículo por dirección.
// COALESCE cubre el artículo sin movimientos (ambas sumas en cero).
func (r *MovementRepo) SumByDirection(itemID string) (inward, outward decimal.Decimal, err error) {
	query := `
		SELECT
			COALESCE(SUM(quantity) FILTER (WHERE direction = 'inward'), 0),
			COALESCE(SUM(quantity) FILTER (WHERE direction = 'outward'), 0)
		FROM movement_entries WHERE item_id = $1`
	err = r.q.QueryRow(context.Background(), query, itemID).Scan(&inward, &outward)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("sum by direction: %w", err)
	}
	return inward, outward, nil
}

// UpdateEntry persiste la edición auditada de cantidad y notas.
func (r *MovementRepo) UpdateEntry(id string, quantity decimal.Decimal, notes string) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE movement_entries SET quantity = $2, notes = $3 WHERE id = $1`,
		id, quantity, notes,
	)
	if err != nil {
		return fmt.Errorf("update movement entry: %w", err)
	}
	return nil
}

// UpdateAllocation persiste el par motivo/referencia durante la (re)asignación.
func (r *MovementRepo) UpdateAllocation(id string, reason string, referenceID *string) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE movement_entries SET reason = $2, reference_id = $3 WHERE id = $1`,
		id, reason, referenceID,
	)
	if err != nil {
		return fmt.Errorf("update allocation: %w", err)
	}
	return nil
}

// Delete elimina una entrada por ID.
func (r *MovementRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM movement_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete movement entry: %w", err)
	}
	return nil
}

func scanMovement(row pgx.Row) (*entity.MovementEntry, error) {
	var m entity.MovementEntry
	err := row.Scan(&m.ID, &m.ItemID, &m.Direction, &m.Quantity, &m.Reason,
		&m.ReferenceID, &m.Notes, &m.Location, &m.CreatedBy, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
