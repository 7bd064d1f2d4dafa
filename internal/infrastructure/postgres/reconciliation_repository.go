package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

var _ repository.ReconciliationRepository = (*ReconciliationRepo)(nil)

// ReconciliationRepo sesiones de conteo físico y sus filas (usable con pool o tx).
type ReconciliationRepo struct {
	q Querier
}

// NewReconciliationRepository construye el adaptador de sesiones. Pasar pool o tx (Querier).
func NewReconciliationRepository(q Querier) *ReconciliationRepo {
	return &ReconciliationRepo{q: q}
}

// CreateSession persiste la sesión con todas sus filas.
func (r *ReconciliationRepo) CreateSession(s *entity.ReconciliationSession) error {
	_, err := r.q.Exec(context.Background(),
		`INSERT INTO reconciliation_sessions (id, status, notes, created_by, created_at, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID, s.Status, s.Notes, s.CreatedBy, s.CreatedAt, s.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("create reconciliation session: %w", err)
	}
	for i := range s.Items {
		it := &s.Items[i]
		_, err := r.q.Exec(context.Background(),
			`INSERT INTO reconciliation_items (id, session_id, item_id, system_qty, physical_qty, variance, reason, notes, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			it.ID, it.SessionID, it.ItemID, it.SystemQty, it.PhysicalQty, it.Variance, it.Reason, it.Notes, it.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("create reconciliation item: %w", err)
		}
	}
	return nil
}

// GetSession obtiene la sesión con sus filas. Devuelve nil si no existe.
func (r *ReconciliationRepo) GetSession(id string) (*entity.ReconciliationSession, error) {
	return r.getSession(id, false)
}

// GetSessionForUpdate obtiene la sesión y bloquea su fila (SELECT FOR UPDATE).
// Las filas de detalle no se bloquean: el chequeo de estado terminal ocurre
// bajo el candado de la sesión.
func (r *ReconciliationRepo) GetSessionForUpdate(id string) (*entity.ReconciliationSession, error) {
	return r.getSession(id, true)
}

func (r *ReconciliationRepo) getSession(id string, forUpdate bool) (*entity.ReconciliationSession, error) {
	query := `SELECT id, status, notes, created_by, created_at, submitted_at FROM reconciliation_sessions WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var s entity.ReconciliationSession
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&s.ID, &s.Status, &s.Notes, &s.CreatedBy, &s.CreatedAt, &s.SubmittedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reconciliation session: %w", err)
	}

	rows, err := r.q.Query(context.Background(),
		`SELECT id, session_id, item_id, system_qty, physical_qty, variance, reason, notes, updated_at
		 FROM reconciliation_items WHERE session_id = $1 ORDER BY item_id`, id)
	if err != nil {
		return nil, fmt.Errorf("list reconciliation items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.ReconciliationItem
		if err := rows.Scan(&it.ID, &it.SessionID, &it.ItemID, &it.SystemQty,
			&it.PhysicalQty, &it.Variance, &it.Reason, &it.Notes, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan reconciliation item: %w", err)
		}
		s.Items = append(s.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateItem persiste conteo físico, varianza, motivo y notas de una fila.
func (r *ReconciliationRepo) UpdateItem(it *entity.ReconciliationItem) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE reconciliation_items SET physical_qty = $2, variance = $3, reason = $4, notes = $5, updated_at = $6 WHERE id = $1`,
		it.ID, it.PhysicalQty, it.Variance, it.Reason, it.Notes, it.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update reconciliation item: %w", err)
	}
	return nil
}

// UpdateSessionStatus persiste el estado y el estampado de envío.
func (r *ReconciliationRepo) UpdateSessionStatus(s *entity.ReconciliationSession) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE reconciliation_sessions SET status = $2, submitted_at = $3 WHERE id = $1`,
		s.ID, s.Status, s.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("update reconciliation session: %w", err)
	}
	return nil
}

// DeleteSession elimina la sesión; las filas caen por ON DELETE CASCADE.
func (r *ReconciliationRepo) DeleteSession(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM reconciliation_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete reconciliation session: %w", err)
	}
	return nil
}
