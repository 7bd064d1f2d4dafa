package reconciliation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appledger "github.com/jhoicas/Kardex-api/internal/application/ledger"
	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	domledger "github.com/jhoicas/Kardex-api/internal/domain/ledger"
)

// SessionUseCase maneja el ciclo de vida de una sesión de conteo físico:
// draft --submit--> submitted (terminal), draft --discard--> discarded
// (terminal). No hay transición que salga de un estado terminal.
type SessionUseCase struct {
	txRunner appledger.TxRunner
	posting  *appledger.PostingUseCase
	notifier appledger.Notifier
	now      func() time.Time
}

// NewSessionUseCase construye el caso de uso.
func NewSessionUseCase(txRunner appledger.TxRunner, posting *appledger.PostingUseCase, notifier appledger.Notifier) *SessionUseCase {
	return &SessionUseCase{txRunner: txRunner, posting: posting, notifier: notifier, now: time.Now}
}

// Start crea una sesión draft con una fila por artículo activo, congelando
// el saldo de sistema de cada uno en ese instante.
func (uc *SessionUseCase) Start(ctx context.Context, notes, actor string) (*entity.ReconciliationSession, error) {
	var session *entity.ReconciliationSession
	err := uc.txRunner.Run(ctx, func(tx appledger.Repos) error {
		items, err := tx.Items.ListActive()
		if err != nil {
			return err
		}
		now := uc.now()
		s := &entity.ReconciliationSession{
			ID:        uuid.New().String(),
			Status:    entity.ReconciliationDraft,
			Notes:     notes,
			CreatedBy: actor,
			CreatedAt: now,
		}
		for _, it := range items {
			inward, outward, err := tx.Movements.SumByDirection(it.ID)
			if err != nil {
				return err
			}
			s.Items = append(s.Items, entity.ReconciliationItem{
				ID:        uuid.New().String(),
				SessionID: s.ID,
				ItemID:    it.ID,
				SystemQty: inward.Sub(outward),
				UpdatedAt: now,
			})
		}
		if err := tx.Reconciliations.CreateSession(s); err != nil {
			return err
		}
		session = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// ItemUpdate conteo digitado para una fila de la sesión.
type ItemUpdate struct {
	ItemRowID   string
	PhysicalQty decimal.Decimal
	Reason      string
	Notes       string
}

// UpdateItems guarda conteos físicos mientras la sesión siga en draft.
// Varios digitadores pueden trabajar a la vez: última escritura gana por
// fila, la sesión completa no se bloquea.
func (uc *SessionUseCase) UpdateItems(ctx context.Context, sessionID string, updates []ItemUpdate, actor string) error {
	if sessionID == "" || len(updates) == 0 {
		return domain.ErrInvalidInput
	}
	return uc.txRunner.Run(ctx, func(tx appledger.Repos) error {
		session, err := tx.Reconciliations.GetSession(sessionID)
		if err != nil {
			return err
		}
		if session == nil {
			return domain.ErrNotFound
		}
		if !session.IsDraft() {
			return domain.ErrTerminalState
		}
		rows := make(map[string]*entity.ReconciliationItem, len(session.Items))
		for i := range session.Items {
			rows[session.Items[i].ID] = &session.Items[i]
		}
		now := uc.now()
		for _, u := range updates {
			row, ok := rows[u.ItemRowID]
			if !ok {
				return domain.ErrNotFound
			}
			physical := u.PhysicalQty
			variance := domledger.Variance(physical, row.SystemQty)
			row.PhysicalQty = &physical
			row.Variance = &variance
			row.Reason = u.Reason
			row.Notes = u.Notes
			row.UpdatedAt = now
			if err := tx.Reconciliations.UpdateItem(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// Submit emite un ajuste por cada fila con varianza fuera de tolerancia
// (entrada si sobra, salida si falta) con motivo stock_count_adjustment y la
// sesión como referencia, y deja la sesión en submitted. Idempotente ante
// reintentos: un segundo submit ve el estado terminal y falla sin postear.
func (uc *SessionUseCase) Submit(ctx context.Context, sessionID, actor string) (*entity.ReconciliationSession, error) {
	if sessionID == "" {
		return nil, domain.ErrInvalidInput
	}
	var session *entity.ReconciliationSession
	var changed []string
	err := uc.txRunner.Run(ctx, func(tx appledger.Repos) error {
		s, err := tx.Reconciliations.GetSessionForUpdate(sessionID)
		if err != nil {
			return err
		}
		if s == nil {
			return domain.ErrNotFound
		}
		if !s.IsDraft() {
			return domain.ErrTerminalState
		}
		for i := range s.Items {
			row := &s.Items[i]
			if row.PhysicalQty == nil || row.Variance == nil {
				continue
			}
			if domledger.IsZeroVariance(*row.Variance) {
				continue
			}
			if err := postVariance(uc.posting, tx, row.ItemID, *row.Variance, s.ID, row.Notes, actor); err != nil {
				return err
			}
			changed = append(changed, row.ItemID)
		}
		now := uc.now()
		s.Status = entity.ReconciliationSubmitted
		s.SubmittedAt = &now
		if err := tx.Reconciliations.UpdateSessionStatus(s); err != nil {
			return err
		}
		session = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(changed) > 0 {
		uc.notifier.ItemsChanged(ctx, changed)
	}
	return session, nil
}

// Discard transiciona draft→discarded sin emitir ningún movimiento.
func (uc *SessionUseCase) Discard(ctx context.Context, sessionID, actor string) error {
	if sessionID == "" {
		return domain.ErrInvalidInput
	}
	return uc.txRunner.Run(ctx, func(tx appledger.Repos) error {
		s, err := tx.Reconciliations.GetSessionForUpdate(sessionID)
		if err != nil {
			return err
		}
		if s == nil {
			return domain.ErrNotFound
		}
		if !s.IsDraft() {
			return domain.ErrTerminalState
		}
		s.Status = entity.ReconciliationDiscarded
		return tx.Reconciliations.UpdateSessionStatus(s)
	})
}

// Delete elimina una sesión draft con sus filas, sin efectos colaterales.
func (uc *SessionUseCase) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return domain.ErrInvalidInput
	}
	return uc.txRunner.Run(ctx, func(tx appledger.Repos) error {
		s, err := tx.Reconciliations.GetSessionForUpdate(sessionID)
		if err != nil {
			return err
		}
		if s == nil {
			return domain.ErrNotFound
		}
		if !s.IsDraft() {
			return domain.ErrTerminalState
		}
		return tx.Reconciliations.DeleteSession(sessionID)
	})
}

// Get devuelve la sesión con sus filas.
func (uc *SessionUseCase) Get(ctx context.Context, sessionID string) (*entity.ReconciliationSession, error) {
	var session *entity.ReconciliationSession
	err := uc.txRunner.Run(ctx, func(tx appledger.Repos) error {
		s, err := tx.Reconciliations.GetSession(sessionID)
		if err != nil {
			return err
		}
		if s == nil {
			return domain.ErrNotFound
		}
		session = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}
