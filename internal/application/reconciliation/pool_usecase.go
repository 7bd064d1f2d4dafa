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

// PoolUseCase es la variante ligera de conteo: el personal envía conteos
// sueltos por artículo (pending) sin agrupar en sesión, y un revisor los
// aprueba o descarta por lotes. Cada conteo se concilia por separado, pero
// un apply procesa todo su lote dentro de UNA transacción.
type PoolUseCase struct {
	txRunner appledger.TxRunner
	posting  *appledger.PostingUseCase
	notifier appledger.Notifier
	now      func() time.Time
}

// NewPoolUseCase construye el caso de uso.
func NewPoolUseCase(txRunner appledger.TxRunner, posting *appledger.PostingUseCase, notifier appledger.Notifier) *PoolUseCase {
	return &PoolUseCase{txRunner: txRunner, posting: posting, notifier: notifier, now: time.Now}
}

// SubmitCount registra un conteo físico individual en estado pending,
// congelando el saldo de sistema del momento como referencia para el revisor.
func (uc *PoolUseCase) SubmitCount(ctx context.Context, itemID string, countedQty decimal.Decimal, notes, actor string) (*entity.PoolCount, error) {
	if itemID == "" || countedQty.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	var count *entity.PoolCount
	err := uc.txRunner.Run(ctx, func(tx appledger.Repos) error {
		item, err := tx.Items.GetByID(itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrItemNotFound
		}
		if !item.IsActive {
			return domain.ErrItemInactive
		}
		inward, outward, err := tx.Movements.SumByDirection(itemID)
		if err != nil {
			return err
		}
		c := &entity.PoolCount{
			ID:         uuid.New().String(),
			ItemID:     itemID,
			SystemQty:  inward.Sub(outward),
			CountedQty: countedQty,
			Status:     entity.PoolCountPending,
			Notes:      notes,
			CountedBy:  actor,
			CreatedAt:  uc.now(),
		}
		if err := tx.PoolCounts.Create(c); err != nil {
			return err
		}
		count = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return count, nil
}

// ApplyCounts aprueba un lote de conteos pendientes dentro de una sola
// transacción: cada uno genera su ajuste de varianza y pasa a applied. La
// varianza se recalcula contra el saldo vigente al momento del apply (no
// contra el congelado al contar): conciliar significa dejar el saldo igual
// al conteo físico. Un ID desconocido aborta el lote completo; un conteo ya
// resuelto se omite sin error para que el reintento del revisor sea inocuo.
func (uc *PoolUseCase) ApplyCounts(ctx context.Context, ids []string, reviewer string) ([]*entity.PoolCount, error) {
	if len(ids) == 0 {
		return nil, domain.ErrInvalidInput
	}
	var applied []*entity.PoolCount
	var changed []string
	err := uc.txRunner.Run(ctx, func(tx appledger.Repos) error {
		now := uc.now()
		for _, id := range ids {
			c, err := tx.PoolCounts.GetForUpdate(id)
			if err != nil {
				return err
			}
			if c == nil {
				return domain.ErrNotFound
			}
			if c.Status != entity.PoolCountPending {
				continue
			}
			// El lock por artículo va ANTES de sumar el histórico: bajo
			// READ COMMITTED un posting concurrente podría comprometerse
			// entre la suma y el lock y dejar el ajuste desfasado.
			if _, err := tx.Balances.GetForUpdate(c.ItemID); err != nil {
				return err
			}
			inward, outward, err := tx.Movements.SumByDirection(c.ItemID)
			if err != nil {
				return err
			}
			variance := domledger.Variance(c.CountedQty, inward.Sub(outward))
			if !domledger.IsZeroVariance(variance) {
				if err := postVariance(uc.posting, tx, c.ItemID, variance, c.ID, c.Notes, reviewer); err != nil {
					return err
				}
				changed = append(changed, c.ItemID)
			}
			c.Status = entity.PoolCountApplied
			c.ReviewedBy = reviewer
			c.ReviewedAt = &now
			if err := tx.PoolCounts.Update(c); err != nil {
				return err
			}
			applied = append(applied, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(changed) > 0 {
		uc.notifier.ItemsChanged(ctx, changed)
	}
	return applied, nil
}

// DiscardCounts marca los conteos como descartados sin emitir movimientos.
func (uc *PoolUseCase) DiscardCounts(ctx context.Context, ids []string, reviewer string) error {
	if len(ids) == 0 {
		return domain.ErrInvalidInput
	}
	return uc.txRunner.Run(ctx, func(tx appledger.Repos) error {
		now := uc.now()
		for _, id := range ids {
			c, err := tx.PoolCounts.GetForUpdate(id)
			if err != nil {
				return err
			}
			if c == nil {
				return domain.ErrNotFound
			}
			if c.Status != entity.PoolCountPending {
				continue
			}
			c.Status = entity.PoolCountDiscarded
			c.ReviewedBy = reviewer
			c.ReviewedAt = &now
			if err := tx.PoolCounts.Update(c); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListPending lista los conteos pendientes de revisión.
func (uc *PoolUseCase) ListPending(ctx context.Context, limit, offset int) ([]*entity.PoolCount, error) {
	var counts []*entity.PoolCount
	err := uc.txRunner.Run(ctx, func(tx appledger.Repos) error {
		var err error
		counts, err = tx.PoolCounts.ListPending(limit, offset)
		return err
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}
