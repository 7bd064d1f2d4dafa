package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	domledger "github.com/jhoicas/Kardex-api/internal/domain/ledger"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// AllocationUseCase (re)asigna una entrada sin asignar o ya asignada a su
// documento origen: lote de producción, línea de devolución (RTO) o ajuste
// manual. El orden es sagrado: primero se revierte el efecto de la
// asignación anterior, después se aplica la nueva. La asignación nunca es
// aditiva entre reasignaciones (nada de contar dos veces la cantidad
// completada de un lote).
type AllocationUseCase struct {
	txRunner TxRunner
	notifier Notifier
	now      func() time.Time
}

// NewAllocationUseCase construye el caso de uso.
func NewAllocationUseCase(txRunner TxRunner, notifier Notifier) *AllocationUseCase {
	return &AllocationUseCase{txRunner: txRunner, notifier: notifier, now: time.Now}
}

// AllocationResult asignación resultante tras aplicar el cambio.
type AllocationResult struct {
	EntryDeleted bool // true cuando una devolución no vendible eliminó la entrada
	Reason       string
	ReferenceID  *string
	NewBalance   domledger.Balance
}

// Allocate aplica la variante de destino sobre la entrada. Cada rama termina
// recalculando el saldo y notificando los artículos afectados.
func (uc *AllocationUseCase) Allocate(ctx context.Context, entryID string, target domledger.AllocationTarget, actor string) (*AllocationResult, error) {
	if entryID == "" || target == nil {
		return nil, domain.ErrInvalidInput
	}
	var result *AllocationResult
	var itemID string
	err := uc.txRunner.Run(ctx, func(tx Repos) error {
		entry, err := tx.Movements.GetByID(entryID)
		if err != nil {
			return err
		}
		if entry == nil {
			return domain.ErrNotFound
		}
		if entry.Direction != entity.DirectionInward {
			return domain.ErrInvalidInput
		}
		itemID = entry.ItemID
		if _, err := tx.Balances.GetForUpdate(entry.ItemID); err != nil {
			return err
		}
		// 1) revertir la asignación anterior
		if err := uc.revertCurrent(tx, entry); err != nil {
			return err
		}
		// 2) aplicar la nueva
		result, err = uc.apply(tx, entry, target, actor)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.notifier.ItemsChanged(ctx, []string{itemID})
	return result, nil
}

// revertCurrent deshace el efecto que la asignación vigente tuvo sobre su
// documento: descuenta la cantidad completada del lote (degradando estado) o
// limpia los marcadores de recepción de la línea devuelta.
func (uc *AllocationUseCase) revertCurrent(tx Repos, entry *entity.MovementEntry) error {
	if !entry.IsAllocated() {
		return nil
	}
	switch entry.Reason {
	case entity.ReasonProduction:
		if entry.ReferenceID == nil {
			return nil
		}
		batch, err := tx.Batches.GetForUpdate(*entry.ReferenceID)
		if err != nil {
			return err
		}
		if batch == nil {
			return nil
		}
		batch.Debit(entry.Quantity)
		return tx.Batches.Update(batch)
	case entity.ReasonRtoReceived:
		line, err := tx.Returns.FindLineByEntry(entry.ID)
		if err != nil {
			return err
		}
		if line == nil {
			return nil
		}
		line.ClearProcessed()
		if err := tx.Returns.UpdateLine(line); err != nil {
			return err
		}
		return tx.Returns.ClearOrderFullyReceived(line.OrderID)
	}
	// adjustment o received: sin efectos externos que revertir
	return nil
}

func (uc *AllocationUseCase) apply(tx Repos, entry *entity.MovementEntry, target domledger.AllocationTarget, actor string) (*AllocationResult, error) {
	switch t := target.(type) {
	case domledger.ProductionTarget:
		return uc.applyProduction(tx, entry, t)
	case domledger.RtoTarget:
		return uc.applyRto(tx, entry, t, actor)
	case domledger.AdjustmentTarget:
		return uc.applyAdjustment(tx, entry)
	}
	return nil, domain.ErrInvalidInput
}

// applyProduction acredita la cantidad de la entrada al lote (tope en la
// cantidad planificada) y graba motivo/referencia en la entrada.
func (uc *AllocationUseCase) applyProduction(tx Repos, entry *entity.MovementEntry, t domledger.ProductionTarget) (*AllocationResult, error) {
	batch, err := tx.Batches.GetForUpdate(t.BatchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, domain.ErrNotFound
	}
	if batch.ItemID != entry.ItemID {
		return nil, domain.ErrInvalidInput
	}
	batch.Credit(entry.Quantity, uc.now())
	if err := tx.Batches.Update(batch); err != nil {
		return nil, err
	}
	ref := t.BatchID
	if err := tx.Movements.UpdateAllocation(entry.ID, entity.ReasonProduction, &ref); err != nil {
		return nil, err
	}
	bal, err := recomputeBalance(tx, entry.ItemID)
	if err != nil {
		return nil, err
	}
	return &AllocationResult{Reason: entity.ReasonProduction, ReferenceID: &ref, NewBalance: bal}, nil
}

// applyRto asigna la entrada a una línea devuelta. Condición vendible:
// relabel de motivo/referencia. Condición no vendible: la entrada se elimina
// (la unidad no vuelve al inventario) y queda una baja auditable; la línea
// se procesa igual.
func (uc *AllocationUseCase) applyRto(tx Repos, entry *entity.MovementEntry, t domledger.RtoTarget, actor string) (*AllocationResult, error) {
	line, err := tx.Returns.GetLineForUpdate(t.LineID)
	if err != nil {
		return nil, err
	}
	if line == nil {
		return nil, domain.ErrNotFound
	}
	if line.ItemID != entry.ItemID {
		return nil, domain.ErrInvalidInput
	}
	if line.Processed {
		return nil, domain.ErrConflict
	}
	now := uc.now()
	result := &AllocationResult{Reason: entity.ReasonRtoReceived}

	if entity.SellableCondition(t.Condition) {
		ref := t.LineID
		if err := tx.Movements.UpdateAllocation(entry.ID, entity.ReasonRtoReceived, &ref); err != nil {
			return nil, err
		}
		entryID := entry.ID
		line.MarkProcessed(t.Condition, &entryID, now)
		result.ReferenceID = &ref
	} else {
		// Unidad dañada o equivocada: no entra al inventario vendible
		if err := tx.Movements.Delete(entry.ID); err != nil {
			return nil, err
		}
		if err := tx.WriteOffs.Create(&repository.WriteOff{
			ID:           uuid.New().String(),
			ItemID:       entry.ItemID,
			Quantity:     entry.Quantity,
			Condition:    t.Condition,
			ReturnLineID: line.ID,
			Notes:        entry.Notes,
			CreatedBy:    actor,
			CreatedAt:    now,
		}); err != nil {
			return nil, err
		}
		line.MarkProcessed(t.Condition, nil, now)
		result.EntryDeleted = true
	}
	if err := tx.Returns.UpdateLine(line); err != nil {
		return nil, err
	}
	// Con la última línea procesada, el pedido queda totalmente recibido
	pending, err := tx.Returns.CountUnprocessed(line.OrderID)
	if err != nil {
		return nil, err
	}
	if pending == 0 {
		if err := tx.Returns.MarkOrderFullyReceived(line.OrderID, now); err != nil {
			return nil, err
		}
	}
	bal, err := recomputeBalance(tx, entry.ItemID)
	if err != nil {
		return nil, err
	}
	result.NewBalance = bal
	return result, nil
}

// applyAdjustment deja la entrada como ajuste manual sin documento origen.
func (uc *AllocationUseCase) applyAdjustment(tx Repos, entry *entity.MovementEntry) (*AllocationResult, error) {
	if err := tx.Movements.UpdateAllocation(entry.ID, entity.ReasonAdjustment, nil); err != nil {
		return nil, err
	}
	bal, err := recomputeBalance(tx, entry.ItemID)
	if err != nil {
		return nil, err
	}
	return &AllocationResult{Reason: entity.ReasonAdjustment, NewBalance: bal}, nil
}
