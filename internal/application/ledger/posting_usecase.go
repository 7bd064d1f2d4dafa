package ledger

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	domledger "github.com/jhoicas/Kardex-api/internal/domain/ledger"
)

// undoWindow es la ventana de anulación self-service: el creador puede
// anular su propia entrada hasta 24 horas después de creada; más allá se
// exige el borrado privilegiado.
const undoWindow = 24 * time.Hour

// PostingUseCase registra movimientos del kardex (entradas y salidas) de
// forma transaccional: bloqueo de la fila de saldo, recálculo del saldo
// desde el historial completo y Commit/Rollback. Es el único camino por el
// que cambia un saldo.
type PostingUseCase struct {
	txRunner TxRunner
	notifier Notifier
	policy   domledger.NegativeBalancePolicy
	now      func() time.Time
}

// NewPostingUseCase construye el caso de uso.
func NewPostingUseCase(txRunner TxRunner, notifier Notifier, policy domledger.NegativeBalancePolicy) *PostingUseCase {
	return &PostingUseCase{
		txRunner: txRunner,
		notifier: notifier,
		policy:   policy,
		now:      time.Now,
	}
}

// PostingResult es la respuesta de toda operación que cambia saldo.
type PostingResult struct {
	TransactionID    string
	NewBalance       decimal.Decimal
	AvailableBalance decimal.Decimal
}

// PostingInput entrada para PostInward/PostOutward.
type PostingInput struct {
	ItemID      string
	Quantity    decimal.Decimal
	Reason      string
	ReferenceID *string
	Notes       string
	Location    string
	Actor       string // UserID
	// AllowNegative permite explícitamente que esta salida deje el saldo en
	// negativo, además de lo que la política por motivo ya permita.
	AllowNegative bool
}

// PostInward registra una entrada. Rechaza artículo desconocido o inactivo.
func (uc *PostingUseCase) PostInward(ctx context.Context, in PostingInput) (*PostingResult, error) {
	if in.ItemID == "" || !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	if in.Reason == "" {
		in.Reason = entity.ReasonReceived
	}
	var result *PostingResult
	err := uc.txRunner.Run(ctx, func(tx Repos) error {
		r, err := uc.PostInwardInTx(tx, in)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.notifier.ItemsChanged(ctx, []string{in.ItemID})
	return result, nil
}

// PostInwardInTx registra la entrada usando los repositorios de la
// transacción del caller (p.ej. el submit de una sesión de conteo).
func (uc *PostingUseCase) PostInwardInTx(tx Repos, in PostingInput) (*PostingResult, error) {
	item, err := tx.Items.GetByID(in.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrItemNotFound
	}
	if !item.IsActive {
		return nil, domain.ErrItemInactive
	}
	// Punto de serialización por artículo
	if _, err := tx.Balances.GetForUpdate(in.ItemID); err != nil {
		return nil, err
	}
	entry := uc.newEntry(in, entity.DirectionInward)
	if err := tx.Movements.Create(entry); err != nil {
		return nil, err
	}
	bal, err := recomputeBalance(tx, in.ItemID)
	if err != nil {
		return nil, err
	}
	return &PostingResult{TransactionID: entry.ID, NewBalance: bal.Current, AvailableBalance: bal.Available}, nil
}

// PostOutward registra una salida verificando suficiencia de stock contra el
// saldo disponible (saldo actual menos reservas de pedidos abiertos).
func (uc *PostingUseCase) PostOutward(ctx context.Context, in PostingInput) (*PostingResult, error) {
	if in.ItemID == "" || !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	if in.Reason == "" {
		return nil, domain.ErrInvalidInput
	}
	var result *PostingResult
	err := uc.txRunner.Run(ctx, func(tx Repos) error {
		r, err := uc.PostOutwardInTx(tx, in)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.notifier.ItemsChanged(ctx, []string{in.ItemID})
	return result, nil
}

// PostOutwardInTx registra la salida dentro de la transacción del caller.
// La decisión efectiva de permitir negativo es AllowNegative del caller o la
// política por motivo; por defecto la salida se rechaza.
func (uc *PostingUseCase) PostOutwardInTx(tx Repos, in PostingInput) (*PostingResult, error) {
	item, err := tx.Items.GetByID(in.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrItemNotFound
	}
	if _, err := tx.Balances.GetForUpdate(in.ItemID); err != nil {
		return nil, err
	}
	bal, err := currentBalance(tx, in.ItemID)
	if err != nil {
		return nil, err
	}
	if bal.Available.Sub(in.Quantity).IsNegative() {
		if !in.AllowNegative && !uc.policy.Allows(in.Reason) {
			if bal.Current.Sub(in.Quantity).IsNegative() {
				return nil, &domain.NegativeBalanceError{
					ItemID:    in.ItemID,
					Reason:    in.Reason,
					Resulting: bal.Current.Sub(in.Quantity),
				}
			}
			// Hay unidades físicas pero están reservadas por pedidos abiertos
			return nil, &domain.InsufficientStockError{
				ItemID:    in.ItemID,
				Available: bal.Available,
				Requested: in.Quantity,
			}
		}
	}
	entry := uc.newEntry(in, entity.DirectionOutward)
	if err := tx.Movements.Create(entry); err != nil {
		return nil, err
	}
	newBal, err := recomputeBalance(tx, in.ItemID)
	if err != nil {
		return nil, err
	}
	return &PostingResult{TransactionID: entry.ID, NewBalance: newBal.Current, AvailableBalance: newBal.Available}, nil
}

// QuickInwardItem una línea del registro rápido de entradas.
type QuickInwardItem struct {
	ItemID   string
	Quantity decimal.Decimal
}

// QuickInward registra entradas para varios artículos dentro de UNA sola
// transacción, todo-o-nada: si un artículo no existe o está inactivo no se
// escribe ningún movimiento del lote.
func (uc *PostingUseCase) QuickInward(ctx context.Context, items []QuickInwardItem, location, actor string) ([]PostingResult, error) {
	if len(items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, it := range items {
		if it.ItemID == "" || !it.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
	}
	// Orden estable de bloqueo de filas para evitar interbloqueos entre dos
	// lotes concurrentes con artículos en común.
	sorted := make([]QuickInwardItem, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ItemID < sorted[j].ItemID })

	var results []PostingResult
	changed := make([]string, 0, len(sorted))
	err := uc.txRunner.Run(ctx, func(tx Repos) error {
		for _, it := range sorted {
			r, err := uc.PostInwardInTx(tx, PostingInput{
				ItemID:   it.ItemID,
				Quantity: it.Quantity,
				Reason:   entity.ReasonReceived,
				Location: location,
				Actor:    actor,
			})
			if err != nil {
				return err
			}
			results = append(results, *r)
			changed = append(changed, it.ItemID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.notifier.ItemsChanged(ctx, changed)
	return results, nil
}

// EditInwardInput edición auditada de cantidad/notas de una entrada.
type EditInwardInput struct {
	EntryID  string
	Quantity decimal.Decimal
	Notes    string
	Actor    string
}

// EditInward edita cantidad y notas de una ENTRADA y recalcula el saldo.
// Las salidas no se editan: una salida errada se corrige con un movimiento
// compensatorio, nunca mutando el historial.
func (uc *PostingUseCase) EditInward(ctx context.Context, in EditInwardInput) (*PostingResult, error) {
	if in.EntryID == "" || !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	var result *PostingResult
	var itemID string
	err := uc.txRunner.Run(ctx, func(tx Repos) error {
		entry, err := tx.Movements.GetByID(in.EntryID)
		if err != nil {
			return err
		}
		if entry == nil {
			return domain.ErrNotFound
		}
		if entry.Direction != entity.DirectionInward {
			return domain.ErrOutwardImmutable
		}
		itemID = entry.ItemID
		if _, err := tx.Balances.GetForUpdate(entry.ItemID); err != nil {
			return err
		}
		if err := tx.Movements.UpdateEntry(entry.ID, in.Quantity, in.Notes); err != nil {
			return err
		}
		bal, err := recomputeBalance(tx, entry.ItemID)
		if err != nil {
			return err
		}
		result = &PostingResult{TransactionID: entry.ID, NewBalance: bal.Current, AvailableBalance: bal.Available}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.notifier.ItemsChanged(ctx, []string{itemID})
	return result, nil
}

// DeleteEntry elimina un movimiento revirtiendo en la misma transacción los
// efectos que la entrada financió (lote completado, línea de devolución
// procesada). Si el efecto está en estado terminal se exige force; el
// handler restringe force al rol admin.
func (uc *PostingUseCase) DeleteEntry(ctx context.Context, entryID string, force bool, actor string) (*PostingResult, error) {
	return uc.deleteEntry(ctx, entryID, force, actor, false)
}

// Undo es la anulación self-service: solo el creador de la entrada y solo
// dentro de las 24 horas siguientes a su creación, medidas contra el
// timestamp de la propia entrada.
func (uc *PostingUseCase) Undo(ctx context.Context, entryID, actor string) (*PostingResult, error) {
	return uc.deleteEntry(ctx, entryID, false, actor, true)
}

func (uc *PostingUseCase) deleteEntry(ctx context.Context, entryID string, force bool, actor string, selfService bool) (*PostingResult, error) {
	if entryID == "" {
		return nil, domain.ErrInvalidInput
	}
	var result *PostingResult
	var itemID string
	err := uc.txRunner.Run(ctx, func(tx Repos) error {
		entry, err := tx.Movements.GetByID(entryID)
		if err != nil {
			return err
		}
		if entry == nil {
			return domain.ErrNotFound
		}
		if selfService {
			if entry.CreatedBy != actor {
				return domain.ErrForbidden
			}
			if uc.now().Sub(entry.CreatedAt) > undoWindow {
				return domain.ErrUndoWindow
			}
		}
		itemID = entry.ItemID
		if _, err := tx.Balances.GetForUpdate(entry.ItemID); err != nil {
			return err
		}
		if err := revertDownstream(tx, entry, force); err != nil {
			return err
		}
		if err := tx.Movements.Delete(entry.ID); err != nil {
			return err
		}
		bal, err := recomputeBalance(tx, entry.ItemID)
		if err != nil {
			return err
		}
		result = &PostingResult{TransactionID: entry.ID, NewBalance: bal.Current, AvailableBalance: bal.Available}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.notifier.ItemsChanged(ctx, []string{itemID})
	return result, nil
}

// BalanceOf devuelve el saldo actual y disponible de un artículo. Lectura
// sin bloqueo: los reportes no necesitan el aislamiento de las escrituras.
func (uc *PostingUseCase) BalanceOf(ctx context.Context, itemID string) (*domledger.Balance, error) {
	var bal domledger.Balance
	err := uc.txRunner.Run(ctx, func(tx Repos) error {
		item, err := tx.Items.GetByID(itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrItemNotFound
		}
		b, err := currentBalance(tx, itemID)
		if err != nil {
			return err
		}
		bal = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &bal, nil
}

// ListEntries lista el historial de un artículo.
func (uc *PostingUseCase) ListEntries(ctx context.Context, itemID string, from, to *time.Time, limit, offset int) ([]*entity.MovementEntry, error) {
	var entries []*entity.MovementEntry
	err := uc.txRunner.Run(ctx, func(tx Repos) error {
		item, err := tx.Items.GetByID(itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrItemNotFound
		}
		entries, err = tx.Movements.ListByItem(itemID, from, to, limit, offset)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (uc *PostingUseCase) newEntry(in PostingInput, direction string) *entity.MovementEntry {
	return &entity.MovementEntry{
		ID:          uuid.New().String(),
		ItemID:      in.ItemID,
		Direction:   direction,
		Quantity:    in.Quantity,
		Reason:      in.Reason,
		ReferenceID: in.ReferenceID,
		Notes:       in.Notes,
		Location:    in.Location,
		CreatedBy:   in.Actor,
		CreatedAt:   uc.now(),
	}
}

// currentBalance deriva el saldo desde el historial completo más la reserva
// externa, sin tocar la fila materializada.
func currentBalance(tx Repos, itemID string) (domledger.Balance, error) {
	inward, outward, err := tx.Movements.SumByDirection(itemID)
	if err != nil {
		return domledger.Balance{}, err
	}
	reserved, err := tx.Reservations.ReservedQty(itemID)
	if err != nil {
		return domledger.Balance{}, err
	}
	return domledger.FromSums(inward, outward, reserved), nil
}

// recomputeBalance deriva el saldo desde el historial completo y persiste la
// fila materializada dentro de la misma transacción que escribió el
// movimiento. La fila es caché de lectura, nunca fuente de verdad.
func recomputeBalance(tx Repos, itemID string) (domledger.Balance, error) {
	bal, err := currentBalance(tx, itemID)
	if err != nil {
		return domledger.Balance{}, err
	}
	if err := tx.Balances.Upsert(itemID, bal.Current); err != nil {
		return domledger.Balance{}, err
	}
	return bal, nil
}

// revertDownstream deshace, dentro de la transacción del borrado, el efecto
// que la entrada causó en su documento origen. Efecto en estado terminal
// (lote completado, línea ya procesada) exige force.
func revertDownstream(tx Repos, entry *entity.MovementEntry, force bool) error {
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
		if batch.Status == entity.BatchStatusCompleted && !force {
			return domain.ErrLinkedEffect
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
		if line.Processed && !force {
			return domain.ErrLinkedEffect
		}
		line.ClearProcessed()
		if err := tx.Returns.UpdateLine(line); err != nil {
			return err
		}
		// El pedido ya no está totalmente recibido
		return tx.Returns.ClearOrderFullyReceived(line.OrderID)
	}
	return nil
}
