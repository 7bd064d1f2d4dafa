package ledger

import (
	"context"

	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// Repos agrupa los repositorios atados a una misma transacción de BD.
// TxRunner los construye sobre la tx y los pasa al callback; fuera del
// callback no deben usarse.
type Repos struct {
	Movements       repository.MovementRepository
	Items           repository.ItemRepository
	Balances        repository.BalanceRepository
	Reservations    repository.ReservationRepository
	Batches         repository.ProductionBatchRepository
	Returns         repository.ReturnRepository
	WriteOffs       repository.WriteOffRepository
	Reconciliations repository.ReconciliationRepository
	PoolCounts      repository.PoolCountRepository
}

// TxRunner ejecuta fn dentro de una transacción de BD con Commit/Rollback.
// Toda operación que cambie saldos corre completa dentro de una sola
// transacción: la lectura del estado previo y la escritura del nuevo quedan
// aisladas de operaciones concurrentes sobre el mismo artículo.
type TxRunner interface {
	Run(ctx context.Context, fn func(tx Repos) error) error
}

// Notifier recibe los IDs de artículos cuyo saldo cambió. Se invoca después
// del Commit y es best-effort: un fallo de notificación no revierte nada.
type Notifier interface {
	ItemsChanged(ctx context.Context, itemIDs []string)
}
