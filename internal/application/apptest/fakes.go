// Package apptest provee dobles en memoria de los puertos de persistencia
// para probar los casos de uso sin PostgreSQL. El TxRunner falso respeta la
// semántica todo-o-nada: si el callback falla, el estado vuelve al snapshot
// previo, igual que un Rollback.
package apptest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	appledger "github.com/jhoicas/Kardex-api/internal/application/ledger"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// Store es el estado compartido de todos los repos falsos.
// Los getters devuelven copias y los updates reemplazan el valor completo,
// así el snapshot/restore del TxRunner es una copia superficial de mapas.
type Store struct {
	mu sync.Mutex

	Items       map[string]*entity.Item
	Movements   map[string]*entity.MovementEntry
	Balances    map[string]decimal.Decimal
	Reserved    map[string]decimal.Decimal
	Batches     map[string]*entity.ProductionBatch
	ReturnLines map[string]*entity.ReturnLine
	// OrderReceived registra el estampado "totalmente recibido" por pedido.
	OrderReceived map[string]time.Time
	WriteOffs     []*repository.WriteOff
	Sessions      map[string]*entity.ReconciliationSession
	PoolCounts    map[string]*entity.PoolCount

	// BalanceLocks registra cada GetForUpdate sobre el saldo, en orden.
	// Es observacional: no participa del snapshot/restore.
	BalanceLocks []string
}

// NewStore crea un estado vacío.
func NewStore() *Store {
	return &Store{
		Items:         map[string]*entity.Item{},
		Movements:     map[string]*entity.MovementEntry{},
		Balances:      map[string]decimal.Decimal{},
		Reserved:      map[string]decimal.Decimal{},
		Batches:       map[string]*entity.ProductionBatch{},
		ReturnLines:   map[string]*entity.ReturnLine{},
		OrderReceived: map[string]time.Time{},
		Sessions:      map[string]*entity.ReconciliationSession{},
		PoolCounts:    map[string]*entity.PoolCount{},
	}
}

// Repos arma el bundle de repos falsos sobre el estado.
func (s *Store) Repos() appledger.Repos {
	return appledger.Repos{
		Movements:       &movementRepo{s},
		Items:           &itemRepo{s},
		Balances:        &balanceRepo{s},
		Reservations:    &reservationRepo{s},
		Batches:         &batchRepo{s},
		Returns:         &returnRepo{s},
		WriteOffs:       &writeOffRepo{s},
		Reconciliations: &reconciliationRepo{s},
		PoolCounts:      &poolCountRepo{s},
	}
}

func (s *Store) snapshot() *Store {
	cp := NewStore()
	for k, v := range s.Items {
		cp.Items[k] = v
	}
	for k, v := range s.Movements {
		cp.Movements[k] = v
	}
	for k, v := range s.Balances {
		cp.Balances[k] = v
	}
	for k, v := range s.Reserved {
		cp.Reserved[k] = v
	}
	for k, v := range s.Batches {
		cp.Batches[k] = v
	}
	for k, v := range s.ReturnLines {
		cp.ReturnLines[k] = v
	}
	for k, v := range s.OrderReceived {
		cp.OrderReceived[k] = v
	}
	cp.WriteOffs = append([]*repository.WriteOff(nil), s.WriteOffs...)
	for k, v := range s.Sessions {
		cp.Sessions[k] = v
	}
	for k, v := range s.PoolCounts {
		cp.PoolCounts[k] = v
	}
	return cp
}

func (s *Store) restore(from *Store) {
	s.Items = from.Items
	s.Movements = from.Movements
	s.Balances = from.Balances
	s.Reserved = from.Reserved
	s.Batches = from.Batches
	s.ReturnLines = from.ReturnLines
	s.OrderReceived = from.OrderReceived
	s.WriteOffs = from.WriteOffs
	s.Sessions = from.Sessions
	s.PoolCounts = from.PoolCounts
}

// TxRunner ejecuta el callback contra el Store con rollback en error.
type TxRunner struct {
	Store *Store
}

// Run implementa appledger.TxRunner.
func (r *TxRunner) Run(_ context.Context, fn func(tx appledger.Repos) error) error {
	r.Store.mu.Lock()
	defer r.Store.mu.Unlock()
	backup := r.Store.snapshot()
	if err := fn(r.Store.Repos()); err != nil {
		r.Store.restore(backup)
		return err
	}
	return nil
}

// Notifier acumula las notificaciones emitidas para poder afirmarlas.
type Notifier struct {
	mu      sync.Mutex
	Batches [][]string
}

// ItemsChanged implementa appledger.Notifier.
func (n *Notifier) ItemsChanged(_ context.Context, itemIDs []string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Batches = append(n.Batches, append([]string(nil), itemIDs...))
}

// All devuelve todos los IDs notificados, aplanados.
func (n *Notifier) All() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var all []string
	for _, b := range n.Batches {
		all = append(all, b...)
	}
	return all
}

// ──────────────────────────────────────────────────────────────────────────────
// Repos falsos
// ──────────────────────────────────────────────────────────────────────────────

type itemRepo struct{ s *Store }

func (r *itemRepo) GetByID(id string) (*entity.Item, error) {
	it, ok := r.s.Items[id]
	if !ok {
		return nil, nil
	}
	cp := *it
	return &cp, nil
}

func (r *itemRepo) ListActive() ([]*entity.Item, error) {
	var out []*entity.Item
	for _, it := range r.s.Items {
		if it.IsActive {
			cp := *it
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type movementRepo struct{ s *Store }

func (r *movementRepo) Create(m *entity.MovementEntry) error {
	cp := *m
	r.s.Movements[m.ID] = &cp
	return nil
}

func (r *movementRepo) GetByID(id string) (*entity.MovementEntry, error) {
	m, ok := r.s.Movements[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r *movementRepo) ListByItem(itemID string, from, to *time.Time, limit, offset int) ([]*entity.MovementEntry, error) {
	var out []*entity.MovementEntry
	for _, m := range r.s.Movements {
		if m.ItemID != itemID {
			continue
		}
		if from != nil && m.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && m.CreatedAt.After(*to) {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset > len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *movementRepo) SumByDirection(itemID string) (decimal.Decimal, decimal.Decimal, error) {
	inward, outward := decimal.Zero, decimal.Zero
	for _, m := range r.s.Movements {
		if m.ItemID != itemID {
			continue
		}
		if m.Direction == entity.DirectionInward {
			inward = inward.Add(m.Quantity)
		} else {
			outward = outward.Add(m.Quantity)
		}
	}
	return inward, outward, nil
}

func (r *movementRepo) UpdateEntry(id string, quantity decimal.Decimal, notes string) error {
	m, ok := r.s.Movements[id]
	if !ok {
		return nil
	}
	cp := *m
	cp.Quantity = quantity
	cp.Notes = notes
	r.s.Movements[id] = &cp
	return nil
}

func (r *movementRepo) UpdateAllocation(id string, reason string, referenceID *string) error {
	m, ok := r.s.Movements[id]
	if !ok {
		return nil
	}
	cp := *m
	cp.Reason = reason
	cp.ReferenceID = referenceID
	r.s.Movements[id] = &cp
	return nil
}

func (r *movementRepo) Delete(id string) error {
	delete(r.s.Movements, id)
	return nil
}

type balanceRepo struct{ s *Store }

func (r *balanceRepo) Get(itemID string) (*repository.BalanceRow, error) {
	qty, ok := r.s.Balances[itemID]
	if !ok {
		return &repository.BalanceRow{ItemID: itemID, CurrentQty: decimal.Zero}, nil
	}
	return &repository.BalanceRow{ItemID: itemID, CurrentQty: qty}, nil
}

func (r *balanceRepo) GetForUpdate(itemID string) (*repository.BalanceRow, error) {
	r.s.BalanceLocks = append(r.s.BalanceLocks, itemID)
	return r.Get(itemID)
}

func (r *balanceRepo) Upsert(itemID string, current decimal.Decimal) error {
	r.s.Balances[itemID] = current
	return nil
}

type reservationRepo struct{ s *Store }

func (r *reservationRepo) ReservedQty(itemID string) (decimal.Decimal, error) {
	if q, ok := r.s.Reserved[itemID]; ok {
		return q, nil
	}
	return decimal.Zero, nil
}

type batchRepo struct{ s *Store }

func (r *batchRepo) GetByID(id string) (*entity.ProductionBatch, error) {
	b, ok := r.s.Batches[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *batchRepo) GetForUpdate(id string) (*entity.ProductionBatch, error) {
	return r.GetByID(id)
}

func (r *batchRepo) Update(b *entity.ProductionBatch) error {
	cp := *b
	r.s.Batches[b.ID] = &cp
	return nil
}

type returnRepo struct{ s *Store }

func (r *returnRepo) GetLineByID(id string) (*entity.ReturnLine, error) {
	l, ok := r.s.ReturnLines[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (r *returnRepo) GetLineForUpdate(id string) (*entity.ReturnLine, error) {
	return r.GetLineByID(id)
}

func (r *returnRepo) FindLineByEntry(entryID string) (*entity.ReturnLine, error) {
	for _, l := range r.s.ReturnLines {
		if l.InwardEntryID != nil && *l.InwardEntryID == entryID {
			cp := *l
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *returnRepo) UpdateLine(l *entity.ReturnLine) error {
	cp := *l
	r.s.ReturnLines[l.ID] = &cp
	return nil
}

func (r *returnRepo) CountUnprocessed(orderID string) (int, error) {
	n := 0
	for _, l := range r.s.ReturnLines {
		if l.OrderID == orderID && !l.Processed {
			n++
		}
	}
	return n, nil
}

func (r *returnRepo) MarkOrderFullyReceived(orderID string, at time.Time) error {
	r.s.OrderReceived[orderID] = at
	return nil
}

func (r *returnRepo) ClearOrderFullyReceived(orderID string) error {
	delete(r.s.OrderReceived, orderID)
	return nil
}

type writeOffRepo struct{ s *Store }

func (r *writeOffRepo) Create(w *repository.WriteOff) error {
	cp := *w
	r.s.WriteOffs = append(r.s.WriteOffs, &cp)
	return nil
}

func (r *writeOffRepo) ListByItem(itemID string, limit, offset int) ([]*repository.WriteOff, error) {
	var out []*repository.WriteOff
	for _, w := range r.s.WriteOffs {
		if w.ItemID == itemID {
			cp := *w
			out = append(out, &cp)
		}
	}
	return out, nil
}

type reconciliationRepo struct{ s *Store }

func cloneSession(s *entity.ReconciliationSession) *entity.ReconciliationSession {
	cp := *s
	cp.Items = append([]entity.ReconciliationItem(nil), s.Items...)
	return &cp
}

func (r *reconciliationRepo) CreateSession(s *entity.ReconciliationSession) error {
	r.s.Sessions[s.ID] = cloneSession(s)
	return nil
}

func (r *reconciliationRepo) GetSession(id string) (*entity.ReconciliationSession, error) {
	s, ok := r.s.Sessions[id]
	if !ok {
		return nil, nil
	}
	return cloneSession(s), nil
}

func (r *reconciliationRepo) GetSessionForUpdate(id string) (*entity.ReconciliationSession, error) {
	return r.GetSession(id)
}

func (r *reconciliationRepo) UpdateItem(it *entity.ReconciliationItem) error {
	s, ok := r.s.Sessions[it.SessionID]
	if !ok {
		return nil
	}
	cp := cloneSession(s)
	for i := range cp.Items {
		if cp.Items[i].ID == it.ID {
			cp.Items[i] = *it
			break
		}
	}
	r.s.Sessions[it.SessionID] = cp
	return nil
}

func (r *reconciliationRepo) UpdateSessionStatus(s *entity.ReconciliationSession) error {
	prev, ok := r.s.Sessions[s.ID]
	if !ok {
		return nil
	}
	cp := cloneSession(prev)
	cp.Status = s.Status
	cp.SubmittedAt = s.SubmittedAt
	r.s.Sessions[s.ID] = cp
	return nil
}

func (r *reconciliationRepo) DeleteSession(id string) error {
	delete(r.s.Sessions, id)
	return nil
}

type poolCountRepo struct{ s *Store }

func (r *poolCountRepo) Create(c *entity.PoolCount) error {
	cp := *c
	r.s.PoolCounts[c.ID] = &cp
	return nil
}

func (r *poolCountRepo) GetByID(id string) (*entity.PoolCount, error) {
	c, ok := r.s.PoolCounts[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *poolCountRepo) GetForUpdate(id string) (*entity.PoolCount, error) {
	return r.GetByID(id)
}

func (r *poolCountRepo) Update(c *entity.PoolCount) error {
	cp := *c
	r.s.PoolCounts[c.ID] = &cp
	return nil
}

func (r *poolCountRepo) ListPending(limit, offset int) ([]*entity.PoolCount, error) {
	var out []*entity.PoolCount
	for _, c := range r.s.PoolCounts {
		if c.Status == entity.PoolCountPending {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if offset > len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}
