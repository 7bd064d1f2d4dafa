package repository

import (
	"time"

	"github.com/shopspring/decimal"
)

// WriteOff documenta la baja de una unidad devuelta no vendible (dañada o
// producto equivocado). No es un movimiento del kardex: la entrada que la
// originó se elimina y este registro queda como rastro auditable.
type WriteOff struct {
	ID           string
	ItemID       string
	Quantity     decimal.Decimal
	Condition    string // damaged | wrong_product
	ReturnLineID string
	Notes        string
	CreatedBy    string
	CreatedAt    time.Time
}

// WriteOffRepository persiste las bajas por devolución.
type WriteOffRepository interface {
	Create(w *WriteOff) error
	ListByItem(itemID string, limit, offset int) ([]*WriteOff, error)
}
