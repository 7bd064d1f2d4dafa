package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// MovementRepository define el puerto de persistencia del kardex
// (movimientos de inventario). Append-mostly: las únicas mutaciones son las
// dos ediciones auditadas y el borrado con reversión de efectos.
type MovementRepository interface {
	Create(m *entity.MovementEntry) error
	GetByID(id string) (*entity.MovementEntry, error)
	ListByItem(itemID string, from, to *time.Time, limit, offset int) ([]*entity.MovementEntry, error)

	// SumByDirection agrega el historial completo del artículo agrupando por
	// dirección. Es la base del recálculo de saldo dentro de la transacción.
	SumByDirection(itemID string) (inward, outward decimal.Decimal, err error)

	// UpdateEntry persiste la edición auditada de cantidad/notas de una entrada.
	UpdateEntry(id string, quantity decimal.Decimal, notes string) error

	// UpdateAllocation persiste el par motivo/referencia durante la (re)asignación.
	UpdateAllocation(id string, reason string, referenceID *string) error

	Delete(id string) error
}
