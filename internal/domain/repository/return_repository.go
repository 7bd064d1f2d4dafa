package repository

import (
	"time"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// ReturnRepository define el puerto hacia las líneas de pedidos devueltos
// (RTO) y el marcador de recepción total del pedido padre.
type ReturnRepository interface {
	GetLineByID(id string) (*entity.ReturnLine, error)
	GetLineForUpdate(id string) (*entity.ReturnLine, error)

	// FindLineByEntry busca la línea cuyo InwardEntryID apunta al movimiento
	// (para revertir marcadores al reasignar o borrar la entrada).
	FindLineByEntry(entryID string) (*entity.ReturnLine, error)

	UpdateLine(l *entity.ReturnLine) error

	// CountUnprocessed cuenta las líneas del pedido aún sin procesar; con
	// cero, el pedido se estampa como totalmente recibido.
	CountUnprocessed(orderID string) (int, error)
	MarkOrderFullyReceived(orderID string, at time.Time) error
	ClearOrderFullyReceived(orderID string) error
}
