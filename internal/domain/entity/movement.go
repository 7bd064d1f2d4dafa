package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dirección de un movimiento de inventario.
const (
	DirectionInward  = "inward"  // entrada
	DirectionOutward = "outward" // salida
)

// Vocabulario de motivos. Reason es texto libre en la tabla pero la
// aplicación solo emite estos valores.
const (
	ReasonReceived             = "received"               // entrada sin asignar todavía
	ReasonProduction           = "production"             // entrada asignada a un lote de producción
	ReasonOrderAllocation      = "order_allocation"       // salida por pedido despachado
	ReasonRtoReceived          = "rto_received"           // entrada por devolución recibida (RTO)
	ReasonAdjustment           = "adjustment"             // ajuste manual
	ReasonStockCountAdjustment = "stock_count_adjustment" // ajuste generado por conteo físico
	ReasonWriteOff             = "write_off"              // baja de unidad no vendible
	ReasonDamage               = "damage"                 // daño
	ReasonSample               = "sample"                 // muestra entregada
)

// MovementEntry es la unidad atómica del kardex. Inmutable una vez creada,
// salvo dos mutaciones auditadas: cantidad/notas de una entrada, y el par
// motivo/referencia durante la (re)asignación.
type MovementEntry struct {
	ID          string
	ItemID      string
	Direction   string          // inward | outward
	Quantity    decimal.Decimal // siempre > 0; la dirección lleva el signo conceptual
	Reason      string
	ReferenceID *string // lote de producción, línea de devolución, sesión de conteo...
	Notes       string
	Location    string // texto libre de bodega/ubicación
	CreatedBy   string // UserID
	CreatedAt   time.Time
}

// IsInward indica si el movimiento suma al saldo.
func (m *MovementEntry) IsInward() bool {
	return m.Direction == DirectionInward
}

// IsAllocated indica si la entrada ya está asignada a un documento origen.
// Una entrada con motivo "received" está pendiente de asignación.
func (m *MovementEntry) IsAllocated() bool {
	return m.Direction == DirectionInward && m.Reason != ReasonReceived
}

// SignedQuantity devuelve la cantidad con signo según la dirección.
func (m *MovementEntry) SignedQuantity() decimal.Decimal {
	if m.Direction == DirectionOutward {
		return m.Quantity.Neg()
	}
	return m.Quantity
}
