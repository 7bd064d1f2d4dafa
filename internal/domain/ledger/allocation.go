package ledger

import (
	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// AllocationTarget es el destino de asignación de una entrada, como variante
// etiquetada en lugar del par suelto (reason, referenceId): elimina la clase
// de errores "stringly-typed" de mezclar motivo y referencia a mano.
type AllocationTarget interface {
	// Reason devuelve el motivo que queda grabado en el movimiento.
	Reason() string
	allocationTarget()
}

// ProductionTarget asigna la entrada a un lote de producción.
type ProductionTarget struct {
	BatchID string
}

// RtoTarget asigna la entrada a una línea de pedido devuelta, con la
// condición física de la unidad.
type RtoTarget struct {
	LineID    string
	Condition string // good | unopened | damaged | wrong_product
}

// AdjustmentTarget deja la entrada como ajuste manual sin documento origen.
type AdjustmentTarget struct{}

func (ProductionTarget) Reason() string { return entity.ReasonProduction }
func (RtoTarget) Reason() string        { return entity.ReasonRtoReceived }
func (AdjustmentTarget) Reason() string { return entity.ReasonAdjustment }

func (ProductionTarget) allocationTarget() {}
func (RtoTarget) allocationTarget()        {}
func (AdjustmentTarget) allocationTarget() {}

// ParseAllocationTarget arma la variante desde los campos planos del request
// HTTP. Valida que cada tipo traiga lo que necesita.
func ParseAllocationTarget(typ, allocationID, condition string) (AllocationTarget, error) {
	switch typ {
	case "production":
		if allocationID == "" {
			return nil, domain.ErrInvalidInput
		}
		return ProductionTarget{BatchID: allocationID}, nil
	case "rto":
		if allocationID == "" {
			return nil, domain.ErrInvalidInput
		}
		switch condition {
		case entity.ReturnConditionGood, entity.ReturnConditionUnopened,
			entity.ReturnConditionDamaged, entity.ReturnConditionWrongProduct:
		default:
			return nil, domain.ErrInvalidInput
		}
		return RtoTarget{LineID: allocationID, Condition: condition}, nil
	case "adjustment":
		return AdjustmentTarget{}, nil
	}
	return nil, domain.ErrInvalidInput
}
