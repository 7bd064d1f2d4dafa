package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// Balance es el saldo derivado de un artículo. No se almacena como fuente de
// verdad: siempre es recomputable desde el historial completo de movimientos.
// Available resta además la cantidad reservada por pedidos abiertos.
type Balance struct {
	Current   decimal.Decimal
	Available decimal.Decimal
}

// Compute deriva el saldo sumando entradas y salidas por separado y restando
// después: current = Σ(inward) − Σ(outward); available = current − reserved.
// Función pura sobre decimales; las cantidades de tela conservan sus
// fracciones sin deriva de punto flotante.
func Compute(entries []*entity.MovementEntry, reserved decimal.Decimal) Balance {
	inward := decimal.Zero
	outward := decimal.Zero
	for _, e := range entries {
		if e.Direction == entity.DirectionInward {
			inward = inward.Add(e.Quantity)
		} else {
			outward = outward.Add(e.Quantity)
		}
	}
	return FromSums(inward, outward, reserved)
}

// FromSums arma el saldo a partir de las sumas por dirección (lo que devuelve
// el repositorio con un GROUP BY direction dentro de la transacción).
func FromSums(inward, outward, reserved decimal.Decimal) Balance {
	current := inward.Sub(outward)
	return Balance{
		Current:   current,
		Available: current.Sub(reserved),
	}
}

// varianceTolerance absorbe el ruido de redondeo en cantidades fraccionarias
// de tela (3+ decimales): varianzas menores a 0.001 se tratan como cero.
var varianceTolerance = decimal.New(1, -3)

// Variance es conteo físico menos saldo de sistema.
func Variance(physical, system decimal.Decimal) decimal.Decimal {
	return physical.Sub(system)
}

// IsZeroVariance indica si la varianza cae dentro de la tolerancia y por lo
// tanto no debe generar ajuste.
func IsZeroVariance(v decimal.Decimal) bool {
	return v.Abs().LessThan(varianceTolerance)
}
