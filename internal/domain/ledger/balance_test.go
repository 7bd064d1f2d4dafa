package ledger_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/ledger"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func entry(dir, qty string) *entity.MovementEntry {
	return &entity.MovementEntry{Direction: dir, Quantity: d(qty)}
}

func TestCompute_SumaPorDireccion(t *testing.T) {
	entries := []*entity.MovementEntry{
		entry(entity.DirectionInward, "100"),
		entry(entity.DirectionOutward, "30"),
		entry(entity.DirectionInward, "12.5"),
		entry(entity.DirectionOutward, "0.25"),
	}
	b := ledger.Compute(entries, d("10"))
	assert.True(t, b.Current.Equal(d("82.25")))
	assert.True(t, b.Available.Equal(d("72.25")))
}

func TestCompute_SinMovimientos(t *testing.T) {
	b := ledger.Compute(nil, decimal.Zero)
	assert.True(t, b.Current.IsZero())
	assert.True(t, b.Available.IsZero())
}

func TestCompute_FraccionesDeTelaSinDeriva(t *testing.T) {
	// 0.1 sumado diez veces debe dar exactamente 1, no 0.9999999
	entries := make([]*entity.MovementEntry, 0, 10)
	for i := 0; i < 10; i++ {
		entries = append(entries, entry(entity.DirectionInward, "0.1"))
	}
	b := ledger.Compute(entries, decimal.Zero)
	assert.True(t, b.Current.Equal(d("1")))
}

func TestVariance_Tolerancia(t *testing.T) {
	assert.True(t, ledger.IsZeroVariance(ledger.Variance(d("10.0009"), d("10.0005"))))
	assert.True(t, ledger.IsZeroVariance(decimal.Zero))
	assert.False(t, ledger.IsZeroVariance(ledger.Variance(d("97"), d("100"))))
	assert.False(t, ledger.IsZeroVariance(d("0.001")), "la tolerancia es estricta")
	assert.False(t, ledger.IsZeroVariance(d("-0.002")))
}

func TestDefaultNegativePolicy(t *testing.T) {
	p := ledger.DefaultNegativePolicy()
	assert.True(t, p.Allows(entity.ReasonDamage))
	assert.True(t, p.Allows(entity.ReasonWriteOff))
	assert.True(t, p.Allows(entity.ReasonAdjustment))
	assert.False(t, p.Allows(entity.ReasonOrderAllocation))
	assert.False(t, p.Allows(entity.ReasonSample))
	assert.False(t, p.Allows("motivo-desconocido"))
}
