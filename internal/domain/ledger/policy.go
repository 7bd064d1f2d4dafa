package ledger

import "github.com/jhoicas/Kardex-api/internal/domain/entity"

// NegativeBalancePolicy decide, por motivo, si una salida puede dejar el
// saldo disponible en negativo. Centraliza lo que antes eran condicionales
// sueltos por punto de llamada: la decisión efectiva de una salida es
// policy.Allows(reason) || allowNegative-del-caller.
type NegativeBalancePolicy struct {
	allowed map[string]bool
}

// DefaultNegativePolicy permite negativos solo para bajas y correcciones:
// un write-off o un ajuste por daño puede documentar stock que físicamente
// ya no existe, aunque el sistema crea que tampoco existía.
func DefaultNegativePolicy() NegativeBalancePolicy {
	return NegativeBalancePolicy{allowed: map[string]bool{
		entity.ReasonDamage:     true,
		entity.ReasonWriteOff:   true,
		entity.ReasonAdjustment: true,
	}}
}

// Allows indica si el motivo permite saldo negativo.
func (p NegativeBalancePolicy) Allows(reason string) bool {
	return p.allowed[reason]
}
