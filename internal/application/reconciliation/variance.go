package reconciliation

import (
	"github.com/shopspring/decimal"

	appledger "github.com/jhoicas/Kardex-api/internal/application/ledger"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// postVariance convierte una varianza en exactamente un movimiento de
// ajuste: entrada si el conteo físico superó al sistema, salida si faltó.
// Es el único punto donde varianza se vuelve posteo; lo comparten la sesión
// y la variante pool. AllowNegative va en true: el conteo físico ES la
// realidad, aunque las reservas dejen el disponible en negativo.
func postVariance(posting *appledger.PostingUseCase, tx appledger.Repos, itemID string, variance decimal.Decimal, referenceID, notes, actor string) error {
	ref := referenceID
	in := appledger.PostingInput{
		ItemID:        itemID,
		Reason:        entity.ReasonStockCountAdjustment,
		ReferenceID:   &ref,
		Notes:         notes,
		Actor:         actor,
		AllowNegative: true,
	}
	if variance.IsPositive() {
		in.Quantity = variance
		_, err := posting.PostInwardInTx(tx, in)
		return err
	}
	in.Quantity = variance.Neg()
	_, err := posting.PostOutwardInTx(tx, in)
	return err
}
