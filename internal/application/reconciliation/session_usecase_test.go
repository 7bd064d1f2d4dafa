package reconciliation_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Kardex-api/internal/application/apptest"
	"github.com/jhoicas/Kardex-api/internal/application/ledger"
	"github.com/jhoicas/Kardex-api/internal/application/reconciliation"
	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	domledger "github.com/jhoicas/Kardex-api/internal/domain/ledger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testDigitador = "00000000-0000-0000-0000-0000000000d1"
	testRevisor   = "00000000-0000-0000-0000-0000000000r1"
)

type fixture struct {
	store    *apptest.Store
	notifier *apptest.Notifier
	posting  *ledger.PostingUseCase
	sessions *reconciliation.SessionUseCase
	pool     *reconciliation.PoolUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := apptest.NewStore()
	notifier := &apptest.Notifier{}
	runner := &apptest.TxRunner{Store: store}
	posting := ledger.NewPostingUseCase(runner, notifier, domledger.DefaultNegativePolicy())
	return &fixture{
		store:    store,
		notifier: notifier,
		posting:  posting,
		sessions: reconciliation.NewSessionUseCase(runner, posting, notifier),
		pool:     reconciliation.NewPoolUseCase(runner, posting, notifier),
	}
}

func (f *fixture) seedItemWithStock(itemID, qty string) {
	f.store.Items[itemID] = &entity.Item{ID: itemID, Kind: entity.ItemKindSKU, Name: itemID, IsActive: true}
	q := decimal.RequireFromString(qty)
	if !q.IsZero() {
		e := &entity.MovementEntry{
			ID: uuid.New().String(), ItemID: itemID,
			Direction: entity.DirectionInward, Quantity: q,
			Reason: entity.ReasonReceived, CreatedBy: testDigitador, CreatedAt: time.Now(),
		}
		f.store.Movements[e.ID] = e
	}
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func itemRow(t *testing.T, s *entity.ReconciliationSession, itemID string) *entity.ReconciliationItem {
	t.Helper()
	for i := range s.Items {
		if s.Items[i].ItemID == itemID {
			return &s.Items[i]
		}
	}
	t.Fatalf("la sesión no tiene fila para %s", itemID)
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Ciclo de vida de la sesión
// ──────────────────────────────────────────────────────────────────────────────

func TestStart_CongelaSaldosDeActivos(t *testing.T) {
	f := newFixture(t)
	f.seedItemWithStock("sku-1", "100")
	f.seedItemWithStock("sku-2", "40")
	f.store.Items["sku-inactivo"] = &entity.Item{ID: "sku-inactivo", Kind: entity.ItemKindSKU, IsActive: false}

	s, err := f.sessions.Start(context.Background(), "conteo de fin de mes", testDigitador)
	require.NoError(t, err)
	assert.Equal(t, entity.ReconciliationDraft, s.Status)
	require.Len(t, s.Items, 2, "solo artículos activos")
	assert.True(t, itemRow(t, s, "sku-1").SystemQty.Equal(d("100")))
	assert.True(t, itemRow(t, s, "sku-2").SystemQty.Equal(d("40")))
	assert.Nil(t, itemRow(t, s, "sku-1").PhysicalQty, "físico nulo hasta digitar")
}

func TestRoundTrip_VarianzaGeneraUnSoloAjuste(t *testing.T) {
	f := newFixture(t)
	f.seedItemWithStock("sku-1", "100")

	ctx := context.Background()
	s, err := f.sessions.Start(ctx, "", testDigitador)
	require.NoError(t, err)

	row := itemRow(t, s, "sku-1")
	err = f.sessions.UpdateItems(ctx, s.ID, []reconciliation.ItemUpdate{
		{ItemRowID: row.ID, PhysicalQty: d("97"), Reason: "faltante en estante", Notes: ""},
	}, testDigitador)
	require.NoError(t, err)

	submitted, err := f.sessions.Submit(ctx, s.ID, testRevisor)
	require.NoError(t, err)
	assert.Equal(t, entity.ReconciliationSubmitted, submitted.Status)
	require.NotNil(t, submitted.SubmittedAt)

	// Exactamente UNA salida de 3 con motivo stock_count_adjustment y la sesión como referencia
	var adjustments []*entity.MovementEntry
	for _, m := range f.store.Movements {
		if m.Reason == entity.ReasonStockCountAdjustment {
			adjustments = append(adjustments, m)
		}
	}
	require.Len(t, adjustments, 1)
	adj := adjustments[0]
	assert.Equal(t, entity.DirectionOutward, adj.Direction)
	assert.True(t, adj.Quantity.Equal(d("3")))
	require.NotNil(t, adj.ReferenceID)
	assert.Equal(t, s.ID, *adj.ReferenceID)

	// Saldo post-submit = conteo físico
	assert.True(t, f.store.Balances["sku-1"].Equal(d("97")))
	assert.Equal(t, []string{"sku-1"}, f.notifier.All())
}

func TestSubmit_Idempotente(t *testing.T) {
	f := newFixture(t)
	f.seedItemWithStock("sku-1", "10")

	ctx := context.Background()
	s, err := f.sessions.Start(ctx, "", testDigitador)
	require.NoError(t, err)
	err = f.sessions.UpdateItems(ctx, s.ID, []reconciliation.ItemUpdate{
		{ItemRowID: itemRow(t, s, "sku-1").ID, PhysicalQty: d("12")},
	}, testDigitador)
	require.NoError(t, err)

	_, err = f.sessions.Submit(ctx, s.ID, testRevisor)
	require.NoError(t, err)

	// Reintento: falla sin postear de nuevo
	_, err = f.sessions.Submit(ctx, s.ID, testRevisor)
	assert.ErrorIs(t, err, domain.ErrTerminalState)

	n := 0
	for _, m := range f.store.Movements {
		if m.Reason == entity.ReasonStockCountAdjustment {
			n++
		}
	}
	assert.Equal(t, 1, n, "el doble submit no debe duplicar ajustes")
	assert.True(t, f.store.Balances["sku-1"].Equal(d("12")))
}

func TestSubmit_IgnoraVarianzaDentroDeTolerancia(t *testing.T) {
	f := newFixture(t)
	f.seedItemWithStock("tela-1", "10.0005")
	f.store.Items["tela-1"].Kind = entity.ItemKindFabricColour
	f.store.Items["tela-1"].Unit = "m"

	ctx := context.Background()
	s, err := f.sessions.Start(ctx, "", testDigitador)
	require.NoError(t, err)
	err = f.sessions.UpdateItems(ctx, s.ID, []reconciliation.ItemUpdate{
		{ItemRowID: itemRow(t, s, "tela-1").ID, PhysicalQty: d("10.0009")},
	}, testDigitador)
	require.NoError(t, err)

	_, err = f.sessions.Submit(ctx, s.ID, testRevisor)
	require.NoError(t, err)
	for _, m := range f.store.Movements {
		assert.NotEqual(t, entity.ReasonStockCountAdjustment, m.Reason,
			"varianza de 0.0004 está dentro de la tolerancia")
	}
}

func TestSubmit_SinConteoNoAjusta(t *testing.T) {
	f := newFixture(t)
	f.seedItemWithStock("sku-1", "5")
	f.seedItemWithStock("sku-2", "8")

	ctx := context.Background()
	s, err := f.sessions.Start(ctx, "", testDigitador)
	require.NoError(t, err)
	// Solo se digita sku-1; sku-2 queda sin conteo y no debe generar ajuste
	err = f.sessions.UpdateItems(ctx, s.ID, []reconciliation.ItemUpdate{
		{ItemRowID: itemRow(t, s, "sku-1").ID, PhysicalQty: d("6")},
	}, testDigitador)
	require.NoError(t, err)

	_, err = f.sessions.Submit(ctx, s.ID, testRevisor)
	require.NoError(t, err)
	assert.True(t, f.store.Balances["sku-1"].Equal(d("6")))
	inward, outward := d("0"), d("0")
	for _, m := range f.store.Movements {
		if m.ItemID == "sku-2" {
			if m.Direction == entity.DirectionInward {
				inward = inward.Add(m.Quantity)
			} else {
				outward = outward.Add(m.Quantity)
			}
		}
	}
	assert.True(t, inward.Sub(outward).Equal(d("8")), "sku-2 no debe moverse")
}

func TestDiscard_NoEmiteMovimientos(t *testing.T) {
	f := newFixture(t)
	f.seedItemWithStock("sku-1", "100")

	ctx := context.Background()
	s, err := f.sessions.Start(ctx, "", testDigitador)
	require.NoError(t, err)
	err = f.sessions.UpdateItems(ctx, s.ID, []reconciliation.ItemUpdate{
		{ItemRowID: itemRow(t, s, "sku-1").ID, PhysicalQty: d("50")},
	}, testDigitador)
	require.NoError(t, err)

	require.NoError(t, f.sessions.Discard(ctx, s.ID, testRevisor))
	got, err := f.sessions.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReconciliationDiscarded, got.Status)
	assert.Len(t, f.store.Movements, 1, "solo el movimiento semilla; descartar no postea")

	// Terminal: ni editar ni re-enviar ni re-descartar
	err = f.sessions.UpdateItems(ctx, s.ID, []reconciliation.ItemUpdate{
		{ItemRowID: itemRow(t, s, "sku-1").ID, PhysicalQty: d("60")},
	}, testDigitador)
	assert.ErrorIs(t, err, domain.ErrTerminalState)
	_, err = f.sessions.Submit(ctx, s.ID, testRevisor)
	assert.ErrorIs(t, err, domain.ErrTerminalState)
	assert.ErrorIs(t, f.sessions.Discard(ctx, s.ID, testRevisor), domain.ErrTerminalState)
}

func TestDelete_SoloEnDraft(t *testing.T) {
	f := newFixture(t)
	f.seedItemWithStock("sku-1", "10")

	ctx := context.Background()
	s, err := f.sessions.Start(ctx, "", testDigitador)
	require.NoError(t, err)
	require.NoError(t, f.sessions.Delete(ctx, s.ID))
	_, err = f.sessions.Get(ctx, s.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	s2, err := f.sessions.Start(ctx, "", testDigitador)
	require.NoError(t, err)
	_, err = f.sessions.Submit(ctx, s2.ID, testRevisor)
	require.NoError(t, err)
	assert.ErrorIs(t, f.sessions.Delete(ctx, s2.ID), domain.ErrTerminalState)
}

func TestUpdateItems_UltimaEscrituraGanaPorFila(t *testing.T) {
	f := newFixture(t)
	f.seedItemWithStock("sku-1", "30")

	ctx := context.Background()
	s, err := f.sessions.Start(ctx, "", testDigitador)
	require.NoError(t, err)
	rowID := itemRow(t, s, "sku-1").ID

	require.NoError(t, f.sessions.UpdateItems(ctx, s.ID, []reconciliation.ItemUpdate{
		{ItemRowID: rowID, PhysicalQty: d("28"), Notes: "primer conteo"},
	}, testDigitador))
	require.NoError(t, f.sessions.UpdateItems(ctx, s.ID, []reconciliation.ItemUpdate{
		{ItemRowID: rowID, PhysicalQty: d("29"), Notes: "reconteo"},
	}, "otra-digitadora"))

	got, err := f.sessions.Get(ctx, s.ID)
	require.NoError(t, err)
	row := itemRow(t, got, "sku-1")
	require.NotNil(t, row.PhysicalQty)
	assert.True(t, row.PhysicalQty.Equal(d("29")))
	require.NotNil(t, row.Variance)
	assert.True(t, row.Variance.Equal(d("-1")))
	assert.Equal(t, "reconteo", row.Notes)
}
