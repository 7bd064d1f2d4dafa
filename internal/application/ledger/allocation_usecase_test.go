package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Kardex-api/internal/application/apptest"
	"github.com/jhoicas/Kardex-api/internal/application/ledger"
	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	domledger "github.com/jhoicas/Kardex-api/internal/domain/ledger"
)

func newAllocationFixture(t *testing.T) (*apptest.Store, *apptest.Notifier, *ledger.AllocationUseCase) {
	t.Helper()
	store := apptest.NewStore()
	notifier := &apptest.Notifier{}
	uc := ledger.NewAllocationUseCase(&apptest.TxRunner{Store: store}, notifier)
	return store, notifier, uc
}

func seedBatch(store *apptest.Store, id, itemID, planned, completed, status string) {
	store.Batches[id] = &entity.ProductionBatch{
		ID: id, ItemID: itemID,
		PlannedQty: d(planned), CompletedQty: d(completed),
		Status: status,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Producción
// ──────────────────────────────────────────────────────────────────────────────

func TestAllocate_ProduccionAcreditaElLote(t *testing.T) {
	store, notifier, uc := newAllocationFixture(t)
	seedItem(store, "sku-1", true)
	seedBatch(store, "lote-1", "sku-1", "20", "0", entity.BatchStatusPlanned)
	e := seedEntry(store, "sku-1", entity.DirectionInward, d("8"), entity.ReasonReceived, testActor, time.Now())

	r, err := uc.Allocate(context.Background(), e.ID, domledger.ProductionTarget{BatchID: "lote-1"}, testActor)
	require.NoError(t, err)
	assert.Equal(t, entity.ReasonProduction, r.Reason)
	require.NotNil(t, r.ReferenceID)
	assert.Equal(t, "lote-1", *r.ReferenceID)

	batch := store.Batches["lote-1"]
	assert.True(t, batch.CompletedQty.Equal(d("8")))
	assert.Equal(t, entity.BatchStatusInProgress, batch.Status)

	entry := store.Movements[e.ID]
	assert.Equal(t, entity.ReasonProduction, entry.Reason)
	require.NotNil(t, entry.ReferenceID)
	assert.Equal(t, "lote-1", *entry.ReferenceID)
	assert.Equal(t, []string{"sku-1"}, notifier.All())
}

func TestAllocate_ProduccionCompletaConTope(t *testing.T) {
	store, _, uc := newAllocationFixture(t)
	seedItem(store, "sku-1", true)
	seedBatch(store, "lote-1", "sku-1", "10", "7", entity.BatchStatusInProgress)
	e := seedEntry(store, "sku-1", entity.DirectionInward, d("5"), entity.ReasonReceived, testActor, time.Now())

	_, err := uc.Allocate(context.Background(), e.ID, domledger.ProductionTarget{BatchID: "lote-1"}, testActor)
	require.NoError(t, err)

	batch := store.Batches["lote-1"]
	assert.True(t, batch.CompletedQty.Equal(d("10")), "la cantidad completada se topa en la planificada")
	assert.Equal(t, entity.BatchStatusCompleted, batch.Status)
	assert.NotNil(t, batch.CompletedAt)
}

func TestAllocate_ReasignacionSinResiduo(t *testing.T) {
	store, _, uc := newAllocationFixture(t)
	seedItem(store, "sku-1", true)
	seedBatch(store, "lote-a", "sku-1", "20", "0", entity.BatchStatusPlanned)
	seedBatch(store, "lote-b", "sku-1", "20", "0", entity.BatchStatusPlanned)
	e := seedEntry(store, "sku-1", entity.DirectionInward, d("6"), entity.ReasonReceived, testActor, time.Now())

	ctx := context.Background()
	_, err := uc.Allocate(ctx, e.ID, domledger.ProductionTarget{BatchID: "lote-a"}, testActor)
	require.NoError(t, err)

	// Reasignar de A a B: A debe quedar EXACTAMENTE como antes de ser acreditado
	_, err = uc.Allocate(ctx, e.ID, domledger.ProductionTarget{BatchID: "lote-b"}, testActor)
	require.NoError(t, err)

	a := store.Batches["lote-a"]
	assert.True(t, a.CompletedQty.IsZero(), "sin residuo en el lote anterior")
	assert.Equal(t, entity.BatchStatusPlanned, a.Status)
	assert.Nil(t, a.CompletedAt)

	b := store.Batches["lote-b"]
	assert.True(t, b.CompletedQty.Equal(d("6")))

	// Y una tercera reasignación de vuelta no duplica nada
	_, err = uc.Allocate(ctx, e.ID, domledger.ProductionTarget{BatchID: "lote-a"}, testActor)
	require.NoError(t, err)
	assert.True(t, store.Batches["lote-a"].CompletedQty.Equal(d("6")))
	assert.True(t, store.Batches["lote-b"].CompletedQty.IsZero(), "sin doble conteo tras ciclos de reasignación")
}

func TestAllocate_ReasignacionDeCreditoTopado(t *testing.T) {
	store, _, uc := newAllocationFixture(t)
	seedItem(store, "sku-1", true)
	seedBatch(store, "lote-a", "sku-1", "10", "7", entity.BatchStatusInProgress)
	seedBatch(store, "lote-b", "sku-1", "20", "0", entity.BatchStatusPlanned)
	e := seedEntry(store, "sku-1", entity.DirectionInward, d("5"), entity.ReasonReceived, testActor, time.Now())

	ctx := context.Background()
	_, err := uc.Allocate(ctx, e.ID, domledger.ProductionTarget{BatchID: "lote-a"}, testActor)
	require.NoError(t, err)
	require.True(t, store.Batches["lote-a"].CompletedQty.Equal(d("10")), "el crédito se topa en la planificada")

	// La reversión debita la cantidad COMPLETA de la entrada, aunque el
	// crédito se haya topado: 10 - 5 = 5, no los 7 previos. El exceso sobre
	// la planificada se descarta al acreditar y no se recuerda al revertir.
	_, err = uc.Allocate(ctx, e.ID, domledger.ProductionTarget{BatchID: "lote-b"}, testActor)
	require.NoError(t, err)

	a := store.Batches["lote-a"]
	assert.True(t, a.CompletedQty.Equal(d("5")))
	assert.Equal(t, entity.BatchStatusInProgress, a.Status)
	assert.Nil(t, a.CompletedAt)
	assert.True(t, store.Batches["lote-b"].CompletedQty.Equal(d("5")))
}

func TestAllocate_LoteDeOtroArticulo(t *testing.T) {
	store, _, uc := newAllocationFixture(t)
	seedItem(store, "sku-1", true)
	seedItem(store, "sku-2", true)
	seedBatch(store, "lote-ajeno", "sku-2", "10", "0", entity.BatchStatusPlanned)
	e := seedEntry(store, "sku-1", entity.DirectionInward, d("3"), entity.ReasonReceived, testActor, time.Now())

	_, err := uc.Allocate(context.Background(), e.ID, domledger.ProductionTarget{BatchID: "lote-ajeno"}, testActor)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, entity.ReasonReceived, store.Movements[e.ID].Reason, "la entrada no debe cambiar si la asignación falla")
}

// ──────────────────────────────────────────────────────────────────────────────
// RTO (devoluciones)
// ──────────────────────────────────────────────────────────────────────────────

func seedReturnLine(store *apptest.Store, id, orderID, itemID string) {
	store.ReturnLines[id] = &entity.ReturnLine{ID: id, OrderID: orderID, ItemID: itemID, Quantity: d("1")}
}

func TestAllocate_RtoCondicionVendible(t *testing.T) {
	store, _, uc := newAllocationFixture(t)
	seedItem(store, "sku-1", true)
	seedReturnLine(store, "linea-1", "pedido-9", "sku-1")
	seedReturnLine(store, "linea-2", "pedido-9", "sku-1")
	e := seedEntry(store, "sku-1", entity.DirectionInward, d("1"), entity.ReasonReceived, testActor, time.Now())

	r, err := uc.Allocate(context.Background(), e.ID, domledger.RtoTarget{LineID: "linea-1", Condition: entity.ReturnConditionGood}, testActor)
	require.NoError(t, err)
	assert.False(t, r.EntryDeleted)

	line := store.ReturnLines["linea-1"]
	assert.True(t, line.Processed)
	assert.Equal(t, entity.ReturnConditionGood, line.Condition)
	require.NotNil(t, line.InwardEntryID)
	assert.Equal(t, e.ID, *line.InwardEntryID)

	// El pedido aún tiene una línea pendiente: no se estampa como recibido
	_, marcado := store.OrderReceived["pedido-9"]
	assert.False(t, marcado)
}

func TestAllocate_RtoDanadaEliminaLaEntrada(t *testing.T) {
	store, _, uc := newAllocationFixture(t)
	seedItem(store, "sku-1", true)
	seedReturnLine(store, "linea-1", "pedido-9", "sku-1")
	e := seedEntry(store, "sku-1", entity.DirectionInward, d("1"), entity.ReasonReceived, testActor, time.Now())

	r, err := uc.Allocate(context.Background(), e.ID, domledger.RtoTarget{LineID: "linea-1", Condition: entity.ReturnConditionDamaged}, testActor)
	require.NoError(t, err)
	assert.True(t, r.EntryDeleted)
	assert.True(t, r.NewBalance.Current.IsZero(), "la unidad dañada no entra al inventario vendible")

	assert.Nil(t, store.Movements[e.ID])
	require.Len(t, store.WriteOffs, 1)
	assert.Equal(t, entity.ReturnConditionDamaged, store.WriteOffs[0].Condition)
	assert.Equal(t, "linea-1", store.WriteOffs[0].ReturnLineID)

	line := store.ReturnLines["linea-1"]
	assert.True(t, line.Processed)
	assert.Nil(t, line.InwardEntryID)

	// Última línea procesada: el pedido queda totalmente recibido
	_, marcado := store.OrderReceived["pedido-9"]
	assert.True(t, marcado)
}

func TestAllocate_RtoLineaYaProcesada(t *testing.T) {
	store, _, uc := newAllocationFixture(t)
	seedItem(store, "sku-1", true)
	seedReturnLine(store, "linea-1", "pedido-9", "sku-1")
	otro := "entrada-de-otro"
	store.ReturnLines["linea-1"].MarkProcessed(entity.ReturnConditionGood, &otro, time.Now())
	e := seedEntry(store, "sku-1", entity.DirectionInward, d("1"), entity.ReasonReceived, testActor, time.Now())

	_, err := uc.Allocate(context.Background(), e.ID, domledger.RtoTarget{LineID: "linea-1", Condition: entity.ReturnConditionGood}, testActor)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestAllocate_ReasignarDesdeRtoLimpiaMarcadores(t *testing.T) {
	store, _, uc := newAllocationFixture(t)
	seedItem(store, "sku-1", true)
	seedReturnLine(store, "linea-1", "pedido-9", "sku-1")
	seedBatch(store, "lote-1", "sku-1", "10", "0", entity.BatchStatusPlanned)
	e := seedEntry(store, "sku-1", entity.DirectionInward, d("1"), entity.ReasonReceived, testActor, time.Now())

	ctx := context.Background()
	_, err := uc.Allocate(ctx, e.ID, domledger.RtoTarget{LineID: "linea-1", Condition: entity.ReturnConditionGood}, testActor)
	require.NoError(t, err)
	assert.True(t, store.OrderReceived["pedido-9"].After(time.Time{}), "única línea procesada: pedido recibido")

	// Reasignar a producción: la línea vuelve a pendiente y el pedido pierde el estampado
	_, err = uc.Allocate(ctx, e.ID, domledger.ProductionTarget{BatchID: "lote-1"}, testActor)
	require.NoError(t, err)

	line := store.ReturnLines["linea-1"]
	assert.False(t, line.Processed)
	assert.Empty(t, line.Condition)
	assert.Nil(t, line.InwardEntryID)
	_, marcado := store.OrderReceived["pedido-9"]
	assert.False(t, marcado)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ajuste manual y validaciones
// ──────────────────────────────────────────────────────────────────────────────

func TestAllocate_AjusteManualLimpiaReferencia(t *testing.T) {
	store, _, uc := newAllocationFixture(t)
	seedItem(store, "sku-1", true)
	ref := "lote-1"
	seedBatch(store, "lote-1", "sku-1", "10", "4", entity.BatchStatusInProgress)
	e := seedEntry(store, "sku-1", entity.DirectionInward, d("4"), entity.ReasonProduction, testActor, time.Now())
	e.ReferenceID = &ref

	_, err := uc.Allocate(context.Background(), e.ID, domledger.AdjustmentTarget{}, testActor)
	require.NoError(t, err)

	entry := store.Movements[e.ID]
	assert.Equal(t, entity.ReasonAdjustment, entry.Reason)
	assert.Nil(t, entry.ReferenceID)
	// La reversión descontó el crédito que esta entrada había hecho al lote
	assert.True(t, store.Batches["lote-1"].CompletedQty.IsZero())
}

func TestAllocate_RechazaSalidas(t *testing.T) {
	store, _, uc := newAllocationFixture(t)
	seedItem(store, "sku-1", true)
	out := seedEntry(store, "sku-1", entity.DirectionOutward, d("2"), entity.ReasonOrderAllocation, testActor, time.Now())

	_, err := uc.Allocate(context.Background(), out.ID, domledger.AdjustmentTarget{}, testActor)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestParseAllocationTarget(t *testing.T) {
	tests := []struct {
		name      string
		typ, id   string
		condition string
		wantErr   bool
	}{
		{"produccion valida", "production", "lote-1", "", false},
		{"produccion sin lote", "production", "", "", true},
		{"rto valida", "rto", "linea-1", "damaged", false},
		{"rto condicion desconocida", "rto", "linea-1", "mojado", true},
		{"ajuste", "adjustment", "", "", false},
		{"tipo desconocido", "venta", "x", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domledger.ParseAllocationTarget(tt.typ, tt.id, tt.condition)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
