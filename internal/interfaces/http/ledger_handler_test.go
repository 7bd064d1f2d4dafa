package http_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Kardex-api/internal/application/apptest"
	"github.com/jhoicas/Kardex-api/internal/application/ledger"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	domledger "github.com/jhoicas/Kardex-api/internal/domain/ledger"
	apphttp "github.com/jhoicas/Kardex-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// newLedgerApp monta las rutas de borrado/anulación del kardex sobre los
// repos falsos, con el AuthMiddleware real delante.
func newLedgerApp(t *testing.T) (*fiber.App, *apptest.Store) {
	t.Helper()
	store := apptest.NewStore()
	runner := &apptest.TxRunner{Store: store}
	notifier := &apptest.Notifier{}
	posting := ledger.NewPostingUseCase(runner, notifier, domledger.DefaultNegativePolicy())
	allocation := ledger.NewAllocationUseCase(runner, notifier)
	h := apphttp.NewLedgerHandler(posting, allocation)

	app := fiber.New()
	api := app.Group("/api", apphttp.AuthMiddleware(testJWTSecret))
	api.Delete("/ledger/entries/:id", h.DeleteEntry)
	api.Post("/ledger/entries/:id/undo", h.Undo)
	return app, store
}

// doLedgerRequest lanza una petición autenticada contra la app de test.
func doLedgerRequest(t *testing.T, app *fiber.App, method, path, role string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", tokenForRole(t, role))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func seedActiveItem(store *apptest.Store, itemID string) {
	store.Items[itemID] = &entity.Item{ID: itemID, Kind: entity.ItemKindSKU, IsActive: true}
}

func seedInwardEntry(store *apptest.Store, id, itemID, reason string, qty string, refID *string, createdAt time.Time) {
	q, _ := decimal.NewFromString(qty)
	store.Movements[id] = &entity.MovementEntry{
		ID:          id,
		ItemID:      itemID,
		Direction:   entity.DirectionInward,
		Quantity:    q,
		Reason:      reason,
		ReferenceID: refID,
		CreatedBy:   testUserID,
		CreatedAt:   createdAt,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Undo — ventana de 24h
// ──────────────────────────────────────────────────────────────────────────────

// Anular una entrada propia con más de 24 horas es una petición inválida
// (regla de negocio), no un problema de permisos: HTTP 400.
func TestUndo_VentanaVencida_Retorna400(t *testing.T) {
	app, store := newLedgerApp(t)
	seedActiveItem(store, "sku-1")
	seedInwardEntry(store, "mov-1", "sku-1", entity.ReasonReceived, "5", nil, time.Now().Add(-25*time.Hour))

	resp := doLedgerRequest(t, app, http.MethodPost, "/api/ledger/entries/mov-1/undo", "bodeguero")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode,
		"la ventana vencida debe responder 400, no 403")
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "UNDO_WINDOW_EXPIRED")

	// La entrada sigue intacta
	assert.NotNil(t, store.Movements["mov-1"])
}

func TestUndo_DentroDeVentana_Retorna200(t *testing.T) {
	app, store := newLedgerApp(t)
	seedActiveItem(store, "sku-1")
	seedInwardEntry(store, "mov-1", "sku-1", entity.ReasonReceived, "5", nil, time.Now().Add(-2*time.Hour))

	resp := doLedgerRequest(t, app, http.MethodPost, "/api/ledger/entries/mov-1/undo", "bodeguero")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, store.Movements["mov-1"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests DeleteEntry — efectos vinculados y force
// ──────────────────────────────────────────────────────────────────────────────

// Borrar una entrada atada a un lote completado sin force es una petición
// inválida con escape explícito (?force=true): HTTP 400, no 409.
func TestDeleteEntry_EfectoVinculadoSinForce_Retorna400(t *testing.T) {
	app, store := newLedgerApp(t)
	seedActiveItem(store, "sku-1")
	batchID := "lote-1"
	store.Batches[batchID] = &entity.ProductionBatch{
		ID: batchID, ItemID: "sku-1",
		PlannedQty: decimal.NewFromInt(10), CompletedQty: decimal.NewFromInt(10),
		Status: entity.BatchStatusCompleted,
	}
	seedInwardEntry(store, "mov-1", "sku-1", entity.ReasonProduction, "4", &batchID, time.Now())

	resp := doLedgerRequest(t, app, http.MethodDelete, "/api/ledger/entries/mov-1", "admin")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode,
		"el efecto vinculado debe responder 400 con force como escape")
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "LINKED_EFFECT")

	// Nada cambió: ni la entrada ni el lote
	assert.NotNil(t, store.Movements["mov-1"])
	assert.Equal(t, entity.BatchStatusCompleted, store.Batches[batchID].Status)
}

func TestDeleteEntry_ConForceAdmin_RevierteElLote(t *testing.T) {
	app, store := newLedgerApp(t)
	seedActiveItem(store, "sku-1")
	batchID := "lote-1"
	store.Batches[batchID] = &entity.ProductionBatch{
		ID: batchID, ItemID: "sku-1",
		PlannedQty: decimal.NewFromInt(10), CompletedQty: decimal.NewFromInt(10),
		Status: entity.BatchStatusCompleted,
	}
	seedInwardEntry(store, "mov-1", "sku-1", entity.ReasonProduction, "4", &batchID, time.Now())

	resp := doLedgerRequest(t, app, http.MethodDelete, "/api/ledger/entries/mov-1?force=true", "admin")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, store.Movements["mov-1"])
	assert.True(t, store.Batches[batchID].CompletedQty.Equal(decimal.NewFromInt(6)))
	assert.Equal(t, entity.BatchStatusInProgress, store.Batches[batchID].Status)
}

func TestDeleteEntry_ForceSinAdmin_Retorna403(t *testing.T) {
	app, store := newLedgerApp(t)
	seedActiveItem(store, "sku-1")
	seedInwardEntry(store, "mov-1", "sku-1", entity.ReasonReceived, "5", nil, time.Now())

	resp := doLedgerRequest(t, app, http.MethodDelete, "/api/ledger/entries/mov-1?force=true", "bodeguero")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.NotNil(t, store.Movements["mov-1"])
}
