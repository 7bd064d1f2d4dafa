package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Kardex-api/internal/application/ledger"
	"github.com/jhoicas/Kardex-api/internal/application/reconciliation"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Posting    *ledger.PostingUseCase
	Allocation *ledger.AllocationUseCase
	Sessions   *reconciliation.SessionUseCase
	Pool       *reconciliation.PoolUseCase
	JWTSecret  string
}

// Router registra las rutas de la API. Todo el kardex es protegido; la
// revisión de conteos (apply/discard) queda además restringida por rol.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Kardex (protegido)
	ledgerGroup := api.Group("/ledger")
	ledgerHandler := NewLedgerHandler(deps.Posting, deps.Allocation)
	ledgerGroup.Post("/inward", ledgerHandler.PostInward)
	ledgerGroup.Post("/inward/quick", ledgerHandler.QuickInward)
	ledgerGroup.Post("/outward", ledgerHandler.PostOutward)
	ledgerGroup.Put("/entries/:id", ledgerHandler.EditInward)
	ledgerGroup.Delete("/entries/:id", ledgerHandler.DeleteEntry)
	ledgerGroup.Post("/entries/:id/undo", ledgerHandler.Undo)
	ledgerGroup.Post("/entries/:id/allocate", ledgerHandler.Allocate)
	ledgerGroup.Get("/items/:itemId/balance", ledgerHandler.GetBalance)
	ledgerGroup.Get("/items/:itemId/entries", ledgerHandler.ListEntries)

	// Sesiones de conteo físico (protegido)
	recon := api.Group("/reconciliations")
	reconHandler := NewReconciliationHandler(deps.Sessions)
	recon.Post("/", reconHandler.Start)
	recon.Get("/:id", reconHandler.Get)
	recon.Put("/:id/items", reconHandler.UpdateItems)
	recon.Post("/:id/submit", reconHandler.Submit)
	recon.Post("/:id/discard", reconHandler.Discard)
	recon.Delete("/:id", reconHandler.Delete)

	// Pool de conteos sueltos: cualquiera cuenta, solo admin/bodeguero revisa
	pool := api.Group("/pool-counts")
	poolHandler := NewPoolCountHandler(deps.Pool)
	pool.Post("/", poolHandler.Submit)
	pool.Get("/pending", RequireRole("admin", "bodeguero"), poolHandler.ListPending)
	pool.Post("/apply", RequireRole("admin", "bodeguero"), poolHandler.Apply)
	pool.Post("/discard", RequireRole("admin", "bodeguero"), poolHandler.Discard)
}
