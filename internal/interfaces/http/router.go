package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/analytics"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CreateStock   *inventory.CreateStockUseCase
	AdjustStock   *inventory.AdjustStockUseCase
	StockQuery    *inventory.StockQueryUseCase
	Replenishment *inventory.ReplenishmentUseCase
	Dashboard     *analytics.DashboardUseCase
	WarehouseUC   *usecase.WarehouseUseCase
	JWTSecret     string
	HistoryLimit  int
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	val := NewValidator()

	// Todas las rutas requieren Bearer Token
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	writers := RequireRole(RoleAdmin, RoleBodeguero)

	// Warehouses
	warehouses := protected.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC, val)
	warehouses.Post("/", RequireRole(RoleAdmin), warehouseHandler.Create)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/:id", warehouseHandler.GetByID)

	// Stock ledger. Las rutas fijas van antes de /:id.
	stockGroup := protected.Group("/stock")
	stockHandler := NewStockHandler(StockHandlerDeps{
		Create:        deps.CreateStock,
		Adjust:        deps.AdjustStock,
		Query:         deps.StockQuery,
		Replenishment: deps.Replenishment,
		Dashboard:     deps.Dashboard,
		Validator:     val,
		HistoryLimit:  deps.HistoryLimit,
	})
	stockGroup.Post("/", writers, stockHandler.Create)
	stockGroup.Get("/", stockHandler.List)
	stockGroup.Get("/stats", stockHandler.Stats)
	stockGroup.Get("/replenishment", stockHandler.Replenishment)
	stockGroup.Get("/:id", stockHandler.GetByID)
	stockGroup.Get("/:id/status", stockHandler.Status)
	stockGroup.Get("/:id/history", stockHandler.History)
	stockGroup.Post("/:id/adjustments", writers, stockHandler.Adjust)
	stockGroup.Put("/:id/on-hand", writers, stockHandler.SetOnHand)
	stockGroup.Put("/:id/planning", RequireRole(RoleAdmin), stockHandler.UpdatePlanning)
}
