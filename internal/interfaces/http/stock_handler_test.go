package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/analytics"
	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/application/usecase"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/stock-ledger-api/internal/interfaces/http"
)

// newStockAPI arma la API completa sobre el almacén en memoria.
func newStockAPI(t *testing.T) *fiber.App {
	t.Helper()
	return newStockAPIWithLocker(t, inventory.NewLocalLocker(time.Second))
}

func newStockAPIWithLocker(t *testing.T, locker inventory.ProductLocker) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	runner := memory.NewTxRunner(store)
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		CreateStock:   inventory.NewCreateStockUseCase(runner, store.StockRecords(), store.Warehouses(), nil, nil, nil),
		AdjustStock:   inventory.NewAdjustStockUseCase(runner, store.Warehouses(), locker, nil, nil, nil),
		StockQuery:    inventory.NewStockQueryUseCase(store.StockRecords(), store.Adjustments()),
		Replenishment: inventory.NewReplenishmentUseCase(store.StockRecords()),
		Dashboard:     analytics.NewDashboardUseCase(store.StockRecords(), store.Warehouses()),
		WarehouseUC:   usecase.NewWarehouseUseCase(store.Warehouses()),
		JWTSecret:     testJWTSecret,
		HistoryLimit:  20,
	})
	return app
}

// call envía una petición autenticada con el rol dado y devuelve status y cuerpo.
func call(t *testing.T, app *fiber.App, method, path, role string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, role))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func errorCode(t *testing.T, raw []byte) string {
	t.Helper()
	return decode[dto.ErrorResponse](t, raw).Code
}

// seedHeadphones crea dos bodegas y el producto ELE-1001 con 80/45.
func seedHeadphones(t *testing.T, app *fiber.App) dto.StockRecordResponse {
	t.Helper()
	for _, id := range []string{"wh1", "wh2"} {
		status, raw := call(t, app, http.MethodPost, "/api/warehouses", "admin", fiber.Map{"id": id, "name": "Bodega " + id})
		require.Equal(t, http.StatusCreated, status, string(raw))
	}
	status, raw := call(t, app, http.MethodPost, "/api/stock", "bodeguero", fiber.Map{
		"sku":       "ele-1001",
		"name":      "Audífonos inalámbricos",
		"category":  "Electrónica",
		"unit_cost": "45.50",
		"threshold": 20,
		"distribution": fiber.Map{
			"mode":       "multiple",
			"quantities": fiber.Map{"wh1": 80, "wh2": 45},
		},
	})
	require.Equal(t, http.StatusCreated, status, string(raw))
	return decode[dto.StockRecordResponse](t, raw)
}

func TestStockAPI_CreateYConsulta(t *testing.T) {
	app := newStockAPI(t)
	rec := seedHeadphones(t, app)

	assert.Equal(t, "ELE-1001", rec.SKU)
	assert.Equal(t, 125, rec.OnHand)
	assert.Equal(t, "IN_STOCK", rec.Status)
	assert.Equal(t, map[string]int{"wh1": 80, "wh2": 45}, rec.WarehouseQuantities)

	status, raw := call(t, app, http.MethodGet, "/api/stock/"+rec.ProductID, "vendedor", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, rec.ProductID, decode[dto.StockRecordResponse](t, raw).ProductID)

	status, raw = call(t, app, http.MethodGet, "/api/stock?q=audifonos", "vendedor", nil)
	require.Equal(t, http.StatusOK, status)
	list := decode[dto.StockListResponse](t, raw)
	assert.Equal(t, 1, list.Total)

	status, raw = call(t, app, http.MethodGet, "/api/stock/"+rec.ProductID+"/status", "vendedor", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "IN_STOCK", decode[dto.StockStatusResponse](t, raw).Status)
}

func TestStockAPI_CreateSkuDuplicado(t *testing.T) {
	app := newStockAPI(t)
	seedHeadphones(t, app)

	status, raw := call(t, app, http.MethodPost, "/api/stock", "admin", fiber.Map{
		"sku":          "ELE-1001",
		"name":         "Otro",
		"distribution": fiber.Map{"mode": "single", "warehouse_id": "wh1", "stock": 1},
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DUPLICATE", errorCode(t, raw))
}

func TestStockAPI_CreateSinNombre(t *testing.T) {
	app := newStockAPI(t)
	status, raw := call(t, app, http.MethodPost, "/api/stock", "admin", fiber.Map{
		"distribution": fiber.Map{"mode": "single", "warehouse_id": "wh1", "stock": 1},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", errorCode(t, raw))
}

func TestStockAPI_TransferYHistorial(t *testing.T) {
	app := newStockAPI(t)
	rec := seedHeadphones(t, app)
	base := "/api/stock/" + rec.ProductID

	status, raw := call(t, app, http.MethodPost, base+"/adjustments", "bodeguero", fiber.Map{
		"type":              "transfer",
		"quantity":          30,
		"reason":            "TRANSFER_NOTE",
		"from_warehouse_id": "wh1",
		"to_warehouse_id":   "wh2",
	})
	require.Equal(t, http.StatusCreated, status, string(raw))
	res := decode[dto.AdjustStockResponse](t, raw)
	assert.Equal(t, 125, res.Record.OnHand)
	assert.Equal(t, map[string]int{"wh1": 50, "wh2": 75}, res.Record.WarehouseQuantities)
	assert.Equal(t, "TRANSFER", res.Adjustment.Type)
	assert.Equal(t, testUserName, res.Adjustment.Actor)

	// origen sin stock suficiente: nada cambia
	status, raw = call(t, app, http.MethodPost, base+"/adjustments", "bodeguero", fiber.Map{
		"type":              "TRANSFER",
		"quantity":          51,
		"reason":            "TRANSFER_NOTE",
		"from_warehouse_id": "wh1",
		"to_warehouse_id":   "wh2",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_WAREHOUSE_STOCK", errorCode(t, raw))

	status, raw = call(t, app, http.MethodGet, base+"/history", "vendedor", nil)
	require.Equal(t, http.StatusOK, status)
	hist := decode[dto.HistoryResponse](t, raw)
	require.Len(t, hist.Items, 1)
	assert.Equal(t, 1, hist.Page.Total)
	assert.Equal(t, 20, hist.Page.Limit)
	assert.Equal(t, 30, hist.Items[0].Quantity)
}

func TestStockAPI_AdjustValidaciones(t *testing.T) {
	app := newStockAPI(t)
	rec := seedHeadphones(t, app)
	path := "/api/stock/" + rec.ProductID + "/adjustments"

	cases := []struct {
		name string
		body fiber.Map
		code string
	}{
		{"sin motivo", fiber.Map{"type": "ADD", "quantity": 5, "warehouse_id": "wh1"}, "MISSING_REASON"},
		{"cantidad cero", fiber.Map{"type": "ADD", "quantity": 0, "reason": "OTHER", "warehouse_id": "wh1"}, "INVALID_QUANTITY"},
		{"sin bodega", fiber.Map{"type": "REMOVE", "quantity": 1, "reason": "DAMAGED"}, "MISSING_WAREHOUSE"},
		{"corrección por esta ruta", fiber.Map{"type": "CORRECTION", "quantity": 1, "reason": "CORRECTION", "warehouse_id": "wh1"}, "VALIDATION"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, raw := call(t, app, http.MethodPost, path, "admin", tc.body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, tc.code, errorCode(t, raw))
		})
	}

	status, raw := call(t, app, http.MethodPost, path, "admin", fiber.Map{"type": "ADD", "quantity": 1, "reason": "OTHER", "warehouse_id": "nope"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(t, raw))

	status, raw = call(t, app, http.MethodGet, "/api/stock/"+rec.ProductID+"/history", "admin", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decode[dto.HistoryResponse](t, raw).Items)
}

func TestStockAPI_VendedorNoAjusta(t *testing.T) {
	app := newStockAPI(t)
	rec := seedHeadphones(t, app)

	status, raw := call(t, app, http.MethodPost, "/api/stock/"+rec.ProductID+"/adjustments", "vendedor", fiber.Map{
		"type": "ADD", "quantity": 5, "reason": "SUPPLIER_DELIVERY", "warehouse_id": "wh1",
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(t, raw))
}

func TestStockAPI_SetOnHand(t *testing.T) {
	app := newStockAPI(t)
	rec := seedHeadphones(t, app)
	path := "/api/stock/" + rec.ProductID + "/on-hand"

	status, raw := call(t, app, http.MethodPut, path, "admin", fiber.Map{"on_hand": 100, "warehouse_id": "wh1", "reason": "correction"})
	require.Equal(t, http.StatusOK, status, string(raw))
	res := decode[dto.AdjustStockResponse](t, raw)
	assert.Equal(t, 100, res.Record.OnHand)
	assert.Equal(t, 55, res.Record.WarehouseQuantities["wh1"])
	assert.Equal(t, -25, res.Adjustment.Quantity)
	assert.Equal(t, "CORRECTION", res.Adjustment.Type)

	// dos bodegas y ninguna indicada
	status, raw = call(t, app, http.MethodPut, path, "admin", fiber.Map{"on_hand": 90, "reason": "CORRECTION"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "MISSING_WAREHOUSE", errorCode(t, raw))

	status, raw = call(t, app, http.MethodPut, path, "admin", fiber.Map{"reason": "CORRECTION"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", errorCode(t, raw))
}

func TestStockAPI_PlanningSoloAdmin(t *testing.T) {
	app := newStockAPI(t)
	rec := seedHeadphones(t, app)
	path := "/api/stock/" + rec.ProductID + "/planning"

	status, _ := call(t, app, http.MethodPut, path, "bodeguero", fiber.Map{"threshold": 200})
	assert.Equal(t, http.StatusForbidden, status)

	status, raw := call(t, app, http.MethodPut, path, "admin", fiber.Map{"threshold": 200, "incoming": 10})
	require.Equal(t, http.StatusOK, status, string(raw))
	out := decode[dto.StockRecordResponse](t, raw)
	assert.Equal(t, 200, out.Threshold)
	assert.Equal(t, 10, out.Incoming)
	assert.Equal(t, "LOW_STOCK", out.Status)

	status, raw = call(t, app, http.MethodGet, "/api/stock/replenishment", "vendedor", nil)
	require.Equal(t, http.StatusOK, status)
	list := decode[[]dto.ReplenishmentSuggestionDTO](t, raw)
	require.Len(t, list, 1)
	// ideal 300 - disponible 125 - entrante 10
	assert.Equal(t, 165, list[0].SuggestedOrderQty)
}

func TestStockAPI_ConsultasInvalidas(t *testing.T) {
	app := newStockAPI(t)

	status, raw := call(t, app, http.MethodGet, "/api/stock?status=BOGUS", "admin", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", errorCode(t, raw))

	status, raw = call(t, app, http.MethodGet, "/api/stock/no-existe", "admin", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(t, raw))

	status, _ = call(t, app, http.MethodGet, "/api/stock/no-existe/history?limit=-1", "admin", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestStockAPI_Stats(t *testing.T) {
	app := newStockAPI(t)
	seedHeadphones(t, app)

	status, raw := call(t, app, http.MethodGet, "/api/stock/stats", "vendedor", nil)
	require.Equal(t, http.StatusOK, status)
	summary := decode[dto.StockSummaryDTO](t, raw)
	assert.Equal(t, 1, summary.TotalProducts)
	assert.Equal(t, 125, summary.UnitsOnHand)
	assert.Len(t, summary.Warehouses, 2)
}

func TestStockAPI_EntradaConCostoRecalculaPromedio(t *testing.T) {
	app := newStockAPI(t)
	rec := seedHeadphones(t, app)

	status, raw := call(t, app, http.MethodPost, "/api/stock/"+rec.ProductID+"/adjustments", "bodeguero", fiber.Map{
		"type":         "ADD",
		"quantity":     75,
		"reason":       "SUPPLIER_DELIVERY",
		"warehouse_id": "wh2",
		"unit_cost":    "50.50",
	})
	require.Equal(t, http.StatusCreated, status, string(raw))
	res := decode[dto.AdjustStockResponse](t, raw)
	assert.Equal(t, 200, res.Record.OnHand)
	// (125*45.50 + 75*50.50) / 200
	assert.Equal(t, "47.375", res.Record.UnitCost.String())
}

func TestStockAPI_AjusteEsperaBloqueoDelProducto(t *testing.T) {
	locker := inventory.NewLocalLocker(200 * time.Millisecond)
	app := newStockAPIWithLocker(t, locker)

	status, raw := call(t, app, http.MethodPost, "/api/warehouses", "admin", fiber.Map{"id": "wh1", "name": "Principal"})
	require.Equal(t, http.StatusCreated, status, string(raw))
	for _, id := range []string{"prod-aaaa", "prod-bbbb"} {
		status, raw := call(t, app, http.MethodPost, "/api/stock", "admin", fiber.Map{
			"product_id":   id,
			"name":         "Producto " + id,
			"distribution": fiber.Map{"mode": "single", "warehouse_id": "wh1", "stock": 10},
		})
		require.Equal(t, http.StatusCreated, status, string(raw))
	}

	add := fiber.Map{"type": "ADD", "quantity": 1, "reason": "SUPPLIER_DELIVERY", "warehouse_id": "wh1"}
	for _, id := range []string{"prod-aaaa", "prod-bbbb"} {
		status, raw := call(t, app, http.MethodPost, "/api/stock/"+id+"/adjustments", "bodeguero", add)
		require.Equal(t, http.StatusCreated, status, string(raw))
	}

	release, err := locker.Lock(context.Background(), "prod-aaaa")
	require.NoError(t, err)

	status, raw = call(t, app, http.MethodPost, "/api/stock/prod-aaaa/adjustments", "bodeguero", add)
	assert.Equal(t, http.StatusConflict, status, string(raw))
	assert.Equal(t, "CONCURRENCY_CONFLICT", errorCode(t, raw))

	// otro producto no espera
	status, raw = call(t, app, http.MethodPost, "/api/stock/prod-bbbb/adjustments", "bodeguero", add)
	assert.Equal(t, http.StatusCreated, status, string(raw))

	release()
	status, raw = call(t, app, http.MethodPost, "/api/stock/prod-aaaa/adjustments", "bodeguero", add)
	require.Equal(t, http.StatusCreated, status, string(raw))
	res := decode[dto.AdjustStockResponse](t, raw)
	assert.Equal(t, 11, res.Adjustment.PreviousOnHand)
	assert.Equal(t, 12, res.Record.OnHand)
	assert.Equal(t, 0, locker.Len())
}
