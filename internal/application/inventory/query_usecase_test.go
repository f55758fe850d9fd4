package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/stock"
)

func seedCatalog(t *testing.T, f *fixture) {
	t.Helper()
	f.seed(t, &entity.StockRecord{ProductID: "p1", SKU: "ELE-1001", Name: "Audífonos", OnHand: 145, Reserved: 12, Threshold: 20,
		WarehouseQuantities: map[string]int{"wh1": 80, "wh2": 45, "wh3": 20}})
	f.seed(t, &entity.StockRecord{ProductID: "p2", SKU: "ACC-2002", Name: "Cable USB", OnHand: 8, Threshold: 20,
		WarehouseQuantities: map[string]int{"wh1": 8}})
	f.seed(t, &entity.StockRecord{ProductID: "p3", SKU: "ACC-3003", Name: "Cargador", OnHand: 0, Threshold: 10,
		WarehouseQuantities: map[string]int{"wh2": 0}})
	f.seed(t, &entity.StockRecord{ProductID: "p4", SKU: "OFI-4004", Name: "Lámpara", OnHand: 15, Threshold: 20,
		WarehouseQuantities: map[string]int{"wh2": 15}})
}

func TestGetStockStatus(t *testing.T) {
	f := newFixture(t)
	seedCatalog(t, f)
	ctx := context.Background()

	cases := map[string]stock.Status{
		"p1": stock.StatusInStock,
		"p2": stock.StatusCritical,
		"p3": stock.StatusOutOfStock,
		"p4": stock.StatusLowStock,
	}
	for id, want := range cases {
		view, err := f.query.GetStockStatus(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, view.Status, id)
	}
	view, err := f.query.GetStockStatus(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 133, view.Available)

	_, err = f.query.GetStockStatus(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetRecord_DevuelveCopia(t *testing.T) {
	f := newFixture(t)
	seedCatalog(t, f)
	ctx := context.Background()

	rec, err := f.query.GetRecord(ctx, "p1")
	require.NoError(t, err)
	rec.WarehouseQuantities["wh1"] = 0

	again, err := f.query.GetRecord(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 80, again.WarehouseQuantities["wh1"])
}

func TestQueryStock(t *testing.T) {
	f := newFixture(t)
	seedCatalog(t, f)
	ctx := context.Background()

	all, err := f.query.QueryStock(ctx, stock.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "p1", all[0].ProductID, "orden de inserción")

	bySearch, err := f.query.QueryStock(ctx, stock.Filter{Search: "lampara"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
	assert.Equal(t, "p4", bySearch[0].ProductID)

	byStatus, err := f.query.QueryStock(ctx, stock.Filter{Status: stock.StatusCritical})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, "p2", byStatus[0].ProductID)

	byWarehouse, err := f.query.QueryStock(ctx, stock.Filter{WarehouseID: "wh2"})
	require.NoError(t, err)
	require.Len(t, byWarehouse, 2, "p3 tiene la bodega pero sin unidades")

	sorted, err := f.query.QueryStock(ctx, stock.Filter{SortBy: stock.SortByOnHand, Desc: true})
	require.NoError(t, err)
	assert.Equal(t, "p1", sorted[0].ProductID)
	assert.Equal(t, "p3", sorted[3].ProductID)

	_, err = f.query.QueryStock(ctx, stock.Filter{Status: "MAYBE"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.query.QueryStock(ctx, stock.Filter{SortBy: "price"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func addUnits(t *testing.T, f *fixture, productID string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := f.adjust.AdjustStock(context.Background(), inventory.AdjustStockInput{
			ProductID: productID, Type: entity.AdjustmentAdd, Quantity: i + 1,
			Reason: entity.ReasonSupplierDelivery, WarehouseID: "wh1",
		})
		require.NoError(t, err)
	}
}

func TestGetHistory_LimiteYOrden(t *testing.T) {
	f := newFixture(t)
	rec := f.headphones(t)
	addUnits(t, f, rec.ProductID, 5)
	ctx := context.Background()

	h, err := f.query.GetHistory(ctx, rec.ProductID, 2)
	require.NoError(t, err)
	require.Len(t, h, 2)
	assert.Equal(t, 5, h[0].Quantity, "el más reciente primero")
	assert.Equal(t, 4, h[1].Quantity)

	n, err := f.query.CountHistory(ctx, rec.ProductID)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	_, err = f.query.GetHistory(ctx, "nope", 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHistorySeq_PerezosoFinitoYReiniciable(t *testing.T) {
	f := newFixture(t)
	rec := f.headphones(t)
	addUnits(t, f, rec.ProductID, 120)
	ctx := context.Background()

	seq := f.query.HistorySeq(ctx, rec.ProductID, 0)
	collect := func() []int {
		var out []int
		for adj, err := range seq {
			require.NoError(t, err)
			out = append(out, adj.Quantity)
		}
		return out
	}
	first := collect()
	require.Len(t, first, 120, "recorre más de una página")
	assert.Equal(t, 120, first[0])
	assert.Equal(t, 1, first[119])
	assert.Equal(t, first, collect(), "cada recorrido vuelve a empezar")

	limited := 0
	for _, err := range f.query.HistorySeq(ctx, rec.ProductID, 7) {
		require.NoError(t, err)
		limited++
	}
	assert.Equal(t, 7, limited)

	stopped := 0
	for range seq {
		stopped++
		if stopped == 3 {
			break
		}
	}
	assert.Equal(t, 3, stopped)
}
