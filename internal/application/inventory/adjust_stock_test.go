package inventory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/stock"
)

func TestAdjustStock_Add(t *testing.T) {
	f := newFixture(t)
	rec := f.headphones(t)

	res, err := f.adjust.AdjustStock(context.Background(), inventory.AdjustStockInput{
		ProductID:   rec.ProductID,
		Type:        entity.AdjustmentAdd,
		Quantity:    10,
		Reason:      entity.ReasonSupplierDelivery,
		WarehouseID: "wh2",
		Actor:       "ana",
	})
	require.NoError(t, err)
	assert.Equal(t, 155, res.Record.OnHand)
	assert.Equal(t, 55, res.Record.WarehouseQuantities["wh2"])
	require.NoError(t, stock.CheckInvariants(res.Record))

	adj := res.Adjustment
	assert.NotEmpty(t, adj.ID)
	assert.Positive(t, adj.Sequence)
	assert.Equal(t, entity.AdjustmentAdd, adj.Type)
	assert.Equal(t, 10, adj.Quantity)
	assert.Equal(t, "wh2", adj.WarehouseID)
	assert.Empty(t, adj.FromWarehouseID)
	assert.Equal(t, "ana", adj.Actor)
	assert.Equal(t, 145, adj.PreviousOnHand)
	assert.Equal(t, 155, adj.ResultingOnHand)

	h := f.history(t, rec.ProductID)
	require.Len(t, h, 1)
	assert.Equal(t, adj.ID, h[0].ID)

	events := f.publisher.Events()
	require.Len(t, events, 1)
	assert.Equal(t, inventory.EventTypeStockAdjusted, events[0].Type)
	assert.Equal(t, "ELE-1001", events[0].SKU)
	assert.Equal(t, string(stock.StatusInStock), events[0].Status)
	assert.Equal(t, 1, f.metrics.Count("ADD/ok"))
}

func TestAdjustStock_ActorPorDefecto(t *testing.T) {
	f := newFixture(t)
	rec := f.headphones(t)
	res, err := f.adjust.AdjustStock(context.Background(), inventory.AdjustStockInput{
		ProductID: rec.ProductID, Type: entity.AdjustmentAdd, Quantity: 1,
		Reason: entity.ReasonOther, WarehouseID: "wh1",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ActorSystem, res.Adjustment.Actor)
}

func TestAdjustStock_RemoveRecortaEnCero(t *testing.T) {
	f := newFixture(t)
	f.seed(t, &entity.StockRecord{
		ProductID: "p1", SKU: "ACC-1001", Name: "Cable", OnHand: 10, Threshold: 5,
		WarehouseQuantities: map[string]int{"wh1": 10},
	})

	res, err := f.adjust.AdjustStock(context.Background(), inventory.AdjustStockInput{
		ProductID: "p1", Type: entity.AdjustmentRemove, Quantity: 25,
		Reason: entity.ReasonDamaged, WarehouseID: "wh1",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Record.OnHand)
	assert.Equal(t, 0, res.Record.WarehouseQuantities["wh1"])
	assert.Equal(t, 25, res.Adjustment.Quantity, "se registra la cantidad solicitada")
	assert.Equal(t, 10, res.Adjustment.PreviousOnHand)
	assert.Equal(t, 0, res.Adjustment.ResultingOnHand)
	assert.Equal(t, stock.StatusOutOfStock, stock.StatusOf(res.Record))
}

func TestAdjustStock_RemoveAjustaReservado(t *testing.T) {
	f := newFixture(t)
	f.seed(t, &entity.StockRecord{
		ProductID: "p1", SKU: "ACC-1001", Name: "Cable", OnHand: 10, Reserved: 8, Threshold: 5,
		WarehouseQuantities: map[string]int{"wh1": 10},
	})
	res, err := f.adjust.AdjustStock(context.Background(), inventory.AdjustStockInput{
		ProductID: "p1", Type: entity.AdjustmentRemove, Quantity: 4,
		Reason: entity.ReasonTheft, WarehouseID: "wh1",
	})
	require.NoError(t, err)
	assert.Equal(t, 6, res.Record.OnHand)
	assert.Equal(t, 6, res.Record.Reserved, "reserved nunca supera on-hand")
	assert.Equal(t, 0, stock.Available(res.Record))
}

func TestAdjustStock_TransferConserva(t *testing.T) {
	f := newFixture(t)
	rec := f.headphones(t)

	res, err := f.adjust.AdjustStock(context.Background(), inventory.AdjustStockInput{
		ProductID: rec.ProductID, Type: entity.AdjustmentTransfer, Quantity: 30,
		Reason: entity.ReasonTransferNote, FromWarehouseID: "wh1", ToWarehouseID: "wh3",
	})
	require.NoError(t, err)
	assert.Equal(t, 145, res.Record.OnHand)
	assert.Equal(t, 50, res.Record.WarehouseQuantities["wh1"])
	assert.Equal(t, 50, res.Record.WarehouseQuantities["wh3"])
	assert.Equal(t, 45, res.Record.WarehouseQuantities["wh2"])
	assert.Equal(t, "wh1", res.Adjustment.FromWarehouseID)
	assert.Equal(t, "wh3", res.Adjustment.ToWarehouseID)
	assert.Empty(t, res.Adjustment.WarehouseID)
	assert.Equal(t, res.Adjustment.PreviousOnHand, res.Adjustment.ResultingOnHand)
}

func TestAdjustStock_TransferInsuficienteNoCambiaNada(t *testing.T) {
	f := newFixture(t)
	rec := f.headphones(t)

	_, err := f.adjust.AdjustStock(context.Background(), inventory.AdjustStockInput{
		ProductID: rec.ProductID, Type: entity.AdjustmentTransfer, Quantity: 21,
		Reason: entity.ReasonTransferNote, FromWarehouseID: "wh3", ToWarehouseID: "wh1",
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientWarehouseStock)

	after, err := f.query.GetRecord(context.Background(), rec.ProductID)
	require.NoError(t, err)
	assert.Equal(t, rec.WarehouseQuantities, after.WarehouseQuantities)
	assert.Equal(t, rec.Version, after.Version)
	assert.Empty(t, f.history(t, rec.ProductID))
	assert.Empty(t, f.publisher.Events())
	assert.Equal(t, 1, f.metrics.Count("TRANSFER/rejected"))
}

func TestAdjustStock_ErroresDeValidacion(t *testing.T) {
	cases := []struct {
		name string
		in   inventory.AdjustStockInput
		want error
	}{
		{"cantidad cero", inventory.AdjustStockInput{Type: entity.AdjustmentAdd, Quantity: 0, Reason: entity.ReasonOther, WarehouseID: "wh1"}, domain.ErrInvalidQuantity},
		{"cantidad negativa", inventory.AdjustStockInput{Type: entity.AdjustmentRemove, Quantity: -3, Reason: entity.ReasonOther, WarehouseID: "wh1"}, domain.ErrInvalidQuantity},
		{"sin motivo", inventory.AdjustStockInput{Type: entity.AdjustmentAdd, Quantity: 1, WarehouseID: "wh1"}, domain.ErrMissingReason},
		{"motivo desconocido", inventory.AdjustStockInput{Type: entity.AdjustmentAdd, Quantity: 1, Reason: "GIFT", WarehouseID: "wh1"}, domain.ErrMissingReason},
		{"add sin bodega", inventory.AdjustStockInput{Type: entity.AdjustmentAdd, Quantity: 1, Reason: entity.ReasonOther}, domain.ErrMissingWarehouse},
		{"transfer misma bodega", inventory.AdjustStockInput{Type: entity.AdjustmentTransfer, Quantity: 1, Reason: entity.ReasonOther, FromWarehouseID: "wh1", ToWarehouseID: "wh1"}, domain.ErrInvalidInput},
		{"correction por esta vía", inventory.AdjustStockInput{Type: entity.AdjustmentCorrection, Quantity: 1, Reason: entity.ReasonOther, WarehouseID: "wh1"}, domain.ErrInvalidInput},
		{"bodega inexistente", inventory.AdjustStockInput{Type: entity.AdjustmentAdd, Quantity: 1, Reason: entity.ReasonOther, WarehouseID: "wh9"}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			rec := f.headphones(t)
			tc.in.ProductID = rec.ProductID

			_, err := f.adjust.AdjustStock(context.Background(), tc.in)
			assert.ErrorIs(t, err, tc.want)

			after, err := f.query.GetRecord(context.Background(), rec.ProductID)
			require.NoError(t, err)
			assert.Equal(t, 145, after.OnHand)
			assert.Empty(t, f.history(t, rec.ProductID))
		})
	}
}

func TestAdjustStock_ProductoInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.adjust.AdjustStock(context.Background(), inventory.AdjustStockInput{
		ProductID: "nope", Type: entity.AdjustmentAdd, Quantity: 1,
		Reason: entity.ReasonOther, WarehouseID: "wh1",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdjustStock_ConcurrenciaSinPerdidas(t *testing.T) {
	f := newFixture(t)
	rec := f.headphones(t)
	const n = 50

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.adjust.AdjustStock(context.Background(), inventory.AdjustStockInput{
				ProductID: rec.ProductID, Type: entity.AdjustmentAdd, Quantity: 1,
				Reason: entity.ReasonSupplierDelivery, WarehouseID: "wh1",
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	after, err := f.query.GetRecord(context.Background(), rec.ProductID)
	require.NoError(t, err)
	assert.Equal(t, 145+n, after.OnHand)
	assert.Equal(t, 80+n, after.WarehouseQuantities["wh1"])

	h := f.history(t, rec.ProductID)
	require.Len(t, h, n)
	seen := make(map[int]bool, n)
	for _, adj := range h {
		assert.False(t, seen[adj.ResultingOnHand], "cada ajuste parte del resultado del anterior")
		seen[adj.ResultingOnHand] = true
	}
}

func TestAdjustStock_HistorialReproduceElOnHand(t *testing.T) {
	f := newFixture(t)
	rec := f.headphones(t)
	ctx := context.Background()

	ops := []inventory.AdjustStockInput{
		{Type: entity.AdjustmentAdd, Quantity: 10, Reason: entity.ReasonSupplierDelivery, WarehouseID: "wh2"},
		{Type: entity.AdjustmentRemove, Quantity: 100, Reason: entity.ReasonDamaged, WarehouseID: "wh3"},
		{Type: entity.AdjustmentTransfer, Quantity: 5, Reason: entity.ReasonTransferNote, FromWarehouseID: "wh1", ToWarehouseID: "wh3"},
		{Type: entity.AdjustmentRemove, Quantity: 7, Reason: entity.ReasonOrderFulfillment, WarehouseID: "wh1"},
	}
	for _, op := range ops {
		op.ProductID = rec.ProductID
		_, err := f.adjust.AdjustStock(ctx, op)
		require.NoError(t, err)
	}
	_, err := f.adjust.SetStockDirect(ctx, inventory.SetStockDirectInput{
		ProductID: rec.ProductID, NewOnHand: 120, WarehouseID: "wh2", Reason: entity.ReasonCorrection,
	})
	require.NoError(t, err)

	h := f.history(t, rec.ProductID)
	require.Len(t, h, len(ops)+1)

	onHand := rec.OnHand
	for i := len(h) - 1; i >= 0; i-- {
		assert.Equal(t, onHand, h[i].PreviousOnHand)
		onHand = h[i].ResultingOnHand
	}
	after, err := f.query.GetRecord(ctx, rec.ProductID)
	require.NoError(t, err)
	assert.Equal(t, after.OnHand, onHand)
	assert.Equal(t, 120, after.OnHand)
	require.NoError(t, stock.CheckInvariants(after))
}

func TestSetStockDirect_RegistraDelta(t *testing.T) {
	f := newFixture(t)
	rec := f.headphones(t)

	res, err := f.adjust.SetStockDirect(context.Background(), inventory.SetStockDirectInput{
		ProductID: rec.ProductID, NewOnHand: 130, WarehouseID: "wh1",
		Reason: entity.ReasonCorrection, Note: "conteo físico", Actor: "luis",
	})
	require.NoError(t, err)
	assert.Equal(t, 130, res.Record.OnHand)
	assert.Equal(t, 65, res.Record.WarehouseQuantities["wh1"])

	adj := res.Adjustment
	assert.Equal(t, entity.AdjustmentCorrection, adj.Type)
	assert.Equal(t, -15, adj.Quantity)
	assert.Equal(t, "wh1", adj.WarehouseID)
	assert.Equal(t, "conteo físico", adj.Note)
	assert.Equal(t, 145, adj.PreviousOnHand)
	assert.Equal(t, 130, adj.ResultingOnHand)
}

func TestSetStockDirect_SinCambioTambienQuedaEnHistorial(t *testing.T) {
	f := newFixture(t)
	rec := f.headphones(t)
	res, err := f.adjust.SetStockDirect(context.Background(), inventory.SetStockDirectInput{
		ProductID: rec.ProductID, NewOnHand: 145, WarehouseID: "wh1", Reason: entity.ReasonCorrection,
	})
	require.NoError(t, err)
	assert.Zero(t, res.Adjustment.Quantity)
	assert.Len(t, f.history(t, rec.ProductID), 1)
}

func TestSetStockDirect_BodegaUnicaPorDefecto(t *testing.T) {
	f := newFixture(t)
	f.seed(t, &entity.StockRecord{
		ProductID: "p1", SKU: "ACC-1001", Name: "Cable", OnHand: 10,
		WarehouseQuantities: map[string]int{"wh2": 10},
	})
	res, err := f.adjust.SetStockDirect(context.Background(), inventory.SetStockDirectInput{
		ProductID: "p1", NewOnHand: 14, Reason: entity.ReasonCorrection,
	})
	require.NoError(t, err)
	assert.Equal(t, 14, res.Record.WarehouseQuantities["wh2"])
	assert.Equal(t, "wh2", res.Adjustment.WarehouseID)
}

func TestSetStockDirect_Errores(t *testing.T) {
	f := newFixture(t)
	rec := f.headphones(t)
	ctx := context.Background()

	_, err := f.adjust.SetStockDirect(ctx, inventory.SetStockDirectInput{ProductID: rec.ProductID, NewOnHand: 10, WarehouseID: "wh1"})
	assert.ErrorIs(t, err, domain.ErrMissingReason)

	_, err = f.adjust.SetStockDirect(ctx, inventory.SetStockDirectInput{ProductID: rec.ProductID, NewOnHand: -1, WarehouseID: "wh1", Reason: entity.ReasonCorrection})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = f.adjust.SetStockDirect(ctx, inventory.SetStockDirectInput{ProductID: rec.ProductID, NewOnHand: 10, Reason: entity.ReasonCorrection})
	assert.ErrorIs(t, err, domain.ErrMissingWarehouse, "con varias bodegas hay que indicar cuál absorbe el delta")

	_, err = f.adjust.SetStockDirect(ctx, inventory.SetStockDirectInput{ProductID: rec.ProductID, NewOnHand: 100, WarehouseID: "wh3", Reason: entity.ReasonCorrection})
	assert.ErrorIs(t, err, domain.ErrInsufficientWarehouseStock)

	assert.Empty(t, f.history(t, rec.ProductID))
}

func TestUpdatePlanning_NoGeneraHistorial(t *testing.T) {
	f := newFixture(t)
	rec := f.headphones(t)
	threshold, incoming := 150, 40

	updated, err := f.adjust.UpdatePlanning(context.Background(), rec.ProductID, inventory.PlanningInput{
		Threshold: &threshold, Incoming: &incoming,
	})
	require.NoError(t, err)
	assert.Equal(t, 150, updated.Threshold)
	assert.Equal(t, 40, updated.Incoming)
	assert.Equal(t, 145, updated.OnHand)
	assert.Equal(t, stock.StatusLowStock, stock.StatusOf(updated))
	assert.Empty(t, f.history(t, rec.ProductID))

	negative := -1
	_, err = f.adjust.UpdatePlanning(context.Background(), rec.ProductID, inventory.PlanningInput{Threshold: &negative})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = f.adjust.UpdatePlanning(context.Background(), rec.ProductID, inventory.PlanningInput{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
