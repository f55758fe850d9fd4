package inventory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/stock"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
)

// recordingPublisher guarda los eventos publicados.
type recordingPublisher struct {
	mu     sync.Mutex
	events []inventory.StockAdjustedEvent
}

func (p *recordingPublisher) PublishStockAdjusted(_ context.Context, ev inventory.StockAdjustedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Events() []inventory.StockAdjustedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]inventory.StockAdjustedEvent(nil), p.events...)
}

// countingMetrics cuenta ajustes por tipo y resultado.
type countingMetrics struct {
	mu       sync.Mutex
	outcomes map[string]int
	created  int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{outcomes: make(map[string]int)}
}

func (m *countingMetrics) ObserveAdjustment(adjType, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes[adjType+"/"+outcome]++
}

func (m *countingMetrics) ObserveLockWait(time.Duration) {}

func (m *countingMetrics) ObserveRecordCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created++
}

func (m *countingMetrics) Count(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.outcomes[key]
}

type fixture struct {
	store     *memory.Store
	create    *inventory.CreateStockUseCase
	adjust    *inventory.AdjustStockUseCase
	query     *inventory.StockQueryUseCase
	publisher *recordingPublisher
	metrics   *countingMetrics
}

// newFixture arma los casos de uso sobre el almacén en memoria con tres bodegas.
// skuDigits son los valores que devolverá la fuente aleatoria del generador de SKU.
func newFixture(t *testing.T, skuDigits ...int) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	for _, w := range []entity.Warehouse{
		{ID: "wh1", Name: "Principal", Location: "Bogotá"},
		{ID: "wh2", Name: "Norte", Location: "Medellín"},
		{ID: "wh3", Name: "Costa", Location: "Barranquilla"},
	} {
		w := w
		require.NoError(t, store.Warehouses().Create(ctx, &w))
	}

	var mu sync.Mutex
	next := 0
	gen := stock.NewSKUGeneratorWithSource(func(n int) int {
		mu.Lock()
		defer mu.Unlock()
		if next < len(skuDigits) {
			v := skuDigits[next]
			next++
			return v
		}
		next++
		return next % n
	})

	runner := memory.NewTxRunner(store)
	pub := &recordingPublisher{}
	metrics := newCountingMetrics()
	return &fixture{
		store:     store,
		create:    inventory.NewCreateStockUseCase(runner, store.StockRecords(), store.Warehouses(), gen, metrics, nil),
		adjust:    inventory.NewAdjustStockUseCase(runner, store.Warehouses(), inventory.NewLocalLocker(5*time.Second), pub, metrics, nil),
		query:     inventory.NewStockQueryUseCase(store.StockRecords(), store.Adjustments()),
		publisher: pub,
		metrics:   metrics,
	}
}

// headphones crea el producto de referencia: 80/45/20 en tres bodegas, umbral 20.
func (f *fixture) headphones(t *testing.T) *entity.StockRecord {
	t.Helper()
	rec, err := f.create.Create(context.Background(), inventory.CreateStockInput{
		SKU:       "ELE-1001",
		Name:      "Audífonos inalámbricos",
		Category:  "Electrónica",
		UnitCost:  decimal.RequireFromString("45.50"),
		Threshold: 20,
		Distribution: stock.DistributionInput{
			Mode:       stock.DistributionMultiple,
			Quantities: map[string]int{"wh1": 80, "wh2": 45, "wh3": 20},
		},
	})
	require.NoError(t, err)
	return rec
}

// seed inserta un registro arbitrario directamente en el almacén (p. ej. con reservas).
func (f *fixture) seed(t *testing.T, rec *entity.StockRecord) {
	t.Helper()
	if rec.Version == 0 {
		rec.Version = 1
	}
	require.NoError(t, f.store.StockRecords().Create(context.Background(), rec))
}

func (f *fixture) history(t *testing.T, productID string) []*entity.Adjustment {
	t.Helper()
	h, err := f.query.GetHistory(context.Background(), productID, 0)
	require.NoError(t, err)
	return h
}
