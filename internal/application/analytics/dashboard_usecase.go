// Package analytics contiene los reportes de lectura sobre el ledger de stock.
package analytics

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/internal/domain/stock"
)

// DashboardUseCase genera el resumen del inventario.
//
// Fuente de datos: repositorios de stock y de bodegas (solo lectura).
type DashboardUseCase struct {
	records    repository.StockRecordRepository
	warehouses repository.WarehouseRepository
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(records repository.StockRecordRepository, warehouses repository.WarehouseRepository) *DashboardUseCase {
	return &DashboardUseCase{records: records, warehouses: warehouses}
}

// GetSummary construye el StockSummaryDTO.
//
// Dos lecturas en paralelo:
//  1. registros de stock -> conteos por estado, unidades y valor
//  2. directorio de bodegas -> nombres y orden de las bodegas
func (uc *DashboardUseCase) GetSummary(ctx context.Context) (*dto.StockSummaryDTO, error) {
	var (
		records []*entity.StockRecord
		whs     []*entity.Warehouse
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = uc.records.List(gctx)
		if err != nil {
			return fmt.Errorf("dashboard: registros de stock: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		whs, err = uc.warehouses.List(gctx)
		if err != nil {
			return fmt.Errorf("dashboard: bodegas: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &dto.StockSummaryDTO{
		TotalProducts:  len(records),
		ByStatus:       make(map[string]int, len(stock.Statuses)),
		InventoryValue: decimal.Zero,
	}
	for _, s := range stock.Statuses {
		summary.ByStatus[string(s)] = 0
	}

	type whTotals struct {
		units    int
		products int
		value    decimal.Decimal
	}
	perWarehouse := make(map[string]*whTotals, len(whs))
	for _, w := range whs {
		perWarehouse[w.ID] = &whTotals{value: decimal.Zero}
	}

	for _, r := range records {
		summary.ByStatus[string(stock.StatusOf(r))]++
		summary.UnitsOnHand += r.OnHand
		summary.UnitsReserved += r.Reserved
		summary.UnitsIncoming += r.Incoming
		summary.UnitsAvailable += stock.Available(r)
		summary.InventoryValue = summary.InventoryValue.Add(r.UnitCost.Mul(decimal.NewFromInt(int64(r.OnHand))))

		for id, q := range r.WarehouseQuantities {
			t, ok := perWarehouse[id]
			if !ok {
				// bodega referenciada que ya no está en el directorio
				t = &whTotals{value: decimal.Zero}
				perWarehouse[id] = t
			}
			t.units += q
			if q > 0 {
				t.products++
			}
			t.value = t.value.Add(r.UnitCost.Mul(decimal.NewFromInt(int64(q))))
		}
	}
	summary.InventoryValue = summary.InventoryValue.Round(2)

	summary.Warehouses = make([]dto.WarehouseStockDTO, 0, len(perWarehouse))
	seen := make(map[string]bool, len(whs))
	for _, w := range whs {
		seen[w.ID] = true
		t := perWarehouse[w.ID]
		summary.Warehouses = append(summary.Warehouses, dto.WarehouseStockDTO{
			WarehouseID: w.ID, Name: w.Name, Units: t.units, Products: t.products, Value: t.value.Round(2),
		})
	}
	for _, r := range records {
		for id := range r.WarehouseQuantities {
			if seen[id] {
				continue
			}
			seen[id] = true
			t := perWarehouse[id]
			summary.Warehouses = append(summary.Warehouses, dto.WarehouseStockDTO{
				WarehouseID: id, Units: t.units, Products: t.products, Value: t.value.Round(2),
			})
		}
	}
	return summary, nil
}
