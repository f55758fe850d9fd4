package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/internal/domain/stock"
)

// ReplenishmentUseCase genera la lista de reposición a partir del ledger.
type ReplenishmentUseCase struct {
	records repository.StockRecordRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(records repository.StockRecordRepository) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{records: records}
}

// idealStock umbral * 1.5 redondeado hacia arriba.
func idealStock(threshold int) int {
	return (3*threshold + 1) / 2
}

// GenerateReplenishmentList devuelve los productos con disponible <= umbral y la cantidad
// sugerida de pedido (ideal - disponible - entrante, nunca negativa).
// warehouseID vacío considera todos los productos; si no, solo los distribuidos en esa bodega.
// Orden: mayor déficit bajo el umbral primero; la prioridad 1 es la más urgente.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context, warehouseID string) ([]dto.ReplenishmentSuggestionDTO, error) {
	all, err := uc.records.List(ctx)
	if err != nil {
		return nil, err
	}

	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0)
	for _, rec := range all {
		if warehouseID != "" {
			if _, ok := rec.WarehouseQuantities[warehouseID]; !ok {
				continue
			}
		}
		status := stock.StatusOf(rec)
		if status == stock.StatusInStock {
			continue
		}
		available := stock.Available(rec)
		ideal := idealStock(rec.Threshold)
		suggested := max(0, ideal-available-rec.Incoming)
		qty := decimal.NewFromInt(int64(suggested))

		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			ProductID:          rec.ProductID,
			SKU:                rec.SKU,
			ProductName:        rec.Name,
			Category:           rec.Category,
			Status:             string(status),
			OnHand:             rec.OnHand,
			Available:          available,
			Incoming:           rec.Incoming,
			Threshold:          rec.Threshold,
			IdealStock:         ideal,
			SuggestedOrderQty:  suggested,
			UnitCost:           rec.UnitCost,
			EstimatedOrderCost: qty.Mul(rec.UnitCost).Round(2),
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		defA, defB := a.Threshold-a.Available, b.Threshold-b.Available
		if defA != defB {
			return defA > defB
		}
		return a.SuggestedOrderQty > b.SuggestedOrderQty
	})

	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
