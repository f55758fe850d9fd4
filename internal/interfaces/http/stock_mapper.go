package http

import (
	"strings"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/stock"
)

func toStockRecordResponse(r *entity.StockRecord) dto.StockRecordResponse {
	quantities := make(map[string]int, len(r.WarehouseQuantities))
	for id, q := range r.WarehouseQuantities {
		quantities[id] = q
	}
	return dto.StockRecordResponse{
		ProductID:           r.ProductID,
		SKU:                 r.SKU,
		Name:                r.Name,
		Category:            r.Category,
		Icon:                r.Icon,
		UnitCost:            r.UnitCost,
		OnHand:              r.OnHand,
		Reserved:            r.Reserved,
		Incoming:            r.Incoming,
		Available:           stock.Available(r),
		Threshold:           r.Threshold,
		Status:              string(stock.StatusOf(r)),
		WarehouseQuantities: quantities,
		Version:             r.Version,
		CreatedAt:           r.CreatedAt,
		LastUpdated:         r.LastUpdated,
	}
}

func toAdjustmentResponse(a *entity.Adjustment) dto.AdjustmentResponse {
	return dto.AdjustmentResponse{
		ID:              a.ID,
		Sequence:        a.Sequence,
		ProductID:       a.ProductID,
		Type:            string(a.Type),
		Quantity:        a.Quantity,
		Reason:          string(a.Reason),
		Note:            a.Note,
		WarehouseID:     a.WarehouseID,
		FromWarehouseID: a.FromWarehouseID,
		ToWarehouseID:   a.ToWarehouseID,
		Actor:           a.Actor,
		Timestamp:       a.Timestamp,
		PreviousOnHand:  a.PreviousOnHand,
		ResultingOnHand: a.ResultingOnHand,
	}
}

func toAdjustStockResponse(res *inventory.AdjustmentResult) dto.AdjustStockResponse {
	return dto.AdjustStockResponse{
		Record:     toStockRecordResponse(res.Record),
		Adjustment: toAdjustmentResponse(res.Adjustment),
	}
}

func toCreateStockInput(in dto.CreateStockRequest, actor string) inventory.CreateStockInput {
	return inventory.CreateStockInput{
		ProductID: in.ProductID,
		SKU:       in.SKU,
		Name:      strings.TrimSpace(in.Name),
		Category:  strings.TrimSpace(in.Category),
		Icon:      in.Icon,
		UnitCost:  in.UnitCost,
		Threshold: in.Threshold,
		Distribution: stock.DistributionInput{
			Mode:        stock.DistributionMode(strings.ToLower(in.Distribution.Mode)),
			WarehouseID: in.Distribution.WarehouseID,
			Stock:       in.Distribution.Stock,
			Quantities:  in.Distribution.Quantities,
		},
		Actor: actor,
	}
}

func toAdjustStockInput(productID string, in dto.AdjustStockRequest, actor string) inventory.AdjustStockInput {
	return inventory.AdjustStockInput{
		ProductID:       productID,
		Type:            entity.AdjustmentType(strings.ToUpper(in.Type)),
		Quantity:        in.Quantity,
		Reason:          entity.AdjustmentReason(strings.ToUpper(in.Reason)),
		Note:            in.Note,
		WarehouseID:     in.WarehouseID,
		FromWarehouseID: in.FromWarehouseID,
		ToWarehouseID:   in.ToWarehouseID,
		UnitCost:        in.UnitCost,
		Actor:           actor,
	}
}
