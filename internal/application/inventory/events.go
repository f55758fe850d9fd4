package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// EventTypeStockAdjusted tipo del evento publicado tras cada ajuste confirmado.
const EventTypeStockAdjusted = "stock.adjusted"

// StockAdjustedEvent evento de integración para consumidores externos (p. ej. fulfillment).
type StockAdjustedEvent struct {
	Type            string    `json:"type"`
	AdjustmentID    string    `json:"adjustment_id"`
	ProductID       string    `json:"product_id"`
	SKU             string    `json:"sku"`
	AdjustmentType  string    `json:"adjustment_type"`
	Quantity        int       `json:"quantity"`
	Reason          string    `json:"reason"`
	WarehouseID     string    `json:"warehouse_id,omitempty"`
	FromWarehouseID string    `json:"from_warehouse_id,omitempty"`
	ToWarehouseID   string    `json:"to_warehouse_id,omitempty"`
	ResultingOnHand int       `json:"resulting_on_hand"`
	Status          string    `json:"status"`
	Actor           string    `json:"actor"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// EventPublisher publica eventos de stock. Se invoca después del commit y fuera del
// bloqueo del producto; un fallo de publicación no revierte el ajuste.
type EventPublisher interface {
	PublishStockAdjusted(ctx context.Context, event StockAdjustedEvent) error
}

type nopPublisher struct{}

func (nopPublisher) PublishStockAdjusted(context.Context, StockAdjustedEvent) error { return nil }

// NopPublisher publicador vacío (Kafka deshabilitado).
func NopPublisher() EventPublisher { return nopPublisher{} }

func newAdjustedEvent(adj *entity.Adjustment, rec *entity.StockRecord, status string) StockAdjustedEvent {
	return StockAdjustedEvent{
		Type:            EventTypeStockAdjusted,
		AdjustmentID:    adj.ID,
		ProductID:       adj.ProductID,
		SKU:             rec.SKU,
		AdjustmentType:  string(adj.Type),
		Quantity:        adj.Quantity,
		Reason:          string(adj.Reason),
		WarehouseID:     adj.WarehouseID,
		FromWarehouseID: adj.FromWarehouseID,
		ToWarehouseID:   adj.ToWarehouseID,
		ResultingOnHand: adj.ResultingOnHand,
		Status:          status,
		Actor:           adj.Actor,
		OccurredAt:      adj.Timestamp,
	}
}
