package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DistributionRequest reparto inicial del stock entre bodegas.
// mode "single" usa WarehouseID + Stock; mode "multiple" usa Quantities.
type DistributionRequest struct {
	Mode        string         `json:"mode" validate:"required"`
	WarehouseID string         `json:"warehouse_id,omitempty"`
	Stock       int            `json:"stock"`
	Quantities  map[string]int `json:"quantities,omitempty"`
}

// CreateStockRequest body para POST /api/stock.
type CreateStockRequest struct {
	ProductID    string              `json:"product_id,omitempty" validate:"omitempty,max=64"`
	SKU          string              `json:"sku,omitempty" validate:"omitempty,max=32"`
	Name         string              `json:"name" validate:"required,min=1,max=200"`
	Category     string              `json:"category" validate:"max=100"`
	Icon         string              `json:"icon,omitempty" validate:"max=16"`
	UnitCost     decimal.Decimal     `json:"unit_cost"`
	Threshold    int                 `json:"threshold"`
	Distribution DistributionRequest `json:"distribution" validate:"required"`
}

// StockRecordResponse salida de un registro de stock.
type StockRecordResponse struct {
	ProductID           string          `json:"product_id"`
	SKU                 string          `json:"sku"`
	Name                string          `json:"name"`
	Category            string          `json:"category"`
	Icon                string          `json:"icon,omitempty"`
	UnitCost            decimal.Decimal `json:"unit_cost"`
	OnHand              int             `json:"on_hand"`
	Reserved            int             `json:"reserved"`
	Incoming            int             `json:"incoming"`
	Available           int             `json:"available"`
	Threshold           int             `json:"threshold"`
	Status              string          `json:"status"`
	WarehouseQuantities map[string]int  `json:"warehouse_quantities"`
	Version             int64           `json:"version"`
	CreatedAt           time.Time       `json:"created_at"`
	LastUpdated         time.Time       `json:"last_updated"`
}

// StockListResponse resultado de GET /api/stock.
type StockListResponse struct {
	Items []StockRecordResponse `json:"items"`
	Total int                   `json:"total"`
}

// StockStatusResponse salida de GET /api/stock/:id/status.
type StockStatusResponse struct {
	ProductID string `json:"product_id"`
	Status    string `json:"status"`
	Available int    `json:"available"`
	Threshold int    `json:"threshold"`
}

// AdjustStockRequest body para POST /api/stock/:id/adjustments.
type AdjustStockRequest struct {
	Type            string `json:"type" validate:"required"`
	Quantity        int    `json:"quantity"`
	Reason          string `json:"reason"`
	Note            string `json:"note,omitempty" validate:"max=500"`
	WarehouseID     string `json:"warehouse_id,omitempty"`
	FromWarehouseID string `json:"from_warehouse_id,omitempty"`
	ToWarehouseID   string `json:"to_warehouse_id,omitempty"`
	// UnitCost costo de la entrada; solo ADD. Recalcula el costo promedio ponderado.
	UnitCost *decimal.Decimal `json:"unit_cost,omitempty"`
}

// SetOnHandRequest body para PUT /api/stock/:id/on-hand (corrección directa).
type SetOnHandRequest struct {
	OnHand      *int   `json:"on_hand" validate:"required"`
	WarehouseID string `json:"warehouse_id,omitempty"`
	Reason      string `json:"reason"`
	Note        string `json:"note,omitempty" validate:"max=500"`
}

// UpdatePlanningRequest body para PUT /api/stock/:id/planning. Campos nil no cambian.
type UpdatePlanningRequest struct {
	Threshold *int `json:"threshold,omitempty"`
	Incoming  *int `json:"incoming,omitempty"`
}

// AdjustmentResponse entrada del historial de ajustes.
type AdjustmentResponse struct {
	ID              string    `json:"id"`
	Sequence        int64     `json:"sequence"`
	ProductID       string    `json:"product_id"`
	Type            string    `json:"type"`
	Quantity        int       `json:"quantity"`
	Reason          string    `json:"reason"`
	Note            string    `json:"note,omitempty"`
	WarehouseID     string    `json:"warehouse_id,omitempty"`
	FromWarehouseID string    `json:"from_warehouse_id,omitempty"`
	ToWarehouseID   string    `json:"to_warehouse_id,omitempty"`
	Actor           string    `json:"actor"`
	Timestamp       time.Time `json:"timestamp"`
	PreviousOnHand  int       `json:"previous_on_hand"`
	ResultingOnHand int       `json:"resulting_on_hand"`
}

// AdjustStockResponse registro resultante más la entrada de historial creada.
type AdjustStockResponse struct {
	Record     StockRecordResponse `json:"record"`
	Adjustment AdjustmentResponse  `json:"adjustment"`
}

// HistoryResponse salida de GET /api/stock/:id/history.
type HistoryResponse struct {
	ProductID string               `json:"product_id"`
	Items     []AdjustmentResponse `json:"items"`
	Page      PageResponse         `json:"page"`
}

// ReplenishmentSuggestionDTO sugerencia de reposición para un producto con
// disponible <= umbral.
type ReplenishmentSuggestionDTO struct {
	ProductID          string          `json:"product_id"`
	SKU                string          `json:"sku"`
	ProductName        string          `json:"product_name"`
	Category           string          `json:"category"`
	Status             string          `json:"status"`
	OnHand             int             `json:"on_hand"`
	Available          int             `json:"available"`
	Incoming           int             `json:"incoming"`
	Threshold          int             `json:"threshold"`
	IdealStock         int             `json:"ideal_stock"`          // umbral * 1.5
	SuggestedOrderQty  int             `json:"suggested_order_qty"`  // ideal - disponible - entrante
	UnitCost           decimal.Decimal `json:"unit_cost"`
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"` // SuggestedOrderQty * UnitCost
	Priority           int             `json:"priority"`             // 1 = más urgente
}
