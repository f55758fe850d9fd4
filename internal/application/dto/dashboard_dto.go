package dto

import "github.com/shopspring/decimal"

// StockSummaryDTO respuesta de GET /api/stock/stats: KPIs del inventario.
type StockSummaryDTO struct {
	TotalProducts  int             `json:"total_products"`
	ByStatus       map[string]int  `json:"by_status"` // IN_STOCK, LOW_STOCK, CRITICAL, OUT_OF_STOCK
	UnitsOnHand    int             `json:"units_on_hand"`
	UnitsReserved  int             `json:"units_reserved"`
	UnitsIncoming  int             `json:"units_incoming"`
	UnitsAvailable int             `json:"units_available"`
	InventoryValue decimal.Decimal `json:"inventory_value"` // suma on-hand * costo unitario

	Warehouses []WarehouseStockDTO `json:"warehouses"`
}

// WarehouseStockDTO totales de una bodega.
type WarehouseStockDTO struct {
	WarehouseID string          `json:"warehouse_id"`
	Name        string          `json:"name"`
	Units       int             `json:"units"`
	Products    int             `json:"products"` // productos con unidades > 0 en la bodega
	Value       decimal.Decimal `json:"value"`
}
