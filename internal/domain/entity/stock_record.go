package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockRecord representa el stock de un producto repartido entre bodegas.
// Invariantes: suma(WarehouseQuantities) == OnHand y Reserved <= OnHand.
// Solo el motor de ajustes lo modifica después de creado.
type StockRecord struct {
	ProductID string
	SKU       string // único, en mayúsculas
	Name      string
	Category  string
	Icon      string
	UnitCost  decimal.Decimal // costo unitario para valorizar el inventario

	OnHand    int // unidades físicas, suma de todas las bodegas
	Reserved  int // comprometidas con pedidos sin despachar
	Incoming  int // esperadas de órdenes de compra abiertas
	Threshold int // punto de reorden

	WarehouseQuantities map[string]int // warehouseID -> unidades

	Version     int64 // se incrementa en cada commit
	CreatedAt   time.Time
	LastUpdated time.Time
}

// Clone devuelve una copia profunda; los lectores nunca comparten el mapa de bodegas.
func (r *StockRecord) Clone() *StockRecord {
	if r == nil {
		return nil
	}
	c := *r
	c.WarehouseQuantities = make(map[string]int, len(r.WarehouseQuantities))
	for id, q := range r.WarehouseQuantities {
		c.WarehouseQuantities[id] = q
	}
	return &c
}

// WarehouseTotal suma las cantidades por bodega.
func (r *StockRecord) WarehouseTotal() int {
	total := 0
	for _, q := range r.WarehouseQuantities {
		total += q
	}
	return total
}

// QuantityIn devuelve las unidades en la bodega indicada (0 si no tiene entrada).
func (r *StockRecord) QuantityIn(warehouseID string) int {
	return r.WarehouseQuantities[warehouseID]
}
