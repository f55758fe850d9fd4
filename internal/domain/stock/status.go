// Package stock contiene las reglas puras del ledger de stock: estado, disponibilidad,
// distribución inicial entre bodegas, generación de SKU y aplicación de ajustes.
// No tiene efectos secundarios ni dependencias de infraestructura.
package stock

import "github.com/jhoicas/stock-ledger-api/internal/domain/entity"

// Status clasificación del nivel de stock de un producto.
type Status string

const (
	StatusInStock    Status = "IN_STOCK"
	StatusLowStock   Status = "LOW_STOCK"
	StatusCritical   Status = "CRITICAL"
	StatusOutOfStock Status = "OUT_OF_STOCK"
)

// Statuses lista los estados en orden de severidad creciente.
var Statuses = []Status{StatusInStock, StatusLowStock, StatusCritical, StatusOutOfStock}

// IsValid indica si s es un estado conocido.
func (s Status) IsValid() bool {
	switch s {
	case StatusInStock, StatusLowStock, StatusCritical, StatusOutOfStock:
		return true
	}
	return false
}

// Available = max(0, OnHand - Reserved).
func Available(r *entity.StockRecord) int {
	if r == nil {
		return 0
	}
	if a := r.OnHand - r.Reserved; a > 0 {
		return a
	}
	return 0
}

// StatusOf evalúa, en este orden de precedencia:
//  1. OnHand == 0                 → OUT_OF_STOCK
//  2. available <= threshold*0.5  → CRITICAL
//  3. available <= threshold      → LOW_STOCK
//  4. resto                       → IN_STOCK
//
// La mitad del umbral se compara en enteros (2*available <= threshold).
func StatusOf(r *entity.StockRecord) Status {
	if r == nil || r.OnHand == 0 {
		return StatusOutOfStock
	}
	available := Available(r)
	switch {
	case 2*available <= r.Threshold:
		return StatusCritical
	case available <= r.Threshold:
		return StatusLowStock
	default:
		return StatusInStock
	}
}
