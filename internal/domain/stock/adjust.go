package stock

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// AdjustmentCommand ajuste solicitado sobre un registro (ADD, REMOVE o TRANSFER).
type AdjustmentCommand struct {
	Type            entity.AdjustmentType
	Quantity        int
	Reason          entity.AdjustmentReason
	WarehouseID     string // ADD / REMOVE
	FromWarehouseID string // TRANSFER
	ToWarehouseID   string // TRANSFER
	// UnitCost costo de la entrada (solo ADD, opcional); recalcula el costo promedio.
	UnitCost *decimal.Decimal
}

// Validate verifica las precondiciones que no dependen del estado del registro.
func (c AdjustmentCommand) Validate() error {
	if c.Quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	if !c.Reason.IsValid() {
		return domain.ErrMissingReason
	}
	if c.UnitCost != nil && (c.Type != entity.AdjustmentAdd || c.UnitCost.IsNegative()) {
		return domain.ErrInvalidInput
	}
	switch c.Type {
	case entity.AdjustmentAdd, entity.AdjustmentRemove:
		if c.WarehouseID == "" {
			return domain.ErrMissingWarehouse
		}
	case entity.AdjustmentTransfer:
		if c.FromWarehouseID == "" || c.ToWarehouseID == "" {
			return domain.ErrMissingWarehouse
		}
		if c.FromWarehouseID == c.ToWarehouseID {
			return domain.ErrInvalidInput
		}
	default:
		return domain.ErrInvalidInput
	}
	return nil
}

// WarehouseIDs bodegas que el comando referencia.
func (c AdjustmentCommand) WarehouseIDs() []string {
	if c.Type == entity.AdjustmentTransfer {
		return []string{c.FromWarehouseID, c.ToWarehouseID}
	}
	return []string{c.WarehouseID}
}

// Apply aplica el comando sobre una copia de r y la devuelve; r no se modifica.
// REMOVE recorta en 0: se retiran min(cantidad, unidades en la bodega), de modo que
// on-hand baja lo mismo que la bodega y nunca queda negativo.
// TRANSFER exige que la bodega origen tenga al menos la cantidad pedida.
func Apply(r *entity.StockRecord, c AdjustmentCommand, now time.Time) (*entity.StockRecord, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	next := r.Clone()
	switch c.Type {
	case entity.AdjustmentAdd:
		if c.UnitCost != nil {
			next.UnitCost = WeightedAverageCost(r.OnHand, r.UnitCost, c.Quantity, *c.UnitCost)
		}
		next.WarehouseQuantities[c.WarehouseID] += c.Quantity
		next.OnHand += c.Quantity

	case entity.AdjustmentRemove:
		taken := min(c.Quantity, next.WarehouseQuantities[c.WarehouseID])
		next.WarehouseQuantities[c.WarehouseID] -= taken
		next.OnHand = max(0, next.OnHand-taken)

	case entity.AdjustmentTransfer:
		if next.WarehouseQuantities[c.FromWarehouseID] < c.Quantity {
			return nil, domain.ErrInsufficientWarehouseStock
		}
		next.WarehouseQuantities[c.FromWarehouseID] -= c.Quantity
		next.WarehouseQuantities[c.ToWarehouseID] += c.Quantity
	}
	touch(next, now)
	return next, nil
}

// ApplyCorrection fija on-hand en newOnHand absorbiendo el delta en warehouseID.
// Si baja, la bodega debe tener unidades suficientes para el delta.
// Devuelve la copia modificada y el delta con signo (nuevo - anterior).
func ApplyCorrection(r *entity.StockRecord, newOnHand int, warehouseID string, now time.Time) (*entity.StockRecord, int, error) {
	if newOnHand < 0 {
		return nil, 0, domain.ErrInvalidQuantity
	}
	if warehouseID == "" {
		return nil, 0, domain.ErrMissingWarehouse
	}
	delta := newOnHand - r.OnHand
	if delta < 0 && r.WarehouseQuantities[warehouseID] < -delta {
		return nil, 0, domain.ErrInsufficientWarehouseStock
	}
	next := r.Clone()
	next.WarehouseQuantities[warehouseID] += delta
	next.OnHand = newOnHand
	touch(next, now)
	return next, delta, nil
}

// touch mantiene Reserved <= OnHand y marca la actualización.
func touch(r *entity.StockRecord, now time.Time) {
	if r.Reserved > r.OnHand {
		r.Reserved = r.OnHand
	}
	r.LastUpdated = now
	r.Version++
}

// CheckInvariants verifica suma por bodega == on-hand, cantidades no negativas y Reserved <= OnHand.
func CheckInvariants(r *entity.StockRecord) error {
	if r.OnHand < 0 || r.Reserved < 0 || r.Incoming < 0 || r.Threshold < 0 {
		return domain.ErrInvalidQuantity
	}
	for _, q := range r.WarehouseQuantities {
		if q < 0 {
			return domain.ErrInvalidQuantity
		}
	}
	if r.WarehouseTotal() != r.OnHand || r.Reserved > r.OnHand {
		return domain.ErrInvalidInput
	}
	return nil
}
