package stock

import (
	"github.com/jhoicas/stock-ledger-api/internal/domain"
)

// DistributionMode modo de asignación del stock inicial al crear el producto.
type DistributionMode string

const (
	DistributionSingle   DistributionMode = "single"   // todo el stock en una bodega
	DistributionMultiple DistributionMode = "multiple" // reparto manual entre varias bodegas
)

// DistributionInput entrada del planificador de distribución.
// Single: WarehouseID + Stock (>= 0). Multiple: Quantities (cada valor >= 0, las bodegas
// omitidas cuentan como 0).
type DistributionInput struct {
	Mode        DistributionMode
	WarehouseID string
	Stock       int
	Quantities  map[string]int
}

// Distribution resultado del planificador: cantidades por bodega y su total.
type Distribution struct {
	WarehouseQuantities map[string]int
	OnHand              int
}

// PlanDistribution reparte el stock inicial. Valida cantidades no negativas y, en modo
// Multiple, que al menos una unidad quede asignada (ErrNoStockAllocated).
// La existencia de las bodegas la verifica el caso de uso contra el directorio.
func PlanDistribution(in DistributionInput) (Distribution, error) {
	switch in.Mode {
	case DistributionSingle:
		if in.WarehouseID == "" {
			return Distribution{}, domain.ErrMissingWarehouse
		}
		if in.Stock < 0 {
			return Distribution{}, domain.ErrInvalidQuantity
		}
		return Distribution{
			WarehouseQuantities: map[string]int{in.WarehouseID: in.Stock},
			OnHand:              in.Stock,
		}, nil

	case DistributionMultiple:
		quantities := make(map[string]int, len(in.Quantities))
		total := 0
		for id, q := range in.Quantities {
			if id == "" {
				return Distribution{}, domain.ErrMissingWarehouse
			}
			if q < 0 {
				return Distribution{}, domain.ErrInvalidQuantity
			}
			quantities[id] = q
			total += q
		}
		if total == 0 {
			return Distribution{}, domain.ErrNoStockAllocated
		}
		return Distribution{WarehouseQuantities: quantities, OnHand: total}, nil
	}
	return Distribution{}, domain.ErrInvalidDistribution
}

// WarehouseIDs devuelve las bodegas referenciadas por la distribución.
func (d Distribution) WarehouseIDs() []string {
	ids := make([]string, 0, len(d.WarehouseQuantities))
	for id := range d.WarehouseQuantities {
		ids = append(ids, id)
	}
	return ids
}
