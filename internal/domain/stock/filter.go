package stock

import (
	"sort"
	"strings"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// Claves de ordenamiento aceptadas por Query.
const (
	SortByName        = "name"
	SortBySKU         = "sku"
	SortByOnHand      = "on_hand"
	SortByAvailable   = "available"
	SortByLastUpdated = "last_updated"
)

// Filter criterios de consulta sobre el ledger. Los campos vacíos no filtran.
type Filter struct {
	Search      string // subcadena en nombre o SKU, sin distinguir mayúsculas ni tildes
	Status      Status
	WarehouseID string // solo productos con unidades (> 0) en esta bodega
	SortBy      string // vacío = orden de inserción
	Desc        bool
}

// IsValidSortKey indica si key es una clave de ordenamiento conocida (vacío es válido).
func IsValidSortKey(key string) bool {
	switch key {
	case "", SortByName, SortBySKU, SortByOnHand, SortByAvailable, SortByLastUpdated:
		return true
	}
	return false
}

// Matches evalúa el filtro sobre un registro.
func (f Filter) Matches(r *entity.StockRecord) bool {
	if f.Search != "" {
		needle := foldText(f.Search)
		if !strings.Contains(foldText(r.Name), needle) && !strings.Contains(foldText(r.SKU), needle) {
			return false
		}
	}
	if f.Status != "" && StatusOf(r) != f.Status {
		return false
	}
	if f.WarehouseID != "" && r.QuantityIn(f.WarehouseID) <= 0 {
		return false
	}
	return true
}

// Apply filtra records preservando el orden recibido y, si se pidió, ordena de forma estable.
func (f Filter) Apply(records []*entity.StockRecord) []*entity.StockRecord {
	out := make([]*entity.StockRecord, 0, len(records))
	for _, r := range records {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	if f.SortBy == "" {
		return out
	}
	less := lessFunc(f.SortBy)
	sort.SliceStable(out, func(i, j int) bool {
		if f.Desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

func lessFunc(key string) func(a, b *entity.StockRecord) bool {
	switch key {
	case SortBySKU:
		return func(a, b *entity.StockRecord) bool { return a.SKU < b.SKU }
	case SortByOnHand:
		return func(a, b *entity.StockRecord) bool { return a.OnHand < b.OnHand }
	case SortByAvailable:
		return func(a, b *entity.StockRecord) bool { return Available(a) < Available(b) }
	case SortByLastUpdated:
		return func(a, b *entity.StockRecord) bool { return a.LastUpdated.Before(b.LastUpdated) }
	default:
		return func(a, b *entity.StockRecord) bool { return foldText(a.Name) < foldText(b.Name) }
	}
}
