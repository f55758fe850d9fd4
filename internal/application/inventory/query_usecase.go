package inventory

import (
	"context"
	"iter"
	"strings"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/internal/domain/stock"
)

// defaultHistoryPage tamaño de página usado por HistorySeq al leer del repositorio.
const defaultHistoryPage = 50

// StockQueryUseCase lecturas del ledger. Todo lo que devuelve es una copia: modificarla
// no altera el estado del ledger.
type StockQueryUseCase struct {
	records repository.StockRecordRepository
	history repository.AdjustmentRepository
}

// NewStockQueryUseCase construye el caso de uso.
func NewStockQueryUseCase(records repository.StockRecordRepository, history repository.AdjustmentRepository) *StockQueryUseCase {
	return &StockQueryUseCase{records: records, history: history}
}

// GetRecord devuelve el registro del producto o domain.ErrNotFound.
func (uc *StockQueryUseCase) GetRecord(ctx context.Context, productID string) (*entity.StockRecord, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, domain.ErrInvalidInput
	}
	rec, err := uc.records.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	return rec.Clone(), nil
}

// StatusView estado calculado de un producto.
type StatusView struct {
	ProductID string
	Status    stock.Status
	Available int
	Threshold int
}

// GetStockStatus clasifica el producto según su disponible y su umbral.
func (uc *StockQueryUseCase) GetStockStatus(ctx context.Context, productID string) (*StatusView, error) {
	rec, err := uc.GetRecord(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &StatusView{
		ProductID: rec.ProductID,
		Status:    stock.StatusOf(rec),
		Available: stock.Available(rec),
		Threshold: rec.Threshold,
	}, nil
}

// QueryStock devuelve los registros que cumplen el filtro, en orden de inserción salvo
// que se pida un ordenamiento.
func (uc *StockQueryUseCase) QueryStock(ctx context.Context, filter stock.Filter) ([]*entity.StockRecord, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, domain.ErrInvalidInput
	}
	if !stock.IsValidSortKey(filter.SortBy) {
		return nil, domain.ErrInvalidInput
	}
	all, err := uc.records.List(ctx)
	if err != nil {
		return nil, err
	}
	matched := filter.Apply(all)
	out := make([]*entity.StockRecord, 0, len(matched))
	for _, r := range matched {
		out = append(out, r.Clone())
	}
	return out, nil
}

// GetHistory devuelve los ajustes del producto, el más reciente primero.
// limit <= 0 devuelve todo el historial.
func (uc *StockQueryUseCase) GetHistory(ctx context.Context, productID string, limit int) ([]*entity.Adjustment, error) {
	if _, err := uc.GetRecord(ctx, productID); err != nil {
		return nil, err
	}
	return uc.history.ListByProduct(ctx, productID, limit, 0)
}

// CountHistory total de ajustes registrados para el producto.
func (uc *StockQueryUseCase) CountHistory(ctx context.Context, productID string) (int, error) {
	return uc.history.CountByProduct(ctx, productID)
}

// HistorySeq recorre el historial del producto de forma perezosa, el más reciente primero,
// leyendo por páginas. Es finito y cada range vuelve a empezar desde el ajuste más reciente.
// limit <= 0 recorre todo. Un error se entrega una sola vez y termina el recorrido.
func (uc *StockQueryUseCase) HistorySeq(ctx context.Context, productID string, limit int) iter.Seq2[*entity.Adjustment, error] {
	return func(yield func(*entity.Adjustment, error) bool) {
		var (
			before  int64
			emitted int
		)
		for {
			page := defaultHistoryPage
			if limit > 0 {
				page = min(page, limit-emitted)
			}
			batch, err := uc.history.ListByProduct(ctx, productID, page, before)
			if err != nil {
				yield(nil, err)
				return
			}
			for _, adj := range batch {
				if !yield(adj, nil) {
					return
				}
				emitted++
			}
			if len(batch) < page || (limit > 0 && emitted >= limit) {
				return
			}
			before = batch[len(batch)-1].Sequence
		}
	}
}
