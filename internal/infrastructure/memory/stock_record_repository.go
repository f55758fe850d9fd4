package memory

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.StockRecordRepository = (*recordRepo)(nil)

// recordRepo con tx != nil lee primero lo preparado en la transacción y deja
// las escrituras pendientes hasta el commit.
type recordRepo struct {
	store *Store
	tx    *memTx
}

func (r *recordRepo) Create(ctx context.Context, record *entity.StockRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.tx != nil {
		if _, ok := r.tx.records[record.ProductID]; ok {
			return domain.ErrDuplicate
		}
		r.tx.stageCreate(record.Clone())
		return nil
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.store.insertLocked(record.Clone())
}

func (r *recordRepo) GetByID(ctx context.Context, productID string) (*entity.StockRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.tx != nil {
		if staged, ok := r.tx.records[productID]; ok {
			return staged.Clone(), nil
		}
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return r.store.records[productID].Clone(), nil
}

func (r *recordRepo) GetBySKU(ctx context.Context, sku string) (*entity.StockRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.tx != nil {
		for _, staged := range r.tx.records {
			if staged.SKU == sku {
				return staged.Clone(), nil
			}
		}
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	id, ok := r.store.skuIndex[sku]
	if !ok {
		return nil, nil
	}
	return r.store.records[id].Clone(), nil
}

// GetForUpdate en memoria equivale a GetByID: la exclusión por producto la da el
// ProductLocker y el commit verifica la versión leída.
func (r *recordRepo) GetForUpdate(ctx context.Context, productID string) (*entity.StockRecord, error) {
	return r.GetByID(ctx, productID)
}

func (r *recordRepo) Update(ctx context.Context, record *entity.StockRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.tx != nil {
		r.tx.stageUpdate(record.Clone())
		return nil
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.store.replaceLocked(record.Clone())
}

func (r *recordRepo) List(ctx context.Context) ([]*entity.StockRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]*entity.StockRecord, 0, len(r.store.recordOrder))
	for _, id := range r.store.recordOrder {
		out = append(out, r.store.records[id].Clone())
	}
	return out, nil
}

// insertLocked requiere s.mu tomado en escritura.
func (s *Store) insertLocked(rec *entity.StockRecord) error {
	if _, ok := s.records[rec.ProductID]; ok {
		return domain.ErrDuplicate
	}
	if _, ok := s.skuIndex[rec.SKU]; ok {
		return domain.ErrDuplicate
	}
	s.records[rec.ProductID] = rec
	s.skuIndex[rec.SKU] = rec.ProductID
	s.recordOrder = append(s.recordOrder, rec.ProductID)
	return nil
}

// replaceLocked exige que la versión almacenada sea la inmediatamente anterior a la nueva.
func (s *Store) replaceLocked(rec *entity.StockRecord) error {
	current, ok := s.records[rec.ProductID]
	if !ok {
		return domain.ErrNotFound
	}
	if current.Version != rec.Version-1 {
		return domain.ErrConcurrencyConflict
	}
	if rec.SKU != current.SKU {
		delete(s.skuIndex, current.SKU)
		s.skuIndex[rec.SKU] = rec.ProductID
	}
	s.records[rec.ProductID] = rec
	return nil
}
