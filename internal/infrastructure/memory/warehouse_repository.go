package memory

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.WarehouseRepository = (*warehouseRepo)(nil)

type warehouseRepo struct {
	store *Store
}

func (r *warehouseRepo) Create(ctx context.Context, w *entity.Warehouse) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.warehouses[w.ID]; ok {
		return domain.ErrDuplicate
	}
	c := *w
	r.store.warehouses[w.ID] = &c
	r.store.warehouseOrder = append(r.store.warehouseOrder, w.ID)
	return nil
}

func (r *warehouseRepo) GetByID(ctx context.Context, id string) (*entity.Warehouse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	w, ok := r.store.warehouses[id]
	if !ok {
		return nil, nil
	}
	c := *w
	return &c, nil
}

func (r *warehouseRepo) List(ctx context.Context) ([]*entity.Warehouse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]*entity.Warehouse, 0, len(r.store.warehouseOrder))
	for _, id := range r.store.warehouseOrder {
		c := *r.store.warehouses[id]
		out = append(out, &c)
	}
	return out, nil
}
