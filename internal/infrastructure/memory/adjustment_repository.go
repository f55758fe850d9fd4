package memory

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.AdjustmentRepository = (*adjustmentRepo)(nil)

type adjustmentRepo struct {
	store *Store
	tx    *memTx
}

// Append dentro de una transacción queda pendiente y recibe su Sequence al confirmar.
func (r *adjustmentRepo) Append(ctx context.Context, adj *entity.Adjustment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.tx != nil {
		r.tx.appended = append(r.tx.appended, adj)
		return nil
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.appendLocked(adj)
	return nil
}

func (r *adjustmentRepo) ListByProduct(ctx context.Context, productID string, limit int, beforeSeq int64) ([]*entity.Adjustment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	entries := r.store.history[productID]
	out := make([]*entity.Adjustment, 0)
	for i := len(entries) - 1; i >= 0; i-- {
		if beforeSeq > 0 && entries[i].Sequence >= beforeSeq {
			continue
		}
		out = append(out, cloneAdjustment(entries[i]))
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *adjustmentRepo) CountByProduct(ctx context.Context, productID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return len(r.store.history[productID]), nil
}

// appendLocked asigna Sequence también en adj para que el llamador la vea.
func (s *Store) appendLocked(adj *entity.Adjustment) {
	s.seq++
	adj.Sequence = s.seq
	s.history[adj.ProductID] = append(s.history[adj.ProductID], cloneAdjustment(adj))
}
