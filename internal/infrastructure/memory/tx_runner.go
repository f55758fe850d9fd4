package memory

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner transacciones en memoria: las escrituras se preparan y se aplican juntas
// bajo el bloqueo de escritura del Store, o no se aplican.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el TxRunner sobre el Store.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

type memTx struct {
	records  map[string]*entity.StockRecord // preparados en la tx (creados o actualizados)
	created  []string
	updated  []string
	appended []*entity.Adjustment
}

func (t *memTx) stageCreate(rec *entity.StockRecord) {
	t.records[rec.ProductID] = rec
	t.created = append(t.created, rec.ProductID)
}

func (t *memTx) stageUpdate(rec *entity.StockRecord) {
	if _, ok := t.records[rec.ProductID]; !ok {
		t.updated = append(t.updated, rec.ProductID)
	}
	t.records[rec.ProductID] = rec
}

func (t *memTx) isCreated(id string) bool {
	for _, c := range t.created {
		if c == id {
			return true
		}
	}
	return false
}

// Run ejecuta fn; si devuelve nil confirma todo lo preparado, si no lo descarta.
func (r *TxRunner) Run(ctx context.Context, fn func(
	records repository.StockRecordRepository,
	history repository.AdjustmentRepository,
) error) error {
	tx := &memTx{records: make(map[string]*entity.StockRecord)}
	if err := fn(&recordRepo{store: r.store, tx: tx}, &adjustmentRepo{store: r.store, tx: tx}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.store.commit(tx)
}

// commit valida todo antes de escribir para que un conflicto no deje cambios a medias.
func (s *Store) commit(tx *memTx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	skus := make(map[string]bool, len(tx.created))
	for _, id := range tx.created {
		rec := tx.records[id]
		if _, ok := s.records[id]; ok {
			return domain.ErrDuplicate
		}
		if _, ok := s.skuIndex[rec.SKU]; ok || skus[rec.SKU] {
			return domain.ErrDuplicate
		}
		skus[rec.SKU] = true
	}
	for _, id := range tx.updated {
		if tx.isCreated(id) {
			continue
		}
		current, ok := s.records[id]
		if !ok {
			return domain.ErrNotFound
		}
		if current.Version != tx.records[id].Version-1 {
			return domain.ErrConcurrencyConflict
		}
	}

	for _, id := range tx.created {
		_ = s.insertLocked(tx.records[id])
	}
	for _, id := range tx.updated {
		if tx.isCreated(id) {
			continue
		}
		_ = s.replaceLocked(tx.records[id])
	}
	for _, adj := range tx.appended {
		s.appendLocked(adj)
	}
	return nil
}
