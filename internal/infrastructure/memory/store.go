// Package memory implementa los repositorios del ledger en memoria del proceso.
// Es el almacenamiento por defecto (STOCK_STORE=memory) y el que usan los tests.
package memory

import (
	"sync"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// Store estado compartido: registros de stock, historial y directorio de bodegas.
// Todo lo que entra y sale se copia; ningún llamador comparte punteros con el Store.
type Store struct {
	mu sync.RWMutex

	records     map[string]*entity.StockRecord
	recordOrder []string          // orden de inserción
	skuIndex    map[string]string // sku -> productID

	history map[string][]*entity.Adjustment // por producto, Sequence ascendente
	seq     int64

	warehouses     map[string]*entity.Warehouse
	warehouseOrder []string
}

// NewStore crea un Store vacío.
func NewStore() *Store {
	return &Store{
		records:    make(map[string]*entity.StockRecord),
		skuIndex:   make(map[string]string),
		history:    make(map[string][]*entity.Adjustment),
		warehouses: make(map[string]*entity.Warehouse),
	}
}

// StockRecords repositorio fuera de transacción; cada escritura se confirma de inmediato.
func (s *Store) StockRecords() repository.StockRecordRepository {
	return &recordRepo{store: s}
}

// Adjustments repositorio del historial fuera de transacción.
func (s *Store) Adjustments() repository.AdjustmentRepository {
	return &adjustmentRepo{store: s}
}

// Warehouses directorio de bodegas.
func (s *Store) Warehouses() repository.WarehouseRepository {
	return &warehouseRepo{store: s}
}

func cloneAdjustment(a *entity.Adjustment) *entity.Adjustment {
	c := *a
	return &c
}
