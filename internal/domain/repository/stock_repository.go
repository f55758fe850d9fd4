package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// StockRecordRepository define el puerto de persistencia para los registros de stock (DIP).
// Usado dentro de transacciones (TxRunner) para garantizar atomicidad.
// Los getters devuelven (nil, nil) si el registro no existe.
type StockRecordRepository interface {
	// Create persiste un registro nuevo con sus cantidades por bodega.
	// Devuelve domain.ErrDuplicate si ya existe el ProductID o el SKU.
	Create(ctx context.Context, record *entity.StockRecord) error
	GetByID(ctx context.Context, productID string) (*entity.StockRecord, error)
	GetBySKU(ctx context.Context, sku string) (*entity.StockRecord, error)
	// GetForUpdate obtiene el registro bloqueándolo hasta el fin de la transacción
	// (SELECT FOR UPDATE en PostgreSQL).
	GetForUpdate(ctx context.Context, productID string) (*entity.StockRecord, error)
	// Update reemplaza cantidades, umbral y cantidades por bodega del registro.
	Update(ctx context.Context, record *entity.StockRecord) error
	// List devuelve todos los registros en orden de inserción.
	List(ctx context.Context) ([]*entity.StockRecord, error)
}
