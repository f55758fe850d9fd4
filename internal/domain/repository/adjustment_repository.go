package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// AdjustmentRepository historial append-only de ajustes (auditoría).
// No existe operación de borrado ni de modificación.
type AdjustmentRepository interface {
	// Append agrega el registro y le asigna Sequence.
	Append(ctx context.Context, adj *entity.Adjustment) error
	// ListByProduct devuelve los ajustes del producto, el más reciente primero.
	// limit <= 0 significa sin límite. beforeSeq > 0 devuelve solo los de Sequence menor
	// (paginación por cursor, estable ante nuevos ajustes).
	ListByProduct(ctx context.Context, productID string, limit int, beforeSeq int64) ([]*entity.Adjustment, error)
	// CountByProduct total de ajustes del producto.
	CountByProduct(ctx context.Context, productID string) (int, error)
}
