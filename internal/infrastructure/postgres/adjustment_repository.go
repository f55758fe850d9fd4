package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.AdjustmentRepository = (*AdjustmentRepo)(nil)

// AdjustmentRepo historial append-only sobre PostgreSQL (usable con pool o tx).
// seq es BIGSERIAL: el orden de commit lo da la secuencia, no el timestamp.
type AdjustmentRepo struct {
	q Querier
}

// NewAdjustmentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAdjustmentRepository(q Querier) *AdjustmentRepo {
	return &AdjustmentRepo{q: q}
}

// Append inserta el ajuste y asigna adj.Sequence.
func (r *AdjustmentRepo) Append(ctx context.Context, adj *entity.Adjustment) error {
	query := `
		INSERT INTO stock_adjustments (id, product_id, type, quantity, reason, note,
			warehouse_id, from_warehouse_id, to_warehouse_id, actor, occurred_at,
			previous_on_hand, resulting_on_hand)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		adj.ID, adj.ProductID, string(adj.Type), adj.Quantity, string(adj.Reason), adj.Note,
		nullable(adj.WarehouseID), nullable(adj.FromWarehouseID), nullable(adj.ToWarehouseID),
		adj.Actor, adj.Timestamp, adj.PreviousOnHand, adj.ResultingOnHand,
	).Scan(&adj.Sequence)
	if err != nil {
		return fmt.Errorf("insert stock adjustment: %w", err)
	}
	return nil
}

// ListByProduct ajustes del producto, el más reciente primero.
func (r *AdjustmentRepo) ListByProduct(ctx context.Context, productID string, limit int, beforeSeq int64) ([]*entity.Adjustment, error) {
	query := `
		SELECT seq, id, product_id, type, quantity, reason, note,
		       warehouse_id, from_warehouse_id, to_warehouse_id, actor, occurred_at,
		       previous_on_hand, resulting_on_hand
		FROM stock_adjustments
		WHERE product_id = $1 AND ($2::bigint = 0 OR seq < $2)
		ORDER BY seq DESC`
	args := []any{productID, beforeSeq}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock adjustments: %w", err)
	}
	defer rows.Close()

	list := make([]*entity.Adjustment, 0)
	for rows.Next() {
		var (
			a                entity.Adjustment
			adjType, reason  string
			wh, fromWh, toWh *string
		)
		if err := rows.Scan(
			&a.Sequence, &a.ID, &a.ProductID, &adjType, &a.Quantity, &reason, &a.Note,
			&wh, &fromWh, &toWh, &a.Actor, &a.Timestamp,
			&a.PreviousOnHand, &a.ResultingOnHand,
		); err != nil {
			return nil, fmt.Errorf("scan stock adjustment: %w", err)
		}
		a.Type = entity.AdjustmentType(adjType)
		a.Reason = entity.AdjustmentReason(reason)
		a.WarehouseID, a.FromWarehouseID, a.ToWarehouseID = deref(wh), deref(fromWh), deref(toWh)
		list = append(list, &a)
	}
	return list, rows.Err()
}

// CountByProduct total de ajustes del producto.
func (r *AdjustmentRepo) CountByProduct(ctx context.Context, productID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM stock_adjustments WHERE product_id = $1`, productID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count stock adjustments: %w", err)
	}
	return n, nil
}
