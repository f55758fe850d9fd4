package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.StockRecordRepository = (*StockRecordRepo)(nil)

// StockRecordRepo implementación de StockRecordRepository sobre PostgreSQL (usable con pool o tx).
// La cabecera vive en stock_records y las cantidades por bodega en stock (una fila por bodega).
// Create y Update escriben en ambas tablas: usarlos dentro de una tx (TxRunner).
type StockRecordRepo struct {
	q Querier
}

// NewStockRecordRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockRecordRepository(q Querier) *StockRecordRepo {
	return &StockRecordRepo{q: q}
}

const selectStockRecord = `
	SELECT product_id, sku, name, category, icon, unit_cost,
	       on_hand, reserved, incoming, threshold, version, created_at, last_updated
	FROM stock_records`

func scanStockRecord(row pgx.Row) (*entity.StockRecord, error) {
	var rec entity.StockRecord
	err := row.Scan(
		&rec.ProductID, &rec.SKU, &rec.Name, &rec.Category, &rec.Icon, &rec.UnitCost,
		&rec.OnHand, &rec.Reserved, &rec.Incoming, &rec.Threshold, &rec.Version,
		&rec.CreatedAt, &rec.LastUpdated,
	)
	if err != nil {
		return nil, err
	}
	rec.WarehouseQuantities = make(map[string]int)
	return &rec, nil
}

// Create inserta la cabecera y sus filas por bodega.
func (r *StockRecordRepo) Create(ctx context.Context, rec *entity.StockRecord) error {
	query := `
		INSERT INTO stock_records (product_id, sku, name, category, icon, unit_cost,
			on_hand, reserved, incoming, threshold, version, created_at, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		rec.ProductID, rec.SKU, rec.Name, rec.Category, rec.Icon, rec.UnitCost,
		rec.OnHand, rec.Reserved, rec.Incoming, rec.Threshold, rec.Version,
		rec.CreatedAt, rec.LastUpdated,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert stock record: %w", err)
	}
	return r.writeQuantities(ctx, rec)
}

// GetByID obtiene el registro con sus cantidades por bodega.
func (r *StockRecordRepo) GetByID(ctx context.Context, productID string) (*entity.StockRecord, error) {
	return r.getOne(ctx, selectStockRecord+` WHERE product_id = $1`, productID)
}

// GetBySKU obtiene el registro por SKU.
func (r *StockRecordRepo) GetBySKU(ctx context.Context, sku string) (*entity.StockRecord, error) {
	return r.getOne(ctx, selectStockRecord+` WHERE sku = $1`, sku)
}

// GetForUpdate obtiene el registro y bloquea su fila hasta el fin de la tx (SELECT FOR UPDATE).
func (r *StockRecordRepo) GetForUpdate(ctx context.Context, productID string) (*entity.StockRecord, error) {
	return r.getOne(ctx, selectStockRecord+` WHERE product_id = $1 FOR UPDATE`, productID)
}

func (r *StockRecordRepo) getOne(ctx context.Context, query string, arg string) (*entity.StockRecord, error) {
	rec, err := scanStockRecord(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock record: %w", err)
	}
	if err := r.loadQuantities(ctx, map[string]*entity.StockRecord{rec.ProductID: rec}); err != nil {
		return nil, err
	}
	return rec, nil
}

// Update reemplaza la cabecera si la versión almacenada es rec.Version-1 y sincroniza las
// filas por bodega. Otra versión devuelve domain.ErrConcurrencyConflict.
func (r *StockRecordRepo) Update(ctx context.Context, rec *entity.StockRecord) error {
	query := `
		UPDATE stock_records SET
			sku = $2, name = $3, category = $4, icon = $5, unit_cost = $6,
			on_hand = $7, reserved = $8, incoming = $9, threshold = $10,
			version = $11, last_updated = $12
		WHERE product_id = $1 AND version = $11 - 1`
	cmd, err := r.q.Exec(ctx, query,
		rec.ProductID, rec.SKU, rec.Name, rec.Category, rec.Icon, rec.UnitCost,
		rec.OnHand, rec.Reserved, rec.Incoming, rec.Threshold,
		rec.Version, rec.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("update stock record: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		var exists bool
		if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM stock_records WHERE product_id = $1)`, rec.ProductID).Scan(&exists); err != nil {
			return fmt.Errorf("check stock record: %w", err)
		}
		if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrConcurrencyConflict
	}
	return r.writeQuantities(ctx, rec)
}

// List devuelve todos los registros en orden de inserción.
func (r *StockRecordRepo) List(ctx context.Context) ([]*entity.StockRecord, error) {
	rows, err := r.q.Query(ctx, selectStockRecord+` ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list stock records: %w", err)
	}
	defer rows.Close()

	list := make([]*entity.StockRecord, 0)
	byID := make(map[string]*entity.StockRecord)
	for rows.Next() {
		rec, err := scanStockRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock record: %w", err)
		}
		list = append(list, rec)
		byID[rec.ProductID] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return list, nil
	}
	if err := r.loadQuantities(ctx, byID); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *StockRecordRepo) loadQuantities(ctx context.Context, byID map[string]*entity.StockRecord) error {
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	rows, err := r.q.Query(ctx,
		`SELECT product_id, warehouse_id, quantity FROM stock WHERE product_id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("list stock quantities: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var productID, warehouseID string
		var qty int
		if err := rows.Scan(&productID, &warehouseID, &qty); err != nil {
			return fmt.Errorf("scan stock quantity: %w", err)
		}
		if rec, ok := byID[productID]; ok {
			rec.WarehouseQuantities[warehouseID] = qty
		}
	}
	return rows.Err()
}

// writeQuantities upsert de cada bodega del registro y borrado de las que ya no figuran.
func (r *StockRecordRepo) writeQuantities(ctx context.Context, rec *entity.StockRecord) error {
	ids := make([]string, 0, len(rec.WarehouseQuantities))
	for warehouseID, qty := range rec.WarehouseQuantities {
		_, err := r.q.Exec(ctx, `
			INSERT INTO stock (product_id, warehouse_id, quantity, updated_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (product_id, warehouse_id)
			DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = EXCLUDED.updated_at`,
			rec.ProductID, warehouseID, qty, rec.LastUpdated,
		)
		if err != nil {
			return fmt.Errorf("upsert stock: %w", err)
		}
		ids = append(ids, warehouseID)
	}
	_, err := r.q.Exec(ctx,
		`DELETE FROM stock WHERE product_id = $1 AND NOT (warehouse_id = ANY($2))`, rec.ProductID, ids)
	if err != nil {
		return fmt.Errorf("prune stock: %w", err)
	}
	return nil
}
