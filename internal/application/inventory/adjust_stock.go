package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/internal/domain/stock"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

// Resultados reportados a métricas.
const (
	outcomeOK       = "ok"
	outcomeRejected = "rejected"
	outcomeConflict = "conflict"
	outcomeError    = "error"
)

// AdjustStockUseCase motor de ajustes: única vía para modificar un registro existente.
// Cada ajuste confirmado deja exactamente un registro en el historial, en la misma transacción.
type AdjustStockUseCase struct {
	txRunner   TxRunner
	warehouses repository.WarehouseRepository
	locker     ProductLocker
	publisher  EventPublisher
	metrics    Metrics
	log        *logger.Logger
	now        func() time.Time
}

// NewAdjustStockUseCase construye el motor. publisher, metrics y log pueden ser nil.
func NewAdjustStockUseCase(
	txRunner TxRunner,
	warehouses repository.WarehouseRepository,
	locker ProductLocker,
	publisher EventPublisher,
	metrics Metrics,
	log *logger.Logger,
) *AdjustStockUseCase {
	if locker == nil {
		locker = NewLocalLocker(0)
	}
	if publisher == nil {
		publisher = NopPublisher()
	}
	if metrics == nil {
		metrics = NopMetrics()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &AdjustStockUseCase{
		txRunner:   txRunner,
		warehouses: warehouses,
		locker:     locker,
		publisher:  publisher,
		metrics:    metrics,
		log:        log.Component("adjust_stock"),
		now:        time.Now,
	}
}

// AdjustStockInput ajuste ADD, REMOVE o TRANSFER sobre un producto.
type AdjustStockInput struct {
	ProductID       string
	Type            entity.AdjustmentType
	Quantity        int
	Reason          entity.AdjustmentReason
	Note            string
	WarehouseID     string
	FromWarehouseID string
	ToWarehouseID   string
	UnitCost        *decimal.Decimal // solo ADD: costo de la entrada
	Actor           string
}

func (in AdjustStockInput) command() stock.AdjustmentCommand {
	return stock.AdjustmentCommand{
		Type:            in.Type,
		Quantity:        in.Quantity,
		Reason:          in.Reason,
		WarehouseID:     strings.TrimSpace(in.WarehouseID),
		FromWarehouseID: strings.TrimSpace(in.FromWarehouseID),
		ToWarehouseID:   strings.TrimSpace(in.ToWarehouseID),
		UnitCost:        in.UnitCost,
	}
}

// AdjustmentResult registro resultante y la entrada de historial creada.
type AdjustmentResult struct {
	Record     *entity.StockRecord
	Adjustment *entity.Adjustment
}

// AdjustStock aplica el ajuste de forma atómica: bloqueo del producto, lectura FOR UPDATE,
// mutación, persistencia del registro y del historial. Ante cualquier error nada cambia.
func (uc *AdjustStockUseCase) AdjustStock(ctx context.Context, in AdjustStockInput) (*AdjustmentResult, error) {
	cmd := in.command()
	if in.Type == entity.AdjustmentCorrection {
		// la corrección tiene su propia operación (SetStockDirect)
		return nil, uc.reject(in.Type, domain.ErrInvalidInput)
	}
	if err := cmd.Validate(); err != nil {
		return nil, uc.reject(in.Type, err)
	}
	if strings.TrimSpace(in.ProductID) == "" {
		return nil, uc.reject(in.Type, domain.ErrInvalidInput)
	}
	if err := uc.ensureWarehouses(ctx, cmd.WarehouseIDs()...); err != nil {
		return nil, uc.reject(in.Type, err)
	}

	res, err := uc.locked(ctx, in.ProductID, in.Type, func(records repository.StockRecordRepository, history repository.AdjustmentRepository) (*AdjustmentResult, error) {
		current, err := getForUpdate(ctx, records, in.ProductID)
		if err != nil {
			return nil, err
		}
		now := uc.now()
		next, err := stock.Apply(current, cmd, now)
		if err != nil {
			return nil, err
		}
		adj := &entity.Adjustment{
			ID:              uuid.New().String(),
			ProductID:       current.ProductID,
			Type:            cmd.Type,
			Quantity:        cmd.Quantity, // solicitada; el efecto real queda en Previous/ResultingOnHand
			Reason:          cmd.Reason,
			Note:            strings.TrimSpace(in.Note),
			WarehouseID:     cmd.WarehouseID,
			FromWarehouseID: cmd.FromWarehouseID,
			ToWarehouseID:   cmd.ToWarehouseID,
			Actor:           actorOrSystem(in.Actor),
			Timestamp:       now,
			PreviousOnHand:  current.OnHand,
			ResultingOnHand: next.OnHand,
		}
		if cmd.Type == entity.AdjustmentTransfer {
			adj.WarehouseID = ""
		} else {
			adj.FromWarehouseID, adj.ToWarehouseID = "", ""
		}
		if err := persist(ctx, records, history, next, adj); err != nil {
			return nil, err
		}
		return &AdjustmentResult{Record: next, Adjustment: adj}, nil
	})
	if err != nil {
		return nil, err
	}
	uc.afterCommit(ctx, res)
	return res, nil
}

// SetStockDirectInput corrección directa del on-hand (edición en línea).
// WarehouseID es la bodega que absorbe la diferencia; si el producto está en una sola
// bodega puede omitirse.
type SetStockDirectInput struct {
	ProductID   string
	NewOnHand   int
	WarehouseID string
	Reason      entity.AdjustmentReason
	Note        string
	Actor       string
}

// SetStockDirect fija el on-hand y registra un ajuste CORRECTION con el delta con signo.
// Una corrección sin cambio también queda en el historial (cantidad 0).
func (uc *AdjustStockUseCase) SetStockDirect(ctx context.Context, in SetStockDirectInput) (*AdjustmentResult, error) {
	const adjType = entity.AdjustmentCorrection
	if in.NewOnHand < 0 {
		return nil, uc.reject(adjType, domain.ErrInvalidQuantity)
	}
	if !in.Reason.IsValid() {
		return nil, uc.reject(adjType, domain.ErrMissingReason)
	}
	if strings.TrimSpace(in.ProductID) == "" {
		return nil, uc.reject(adjType, domain.ErrInvalidInput)
	}
	warehouseID := strings.TrimSpace(in.WarehouseID)
	if warehouseID != "" {
		if err := uc.ensureWarehouses(ctx, warehouseID); err != nil {
			return nil, uc.reject(adjType, err)
		}
	}

	res, err := uc.locked(ctx, in.ProductID, adjType, func(records repository.StockRecordRepository, history repository.AdjustmentRepository) (*AdjustmentResult, error) {
		current, err := getForUpdate(ctx, records, in.ProductID)
		if err != nil {
			return nil, err
		}
		target := warehouseID
		if target == "" {
			target = soleWarehouse(current)
		}
		now := uc.now()
		next, delta, err := stock.ApplyCorrection(current, in.NewOnHand, target, now)
		if err != nil {
			return nil, err
		}
		adj := &entity.Adjustment{
			ID:              uuid.New().String(),
			ProductID:       current.ProductID,
			Type:            adjType,
			Quantity:        delta,
			Reason:          in.Reason,
			Note:            strings.TrimSpace(in.Note),
			WarehouseID:     target,
			Actor:           actorOrSystem(in.Actor),
			Timestamp:       now,
			PreviousOnHand:  current.OnHand,
			ResultingOnHand: next.OnHand,
		}
		if err := persist(ctx, records, history, next, adj); err != nil {
			return nil, err
		}
		return &AdjustmentResult{Record: next, Adjustment: adj}, nil
	})
	if err != nil {
		return nil, err
	}
	uc.afterCommit(ctx, res)
	return res, nil
}

// PlanningInput campos de planificación editables. nil = sin cambio.
type PlanningInput struct {
	Threshold *int
	Incoming  *int
}

// UpdatePlanning modifica el punto de reorden y las unidades entrantes. No son existencias
// físicas, por lo que no generan entrada de historial.
func (uc *AdjustStockUseCase) UpdatePlanning(ctx context.Context, productID string, in PlanningInput) (*entity.StockRecord, error) {
	if strings.TrimSpace(productID) == "" || (in.Threshold == nil && in.Incoming == nil) {
		return nil, domain.ErrInvalidInput
	}
	if (in.Threshold != nil && *in.Threshold < 0) || (in.Incoming != nil && *in.Incoming < 0) {
		return nil, domain.ErrInvalidQuantity
	}
	release, err := uc.lock(ctx, productID)
	if err != nil {
		return nil, err
	}
	defer release()

	var updated *entity.StockRecord
	err = uc.txRunner.Run(ctx, func(records repository.StockRecordRepository, _ repository.AdjustmentRepository) error {
		current, err := getForUpdate(ctx, records, productID)
		if err != nil {
			return err
		}
		next := current.Clone()
		if in.Threshold != nil {
			next.Threshold = *in.Threshold
		}
		if in.Incoming != nil {
			next.Incoming = *in.Incoming
		}
		next.LastUpdated = uc.now()
		next.Version++
		if err := records.Update(ctx, next); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("product_id", productID).Int("threshold", updated.Threshold).Int("incoming", updated.Incoming).Msg("planificación actualizada")
	return updated.Clone(), nil
}

type lockedFn func(records repository.StockRecordRepository, history repository.AdjustmentRepository) (*AdjustmentResult, error)

// locked ejecuta fn dentro de la transacción con el bloqueo del producto tomado
// y libera el bloqueo al terminar la transacción.
func (uc *AdjustStockUseCase) locked(ctx context.Context, productID string, adjType entity.AdjustmentType, fn lockedFn) (*AdjustmentResult, error) {
	release, err := uc.lock(ctx, productID)
	if err != nil {
		uc.metrics.ObserveAdjustment(string(adjType), outcomeConflict)
		return nil, err
	}
	defer release()

	var res *AdjustmentResult
	err = uc.txRunner.Run(ctx, func(records repository.StockRecordRepository, history repository.AdjustmentRepository) error {
		r, err := fn(records, history)
		if err != nil {
			return err
		}
		res = r
		return nil
	})
	if err != nil {
		if domain.IsValidation(err) || errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInsufficientWarehouseStock) {
			uc.metrics.ObserveAdjustment(string(adjType), outcomeRejected)
		} else {
			uc.metrics.ObserveAdjustment(string(adjType), outcomeError)
			uc.log.Error().Err(err).Str("product_id", productID).Str("type", string(adjType)).Msg("ajuste de stock fallido")
		}
		return nil, err
	}
	uc.metrics.ObserveAdjustment(string(adjType), outcomeOK)
	return res, nil
}

func (uc *AdjustStockUseCase) lock(ctx context.Context, productID string) (func(), error) {
	start := time.Now()
	release, err := uc.locker.Lock(ctx, productID)
	uc.metrics.ObserveLockWait(time.Since(start))
	if err != nil {
		if errors.Is(err, domain.ErrConcurrencyConflict) {
			uc.log.Warn().Str("product_id", productID).Msg("timeout esperando bloqueo del producto")
		}
		return nil, err
	}
	return release, nil
}

// afterCommit registra el ajuste y publica el evento; se ejecuta ya liberado el bloqueo.
func (uc *AdjustStockUseCase) afterCommit(ctx context.Context, res *AdjustmentResult) {
	adj, rec := res.Adjustment, res.Record
	status := stock.StatusOf(rec)
	uc.log.Info().
		Str("adjustment_id", adj.ID).
		Str("product_id", adj.ProductID).
		Str("type", string(adj.Type)).
		Int("quantity", adj.Quantity).
		Str("reason", string(adj.Reason)).
		Int("on_hand", adj.ResultingOnHand).
		Str("status", string(status)).
		Str("actor", adj.Actor).
		Msg("ajuste de stock aplicado")
	if err := uc.publisher.PublishStockAdjusted(ctx, newAdjustedEvent(adj, rec, string(status))); err != nil {
		uc.log.Warn().Err(err).Str("adjustment_id", adj.ID).Msg("no se pudo publicar el evento de ajuste")
	}
	res.Record = rec.Clone()
	cp := *adj
	res.Adjustment = &cp
}

func (uc *AdjustStockUseCase) reject(adjType entity.AdjustmentType, err error) error {
	uc.metrics.ObserveAdjustment(string(adjType), outcomeRejected)
	return err
}

func (uc *AdjustStockUseCase) ensureWarehouses(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		wh, err := uc.warehouses.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("resolver bodega %s: %w", id, err)
		}
		if wh == nil {
			return domain.ErrNotFound
		}
	}
	return nil
}

func getForUpdate(ctx context.Context, records repository.StockRecordRepository, productID string) (*entity.StockRecord, error) {
	current, err := records.GetForUpdate(ctx, productID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, domain.ErrNotFound
	}
	return current, nil
}

func persist(ctx context.Context, records repository.StockRecordRepository, history repository.AdjustmentRepository, next *entity.StockRecord, adj *entity.Adjustment) error {
	if err := stock.CheckInvariants(next); err != nil {
		return err
	}
	if err := records.Update(ctx, next); err != nil {
		return err
	}
	return history.Append(ctx, adj)
}

// soleWarehouse devuelve la única bodega con entrada en el registro, o "" si hay cero o varias.
func soleWarehouse(r *entity.StockRecord) string {
	if len(r.WarehouseQuantities) != 1 {
		return ""
	}
	for id := range r.WarehouseQuantities {
		return id
	}
	return ""
}
