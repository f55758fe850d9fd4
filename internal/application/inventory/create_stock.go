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

// maxSKUAttempts intentos de generación de SKU antes de rendirse por colisiones.
const maxSKUAttempts = 10

// CreateStockUseCase crea el registro de stock de un producto nuevo usando el
// planificador de distribución (una sola vez, al crear el producto).
type CreateStockUseCase struct {
	txRunner   TxRunner
	records    repository.StockRecordRepository
	warehouses repository.WarehouseRepository
	skuGen     *stock.SKUGenerator
	metrics    Metrics
	log        *logger.Logger
	now        func() time.Time
}

// NewCreateStockUseCase construye el caso de uso.
func NewCreateStockUseCase(
	txRunner TxRunner,
	records repository.StockRecordRepository,
	warehouses repository.WarehouseRepository,
	skuGen *stock.SKUGenerator,
	metrics Metrics,
	log *logger.Logger,
) *CreateStockUseCase {
	if skuGen == nil {
		skuGen = stock.NewSKUGenerator()
	}
	if metrics == nil {
		metrics = NopMetrics()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &CreateStockUseCase{
		txRunner:   txRunner,
		records:    records,
		warehouses: warehouses,
		skuGen:     skuGen,
		metrics:    metrics,
		log:        log.Component("create_stock"),
		now:        time.Now,
	}
}

// CreateStockInput entrada para crear un registro de stock.
// SKU vacío = se genera a partir de Category. ProductID vacío = UUID nuevo.
type CreateStockInput struct {
	ProductID    string
	SKU          string
	Name         string
	Category     string
	Icon         string
	UnitCost     decimal.Decimal
	Threshold    int
	Distribution stock.DistributionInput
	Actor        string
}

// Create valida la entrada, planifica la distribución, resuelve el SKU y persiste el registro
// con Reserved = 0 e Incoming = 0. Nada se persiste si algo falla.
func (uc *CreateStockUseCase) Create(ctx context.Context, in CreateStockInput) (*entity.StockRecord, error) {
	if strings.TrimSpace(in.Name) == "" || in.Threshold < 0 || in.UnitCost.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	dist, err := stock.PlanDistribution(in.Distribution)
	if err != nil {
		return nil, err
	}
	for _, id := range dist.WarehouseIDs() {
		wh, err := uc.warehouses.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("resolver bodega %s: %w", id, err)
		}
		if wh == nil {
			return nil, domain.ErrNotFound
		}
	}

	sku, err := uc.resolveSKU(ctx, in.SKU, in.Category)
	if err != nil {
		return nil, err
	}

	productID := strings.TrimSpace(in.ProductID)
	if productID == "" {
		productID = uuid.New().String()
	}
	now := uc.now()
	record := &entity.StockRecord{
		ProductID:           productID,
		SKU:                 sku,
		Name:                strings.TrimSpace(in.Name),
		Category:            strings.TrimSpace(in.Category),
		Icon:                in.Icon,
		UnitCost:            in.UnitCost,
		OnHand:              dist.OnHand,
		Threshold:           in.Threshold,
		WarehouseQuantities: dist.WarehouseQuantities,
		Version:             1,
		CreatedAt:           now,
		LastUpdated:         now,
	}

	err = uc.txRunner.Run(ctx, func(records repository.StockRecordRepository, _ repository.AdjustmentRepository) error {
		return records.Create(ctx, record)
	})
	if err != nil {
		if !errors.Is(err, domain.ErrDuplicate) {
			uc.log.Error().Err(err).Str("sku", sku).Msg("crear registro de stock")
		}
		return nil, err
	}
	uc.metrics.ObserveRecordCreated()
	uc.log.Info().
		Str("product_id", record.ProductID).
		Str("sku", record.SKU).
		Int("on_hand", record.OnHand).
		Int("warehouses", len(record.WarehouseQuantities)).
		Str("actor", actorOrSystem(in.Actor)).
		Msg("registro de stock creado")
	return record.Clone(), nil
}

// resolveSKU normaliza el SKU recibido o genera uno libre. La unicidad final la garantiza
// el repositorio (restricción única); aquí se evita la colisión en el caso común.
func (uc *CreateStockUseCase) resolveSKU(ctx context.Context, requested, category string) (string, error) {
	if sku := stock.NormalizeSKU(requested); sku != "" {
		existing, err := uc.records.GetBySKU(ctx, sku)
		if err != nil {
			return "", fmt.Errorf("verificar sku: %w", err)
		}
		if existing != nil {
			return "", domain.ErrDuplicate
		}
		return sku, nil
	}
	for i := 0; i < maxSKUAttempts; i++ {
		candidate := uc.skuGen.Generate(category)
		existing, err := uc.records.GetBySKU(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("verificar sku: %w", err)
		}
		if existing == nil {
			return candidate, nil
		}
		uc.log.Debug().Str("sku", candidate).Int("attempt", i+1).Msg("colisión de sku generado, reintentando")
	}
	return "", domain.ErrDuplicate
}

func actorOrSystem(actor string) string {
	if a := strings.TrimSpace(actor); a != "" {
		return a
	}
	return entity.ActorSystem
}
