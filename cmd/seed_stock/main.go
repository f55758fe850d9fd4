// seed_stock carga bodegas y productos iniciales en PostgreSQL a partir de un archivo JSON.
//
// Uso: go run ./cmd/seed_stock [ruta/seed.json]
// Por defecto lee docs/seed.json. Es idempotente: las bodegas existentes se reutilizan y
// los productos cuyo SKU ya existe se omiten.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/application/usecase"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/stock"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger-api/pkg/config"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

type seedFile struct {
	Warehouses []dto.CreateWarehouseRequest `json:"warehouses"`
	Products   []dto.CreateStockRequest     `json:"products"`
}

func main() {
	path := "docs/seed.json"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	raw, err := os.ReadFile(path)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("leer archivo de carga")
	}
	var seed seedFile
	if err := json.Unmarshal(raw, &seed); err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("decodificar archivo de carga")
	}

	if err := load(seed, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("carga inicial")
	}
}

// load aplica la carga; el pool se cierra también cuando falla.
func load(seed seedFile, cfg *config.Config, log *logger.Logger) error {
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("migraciones: %w", err)
	}

	warehouses := postgres.NewWarehouseRepository(pool)
	warehouseUC := usecase.NewWarehouseUseCase(warehouses)
	createUC := inventory.NewCreateStockUseCase(
		postgres.NewTxRunner(pool),
		postgres.NewStockRecordRepository(pool),
		warehouses,
		nil, nil, log,
	)

	for _, w := range seed.Warehouses {
		out, err := warehouseUC.EnsureExists(ctx, w)
		if err != nil {
			return fmt.Errorf("crear bodega %q: %w", w.Name, err)
		}
		log.Info().Str("warehouse_id", out.ID).Str("name", out.Name).Msg("bodega lista")
	}

	created, skipped := 0, 0
	for _, p := range seed.Products {
		rec, err := createUC.Create(ctx, inventory.CreateStockInput{
			ProductID: p.ProductID,
			SKU:       p.SKU,
			Name:      p.Name,
			Category:  p.Category,
			Icon:      p.Icon,
			UnitCost:  p.UnitCost,
			Threshold: p.Threshold,
			Distribution: stock.DistributionInput{
				Mode:        stock.DistributionMode(p.Distribution.Mode),
				WarehouseID: p.Distribution.WarehouseID,
				Stock:       p.Distribution.Stock,
				Quantities:  p.Distribution.Quantities,
			},
			Actor: entity.ActorSystem,
		})
		switch {
		case errors.Is(err, domain.ErrDuplicate):
			skipped++
			log.Info().Str("sku", p.SKU).Msg("producto ya existe, se omite")
		case err != nil:
			return fmt.Errorf("crear producto %q: %w", p.Name, err)
		default:
			created++
			log.Info().Str("product_id", rec.ProductID).Str("sku", rec.SKU).Int("on_hand", rec.OnHand).Msg("producto creado")
		}
	}
	log.Info().Int("created", created).Int("skipped", skipped).Msg("carga inicial terminada")
	return nil
}
