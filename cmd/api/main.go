package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	appanalytics "github.com/jhoicas/stock-ledger-api/internal/application/analytics"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/application/usecase"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/kafka"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/metrics"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/redislock"
	httpRouter "github.com/jhoicas/stock-ledger-api/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger-api/pkg/config"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

// storage repositorios y TxRunner del backend elegido en STOCK_STORE.
type storage struct {
	records    repository.StockRecordRepository
	history    repository.AdjustmentRepository
	warehouses repository.WarehouseRepository
	txRunner   inventory.TxRunner
	close      func()
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.Stock.Store == config.StoreMemory {
		log.Warn().Msg("almacén en memoria: los datos se pierden al reiniciar")
		store := memory.NewStore()
		return &storage{
			records:    store.StockRecords(),
			history:    store.Adjustments(),
			warehouses: store.Warehouses(),
			txRunner:   memory.NewTxRunner(store),
			close:      func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &storage{
		records:    postgres.NewStockRecordRepository(pool),
		history:    postgres.NewAdjustmentRepository(pool),
		warehouses: postgres.NewWarehouseRepository(pool),
		txRunner:   postgres.NewTxRunner(pool),
		close:      pool.Close,
	}, nil
}

func openLocker(ctx context.Context, cfg *config.Config, log *logger.Logger) (inventory.ProductLocker, func(), error) {
	if cfg.Stock.Locker != config.LockerRedis {
		return inventory.NewLocalLocker(cfg.Stock.LockTimeout()), func() {}, nil
	}
	rdb, err := redislock.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, nil, err
	}
	return redislock.New(rdb, cfg.Stock.LockTimeout(), log), func() { _ = rdb.Close() }, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Stock.Store).
		Str("locker", cfg.Stock.Locker).
		Msg("iniciando aplicación")

	// run devuelve el error en lugar de terminar el proceso para que sus defer cierren
	// el pool, Redis y Kafka.
	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("aplicación terminada con error")
	}
	log.Info().Msg("aplicación detenida")
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx := context.Background()
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("abrir almacén de stock: %w", err)
	}
	defer store.close()

	locker, closeLocker, err := openLocker(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("conexión a Redis: %w", err)
	}
	defer closeLocker()

	m := metrics.New("stock_ledger")

	var publisher inventory.EventPublisher = inventory.NopPublisher()
	if cfg.Kafka.Enabled() {
		kp := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, m)
		defer func() {
			if err := kp.Close(); err != nil {
				log.Error().Err(err).Msg("cerrar publicador Kafka")
			}
		}()
		publisher = kp
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("publicación de eventos habilitada")
	}

	createStockUC := inventory.NewCreateStockUseCase(store.txRunner, store.records, store.warehouses, nil, m, log)
	adjustStockUC := inventory.NewAdjustStockUseCase(store.txRunner, store.warehouses, locker, publisher, m, log)
	stockQueryUC := inventory.NewStockQueryUseCase(store.records, store.history)
	replenishmentUC := inventory.NewReplenishmentUseCase(store.records)
	dashboardUC := appanalytics.NewDashboardUseCase(store.records, store.warehouses)
	warehouseUC := usecase.NewWarehouseUseCase(store.warehouses)

	// Immutable: los valores de la petición pueden quedar como claves de bloqueo o etiquetas
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		Immutable:    true,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(m.Middleware())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.Docs.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.Docs.SwaggerFile,
			Path:     "docs",
			Title:    "Stock Ledger API",
		}))
	} else {
		log.Warn().Str("file", cfg.Docs.SwaggerFile).Msg("swagger deshabilitado: archivo no encontrado")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		CreateStock:   createStockUC,
		AdjustStock:   adjustStockUC,
		StockQuery:    stockQueryUC,
		Replenishment: replenishmentUC,
		Dashboard:     dashboardUC,
		WarehouseUC:   warehouseUC,
		JWTSecret:     cfg.JWT.Secret,
		HistoryLimit:  cfg.Stock.HistoryLimit,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("apagado del servidor: %w", err)
	}
	return nil
}
