package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Si fn devuelve error no se aplica ninguna escritura (todo o nada).
type TxRunner interface {
	Run(ctx context.Context, fn func(
		records repository.StockRecordRepository,
		history repository.AdjustmentRepository,
	) error) error
}

// ProductLocker serializa las lecturas-escrituras de un mismo producto.
// Lock espera como máximo el tiempo configurado y devuelve domain.ErrConcurrencyConflict
// si no obtiene el bloqueo. release es idempotente.
type ProductLocker interface {
	Lock(ctx context.Context, productID string) (release func(), err error)
}

// Metrics puerto de métricas del motor de ajustes.
type Metrics interface {
	ObserveAdjustment(adjType, outcome string)
	ObserveLockWait(d time.Duration)
	ObserveRecordCreated()
}

type nopMetrics struct{}

func (nopMetrics) ObserveAdjustment(string, string) {}
func (nopMetrics) ObserveLockWait(time.Duration)     {}
func (nopMetrics) ObserveRecordCreated()             {}

// NopMetrics implementación vacía para tests o despliegues sin Prometheus.
func NopMetrics() Metrics { return nopMetrics{} }
