// Package redislock implementa el bloqueo por producto sobre Redis para despliegues con
// varias instancias del servicio (STOCK_LOCKER=redis).
package redislock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

var _ inventory.ProductLocker = (*Locker)(nil)

const (
	keyPrefix    = "stock:lock:"
	defaultLease = 30 * time.Second
	retryEvery   = 25 * time.Millisecond
)

// Locker bloqueo distribuido con bsm/redislock. La espera está acotada por timeout;
// el lease cubre el caso de una instancia que muere con el bloqueo tomado.
type Locker struct {
	client  *redislock.Client
	timeout time.Duration
	lease   time.Duration
	log     *logger.Logger
}

// New construye el locker sobre un cliente go-redis ya conectado.
func New(rdb redis.UniversalClient, timeout time.Duration, log *logger.Logger) *Locker {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Locker{
		client:  redislock.New(rdb),
		timeout: timeout,
		lease:   defaultLease,
		log:     log.Component("redislock"),
	}
}

// Key clave de Redis del bloqueo de un producto.
func Key(productID string) string {
	return keyPrefix + productID
}

// Lock reintenta hasta el timeout; sin éxito devuelve domain.ErrConcurrencyConflict.
func (l *Locker) Lock(ctx context.Context, productID string) (func(), error) {
	waitCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	lock, err := l.client.Obtain(waitCtx, Key(productID), l.lease, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(retryEvery),
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, redislock.ErrNotObtained) || errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.ErrConcurrencyConflict
		}
		return nil, fmt.Errorf("obtener bloqueo %s: %w", productID, err)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// liberar aunque el ctx de la petición ya esté cancelado
			relCtx, relCancel := context.WithTimeout(context.Background(), time.Second)
			defer relCancel()
			if err := lock.Release(relCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
				l.log.Warn().Err(err).Str("product_id", productID).Msg("no se pudo liberar el bloqueo")
			}
		})
	}, nil
}

// NewClient crea el cliente go-redis y verifica la conexión.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}
