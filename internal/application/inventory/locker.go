package inventory

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
)

var _ ProductLocker = (*LocalLocker)(nil)

type lockEntry struct {
	sem  *semaphore.Weighted
	refs int // dueños más esperas en curso
}

// LocalLocker bloqueo por producto en memoria (una instancia del servicio).
// Cada producto tiene un semáforo de peso 1; la espera está acotada por timeout.
// Una entrada vive mientras alguien tenga o espere el bloqueo, así que el mapa solo
// contiene productos con trabajo en curso.
type LocalLocker struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
	timeout time.Duration
}

// NewLocalLocker construye el locker. timeout <= 0 usa 2 segundos.
func NewLocalLocker(timeout time.Duration) *LocalLocker {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &LocalLocker{entries: make(map[string]*lockEntry), timeout: timeout}
}

// acquireEntry devuelve la entrada del producto sumando una referencia.
// La clave se copia: el id puede venir de un buffer de petición que se reutiliza.
func (l *LocalLocker) acquireEntry(productID string) (string, *lockEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[productID]
	if !ok {
		productID = strings.Clone(productID)
		e = &lockEntry{sem: semaphore.NewWeighted(1)}
		l.entries[productID] = e
	}
	e.refs++
	return productID, e
}

func (l *LocalLocker) releaseEntry(key string, e *lockEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 && l.entries[key] == e {
		delete(l.entries, key)
	}
}

// Len número de productos con el bloqueo tomado o en espera.
func (l *LocalLocker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Lock adquiere el semáforo del producto o devuelve ErrConcurrencyConflict al vencer el timeout.
// Si el ctx del llamador se cancela se devuelve su error.
func (l *LocalLocker) Lock(ctx context.Context, productID string) (func(), error) {
	key, e := l.acquireEntry(productID)
	waitCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()
	if err := e.sem.Acquire(waitCtx, 1); err != nil {
		l.releaseEntry(key, e)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.ErrConcurrencyConflict
		}
		return nil, err
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			e.sem.Release(1)
			l.releaseEntry(key, e)
		})
	}, nil
}
