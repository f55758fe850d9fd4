// Package metrics expone métricas Prometheus del servicio de stock.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

var _ inventory.Metrics = (*Metrics)(nil)

// Metrics registro propio (no el global) con las métricas HTTP y de negocio.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	AdjustmentsTotal *prometheus.CounterVec
	LockWait         prometheus.Histogram
	RecordsCreated   prometheus.Counter
	EventsPublished  *prometheus.CounterVec
}

// New crea las métricas bajo namespace (p. ej. "stock_ledger").
func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total de peticiones HTTP",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duración de las peticiones HTTP",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		AdjustmentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_adjustments_total",
			Help:      "Ajustes de stock por tipo y resultado",
		}, []string{"type", "outcome"}),
		LockWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stock_lock_wait_seconds",
			Help:      "Espera por el bloqueo de un producto",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .25, .5, 1, 2, 5},
		}),
		RecordsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_records_created_total",
			Help:      "Registros de stock creados",
		}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_events_published_total",
			Help:      "Eventos stock.adjusted publicados por resultado",
		}, []string{"outcome"}),
	}
	registry.MustRegister(
		m.HTTPRequestsTotal, m.HTTPRequestDuration,
		m.AdjustmentsTotal, m.LockWait, m.RecordsCreated, m.EventsPublished,
	)
	return m
}

// Registry devuelve el registro (tests y exportadores).
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// InvalidTypeLabel etiqueta de los ajustes rechazados con un tipo desconocido.
const InvalidTypeLabel = "INVALID"

// ObserveAdjustment implementa inventory.Metrics. Los tipos desconocidos se agrupan en
// InvalidTypeLabel para que el cliente no pueda crear series nuevas.
func (m *Metrics) ObserveAdjustment(adjType, outcome string) {
	if !entity.AdjustmentType(adjType).IsValid() {
		adjType = InvalidTypeLabel
	}
	m.AdjustmentsTotal.WithLabelValues(adjType, outcome).Inc()
}

// ObserveLockWait implementa inventory.Metrics.
func (m *Metrics) ObserveLockWait(d time.Duration) {
	m.LockWait.Observe(d.Seconds())
}

// ObserveRecordCreated implementa inventory.Metrics.
func (m *Metrics) ObserveRecordCreated() {
	m.RecordsCreated.Inc()
}

// ObservePublish cuenta publicaciones de eventos ("ok" | "error").
func (m *Metrics) ObservePublish(outcome string) {
	m.EventsPublished.WithLabelValues(outcome).Inc()
}

// Handler expone el registro en formato Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware registra conteo y duración por ruta (patrón de la ruta, no la URL con IDs).
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		// el método apunta al buffer de la petición; la etiqueta vive en el registro
		method := strings.Clone(c.Method())
		route := c.Route().Path
		m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		return err
	}
}
