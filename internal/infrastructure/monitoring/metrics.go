// Package monitoring provides Prometheus metrics and OpenTelemetry tracing
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/alchemorsel/pantry/internal/domain/pantry"
	"github.com/alchemorsel/pantry/internal/domain/shared"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MetricsCollector handles Prometheus metrics collection
type MetricsCollector struct {
	logger   *zap.Logger
	registry *prometheus.Registry

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Pantry metrics
	itemsAdded          *prometheus.CounterVec
	itemsSkipped        *prometheus.CounterVec
	itemsUpdated        *prometheus.CounterVec
	itemsRemoved        *prometheus.CounterVec
	transfersTotal      *prometheus.CounterVec
	itemsTransferred    *prometheus.CounterVec
	storeRecoveries     *prometheus.CounterVec
	categorizations     *prometheus.CounterVec
	categorizationTime  *prometheus.HistogramVec
	categorizationItems prometheus.Histogram
}

// NewMetricsCollector creates a collector on its own registry, including the Go
// runtime and process collectors
func NewMetricsCollector(logger *zap.Logger) *MetricsCollector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &MetricsCollector{
		logger:   logger.Named("metrics"),
		registry: reg,

		// HTTP metrics
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Pantry metrics
		itemsAdded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pantry_items_added_total",
				Help: "Total number of pantry items added",
			},
			[]string{"location"},
		),
		itemsSkipped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pantry_items_skipped_total",
				Help: "Total number of added items skipped as duplicates",
			},
			[]string{"location"},
		),
		itemsUpdated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pantry_items_updated_total",
				Help: "Total number of pantry items edited",
			},
			[]string{"location"},
		),
		itemsRemoved: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pantry_items_removed_total",
				Help: "Total number of pantry items removed, including clears",
			},
			[]string{"location"},
		),
		transfersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pantry_transfers_total",
				Help: "Total number of cross-location transfers",
			},
			[]string{"mode"},
		),
		itemsTransferred: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pantry_items_transferred_total",
				Help: "Total number of items moved or copied between locations",
			},
			[]string{"mode"},
		),
		storeRecoveries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pantry_store_recoveries_total",
				Help: "Stored data repairs performed while loading, by kind",
			},
			[]string{"kind"},
		),
		categorizations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pantry_categorizations_total",
				Help: "Total number of categorization calls by outcome",
			},
			[]string{"provider", "outcome"},
		),
		categorizationTime: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pantry_categorization_duration_seconds",
				Help:    "Categorization call duration in seconds",
				Buckets: []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
			},
			[]string{"provider"},
		),
		categorizationItems: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pantry_categorization_items",
				Help:    "Number of items sent per categorization call",
				Buckets: prometheus.ExponentialBuckets(1, 2, 8),
			},
		),
	}
}

// Registry returns the registry the collector writes to
func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

// Subscribe registers the collector for every pantry event
func (m *MetricsCollector) Subscribe(dispatcher shared.EventDispatcher) {
	dispatcher.Register("*", m.HandleEvent)
}

// HandleEvent records one domain event
func (m *MetricsCollector) HandleEvent(event shared.DomainEvent) error {
	switch e := event.(type) {
	case pantry.EntriesAddedEvent:
		m.itemsAdded.WithLabelValues(string(e.Location)).Add(float64(len(e.EntryIDs)))
		m.itemsSkipped.WithLabelValues(string(e.Location)).Add(float64(e.Skipped))
	case pantry.EntryUpdatedEvent:
		m.itemsUpdated.WithLabelValues(string(e.Location)).Inc()
	case pantry.EntryRemovedEvent:
		m.itemsRemoved.WithLabelValues(string(e.Location)).Inc()
	case pantry.LocationClearedEvent:
		m.itemsRemoved.WithLabelValues(string(e.Location)).Add(float64(e.Removed))
	case pantry.EntriesTransferredEvent:
		m.transfersTotal.WithLabelValues(string(e.Mode)).Inc()
		m.itemsTransferred.WithLabelValues(string(e.Mode)).Add(float64(e.Count))
	case pantry.StoreRecoveredEvent:
		m.storeRecoveries.WithLabelValues("dropped").Add(float64(e.Dropped))
		m.storeRecoveries.WithLabelValues("defaulted").Add(float64(e.Defaulted))
		if e.Migrated {
			m.storeRecoveries.WithLabelValues("migrated").Inc()
		}
		if e.Reset {
			m.storeRecoveries.WithLabelValues("reset").Inc()
		}
	case pantry.CategorizationCompletedEvent:
		m.categorizations.WithLabelValues(e.Provider, e.Outcome).Inc()
		m.categorizationTime.WithLabelValues(e.Provider).Observe(e.Duration.Seconds())
		m.categorizationItems.Observe(float64(e.Items))
	default:
		m.logger.Debug("Ignoring unknown event", zap.String("event", event.EventName()))
	}
	return nil
}

// HTTPMiddleware records request counts and latencies by route pattern
func (m *MetricsCollector) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(status)).Inc()
		m.httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// Handler returns the Prometheus metrics HTTP handler
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
