package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects integration-layer counters and histograms. A nil
// *Metrics is a valid no-op receiver so tests can leave it unwired.
type Metrics struct {
	upstreamDuration *prometheus.HistogramVec
	upstreamRetries  *prometheus.CounterVec
	cacheEvents      *prometheus.CounterVec
	storeEntities    *prometheus.GaugeVec
	skippedEntities  *prometheus.CounterVec
}

func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &Metrics{
		upstreamDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stylemcp_upstream_request_duration_seconds",
				Help:    "Duration of upstream API requests in seconds, including retries",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"operation", "status"},
		),
		upstreamRetries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stylemcp_upstream_retries_total",
				Help: "Total number of upstream request retry attempts",
			},
			[]string{"operation"},
		),
		cacheEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stylemcp_cache_events_total",
				Help: "Response cache lookups by outcome",
			},
			[]string{"operation", "event"},
		),
		storeEntities: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stylemcp_store_entities",
				Help: "Current number of entities held in the resource store",
			},
			[]string{"kind"},
		),
		skippedEntities: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stylemcp_mapping_skipped_total",
				Help: "Upstream entities dropped during mapping because of data defects",
			},
			[]string{"kind"},
		),
	}
}

func (m *Metrics) ObserveUpstreamRequest(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.upstreamDuration.WithLabelValues(operation, status).Observe(duration.Seconds())
}

func (m *Metrics) IncUpstreamRetry(operation string) {
	if m == nil {
		return
	}
	m.upstreamRetries.WithLabelValues(operation).Inc()
}

func (m *Metrics) IncCacheHit(operation string) {
	if m == nil {
		return
	}
	m.cacheEvents.WithLabelValues(operation, "hit").Inc()
}

func (m *Metrics) IncCacheMiss(operation string) {
	if m == nil {
		return
	}
	m.cacheEvents.WithLabelValues(operation, "miss").Inc()
}

func (m *Metrics) SetStoreEntities(kind string, count int) {
	if m == nil {
		return
	}
	m.storeEntities.WithLabelValues(kind).Set(float64(count))
}

func (m *Metrics) IncSkippedEntity(kind string) {
	if m == nil {
		return
	}
	m.skippedEntities.WithLabelValues(kind).Inc()
}
