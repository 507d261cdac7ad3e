package logger

import (
	"net/http"
	"sync"

	"github.com/hsdfat8/gridops/internal/domain/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestTotal counts API requests by route and status code
	HTTPRequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridops_http_requests_total",
			Help: "Total number of HTTP API requests",
		},
		[]string{"method", "route", "code"},
	)

	// HTTPRequestDuration measures API latency
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gridops_http_request_duration_seconds",
			Help:    "HTTP API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// PermitTransitionTotal counts work permit workflow moves
	PermitTransitionTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridops_permit_transitions_total",
			Help: "Total number of work permit status transitions",
		},
		[]string{"from", "to", "result"}, // result: "ok" or "rejected"
	)

	// AlertLifecycleTotal counts alert resolutions and dismissals
	AlertLifecycleTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridops_alert_lifecycle_total",
			Help: "Total number of alert lifecycle operations",
		},
		[]string{"action", "result"},
	)

	// AdvisorCallTotal counts AI advisor calls by outcome
	AdvisorCallTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridops_advisor_calls_total",
			Help: "Total number of AI advisor calls",
		},
		[]string{"kind", "outcome"}, // outcome: "ok" or "degraded"
	)

	// CacheHitTotal counts cache hits and misses
	CacheHitTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridops_cache_hit_total",
			Help: "Total number of cache hits and misses",
		},
		[]string{"result"}, // "hit" or "miss"
	)

	// EquipmentByStatus tracks equipment count by type and status class
	EquipmentByStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gridops_equipment_by_status",
			Help: "Number of equipment by type and status class",
		},
		[]string{"type", "class"},
	)

	registerOnce sync.Once
)

// InitMetrics registers Prometheus metrics; safe to call more than once
func InitMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(HTTPRequestTotal)
		prometheus.MustRegister(HTTPRequestDuration)
		prometheus.MustRegister(PermitTransitionTotal)
		prometheus.MustRegister(AlertLifecycleTotal)
		prometheus.MustRegister(AdvisorCallTotal)
		prometheus.MustRegister(CacheHitTotal)
		prometheus.MustRegister(EquipmentByStatus)
	})
}

// RecordSummary publishes a status summary on the EquipmentByStatus gauge
func RecordSummary(summary *models.StatusSummary) {
	for eqType, s := range summary.ByType {
		t := string(eqType)
		EquipmentByStatus.WithLabelValues(t, string(models.StatusClassOnline)).Set(float64(s.Online))
		EquipmentByStatus.WithLabelValues(t, string(models.StatusClassOffline)).Set(float64(s.Offline))
		EquipmentByStatus.WithLabelValues(t, string(models.StatusClassWarning)).Set(float64(s.Warning))
		EquipmentByStatus.WithLabelValues(t, string(models.StatusClassFault)).Set(float64(s.Fault))
		EquipmentByStatus.WithLabelValues(t, string(models.StatusClassUnknown)).Set(float64(s.Unknown))
	}
}

// MetricsHandler returns HTTP handler for Prometheus metrics
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
