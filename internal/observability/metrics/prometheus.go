package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/inferloop/synthetizer/internal/sampling"
	"github.com/inferloop/synthetizer/pkg/constants"
)

// PrometheusMetrics provides Prometheus-based metrics collection. It
// implements sampling.Observer so engine events land in the registry.
type PrometheusMetrics struct {
	logger   *logrus.Logger
	registry *prometheus.Registry
	config   *PrometheusConfig

	// Engine metrics
	samplersBuilt   *prometheus.CounterVec
	fitDuration     *prometheus.HistogramVec
	observedValues  *prometheus.HistogramVec
	bufferRefills   *prometheus.CounterVec
	durationRedraws prometheus.Counter

	// API metrics
	samplersRegistered  prometheus.Gauge
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

var _ sampling.Observer = (*PrometheusMetrics)(nil)

// PrometheusConfig configures Prometheus metrics
type PrometheusConfig struct {
	Namespace string `json:"namespace" mapstructure:"namespace"`
	Subsystem string `json:"subsystem" mapstructure:"subsystem"`

	// Register Go runtime and process collectors
	RuntimeMetrics bool `json:"runtime_metrics" mapstructure:"runtime_metrics"`
}

// NewPrometheusMetrics creates a new Prometheus metrics instance
func NewPrometheusMetrics(config *PrometheusConfig, logger *logrus.Logger) (*PrometheusMetrics, error) {
	if config == nil {
		config = DefaultPrometheusConfig()
	}

	if logger == nil {
		logger = logrus.New()
	}

	pm := &PrometheusMetrics{
		logger:   logger,
		registry: prometheus.NewRegistry(),
		config:   config,
	}

	pm.initializeMetrics()

	if err := pm.registerMetrics(); err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	pm.logger.WithFields(logrus.Fields{
		"namespace": config.Namespace,
		"subsystem": config.Subsystem,
	}).Debug("Registered Prometheus metrics")

	return pm, nil
}

// Handler exposes the registry in the Prometheus text format
func (pm *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(pm.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// SamplerBuilt records one fitted sampler
func (pm *PrometheusMetrics) SamplerBuilt(kind sampling.Kind, observed int, elapsed time.Duration) {
	pm.samplersBuilt.WithLabelValues(string(kind)).Inc()
	pm.fitDuration.WithLabelValues(string(kind)).Observe(elapsed.Seconds())
	pm.observedValues.WithLabelValues(string(kind)).Observe(float64(observed))
}

// BufferRefilled records one batch of pre-drawn values
func (pm *PrometheusMetrics) BufferRefilled(kind sampling.Kind, size int) {
	pm.bufferRefills.WithLabelValues(string(kind)).Inc()
}

// DurationRedrawn records one rejected negative duration
func (pm *PrometheusMetrics) DurationRedrawn() {
	pm.durationRedraws.Inc()
}

// SetSamplersRegistered sets the number of samplers held by the API registry
func (pm *PrometheusMetrics) SetSamplersRegistered(count int) {
	pm.samplersRegistered.Set(float64(count))
}

// RecordHTTPRequest records HTTP request metrics
func (pm *PrometheusMetrics) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	pm.httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	pm.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (pm *PrometheusMetrics) initializeMetrics() {
	namespace := pm.config.Namespace
	subsystem := pm.config.Subsystem

	pm.samplersBuilt = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "samplers_built_total",
			Help:      "Total number of fitted samplers",
		},
		[]string{"kind"},
	)

	pm.fitDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "fit_duration_seconds",
			Help:      "Time spent selecting and fitting a sampler",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"kind"},
	)

	pm.observedValues = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "observed_values",
			Help:      "Number of observed values per fitted sampler",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		},
		[]string{"kind"},
	)

	pm.bufferRefills = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "buffer_refills_total",
			Help:      "Total number of sample buffer refills",
		},
		[]string{"kind"},
	)

	pm.durationRedraws = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "duration_redraws_total",
			Help:      "Total number of rejected negative durations",
		},
	)

	pm.samplersRegistered = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "samplers_registered",
			Help:      "Number of samplers held by the API registry",
		},
	)

	pm.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	pm.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
}

// registerMetrics registers all metrics with the Prometheus registry
func (pm *PrometheusMetrics) registerMetrics() error {
	metrics := []prometheus.Collector{
		pm.samplersBuilt,
		pm.fitDuration,
		pm.observedValues,
		pm.bufferRefills,
		pm.durationRedraws,
		pm.samplersRegistered,
		pm.httpRequestsTotal,
		pm.httpRequestDuration,
	}
	if pm.config.RuntimeMetrics {
		metrics = append(metrics,
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	for _, metric := range metrics {
		if err := pm.registry.Register(metric); err != nil {
			return fmt.Errorf("failed to register metric: %w", err)
		}
	}

	return nil
}

// GetRegistry returns the Prometheus registry
func (pm *PrometheusMetrics) GetRegistry() *prometheus.Registry {
	return pm.registry
}

// DefaultPrometheusConfig returns the metrics configuration used when none is given
func DefaultPrometheusConfig() *PrometheusConfig {
	return &PrometheusConfig{
		Namespace:      constants.AppName,
		Subsystem:      "engine",
		RuntimeMetrics: true,
	}
}
