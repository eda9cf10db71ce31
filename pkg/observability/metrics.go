package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	ServiceName string
	Port        int
}

// InitMetrics initializes the Prometheus metrics exporter.
// Returns the MeterProvider and an HTTP handler for /metrics endpoint.
func InitMetrics(_ MetricsConfig) (*sdkmetric.MeterProvider, http.Handler, error) {
	exporter, err := promexporter.New()
	if err != nil {
		return nil, nil, err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)

	handler := promhttp.Handler()

	return provider, handler, nil
}

// CalculationMetrics bundles the instruments recorded around calculation runs.
type CalculationMetrics struct {
	RunsTotal       metric.Int64Counter
	RunDuration     metric.Float64Histogram
	CacheHitsTotal  metric.Int64Counter
	CacheMissTotal  metric.Int64Counter
	FailuresTotal   metric.Int64Counter
	YearsNotSettled metric.Int64Counter
}

// NewCalculationMetrics registers calculation instruments on the provider's meter.
func NewCalculationMetrics(provider *sdkmetric.MeterProvider) (*CalculationMetrics, error) {
	meter := provider.Meter("calculation-service")

	runs, err := meter.Int64Counter("calculation_runs_total",
		metric.WithDescription("Total calculation runs, including cache hits"))
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram("calculation_run_duration_seconds",
		metric.WithDescription("End-to-end duration of calculation runs"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	hits, err := meter.Int64Counter("calculation_cache_hits_total",
		metric.WithDescription("Calculation runs served from the result cache"))
	if err != nil {
		return nil, err
	}

	misses, err := meter.Int64Counter("calculation_cache_misses_total",
		metric.WithDescription("Calculation runs that required a full projection"))
	if err != nil {
		return nil, err
	}

	failures, err := meter.Int64Counter("calculation_failures_total",
		metric.WithDescription("Calculation runs that ended in an error"))
	if err != nil {
		return nil, err
	}

	notSettled, err := meter.Int64Counter("calculation_years_not_converged_total",
		metric.WithDescription("Projection years whose circular solve did not converge"))
	if err != nil {
		return nil, err
	}

	return &CalculationMetrics{
		RunsTotal:       runs,
		RunDuration:     duration,
		CacheHitsTotal:  hits,
		CacheMissTotal:  misses,
		FailuresTotal:   failures,
		YearsNotSettled: notSettled,
	}, nil
}
