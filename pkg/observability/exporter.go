package observability

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// ExporterManager manages all configured trace and metric exporters.
type ExporterManager struct {
	config         ExporterConfig
	traceExporters []sdktrace.SpanExporter
	metricReaders  []sdkmetric.Reader
	mu             sync.RWMutex
}

// NewExporterManager creates a new exporter manager.
func NewExporterManager(config ExporterConfig) (*ExporterManager, error) {
	em := &ExporterManager{
		config:         config,
		traceExporters: make([]sdktrace.SpanExporter, 0),
		metricReaders:  make([]sdkmetric.Reader, 0),
	}

	if err := em.initTraceExporters(); err != nil {
		return nil, fmt.Errorf("failed to initialize trace exporters: %w", err)
	}

	if err := em.initMetricExporters(); err != nil {
		return nil, fmt.Errorf("failed to initialize metric exporters: %w", err)
	}

	return em, nil
}

// initTraceExporters initializes trace exporters: stdout always, for
// local/CLI use where there is no collector to ship spans to.
func (em *ExporterManager) initTraceExporters() error {
	stdoutExporter, err := stdouttrace.New(
		stdouttrace.WithPrettyPrint(),
	)
	if err == nil {
		em.traceExporters = append(em.traceExporters, stdoutExporter)
	}

	return nil
}

// initMetricExporters initializes metric exporters.
func (em *ExporterManager) initMetricExporters() error {
	if em.config.Prometheus.Enabled {
		reader, err := em.createPrometheusReader()
		if err != nil {
			return fmt.Errorf("failed to create Prometheus reader: %w", err)
		}
		em.metricReaders = append(em.metricReaders, reader)
	}

	return nil
}

// createPrometheusReader creates a Prometheus reader.
func (em *ExporterManager) createPrometheusReader() (sdkmetric.Reader, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, err
	}

	return exporter, nil
}

// GetTraceExporters returns all trace exporters.
func (em *ExporterManager) GetTraceExporters() []sdktrace.SpanExporter {
	em.mu.RLock()
	defer em.mu.RUnlock()

	return em.traceExporters
}

// GetMetricReaders returns all metric readers.
func (em *ExporterManager) GetMetricReaders() []sdkmetric.Reader {
	em.mu.RLock()
	defer em.mu.RUnlock()

	return em.metricReaders
}

// Shutdown shuts down all exporters.
func (em *ExporterManager) Shutdown(ctx context.Context) error {
	em.mu.Lock()
	defer em.mu.Unlock()

	var errs []error

	for _, exporter := range em.traceExporters {
		if err := exporter.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("exporter shutdown errors: %v", errs)
	}

	return nil
}
