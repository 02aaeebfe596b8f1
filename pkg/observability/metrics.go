package observability

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MetricsManager manages metrics collection for parse and rewrite
// operations.
type MetricsManager struct {
	config        MetricsConfig
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter

	// Parse metrics
	parseTotal      metric.Int64Counter
	parseErrorTotal metric.Int64Counter
	parseDuration   metric.Float64Histogram

	// Rewrite metrics
	rewriteTotal       metric.Int64Counter
	rewriteErrorTotal  metric.Int64Counter
	instructionsAdded  metric.Int64Counter
	instructionsDeleted metric.Int64Counter

	// Document shape metrics
	stageCount       metric.Int64Histogram
	instructionCount metric.Int64Histogram
	fileSizeBytes    metric.Int64Histogram

	mu sync.RWMutex
}

// NewMetricsManager creates a new metrics manager.
func NewMetricsManager(serviceName string, config MetricsConfig, exporters *ExporterManager) (*MetricsManager, error) {
	mm := &MetricsManager{
		config: config,
	}

	opts := []sdkmetric.Option{}

	if exporters != nil {
		for _, reader := range exporters.GetMetricReaders() {
			opts = append(opts, sdkmetric.WithReader(reader))
		}
	}

	mp := sdkmetric.NewMeterProvider(opts...)
	mm.meterProvider = mp
	mm.meter = mp.Meter(serviceName)

	if err := mm.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	return mm, nil
}

func (mm *MetricsManager) initMetrics() error {
	var err error

	mm.parseTotal, err = mm.meter.Int64Counter(
		"dockerfileparse_parse_total",
		metric.WithDescription("Total number of Dockerfiles parsed"),
	)
	if err != nil {
		return err
	}

	mm.parseErrorTotal, err = mm.meter.Int64Counter(
		"dockerfileparse_parse_error_total",
		metric.WithDescription("Total number of parse failures"),
	)
	if err != nil {
		return err
	}

	mm.parseDuration, err = mm.meter.Float64Histogram(
		"dockerfileparse_parse_duration_seconds",
		metric.WithDescription("Time spent parsing a Dockerfile"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	mm.rewriteTotal, err = mm.meter.Int64Counter(
		"dockerfileparse_rewrite_total",
		metric.WithDescription("Total number of rewrite operations applied"),
	)
	if err != nil {
		return err
	}

	mm.rewriteErrorTotal, err = mm.meter.Int64Counter(
		"dockerfileparse_rewrite_error_total",
		metric.WithDescription("Total number of rewrite failures"),
	)
	if err != nil {
		return err
	}

	mm.instructionsAdded, err = mm.meter.Int64Counter(
		"dockerfileparse_instructions_added_total",
		metric.WithDescription("Total number of instructions added"),
	)
	if err != nil {
		return err
	}

	mm.instructionsDeleted, err = mm.meter.Int64Counter(
		"dockerfileparse_instructions_deleted_total",
		metric.WithDescription("Total number of instructions deleted"),
	)
	if err != nil {
		return err
	}

	mm.stageCount, err = mm.meter.Int64Histogram(
		"dockerfileparse_stage_count",
		metric.WithDescription("Number of build stages per parsed file"),
	)
	if err != nil {
		return err
	}

	mm.instructionCount, err = mm.meter.Int64Histogram(
		"dockerfileparse_instruction_count",
		metric.WithDescription("Number of instructions per parsed file"),
	)
	if err != nil {
		return err
	}

	mm.fileSizeBytes, err = mm.meter.Int64Histogram(
		"dockerfileparse_file_size_bytes",
		metric.WithDescription("Size of parsed Dockerfile content"),
		metric.WithUnit("bytes"),
	)
	if err != nil {
		return err
	}

	return nil
}

// RecordParse records a successful parse and its shape.
func (mm *MetricsManager) RecordParse(ctx context.Context, durationSeconds float64, stages, instructions, sizeBytes int64, attrs ...metric.AddOption) {
	mm.parseTotal.Add(ctx, 1, attrs...)
	mm.parseDuration.Record(ctx, durationSeconds)
	mm.stageCount.Record(ctx, stages)
	mm.instructionCount.Record(ctx, instructions)
	mm.fileSizeBytes.Record(ctx, sizeBytes)
}

// RecordParseError records a parse failure.
func (mm *MetricsManager) RecordParseError(ctx context.Context, attrs ...metric.AddOption) {
	mm.parseErrorTotal.Add(ctx, 1, attrs...)
}

// RecordRewrite records a successful rewrite operation.
func (mm *MetricsManager) RecordRewrite(ctx context.Context, attrs ...metric.AddOption) {
	mm.rewriteTotal.Add(ctx, 1, attrs...)
}

// RecordRewriteError records a rewrite failure.
func (mm *MetricsManager) RecordRewriteError(ctx context.Context, attrs ...metric.AddOption) {
	mm.rewriteErrorTotal.Add(ctx, 1, attrs...)
}

// RecordInstructionsAdded records how many instructions a rewrite added.
func (mm *MetricsManager) RecordInstructionsAdded(ctx context.Context, count int64, attrs ...metric.AddOption) {
	mm.instructionsAdded.Add(ctx, count, attrs...)
}

// RecordInstructionsDeleted records how many instructions a rewrite removed.
func (mm *MetricsManager) RecordInstructionsDeleted(ctx context.Context, count int64, attrs ...metric.AddOption) {
	mm.instructionsDeleted.Add(ctx, count, attrs...)
}

// Shutdown shuts down the metrics manager.
func (mm *MetricsManager) Shutdown(ctx context.Context) error {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	if mm.meterProvider != nil {
		return mm.meterProvider.Shutdown(ctx)
	}

	return nil
}
