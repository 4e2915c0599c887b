// Package observability provides OTel metric instruments for analysis runs
// and a Prometheus scrape handler to expose them.
package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/metric"
)

const (
	metricFilesAnalyzed  = "anchorscope.analysis.files.analyzed.total"
	metricFilesSkipped   = "anchorscope.analysis.files.skipped.total"
	metricFunctionsTotal = "anchorscope.analysis.functions.total"
	metricHandlersTotal  = "anchorscope.analysis.handlers.total"
	metricFileDuration   = "anchorscope.analysis.file.duration.seconds"
)

// durationBucketBoundaries covers sub-millisecond parses up to multi-second
// pathological files.
var durationBucketBoundaries = []float64{
	0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10,
}

// RunMetrics holds OTel instruments for per-run analysis statistics.
type RunMetrics struct {
	filesAnalyzed  metric.Int64Counter
	filesSkipped   metric.Int64Counter
	functionsTotal metric.Int64Counter
	handlersTotal  metric.Int64Counter
	fileDuration   metric.Float64Histogram
}

// NewRunMetrics creates run metric instruments from the given meter.
func NewRunMetrics(mt metric.Meter) (*RunMetrics, error) {
	b := newMetricBuilder(mt)

	rm := &RunMetrics{
		filesAnalyzed:  b.counter(metricFilesAnalyzed, "Files analyzed successfully", "{file}"),
		filesSkipped:   b.counter(metricFilesSkipped, "Files skipped due to read or parse failures", "{file}"),
		functionsTotal: b.counter(metricFunctionsTotal, "Functions and methods measured", "{function}"),
		handlersTotal:  b.counter(metricHandlersTotal, "Declarations classified as contract handlers", "{function}"),
		fileDuration:   b.histogram(metricFileDuration, "Per-file analysis duration in seconds", "s", durationBucketBoundaries...),
	}

	if b.err != nil {
		return nil, b.err
	}

	return rm, nil
}

// RecordFile records the outcome of one file. Safe on a nil receiver.
func (rm *RunMetrics) RecordFile(ctx context.Context, elapsed time.Duration, skipped bool) {
	if rm == nil {
		return
	}

	if skipped {
		rm.filesSkipped.Add(ctx, 1)
	} else {
		rm.filesAnalyzed.Add(ctx, 1)
	}

	rm.fileDuration.Record(ctx, elapsed.Seconds())
}

// RecordFunctions records function and handler counts for a completed file.
// Safe on a nil receiver.
func (rm *RunMetrics) RecordFunctions(ctx context.Context, functions, handlers int) {
	if rm == nil {
		return
	}

	rm.functionsTotal.Add(ctx, int64(functions))
	rm.handlersTotal.Add(ctx, int64(handlers))
}

// metricBuilder accumulates OTel instrument creation errors,
// enabling batch construction with a single error check.
type metricBuilder struct {
	meter metric.Meter
	err   error
}

func newMetricBuilder(mt metric.Meter) *metricBuilder {
	return &metricBuilder{meter: mt}
}

func (b *metricBuilder) counter(name, desc, unit string) metric.Int64Counter {
	c, err := b.meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	b.setErr(name, err)

	return c
}

func (b *metricBuilder) histogram(name, desc, unit string, bounds ...float64) metric.Float64Histogram {
	opts := []metric.Float64HistogramOption{
		metric.WithDescription(desc),
		metric.WithUnit(unit),
	}

	if len(bounds) > 0 {
		opts = append(opts, metric.WithExplicitBucketBoundaries(bounds...))
	}

	h, err := b.meter.Float64Histogram(name, opts...)
	b.setErr(name, err)

	return h
}

func (b *metricBuilder) setErr(name string, err error) {
	if err != nil && b.err == nil {
		b.err = fmt.Errorf("create %s: %w", name, err)
	}
}
