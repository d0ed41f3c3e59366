// Package backends implements component K: three pluggable, fire-and-forget
// instrumentation sinks (metrics, tracing, lifecycle listener) with no-op
// defaults, plus concrete adapters onto OpenTelemetry and Prometheus —
// mirroring jinterlante1206-AleutianLocal's trace/dag executor instrumentation
// and jordigilh-kubernaut's metrics stack.
package backends

import "context"

// MetricsProvider records dataflow metrics. Implementations must never
// block the caller or return an error the scheduler would have to handle;
// all three methods are fire-and-forget.
type MetricsProvider interface {
	Counter(name string, tags map[string]string)
	Histogram(name string, value float64, tags map[string]string)
	Gauge(name string, value float64, tags map[string]string)
}

// TracerProvider wraps a unit of work in a span. Span must still invoke
// body even if span creation itself fails, and must propagate body's error
// unchanged.
type TracerProvider interface {
	Span(ctx context.Context, name string, attributes map[string]string, body func(ctx context.Context) error) error
}

// ExecutionListener observes module and execution lifecycle events.
// Implementations must not panic: the scheduler calls listener methods
// directly and does not recover from a panic raised inside one.
type ExecutionListener interface {
	OnExecutionStart(dagName string)
	OnModuleStart(moduleName string)
	OnModuleComplete(moduleName string, durationMs float64)
	OnModuleFailed(moduleName string, err error)
	OnExecutionComplete(dagName string, succeeded bool, durationMs float64)
}

// Backends bundles the three sinks the scheduler and suspend subsystem
// accept as one unit.
type Backends struct {
	Metrics  MetricsProvider
	Tracer   TracerProvider
	Listener ExecutionListener
}

// Default returns a Backends whose every sink is a no-op.
func Default() Backends {
	return Backends{Metrics: NoopMetrics{}, Tracer: NoopTracer{}, Listener: NoopListener{}}
}

// WithDefaults fills in any nil sink in b with its no-op default.
func WithDefaults(b Backends) Backends {
	if b.Metrics == nil {
		b.Metrics = NoopMetrics{}
	}
	if b.Tracer == nil {
		b.Tracer = NoopTracer{}
	}
	if b.Listener == nil {
		b.Listener = NoopListener{}
	}
	return b
}

// Standard instrumentation names required by §4.K when non-default sinks
// are installed.
const (
	MetricExecutionTotal    = "constellation.execution.total"
	MetricExecutionDuration = "constellation.execution.duration_ms"
	MetricModuleDuration    = "constellation.module.duration_ms"
)
