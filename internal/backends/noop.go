package backends

import "context"

// NoopMetrics discards every call.
type NoopMetrics struct{}

func (NoopMetrics) Counter(name string, tags map[string]string)                 {}
func (NoopMetrics) Histogram(name string, value float64, tags map[string]string) {}
func (NoopMetrics) Gauge(name string, value float64, tags map[string]string)     {}

// NoopTracer runs body directly with no span.
type NoopTracer struct{}

func (NoopTracer) Span(ctx context.Context, name string, attributes map[string]string, body func(ctx context.Context) error) error {
	return body(ctx)
}

// NoopListener ignores every lifecycle event.
type NoopListener struct{}

func (NoopListener) OnExecutionStart(dagName string)                             {}
func (NoopListener) OnModuleStart(moduleName string)                             {}
func (NoopListener) OnModuleComplete(moduleName string, durationMs float64)       {}
func (NoopListener) OnModuleFailed(moduleName string, err error)                  {}
func (NoopListener) OnExecutionComplete(dagName string, succeeded bool, durationMs float64) {}
