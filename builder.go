package constellation

import (
	"github.com/constellation-engine/constellation/internal/backends"
	"github.com/constellation-engine/constellation/internal/corelog"
	"github.com/constellation-engine/constellation/internal/pipeline"
	"github.com/constellation-engine/constellation/internal/registry"
	"github.com/constellation-engine/constellation/internal/suspend"
)

// Builder assembles a Constellation. The zero value is not usable; start
// from NewBuilder.
type Builder struct {
	log             *corelog.Logger
	bk              backends.Backends
	suspensionStore *suspend.SuspensionStore
}

// NewBuilder starts a Builder with every collaborator defaulted to a no-op.
func NewBuilder() *Builder {
	return &Builder{log: corelog.Noop()}
}

// WithLogger installs a structured logger; a nil logger (the default) is a
// no-op.
func (b *Builder) WithLogger(log *corelog.Logger) *Builder {
	b.log = log
	return b
}

// WithMetrics installs a MetricsProvider, e.g. backends.NewPrometheusMetrics.
func (b *Builder) WithMetrics(m backends.MetricsProvider) *Builder {
	b.bk.Metrics = m
	return b
}

// WithTracer installs a TracerProvider, e.g. backends.NewOtelTracer.
func (b *Builder) WithTracer(t backends.TracerProvider) *Builder {
	b.bk.Tracer = t
	return b
}

// WithListener installs an ExecutionListener.
func (b *Builder) WithListener(l backends.ExecutionListener) *Builder {
	b.bk.Listener = l
	return b
}

// WithSuspensionStore installs the store Run saves suspended executions into
// and Resume reads them back from. Without one, Resume fails with a
// ConfigurationError.
func (b *Builder) WithSuspensionStore(s *suspend.SuspensionStore) *Builder {
	b.suspensionStore = s
	return b
}

// Build constructs the Constellation.
func (b *Builder) Build() *Constellation {
	log := b.log
	if log == nil {
		log = corelog.Noop()
	}
	return &Constellation{
		registry:        registry.New(log),
		dagReg:          pipeline.NewDagRegistry(),
		store:           pipeline.NewStore(),
		suspensionStore: b.suspensionStore,
		resumer:         suspend.NewResumer(),
		backends:        backends.WithDefaults(b.bk),
		log:             log,
	}
}
