package constellation

import (
	"time"

	"github.com/constellation-engine/constellation/internal/scheduler"
)

// ExecutionOptions configures one Run or Resume call: which optional
// diagnostics to attach to the resulting DataSignature, how many modules may
// run concurrently, and an optional wall-clock deadline.
type ExecutionOptions struct {
	ConcurrencyBound *int
	Deadline         *time.Time

	IncludeTimings           bool
	IncludeProvenance        bool
	IncludeResolutionSources bool
}

func (o ExecutionOptions) toSchedulerOptions() scheduler.Options {
	return scheduler.Options{
		ConcurrencyBound:         o.ConcurrencyBound,
		Deadline:                 o.Deadline,
		IncludeTimings:           o.IncludeTimings,
		IncludeProvenance:        o.IncludeProvenance,
		IncludeResolutionSources: o.IncludeResolutionSources,
	}
}
