package scheduler

import "time"

// Options configures one scheduler Run.
type Options struct {
	// ConcurrencyBound limits how many modules may run at once. Nil means
	// unbounded.
	ConcurrencyBound *int
	// Deadline, if set, cancels outstanding module tasks on expiry and
	// yields Suspended with missingInputs left unchanged (§5).
	Deadline *time.Time

	IncludeTimings           bool
	IncludeProvenance        bool
	IncludeResolutionSources bool
}
