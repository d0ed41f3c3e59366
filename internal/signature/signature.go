package signature

import (
	"time"

	"github.com/constellation-engine/constellation/internal/cvalue"
	"github.com/constellation-engine/constellation/internal/dagspec"
)

// ResolutionSource records where a resolved node's value came from.
type ResolutionSource int

const (
	FromInput ResolutionSource = iota
	FromModuleExecution
	FromManualResolution
	FromCache
)

func (r ResolutionSource) String() string {
	switch r {
	case FromInput:
		return "FromInput"
	case FromModuleExecution:
		return "FromModuleExecution"
	case FromManualResolution:
		return "FromManualResolution"
	case FromCache:
		return "FromCache"
	default:
		return "Unknown"
	}
}

// Metadata carries the optional diagnostics §4.L attaches when requested by
// ExecutionOptions.
type Metadata struct {
	NodeTimings       map[string]time.Duration
	Provenance        map[string]string
	ResolutionSources map[string]ResolutionSource
	ExecutionPlan     *dagspec.ExecutionPlan
}

// DataSignature is the deterministic, user-facing projection of an
// execution's final (or suspended) state.
type DataSignature struct {
	ExecutionID     string
	StructuralHash  string
	ResumptionCount int
	Status          PipelineStatus
	Inputs          map[string]cvalue.CValue
	ComputedNodes   map[string]cvalue.CValue // keyed by node name
	Outputs         map[string]cvalue.CValue // keyed by output name
	MissingInputs   []string                 // ordered
	PendingOutputs  []string
	Metadata        *Metadata
	SuspendedState  *SuspendedExecution // present iff Status.Kind() == Suspended
	TotalOutputs    int                 // totalDeclaredOutputs, needed for Progress
}

// Progress is 1.0 iff Completed, else computedOutputs/totalDeclaredOutputs
// treating 0/0 as 1.0.
func (d DataSignature) Progress() float64 {
	if d.Status.Kind() == Completed {
		return 1.0
	}
	if d.TotalOutputs == 0 {
		return 1.0
	}
	return float64(len(d.Outputs)) / float64(d.TotalOutputs)
}

// IsComplete reports whether the execution reached Completed.
func (d DataSignature) IsComplete() bool { return d.Status.Kind() == Completed }

// Output looks up a declared output by name.
func (d DataSignature) Output(name string) (cvalue.CValue, bool) {
	v, ok := d.Outputs[name]
	return v, ok
}

// Node looks up a computed node by name.
func (d DataSignature) Node(name string) (cvalue.CValue, bool) {
	v, ok := d.ComputedNodes[name]
	return v, ok
}

// FailedNodes returns the names of modules recorded in a Failed status;
// empty for any other status.
func (d DataSignature) FailedNodes() []string {
	if d.Status.Kind() != Failed {
		return nil
	}
	failures := d.Status.Failures()
	names := make([]string, len(failures))
	for i, f := range failures {
		names[i] = f.ModuleName
	}
	return names
}
