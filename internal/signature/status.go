// Package signature implements component L: the closed PipelineStatus sum
// and the DataSignature assembly that projects final execution state into a
// user-facing result. It also defines SuspendedExecution, SuspensionHandle,
// and SuspensionSummary — data types shared between the scheduler, the
// suspend/resume subsystem, and the facade, kept here to avoid the import
// cycle those two packages would otherwise form over DataSignature.
package signature

import cerrors "github.com/constellation-engine/constellation/pkg/errors"

// PipelineStatusKind tags PipelineStatus's variant.
type PipelineStatusKind int

const (
	Completed PipelineStatusKind = iota
	Suspended
	Failed
)

func (k PipelineStatusKind) String() string {
	switch k {
	case Completed:
		return "Completed"
	case Suspended:
		return "Suspended"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// PipelineStatus is the closed sum an execution terminates (or pauses) in.
type PipelineStatus struct {
	kind     PipelineStatusKind
	failures []*cerrors.ModuleExecutionError
}

// NewCompleted constructs a Completed status.
func NewCompleted() PipelineStatus { return PipelineStatus{kind: Completed} }

// NewSuspended constructs a Suspended status.
func NewSuspended() PipelineStatus { return PipelineStatus{kind: Suspended} }

// NewFailed constructs a Failed status carrying every module failure
// observed during the run.
func NewFailed(failures []*cerrors.ModuleExecutionError) PipelineStatus {
	cp := make([]*cerrors.ModuleExecutionError, len(failures))
	copy(cp, failures)
	return PipelineStatus{kind: Failed, failures: cp}
}

// Kind returns the variant tag.
func (p PipelineStatus) Kind() PipelineStatusKind { return p.kind }

// Failures returns the collected module failures. Valid for Failed; empty
// otherwise.
func (p PipelineStatus) Failures() []*cerrors.ModuleExecutionError {
	out := make([]*cerrors.ModuleExecutionError, len(p.failures))
	copy(out, p.failures)
	return out
}
