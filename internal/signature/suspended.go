package signature

import (
	"github.com/constellation-engine/constellation/internal/ctype"
	"github.com/constellation-engine/constellation/internal/cvalue"
	"github.com/constellation-engine/constellation/internal/dagspec"
	"github.com/constellation-engine/constellation/internal/module"
)

// SuspendedExecution is a portable, durable snapshot of an execution whose
// required inputs are not all present. Invariants (§3): every dataId in
// ComputedValues is a data node in DagSpec; every ProvidedInputs name is a
// declared input; ResumptionCount >= 0.
type SuspendedExecution struct {
	ExecutionID     string
	StructuralHash  string
	ResumptionCount int
	DagSpec         dagspec.DagSpec
	ModuleOptions   map[string]interface{}
	ProvidedInputs  map[string]cvalue.CValue
	ComputedValues  map[string]cvalue.CValue
	ModuleStatuses  map[string]module.Status
}

// SuspensionHandle is the opaque id a SuspensionStore assigns a saved
// SuspendedExecution.
type SuspensionHandle string

// SuspensionSummary is a lightweight view of a saved suspension, without
// materialising the full snapshot (§3).
type SuspensionSummary struct {
	Handle         SuspensionHandle
	StructuralHash string
	MissingInputs  map[string]ctype.CType
}
