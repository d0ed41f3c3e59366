package dagspec

import (
	"fmt"
	"strings"
)

// ExecutionPlan is the topological-level shape of a DAG, computed when the
// DataSignature is assembled and attached to its metadata when requested —
// mirroring the teacher's internal/engine/planner.go ExecutionPlan.
type ExecutionPlan struct {
	Levels []ExecutionLevel
}

// ExecutionLevel is one wave of modules that could, in principle, run
// concurrently (all their dependencies are satisfied by earlier levels).
type ExecutionLevel struct {
	ModuleIDs []string
}

// GeneratePlan computes an ExecutionPlan from spec's topological levels.
func GeneratePlan(spec DagSpec) ExecutionPlan {
	levels := TopoLevels(spec)
	plan := ExecutionPlan{Levels: make([]ExecutionLevel, len(levels))}
	for i, l := range levels {
		plan.Levels[i] = ExecutionLevel{ModuleIDs: l}
	}
	return plan
}

func (p ExecutionPlan) String() string {
	var b strings.Builder
	for i, level := range p.Levels {
		fmt.Fprintf(&b, "level %d: %s\n", i, strings.Join(level.ModuleIDs, ", "))
	}
	return b.String()
}
