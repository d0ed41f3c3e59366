// Package pipeline implements the DAG Registry and Pipeline Store
// (component F): process-wide, mutex-serialised stores for named DagSpecs
// and content-hash-deduplicated PipelineImages.
package pipeline

import (
	"time"

	"github.com/constellation-engine/constellation/internal/dagspec"
)

// Image is the PipelineImage (a.k.a. ProgramImage): a compiled, deduplicated
// snapshot of a DagSpec.
type Image struct {
	StructuralHash string
	SyntacticHash  string
	DagSpec        dagspec.DagSpec
	ModuleOptions  map[string]interface{}
	CompiledAt     time.Time
}

// ComponentMetadata is the derived snapshot DagRegistry.List returns per
// name, following the teacher's VerificationSummary aggregate-with-counts
// idiom (§3).
type ComponentMetadata struct {
	Name            string
	NodeCount       int
	DeclaredOutputs []string
	CompiledAt      time.Time
}
