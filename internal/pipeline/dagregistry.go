package pipeline

import (
	"sort"
	"sync"
	"time"

	"github.com/constellation-engine/constellation/internal/dagspec"
)

// DagRegistry maps DAG names to DagSpecs and a derived metadata snapshot.
// Mutations (Register, MarkCompiled) are individually atomic; last-writer
// wins on overwrite, per §5.
type DagRegistry struct {
	mu         sync.RWMutex
	dags       map[string]dagspec.DagSpec
	compiledAt map[string]time.Time
}

// NewDagRegistry constructs an empty DagRegistry.
func NewDagRegistry() *DagRegistry {
	return &DagRegistry{
		dags:       make(map[string]dagspec.DagSpec),
		compiledAt: make(map[string]time.Time),
	}
}

// Register stores dag under name, overwriting any previous entry.
func (r *DagRegistry) Register(name string, dag dagspec.DagSpec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dags[name] = dag
}

// Retrieve returns the DagSpec registered under name. The version argument
// is accepted but ignored for the current contract, per §4.F.
func (r *DagRegistry) Retrieve(name string, version string) (dagspec.DagSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	dag, ok := r.dags[name]
	return dag, ok
}

// Exists is a pure lookup.
func (r *DagRegistry) Exists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.dags[name]
	return ok
}

// MarkCompiled records the compile timestamp most recently observed for
// name's image, surfaced in List's ComponentMetadata.
func (r *DagRegistry) MarkCompiled(name string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.compiledAt[name] = at
}

// List returns every registered DAG's derived metadata snapshot.
func (r *DagRegistry) List() map[string]ComponentMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]ComponentMetadata, len(r.dags))
	for name, dag := range r.dags {
		outputs := append([]string(nil), dag.DeclaredOutputs...)
		sort.Strings(outputs)
		out[name] = ComponentMetadata{
			Name:            name,
			NodeCount:       len(dag.Modules) + len(dag.Data),
			DeclaredOutputs: outputs,
			CompiledAt:      r.compiledAt[name],
		}
	}
	return out
}
