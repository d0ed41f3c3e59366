// Package suspend implements component J: materialising a stuck execution
// as a portable SuspendedExecution, an in-memory SuspensionStore keyed by
// opaque handle, and the validated resume path that re-runs only the
// outstanding work.
package suspend

import (
	"sort"
	"sync"

	"github.com/constellation-engine/constellation/internal/ctype"
	"github.com/constellation-engine/constellation/internal/cvalue"
	"github.com/constellation-engine/constellation/internal/dagspec"
	"github.com/constellation-engine/constellation/internal/runtimestate"
	"github.com/constellation-engine/constellation/internal/signature"
)

// Capture snapshots a stuck Runtime into a SuspendedExecution: every input
// supplied so far, every data node already resolved, and a monotone copy of
// module statuses (§4.J).
func Capture(executionID, structuralHash string, resumptionCount int, dag dagspec.DagSpec, moduleOptions map[string]interface{}, rt *runtimestate.Runtime) signature.SuspendedExecution {
	snap := rt.State.Close(0)

	providedInputs := make(map[string]cvalue.CValue)
	for _, name := range dag.InputNames() {
		dataID, ok := dag.DataIDByName(name)
		if !ok {
			continue
		}
		if v, ok := snap.Data[dataID]; ok {
			providedInputs[name] = v
		}
	}

	computedValues := make(map[string]cvalue.CValue, len(snap.Data))
	for dataID, v := range snap.Data {
		computedValues[dataID] = v
	}

	return signature.SuspendedExecution{
		ExecutionID:     executionID,
		StructuralHash:  structuralHash,
		ResumptionCount: resumptionCount,
		DagSpec:         dag,
		ModuleOptions:   moduleOptions,
		ProvidedInputs:  providedInputs,
		ComputedValues:  computedValues,
		ModuleStatuses:  snap.ModuleStatus,
	}
}

// SuspensionStore is the in-memory, thread-safe keeper of saved suspensions
// component J requires (save/list/load/remove), keyed by opaque
// SuspensionHandle.
type SuspensionStore struct {
	mu      sync.RWMutex
	entries map[signature.SuspensionHandle]signature.SuspendedExecution
}

// NewSuspensionStore constructs an empty store.
func NewSuspensionStore() *SuspensionStore {
	return &SuspensionStore{entries: make(map[signature.SuspensionHandle]signature.SuspendedExecution)}
}

// Save stores suspended under a handle derived from its executionId. Save is
// atomic: a subsequent Load either returns the full snapshot or the handle
// is absent, never a partial write.
func (s *SuspensionStore) Save(suspended signature.SuspendedExecution) signature.SuspensionHandle {
	s.mu.Lock()
	defer s.mu.Unlock()

	handle := signature.SuspensionHandle(suspended.ExecutionID)
	s.entries[handle] = suspended
	return handle
}

// Load retrieves a saved suspension by handle.
func (s *SuspensionStore) Load(handle signature.SuspensionHandle) (signature.SuspendedExecution, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	se, ok := s.entries[handle]
	return se, ok
}

// Remove deletes a saved suspension, reporting whether one was present.
func (s *SuspensionStore) Remove(handle signature.SuspensionHandle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[handle]; !ok {
		return false
	}
	delete(s.entries, handle)
	return true
}

// List returns a SuspensionSummary for every saved suspension, in
// deterministic handle order.
func (s *SuspensionStore) List() []signature.SuspensionSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	handles := make([]string, 0, len(s.entries))
	for h := range s.entries {
		handles = append(handles, string(h))
	}
	sort.Strings(handles)

	summaries := make([]signature.SuspensionSummary, 0, len(handles))
	for _, h := range handles {
		handle := signature.SuspensionHandle(h)
		se := s.entries[handle]
		summaries = append(summaries, signature.SuspensionSummary{
			Handle:         handle,
			StructuralHash: se.StructuralHash,
			MissingInputs:  missingInputTypes(se),
		})
	}
	return summaries
}

func missingInputTypes(se signature.SuspendedExecution) map[string]ctype.CType {
	out := make(map[string]ctype.CType)
	for _, name := range se.DagSpec.InputNames() {
		if _, ok := se.ProvidedInputs[name]; ok {
			continue
		}
		if t, ok := se.DagSpec.InputType(name); ok {
			out[name] = t
		}
	}
	return out
}
