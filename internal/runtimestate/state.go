// Package runtimestate implements component H: a per-execution pair of
// stores — a lazy, diagnostics-facing State and an eager, single-assignment
// Table — plus the Runtime handle the scheduler drives.
package runtimestate

import (
	"sync"
	"time"

	"github.com/constellation-engine/constellation/internal/cvalue"
	"github.com/constellation-engine/constellation/internal/dagspec"
	"github.com/constellation-engine/constellation/internal/module"
)

// State is Runtime.State: the logical, lazily-observed record of one
// execution. Unlike Table, State never blocks a reader — callers read
// whatever has been recorded so far, which is what makes it suitable for
// diagnostics and for mid-execution suspension snapshots.
type State struct {
	mu           sync.RWMutex
	processUUID  string
	dag          dagspec.DagSpec
	moduleStatus map[string]module.Status
	data         map[string]cvalue.CValue
	latency      *time.Duration
}

// NewState constructs a State with every module in Unfired status and an
// empty data map.
func NewState(processUUID string, dag dagspec.DagSpec) *State {
	statuses := make(map[string]module.Status, len(dag.Modules))
	for id := range dag.Modules {
		statuses[id] = module.NewUnfired()
	}
	return &State{
		processUUID:  processUUID,
		dag:          dag,
		moduleStatus: statuses,
		data:         make(map[string]cvalue.CValue),
	}
}

// ProcessUUID returns the execution's identity.
func (s *State) ProcessUUID() string { return s.processUUID }

// Dag returns the bound DagSpec.
func (s *State) Dag() dagspec.DagSpec { return s.dag }

// SetModuleStatus records a module's status. Per §3's monotonicity
// invariant, callers must not call this again once the existing status is
// terminal; State does not re-check this itself (the scheduler is the sole
// writer and already enforces it).
func (s *State) SetModuleStatus(moduleID string, status module.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moduleStatus[moduleID] = status
}

// ModuleStatus reads a module's current status.
func (s *State) ModuleStatus(moduleID string) (module.Status, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.moduleStatus[moduleID]
	return st, ok
}

// SetStateData always records a value in the lazy data map, independent of
// the eager Table.
func (s *State) SetStateData(dataID string, value cvalue.CValue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[dataID] = value
}

// StateData reads a value from the lazy data map.
func (s *State) StateData(dataID string) (cvalue.CValue, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[dataID]
	return v, ok
}

// Snapshot is the immutable result of Close: a point-in-time copy of a
// State, safe to read without further locking.
type Snapshot struct {
	ProcessUUID  string
	Dag          dagspec.DagSpec
	ModuleStatus map[string]module.Status
	Data         map[string]cvalue.CValue
	Latency      time.Duration
}

// Close records the final latency and returns an immutable snapshot of the
// accumulated state.
func (s *State) Close(latency time.Duration) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.latency = &latency

	statuses := make(map[string]module.Status, len(s.moduleStatus))
	for k, v := range s.moduleStatus {
		statuses[k] = v
	}
	data := make(map[string]cvalue.CValue, len(s.data))
	for k, v := range s.data {
		data[k] = v
	}

	return Snapshot{
		ProcessUUID:  s.processUUID,
		Dag:          s.dag,
		ModuleStatus: statuses,
		Data:         data,
		Latency:      latency,
	}
}
