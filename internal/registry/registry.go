// Package registry implements the Module Registry (component E): a
// process-wide, name-indexed store of uninitialized modules, with
// prefix-stripping alias lookup and DAG-scoped initialization.
package registry

import (
	"sort"
	"strings"
	"sync"

	"github.com/constellation-engine/constellation/internal/corelog"
	"github.com/constellation-engine/constellation/internal/dagspec"
	"github.com/constellation-engine/constellation/internal/module"
)

// Registry is a mutex-guarded, name-indexed store of Uninitialized modules,
// mirroring the teacher's package-level plugin registry generalized to an
// owned (non-global) handle per §9 ("no module-level globals").
type Registry struct {
	mu      sync.RWMutex
	modules map[string]module.Uninitialized
	log     *corelog.Logger
}

// New constructs an empty Registry. A nil logger is replaced with a no-op.
func New(log *corelog.Logger) *Registry {
	if log == nil {
		log = corelog.Noop()
	}
	return &Registry{modules: make(map[string]module.Uninitialized), log: log}
}

// Register stores u under its metadata name. Last write wins.
func (r *Registry) Register(u module.Uninitialized) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := u.Metadata().Name
	if _, exists := r.modules[name]; exists {
		r.log.Debug("module registry: overwriting existing registration", "name", name)
	}
	r.modules[name] = u
}

// Get resolves name to an Uninitialized module. An exact match always wins;
// otherwise, if name contains a dot, the last segment after the final dot
// is retried as an alias. Exact match always beats prefix-stripped match.
func (r *Registry) Get(name string) (module.Uninitialized, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if u, ok := r.modules[name]; ok {
		return u, true
	}
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		alias := name[idx+1:]
		if u, ok := r.modules[alias]; ok {
			return u, true
		}
	}
	return nil, false
}

// List returns every registered module name in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// InitModules initializes every module in dag whose ModuleNodeSpec.Metadata
// name resolves in the registry (exact or alias). Module ids that do not
// resolve are silently omitted — the scheduler rejects them at run time,
// per §4.E.
func (r *Registry) InitModules(dag dagspec.DagSpec) map[string]module.Runnable {
	out := make(map[string]module.Runnable, len(dag.Modules))

	for id, spec := range dag.Modules {
		uninit, ok := r.Get(spec.Metadata.Name)
		if !ok {
			r.log.Warn("module registry: unresolved module", "moduleId", id, "name", spec.Metadata.Name)
			continue
		}
		runnable, err := uninit.Init(id, dag)
		if err != nil {
			r.log.Warn("module registry: init failed", "moduleId", id, "err", err.Error())
			continue
		}
		out[id] = runnable
	}
	return out
}
