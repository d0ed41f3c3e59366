package dagspec

import (
	"fmt"
	"sort"
	"strings"

	"github.com/constellation-engine/constellation/internal/ctype"
	cerrors "github.com/constellation-engine/constellation/pkg/errors"
)

// Validate checks every structural invariant a DagSpec must satisfy before
// it can be compiled: edge endpoints exist, port/edge types line up,
// declared outputs resolve, and the module dependency graph is acyclic. It
// returns the first violation found, wrapped as a *cerrors.ConfigurationError.
func Validate(spec DagSpec) error {
	for _, e := range spec.InEdges {
		dataNode, ok := spec.Data[e.From]
		if !ok {
			return cerrors.NewConfigurationError(fmt.Sprintf("inEdge references unknown data node %q", e.From))
		}
		module, ok := spec.Modules[e.To]
		if !ok {
			return cerrors.NewConfigurationError(fmt.Sprintf("inEdge references unknown module %q", e.To))
		}
		portName, ok := dataNode.Bindings[e.To]
		if !ok {
			return cerrors.NewConfigurationError(
				fmt.Sprintf("data node %q has no binding for module %q", e.From, e.To))
		}
		portType, ok := module.Consumes[portName]
		if !ok {
			return cerrors.NewConfigurationError(
				fmt.Sprintf("module %q has no consumed port %q", e.To, portName))
		}
		if !ctype.Equal(portType, dataNode.Type) {
			return cerrors.NewConfigurationError(
				fmt.Sprintf("module %q port %q expects %s but data node %q has type %s",
					e.To, portName, portType, e.From, dataNode.Type))
		}
	}

	for _, e := range spec.OutEdges {
		module, ok := spec.Modules[e.From]
		if !ok {
			return cerrors.NewConfigurationError(fmt.Sprintf("outEdge references unknown module %q", e.From))
		}
		dataNode, ok := spec.Data[e.To]
		if !ok {
			return cerrors.NewConfigurationError(fmt.Sprintf("outEdge references unknown data node %q", e.To))
		}
		portName, ok := dataNode.Bindings[e.From]
		if !ok {
			return cerrors.NewConfigurationError(
				fmt.Sprintf("data node %q has no binding for module %q", e.To, e.From))
		}
		portType, ok := module.Produces[portName]
		if !ok {
			return cerrors.NewConfigurationError(
				fmt.Sprintf("module %q has no produced port %q", e.From, portName))
		}
		if !ctype.Equal(portType, dataNode.Type) {
			return cerrors.NewConfigurationError(
				fmt.Sprintf("module %q port %q produces %s but data node %q has type %s",
					e.From, portName, portType, e.To, dataNode.Type))
		}
	}

	produced := make(map[string]bool, len(spec.OutEdges))
	for _, e := range spec.OutEdges {
		if produced[e.To] {
			return cerrors.NewConfigurationError(fmt.Sprintf("data node %q has more than one producer", e.To))
		}
		produced[e.To] = true
	}

	for _, name := range spec.DeclaredOutputs {
		dataID, ok := spec.OutputBindings[name]
		if !ok {
			return cerrors.NewConfigurationError(fmt.Sprintf("declared output %q has no binding", name))
		}
		if _, ok := spec.Data[dataID]; !ok {
			return cerrors.NewConfigurationError(
				fmt.Sprintf("declared output %q binds to unknown data node %q", name, dataID))
		}
	}

	if cycle := newModuleGraph(spec).findCycle(); cycle != nil {
		names := make([]string, len(cycle))
		for i, id := range cycle {
			if m, ok := spec.Modules[id]; ok {
				names[i] = m.Metadata.Name
			} else {
				names[i] = id
			}
		}
		return cerrors.NewConfigurationError(fmt.Sprintf("cycle detected among modules: %s", strings.Join(names, " -> ")))
	}

	return nil
}

// SortedModuleIDs returns a DagSpec's module ids in deterministic order.
func SortedModuleIDs(spec DagSpec) []string {
	ids := make([]string, 0, len(spec.Modules))
	for id := range spec.Modules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SortedDataIDs returns a DagSpec's data node ids in deterministic order.
func SortedDataIDs(spec DagSpec) []string {
	ids := make([]string, 0, len(spec.Data))
	for id := range spec.Data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
