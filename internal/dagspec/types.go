// Package dagspec defines the static description of a dataflow graph: the
// modules and data nodes a DagSpec wires together, independent of any
// particular execution. Everything here is pure data — the only behavior in
// this package is structural validation, name lookups, and topological
// leveling (TopoLevels, GeneratePlan).
package dagspec

import "github.com/constellation-engine/constellation/internal/ctype"

// Metadata describes a named, versioned component: a DagSpec or a
// ModuleNodeSpec.
type Metadata struct {
	Name        string
	Description string
	Tags        []string
	Major       int
	Minor       int
}

// ModuleNodeSpec describes one module vertex: its identity and its typed
// ports. consumes/produces map port name to the CType the port carries.
type ModuleNodeSpec struct {
	Metadata Metadata
	Consumes map[string]ctype.CType
	Produces map[string]ctype.CType
}

// DataNodeSpec describes one data vertex. Bindings maps an owner id (either
// another data node id for external inputs, or a module id for a module
// port) to the port name on that owner.
type DataNodeSpec struct {
	Name     string
	Bindings map[string]string
	Type     ctype.CType
}

// Edge is a (dataId, moduleId) or (moduleId, dataId) pair, depending on
// which edge set it appears in.
type Edge struct {
	From string
	To   string
}

// DagSpec is the complete static description of a dataflow graph.
type DagSpec struct {
	Metadata        Metadata
	Modules         map[string]ModuleNodeSpec
	Data            map[string]DataNodeSpec
	InEdges         []Edge // (dataId -> moduleId)
	OutEdges        []Edge // (moduleId -> dataId)
	DeclaredOutputs []string
	OutputBindings  map[string]string // outputName -> dataId
}

// InputNames returns the names of data nodes that have no producing module
// (i.e. no OutEdge targets them) — the DagSpec's external inputs.
func (d DagSpec) InputNames() []string {
	produced := make(map[string]bool, len(d.OutEdges))
	for _, e := range d.OutEdges {
		produced[e.To] = true
	}

	var names []string
	for id, node := range d.Data {
		if !produced[id] {
			names = append(names, node.Name)
		}
	}
	return names
}

// DataIDByName looks up a data node id by its declared name.
func (d DagSpec) DataIDByName(name string) (string, bool) {
	for id, node := range d.Data {
		if node.Name == name {
			return id, true
		}
	}
	return "", false
}

// InputType returns the declared CType of an input by name.
func (d DagSpec) InputType(name string) (ctype.CType, bool) {
	id, ok := d.DataIDByName(name)
	if !ok {
		return ctype.CType{}, false
	}
	node, ok := d.Data[id]
	if !ok {
		return ctype.CType{}, false
	}
	return node.Type, true
}
