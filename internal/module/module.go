// Package module defines the engine's view of a computation unit: the
// factory form a caller registers (Uninitialized), and the DAG-bound form
// the scheduler drives to completion (Runnable).
package module

import (
	"context"
	"fmt"

	"github.com/constellation-engine/constellation/internal/cvalue"
	"github.com/constellation-engine/constellation/internal/dagspec"
)

// Uninitialized is a module factory: metadata plus the ability to bind
// itself into a specific DAG position.
type Uninitialized interface {
	Metadata() dagspec.Metadata
	Init(moduleID string, dag dagspec.DagSpec) (Runnable, error)
}

// Runnable is a module bound into one DAG position: it knows its own id,
// its port-to-data-node bindings in that DAG, and how to execute given its
// input values.
type Runnable interface {
	ModuleID() string
	Metadata() dagspec.Metadata

	// InputBindings maps consumed port name to the data node id feeding it
	// in the bound DAG; OutputBindings maps produced port name to the data
	// node id it writes.
	InputBindings() map[string]string
	OutputBindings() map[string]string

	// Run invokes the module body with one CValue per consumed port,
	// keyed by port name, and returns one CValue per produced port.
	Run(ctx context.Context, inputs map[string]cvalue.CValue) (map[string]cvalue.CValue, error)
}

// Body is the shape of a module's computation: a pure function from named
// inputs to named outputs.
type Body func(ctx context.Context, inputs map[string]cvalue.CValue) (map[string]cvalue.CValue, error)

// funcModule is the Uninitialized produced by NewFuncModule.
type funcModule struct {
	metadata dagspec.Metadata
	consumes map[string]string // port -> type tag, informational only
	produces map[string]string
	body     Body
}

// NewFuncModule builds an Uninitialized module from a plain Go function,
// the common case for user-supplied computation units.
func NewFuncModule(metadata dagspec.Metadata, body Body) Uninitialized {
	return &funcModule{metadata: metadata, body: body}
}

func (f *funcModule) Metadata() dagspec.Metadata { return f.metadata }

func (f *funcModule) Init(moduleID string, dag dagspec.DagSpec) (Runnable, error) {
	spec, ok := dag.Modules[moduleID]
	if !ok {
		return nil, fmt.Errorf("module: dag has no module node %q", moduleID)
	}

	inBindings := make(map[string]string, len(spec.Consumes))
	outBindings := make(map[string]string, len(spec.Produces))

	for dataID, node := range dag.Data {
		if port, ok := node.Bindings[moduleID]; ok {
			if _, isConsumed := spec.Consumes[port]; isConsumed {
				inBindings[port] = dataID
			}
			if _, isProduced := spec.Produces[port]; isProduced {
				outBindings[port] = dataID
			}
		}
	}

	return &boundModule{
		id:       moduleID,
		metadata: f.metadata,
		spec:     spec,
		inBinds:  inBindings,
		outBinds: outBindings,
		body:     f.body,
	}, nil
}

type boundModule struct {
	id       string
	metadata dagspec.Metadata
	spec     dagspec.ModuleNodeSpec
	inBinds  map[string]string
	outBinds map[string]string
	body     Body
}

func (b *boundModule) ModuleID() string                  { return b.id }
func (b *boundModule) Metadata() dagspec.Metadata        { return b.metadata }
func (b *boundModule) InputBindings() map[string]string  { return cloneStrMap(b.inBinds) }
func (b *boundModule) OutputBindings() map[string]string { return cloneStrMap(b.outBinds) }

func (b *boundModule) Run(ctx context.Context, inputs map[string]cvalue.CValue) (map[string]cvalue.CValue, error) {
	if b.body == nil {
		return nil, fmt.Errorf("module %q has no body", b.metadata.Name)
	}
	outputs, err := b.body(ctx, inputs)
	if err != nil {
		return nil, err
	}
	for port := range outputs {
		if _, declared := b.spec.Produces[port]; !declared {
			return nil, fmt.Errorf("module %q produced undeclared port %q", b.metadata.Name, port)
		}
	}
	return outputs, nil
}

func cloneStrMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
