// Package synthetic reconstructs "branch-*" modules (component G) purely
// from a DAG's ModuleNodeSpec signature — no user-supplied implementation
// is registered for them; the engine infers their behavior from their
// declared ports.
package synthetic

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/constellation-engine/constellation/internal/ctype"
	"github.com/constellation-engine/constellation/internal/cvalue"
	"github.com/constellation-engine/constellation/internal/dagspec"
	"github.com/constellation-engine/constellation/internal/module"
)

// IsBranchModule reports whether name should be reconstructed as a
// synthetic branch module: a case-sensitive substring match on "branch".
func IsBranchModule(name string) bool {
	return strings.Contains(name, "branch")
}

// branchModule is the Uninitialized form: it carries only metadata, since
// its behavior is entirely derived from the DagSpec at Init time.
type branchModule struct {
	metadata dagspec.Metadata
}

// NewBranchModule constructs the Uninitialized synthetic module for a
// module node whose name matched IsBranchModule.
func NewBranchModule(metadata dagspec.Metadata) module.Uninitialized {
	return &branchModule{metadata: metadata}
}

func (b *branchModule) Metadata() dagspec.Metadata { return b.metadata }

func (b *branchModule) Init(moduleID string, dag dagspec.DagSpec) (module.Runnable, error) {
	spec, ok := dag.Modules[moduleID]
	if !ok {
		return nil, fmt.Errorf("synthetic: dag has no module node %q", moduleID)
	}

	cases := countCases(spec.Consumes)

	outType, ok := spec.Produces["out"]
	if !ok {
		outType = ctype.String()
	}

	inBindings := make(map[string]string)
	outBindings := make(map[string]string)
	for dataID, node := range dag.Data {
		port, bound := node.Bindings[moduleID]
		if !bound {
			continue
		}
		if _, isConsumed := spec.Consumes[port]; isConsumed {
			inBindings[port] = dataID
		}
		if _, isProduced := spec.Produces[port]; isProduced {
			outBindings[port] = dataID
		}
	}

	return &boundBranch{
		id:       moduleID,
		metadata: b.metadata,
		cases:    cases,
		outType:  outType,
		inBinds:  inBindings,
		outBinds: outBindings,
	}, nil
}

// countCases infers N+1 from the count of condK/exprK pairs present in
// consumes, per §4.G.
func countCases(consumes map[string]ctype.CType) int {
	n := 0
	for {
		_, hasCond := consumes[fmt.Sprintf("cond%d", n)]
		_, hasExpr := consumes[fmt.Sprintf("expr%d", n)]
		if !hasCond || !hasExpr {
			break
		}
		n++
	}
	return n
}

type boundBranch struct {
	id       string
	metadata dagspec.Metadata
	cases    int
	outType  ctype.CType
	inBinds  map[string]string
	outBinds map[string]string
}

func (b *boundBranch) ModuleID() string           { return b.id }
func (b *boundBranch) Metadata() dagspec.Metadata { return b.metadata }

func (b *boundBranch) InputBindings() map[string]string {
	out := make(map[string]string, len(b.inBinds))
	for k, v := range b.inBinds {
		out[k] = v
	}
	return out
}

func (b *boundBranch) OutputBindings() map[string]string {
	out := make(map[string]string, len(b.outBinds))
	for k, v := range b.outBinds {
		out[k] = v
	}
	return out
}

func (b *boundBranch) Run(ctx context.Context, inputs map[string]cvalue.CValue) (map[string]cvalue.CValue, error) {
	var selected cvalue.CValue
	chosen := false

	for k := 0; k < b.cases; k++ {
		cond, ok := inputs[fmt.Sprintf("cond%d", k)]
		if !ok {
			return nil, fmt.Errorf("synthetic: module %q missing input cond%d", b.metadata.Name, k)
		}
		if cond.AsBool() {
			expr, ok := inputs[fmt.Sprintf("expr%d", k)]
			if !ok {
				return nil, fmt.Errorf("synthetic: module %q missing input expr%d", b.metadata.Name, k)
			}
			selected = expr
			chosen = true
			break
		}
	}
	if !chosen {
		otherwise, ok := inputs["otherwise"]
		if !ok {
			return nil, fmt.Errorf("synthetic: module %q missing input otherwise", b.metadata.Name)
		}
		selected = otherwise
	}

	return map[string]cvalue.CValue{"out": coerce(selected, b.outType)}, nil
}

// coerce converts a selected value to the declared output type when the
// kinds differ. Same-kind values pass through unchanged; cross-kind
// coercion covers the common numeric-widening and stringification cases.
func coerce(v cvalue.CValue, target ctype.CType) cvalue.CValue {
	if v.Kind() == target.Kind() {
		return v
	}
	switch target.Kind() {
	case ctype.KString:
		return cvalue.String(renderAsString(v))
	case ctype.KFloat:
		if v.Kind() == ctype.KInt {
			return cvalue.Float(float64(v.AsInt()))
		}
	case ctype.KInt:
		if v.Kind() == ctype.KFloat {
			return cvalue.Int(int64(v.AsFloat()))
		}
	}
	return v
}

func renderAsString(v cvalue.CValue) string {
	switch v.Kind() {
	case ctype.KInt:
		return strconv.FormatInt(v.AsInt(), 10)
	case ctype.KFloat:
		return strconv.FormatFloat(v.AsFloat(), 'g', -1, 64)
	case ctype.KBoolean:
		return strconv.FormatBool(v.AsBool())
	case ctype.KString:
		return v.AsString()
	default:
		return fmt.Sprintf("%v", v)
	}
}
