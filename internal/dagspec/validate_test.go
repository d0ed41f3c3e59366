package dagspec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/constellation-engine/constellation/internal/ctype"
)

func simpleValidSpec() DagSpec {
	return DagSpec{
		Metadata: Metadata{Name: "double", Major: 1},
		Modules: map[string]ModuleNodeSpec{
			"mod.double": {
				Metadata: Metadata{Name: "double"},
				Consumes: map[string]ctype.CType{"in": ctype.Int()},
				Produces: map[string]ctype.CType{"out": ctype.Int()},
			},
		},
		Data: map[string]DataNodeSpec{
			"data.x": {Name: "x", Type: ctype.Int(), Bindings: map[string]string{"mod.double": "in"}},
			"data.y": {Name: "y", Type: ctype.Int(), Bindings: map[string]string{"mod.double": "out"}},
		},
		InEdges:         []Edge{{From: "data.x", To: "mod.double"}},
		OutEdges:        []Edge{{From: "mod.double", To: "data.y"}},
		DeclaredOutputs: []string{"y"},
		OutputBindings:  map[string]string{"y": "data.y"},
	}
}

func TestValidateAcceptsWellFormedSpec(t *testing.T) {
	t.Parallel()

	require.NoError(t, Validate(simpleValidSpec()))
}

func TestValidateRejectsTypeMismatch(t *testing.T) {
	t.Parallel()

	spec := simpleValidSpec()
	node := spec.Data["data.x"]
	node.Type = ctype.String()
	spec.Data["data.x"] = node

	err := Validate(spec)
	require.Error(t, err)
	require.Contains(t, err.Error(), "expects")
}

func TestValidateRejectsUnknownOutputBinding(t *testing.T) {
	t.Parallel()

	spec := simpleValidSpec()
	spec.OutputBindings = map[string]string{"y": "data.missing"}

	err := Validate(spec)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown data node")
}

func TestValidateDetectsModuleCycle(t *testing.T) {
	t.Parallel()

	spec := DagSpec{
		Modules: map[string]ModuleNodeSpec{
			"a": {
				Metadata: Metadata{Name: "a"},
				Consumes: map[string]ctype.CType{"in": ctype.Int()},
				Produces: map[string]ctype.CType{"out": ctype.Int()},
			},
			"b": {
				Metadata: Metadata{Name: "b"},
				Consumes: map[string]ctype.CType{"in": ctype.Int()},
				Produces: map[string]ctype.CType{"out": ctype.Int()},
			},
		},
		Data: map[string]DataNodeSpec{
			"data.ab": {Name: "ab", Type: ctype.Int(), Bindings: map[string]string{"a": "out", "b": "in"}},
			"data.ba": {Name: "ba", Type: ctype.Int(), Bindings: map[string]string{"b": "out", "a": "in"}},
		},
		InEdges: []Edge{
			{From: "data.ab", To: "b"},
			{From: "data.ba", To: "a"},
		},
		OutEdges: []Edge{
			{From: "a", To: "data.ab"},
			{From: "b", To: "data.ba"},
		},
	}

	err := Validate(spec)
	require.Error(t, err)
	require.Contains(t, err.Error(), "cycle detected")
}

func TestInputNamesExcludesProducedData(t *testing.T) {
	t.Parallel()

	spec := simpleValidSpec()
	require.Equal(t, []string{"x"}, spec.InputNames())
}

func TestSortedModuleAndDataIDs(t *testing.T) {
	t.Parallel()

	spec := simpleValidSpec()
	require.Equal(t, []string{"mod.double"}, SortedModuleIDs(spec))
	require.Equal(t, []string{"data.x", "data.y"}, SortedDataIDs(spec))
}
