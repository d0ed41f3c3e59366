package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/constellation-engine/constellation/internal/ctype"
	"github.com/constellation-engine/constellation/internal/cvalue"
	"github.com/constellation-engine/constellation/internal/dagspec"
	"github.com/constellation-engine/constellation/internal/module"
)

func noopBody(ctx context.Context, in map[string]cvalue.CValue) (map[string]cvalue.CValue, error) {
	return map[string]cvalue.CValue{}, nil
}

func TestGetExactMatchWins(t *testing.T) {
	t.Parallel()

	reg := New(nil)
	reg.Register(module.NewFuncModule(dagspec.Metadata{Name: "pipeline.Uppercase"}, noopBody))
	reg.Register(module.NewFuncModule(dagspec.Metadata{Name: "Uppercase"}, noopBody))

	u, ok := reg.Get("pipeline.Uppercase")
	require.True(t, ok)
	require.Equal(t, "pipeline.Uppercase", u.Metadata().Name)
}

func TestGetFallsBackToLastDotSegment(t *testing.T) {
	t.Parallel()

	reg := New(nil)
	reg.Register(module.NewFuncModule(dagspec.Metadata{Name: "Uppercase"}, noopBody))

	u, ok := reg.Get("pipeline.v2.Uppercase")
	require.True(t, ok)
	require.Equal(t, "Uppercase", u.Metadata().Name)
}

func TestGetMissingReturnsFalse(t *testing.T) {
	t.Parallel()

	reg := New(nil)
	_, ok := reg.Get("does.not.exist")
	require.False(t, ok)
}

func TestRegisterLastWriteWins(t *testing.T) {
	t.Parallel()

	reg := New(nil)
	first := module.NewFuncModule(dagspec.Metadata{Name: "X", Major: 1}, noopBody)
	second := module.NewFuncModule(dagspec.Metadata{Name: "X", Major: 2}, noopBody)

	reg.Register(first)
	reg.Register(second)

	u, ok := reg.Get("X")
	require.True(t, ok)
	require.Equal(t, 2, u.Metadata().Major)
}

func TestInitModulesOmitsUnresolved(t *testing.T) {
	t.Parallel()

	reg := New(nil)
	reg.Register(module.NewFuncModule(dagspec.Metadata{Name: "Uppercase"}, noopBody))

	dag := dagspec.DagSpec{
		Modules: map[string]dagspec.ModuleNodeSpec{
			"mod.known":   {Metadata: dagspec.Metadata{Name: "Uppercase"}, Consumes: map[string]ctype.CType{}, Produces: map[string]ctype.CType{}},
			"mod.unknown": {Metadata: dagspec.Metadata{Name: "NoSuchModule"}, Consumes: map[string]ctype.CType{}, Produces: map[string]ctype.CType{}},
		},
		Data: map[string]dagspec.DataNodeSpec{},
	}

	runnables := reg.InitModules(dag)
	require.Len(t, runnables, 1)
	_, ok := runnables["mod.known"]
	require.True(t, ok)
}

func TestListIsSorted(t *testing.T) {
	t.Parallel()

	reg := New(nil)
	reg.Register(module.NewFuncModule(dagspec.Metadata{Name: "Zeta"}, noopBody))
	reg.Register(module.NewFuncModule(dagspec.Metadata{Name: "Alpha"}, noopBody))

	require.Equal(t, []string{"Alpha", "Zeta"}, reg.List())
}
