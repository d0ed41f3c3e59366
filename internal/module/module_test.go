package module

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/constellation-engine/constellation/internal/ctype"
	"github.com/constellation-engine/constellation/internal/cvalue"
	"github.com/constellation-engine/constellation/internal/dagspec"
)

func uppercaseDag() dagspec.DagSpec {
	return dagspec.DagSpec{
		Modules: map[string]dagspec.ModuleNodeSpec{
			"mod.upper": {
				Metadata: dagspec.Metadata{Name: "Uppercase"},
				Consumes: map[string]ctype.CType{"text": ctype.String()},
				Produces: map[string]ctype.CType{"result": ctype.String()},
			},
		},
		Data: map[string]dagspec.DataNodeSpec{
			"data.text":   {Name: "text", Type: ctype.String(), Bindings: map[string]string{"mod.upper": "text"}},
			"data.result": {Name: "result", Type: ctype.String(), Bindings: map[string]string{"mod.upper": "result"}},
		},
		InEdges:         []dagspec.Edge{{From: "data.text", To: "mod.upper"}},
		OutEdges:        []dagspec.Edge{{From: "mod.upper", To: "data.result"}},
		DeclaredOutputs: []string{"result"},
		OutputBindings:  map[string]string{"result": "data.result"},
	}
}

func TestFuncModuleInitBindsPorts(t *testing.T) {
	t.Parallel()

	dag := uppercaseDag()
	uninit := NewFuncModule(dagspec.Metadata{Name: "Uppercase"}, func(ctx context.Context, in map[string]cvalue.CValue) (map[string]cvalue.CValue, error) {
		return map[string]cvalue.CValue{"result": cvalue.String("ignored")}, nil
	})

	runnable, err := uninit.Init("mod.upper", dag)
	require.NoError(t, err)
	require.Equal(t, "mod.upper", runnable.ModuleID())
	require.Equal(t, map[string]string{"text": "data.text"}, runnable.InputBindings())
	require.Equal(t, map[string]string{"result": "data.result"}, runnable.OutputBindings())
}

func TestRunnableRejectsUndeclaredOutput(t *testing.T) {
	t.Parallel()

	dag := uppercaseDag()
	uninit := NewFuncModule(dagspec.Metadata{Name: "Uppercase"}, func(ctx context.Context, in map[string]cvalue.CValue) (map[string]cvalue.CValue, error) {
		return map[string]cvalue.CValue{"extra": cvalue.String("x")}, nil
	})
	runnable, err := uninit.Init("mod.upper", dag)
	require.NoError(t, err)

	_, err = runnable.Run(context.Background(), map[string]cvalue.CValue{"text": cvalue.String("hi")})
	require.Error(t, err)
	require.Contains(t, err.Error(), "undeclared port")
}

func TestInitFailsForUnknownModuleID(t *testing.T) {
	t.Parallel()

	dag := uppercaseDag()
	uninit := NewFuncModule(dagspec.Metadata{Name: "Uppercase"}, nil)

	_, err := uninit.Init("mod.missing", dag)
	require.Error(t, err)
}

func TestStatusMonotonicity(t *testing.T) {
	t.Parallel()

	s := NewUnfired()
	require.False(t, s.IsTerminal())

	s = NewFired(0, "FromManualResolution")
	require.True(t, s.IsTerminal())
	require.Equal(t, Fired, s.Kind())
	require.Equal(t, "FromManualResolution", s.Context())
}
