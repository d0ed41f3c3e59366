package constellation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/constellation-engine/constellation/internal/ctype"
	"github.com/constellation-engine/constellation/internal/cvalue"
	"github.com/constellation-engine/constellation/internal/dagspec"
	"github.com/constellation-engine/constellation/internal/module"
	"github.com/constellation-engine/constellation/internal/signature"
	"github.com/constellation-engine/constellation/internal/suspend"
)

func uppercaseDag() dagspec.DagSpec {
	return dagspec.DagSpec{
		Metadata: dagspec.Metadata{Name: "uppercase-pipeline"},
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

func upperBody(ctx context.Context, in map[string]cvalue.CValue) (map[string]cvalue.CValue, error) {
	s := []rune(in["text"].AsString())
	for i, r := range s {
		if r >= 'a' && r <= 'z' {
			s[i] = r - 32
		}
	}
	return map[string]cvalue.CValue{"result": cvalue.String(string(s))}, nil
}

func TestCompileLoadRunCompletesPipeline(t *testing.T) {
	t.Parallel()

	c := New()
	c.SetModule(module.NewFuncModule(dagspec.Metadata{Name: "Uppercase"}, upperBody))
	require.NoError(t, c.SetDag("uppercase", uppercaseDag()))

	img, err := c.Compile("uppercase")
	require.NoError(t, err)
	require.NotEmpty(t, img.StructuralHash)

	loaded := c.Load(img)
	sig, err := c.Run(context.Background(), loaded, map[string]cvalue.CValue{"text": cvalue.String("hi")}, ExecutionOptions{})
	require.NoError(t, err)
	require.True(t, sig.IsComplete())
	out, ok := sig.Output("result")
	require.True(t, ok)
	require.Equal(t, "HI", out.AsString())
}

func TestCompileIsDeduplicatedByStructuralHash(t *testing.T) {
	t.Parallel()

	c := New()
	require.NoError(t, c.SetDag("a", uppercaseDag()))
	require.NoError(t, c.SetDag("b", uppercaseDag()))

	imgA, err := c.Compile("a")
	require.NoError(t, err)
	imgB, err := c.Compile("b")
	require.NoError(t, err)

	require.Equal(t, imgA.StructuralHash, imgB.StructuralHash)
}

func TestRunRejectsUnknownInput(t *testing.T) {
	t.Parallel()

	c := New()
	c.SetModule(module.NewFuncModule(dagspec.Metadata{Name: "Uppercase"}, upperBody))
	require.NoError(t, c.SetDag("uppercase", uppercaseDag()))
	img, err := c.Compile("uppercase")
	require.NoError(t, err)

	_, err = c.Run(context.Background(), c.Load(img), map[string]cvalue.CValue{"nope": cvalue.Int(1)}, ExecutionOptions{})
	require.Error(t, err)
}

func branchDag() dagspec.DagSpec {
	return dagspec.DagSpec{
		Metadata: dagspec.Metadata{Name: "branch-pipeline"},
		Modules: map[string]dagspec.ModuleNodeSpec{
			"mod.branch": {
				Metadata: dagspec.Metadata{Name: "branch.select"},
				Consumes: map[string]ctype.CType{"cond0": ctype.Boolean(), "expr0": ctype.String(), "otherwise": ctype.String()},
				Produces: map[string]ctype.CType{"out": ctype.String()},
			},
		},
		Data: map[string]dagspec.DataNodeSpec{
			"data.cond":      {Name: "cond", Type: ctype.Boolean(), Bindings: map[string]string{"mod.branch": "cond0"}},
			"data.expr":      {Name: "expr", Type: ctype.String(), Bindings: map[string]string{"mod.branch": "expr0"}},
			"data.otherwise": {Name: "otherwise", Type: ctype.String(), Bindings: map[string]string{"mod.branch": "otherwise"}},
			"data.out":       {Name: "out", Type: ctype.String(), Bindings: map[string]string{"mod.branch": "out"}},
		},
		InEdges: []dagspec.Edge{
			{From: "data.cond", To: "mod.branch"},
			{From: "data.expr", To: "mod.branch"},
			{From: "data.otherwise", To: "mod.branch"},
		},
		OutEdges:        []dagspec.Edge{{From: "mod.branch", To: "data.out"}},
		DeclaredOutputs: []string{"out"},
		OutputBindings:  map[string]string{"out": "data.out"},
	}
}

func TestRunResolvesSyntheticBranchModuleWithoutRegistration(t *testing.T) {
	t.Parallel()

	c := New() // no modules registered at all
	require.NoError(t, c.SetDag("branch", branchDag()))
	img, err := c.Compile("branch")
	require.NoError(t, err)

	sig, err := c.Run(context.Background(), c.Load(img), map[string]cvalue.CValue{
		"cond":      cvalue.Boolean(true),
		"expr":      cvalue.String("taken"),
		"otherwise": cvalue.String("fallback"),
	}, ExecutionOptions{})
	require.NoError(t, err)
	require.True(t, sig.IsComplete())
	out, ok := sig.Output("out")
	require.True(t, ok)
	require.Equal(t, "taken", out.AsString())
}

func TestRunSuspendsAndSavesToStoreThenResumeCompletes(t *testing.T) {
	t.Parallel()

	store := suspend.NewSuspensionStore()
	c := NewBuilder().WithSuspensionStore(store).Build()
	c.SetModule(module.NewFuncModule(dagspec.Metadata{Name: "Uppercase"}, upperBody))
	require.NoError(t, c.SetDag("uppercase", uppercaseDag()))
	img, err := c.Compile("uppercase")
	require.NoError(t, err)

	sig, err := c.Run(context.Background(), c.Load(img), nil, ExecutionOptions{})
	require.NoError(t, err)
	require.Equal(t, signature.Suspended, sig.Status.Kind())
	require.NotNil(t, sig.SuspendedState)

	handle := signature.SuspensionHandle(sig.SuspendedState.ExecutionID)
	summaries := store.List()
	require.Len(t, summaries, 1)
	require.Equal(t, handle, summaries[0].Handle)

	resumed, err := c.Resume(context.Background(), handle, map[string]cvalue.CValue{"text": cvalue.String("go")}, nil, ExecutionOptions{})
	require.NoError(t, err)
	require.True(t, resumed.IsComplete())
	out, ok := resumed.Output("result")
	require.True(t, ok)
	require.Equal(t, "GO", out.AsString())

	_, stillThere := store.Load(handle)
	require.False(t, stillThere)
}

func TestResumeWithoutSuspensionStoreFails(t *testing.T) {
	t.Parallel()

	c := New()
	_, err := c.Resume(context.Background(), signature.SuspensionHandle("nope"), nil, nil, ExecutionOptions{})
	require.Error(t, err)
}

func TestResumeUnknownHandleFails(t *testing.T) {
	t.Parallel()

	c := NewBuilder().WithSuspensionStore(suspend.NewSuspensionStore()).Build()
	_, err := c.Resume(context.Background(), signature.SuspensionHandle("nope"), nil, nil, ExecutionOptions{})
	require.Error(t, err)
}

func TestSetDagFromYAMLRegistersDag(t *testing.T) {
	t.Parallel()

	c := New()
	c.SetModule(module.NewFuncModule(dagspec.Metadata{Name: "Uppercase"}, upperBody))

	yamlDoc := []byte(`
metadata:
  name: from-yaml
data:
  d1:
    name: text
    type: string
    bindings:
      mod1: text
  d2:
    name: result
    type: string
    bindings:
      mod1: result
modules:
  mod1:
    metadata:
      name: Uppercase
    consumes:
      text: string
    produces:
      result: string
inEdges:
  - from: d1
    to: mod1
outEdges:
  - from: mod1
    to: d2
declaredOutputs:
  - result
outputBindings:
  result: d2
`)

	require.NoError(t, c.SetDagFromYAML("from-yaml", yamlDoc))
	img, err := c.Compile("from-yaml")
	require.NoError(t, err)

	sig, err := c.Run(context.Background(), c.Load(img), map[string]cvalue.CValue{"text": cvalue.String("ok")}, ExecutionOptions{})
	require.NoError(t, err)
	require.True(t, sig.IsComplete())
	out, ok := sig.Output("result")
	require.True(t, ok)
	require.Equal(t, "OK", out.AsString())
}
