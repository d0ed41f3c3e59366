package suspend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/constellation-engine/constellation/internal/backends"
	"github.com/constellation-engine/constellation/internal/ctype"
	"github.com/constellation-engine/constellation/internal/cvalue"
	"github.com/constellation-engine/constellation/internal/dagspec"
	"github.com/constellation-engine/constellation/internal/module"
	"github.com/constellation-engine/constellation/internal/runtimestate"
	"github.com/constellation-engine/constellation/internal/scheduler"
	"github.com/constellation-engine/constellation/internal/signature"
	cerrors "github.com/constellation-engine/constellation/pkg/errors"
)

// concatDag has two declared inputs (text, suffix) feeding one module that
// concatenates them into result, matching §8 concrete scenario 5.
func concatDag() dagspec.DagSpec {
	return dagspec.DagSpec{
		Metadata: dagspec.Metadata{Name: "concat-pipeline"},
		Modules: map[string]dagspec.ModuleNodeSpec{
			"mod.concat": {
				Metadata: dagspec.Metadata{Name: "Concat"},
				Consumes: map[string]ctype.CType{"text": ctype.String(), "suffix": ctype.String()},
				Produces: map[string]ctype.CType{"result": ctype.String()},
			},
		},
		Data: map[string]dagspec.DataNodeSpec{
			"data.text":   {Name: "text", Type: ctype.String(), Bindings: map[string]string{"mod.concat": "text"}},
			"data.suffix": {Name: "suffix", Type: ctype.String(), Bindings: map[string]string{"mod.concat": "suffix"}},
			"data.result": {Name: "result", Type: ctype.String(), Bindings: map[string]string{"mod.concat": "result"}},
		},
		InEdges: []dagspec.Edge{
			{From: "data.text", To: "mod.concat"},
			{From: "data.suffix", To: "mod.concat"},
		},
		OutEdges:        []dagspec.Edge{{From: "mod.concat", To: "data.result"}},
		DeclaredOutputs: []string{"result"},
		OutputBindings:  map[string]string{"result": "data.result"},
	}
}

func concatBody(ctx context.Context, in map[string]cvalue.CValue) (map[string]cvalue.CValue, error) {
	return map[string]cvalue.CValue{"result": cvalue.String(in["text"].AsString() + in["suffix"].AsString())}, nil
}

func concatRunnables(t *testing.T, dag dagspec.DagSpec) map[string]module.Runnable {
	t.Helper()
	uninit := module.NewFuncModule(dag.Modules["mod.concat"].Metadata, concatBody)
	runnable, err := uninit.Init("mod.concat", dag)
	require.NoError(t, err)
	return map[string]module.Runnable{"mod.concat": runnable}
}

func TestResumeSuppliesMissingInputAndCompletes(t *testing.T) {
	t.Parallel()

	dag := concatDag()
	suspended := signature.SuspendedExecution{
		ExecutionID:    "exec-1",
		StructuralHash: "hash1",
		DagSpec:        dag,
		ProvidedInputs: map[string]cvalue.CValue{"text": cvalue.String("hello")},
		ComputedValues: map[string]cvalue.CValue{},
		ModuleStatuses: map[string]module.Status{"mod.concat": module.NewUnfired()},
	}

	r := NewResumer()
	sig, err := r.Resume(context.Background(), suspended,
		map[string]cvalue.CValue{"suffix": cvalue.String("_world")}, nil,
		concatRunnables(t, dag), scheduler.Options{}, backends.Default(), nil)

	require.NoError(t, err)
	require.True(t, sig.IsComplete())
	require.Equal(t, 1, sig.ResumptionCount)
	out, ok := sig.Output("result")
	require.True(t, ok)
	require.Equal(t, "hello_world", out.AsString())
}

func TestResumeRejectsUnknownInputName(t *testing.T) {
	t.Parallel()

	dag := concatDag()
	suspended := signature.SuspendedExecution{DagSpec: dag, ProvidedInputs: map[string]cvalue.CValue{}}

	r := NewResumer()
	_, err := r.Resume(context.Background(), suspended,
		map[string]cvalue.CValue{"nonexistent": cvalue.String("x")}, nil,
		concatRunnables(t, dag), scheduler.Options{}, backends.Default(), nil)

	var unknown *cerrors.UnknownNodeError
	require.ErrorAs(t, err, &unknown)
}

func TestResumeRejectsInputTypeMismatch(t *testing.T) {
	t.Parallel()

	dag := concatDag()
	suspended := signature.SuspendedExecution{DagSpec: dag, ProvidedInputs: map[string]cvalue.CValue{}}

	r := NewResumer()
	_, err := r.Resume(context.Background(), suspended,
		map[string]cvalue.CValue{"suffix": cvalue.Int(5)}, nil,
		concatRunnables(t, dag), scheduler.Options{}, backends.Default(), nil)

	var mismatch *cerrors.InputTypeMismatchError
	require.ErrorAs(t, err, &mismatch)
}

func TestResumeRejectsConflictingReprovision(t *testing.T) {
	t.Parallel()

	dag := concatDag()
	suspended := signature.SuspendedExecution{
		DagSpec:        dag,
		ProvidedInputs: map[string]cvalue.CValue{"text": cvalue.String("hello")},
	}

	r := NewResumer()
	_, err := r.Resume(context.Background(), suspended,
		map[string]cvalue.CValue{"text": cvalue.String("different")}, nil,
		concatRunnables(t, dag), scheduler.Options{}, backends.Default(), nil)

	var already *cerrors.InputAlreadyProvidedError
	require.ErrorAs(t, err, &already)
}

func TestResumeAcceptsIdenticalReprovision(t *testing.T) {
	t.Parallel()

	dag := concatDag()
	suspended := signature.SuspendedExecution{
		DagSpec:        dag,
		ProvidedInputs: map[string]cvalue.CValue{"text": cvalue.String("hello")},
	}

	r := NewResumer()
	_, err := r.Resume(context.Background(), suspended,
		map[string]cvalue.CValue{"text": cvalue.String("hello"), "suffix": cvalue.String("!")}, nil,
		concatRunnables(t, dag), scheduler.Options{}, backends.Default(), nil)

	require.NoError(t, err)
}

func TestResumeRejectsAlreadyResolvedNode(t *testing.T) {
	t.Parallel()

	dag := concatDag()
	suspended := signature.SuspendedExecution{
		DagSpec:        dag,
		ProvidedInputs: map[string]cvalue.CValue{"text": cvalue.String("hello")},
		ComputedValues: map[string]cvalue.CValue{"data.result": cvalue.String("already")},
	}

	r := NewResumer()
	_, err := r.Resume(context.Background(), suspended, nil,
		map[string]cvalue.CValue{"result": cvalue.String("again")},
		concatRunnables(t, dag), scheduler.Options{}, backends.Default(), nil)

	var alreadyResolved *cerrors.NodeAlreadyResolvedError
	require.ErrorAs(t, err, &alreadyResolved)
}

func TestResumeStillSuspendsWhenInputStillMissing(t *testing.T) {
	t.Parallel()

	dag := concatDag()
	suspended := signature.SuspendedExecution{
		DagSpec:        dag,
		ProvidedInputs: map[string]cvalue.CValue{"text": cvalue.String("hello")},
	}

	r := NewResumer()
	sig, err := r.Resume(context.Background(), suspended, nil, nil,
		concatRunnables(t, dag), scheduler.Options{}, backends.Default(), nil)

	require.NoError(t, err)
	require.Equal(t, signature.Suspended, sig.Status.Kind())
	require.NotNil(t, sig.SuspendedState)
}

func TestResumeDoesNotReRunModuleWhoseOutputWasManuallyResolved(t *testing.T) {
	t.Parallel()

	dag := concatDag()
	ranAt := 0
	countingBody := func(ctx context.Context, in map[string]cvalue.CValue) (map[string]cvalue.CValue, error) {
		ranAt++
		return map[string]cvalue.CValue{"result": cvalue.String("SHOULD-NOT-RUN")}, nil
	}
	uninit := module.NewFuncModule(dag.Modules["mod.concat"].Metadata, countingBody)
	runnable, err := uninit.Init("mod.concat", dag)
	require.NoError(t, err)
	runnables := map[string]module.Runnable{"mod.concat": runnable}

	// Both of the module's consumed inputs are already present, which would
	// make it ready to run on readiness alone — but its sole output was
	// manually resolved, so it must not execute.
	suspended := signature.SuspendedExecution{
		ExecutionID:    "exec-manual",
		StructuralHash: "hash1",
		DagSpec:        dag,
		ProvidedInputs: map[string]cvalue.CValue{"text": cvalue.String("hello"), "suffix": cvalue.String("_world")},
		ComputedValues: map[string]cvalue.CValue{"data.result": cvalue.String("manually-resolved")},
		ModuleStatuses: map[string]module.Status{"mod.concat": module.NewFired(0, "FromManualResolution")},
	}

	r := NewResumer()
	sig, err := r.Resume(context.Background(), suspended, nil, nil, runnables, scheduler.Options{}, backends.Default(), nil)

	require.NoError(t, err)
	require.Equal(t, 0, ranAt)
	require.True(t, sig.IsComplete())
	out, ok := sig.Output("result")
	require.True(t, ok)
	require.Equal(t, "manually-resolved", out.AsString())
}

func TestResumeRejectsConcurrentResumeOfSameExecution(t *testing.T) {
	t.Parallel()

	dag := concatDag()
	suspended := signature.SuspendedExecution{
		ExecutionID:    "exec-concurrent",
		DagSpec:        dag,
		ProvidedInputs: map[string]cvalue.CValue{"text": cvalue.String("hello")},
	}

	r := NewResumer()
	require.True(t, r.locks.acquire(suspended.ExecutionID))
	defer r.locks.release(suspended.ExecutionID)

	_, err := r.Resume(context.Background(), suspended,
		map[string]cvalue.CValue{"suffix": cvalue.String("_world")}, nil,
		concatRunnables(t, dag), scheduler.Options{}, backends.Default(), nil)
	require.Error(t, err)
}

func TestCaptureSnapshotsProvidedAndComputed(t *testing.T) {
	t.Parallel()

	dag := concatDag()
	rt := runtimestate.New("proc-capture", dag)
	require.NoError(t, rt.SetTableDataCValue("data.text", cvalue.String("hello")))

	se := Capture("proc-capture", "hash1", 0, dag, nil, rt)

	require.Equal(t, "hello", se.ProvidedInputs["text"].AsString())
	require.Equal(t, "hello", se.ComputedValues["data.text"].AsString())
}

func TestSuspensionStoreSaveLoadRemove(t *testing.T) {
	t.Parallel()

	store := NewSuspensionStore()
	se := signature.SuspendedExecution{ExecutionID: "exec-store", DagSpec: concatDag()}

	handle := store.Save(se)
	loaded, ok := store.Load(handle)
	require.True(t, ok)
	require.Equal(t, "exec-store", loaded.ExecutionID)

	require.True(t, store.Remove(handle))
	_, ok = store.Load(handle)
	require.False(t, ok)
}

func TestSuspensionSummaryListsMissingInputs(t *testing.T) {
	t.Parallel()

	dag := concatDag()
	store := NewSuspensionStore()
	se := signature.SuspendedExecution{
		ExecutionID:    "exec-summary",
		StructuralHash: "hash1",
		DagSpec:        dag,
		ProvidedInputs: map[string]cvalue.CValue{"text": cvalue.String("hello")},
	}
	store.Save(se)

	summaries := store.List()
	require.Len(t, summaries, 1)
	_, missing := summaries[0].MissingInputs["suffix"]
	require.True(t, missing)
	_, present := summaries[0].MissingInputs["text"]
	require.False(t, present)
}
