package suspend

import (
	"context"

	"github.com/google/uuid"

	"github.com/constellation-engine/constellation/internal/backends"
	"github.com/constellation-engine/constellation/internal/corelog"
	"github.com/constellation-engine/constellation/internal/ctype"
	"github.com/constellation-engine/constellation/internal/cvalue"
	"github.com/constellation-engine/constellation/internal/dagspec"
	"github.com/constellation-engine/constellation/internal/module"
	"github.com/constellation-engine/constellation/internal/runtimestate"
	"github.com/constellation-engine/constellation/internal/scheduler"
	"github.com/constellation-engine/constellation/internal/signature"
	cerrors "github.com/constellation-engine/constellation/pkg/errors"
)

// Resumer drives the resume path (§4.J): it owns the execution-scoped
// in-flight lock shared across every resume call for a given facade.
type Resumer struct {
	locks *executionLocks
}

// NewResumer constructs a Resumer with an empty lock table.
func NewResumer() *Resumer {
	return &Resumer{locks: newExecutionLocks()}
}

// Resume validates additionalInputs/resolvedNodes against suspended, merges
// them in, and re-runs the scheduler over only the still-outstanding work.
// runnables must contain every module the DAG declares; modules whose
// output is already resolved are skipped by pre-populating their slots.
func (r *Resumer) Resume(
	ctx context.Context,
	suspended signature.SuspendedExecution,
	additionalInputs map[string]cvalue.CValue,
	resolvedNodes map[string]cvalue.CValue,
	runnables map[string]module.Runnable,
	opts scheduler.Options,
	bk backends.Backends,
	log *corelog.Logger,
) (signature.DataSignature, error) {
	if !r.locks.acquire(suspended.ExecutionID) {
		return signature.DataSignature{}, cerrors.NewConfigurationError("resume already in progress for this execution")
	}
	defer r.locks.release(suspended.ExecutionID)

	dag := suspended.DagSpec

	mergedInputs, err := mergeInputs(dag, suspended.ProvidedInputs, additionalInputs)
	if err != nil {
		return signature.DataSignature{}, err
	}

	mergedComputed, err := mergeResolvedNodes(dag, suspended.ComputedValues, resolvedNodes)
	if err != nil {
		return signature.DataSignature{}, err
	}

	rt := runtimestate.New(uuid.NewString(), dag)
	preResolved := make(map[string]signature.ResolutionSource)

	for name, value := range mergedInputs {
		dataID, ok := dag.DataIDByName(name)
		if !ok {
			continue
		}
		if err := rt.SetTableDataCValue(dataID, value); err != nil {
			return signature.DataSignature{}, err
		}
		preResolved[dataID] = signature.FromInput
	}

	for dataID, value := range mergedComputed {
		if err := rt.SetTableDataCValue(dataID, value); err != nil {
			return signature.DataSignature{}, err
		}
		preResolved[dataID] = signature.FromManualResolution
		if producerID, ok := producingModule(dag, dataID); ok {
			rt.State.SetModuleStatus(producerID, module.NewFired(0, "FromManualResolution"))
		}
	}

	resumptionCount := suspended.ResumptionCount + 1
	sig := scheduler.Run(ctx, dag, runnables, rt, preResolved, suspended.StructuralHash, resumptionCount, opts, bk, log)

	if sig.Status.Kind() == signature.Suspended {
		se := Capture(sig.ExecutionID, suspended.StructuralHash, resumptionCount, dag, suspended.ModuleOptions, rt)
		sig.SuspendedState = &se
	}

	return sig, nil
}

// mergeInputs validates additional against dag's declared inputs, rejecting
// unknown names, type mismatches, and conflicting re-provision; identical
// re-provision of an already-supplied input is accepted.
func mergeInputs(dag dagspec.DagSpec, existing, additional map[string]cvalue.CValue) (map[string]cvalue.CValue, error) {
	declared := make(map[string]bool)
	for _, name := range dag.InputNames() {
		declared[name] = true
	}

	merged := make(map[string]cvalue.CValue, len(existing)+len(additional))
	for name, v := range existing {
		merged[name] = v
	}

	for name, value := range additional {
		if !declared[name] {
			return nil, cerrors.NewUnknownNodeError(name)
		}
		expected, _ := dag.InputType(name)
		if !ctype.Equal(expected, value.Type()) {
			return nil, cerrors.NewInputTypeMismatchError(name, expected.String(), value.Type().String())
		}
		if existingValue, ok := existing[name]; ok {
			if !cvalue.Equal(existingValue, value) {
				return nil, cerrors.NewInputAlreadyProvidedError(name)
			}
			continue
		}
		merged[name] = value
	}

	return merged, nil
}

// mergeResolvedNodes validates resolved against dag's full set of data node
// names, returning the unioned computedValues map (keyed by data id).
func mergeResolvedNodes(dag dagspec.DagSpec, existing, resolved map[string]cvalue.CValue) (map[string]cvalue.CValue, error) {
	merged := make(map[string]cvalue.CValue, len(existing)+len(resolved))
	for id, v := range existing {
		merged[id] = v
	}

	for name, value := range resolved {
		dataID, ok := dag.DataIDByName(name)
		if !ok {
			return nil, cerrors.NewUnknownNodeError(name)
		}
		if _, already := existing[dataID]; already {
			return nil, cerrors.NewNodeAlreadyResolvedError(name)
		}
		declaredType := dag.Data[dataID].Type
		if !ctype.Equal(declaredType, value.Type()) {
			return nil, cerrors.NewNodeTypeMismatchError(name, declaredType.String(), value.Type().String())
		}
		merged[dataID] = value
	}

	return merged, nil
}

// producingModule finds the module id whose OutEdge targets dataID, if any
// (data nodes that are DAG inputs have no producer).
func producingModule(dag dagspec.DagSpec, dataID string) (string, bool) {
	for _, e := range dag.OutEdges {
		if e.To == dataID {
			return e.From, true
		}
	}
	return "", false
}
