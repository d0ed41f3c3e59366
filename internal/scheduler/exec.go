package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/constellation-engine/constellation/internal/backends"
	"github.com/constellation-engine/constellation/internal/cvalue"
	"github.com/constellation-engine/constellation/internal/dagspec"
	"github.com/constellation-engine/constellation/internal/module"
	"github.com/constellation-engine/constellation/internal/runtimestate"
	"github.com/constellation-engine/constellation/internal/signature"
	cerrors "github.com/constellation-engine/constellation/pkg/errors"
)

// runModule executes one ready module: it reads its bound inputs (already
// known to be filled), invokes the body inside a tracer span, and writes
// outputs back to both the table and the lazy state, per §4.I step 2.
func runModule(
	ctx context.Context,
	id string,
	runnable module.Runnable,
	dag dagspec.DagSpec,
	rt *runtimestate.Runtime,
	bk backends.Backends,
	mu *sync.Mutex,
	timings map[string]time.Duration,
	provenance map[string]string,
	resolutionSources map[string]signature.ResolutionSource,
	failures *[]*cerrors.ModuleExecutionError,
) {
	name := runnable.Metadata().Name
	bk.Listener.OnModuleStart(name)

	inputs := make(map[string]cvalue.CValue, len(runnable.InputBindings()))
	for port, dataID := range runnable.InputBindings() {
		v, err := rt.Table.GetTableData(ctx, dataID)
		if err != nil {
			recordFailure(name, id, err, rt, mu, failures, bk)
			return
		}
		inputs[port] = v
	}

	moduleStart := time.Now()
	var outputs map[string]cvalue.CValue
	spanErr := bk.Tracer.Span(ctx, fmt.Sprintf("module(%s)", name), map[string]string{"module.name": name}, func(ctx context.Context) error {
		var err error
		outputs, err = runnable.Run(ctx, inputs)
		return err
	})
	latency := time.Since(moduleStart)

	if spanErr != nil {
		recordFailure(name, id, spanErr, rt, mu, failures, bk)
		bk.Metrics.Histogram(backends.MetricModuleDuration, float64(latency.Milliseconds()),
			map[string]string{"module.name": name, "status": "failure"})
		return
	}

	outBindings := runnable.OutputBindings()
	for port, value := range outputs {
		dataID, ok := outBindings[port]
		if !ok {
			continue
		}
		if err := rt.SetTableDataCValue(dataID, value); err != nil {
			recordFailure(name, id, err, rt, mu, failures, bk)
			return
		}
		mu.Lock()
		provenance[dataID] = name
		resolutionSources[dataID] = signature.FromModuleExecution
		mu.Unlock()
	}

	rt.State.SetModuleStatus(id, module.NewFired(latency, ""))
	bk.Listener.OnModuleComplete(name, float64(latency.Milliseconds()))
	bk.Metrics.Histogram(backends.MetricModuleDuration, float64(latency.Milliseconds()),
		map[string]string{"module.name": name, "status": "success"})

	mu.Lock()
	timings[name] = latency
	mu.Unlock()
}

func recordFailure(
	name, id string,
	err error,
	rt *runtimestate.Runtime,
	mu *sync.Mutex,
	failures *[]*cerrors.ModuleExecutionError,
	bk backends.Backends,
) {
	rt.State.SetModuleStatus(id, module.NewFailed(err))
	bk.Listener.OnModuleFailed(name, err)

	execErr := cerrors.NewModuleExecutionError(name, id, err).(*cerrors.ModuleExecutionError)
	mu.Lock()
	*failures = append(*failures, execErr)
	mu.Unlock()
}

// finalStatus determines the terminal PipelineStatus: Failed if any module
// failed, Completed if every declared output is resolved, Suspended
// otherwise.
func finalStatus(dag dagspec.DagSpec, rt *runtimestate.Runtime, failures []*cerrors.ModuleExecutionError) signature.PipelineStatus {
	if len(failures) > 0 {
		return signature.NewFailed(failures)
	}
	for _, name := range dag.DeclaredOutputs {
		dataID, ok := dag.OutputBindings[name]
		if !ok || !rt.Table.IsFilled(dataID) {
			return signature.NewSuspended()
		}
	}
	return signature.NewCompleted()
}

// assemble projects a Runtime's final state into a DataSignature, per
// §4.L.
func assemble(
	dag dagspec.DagSpec,
	rt *runtimestate.Runtime,
	status signature.PipelineStatus,
	structuralHash string,
	resumptionCount int,
	opts Options,
	timings map[string]time.Duration,
	provenance map[string]string,
	resolutionSources map[string]signature.ResolutionSource,
) signature.DataSignature {
	inputs := make(map[string]cvalue.CValue)
	var missing []string
	for _, name := range sortedStrings(dag.InputNames()) {
		dataID, ok := dag.DataIDByName(name)
		if !ok {
			continue
		}
		if v, ok := rt.State.StateData(dataID); ok {
			inputs[name] = v
		} else {
			missing = append(missing, name)
		}
	}

	computed := make(map[string]cvalue.CValue)
	for dataID, node := range dag.Data {
		if v, ok := rt.State.StateData(dataID); ok {
			computed[node.Name] = v
		}
	}

	outputs := make(map[string]cvalue.CValue)
	var pending []string
	for _, name := range dag.DeclaredOutputs {
		dataID, ok := dag.OutputBindings[name]
		if !ok {
			pending = append(pending, name)
			continue
		}
		if v, ok := rt.State.StateData(dataID); ok {
			outputs[name] = v
		} else {
			pending = append(pending, name)
		}
	}

	sig := signature.DataSignature{
		ExecutionID:     rt.State.ProcessUUID(),
		StructuralHash:  structuralHash,
		ResumptionCount: resumptionCount,
		Status:          status,
		Inputs:          inputs,
		ComputedNodes:   computed,
		Outputs:         outputs,
		MissingInputs:   missing,
		PendingOutputs:  pending,
		TotalOutputs:    len(dag.DeclaredOutputs),
	}

	if opts.IncludeTimings || opts.IncludeProvenance || opts.IncludeResolutionSources {
		meta := &signature.Metadata{}
		if opts.IncludeTimings {
			nodeTimings := make(map[string]time.Duration, len(timings))
			for name, d := range timings {
				nodeTimings[name] = d
			}
			meta.NodeTimings = nodeTimings
			plan := dagspec.GeneratePlan(dag)
			meta.ExecutionPlan = &plan
		}
		if opts.IncludeProvenance {
			byName := make(map[string]string, len(provenance))
			for dataID, modName := range provenance {
				if node, ok := dag.Data[dataID]; ok {
					byName[node.Name] = modName
				}
			}
			meta.Provenance = byName
		}
		if opts.IncludeResolutionSources {
			byName := make(map[string]signature.ResolutionSource, len(resolutionSources))
			for dataID, src := range resolutionSources {
				if node, ok := dag.Data[dataID]; ok {
					byName[node.Name] = src
				}
			}
			meta.ResolutionSources = byName
		}
		sig.Metadata = meta
	}

	return sig
}

func sortedStrings(s []string) []string {
	out := append([]string(nil), s...)
	sort.Strings(out)
	return out
}
