// Package scheduler implements component I: a readiness-driven DAG
// scheduler. Modules are launched in rounds as soon as every data node
// feeding their consumed ports is filled, honoring an optional concurrency
// bound; failures are contained per-module; instrumentation flows through
// the backends package and never affects the dataflow itself. Grounded on
// the teacher's internal/engine/executor.go (WaitGroup/worker-pool
// round-based execution) and jinterlante1206-AleutianLocal's
// services/trace/dag/executor.go (readiness loop, per-node span/metrics).
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/constellation-engine/constellation/internal/backends"
	"github.com/constellation-engine/constellation/internal/corelog"
	"github.com/constellation-engine/constellation/internal/dagspec"
	"github.com/constellation-engine/constellation/internal/module"
	"github.com/constellation-engine/constellation/internal/runtimestate"
	"github.com/constellation-engine/constellation/internal/signature"
	cerrors "github.com/constellation-engine/constellation/pkg/errors"
)

// Run drives every module in runnables to completion (or containment),
// reading/writing through rt, and assembles the resulting DataSignature.
// preResolved records, for data node ids already filled before Run was
// called, the ResolutionSource to report for them (FromInput for
// caller-supplied inputs, FromManualResolution for resume-merged nodes).
// structuralHash and resumptionCount are carried straight through to the
// assembled DataSignature; the scheduler itself is agnostic to them.
func Run(
	ctx context.Context,
	dag dagspec.DagSpec,
	runnables map[string]module.Runnable,
	rt *runtimestate.Runtime,
	preResolved map[string]signature.ResolutionSource,
	structuralHash string,
	resumptionCount int,
	opts Options,
	bk backends.Backends,
	log *corelog.Logger,
) signature.DataSignature {
	if log == nil {
		log = corelog.Noop()
	}
	bk = backends.WithDefaults(bk)

	if opts.Deadline != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithDeadline(ctx, *opts.Deadline)
		defer cancel()
	}

	var sem chan struct{}
	if opts.ConcurrencyBound != nil && *opts.ConcurrencyBound > 0 {
		sem = make(chan struct{}, *opts.ConcurrencyBound)
	}

	dagName := dag.Metadata.Name
	start := time.Now()
	bk.Listener.OnExecutionStart(dagName)

	pending := make(map[string]bool, len(runnables))
	for id, runnable := range runnables {
		if outputsResolved(runnable, rt) {
			continue // already satisfied (e.g. manually resolved on resume): don't re-run
		}
		pending[id] = true
	}

	timings := make(map[string]time.Duration)
	provenance := make(map[string]string) // dataId -> module name
	resolutionSources := make(map[string]signature.ResolutionSource)
	for id, src := range preResolved {
		resolutionSources[id] = src
	}

	var mu sync.Mutex
	var failures []*cerrors.ModuleExecutionError

	runErr := bk.Tracer.Span(ctx, fmt.Sprintf("execute(%s)", dagName), map[string]string{"dag.name": dagName}, func(ctx context.Context) error {
		for len(pending) > 0 {
			ready := readyModules(dag, runnables, rt, pending)
			if len(ready) == 0 {
				return nil // no progress possible: suspended
			}

			var wg sync.WaitGroup
			for _, id := range ready {
				id := id
				runnable := runnables[id]

				wg.Add(1)
				go func() {
					defer wg.Done()
					if sem != nil {
						sem <- struct{}{}
						defer func() { <-sem }()
					}
					runModule(ctx, id, runnable, dag, rt, bk, &mu, timings, provenance, resolutionSources, &failures)
				}()
			}
			wg.Wait()

			mu.Lock()
			for _, id := range ready {
				delete(pending, id)
			}
			mu.Unlock()

			if ctx.Err() != nil {
				return nil
			}
		}
		return nil
	})
	_ = runErr // Span never returns an error of its own in this flow

	durationMs := float64(time.Since(start).Milliseconds())

	status := finalStatus(dag, rt, failures)
	succeeded := status.Kind() == signature.Completed
	bk.Listener.OnExecutionComplete(dagName, succeeded, durationMs)
	bk.Metrics.Counter(backends.MetricExecutionTotal, map[string]string{"dag.name": dagName, "status": statusTag(succeeded)})
	bk.Metrics.Histogram(backends.MetricExecutionDuration, durationMs, map[string]string{"dag.name": dagName})

	return assemble(dag, rt, status, structuralHash, resumptionCount, opts, timings, provenance, resolutionSources)
}

func statusTag(succeeded bool) string {
	if succeeded {
		return "success"
	}
	return "failure"
}

// readyModules returns the pending module ids whose every consumed input
// data node is filled, in deterministic (sorted) order. A module whose
// outputs are already fully resolved is never considered ready — it must
// not re-execute and overwrite a manually-resolved (or otherwise
// pre-filled) output, per §4.J step 5.
func readyModules(dag dagspec.DagSpec, runnables map[string]module.Runnable, rt *runtimestate.Runtime, pending map[string]bool) []string {
	var ready []string
	for id := range pending {
		runnable, ok := runnables[id]
		if !ok {
			continue
		}
		if outputsResolved(runnable, rt) {
			continue
		}
		bindings := runnable.InputBindings()
		allReady := true
		for _, dataID := range bindings {
			if !rt.Table.IsFilled(dataID) {
				allReady = false
				break
			}
		}
		if allReady {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)
	return ready
}

// outputsResolved reports whether every data node runnable produces is
// already filled, meaning its work is done regardless of input readiness.
// A module with no declared outputs is never considered resolved this way.
func outputsResolved(runnable module.Runnable, rt *runtimestate.Runtime) bool {
	bindings := runnable.OutputBindings()
	if len(bindings) == 0 {
		return false
	}
	for _, dataID := range bindings {
		if !rt.Table.IsFilled(dataID) {
			return false
		}
	}
	return true
}
