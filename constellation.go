// Package constellation is the engine's external interface (§6): a typed
// dataflow execution runtime over closed CType/CValue sums, compiled DAGs,
// and a readiness-driven scheduler with suspend/resume. Register module
// factories and DAGs, compile a DAG into a content-addressed PipelineImage,
// load it against the current module registry, and run or resume it.
package constellation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/constellation-engine/constellation/internal/backends"
	"github.com/constellation-engine/constellation/internal/corelog"
	"github.com/constellation-engine/constellation/internal/ctype"
	"github.com/constellation-engine/constellation/internal/cvalue"
	"github.com/constellation-engine/constellation/internal/dagconfig"
	"github.com/constellation-engine/constellation/internal/dagspec"
	"github.com/constellation-engine/constellation/internal/hashing"
	"github.com/constellation-engine/constellation/internal/module"
	"github.com/constellation-engine/constellation/internal/pipeline"
	"github.com/constellation-engine/constellation/internal/registry"
	"github.com/constellation-engine/constellation/internal/runtimestate"
	"github.com/constellation-engine/constellation/internal/scheduler"
	"github.com/constellation-engine/constellation/internal/signature"
	"github.com/constellation-engine/constellation/internal/suspend"
	"github.com/constellation-engine/constellation/internal/synthetic"
	cerrors "github.com/constellation-engine/constellation/pkg/errors"
)

// Constellation is the engine handle: a module registry, a DAG registry and
// pipeline store, and the instrumentation backends every run is driven
// through. Construct one with NewBuilder, or New for the all-defaults case.
type Constellation struct {
	registry        *registry.Registry
	dagReg          *pipeline.DagRegistry
	store           *pipeline.Store
	suspensionStore *suspend.SuspensionStore
	resumer         *suspend.Resumer
	backends        backends.Backends
	log             *corelog.Logger
}

// New constructs a Constellation with every collaborator defaulted; use
// NewBuilder to install metrics, tracing, a listener, or a SuspensionStore.
func New() *Constellation {
	return NewBuilder().Build()
}

// SetModule registers a module factory under its metadata name.
func (c *Constellation) SetModule(u module.Uninitialized) {
	c.registry.Register(u)
}

// SetDag validates dag and registers it under name, overwriting any previous
// registration.
func (c *Constellation) SetDag(name string, dag dagspec.DagSpec) error {
	if err := dagspec.Validate(dag); err != nil {
		return err
	}
	c.dagReg.Register(name, dag)
	return nil
}

// SetDagFromYAML parses a YAML-encoded dagconfig.Document, converts it to a
// DagSpec, and registers it under name via SetDag.
func (c *Constellation) SetDagFromYAML(name string, data []byte) error {
	doc, err := dagconfig.ParseDocument(data)
	if err != nil {
		return err
	}
	dag, err := dagconfig.ToDagSpec(doc)
	if err != nil {
		return err
	}
	return c.SetDag(name, dag)
}

// Compile computes name's registered DagSpec's structural hash, stores a
// PipelineImage keyed by that hash (deduplicating identical DAGs), aliases
// name to it, and records the compile timestamp.
func (c *Constellation) Compile(name string) (pipeline.Image, error) {
	dag, ok := c.dagReg.Retrieve(name, "")
	if !ok {
		return pipeline.Image{}, cerrors.NewNotFoundError(fmt.Sprintf("dag %q is not registered", name))
	}

	hash := hashing.ComputeStructuralHash(dag)
	now := time.Now()

	img := pipeline.Image{StructuralHash: hash, DagSpec: dag, CompiledAt: now}
	c.store.StoreImage(img)
	c.store.Alias(name, hash)
	c.dagReg.MarkCompiled(name, now)

	return img, nil
}

// LoadedPipeline is a PipelineImage bound against the current module
// registry: branch-named modules are reconstructed synthetically (component
// G) rather than looked up, since no user-supplied implementation is
// registered for them.
type LoadedPipeline struct {
	Image     pipeline.Image
	synthetic map[string]module.Uninitialized
}

// Load binds image's modules for execution, reconstructing synthetic branch
// modules and leaving every other module id to be resolved from the
// registry at Run/Resume time.
func (c *Constellation) Load(image pipeline.Image) LoadedPipeline {
	synth := make(map[string]module.Uninitialized)
	for id, spec := range image.DagSpec.Modules {
		if synthetic.IsBranchModule(spec.Metadata.Name) {
			synth[id] = synthetic.NewBranchModule(spec.Metadata)
		}
	}
	return LoadedPipeline{Image: image, synthetic: synth}
}

func (c *Constellation) buildRunnables(dag dagspec.DagSpec, synth map[string]module.Uninitialized) map[string]module.Runnable {
	out := make(map[string]module.Runnable, len(dag.Modules))

	for id, spec := range dag.Modules {
		uninit, ok := synth[id]
		if !ok {
			uninit, ok = c.registry.Get(spec.Metadata.Name)
		}
		if !ok {
			c.log.Warn("constellation: unresolved module", "moduleId", id, "name", spec.Metadata.Name)
			continue
		}

		runnable, err := uninit.Init(id, dag)
		if err != nil {
			c.log.Warn("constellation: module init failed", "moduleId", id, "err", err.Error())
			continue
		}
		out[id] = runnable
	}

	return out
}

// Run drives loaded to completion or suspension with the given named
// inputs, under opts. On suspension, the execution is captured and — if a
// SuspensionStore is configured — saved, with its handle reachable via the
// returned DataSignature.SuspendedState.ExecutionID.
func (c *Constellation) Run(ctx context.Context, loaded LoadedPipeline, inputs map[string]cvalue.CValue, opts ExecutionOptions) (signature.DataSignature, error) {
	dag := loaded.Image.DagSpec
	runnables := c.buildRunnables(dag, loaded.synthetic)

	rt := runtimestate.New(uuid.NewString(), dag)
	preResolved := make(map[string]signature.ResolutionSource, len(inputs))

	for name, value := range inputs {
		dataID, ok := dag.DataIDByName(name)
		if !ok {
			return signature.DataSignature{}, cerrors.NewUnknownNodeError(name)
		}
		expected, _ := dag.InputType(name)
		if !ctype.Equal(expected, value.Type()) {
			return signature.DataSignature{}, cerrors.NewInputTypeMismatchError(name, expected.String(), value.Type().String())
		}
		if err := rt.SetTableDataCValue(dataID, value); err != nil {
			return signature.DataSignature{}, err
		}
		preResolved[dataID] = signature.FromInput
	}

	sig := scheduler.Run(ctx, dag, runnables, rt, preResolved, loaded.Image.StructuralHash, 0, opts.toSchedulerOptions(), c.backends, c.log)

	if sig.Status.Kind() == signature.Suspended {
		se := suspend.Capture(sig.ExecutionID, loaded.Image.StructuralHash, 0, dag, loaded.Image.ModuleOptions, rt)
		sig.SuspendedState = &se
		if c.suspensionStore != nil {
			c.suspensionStore.Save(se)
		}
	}

	return sig, nil
}

// Resume looks up handle in the configured SuspensionStore and re-runs the
// outstanding work with additionalInputs and resolvedNodes merged in. It
// fails with a ConfigurationError if no SuspensionStore was installed, or a
// NotFoundError if handle names no saved suspension.
func (c *Constellation) Resume(
	ctx context.Context,
	handle signature.SuspensionHandle,
	additionalInputs map[string]cvalue.CValue,
	resolvedNodes map[string]cvalue.CValue,
	opts ExecutionOptions,
) (signature.DataSignature, error) {
	if c.suspensionStore == nil {
		return signature.DataSignature{}, cerrors.NewConfigurationError("No SuspensionStore configured")
	}

	suspended, ok := c.suspensionStore.Load(handle)
	if !ok {
		return signature.DataSignature{}, cerrors.NewNotFoundError("Suspension not found")
	}

	loaded := c.Load(pipeline.Image{
		StructuralHash: suspended.StructuralHash,
		DagSpec:        suspended.DagSpec,
		ModuleOptions:  suspended.ModuleOptions,
	})
	runnables := c.buildRunnables(suspended.DagSpec, loaded.synthetic)

	sig, err := c.resumer.Resume(ctx, suspended, additionalInputs, resolvedNodes, runnables, opts.toSchedulerOptions(), c.backends, c.log)
	if err != nil {
		return signature.DataSignature{}, err
	}

	if sig.Status.Kind() == signature.Suspended && sig.SuspendedState != nil {
		c.suspensionStore.Save(*sig.SuspendedState)
	} else {
		c.suspensionStore.Remove(handle)
	}

	return sig, nil
}
