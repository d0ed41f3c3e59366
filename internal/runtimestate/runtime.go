package runtimestate

import (
	"github.com/constellation-engine/constellation/internal/ctype"
	"github.com/constellation-engine/constellation/internal/cvalue"
	"github.com/constellation-engine/constellation/internal/dagspec"
)

// Runtime pairs a Table and a State for one execution. The scheduler is the
// sole writer; module bodies see only their own input/output maps and never
// touch a Runtime directly.
type Runtime struct {
	Table *Table
	State *State
}

// New constructs a Runtime whose Table has one slot per data node declared
// in dag, and whose State starts every module Unfired.
func New(processUUID string, dag dagspec.DagSpec) *Runtime {
	ids := dagspec.SortedDataIDs(dag)
	return &Runtime{
		Table: NewTable(ids),
		State: NewState(processUUID, dag),
	}
}

// SetTableDataCValue writes value into the table slot for dataID and
// mirrors it into the lazy state map, the two-store write §4.I's scheduler
// step (d) performs after a module produces an output.
func (rt *Runtime) SetTableDataCValue(dataID string, value cvalue.CValue) error {
	if err := rt.Table.SetTableData(dataID, value); err != nil {
		return err
	}
	rt.State.SetStateData(dataID, value)
	return nil
}

// SetTableDataRawValue reconstructs a CValue from raw against typ and
// writes it the same way SetTableDataCValue does.
func (rt *Runtime) SetTableDataRawValue(dataID string, raw cvalue.RawValue, typ ctype.CType) error {
	return rt.SetTableDataCValue(dataID, cvalue.FromRaw(raw, typ))
}
