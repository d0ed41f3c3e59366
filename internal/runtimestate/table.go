package runtimestate

import (
	"context"
	"fmt"
	"sync"

	"github.com/constellation-engine/constellation/internal/cvalue"
	cerrors "github.com/constellation-engine/constellation/pkg/errors"
)

// slot is a single-assignment cell: at most one write, unbounded reads, and
// readers block (or observe ctx cancellation) until the write happens.
type slot struct {
	mu    sync.Mutex
	ch    chan struct{}
	value cvalue.CValue
	set   bool
}

func newSlot() *slot {
	return &slot{ch: make(chan struct{})}
}

// Table is the eager, single-assignment data table keyed by data-node id
// (component H's "table"). Every data node in the bound DagSpec gets a slot
// up front; writes to an unknown id are a deliberate no-op (the
// passthrough/no-listener case described in §4.H).
type Table struct {
	mu    sync.RWMutex
	slots map[string]*slot
}

// NewTable pre-creates one slot per id in dataIDs.
func NewTable(dataIDs []string) *Table {
	t := &Table{slots: make(map[string]*slot, len(dataIDs))}
	for _, id := range dataIDs {
		t.slots[id] = newSlot()
	}
	return t
}

func (t *Table) slotFor(id string) (*slot, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.slots[id]
	return s, ok
}

// SetTableData completes the slot for id. Completing an already-filled slot
// with an identical value is accepted (idempotent write, e.g. resume
// replaying a manually-resolved node); completing it with a different value
// is a logic error. Writing to an id absent from the table is a no-op.
func (t *Table) SetTableData(id string, value cvalue.CValue) error {
	s, ok := t.slotFor(id)
	if !ok {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.set {
		if cvalue.Equal(s.value, value) {
			return nil
		}
		return fmt.Errorf("runtimestate: slot %q already set to a different value", id)
	}
	s.value = value
	s.set = true
	close(s.ch)
	return nil
}

// GetTableData blocks until the slot for id is filled or ctx is done.
// Reading an id absent from the table fails with "not found".
func (t *Table) GetTableData(ctx context.Context, id string) (cvalue.CValue, error) {
	s, ok := t.slotFor(id)
	if !ok {
		return cvalue.CValue{}, cerrors.NewNotFoundError(fmt.Sprintf("runtimestate: data node %q not found", id))
	}

	select {
	case <-s.ch:
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.value, nil
	case <-ctx.Done():
		return cvalue.CValue{}, ctx.Err()
	}
}

// IsFilled reports whether id's slot has been written, without blocking.
func (t *Table) IsFilled(id string) bool {
	s, ok := t.slotFor(id)
	if !ok {
		return false
	}
	select {
	case <-s.ch:
		return true
	default:
		return false
	}
}

// Ready reports whether every id in ids has a filled slot.
func (t *Table) Ready(ids []string) bool {
	for _, id := range ids {
		if !t.IsFilled(id) {
			return false
		}
	}
	return true
}
