package suspend

import "sync"

// executionLocks forbids concurrent resumes of the same executionId (§5):
// resume acquires the lock for that id before validation and releases it on
// every exit path, including validation failure.
type executionLocks struct {
	mu    sync.Mutex
	inUse map[string]bool
}

func newExecutionLocks() *executionLocks {
	return &executionLocks{inUse: make(map[string]bool)}
}

// acquire reports whether the lock for executionID was free and, if so,
// marks it held. release must be called exactly once per successful
// acquire.
func (l *executionLocks) acquire(executionID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.inUse[executionID] {
		return false
	}
	l.inUse[executionID] = true
	return true
}

func (l *executionLocks) release(executionID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.inUse, executionID)
}
