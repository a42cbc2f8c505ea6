package clipboard

import (
	"context"
	"sync"
)

// Memory is an in-process clipboard used by tests and --dry-run.
type Memory struct {
	mu       sync.Mutex
	reps     []Representation
	writes   int
	ReadErr  error
	WriteErr error
}

func NewMemory(reps ...Representation) *Memory {
	return &Memory{reps: cloneAll(reps)}
}

func (m *Memory) Read(_ context.Context) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return Snapshot{}, m.ReadErr
	}
	return NewSnapshot(m.reps...), nil
}

func (m *Memory) Write(_ context.Context, reps ...Representation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.reps = cloneAll(reps)
	m.writes++
	return nil
}

// Writes returns how many times Write succeeded.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// Contents returns the current content without going through Read.
func (m *Memory) Contents() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return NewSnapshot(m.reps...)
}
