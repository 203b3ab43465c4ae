package backend

import (
	"context"
	"sync"

	"budgettrack/internal/core"
)

// MemorySink keeps the most recent snapshot in memory. It backs the
// "memory" export target, which is handy for dry runs.
type MemorySink struct {
	mu      sync.Mutex
	last    core.Snapshot
	exports int
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (m *MemorySink) Name() string { return string(MemoryTarget) }

func (m *MemorySink) ExportSnapshot(_ context.Context, s core.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = s
	m.exports++
	return nil
}

// Last returns the latest snapshot and how many exports happened so far.
func (m *MemorySink) Last() (core.Snapshot, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last, m.exports
}
