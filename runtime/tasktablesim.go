package runtime

import (
	"sync"

	"github.com/seoyhaein/localsched"
)

// TaskTableSim is an in-memory stand-in for the global control-state
// database's task table (§6). It keeps only the latest entry per task ID,
// same as the real table's last-write-wins semantics for a single row.
type TaskTableSim struct {
	mu      sync.RWMutex
	entries map[string]localsched.TaskTableEntry
}

// NewTaskTableSim constructs an empty table.
func NewTaskTableSim() *TaskTableSim {
	return &TaskTableSim{entries: make(map[string]localsched.TaskTableEntry)}
}

// AddTask implements localsched.TaskTable.
func (t *TaskTableSim) AddTask(e localsched.TaskTableEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[e.Spec.TaskID] = e
}

// UpdateTask implements localsched.TaskTable.
func (t *TaskTableSim) UpdateTask(e localsched.TaskTableEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[e.Spec.TaskID] = e
}

// Snapshot returns a copy of the current entries, for demo output and test
// assertions.
func (t *TaskTableSim) Snapshot() map[string]localsched.TaskTableEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]localsched.TaskTableEntry, len(t.entries))
	for k, v := range t.entries {
		out[k] = v
	}
	return out
}

var _ localsched.TaskTable = (*TaskTableSim)(nil)
