package coordinator

import (
	"fmt"
	"sync"

	"github.com/ShayCichocki/hive/internal/executor"
)

// Registry holds the capability-tagged executors available for
// assignment. Declaration order is preserved: when two executors tie on
// specificity, the one registered first wins.
type Registry struct {
	// executors maps executor names to executors.
	executors map[string]executor.Executor
	// order records registration order for deterministic tie-breaks.
	order []string
	// mu protects all fields.
	mu sync.RWMutex
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		executors: make(map[string]executor.Executor),
	}
}

// Register adds an executor. Names must be unique.
func (r *Registry) Register(e executor.Executor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := e.Name()
	if name == "" {
		return fmt.Errorf("executor has empty name")
	}
	if _, exists := r.executors[name]; exists {
		return fmt.Errorf("executor %q already registered", name)
	}

	r.executors[name] = e
	r.order = append(r.order, name)
	return nil
}

// Get retrieves an executor by name. Returns nil if not registered.
func (r *Registry) Get(name string) executor.Executor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.executors[name]
}

// Snapshot returns the executors in registration order.
// Assign works against a snapshot so the assignment stays stable even
// if the registry changes mid-execution.
func (r *Registry) Snapshot() []executor.Executor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]executor.Executor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.executors[name])
	}
	return out
}

// Count returns the number of registered executors.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.executors)
}
