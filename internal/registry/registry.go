// internal/registry/registry.go
package registry

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/brightflow/chronoindex/internal/index"
)

// Series names one named DataPart of int64 values together with the
// handle it was registered under. Registry has no type parameter: every
// series it holds stores int64 values.
type Series struct {
	Handle string
	Name   string
	Part   *index.DataPart[int64]
}

// Registry owns the set of named time series a chronoindexd process
// serves. A series is created once and never removed: chronoindexd has
// no delete operation, matching the append-only nature of the index
// itself.
type Registry struct {
	mu       sync.RWMutex
	byName   map[string]*Series
	byHandle map[string]*Series
}

// New constructs an empty Registry.
func New() *Registry {
	return &Registry{
		byName:   make(map[string]*Series),
		byHandle: make(map[string]*Series),
	}
}

// CreateOrGet returns the existing series for name, or creates one
// seeded at start with the given per-level capacity function and
// combiner. The combiner and size function are only used the first
// time name is seen; later calls ignore them and return the existing
// series, matching chronoindexd's create-once series semantics.
func (r *Registry) CreateOrGet(name string, start uint64, size index.SizeFunc, combine func(int64, int64) int64) *Series {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.byName[name]; ok {
		return s
	}

	s := &Series{
		Handle: uuid.New().String(),
		Name:   name,
		Part:   index.New[int64](start, size, combine),
	}
	r.byName[name] = s
	r.byHandle[s.Handle] = s
	return s
}

// Get looks up a series by name.
func (r *Registry) Get(name string) (*Series, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byName[name]
	return s, ok
}

// GetByHandle looks up a series by the opaque handle returned from
// CreateOrGet, for callers that address series without re-sending names.
func (r *Registry) GetByHandle(handle string) (*Series, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byHandle[handle]
	if !ok {
		return nil, fmt.Errorf("registry: unknown handle %q", handle)
	}
	return s, nil
}

// Len reports the number of registered series.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}

// Names returns every registered series name. The order is unspecified.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	return names
}
