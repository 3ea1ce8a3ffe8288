package coordinator

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Registry indexes coordinators by entry id.
type Registry struct {
	mu           sync.RWMutex
	coordinators map[string]*Coordinator
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{coordinators: make(map[string]*Coordinator)}
}

// Add registers c under its entry id.
func (r *Registry) Add(c *Coordinator) error {
	id := c.Entry().ID

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.coordinators[id]; exists {
		return fmt.Errorf("%w: %s", ErrCoordinatorExists, id)
	}
	r.coordinators[id] = c
	return nil
}

// Get returns the coordinator for entryID.
func (r *Registry) Get(entryID string) (*Coordinator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.coordinators[entryID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCoordinatorNotFound, entryID)
	}
	return c, nil
}

// List returns all coordinators ordered by entry id.
func (r *Registry) List() []*Coordinator {
	r.mu.RLock()
	out := make([]*Coordinator, 0, len(r.coordinators))
	for _, c := range r.coordinators {
		out = append(out, c)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].Entry().ID < out[j].Entry().ID
	})
	return out
}

// RunAll polls every registered coordinator until ctx is cancelled and
// blocks until all polling loops have returned.
func (r *Registry) RunAll(ctx context.Context, interval time.Duration) {
	var wg sync.WaitGroup
	for _, c := range r.List() {
		wg.Add(1)
		go func(c *Coordinator) {
			defer wg.Done()
			c.Run(ctx, interval)
		}(c)
	}
	wg.Wait()
}
