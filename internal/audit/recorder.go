package audit

import (
	"context"
	"sync"

	"github.com/nerrad567/adaptive-cover/internal/entity"
)

// Recorder writes an audit log for every state write made on behalf of an
// Actor. It implements entity.StateListener.
type Recorder struct {
	repo Repository

	mu   sync.Mutex
	last map[string]float64
}

// NewRecorder creates a recorder writing to repo.
func NewRecorder(repo Repository) *Recorder {
	return &Recorder{repo: repo, last: make(map[string]float64)}
}

// HandleState records s when ctx carries an Actor. Writes without one only
// update the remembered value used as OldValue next time.
func (r *Recorder) HandleState(ctx context.Context, s entity.State) error {
	r.mu.Lock()
	prev, seen := r.last[s.UniqueID]
	r.last[s.UniqueID] = s.Value
	r.mu.Unlock()

	actor, ok := ActorFrom(ctx)
	if !ok {
		return nil
	}

	log := &Log{
		EntityID: s.UniqueID,
		EntryID:  s.EntryID,
		Source:   actor.Source,
		Subject:  actor.Subject,
		NewValue: s.Value,
	}
	if seen {
		log.OldValue = &prev
	}
	return r.repo.Create(ctx, log)
}
