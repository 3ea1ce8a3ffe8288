package coordinator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/adaptive-cover/internal/cover"
)

// Logger defines the logging interface used by the coordinator.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Inputs is everything an update needs, captured at the start of a refresh.
type Inputs struct {
	Entry            cover.Entry
	Site             cover.Site
	Now              time.Time
	DistanceOverride *float64
}

// EffectiveDistance returns the override when set, else the configured distance.
func (in Inputs) EffectiveDistance() float64 {
	if in.DistanceOverride != nil {
		return *in.DistanceOverride
	}
	return in.Entry.Options.ConfiguredDistance()
}

// UpdateFunc recomputes the cover result from the inputs.
type UpdateFunc func(ctx context.Context, in Inputs) (cover.Result, error)

// DefaultUpdate computes the sun position for in.Now and the cover position
// for the effective distance.
func DefaultUpdate(_ context.Context, in Inputs) (cover.Result, error) {
	sun := cover.SunPosition(in.Site.Latitude, in.Site.Longitude, in.Now)
	return cover.Calculate(in.Entry, sun, in.EffectiveDistance()), nil
}

// Data is the result of the last successful refresh.
type Data struct {
	EntryID string `json:"entry_id"`
	cover.Result
	DistanceOverride *float64  `json:"distance_override,omitempty"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Listener is notified after every successful refresh.
type Listener func(Data)

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// WithUpdateFunc replaces DefaultUpdate.
func WithUpdateFunc(fn UpdateFunc) Option {
	return func(c *Coordinator) { c.update = fn }
}

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

// Coordinator holds the shared state of one entry.
type Coordinator struct {
	entry  cover.Entry
	site   cover.Site
	update UpdateFunc
	now    func() time.Time
	logger Logger

	// refreshMu serialises refreshes; mu guards the fields below it.
	refreshMu sync.Mutex

	mu        sync.RWMutex
	override  *float64
	data      *Data
	lastErr   error
	listeners map[int]Listener
	nextID    int
}

// New creates a coordinator for entry at site.
func New(entry cover.Entry, site cover.Site, opts ...Option) *Coordinator {
	c := &Coordinator{
		entry:     entry,
		site:      site,
		update:    DefaultUpdate,
		now:       time.Now,
		logger:    noopLogger{},
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Entry returns the entry this coordinator serves.
func (c *Coordinator) Entry() cover.Entry {
	return c.entry
}

// DistanceOverride returns a copy of the current override, or nil when unset.
func (c *Coordinator) DistanceOverride() *float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copyFloat(c.override)
}

// SetDistanceOverride stores v as the distance override. It does not refresh.
func (c *Coordinator) SetDistanceOverride(v float64) {
	c.mu.Lock()
	c.override = &v
	c.mu.Unlock()
}

// Refresh recomputes the cover data from the current inputs and notifies
// listeners. Update errors are wrapped with ErrUpdateFailed and leave the
// previous data in place.
func (c *Coordinator) Refresh(ctx context.Context) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("refreshing entry %s: %w", c.entry.ID, err)
	}

	c.mu.RLock()
	in := Inputs{
		Entry:            c.entry,
		Site:             c.site,
		Now:              c.now(),
		DistanceOverride: copyFloat(c.override),
	}
	c.mu.RUnlock()

	result, err := c.update(ctx, in)
	if err != nil {
		c.mu.Lock()
		c.lastErr = err
		c.mu.Unlock()
		c.logger.Warn("cover update failed", "entry_id", c.entry.ID, "error", err)
		return fmt.Errorf("%w: entry %s: %w", ErrUpdateFailed, c.entry.ID, err)
	}

	data := Data{
		EntryID:          c.entry.ID,
		Result:           result,
		DistanceOverride: in.DistanceOverride,
		UpdatedAt:        in.Now.UTC(),
	}

	c.mu.Lock()
	c.data = &data
	c.lastErr = nil
	listeners := make([]Listener, 0, len(c.listeners))
	for _, l := range c.listeners {
		listeners = append(listeners, l)
	}
	c.mu.Unlock()

	c.logger.Debug("cover refreshed",
		"entry_id", c.entry.ID,
		"position", result.Position,
		"sun_in_window", result.SunInWindow,
		"distance", in.EffectiveDistance(),
	)

	for _, l := range listeners {
		l(data)
	}
	return nil
}

// Data returns the last successful refresh result; ok is false before the
// first successful refresh.
func (c *Coordinator) Data() (data Data, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.data == nil {
		return Data{}, false
	}
	return *c.data, true
}

// LastUpdateSuccess reports whether the most recent refresh succeeded.
// It is false before any refresh.
func (c *Coordinator) LastUpdateSuccess() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data != nil && c.lastErr == nil
}

// AddListener registers l and returns a function that removes it.
func (c *Coordinator) AddListener(l Listener) (remove func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = l
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// Run refreshes every interval until ctx is cancelled. A non-positive
// interval disables polling and Run returns immediately.
func (c *Coordinator) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Refresh(ctx); err != nil && ctx.Err() == nil {
				c.logger.Error("scheduled refresh failed", "entry_id", c.entry.ID, "error", err)
			}
		}
	}
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	cpy := *v
	return &cpy
}
