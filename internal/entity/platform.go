package entity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/adaptive-cover/internal/restore"
)

// attachPhase tracks an entity through its single Attach call.
type attachPhase int

const (
	phasePending attachPhase = iota
	phaseAttaching
	phaseAttached
)

type registration struct {
	entity    NumberEntity
	phase     attachPhase
	updatedAt time.Time
}

func (r *registration) attached() bool {
	return r.phase == phaseAttached
}

// Platform registers number entities and acts as their Host.
// It is safe for concurrent use.
type Platform struct {
	store  restore.Store
	logger Logger
	now    func() time.Time

	mu        sync.RWMutex
	entities  map[string]*registration
	order     []string
	listeners []StateListener
}

// NewPlatform creates a platform persisting through store. A nil store
// disables restore.
func NewPlatform(store restore.Store) *Platform {
	return &Platform{
		store:    store,
		logger:   noopLogger{},
		now:      time.Now,
		entities: make(map[string]*registration),
	}
}

// SetLogger sets the logger for the platform.
func (p *Platform) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	p.logger = logger
}

// AddListener registers a sink for state writes.
func (p *Platform) AddListener(l StateListener) {
	p.mu.Lock()
	p.listeners = append(p.listeners, l)
	p.mu.Unlock()
}

// AddEntities registers entities. Duplicate unique ids are skipped and logged.
// Its signature matches the add-entities callback handed to setup functions.
func (p *Platform) AddEntities(entities ...NumberEntity) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, e := range entities {
		id := e.UniqueID()
		if _, exists := p.entities[id]; exists {
			p.logger.Warn("skipping duplicate entity", "unique_id", id, "error", ErrEntityExists)
			continue
		}
		p.entities[id] = &registration{entity: e}
		p.order = append(p.order, id)
		p.logger.Debug("entity registered", "unique_id", id, "entry_id", e.EntryID())
	}
}

// AttachAll attaches every registered entity that has not been attached yet
// and writes its initial state. SetValue is rejected with ErrNotAttached until
// the entity's Attach has returned. An entity is attached once even when
// Attach fails; the errors are joined and returned.
func (p *Platform) AttachAll(ctx context.Context) error {
	p.mu.Lock()
	var pending []*registration
	for _, id := range p.order {
		reg := p.entities[id]
		if reg.phase == phasePending {
			reg.phase = phaseAttaching
			pending = append(pending, reg)
		}
	}
	p.mu.Unlock()

	var errs []error
	for _, reg := range pending {
		e := reg.entity
		err := e.Attach(ctx, p)

		p.mu.Lock()
		reg.phase = phaseAttached
		p.mu.Unlock()

		if err != nil {
			p.logger.Error("attaching entity", "unique_id", e.UniqueID(), "error", err)
			errs = append(errs, fmt.Errorf("attaching %s: %w", e.UniqueID(), err))
		}
		p.WriteState(ctx, e)
	}
	return errors.Join(errs...)
}

// SetValue validates v against the entity description and applies it.
// Errors from the entity are returned unchanged.
func (p *Platform) SetValue(ctx context.Context, uniqueID string, v float64) error {
	p.mu.RLock()
	reg, ok := p.entities[uniqueID]
	var attached bool
	if ok {
		attached = reg.attached()
	}
	p.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrEntityNotFound, uniqueID)
	}
	if err := reg.entity.Description().Validate(v); err != nil {
		return err
	}
	if !attached {
		return fmt.Errorf("%w: %s", ErrNotAttached, uniqueID)
	}

	p.logger.Info("setting entity value", "unique_id", uniqueID, "value", v)
	return reg.entity.SetNativeValue(ctx, v)
}

// Get returns the entity registered under uniqueID.
func (p *Platform) Get(uniqueID string) (NumberEntity, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	reg, ok := p.entities[uniqueID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntityNotFound, uniqueID)
	}
	return reg.entity, nil
}

// State returns the current state of the entity registered under uniqueID.
func (p *Platform) State(uniqueID string) (State, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	reg, ok := p.entities[uniqueID]
	if !ok {
		return State{}, fmt.Errorf("%w: %s", ErrEntityNotFound, uniqueID)
	}
	return buildState(reg), nil
}

// FindByKey returns the state of the entity of entryID whose description
// key is key.
func (p *Platform) FindByKey(entryID, key string) (State, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, id := range p.order {
		reg := p.entities[id]
		if reg.entity.EntryID() == entryID && reg.entity.Description().Key == key {
			return buildState(reg), nil
		}
	}
	return State{}, fmt.Errorf("%w: %s/%s", ErrEntityNotFound, entryID, key)
}

// List returns the states of all entities in registration order.
func (p *Platform) List() []State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]State, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, buildState(p.entities[id]))
	}
	return out
}

// Count returns the number of registered entities.
func (p *Platform) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entities)
}

// SaveAll persists the state of every attached entity, typically on shutdown.
func (p *Platform) SaveAll(ctx context.Context) error {
	if p.store == nil {
		return nil
	}

	p.mu.RLock()
	var attached []NumberEntity
	for _, id := range p.order {
		if reg := p.entities[id]; reg.attached() {
			attached = append(attached, reg.entity)
		}
	}
	p.mu.RUnlock()

	var errs []error
	for _, e := range attached {
		if err := p.store.SaveNumberData(ctx, e.UniqueID(), numberData(e)); err != nil {
			errs = append(errs, fmt.Errorf("saving %s: %w", e.UniqueID(), err))
		}
	}
	return errors.Join(errs...)
}

// LastNumberData implements Host. Without a store it always reports absence.
func (p *Platform) LastNumberData(ctx context.Context, uniqueID string) (*restore.NumberData, error) {
	if p.store == nil {
		return nil, nil //nolint:nilnil // no store, nothing restored
	}
	return p.store.LastNumberData(ctx, uniqueID)
}

// WriteState implements Host: it persists e's state and fans it out to
// listeners. Failures are logged.
func (p *Platform) WriteState(ctx context.Context, e NumberEntity) {
	id := e.UniqueID()

	p.mu.Lock()
	reg, ok := p.entities[id]
	if !ok {
		p.mu.Unlock()
		p.logger.Warn("state write for unregistered entity", "unique_id", id)
		return
	}
	reg.updatedAt = p.now().UTC()
	state := buildState(reg)
	listeners := append([]StateListener(nil), p.listeners...)
	p.mu.Unlock()

	if p.store != nil {
		if err := p.store.SaveNumberData(ctx, id, numberData(e)); err != nil {
			p.logger.Error("persisting entity state", "unique_id", id, "error", err)
		}
	}

	for _, l := range listeners {
		if err := l.HandleState(ctx, state); err != nil {
			p.logger.Warn("state listener failed", "unique_id", id, "error", err)
		}
	}
}

func buildState(reg *registration) State {
	e := reg.entity
	d := e.Description()
	return State{
		UniqueID:  e.UniqueID(),
		EntryID:   e.EntryID(),
		Key:       d.Key,
		Value:     e.NativeValue(),
		Unit:      d.Unit,
		Min:       d.Min,
		Max:       d.Max,
		Step:      d.Step,
		Mode:      d.Mode,
		Icon:      d.Icon,
		Device:    e.Device(),
		Attached:  reg.attached(),
		UpdatedAt: reg.updatedAt,
	}
}

func numberData(e NumberEntity) *restore.NumberData {
	d := e.Description()
	v := e.NativeValue()
	return &restore.NumberData{
		NativeValue:             &v,
		NativeMinValue:          d.Min,
		NativeMaxValue:          d.Max,
		NativeStep:              d.Step,
		NativeUnitOfMeasurement: d.Unit,
	}
}
