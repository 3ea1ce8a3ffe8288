package number

import (
	"context"
	"sync"

	"github.com/nerrad567/adaptive-cover/internal/cover"
	"github.com/nerrad567/adaptive-cover/internal/entity"
)

// DefaultDistance is used when an entry has no configured distance.
const DefaultDistance = cover.DefaultDistance

const (
	distanceKey      = "distance"
	distanceIDSuffix = "_distance_shaded_area"
)

// DistanceDescription is the static metadata of the distance entity.
var DistanceDescription = entity.NumberDescription{
	Key:            distanceKey,
	TranslationKey: distanceKey,
	Icon:           "mdi:ruler-square-compass",
	Min:            0.1,
	Max:            2.0,
	Step:           0.1,
	Unit:           "m",
	Mode:           entity.ModeSlider,
}

// Coordinator is the part of an entry coordinator the entity relies on.
type Coordinator interface {
	DistanceOverride() *float64
	SetDistanceOverride(v float64)
	Refresh(ctx context.Context) error
}

// Logger defines the logging interface used by number entities.
type Logger interface {
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Warn(string, ...any) {}

// Option configures entities created by SetupEntry.
type Option func(*DistanceEntity)

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(e *DistanceEntity) { e.logger = l }
}

// SetupEntry registers the number entities of entry through add.
// Tilt covers are not distance driven and get no entity.
func SetupEntry(entry cover.Entry, coord Coordinator, add func(...entity.NumberEntity), opts ...Option) {
	if entry.SensorType == cover.SensorTypeTilt {
		return
	}
	add(NewDistanceEntity(entry, coord, opts...))
}

// DistanceEntity exposes the coordinator's distance override.
type DistanceEntity struct {
	entry  cover.Entry
	coord  Coordinator
	logger Logger

	mu   sync.Mutex
	host entity.Host
}

// NewDistanceEntity creates the distance entity of entry.
func NewDistanceEntity(entry cover.Entry, coord Coordinator, opts ...Option) *DistanceEntity {
	e := &DistanceEntity{
		entry:  entry,
		coord:  coord,
		logger: noopLogger{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// UniqueID returns "<entry_id>_distance_shaded_area".
func (e *DistanceEntity) UniqueID() string {
	return e.entry.ID + distanceIDSuffix
}

// EntryID returns the owning entry id.
func (e *DistanceEntity) EntryID() string {
	return e.entry.ID
}

// Description returns DistanceDescription.
func (e *DistanceEntity) Description() entity.NumberDescription {
	return DistanceDescription
}

// Device identifies the entry's device.
func (e *DistanceEntity) Device() entity.DeviceInfo {
	return entity.DeviceInfo{
		Identifiers: []entity.Identifier{{Domain: cover.Domain, ID: e.entry.ID}},
		Name:        e.entry.Name,
	}
}

// NativeValue returns the override, else the configured distance.
func (e *DistanceEntity) NativeValue() float64 {
	if v := e.coord.DistanceOverride(); v != nil {
		return *v
	}
	return e.entry.Options.ConfiguredDistance()
}

// SetNativeValue stores v as the override and refreshes the coordinator.
// A refresh error is returned as is and no state is written. A context that
// is already done leaves the override untouched.
func (e *DistanceEntity) SetNativeValue(ctx context.Context, v float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.coord.SetDistanceOverride(v)
	if err := e.coord.Refresh(ctx); err != nil {
		return err
	}
	if host := e.currentHost(); host != nil {
		host.WriteState(ctx, e)
	}
	return nil
}

func (e *DistanceEntity) currentHost() entity.Host {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.host
}

// Attach restores the last saved value into the coordinator, or the
// configured distance when nothing usable was saved, then refreshes once.
func (e *DistanceEntity) Attach(ctx context.Context, host entity.Host) error {
	e.mu.Lock()
	e.host = host
	e.mu.Unlock()

	value := e.entry.Options.ConfiguredDistance()

	data, err := host.LastNumberData(ctx, e.UniqueID())
	if err != nil {
		e.logger.Warn("reading restore state", "unique_id", e.UniqueID(), "error", err)
	} else if data != nil && data.NativeValue != nil {
		value = *data.NativeValue
	}

	e.coord.SetDistanceOverride(value)
	return e.coord.Refresh(ctx)
}
