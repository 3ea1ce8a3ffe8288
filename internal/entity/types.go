package entity

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/nerrad567/adaptive-cover/internal/restore"
)

// valueTolerance absorbs float error when checking bounds and steps.
const valueTolerance = 1e-9

// Mode is the preferred input control for a number.
type Mode string

// Input modes.
const (
	ModeAuto   Mode = "auto"
	ModeBox    Mode = "box"
	ModeSlider Mode = "slider"
)

// NumberDescription is the static metadata of a number entity.
type NumberDescription struct {
	Key            string  `json:"key"`
	TranslationKey string  `json:"translation_key,omitempty"`
	Icon           string  `json:"icon,omitempty"`
	Min            float64 `json:"min"`
	Max            float64 `json:"max"`
	Step           float64 `json:"step"`
	Unit           string  `json:"unit,omitempty"`
	Mode           Mode    `json:"mode"`
}

// Validate checks v against the bounds and, when Step is positive, that v
// is Min plus a whole number of steps.
func (d NumberDescription) Validate(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %v", ErrOutOfRange, v)
	}
	if v < d.Min-valueTolerance || v > d.Max+valueTolerance {
		return fmt.Errorf("%w: %v not in [%v, %v]", ErrOutOfRange, v, d.Min, d.Max)
	}
	if d.Step > 0 {
		steps := math.Round((v - d.Min) / d.Step)
		if math.Abs(d.Min+steps*d.Step-v) > valueTolerance {
			return fmt.Errorf("%w: %v (step %v)", ErrInvalidStep, v, d.Step)
		}
	}
	return nil
}

// Identifier ties a device to an integration domain.
type Identifier struct {
	Domain string `json:"domain"`
	ID     string `json:"id"`
}

// DeviceInfo groups the entities of one config entry.
type DeviceInfo struct {
	Identifiers []Identifier `json:"identifiers"`
	Name        string       `json:"name,omitempty"`
}

// NumberEntity is a user-adjustable numeric value.
type NumberEntity interface {
	UniqueID() string
	EntryID() string
	Description() NumberDescription
	Device() DeviceInfo

	// NativeValue returns the current value. It has no side effects.
	NativeValue() float64

	// SetNativeValue applies a user-set value. The caller validates v.
	SetNativeValue(ctx context.Context, v float64) error

	// Attach is called once after registration, before any SetNativeValue.
	Attach(ctx context.Context, host Host) error
}

// Host is what an entity may ask of the platform that registered it.
type Host interface {
	// LastNumberData returns restored data for uniqueID, or nil if none.
	LastNumberData(ctx context.Context, uniqueID string) (*restore.NumberData, error)

	// WriteState records that e's state changed.
	WriteState(ctx context.Context, e NumberEntity)
}

// State is a snapshot of a number entity as published to listeners.
type State struct {
	UniqueID  string     `json:"unique_id"`
	EntryID   string     `json:"entry_id"`
	Key       string     `json:"key"`
	Value     float64    `json:"value"`
	Unit      string     `json:"unit,omitempty"`
	Min       float64    `json:"min"`
	Max       float64    `json:"max"`
	Step      float64    `json:"step"`
	Mode      Mode       `json:"mode"`
	Icon      string     `json:"icon,omitempty"`
	Device    DeviceInfo `json:"device"`
	Attached  bool       `json:"attached"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// StateListener receives every state write.
type StateListener interface {
	HandleState(ctx context.Context, s State) error
}

// StateListenerFunc adapts a function to StateListener.
type StateListenerFunc func(ctx context.Context, s State) error

// HandleState calls f.
func (f StateListenerFunc) HandleState(ctx context.Context, s State) error {
	return f(ctx, s)
}

// Logger defines the logging interface used by the Platform.
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
