package influxdb

import (
	"context"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/adaptive-cover/internal/coordinator"
	"github.com/nerrad567/adaptive-cover/internal/entity"
)

// Measurement names.
const (
	MeasurementNumberState   = "number_state"
	MeasurementCoverPosition = "cover_position"
)

// PointWriter accepts points for asynchronous writing.
type PointWriter interface {
	WritePoint(p *write.Point)
}

// WritePoint queues p. It is a no-op once the client is closed.
func (c *Client) WritePoint(p *write.Point) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(p)
}

// Recorder turns entity states and coordinator data into points.
type Recorder struct {
	w PointWriter
}

// NewRecorder creates a recorder writing to w.
func NewRecorder(w PointWriter) *Recorder {
	return &Recorder{w: w}
}

// HandleState records a number_state point. It implements entity.StateListener.
func (r *Recorder) HandleState(_ context.Context, s entity.State) error {
	r.w.WritePoint(NumberStatePoint(s))
	return nil
}

// RecordCover records a cover_position point. It has the
// coordinator.Listener signature.
func (r *Recorder) RecordCover(d coordinator.Data) {
	r.w.WritePoint(CoverPositionPoint(d))
}

// NumberStatePoint builds the number_state point for s.
func NumberStatePoint(s entity.State) *write.Point {
	return write.NewPoint(MeasurementNumberState,
		map[string]string{
			"entry_id":  s.EntryID,
			"key":       s.Key,
			"unique_id": s.UniqueID,
		},
		map[string]any{"value": s.Value},
		timestampOrNow(s.UpdatedAt),
	)
}

// CoverPositionPoint builds the cover_position point for d.
func CoverPositionPoint(d coordinator.Data) *write.Point {
	return write.NewPoint(MeasurementCoverPosition,
		map[string]string{"entry_id": d.EntryID},
		map[string]any{
			"position":      d.Position,
			"sun_azimuth":   d.Sun.Azimuth,
			"sun_elevation": d.Sun.Elevation,
			"distance":      d.Distance,
			"sun_in_window": d.SunInWindow,
		},
		timestampOrNow(d.UpdatedAt),
	)
}

func timestampOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}
