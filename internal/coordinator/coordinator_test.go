package coordinator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/adaptive-cover/internal/cover"
)

var fixedNow = time.Date(2026, 6, 21, 12, 0, 0, 0, time.UTC)

func testEntry() cover.Entry {
	return cover.Entry{
		ID:         "living-room",
		Name:       "Living Room",
		SensorType: cover.SensorTypeBlind,
		Options: cover.Options{
			WindowAzimuth:   180,
			FOVLeft:         90,
			FOVRight:        90,
			WindowHeight:    2.1,
			DefaultPosition: 60,
		},
	}
}

// recordingUpdate returns an UpdateFunc that records the inputs it sees.
type recordingUpdate struct {
	mu     sync.Mutex
	calls  []Inputs
	result cover.Result
	err    error
}

func (r *recordingUpdate) fn(_ context.Context, in Inputs) (cover.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, in)
	return r.result, r.err
}

func (r *recordingUpdate) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func newTestCoordinator(upd *recordingUpdate) *Coordinator {
	return New(testEntry(), cover.Site{Latitude: 51.5, Longitude: -0.12},
		WithClock(func() time.Time { return fixedNow }),
		WithUpdateFunc(upd.fn),
	)
}

func TestCoordinator_DistanceOverride(t *testing.T) {
	c := newTestCoordinator(&recordingUpdate{})

	if got := c.DistanceOverride(); got != nil {
		t.Fatalf("DistanceOverride() = %v, want nil", *got)
	}

	c.SetDistanceOverride(0.8)
	got := c.DistanceOverride()
	if got == nil || *got != 0.8 {
		t.Fatalf("DistanceOverride() = %v, want 0.8", got)
	}

	// The returned pointer is a copy.
	*got = 1.9
	if again := c.DistanceOverride(); *again != 0.8 {
		t.Errorf("DistanceOverride() after caller mutation = %v, want 0.8", *again)
	}
}

func TestCoordinator_SetDistanceOverrideDoesNotRefresh(t *testing.T) {
	upd := &recordingUpdate{}
	c := newTestCoordinator(upd)

	c.SetDistanceOverride(1.2)

	if upd.count() != 0 {
		t.Errorf("update calls = %d, want 0", upd.count())
	}
}

func TestCoordinator_Refresh(t *testing.T) {
	upd := &recordingUpdate{result: cover.Result{Position: 42, SunInWindow: true}}
	c := newTestCoordinator(upd)
	c.SetDistanceOverride(0.7)

	var notified []Data
	c.AddListener(func(d Data) { notified = append(notified, d) })

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	if upd.count() != 1 {
		t.Fatalf("update calls = %d, want 1", upd.count())
	}
	in := upd.calls[0]
	if in.DistanceOverride == nil || *in.DistanceOverride != 0.7 {
		t.Errorf("Inputs.DistanceOverride = %v, want 0.7", in.DistanceOverride)
	}
	if !in.Now.Equal(fixedNow) {
		t.Errorf("Inputs.Now = %v, want %v", in.Now, fixedNow)
	}

	data, ok := c.Data()
	if !ok {
		t.Fatal("Data() ok = false after successful refresh")
	}
	if data.Position != 42 {
		t.Errorf("Data().Position = %d, want 42", data.Position)
	}
	if data.EntryID != "living-room" {
		t.Errorf("Data().EntryID = %q, want %q", data.EntryID, "living-room")
	}
	if !c.LastUpdateSuccess() {
		t.Error("LastUpdateSuccess() = false, want true")
	}
	if len(notified) != 1 {
		t.Errorf("listener calls = %d, want 1", len(notified))
	}
}

func TestCoordinator_RefreshFailure(t *testing.T) {
	boom := errors.New("sensor offline")
	upd := &recordingUpdate{result: cover.Result{Position: 10}}
	c := newTestCoordinator(upd)

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("first Refresh() error = %v", err)
	}

	upd.err = boom
	notified := 0
	c.AddListener(func(Data) { notified++ })

	err := c.Refresh(context.Background())
	if !errors.Is(err, ErrUpdateFailed) {
		t.Errorf("Refresh() error = %v, want ErrUpdateFailed", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("Refresh() error = %v, want it to wrap %v", err, boom)
	}
	if c.LastUpdateSuccess() {
		t.Error("LastUpdateSuccess() = true after failed refresh")
	}
	if data, _ := c.Data(); data.Position != 10 {
		t.Errorf("Data().Position = %d, want previous value 10", data.Position)
	}
	if notified != 0 {
		t.Errorf("listener calls = %d, want 0 on failure", notified)
	}
}

func TestCoordinator_RefreshCancelledContext(t *testing.T) {
	upd := &recordingUpdate{}
	c := newTestCoordinator(upd)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := c.Refresh(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Refresh() error = %v, want context.Canceled", err)
	}
	if upd.count() != 0 {
		t.Errorf("update calls = %d, want 0", upd.count())
	}
}

func TestCoordinator_DataBeforeRefresh(t *testing.T) {
	c := newTestCoordinator(&recordingUpdate{})

	if _, ok := c.Data(); ok {
		t.Error("Data() ok = true before any refresh")
	}
	if c.LastUpdateSuccess() {
		t.Error("LastUpdateSuccess() = true before any refresh")
	}
}

func TestCoordinator_RemoveListener(t *testing.T) {
	c := newTestCoordinator(&recordingUpdate{})

	calls := 0
	remove := c.AddListener(func(Data) { calls++ })
	remove()

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if calls != 0 {
		t.Errorf("listener calls = %d, want 0 after removal", calls)
	}
}

func TestInputs_EffectiveDistance(t *testing.T) {
	configured := 1.4
	entry := testEntry()
	override := 0.3

	tests := []struct {
		name       string
		configured *float64
		override   *float64
		want       float64
	}{
		{name: "nothing set", want: cover.DefaultDistance},
		{name: "configured only", configured: &configured, want: 1.4},
		{name: "override wins", configured: &configured, override: &override, want: 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := entry
			e.Options.Distance = tt.configured
			in := Inputs{Entry: e, DistanceOverride: tt.override}
			if got := in.EffectiveDistance(); got != tt.want {
				t.Errorf("EffectiveDistance() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefaultUpdate_UsesOverride(t *testing.T) {
	// Morning sun on a south window: the result depends on the distance.
	morning := time.Date(2026, 6, 21, 9, 0, 0, 0, time.UTC)
	site := cover.Site{Latitude: 51.5, Longitude: -0.12}

	near := 0.2
	far := 1.8
	resNear, err := DefaultUpdate(context.Background(), Inputs{Entry: testEntry(), Site: site, Now: morning, DistanceOverride: &near})
	if err != nil {
		t.Fatalf("DefaultUpdate() error = %v", err)
	}
	resFar, err := DefaultUpdate(context.Background(), Inputs{Entry: testEntry(), Site: site, Now: morning, DistanceOverride: &far})
	if err != nil {
		t.Fatalf("DefaultUpdate() error = %v", err)
	}

	if resNear.Distance != near || resFar.Distance != far {
		t.Errorf("Result.Distance = (%v, %v), want (%v, %v)", resNear.Distance, resFar.Distance, near, far)
	}
	if resFar.Position < resNear.Position {
		t.Errorf("position at %vm = %d, want >= position at %vm = %d", far, resFar.Position, near, resNear.Position)
	}
}

func TestCoordinator_Run(t *testing.T) {
	upd := &recordingUpdate{}
	c := newTestCoordinator(upd)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for upd.count() < 2 {
		select {
		case <-deadline:
			t.Fatalf("update calls = %d after 2s, want >= 2", upd.count())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestCoordinator_RunDisabled(t *testing.T) {
	c := newTestCoordinator(&recordingUpdate{})

	done := make(chan struct{})
	go func() {
		c.Run(context.Background(), 0)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run() with zero interval did not return")
	}
}
