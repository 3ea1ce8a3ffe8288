package api

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/nerrad567/adaptive-cover/internal/coordinator"
	"github.com/nerrad567/adaptive-cover/internal/entity"
	"github.com/nerrad567/adaptive-cover/internal/infrastructure/config"
	"github.com/nerrad567/adaptive-cover/internal/infrastructure/logging"
)

// Event channels. A client may follow a whole channel or narrow it to one
// entity or entry with "<channel>/<id>", e.g.
// "entity.state_changed/number.office_distance" or "cover.updated/office".
const (
	ChannelEntityState  = "entity.state_changed"
	ChannelCoverUpdated = "cover.updated"
)

// Frame types.
const (
	WSTypeSubscribe   = "subscribe"
	WSTypeUnsubscribe = "unsubscribe"
	WSTypePing        = "ping"
	WSTypePong        = "pong"
	WSTypeEvent       = "event"
	WSTypeResponse    = "response"
	WSTypeError       = "error"
)

// WSMessage is a frame sent to a WebSocket client. Clients send the same
// shape; subscribe and unsubscribe carry a WSSubscribePayload.
type WSMessage struct {
	Type      string `json:"type"`
	ID        string `json:"id,omitempty"`
	EventType string `json:"event_type,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Payload   any    `json:"payload,omitempty"`
}

// WSSubscribePayload lists the channels to follow or drop.
type WSSubscribePayload struct {
	Channels []string `json:"channels"`
}

// knownChannel reports whether ch names a channel, optionally scoped.
func knownChannel(ch string) bool {
	base, _, _ := strings.Cut(ch, "/")
	return base == ChannelEntityState || base == ChannelCoverUpdated
}

// Hub fans number entity state changes and coordinator updates out to
// WebSocket clients. It is an entity.StateListener.
type Hub struct {
	cfg    config.WebSocketConfig
	logger *logging.Logger

	mu       sync.RWMutex
	streams  map[*stream]struct{}
	snapshot func() []entity.State
}

// NewHub creates a hub with no connected clients.
func NewHub(cfg config.WebSocketConfig, logger *logging.Logger) *Hub {
	return &Hub{
		cfg:     cfg,
		logger:  logger,
		streams: make(map[*stream]struct{}),
	}
}

// SetSnapshot sets the source of current entity states. A client that
// subscribes to entity state changes first receives one event per matching
// entity so it does not wait for the next change to learn the value.
func (h *Hub) SetSnapshot(fn func() []entity.State) {
	h.mu.Lock()
	h.snapshot = fn
	h.mu.Unlock()
}

// Run blocks until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()

	h.mu.Lock()
	streams := h.streams
	h.streams = make(map[*stream]struct{})
	h.mu.Unlock()

	for s := range streams {
		s.shutdown()
		if s.conn != nil {
			_ = s.conn.Close()
		}
	}
}

// HandleState publishes s on ChannelEntityState.
func (h *Hub) HandleState(_ context.Context, s entity.State) error {
	h.publish(ChannelEntityState, s.UniqueID, s)
	return nil
}

// BroadcastCover publishes coordinator data on ChannelCoverUpdated. It has
// the coordinator.Listener signature.
func (h *Hub) BroadcastCover(d coordinator.Data) {
	h.publish(ChannelCoverUpdated, d.EntryID, d)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.streams)
}

func (h *Hub) join(s *stream) {
	h.mu.Lock()
	h.streams[s] = struct{}{}
	n := len(h.streams)
	h.mu.Unlock()
	h.logger.Debug("websocket client connected", "clients", n)
}

// leave drops s. Calling it more than once is harmless.
func (h *Hub) leave(s *stream) {
	h.mu.Lock()
	_, ok := h.streams[s]
	delete(h.streams, s)
	n := len(h.streams)
	h.mu.Unlock()

	if !ok {
		return
	}
	s.shutdown()
	h.logger.Debug("websocket client disconnected", "clients", n)
}

func (h *Hub) publish(channel, key string, payload any) {
	frame, err := eventFrame(channel, payload)
	if err != nil {
		h.logger.Error("failed to encode websocket event", "channel", channel, "error", err)
		return
	}

	h.mu.RLock()
	targets := make([]*stream, 0, len(h.streams))
	for s := range h.streams {
		if s.follows(channel, key) {
			targets = append(targets, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range targets {
		if !s.enqueue(frame) {
			h.logger.Debug("websocket client lagging, event dropped", "channel", channel, "key", key)
		}
	}
}

// replayStates sends s the current value of every entity it follows.
func (h *Hub) replayStates(s *stream) {
	h.mu.RLock()
	snapshot := h.snapshot
	h.mu.RUnlock()
	if snapshot == nil {
		return
	}

	for _, st := range snapshot() {
		if !s.follows(ChannelEntityState, st.UniqueID) {
			continue
		}
		frame, err := eventFrame(ChannelEntityState, st)
		if err != nil {
			continue
		}
		s.enqueue(frame)
	}
}

func eventFrame(channel string, payload any) ([]byte, error) {
	return json.Marshal(WSMessage{
		Type:      WSTypeEvent,
		EventType: channel,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   payload,
	})
}
