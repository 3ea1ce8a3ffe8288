package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/adaptive-cover/internal/infrastructure/config"
)

const streamQueueSize = 256

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Access is controlled by the bearer token.
	CheckOrigin: func(_ *http.Request) bool { return true },
}

// inboundFrame is a client frame with its payload left encoded.
type inboundFrame struct {
	Type    string          `json:"type"`
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload"`
}

// stream is one WebSocket client and the channels it follows.
type stream struct {
	hub  *Hub
	conn *websocket.Conn
	out  chan []byte

	mu      sync.Mutex
	filters map[string]struct{}
	closed  bool
}

func newStream(hub *Hub, conn *websocket.Conn) *stream {
	return &stream{
		hub:     hub,
		conn:    conn,
		out:     make(chan []byte, streamQueueSize),
		filters: make(map[string]struct{}),
	}
}

// handleWebSocket upgrades the connection. authMiddleware has already
// checked the token.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	st := newStream(s.hub, conn)
	s.hub.join(st)

	go st.writeLoop(s.wsCfg)
	go st.readLoop(s.wsCfg)
}

// follows reports whether the stream wants channel events about key.
func (s *stream) follows(channel, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.filters[channel]; ok {
		return true
	}
	if key == "" {
		return false
	}
	_, ok := s.filters[channel+"/"+key]
	return ok
}

// enqueue queues a frame without blocking. It returns false when the
// stream is closed or its queue is full.
func (s *stream) enqueue(frame []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.out <- frame:
		return true
	default:
		return false
	}
}

// shutdown closes the queue once; writeLoop then sends a close frame.
func (s *stream) shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.out)
	}
}

func (s *stream) readLoop(cfg config.WebSocketConfig) {
	defer func() {
		s.hub.leave(s)
		_ = s.conn.Close()
	}()

	idle := time.Duration(cfg.PingInterval+cfg.PongTimeout) * time.Second
	extend := func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(idle))
	}

	s.conn.SetReadLimit(int64(cfg.MaxMessageSize))
	_ = extend("")
	s.conn.SetPongHandler(extend)

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.hub.logger.Warn("websocket read error", "error", err)
			}
			return
		}
		_ = extend("")
		s.dispatch(raw)
	}
}

func (s *stream) writeLoop(cfg config.WebSocketConfig) {
	ping := time.NewTicker(time.Duration(cfg.PingInterval) * time.Second)
	defer func() {
		ping.Stop()
		_ = s.conn.Close()
	}()

	writeWait := time.Duration(cfg.PongTimeout) * time.Second
	write := func(kind int, data []byte) error {
		_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
		return s.conn.WriteMessage(kind, data)
	}

	for {
		select {
		case frame, ok := <-s.out:
			if !ok {
				_ = write(websocket.CloseMessage, nil)
				return
			}
			if err := write(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ping.C:
			if err := write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *stream) dispatch(raw []byte) {
	var in inboundFrame
	if err := json.Unmarshal(raw, &in); err != nil {
		s.replyError("", "invalid JSON message")
		return
	}

	switch in.Type {
	case WSTypeSubscribe:
		channels, ok := s.channels(in)
		if !ok {
			return
		}
		s.mu.Lock()
		for _, ch := range channels {
			s.filters[ch] = struct{}{}
		}
		s.mu.Unlock()
		s.reply(in.ID, WSTypeResponse, map[string]any{"subscribed": channels})
		s.hub.replayStates(s)

	case WSTypeUnsubscribe:
		channels, ok := s.channels(in)
		if !ok {
			return
		}
		s.mu.Lock()
		for _, ch := range channels {
			delete(s.filters, ch)
		}
		s.mu.Unlock()
		s.reply(in.ID, WSTypeResponse, map[string]any{"unsubscribed": channels})

	case WSTypePing:
		s.reply(in.ID, WSTypePong, nil)

	default:
		s.replyError(in.ID, "unknown message type: "+in.Type)
	}
}

// channels decodes and checks the channel list of a subscribe or
// unsubscribe frame, replying with an error when it is unusable.
func (s *stream) channels(in inboundFrame) ([]string, bool) {
	var p WSSubscribePayload
	if len(in.Payload) == 0 || json.Unmarshal(in.Payload, &p) != nil {
		s.replyError(in.ID, "invalid "+in.Type+" payload")
		return nil, false
	}
	if len(p.Channels) == 0 {
		s.replyError(in.ID, in.Type+" needs at least one channel")
		return nil, false
	}
	for _, ch := range p.Channels {
		if !knownChannel(ch) {
			s.replyError(in.ID, "unknown channel: "+ch)
			return nil, false
		}
	}
	return p.Channels, true
}

func (s *stream) reply(id, frameType string, payload any) {
	data, err := json.Marshal(WSMessage{
		Type:      frameType,
		ID:        id,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   payload,
	})
	if err != nil {
		return
	}
	s.enqueue(data)
}

func (s *stream) replyError(id, message string) {
	s.reply(id, WSTypeError, map[string]string{"message": message})
}
