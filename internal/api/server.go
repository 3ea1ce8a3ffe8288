package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/adaptive-cover/internal/audit"
	"github.com/nerrad567/adaptive-cover/internal/coordinator"
	"github.com/nerrad567/adaptive-cover/internal/entity"
	"github.com/nerrad567/adaptive-cover/internal/infrastructure/config"
	"github.com/nerrad567/adaptive-cover/internal/infrastructure/logging"
)

// gracefulShutdownTimeout bounds how long Close waits for in-flight requests.
const gracefulShutdownTimeout = 10 * time.Second

// EntityService is the entity platform as seen by the API.
type EntityService interface {
	List() []entity.State
	State(uniqueID string) (entity.State, error)
	SetValue(ctx context.Context, uniqueID string, v float64) error
}

// CoverSource looks up entry coordinators.
type CoverSource interface {
	Get(entryID string) (*coordinator.Coordinator, error)
}

// AuditLog lists recorded value changes.
type AuditLog interface {
	List(ctx context.Context, filter audit.Filter) (*audit.ListResult, error)
}

// HealthChecker is implemented by the database, MQTT and InfluxDB clients.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	WS       config.WebSocketConfig
	Security config.SecurityConfig
	Logger   *logging.Logger
	Entities EntityService
	Covers   CoverSource

	// Audit serves /audit when set. Optional.
	Audit AuditLog

	// Checks are reported by /health, keyed by name. Optional.
	Checks map[string]HealthChecker

	Version string
}

// Server is the HTTP API server.
type Server struct {
	cfg      config.APIConfig
	wsCfg    config.WebSocketConfig
	secCfg   config.SecurityConfig
	logger   *logging.Logger
	entities EntityService
	covers   CoverSource
	audit    AuditLog
	checks   map[string]HealthChecker
	version  string

	hub    *Hub
	server *http.Server
	cancel context.CancelFunc
}

// New creates a server. It does not listen until Start.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Entities == nil {
		return nil, fmt.Errorf("entity service is required")
	}
	if deps.Covers == nil {
		return nil, fmt.Errorf("cover source is required")
	}

	hub := NewHub(deps.WS, deps.Logger)
	hub.SetSnapshot(deps.Entities.List)

	return &Server{
		cfg:      deps.Config,
		wsCfg:    deps.WS,
		secCfg:   deps.Security,
		logger:   deps.Logger,
		entities: deps.Entities,
		covers:   deps.Covers,
		audit:    deps.Audit,
		checks:   deps.Checks,
		version:  deps.Version,
		hub:      hub,
	}, nil
}

// Hub returns the WebSocket hub so it can be registered as a state listener
// before the server starts.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start runs the hub and listens in the background.
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)
	go s.hub.Run(srvCtx)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server listening", "address", s.server.Addr, "auth", s.authEnabled())
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close stops the hub and shuts the listener down gracefully.
func (s *Server) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck reports whether the server has been started.
func (s *Server) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("api health check: %w", err)
	}
	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}

func (s *Server) authEnabled() bool {
	return s.secCfg.JWT.Secret != ""
}
