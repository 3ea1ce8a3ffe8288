package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeConfig writes content to a temporary config file and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
site:
  id: "test-site"
  location:
    latitude: 51.5
    longitude: -0.12
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
mqtt:
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-client"
  qos: 1
api:
  port: 8080
coordinator:
  update_interval: 30s
entries:
  - id: "living-room"
    name: "Living Room"
    sensor_type: "cover_blind"
    options:
      distance: 0.8
      window_azimuth: 180
      window_height: 2.4
  - id: "terrace"
    sensor_type: "cover_tilt"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Site.ID != "test-site" {
		t.Errorf("Site.ID = %q, want %q", cfg.Site.ID, "test-site")
	}
	if cfg.Site.Location.Latitude != 51.5 {
		t.Errorf("Site.Location.Latitude = %v, want 51.5", cfg.Site.Location.Latitude)
	}
	if cfg.Coordinator.UpdateInterval != 30*time.Second {
		t.Errorf("Coordinator.UpdateInterval = %v, want 30s", cfg.Coordinator.UpdateInterval)
	}
	if len(cfg.Entries) != 2 {
		t.Fatalf("len(Entries) = %d, want 2", len(cfg.Entries))
	}

	living := cfg.Entries[0]
	if living.Options.Distance == nil || *living.Options.Distance != 0.8 {
		t.Errorf("Entries[0].Options.Distance = %v, want 0.8", living.Options.Distance)
	}
	if living.Options.WindowHeight != 2.4 {
		t.Errorf("Entries[0].Options.WindowHeight = %v, want 2.4", living.Options.WindowHeight)
	}

	terrace := cfg.Entries[1]
	if terrace.Options.Distance != nil {
		t.Errorf("Entries[1].Options.Distance = %v, want nil", *terrace.Options.Distance)
	}
	if terrace.SensorType != SensorTypeTilt {
		t.Errorf("Entries[1].SensorType = %q, want %q", terrace.SensorType, SensorTypeTilt)
	}
}

func TestLoad_EntryDefaults(t *testing.T) {
	content := `
site:
  id: "test-site"
entries:
  - name: "No ID"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	e := cfg.Entries[0]
	if len(e.ID) != 32 {
		t.Errorf("generated ID = %q, want 32 hex characters", e.ID)
	}
	if e.SensorType != SensorTypeBlind {
		t.Errorf("SensorType = %q, want %q", e.SensorType, SensorTypeBlind)
	}
	if e.Options.FOVLeft == nil || *e.Options.FOVLeft != 90 {
		t.Errorf("FOVLeft = %v, want 90", e.Options.FOVLeft)
	}
	if e.Options.FOVRight == nil || *e.Options.FOVRight != 90 {
		t.Errorf("FOVRight = %v, want 90", e.Options.FOVRight)
	}
	if e.Options.DefaultPosition != 60 {
		t.Errorf("DefaultPosition = %d, want 60", e.Options.DefaultPosition)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ADAPTIVECOVER_DATABASE_PATH", "/env/cover.db")
	t.Setenv("ADAPTIVECOVER_MQTT_HOST", "broker.local")
	t.Setenv("ADAPTIVECOVER_JWT_SECRET", "env-secret-key-at-least-32-characters")

	cfg, err := Load(writeConfig(t, "site:\n  id: \"test-site\"\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Path != "/env/cover.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/env/cover.db")
	}
	if cfg.MQTT.Broker.Host != "broker.local" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "broker.local")
	}
	if cfg.Security.JWT.Secret != "env-secret-key-at-least-32-characters" {
		t.Error("Security.JWT.Secret was not overridden from the environment")
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := defaultConfig()
		cfg.Entries = []EntryConfig{{
			ID:         "living-room",
			SensorType: SensorTypeBlind,
			Options:    EntryOptions{Distance: floatPtr(0.5), DefaultPosition: 60},
		}}
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:    "missing site ID",
			mutate:  func(c *Config) { c.Site.ID = "" },
			wantErr: "site.id is required",
		},
		{
			name:    "missing database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: "database.path is required",
		},
		{
			name:    "invalid QoS",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: "mqtt.qos",
		},
		{
			name:    "invalid API port",
			mutate:  func(c *Config) { c.API.Port = 0 },
			wantErr: "api.port",
		},
		{
			name:    "short JWT secret",
			mutate:  func(c *Config) { c.Security.JWT.Secret = "short" },
			wantErr: "security.jwt.secret",
		},
		{
			name:    "latitude out of range",
			mutate:  func(c *Config) { c.Site.Location.Latitude = 91 },
			wantErr: "latitude",
		},
		{
			name:    "unknown sensor type",
			mutate:  func(c *Config) { c.Entries[0].SensorType = "cover_garage" },
			wantErr: "sensor_type",
		},
		{
			name:    "distance above maximum",
			mutate:  func(c *Config) { c.Entries[0].Options.Distance = floatPtr(2.5) },
			wantErr: "options.distance",
		},
		{
			name:    "distance below minimum",
			mutate:  func(c *Config) { c.Entries[0].Options.Distance = floatPtr(0.05) },
			wantErr: "options.distance",
		},
		{
			name: "duplicate entry id",
			mutate: func(c *Config) {
				c.Entries = append(c.Entries, EntryConfig{ID: "living-room", SensorType: SensorTypeAwning})
			},
			wantErr: "duplicated",
		},
		{
			name:    "default position out of range",
			mutate:  func(c *Config) { c.Entries[0].Options.DefaultPosition = 120 },
			wantErr: "default_position",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() error = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Timeouts(t *testing.T) {
	cfg := defaultConfig()

	if got := cfg.GetReadTimeout(); got != 30*time.Second {
		t.Errorf("GetReadTimeout() = %v, want 30s", got)
	}
	if got := cfg.GetWriteTimeout(); got != 30*time.Second {
		t.Errorf("GetWriteTimeout() = %v, want 30s", got)
	}
	if got := cfg.GetIdleTimeout(); got != 60*time.Second {
		t.Errorf("GetIdleTimeout() = %v, want 60s", got)
	}
}

func TestNewEntryID(t *testing.T) {
	a := NewEntryID("home", "Living Room")
	if len(a) != 32 || strings.Contains(a, "-") {
		t.Errorf("NewEntryID() = %q, want 32 hex characters", a)
	}
	if b := NewEntryID("home", "Living Room"); b != a {
		t.Errorf("NewEntryID() = %q, then %q, want the same id", a, b)
	}
	if c := NewEntryID("home", "Terrace"); c == a {
		t.Errorf("NewEntryID() for a different name = %q, want a different id", c)
	}
	if d := NewEntryID("cabin", "Living Room"); d == a {
		t.Errorf("NewEntryID() for a different site = %q, want a different id", d)
	}
}

func TestLoad_DerivedIDStableAcrossLoads(t *testing.T) {
	content := `
site:
  id: "test-site"
entries:
  - name: "Living Room"
`
	path := writeConfig(t, content)

	first, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	second, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if first.Entries[0].ID != second.Entries[0].ID {
		t.Errorf("ID = %q, then %q, want the same id on every load", first.Entries[0].ID, second.Entries[0].ID)
	}
	if want := NewEntryID("test-site", "Living Room"); first.Entries[0].ID != want {
		t.Errorf("ID = %q, want %q", first.Entries[0].ID, want)
	}
}

func TestLoad_EntryIdentityErrors(t *testing.T) {
	tests := []struct {
		name    string
		entries string
		wantErr string
	}{
		{
			name: "no id and no name",
			entries: `
  - sensor_type: "blind"`,
			wantErr: "entries[0].id or .name is required",
		},
		{
			name: "same name twice",
			entries: `
  - name: "Living Room"
  - name: "Living Room"`,
			wantErr: "is duplicated",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := "site:\n  id: \"test-site\"\nentries:" + tt.entries + "\n"
			_, err := Load(writeConfig(t, content))
			if err == nil {
				t.Fatal("Load() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_ExplicitZeroFOVKept(t *testing.T) {
	content := `
site:
  id: "test-site"
entries:
  - name: "Corner"
    options:
      fov_left: 0
      fov_right: 45
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	o := cfg.Entries[0].Options
	if o.FOVLeft == nil || *o.FOVLeft != 0 {
		t.Errorf("FOVLeft = %v, want 0", o.FOVLeft)
	}
	if o.FOVRight == nil || *o.FOVRight != 45 {
		t.Errorf("FOVRight = %v, want 45", o.FOVRight)
	}
}
