package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Sensor types accepted for an entry. They mirror cover.SensorType but are
// kept as plain strings here so the config package stays dependency-free.
const (
	SensorTypeBlind  = "cover_blind"
	SensorTypeAwning = "cover_awning"
	SensorTypeTilt   = "cover_tilt"
)

// Distance bounds for the shaded-area distance option (metres).
const (
	minDistance = 0.1
	maxDistance = 2.0
)

// Config is the root configuration structure for Adaptive Cover Core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site        SiteConfig        `yaml:"site"`
	Database    DatabaseConfig    `yaml:"database"`
	MQTT        MQTTConfig        `yaml:"mqtt"`
	API         APIConfig         `yaml:"api"`
	WebSocket   WebSocketConfig   `yaml:"websocket"`
	InfluxDB    InfluxDBConfig    `yaml:"influxdb"`
	Logging     LoggingConfig     `yaml:"logging"`
	Security    SecurityConfig    `yaml:"security"`
	Coordinator CoordinatorConfig `yaml:"coordinator"`
	Entries     []EntryConfig     `yaml:"entries"`
}

// SiteConfig contains site-specific information.
type SiteConfig struct {
	ID       string         `yaml:"id"`
	Name     string         `yaml:"name"`
	Timezone string         `yaml:"timezone"`
	Location LocationConfig `yaml:"location"`
}

// LocationConfig contains geographic coordinates for sun position calculations.
type LocationConfig struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings (seconds).
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
}

// APITimeoutConfig contains HTTP timeout settings (seconds).
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	MaxMessageSize int `yaml:"max_message_size"`
	PingInterval   int `yaml:"ping_interval"`
	PongTimeout    int `yaml:"pong_timeout"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SecurityConfig contains security settings.
type SecurityConfig struct {
	JWT JWTConfig `yaml:"jwt"`
}

// JWTConfig contains JWT token settings.
type JWTConfig struct {
	Secret         string `yaml:"secret"`
	AccessTokenTTL int    `yaml:"access_token_ttl"` // minutes
}

// CoordinatorConfig controls the periodic cover recalculation.
type CoordinatorConfig struct {
	UpdateInterval time.Duration `yaml:"update_interval"`
}

// EntryConfig describes one configured cover.
type EntryConfig struct {
	// ID is the stable entry identifier. Entity unique ids derive from it,
	// so it must not change once restore data exists. Derived from the site
	// id and Name when empty.
	ID         string       `yaml:"id"`
	Name       string       `yaml:"name"`
	SensorType string       `yaml:"sensor_type"`
	Options    EntryOptions `yaml:"options"`
}

// EntryOptions holds the per-cover geometry and tuning values.
type EntryOptions struct {
	// Distance is the default distance to the shaded area in metres.
	// Nil means "not configured"; the number entity falls back to 0.5.
	Distance        *float64 `yaml:"distance,omitempty"`
	WindowAzimuth   float64  `yaml:"window_azimuth"`
	// Nil field-of-view edges default to 90 degrees; an explicit 0 is kept.
	FOVLeft         *float64 `yaml:"fov_left,omitempty"`
	FOVRight        *float64 `yaml:"fov_right,omitempty"`
	WindowHeight    float64  `yaml:"window_height"`
	DefaultPosition int      `yaml:"default_position"`
	MinElevation    *float64 `yaml:"min_elevation,omitempty"`
	MaxElevation    *float64 `yaml:"max_elevation,omitempty"`
	AwningLength    float64  `yaml:"awning_length"`
	AwningAngle     float64  `yaml:"awning_angle"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: ADAPTIVECOVER_SECTION_KEY
// For example: ADAPTIVECOVER_DATABASE_PATH, ADAPTIVECOVER_MQTT_HOST
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	applyEntryDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			ID:       "site-001",
			Name:     "Adaptive Cover",
			Timezone: "UTC",
		},
		Database: DatabaseConfig{
			Path:        "./data/adaptivecover.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Enabled: true,
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "adaptivecover-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Security: SecurityConfig{
			JWT: JWTConfig{
				AccessTokenTTL: 1440,
			},
		},
		Coordinator: CoordinatorConfig{
			UpdateInterval: 2 * time.Minute,
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ADAPTIVECOVER_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	if v := os.Getenv("ADAPTIVECOVER_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("ADAPTIVECOVER_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("ADAPTIVECOVER_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	if v := os.Getenv("ADAPTIVECOVER_API_HOST"); v != "" {
		cfg.API.Host = v
	}

	if v := os.Getenv("ADAPTIVECOVER_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	if v := os.Getenv("ADAPTIVECOVER_JWT_SECRET"); v != "" {
		cfg.Security.JWT.Secret = v
	}
}

const defaultFOV = 90.0

func floatPtr(v float64) *float64 { return &v }

// applyEntryDefaults fills in values the YAML may leave out.
func applyEntryDefaults(cfg *Config) {
	for i := range cfg.Entries {
		e := &cfg.Entries[i]
		if e.ID == "" && e.Name != "" {
			e.ID = NewEntryID(cfg.Site.ID, e.Name)
		}
		if e.SensorType == "" {
			e.SensorType = SensorTypeBlind
		}
		if e.Options.FOVLeft == nil {
			e.Options.FOVLeft = floatPtr(defaultFOV)
		}
		if e.Options.FOVRight == nil {
			e.Options.FOVRight = floatPtr(defaultFOV)
		}
		if e.Options.WindowHeight == 0 {
			e.Options.WindowHeight = 2.1
		}
		if e.Options.DefaultPosition == 0 {
			e.Options.DefaultPosition = 60
		}
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}
	if c.Site.Location.Latitude < -90 || c.Site.Location.Latitude > 90 {
		errs = append(errs, "site.location.latitude must be between -90 and 90")
	}
	if c.Site.Location.Longitude < -180 || c.Site.Location.Longitude > 180 {
		errs = append(errs, "site.location.longitude must be between -180 and 180")
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	// An empty secret disables API authentication; a short one is always a mistake.
	const minJWTSecretLength = 32
	if c.Security.JWT.Secret != "" && len(c.Security.JWT.Secret) < minJWTSecretLength {
		errs = append(errs, "security.jwt.secret must be at least 32 characters")
	}

	if c.Coordinator.UpdateInterval < 0 {
		errs = append(errs, "coordinator.update_interval must not be negative")
	}

	errs = append(errs, c.validateEntries()...)

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// validateEntries checks every configured cover entry.
func (c *Config) validateEntries() []string {
	var errs []string
	seen := make(map[string]bool, len(c.Entries))

	for i, e := range c.Entries {
		prefix := fmt.Sprintf("entries[%d]", i)

		if e.ID == "" {
			errs = append(errs, prefix+".id or .name is required")
		} else if seen[e.ID] {
			errs = append(errs, fmt.Sprintf("%s.id %q is duplicated", prefix, e.ID))
		}
		seen[e.ID] = true

		switch e.SensorType {
		case SensorTypeBlind, SensorTypeAwning, SensorTypeTilt:
		default:
			errs = append(errs, fmt.Sprintf("%s.sensor_type %q is not one of %s, %s, %s",
				prefix, e.SensorType, SensorTypeBlind, SensorTypeAwning, SensorTypeTilt))
		}

		if d := e.Options.Distance; d != nil && (*d < minDistance || *d > maxDistance) {
			errs = append(errs, fmt.Sprintf("%s.options.distance must be between %.1f and %.1f", prefix, minDistance, maxDistance))
		}
		for _, fov := range []struct {
			key string
			v   *float64
		}{{"fov_left", e.Options.FOVLeft}, {"fov_right", e.Options.FOVRight}} {
			if fov.v != nil && (*fov.v < 0 || *fov.v > 90) {
				errs = append(errs, fmt.Sprintf("%s.options.%s must be between 0 and 90", prefix, fov.key))
			}
		}
		if e.Options.WindowHeight < 0 {
			errs = append(errs, prefix+".options.window_height must not be negative")
		}
		if e.Options.DefaultPosition < 0 || e.Options.DefaultPosition > 100 {
			errs = append(errs, prefix+".options.default_position must be between 0 and 100")
		}
	}

	return errs
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
