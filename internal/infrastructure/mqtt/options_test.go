package mqtt

import (
	"encoding/json"
	"testing"

	"github.com/nerrad567/adaptive-cover/internal/infrastructure/config"
)

func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Enabled: true,
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "adaptivecover-test",
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

func TestBuildClientOptions(t *testing.T) {
	cfg := testConfig()
	cfg.Auth = config.MQTTAuthConfig{Username: "cover", Password: "secret"}

	opts := buildClientOptions(cfg)

	if len(opts.Servers) != 1 || opts.Servers[0].String() != "tcp://127.0.0.1:1883" {
		t.Errorf("Servers = %v, want [tcp://127.0.0.1:1883]", opts.Servers)
	}
	if opts.ClientID != "adaptivecover-test" {
		t.Errorf("ClientID = %q, want %q", opts.ClientID, "adaptivecover-test")
	}
	if opts.Username != "cover" || opts.Password != "secret" {
		t.Errorf("credentials = (%q, %q), want (cover, secret)", opts.Username, opts.Password)
	}
	if !opts.WillEnabled || opts.WillTopic != "adaptivecover/system/status" || !opts.WillRetained {
		t.Errorf("will = (%v, %q, retained=%v), want enabled retained system status", opts.WillEnabled, opts.WillTopic, opts.WillRetained)
	}

	var will systemStatus
	if err := json.Unmarshal(opts.WillPayload, &will); err != nil {
		t.Fatalf("will payload is not JSON: %v", err)
	}
	if will.Status != "offline" || will.Reason != "unexpected_disconnect" {
		t.Errorf("will payload = %+v, want offline/unexpected_disconnect", will)
	}
}

func TestBuildClientOptions_TLS(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.TLS = true
	cfg.Broker.Port = 8883

	opts := buildClientOptions(cfg)

	if opts.Servers[0].String() != "ssl://127.0.0.1:8883" {
		t.Errorf("Servers[0] = %v, want ssl://127.0.0.1:8883", opts.Servers[0])
	}
	if opts.TLSConfig == nil || opts.TLSConfig.MinVersion != tlsMinVersion {
		t.Error("TLSConfig not set with minimum version")
	}
}

func TestValidatePublish(t *testing.T) {
	if err := validatePublish("", nil, 1); err == nil {
		t.Error("validatePublish(empty topic) = nil, want error")
	}
	if err := validatePublish("t", nil, 3); err != ErrInvalidQoS {
		t.Errorf("validatePublish(qos 3) = %v, want ErrInvalidQoS", err)
	}
	if err := validatePublish("t", make([]byte, maxPayloadSize+1), 1); err == nil {
		t.Error("validatePublish(oversized) = nil, want error")
	}
	if err := validatePublish("t", []byte("ok"), 2); err != nil {
		t.Errorf("validatePublish(valid) = %v, want nil", err)
	}
}

func TestClient_NotConnected(t *testing.T) {
	c := &Client{cfg: testConfig(), subscriptions: make(map[string]subscription), logger: noopLogger{}}

	if c.IsConnected() {
		t.Error("IsConnected() = true for unconnected client")
	}
	if err := c.Publish("t", []byte("x"), 1, false); err != ErrNotConnected {
		t.Errorf("Publish() error = %v, want ErrNotConnected", err)
	}
	if err := c.Subscribe("t", 1, func(string, []byte) error { return nil }); err != ErrNotConnected {
		t.Errorf("Subscribe() error = %v, want ErrNotConnected", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close() error = %v, want nil", err)
	}
}

type captureLogger struct {
	warns, errors int
}

func (*captureLogger) Info(string, ...any)    {}
func (l *captureLogger) Warn(string, ...any)  { l.warns++ }
func (l *captureLogger) Error(string, ...any) { l.errors++ }

func TestRunHandler(t *testing.T) {
	log := &captureLogger{}

	runHandler(log, func(string, []byte) error { return ErrInvalidPayload }, "t", nil)
	if log.warns != 1 {
		t.Errorf("warns = %d, want 1 for handler error", log.warns)
	}

	runHandler(log, func(string, []byte) error { panic("boom") }, "t", nil)
	if log.errors != 1 {
		t.Errorf("errors = %d, want 1 for recovered panic", log.errors)
	}
}
