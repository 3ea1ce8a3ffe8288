// Package entity is the host side of number entities: it registers them,
// attaches them once, enforces their bounds and writes their state through
// to restore storage and state listeners.
//
// A number entity only owns its semantics (what its value means and what
// setting it does). Everything a user-facing surface needs, such as range
// checks, persistence and fan-out to MQTT, InfluxDB and WebSocket clients,
// lives in the Platform:
//
//	p := entity.NewPlatform(store)
//	p.AddListener(mqttPublisher)
//	number.SetupEntry(entry, coord, p.AddEntities)
//	if err := p.AttachAll(ctx); err != nil {
//	    log.Warn("attach failed", "error", err)
//	}
//	err := p.SetValue(ctx, uniqueID, 0.8)
package entity
