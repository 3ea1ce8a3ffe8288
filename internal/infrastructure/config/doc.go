// Package config handles loading and validating Adaptive Cover Core configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables (ADAPTIVECOVER_*)
//   - Validation of required fields and cover entries
//   - Default value handling
//
// Sensitive values (MQTT password, InfluxDB token, JWT secret) should be
// provided through environment variables rather than the config file.
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    return err
//	}
//	for _, entry := range cfg.Entries {
//	    fmt.Println(entry.ID, entry.SensorType)
//	}
package config
