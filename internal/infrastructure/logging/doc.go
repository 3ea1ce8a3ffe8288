// Package logging provides structured logging for Adaptive Cover Core.
//
// It wraps log/slog so every component logs with the same handler, level
// filtering and default fields (service, version).
//
// Configuration lives in the logging section of config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Usage:
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	coordLog := logger.With("component", "coordinator", "entry_id", id)
//	coordLog.Info("cover refreshed", "position", 42)
//
// Never log secrets, tokens or passwords.
package logging
