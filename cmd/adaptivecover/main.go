// Adaptive Cover - sun-driven cover positioning service.
//
// The service computes blind and awning positions from the sun's position and
// each window's geometry, and exposes a per-cover "shaded area distance"
// number entity over HTTP, WebSocket and MQTT.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	_ "github.com/nerrad567/adaptive-cover/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// configEnvVar overrides defaultConfigPath when --config is not given.
const configEnvVar = "ADAPTIVECOVER_CONFIG"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := NewCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// NewCommand builds the root command and its subcommands.
func NewCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "adaptivecover",
		Short:         "Sun-driven cover positioning service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"path to the YAML config file (default $"+configEnvVar+" or "+defaultConfigPath+")")

	resolve := func() string { return resolveConfigPath(configPath) }

	cmd.AddCommand(
		NewServeCommand(resolve),
		NewMigrateCommand(resolve),
		NewPruneCommand(resolve),
		NewTokenCommand(resolve),
		NewVersionCommand(),
	)
	return cmd
}

// NewVersionCommand prints build information.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s %s %s\n", version, commit, date)
		},
	}
}

// resolveConfigPath picks the flag value, then the environment, then the default.
func resolveConfigPath(flag string) string {
	if flag != "" {
		return flag
	}
	if path := os.Getenv(configEnvVar); path != "" {
		return path
	}
	return defaultConfigPath
}
