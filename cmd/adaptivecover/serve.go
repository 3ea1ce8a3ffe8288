package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nerrad567/adaptive-cover/internal/api"
	"github.com/nerrad567/adaptive-cover/internal/audit"
	"github.com/nerrad567/adaptive-cover/internal/coordinator"
	"github.com/nerrad567/adaptive-cover/internal/cover"
	"github.com/nerrad567/adaptive-cover/internal/entity"
	"github.com/nerrad567/adaptive-cover/internal/infrastructure/config"
	"github.com/nerrad567/adaptive-cover/internal/infrastructure/database"
	"github.com/nerrad567/adaptive-cover/internal/infrastructure/influxdb"
	"github.com/nerrad567/adaptive-cover/internal/infrastructure/logging"
	"github.com/nerrad567/adaptive-cover/internal/infrastructure/mqtt"
	"github.com/nerrad567/adaptive-cover/internal/number"
	"github.com/nerrad567/adaptive-cover/internal/restore"
)

// shutdownSaveTimeout bounds the final restore-state flush.
const shutdownSaveTimeout = 5 * time.Second

// NewServeCommand runs the service until interrupted.
func NewServeCommand(configPath func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the adaptive cover service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configPath())
		},
	}
}

// run is the service lifecycle, separated from the command for testability.
func run(ctx context.Context, configPath string) error {
	log := logging.Default()
	log.Info("starting adaptive cover",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded", "path", configPath, "entries", len(cfg.Entries))

	db, err := openDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()

	store := restore.NewSQLiteStore(db.DB)
	store.SetLogger(log)

	platform := entity.NewPlatform(store)
	platform.SetLogger(log)

	auditLog := audit.NewSQLiteRepository(db.DB)
	platform.AddListener(audit.NewRecorder(auditLog))

	covers, err := setupEntries(cfg, platform, log)
	if err != nil {
		return err
	}
	log.Info("entries set up", "covers", len(covers.List()), "entities", platform.Count())

	checks := map[string]api.HealthChecker{"database": db}

	var (
		mqttClient *mqtt.Client
		mqttBridge *mqtt.Bridge
	)
	if cfg.MQTT.Enabled {
		var mqttErr error
		mqttClient, mqttBridge, mqttErr = connectMQTT(cfg, platform, covers, log)
		if mqttErr != nil {
			return mqttErr
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		checks["mqtt"] = mqttClient
	} else {
		log.Info("MQTT disabled")
	}

	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := connectInfluxDB(ctx, cfg, platform, covers, log)
		if influxErr != nil {
			return influxErr
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		checks["influxdb"] = influxClient
	} else {
		log.Info("InfluxDB disabled")
	}

	srv, err := api.New(api.Deps{
		Config:   cfg.API,
		WS:       cfg.WebSocket,
		Security: cfg.Security,
		Logger:   log,
		Entities: platform,
		Covers:   covers,
		Audit:    auditLog,
		Checks:   checks,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	platform.AddListener(srv.Hub())
	for _, c := range covers.List() {
		c.AddListener(srv.Hub().BroadcastCover)
	}

	// A failed initial refresh leaves the entity attached and settable;
	// the periodic loop retries.
	if attachErr := platform.AttachAll(ctx); attachErr != nil {
		log.Warn("some entities failed to attach", "error", attachErr)
	}

	// Set commands are accepted only once every entity has been attached.
	if mqttBridge != nil {
		if subErr := mqttBridge.SubscribeCommands(mqttClient, byte(cfg.MQTT.QoS), platform); subErr != nil {
			return fmt.Errorf("subscribing to MQTT commands: %w", subErr)
		}
	}

	if startErr := srv.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := srv.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete", "update_interval", cfg.Coordinator.UpdateInterval)
	covers.RunAll(ctx, cfg.Coordinator.UpdateInterval)
	// A zero interval disables polling and RunAll returns at once.
	<-ctx.Done()

	log.Info("shutdown signal received, saving state")
	saveCtx, cancel := context.WithTimeout(context.Background(), shutdownSaveTimeout)
	defer cancel()
	if saveErr := platform.SaveAll(saveCtx); saveErr != nil {
		log.Error("error saving entity state", "error", saveErr)
	}

	log.Info("adaptive cover stopped")
	return nil
}

func openDatabase(ctx context.Context, cfg *config.Config, log *logging.Logger) (*database.DB, error) {
	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	log.Info("database connected", "path", cfg.Database.Path)

	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	log.Info("database migrations complete")
	return db, nil
}

// setupEntries creates one coordinator per configured entry and registers
// its number entities with platform.
func setupEntries(cfg *config.Config, platform *entity.Platform, log *logging.Logger) (*coordinator.Registry, error) {
	site := cover.Site{
		Latitude:  cfg.Site.Location.Latitude,
		Longitude: cfg.Site.Location.Longitude,
	}

	covers := coordinator.NewRegistry()
	for _, ec := range cfg.Entries {
		entry, err := entryFromConfig(ec)
		if err != nil {
			return nil, err
		}

		entryLog := log.With("entry_id", entry.ID)
		coord := coordinator.New(entry, site, coordinator.WithLogger(entryLog))
		if err := covers.Add(coord); err != nil {
			return nil, fmt.Errorf("adding entry %s: %w", entry.ID, err)
		}
		number.SetupEntry(entry, coord, platform.AddEntities, number.WithLogger(entryLog))
	}
	return covers, nil
}

// entryFromConfig converts a config entry into the domain type.
func entryFromConfig(ec config.EntryConfig) (cover.Entry, error) {
	st, err := cover.ParseSensorType(ec.SensorType)
	if err != nil {
		return cover.Entry{}, fmt.Errorf("entry %s: %w", ec.ID, err)
	}

	o := ec.Options
	return cover.Entry{
		ID:         ec.ID,
		Name:       ec.Name,
		SensorType: st,
		Options: cover.Options{
			Distance:        o.Distance,
			WindowAzimuth:   o.WindowAzimuth,
			FOVLeft:         fovOrDefault(o.FOVLeft),
			FOVRight:        fovOrDefault(o.FOVRight),
			WindowHeight:    o.WindowHeight,
			DefaultPosition: o.DefaultPosition,
			MinElevation:    o.MinElevation,
			MaxElevation:    o.MaxElevation,
			AwningLength:    o.AwningLength,
			AwningAngle:     o.AwningAngle,
		},
	}, nil
}

// fovOrDefault resolves an unset field-of-view edge to a full 90 degrees.
func fovOrDefault(v *float64) float64 {
	if v == nil {
		return 90
	}
	return *v
}

// connectMQTT connects and wires state publishing. Command subscription is
// left to the caller.
func connectMQTT(cfg *config.Config, platform *entity.Platform, covers *coordinator.Registry, log *logging.Logger) (*mqtt.Client, *mqtt.Bridge, error) {
	client, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to MQTT: %w", err)
	}
	client.SetLogger(log)
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	bridge := mqtt.NewBridge(client)
	bridge.SetLogger(log)
	platform.AddListener(bridge)
	for _, c := range covers.List() {
		c.AddListener(bridge.PublishCoverState)
	}
	return client, bridge, nil
}

func connectInfluxDB(ctx context.Context, cfg *config.Config, platform *entity.Platform, covers *coordinator.Registry, log *logging.Logger) (*influxdb.Client, error) {
	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
	if err != nil {
		return nil, fmt.Errorf("connecting to InfluxDB: %w", err)
	}
	client.SetOnError(func(err error) {
		log.Error("InfluxDB write error", "error", err)
	})
	log.Info("InfluxDB connected",
		"url", cfg.InfluxDB.URL,
		"org", cfg.InfluxDB.Org,
		"bucket", cfg.InfluxDB.Bucket,
	)

	recorder := influxdb.NewRecorder(client)
	platform.AddListener(recorder)
	for _, c := range covers.List() {
		c.AddListener(recorder.RecordCover)
	}
	return client, nil
}
