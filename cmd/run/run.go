// Package run wires the engine, its MQTT host bridge and the read-only
// status server together into the "soir run" subcommand.
package run

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/soir-live/soir/internal/buildinfo"
	"github.com/soir-live/soir/internal/conf"
	"github.com/soir-live/soir/internal/engine"
	soirerrors "github.com/soir-live/soir/internal/errors"
	"github.com/soir-live/soir/internal/events"
	"github.com/soir-live/soir/internal/hostbridge"
	"github.com/soir-live/soir/internal/httpserver"
	"github.com/soir-live/soir/internal/logging"
	"github.com/soir-live/soir/internal/metrics"
	"github.com/soir-live/soir/internal/mqtt"
	"golang.org/x/sync/errgroup"
)

var log = logging.ForService("run")

// Command builds the "run" subcommand: connect to the configured MQTT
// broker, stand up the engine against that bridge, serve /status, and block
// until interrupted.
func Command(settings *conf.Settings, info *buildinfo.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the soir engine against the configured MQTT host bridge",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEngine(cmd.Context(), settings, info)
		},
	}
}

func runEngine(parent context.Context, settings *conf.Settings, info *buildinfo.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !settings.MQTT.Enabled {
		return fmt.Errorf("mqtt.enabled is false: the engine has no host bridge to run against")
	}

	collector := metrics.Global()
	eventBus := setupEventBus()

	client := mqtt.NewClient(settings, collector)
	if err := client.Connect(ctx); err != nil {
		return fmt.Errorf("connecting to mqtt broker: %w", err)
	}
	defer client.Disconnect()

	host := hostbridge.NewMQTTHost(
		client,
		settings.MQTT.Topic,
		settings.Engine.BlockSize,
		settings.Engine.SampleRate,
		settings.Engine.ControlHz,
		settings.Sampler.PackPaths,
	)
	defer host.Close()

	eng := engine.New(host, settings.Sampler.PackPaths, 0, collector)
	eng.SetEventBus(eventBus)

	srv := httpserver.New(settings, statusAdapter{eng}, info)

	grp, gctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		return eng.Run(gctx)
	})
	grp.Go(func() error {
		return srv.Start()
	})
	grp.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Warn("http server shutdown failed", "error", err)
		}
		return eng.Shutdown(context.Background())
	})

	if err := grp.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// setupEventBus brings up the diagnostics event bus and wires the errors
// package's reporting hook into it, so every EnhancedError built anywhere in
// the engine reaches the log consumer registered here. Returns nil (a safe,
// inert value for Engine.SetEventBus) if the bus fails to start.
func setupEventBus() *events.EventBus {
	eb, err := events.Initialize(events.DefaultConfig())
	if err != nil || eb == nil {
		log.Warn("event bus unavailable, diagnostics events will not be reported", "error", err)
		return nil
	}

	consumer := events.NewLogConsumer()
	if err := eb.RegisterConsumer(consumer); err != nil {
		log.Warn("failed to register event consumer", "error", err)
	}
	if err := eb.RegisterResourceConsumer(consumer); err != nil {
		log.Warn("failed to register resource event consumer", "error", err)
	}
	if err := eb.RegisterIngestConsumer(consumer); err != nil {
		log.Warn("failed to register ingest event consumer", "error", err)
	}

	if err := events.InitializeErrorsIntegration(func(publisher any) {
		soirerrors.SetEventPublisher(publisher.(soirerrors.EventPublisher))
	}); err != nil {
		log.Warn("failed to wire errors package into event bus", "error", err)
	}

	return eb
}

// statusAdapter bridges engine.Status to httpserver.Snapshot so httpserver
// never has to import engine (it stays a leaf package).
type statusAdapter struct {
	eng *engine.Engine
}

func (a statusAdapter) Status() httpserver.Snapshot {
	s := a.eng.Status()
	return httpserver.Snapshot{
		Generation:    s.Generation,
		BPM:           s.BPM,
		Loops:         s.Loops,
		Lives:         s.Lives,
		Controls:      s.Controls,
		SchedulerSize: s.SchedulerLen,
	}
}
