package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/James9446/patricia-james-sub001/internal/auth"
	"github.com/James9446/patricia-james-sub001/internal/config"
	"github.com/James9446/patricia-james-sub001/internal/database"
	"github.com/James9446/patricia-james-sub001/internal/handlers"
	"github.com/James9446/patricia-james-sub001/internal/jobs"
	"github.com/James9446/patricia-james-sub001/internal/logging"
	"github.com/James9446/patricia-james-sub001/internal/metrics"
	"github.com/James9446/patricia-james-sub001/internal/notify"
	"github.com/James9446/patricia-james-sub001/internal/rsvp"
	"github.com/James9446/patricia-james-sub001/internal/server"
	"github.com/James9446/patricia-james-sub001/internal/storage"
	"github.com/James9446/patricia-james-sub001/web"
)

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("cannot load a config: %w", err)
	}
	logger := logging.Setup(cfg.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DB, logger)
	if err != nil {
		return err
	}
	defer db.Close()
	if cfg.DB.Automigrate {
		if err := database.Migrate(db, logger); err != nil {
			return err
		}
	}

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("cannot init storage: %w", err)
	}
	notifier, err := notify.New(cfg.Notify, logger)
	if err != nil {
		return fmt.Errorf("cannot init notifier: %w", err)
	}
	event, err := eventFromConfig(cfg.Event)
	if err != nil {
		return err
	}
	if err := handlers.LoadTemplates(web.Templates()); err != nil {
		return err
	}

	rec := metrics.Recorder{}
	sessions := auth.NewSessions(db, cfg.Auth)
	if cfg.Auth.AdminToken == "" {
		logger.Warn("no admin token configured, admin API is disabled")
	}

	scheduler := jobs.NewScheduler(logger)
	if err := scheduler.AddSessionCleanup(cfg.Jobs.SessionCleanupSpec, db, rec); err != nil {
		return fmt.Errorf("cannot schedule session cleanup: %w", err)
	}
	scheduler.Start()
	defer scheduler.Shutdown()

	router := handlers.NewRouter(handlers.Deps{
		DB:             db,
		RSVP:           rsvp.New(db, logger, rsvp.WithNotifier(notifier), rsvp.WithRecorder(rec)),
		Sessions:       sessions,
		Store:          store,
		Recorder:       rec,
		Logger:         logger,
		Static:         web.Static(),
		Event:          event,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		MaxUploadBytes: int64(cfg.HTTP.MaxUploadMB) << 20,
	})
	srv := server.New(cfg.HTTP, router, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.ListenAndServe)
	g.Go(func() error {
		<-gctx.Done()
		logger.Warn("shutting down")
		return srv.Shutdown(context.Background())
	})
	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("application exited")
	return nil
}

func migrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("cannot load a config: %w", err)
	}
	logger := logging.Setup(cfg.Logger)

	db, err := database.Open(context.Background(), cfg.DB, logger)
	if err != nil {
		return err
	}
	defer db.Close()
	return database.Migrate(db, logger)
}

// eventFromConfig resolves the configured time zone. An empty zone means the
// server's local time.
func eventFromConfig(c config.EventConfig) (handlers.Event, error) {
	loc := time.Local
	if c.Timezone != "" {
		var err error
		if loc, err = time.LoadLocation(c.Timezone); err != nil {
			return handlers.Event{}, fmt.Errorf("invalid event timezone %q: %w", c.Timezone, err)
		}
	}
	return handlers.Event{
		Couple:   c.Couple,
		Date:     c.Date,
		Venue:    c.Venue,
		RSVPBy:   c.RSVPBy,
		Location: loc,
	}, nil
}
