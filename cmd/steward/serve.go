package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/steward/internal/api"
	"github.com/MikeSquared-Agency/steward/internal/hermes"
	"github.com/MikeSquared-Agency/steward/internal/processor"
	"github.com/MikeSquared-Agency/steward/internal/slack"
	"github.com/MikeSquared-Agency/steward/internal/store"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the NATS feedback consumer",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			slog.Info("steward starting", "port", cfg.Port, "feedback_log", cfg.FeedbackLogPath)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			c, err := newCore(ctx, cfg)
			if err != nil {
				return err
			}

			var sinks processor.Sinks
			apiOpts := api.Options{
				Port:       cfg.Port,
				APIToken:   cfg.APIToken,
				MaxSamples: cfg.MaxSamples,
				Seed:       cfg.SampleSeed,
			}

			// Database mirror (optional)
			if cfg.DatabaseURL != "" {
				db, err := store.New(ctx, cfg.DatabaseURL)
				if err != nil {
					return err
				}
				defer db.Close()
				if err := db.EnsureSchema(ctx); err != nil {
					return err
				}
				sinks.Mirror = db
				slog.Info("database mirror connected")
			} else {
				slog.Warn("DATABASE_URL not set, running without postgres mirror")
			}

			// NATS/Hermes (optional)
			var hermesClient *hermes.Client
			if cfg.NatsURL != "" {
				hermesClient, err = hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
				if err != nil {
					return err
				}
				defer hermesClient.Close()
				sinks.Events = hermesClient
				apiOpts.Events = hermesClient
				slog.Info("NATS connected", "url", cfg.NatsURL)
			} else {
				slog.Warn("NATS_URL not set, running without event bus")
			}

			// Slack alerts (optional)
			if cfg.SlackBotToken != "" && cfg.SlackChannel != "" {
				sinks.Alerts = slack.NewPoster(cfg.SlackBotToken, cfg.SlackChannel, slog.Default())
				slog.Info("slack alerts ready", "channel", cfg.SlackChannel)
			} else {
				slog.Warn("slack not configured, urgent feedback will not be alerted")
			}

			proc := processor.New(c.analyzer, c.responder, c.log, sinks, slog.Default())

			if hermesClient != nil {
				if err := hermesClient.QueueSubscribe(hermes.SubjectFeedbackSubmitted, hermes.QueueGroup, proc.HandleFeedbackSubmitted); err != nil {
					return err
				}
			}

			srv := api.NewServer(proc, c.reporter, c.agg, apiOpts, slog.Default())
			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()

			slog.Info("steward ready", "port", cfg.Port)

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			slog.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Error("HTTP shutdown error", "error", err)
			}
			slog.Info("steward stopped")
			return nil
		},
	}
}
