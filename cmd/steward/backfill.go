package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/steward/internal/aggregate"
	"github.com/MikeSquared-Agency/steward/internal/backfill"
	"github.com/MikeSquared-Agency/steward/internal/feedbacklog"
	"github.com/MikeSquared-Agency/steward/internal/store"
)

func newBackfillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Copy feedback log rows the Postgres mirror has not seen yet",
		Long: `backfill replays the feedback log into the Postgres mirror. Progress is
saved to a state file so an interrupted or failed run resumes from the
last mirrored row.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			since, _ := cmd.Flags().GetString("since")
			until, _ := cmd.Flags().GetString("until")
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			statePath, _ := cmd.Flags().GetString("state")
			batch, _ := cmd.Flags().GetInt("batch-size")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is required for backfill")
			}

			bcfg := backfill.Config{
				LogPath:   cfg.FeedbackLogPath,
				StatePath: statePath,
				DryRun:    dryRun,
				BatchSize: batch,
			}
			if since != "" || until != "" {
				rng, err := aggregate.ParseRange(since, until)
				if err != nil {
					return err
				}
				bcfg.Range = &rng
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			db, err := store.New(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.EnsureSchema(ctx); err != nil {
				return err
			}

			log := feedbacklog.Open(cfg.FeedbackLogPath, slog.Default())
			res, err := backfill.NewRunner(bcfg, log, db, slog.Default()).Run(ctx)
			fmt.Fprintf(cmd.OutOrStdout(), "scanned %d, mirrored %d, skipped %d\n", res.Scanned, res.Mirrored, res.Skipped)
			return err
		},
	}

	cmd.Flags().String("since", "", "Only mirror records on or after this date, YYYY-MM-DD (needs --until)")
	cmd.Flags().String("until", "", "Only mirror records on or before this date, YYYY-MM-DD (needs --since)")
	cmd.Flags().Bool("dry-run", false, "Count rows without writing or saving state")
	cmd.Flags().String("state", backfill.DefaultStatePath, "Path to the resume state file")
	cmd.Flags().Int("batch-size", 100, "Save progress every N rows")
	return cmd
}
