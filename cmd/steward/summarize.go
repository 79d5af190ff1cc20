package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/steward/internal/aggregate"
	"github.com/MikeSquared-Agency/steward/internal/slack"
)

func newSummarizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Summarize feedback sentiment between two dates",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, _ := cmd.Flags().GetString("start")
			end, _ := cmd.Flags().GetString("end")
			post, _ := cmd.Flags().GetBool("slack")

			rng, err := aggregate.ParseRange(start, end)
			if err != nil {
				return err
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			c, err := newCore(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			summary, err := c.reporter.Summarize(cmd.Context(), rng)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), summary)

			if post {
				if cfg.SlackBotToken == "" || cfg.SlackChannel == "" {
					return fmt.Errorf("--slack needs SLACK_BOT_TOKEN and SLACK_ALERTS_CHANNEL")
				}
				poster := slack.NewPoster(cfg.SlackBotToken, cfg.SlackChannel, slog.Default())
				if _, err := poster.PostSummary(cmd.Context(), start, end, summary); err != nil {
					return fmt.Errorf("post summary: %w", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().String("start", "", "Start date, YYYY-MM-DD (inclusive)")
	cmd.Flags().String("end", "", "End date, YYYY-MM-DD (inclusive)")
	cmd.Flags().Bool("slack", false, "Also post the summary to the Slack alerts channel")
	cmd.MarkFlagRequired("start")
	cmd.MarkFlagRequired("end")
	return cmd
}
