package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/steward/internal/aggregate"
	"github.com/MikeSquared-Agency/steward/internal/analyzer"
	"github.com/MikeSquared-Agency/steward/internal/config"
	"github.com/MikeSquared-Agency/steward/internal/feedbacklog"
	"github.com/MikeSquared-Agency/steward/internal/oracle"
	"github.com/MikeSquared-Agency/steward/internal/report"
	"github.com/MikeSquared-Agency/steward/internal/responder"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "steward",
		Short: "Steward - customer feedback analysis and reporting",
		Long: `steward analyzes customer feedback with an LLM, replies in the
customer's own language, keeps an append-only feedback log and
summarizes sentiment over date ranges.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file (env vars override it)")

	rootCmd.AddCommand(
		newServeCmd(),
		newAnalyzeCmd(),
		newSummarizeCmd(),
		newBackfillCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadFile(path)
	if err != nil {
		return config.Config{}, err
	}
	setupLogging(cfg.LogLevel)
	return cfg, nil
}

// core holds the components shared by every subcommand.
type core struct {
	log       *feedbacklog.Log
	analyzer  *analyzer.Analyzer
	responder *responder.Responder
	agg       *aggregate.Aggregator
	reporter  *report.Reporter
}

func newCore(ctx context.Context, cfg config.Config) (*core, error) {
	backend, err := oracle.New(ctx, oracle.Config{
		Provider:        cfg.LLMProvider,
		GeminiAPIKey:    cfg.GoogleAPIKey,
		GeminiModel:     cfg.GeminiModel,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
		AnthropicModel:  cfg.AnthropicModel,
		AnthropicTokens: cfg.AnthropicTokens,
		BedrockRegion:   cfg.BedrockRegion,
		BedrockModel:    cfg.BedrockModel,
	})
	if err != nil {
		return nil, fmt.Errorf("init llm: %w", err)
	}
	llm := oracle.WithTimeout(backend, cfg.OracleTimeout, slog.Default())
	slog.Info("llm ready", "provider", cfg.LLMProvider, "timeout", cfg.OracleTimeout)

	log := feedbacklog.Open(cfg.FeedbackLogPath, slog.Default())
	agg := aggregate.New(log, slog.Default())

	return &core{
		log:       log,
		analyzer:  analyzer.New(llm, slog.Default()),
		responder: responder.New(llm, slog.Default()),
		agg:       agg,
		reporter:  report.New(agg, llm, slog.Default(), report.WithSampling(cfg.MaxSamples, cfg.SampleSeed)),
	}, nil
}

func setupLogging(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
