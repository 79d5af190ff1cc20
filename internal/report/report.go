package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/MikeSquared-Agency/steward/internal/aggregate"
	"github.com/MikeSquared-Agency/steward/internal/feedback"
	"github.com/MikeSquared-Agency/steward/internal/oracle"
)

// Reporter turns a date window of feedback into a narrative summary.
type Reporter struct {
	agg        *aggregate.Aggregator
	llm        oracle.Generator
	logger     *slog.Logger
	seed       uint64
	maxSamples int
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithSampling overrides the per-bucket sample cap and the sampling seed.
func WithSampling(max int, seed uint64) Option {
	return func(r *Reporter) {
		r.maxSamples = max
		r.seed = seed
	}
}

func New(agg *aggregate.Aggregator, llm oracle.Generator, logger *slog.Logger, opts ...Option) *Reporter {
	r := &Reporter{
		agg:        agg,
		llm:        llm,
		logger:     logger,
		seed:       aggregate.DefaultSeed,
		maxSamples: aggregate.DefaultMaxSamples,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Summarize asks the oracle for a summary of rng. An empty window is still
// summarized so the narrative reports the quiet period.
func (r *Reporter) Summarize(ctx context.Context, rng aggregate.Range) (string, error) {
	w, err := r.agg.Snapshot(ctx, rng)
	if err != nil {
		return "", err
	}

	totals := w.Totals()
	vp := w.SampleBySentiment(feedback.SentimentVeryPositive, r.maxSamples, r.seed)
	vn := w.SampleBySentiment(feedback.SentimentVeryNegative, r.maxSamples, r.seed)

	out, err := r.llm.Generate(ctx, BuildPrompt(rng, totals, vp, vn))
	if err != nil {
		return "", fmt.Errorf("llm summary: %w", err)
	}
	out = strings.TrimSpace(out)

	r.logger.Info("summary generated",
		"start", rng.Start.Format(aggregate.DateLayout),
		"end", rng.End.Format(aggregate.DateLayout),
		"records", len(w.Records),
		"summary_len", len(out),
	)
	return out, nil
}

// BuildPrompt renders the summary prompt. Sample lists are one text per line,
// or "None" when empty.
func BuildPrompt(rng aggregate.Range, totals map[feedback.Sentiment]int, veryPositive, veryNegative []string) string {
	return fmt.Sprintf(summaryPrompt,
		rng.Start.Format(aggregate.DateLayout),
		rng.End.Format(aggregate.DateLayout),
		totals[feedback.SentimentVeryPositive],
		totals[feedback.SentimentPositive],
		totals[feedback.SentimentNeutral],
		totals[feedback.SentimentNegative],
		totals[feedback.SentimentVeryNegative],
		sampleList(veryPositive),
		sampleList(veryNegative),
	)
}

func sampleList(texts []string) string {
	if len(texts) == 0 {
		return "None"
	}
	lines := make([]string, len(texts))
	for i, t := range texts {
		lines[i] = "- " + strings.Join(strings.Fields(t), " ")
	}
	return strings.Join(lines, "\n")
}
