package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/MikeSquared-Agency/steward/internal/feedback"
	"github.com/MikeSquared-Agency/steward/internal/oracle"
)

// Analyzer turns raw feedback text into validated attributes.
type Analyzer struct {
	llm    oracle.Generator
	logger *slog.Logger
}

func New(llm oracle.Generator, logger *slog.Logger) *Analyzer {
	return &Analyzer{llm: llm, logger: logger}
}

// Prompt returns the analysis prompt for text.
func Prompt(text string) string {
	return fmt.Sprintf(analysisPrompt, text)
}

// Analyze asks the oracle for the four labeled attributes and parses them.
// It never retries; a malformed reply surfaces as *feedback.ParseError.
func (a *Analyzer) Analyze(ctx context.Context, text string) (feedback.Attributes, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return feedback.Attributes{}, fmt.Errorf("%w: feedback is required", feedback.ErrValidation)
	}

	a.logger.Info("analyzing feedback", "feedback_len", len(text))

	raw, err := a.llm.Generate(ctx, Prompt(text))
	if err != nil {
		return feedback.Attributes{}, fmt.Errorf("llm analysis: %w", err)
	}
	raw = strings.TrimSpace(raw)

	fields, err := ParseFields(raw)
	if err == nil {
		var attrs feedback.Attributes
		attrs, err = fields.Normalize(raw)
		if err == nil {
			a.logger.Info("analysis complete",
				"sentiment", attrs.Sentiment,
				"urgency", attrs.Urgency,
				"emotion", attrs.Emotion,
				"category", attrs.Category,
			)
			return attrs, nil
		}
	}

	var pe *feedback.ParseError
	if errors.As(err, &pe) {
		a.logger.Error("failed to parse analysis response", "field", pe.Field, "error", err, "raw", raw)
	}
	return feedback.Attributes{}, err
}
