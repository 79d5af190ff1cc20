package oracle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MikeSquared-Agency/steward/internal/feedback"
)

// Generator turns a prompt into a text completion.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

type timeoutGenerator struct {
	next    Generator
	timeout time.Duration
	logger  *slog.Logger
}

// WithTimeout bounds every call to next by timeout and wraps any failure,
// including expiry, in feedback.ErrOracle. A zero timeout only wraps errors.
func WithTimeout(next Generator, timeout time.Duration, logger *slog.Logger) Generator {
	return &timeoutGenerator{next: next, timeout: timeout, logger: logger}
}

func (g *timeoutGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := g.next.Generate(ctx, prompt)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("timed out after %s: %w", g.timeout, err)
		}
		g.logger.Error("oracle call failed", "prompt_len", len(prompt), "elapsed", time.Since(start), "error", err)
		return "", fmt.Errorf("%w: %w", feedback.ErrOracle, err)
	}

	g.logger.Debug("oracle call complete", "prompt_len", len(prompt), "output_len", len(out), "elapsed", time.Since(start))
	return out, nil
}
