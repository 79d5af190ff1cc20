package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/steward/internal/feedback"
	"github.com/MikeSquared-Agency/steward/internal/processor"
)

type feedbackProcessor interface {
	Process(ctx context.Context, text string) (*feedback.Record, error)
}

func newAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Interactively analyze and reply to feedback typed on stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			c, err := newCore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			proc := processor.New(c.analyzer, c.responder, c.log, processor.Sinks{}, slog.Default())
			return runAnalyzeLoop(cmd.Context(), proc, os.Stdin, cmd.OutOrStdout(), cfg.FeedbackLogPath)
		},
	}
}

// runAnalyzeLoop reads one piece of feedback per line until EOF or "exit".
// Failures are reported and the loop continues with the next line.
func runAnalyzeLoop(ctx context.Context, proc feedbackProcessor, in io.Reader, out io.Writer, logPath string) error {
	fmt.Fprintln(out, "📨 Feedback Agent (type 'exit' to quit)")
	fmt.Fprintln(out)

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Fprint(out, "Enter customer feedback:\n> ")
		if !sc.Scan() {
			break
		}
		text := strings.TrimSpace(sc.Text())
		if strings.EqualFold(text, "exit") {
			fmt.Fprintln(out, "👋 Exiting.")
			return nil
		}
		if text == "" {
			continue
		}

		rec, err := proc.Process(ctx, text)
		if err != nil {
			fmt.Fprintln(out, "❌ Error:", err)
			var pe *feedback.ParseError
			if errors.As(err, &pe) {
				fmt.Fprintf(out, "Raw output:\n%s\n", pe.Raw)
			}
			fmt.Fprintln(out)
			continue
		}

		a := rec.Attributes
		fmt.Fprintf(out, "\n🔍 Sentiment: %s\n", a.Sentiment)
		fmt.Fprintf(out, "⚡ Urgency: %s\n", a.Urgency)
		fmt.Fprintf(out, "🎭 Emotion: %s\n", a.Emotion)
		fmt.Fprintf(out, "🏷️ Category: %s\n", a.Category)
		fmt.Fprintf(out, "💬 Reply: %s\n\n", rec.Reply)
		fmt.Fprintf(out, "✅ Saved to %s\n%s\n", logPath, strings.Repeat("-", 50))
	}
	return sc.Err()
}
