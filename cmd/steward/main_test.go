package main

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/MikeSquared-Agency/steward/internal/feedback"
)

type scriptedProcessor struct {
	seen []string
}

func (p *scriptedProcessor) Process(ctx context.Context, text string) (*feedback.Record, error) {
	p.seen = append(p.seen, text)
	if strings.Contains(text, "garbled") {
		return nil, &feedback.ParseError{Field: "Sentiment", Reason: "missing marker", Raw: "I think they are upset"}
	}
	if strings.Contains(text, "offline") {
		return nil, fmt.Errorf("%w: connection refused", feedback.ErrOracle)
	}
	return &feedback.Record{
		Feedback: text,
		Attributes: feedback.Attributes{
			Sentiment: feedback.SentimentPositive,
			Urgency:   feedback.UrgencyLow,
			Emotion:   "joy",
			Category:  feedback.CategoryFoodQuality,
		},
		Reply: "Thank you! 😊",
	}, nil
}

func TestRunAnalyzeLoop(t *testing.T) {
	in := strings.NewReader("Tasty dumplings\n\ngarbled feedback\noffline now\nGreat tea\nEXIT\nnever read\n")
	var out bytes.Buffer
	proc := &scriptedProcessor{}

	if err := runAnalyzeLoop(context.Background(), proc, in, &out, "feedback_log.csv"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"Tasty dumplings", "garbled feedback", "offline now", "Great tea"}
	if strings.Join(proc.seen, "|") != strings.Join(want, "|") {
		t.Errorf("processed %v, want %v", proc.seen, want)
	}

	got := out.String()
	for _, s := range []string{
		"Sentiment: Positive",
		"Category: Food Quality",
		"Reply: Thank you! 😊",
		"Raw output:\nI think they are upset",
		"oracle error",
		"Saved to feedback_log.csv",
		"Exiting.",
	} {
		if !strings.Contains(got, s) {
			t.Errorf("output missing %q", s)
		}
	}
	if strings.Count(got, "Saved to") != 2 {
		t.Errorf("expected two saved records in output")
	}
}

func TestRunAnalyzeLoop_EOF(t *testing.T) {
	var out bytes.Buffer
	proc := &scriptedProcessor{}
	if err := runAnalyzeLoop(context.Background(), proc, strings.NewReader("one more\n"), &out, "log.csv"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(proc.seen) != 1 {
		t.Errorf("expected one processed line, got %v", proc.seen)
	}
}
