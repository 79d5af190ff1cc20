package processor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/steward/internal/analyzer"
	"github.com/MikeSquared-Agency/steward/internal/feedback"
	"github.com/MikeSquared-Agency/steward/internal/hermes"
	"github.com/MikeSquared-Agency/steward/internal/responder"
)

// Log is the write side of the feedback log.
type Log interface {
	Append(ctx context.Context, rec feedback.Record) (feedback.Record, error)
}

// Mirror receives a copy of every appended record.
type Mirror interface {
	WriteRecord(ctx context.Context, rec feedback.Record) (uuid.UUID, error)
}

// Publisher emits bus events.
type Publisher interface {
	Publish(subject string, data any) error
}

// Alerter notifies humans about urgent feedback.
type Alerter interface {
	PostUrgentFeedback(ctx context.Context, rec feedback.Record) (string, error)
}

// Sinks are the optional downstream consumers of appended records. Nil
// members are skipped.
type Sinks struct {
	Mirror Mirror
	Events Publisher
	Alerts Alerter
}

// Processor runs the analyze, reply and append pipeline for one piece of
// feedback at a time.
type Processor struct {
	analyzer  *analyzer.Analyzer
	responder *responder.Responder
	log       Log
	sinks     Sinks
	logger    *slog.Logger
}

func New(a *analyzer.Analyzer, r *responder.Responder, log Log, sinks Sinks, logger *slog.Logger) *Processor {
	return &Processor{
		analyzer:  a,
		responder: r,
		log:       log,
		sinks:     sinks,
		logger:    logger,
	}
}

// Process analyzes text, generates a reply and appends the record. Nothing
// is appended when analysis or reply generation fails. Downstream sinks run
// after the append and their failures are only logged.
func (p *Processor) Process(ctx context.Context, text string) (*feedback.Record, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: feedback is required", feedback.ErrValidation)
	}

	attrs, err := p.analyzer.Analyze(ctx, text)
	if err != nil {
		return nil, err
	}

	reply, err := p.responder.Reply(ctx, text, attrs)
	if err != nil {
		return nil, err
	}

	rec, err := p.log.Append(ctx, feedback.Record{Feedback: text, Attributes: attrs, Reply: reply})
	if err != nil {
		return nil, fmt.Errorf("append feedback: %w", err)
	}

	p.logger.Info("feedback processed",
		"feedback_len", len(text),
		"sentiment", attrs.Sentiment,
		"urgency", attrs.Urgency,
		"category", attrs.Category,
	)

	p.fanOut(ctx, rec)
	return &rec, nil
}

func (p *Processor) fanOut(ctx context.Context, rec feedback.Record) {
	if p.sinks.Mirror != nil {
		if id, err := p.sinks.Mirror.WriteRecord(ctx, rec); err != nil {
			p.logger.Error("failed to mirror feedback record", "error", err)
		} else {
			p.logger.Debug("feedback record mirrored", "id", id)
		}
	}

	if p.sinks.Events != nil {
		if err := p.sinks.Events.Publish(hermes.SubjectFeedbackRecorded, hermes.NewFeedbackRecorded(rec)); err != nil {
			p.logger.Error("failed to publish feedback recorded", "error", err)
		}
	}

	if !rec.Attributes.IsUrgent() {
		return
	}

	if p.sinks.Events != nil {
		if err := p.sinks.Events.Publish(hermes.SubjectFeedbackUrgent, hermes.NewFeedbackRecorded(rec)); err != nil {
			p.logger.Error("failed to publish urgent feedback", "error", err)
		}
	}
	if p.sinks.Alerts != nil {
		if _, err := p.sinks.Alerts.PostUrgentFeedback(ctx, rec); err != nil {
			p.logger.Error("slack alert failed", "error", err)
		}
	}
}

// HandleFeedbackSubmitted is the NATS handler for steward.feedback.submitted.
func (p *Processor) HandleFeedbackSubmitted(subject string, data []byte) {
	ctx := context.Background()

	evt, err := hermes.DecodeSubmitted(data)
	if err != nil {
		p.logger.Error("failed to parse feedback event", "subject", subject, "error", err)
		return
	}

	rec, err := p.Process(ctx, evt.Feedback)
	if err != nil {
		p.logger.Error("feedback processing failed", "source", evt.Source, "error", err)
		return
	}

	p.logger.Info("bus feedback recorded",
		"source", evt.Source,
		"timestamp", rec.Timestamp,
		"sentiment", rec.Attributes.Sentiment,
	)
}
