package hermes

import (
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/steward/internal/feedback"
)

// NATS subjects used by steward.
const (
	SubjectFeedbackSubmitted = "steward.feedback.submitted"
	SubjectFeedbackRecorded  = "steward.feedback.recorded"
	SubjectFeedbackUrgent    = "steward.feedback.urgent"
	SubjectSummaryGenerated  = "steward.summary.generated"
)

// Envelope wraps every published payload.
type Envelope struct {
	EventID    string    `json:"event_id"`
	Subject    string    `json:"subject"`
	Source     string    `json:"source"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

func newEnvelope(subject string, data any) Envelope {
	return Envelope{
		EventID:    uuid.New().String(),
		Subject:    subject,
		Source:     "steward",
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

// FeedbackSubmitted is the inbound request to process a piece of feedback.
// Source is free-form, e.g. "kiosk" or "whatsapp".
type FeedbackSubmitted struct {
	Feedback string `json:"feedback"`
	Source   string `json:"source,omitempty"`
}

// FeedbackRecorded announces a record appended to the log.
type FeedbackRecorded struct {
	Timestamp string             `json:"timestamp"`
	Feedback  string             `json:"feedback"`
	Sentiment feedback.Sentiment `json:"sentiment"`
	Urgency   feedback.Urgency   `json:"urgency"`
	Emotion   string             `json:"emotion"`
	Category  feedback.Category  `json:"category"`
	Reply     string             `json:"reply"`
}

// NewFeedbackRecorded flattens rec for publishing.
func NewFeedbackRecorded(rec feedback.Record) FeedbackRecorded {
	return FeedbackRecorded{
		Timestamp: rec.Timestamp.Format("2006-01-02T15:04:05"),
		Feedback:  rec.Feedback,
		Sentiment: rec.Attributes.Sentiment,
		Urgency:   rec.Attributes.Urgency,
		Emotion:   rec.Attributes.Emotion,
		Category:  rec.Attributes.Category,
		Reply:     rec.Reply,
	}
}

// SummaryGenerated announces a finished summary report.
type SummaryGenerated struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Summary   string `json:"summary"`
}
