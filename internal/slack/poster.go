package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/steward/internal/feedback"
)

const defaultPostMessageURL = "https://slack.com/api/chat.postMessage"

// Poster sends steward alerts and reports to a Slack channel.
type Poster struct {
	token   string
	channel string
	client  *http.Client
	logger  *slog.Logger
	apiURL  string
}

func NewPoster(token, channel string, logger *slog.Logger) *Poster {
	return &Poster{
		token:   token,
		channel: channel,
		client:  &http.Client{Timeout: 10 * time.Second},
		apiURL:  defaultPostMessageURL,
		logger:  logger,
	}
}

// PostUrgentFeedback alerts the channel about a record that needs immediate
// attention. Returns the message timestamp.
func (p *Poster) PostUrgentFeedback(ctx context.Context, rec feedback.Record) (string, error) {
	text := formatUrgentMessage(rec)
	ts, err := p.post(ctx, text, []map[string]any{
		{
			"type": "section",
			"text": map[string]any{"type": "mrkdwn", "text": text},
		},
		{
			"type": "context",
			"elements": []map[string]any{
				{"type": "mrkdwn", "text": "Auto-reply sent: " + quoteLine(rec.Reply)},
			},
		},
	})
	if err != nil {
		return "", err
	}
	p.logger.Info("posted urgent feedback to slack", "ts", ts, "category", rec.Attributes.Category)
	return ts, nil
}

// PostSummary posts a generated summary report for start..end.
func (p *Poster) PostSummary(ctx context.Context, start, end, summary string) (string, error) {
	header := fmt.Sprintf("*Feedback summary %s to %s*", start, end)
	ts, err := p.post(ctx, header+"\n\n"+summary, []map[string]any{
		{
			"type": "section",
			"text": map[string]any{"type": "mrkdwn", "text": header},
		},
		{
			"type": "section",
			"text": map[string]any{"type": "mrkdwn", "text": summary},
		},
	})
	if err != nil {
		return "", err
	}
	p.logger.Info("posted summary to slack", "ts", ts, "start", start, "end", end)
	return ts, nil
}

func (p *Poster) post(ctx context.Context, text string, blocks []map[string]any) (string, error) {
	body, err := json.Marshal(map[string]any{
		"channel": p.channel,
		"text":    text,
		"blocks":  blocks,
	})
	if err != nil {
		return "", fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("slack post: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var slackResp struct {
		OK    bool   `json:"ok"`
		TS    string `json:"ts"`
		Error string `json:"error,omitempty"`
	}
	if err := json.Unmarshal(respBody, &slackResp); err != nil {
		return "", fmt.Errorf("parse slack response: %w", err)
	}
	if !slackResp.OK {
		return "", fmt.Errorf("slack error: %s", slackResp.Error)
	}
	return slackResp.TS, nil
}

func formatUrgentMessage(rec feedback.Record) string {
	a := rec.Attributes
	var sb strings.Builder

	sb.WriteString(":rotating_light: *Urgent customer feedback*\n")
	fmt.Fprintf(&sb, "*Received:* %s\n", rec.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "*Sentiment:* %s | *Urgency:* %s | *Emotion:* %s\n", a.Sentiment, a.Urgency, a.Emotion)
	fmt.Fprintf(&sb, "*Category:* %s\n\n", a.Category)
	sb.WriteString(quoteLine(rec.Feedback))

	return sb.String()
}

// quoteLine renders s as a Slack block quote, one "> " per line.
func quoteLine(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "_(none)_"
	}
	return "> " + strings.ReplaceAll(s, "\n", "\n> ")
}
