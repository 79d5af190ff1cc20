package responder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/MikeSquared-Agency/steward/internal/feedback"
	"github.com/MikeSquared-Agency/steward/internal/oracle"
)

const replyPrompt = `You are a warm, emotionally intelligent automated customer support responder of the restaurant.
You automatically write replies to customer feedbacks.
Your task is to generate a short, natural, context-aware and kind reply based on the feedback, sentiment, urgency, emotion and category. Adapt the tone to match the emotion and urgency.

RULES:
- Always reply in the same language and writing style as the customer's original feedback.
- If feedback is in Sinhala, reply in Sinhala. If it's Tamil, reply in Tamil. If it's English, reply in English.
- If feedback is Sinhala or Tamil typed using English letters (Singlish or Tanglish), reply in Sinhala or Tamil script, not in English letters.
- Do not use formal or overly structured grammar in such cases.
- Make it sound like a human wrote it, not robotic.
- Never ask follow-up questions. This is a one-way automatic reply.
- Express empathy, kindness and a sense of care.
- %s
- Use emojis to enhance warmth and empathy.

Feedback: %s
Sentiment: %s
Urgency: %s
Emotion: %s
Category: %s

Reply:`

// Responder writes tone-matched replies to feedback.
type Responder struct {
	llm    oracle.Generator
	logger *slog.Logger
}

func New(llm oracle.Generator, logger *slog.Logger) *Responder {
	return &Responder{llm: llm, logger: logger}
}

// Prompt returns the reply prompt for text and attrs.
func Prompt(text string, attrs feedback.Attributes) string {
	return fmt.Sprintf(replyPrompt, toneRule(attrs.Urgency), text, attrs.Sentiment, attrs.Urgency, attrs.Emotion, attrs.Category)
}

func toneRule(u feedback.Urgency) string {
	switch u {
	case feedback.UrgencyHigh:
		return "Urgency is high: acknowledge the problem right away and say what is being done about it now."
	case feedback.UrgencyMedium:
		return "Urgency is medium: acknowledge the concern clearly and reassure the customer it will be looked into."
	default:
		return "Urgency is low: keep the reply relaxed and friendly."
	}
}

// Reply returns the oracle's reply with surrounding whitespace removed.
func (r *Responder) Reply(ctx context.Context, text string, attrs feedback.Attributes) (string, error) {
	out, err := r.llm.Generate(ctx, Prompt(text, attrs))
	if err != nil {
		return "", fmt.Errorf("llm reply: %w", err)
	}
	out = strings.TrimSpace(out)
	r.logger.Info("reply generated", "reply_len", len(out), "urgency", attrs.Urgency, "emotion", attrs.Emotion)
	return out, nil
}
