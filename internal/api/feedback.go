package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/MikeSquared-Agency/steward/internal/aggregate"
	"github.com/MikeSquared-Agency/steward/internal/feedback"
	"github.com/MikeSquared-Agency/steward/internal/hermes"
)

type analyzeRequest struct {
	Feedback string `json:"feedback"`
}

type analyzeResponse struct {
	Sentiment feedback.Sentiment `json:"sentiment"`
	Urgency   feedback.Urgency   `json:"urgency"`
	Emotion   string             `json:"emotion"`
	Category  feedback.Category  `json:"category"`
	Reply     string             `json:"reply"`
}

type summaryRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// analyzeFeedback handles POST /analyze_feedback
func (s *Server) analyzeFeedback(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: invalid JSON: %v", feedback.ErrValidation, err))
		return
	}

	rec, err := s.processor.Process(r.Context(), req.Feedback)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	a := rec.Attributes
	writeJSON(w, http.StatusOK, analyzeResponse{
		Sentiment: a.Sentiment,
		Urgency:   a.Urgency,
		Emotion:   a.Emotion,
		Category:  a.Category,
		Reply:     rec.Reply,
	})
}

// generateSummary handles POST /generate_summary
func (s *Server) generateSummary(w http.ResponseWriter, r *http.Request) {
	var req summaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: invalid JSON: %v", feedback.ErrValidation, err))
		return
	}

	rng, err := aggregate.ParseRange(req.StartDate, req.EndDate)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	summary, err := s.summarizer.Summarize(r.Context(), rng)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if s.events != nil {
		if err := s.events.Publish(hermes.SubjectSummaryGenerated, hermes.SummaryGenerated{
			StartDate: req.StartDate,
			EndDate:   req.EndDate,
			Summary:   summary,
		}); err != nil {
			s.logger.Error("failed to publish summary generated", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
}
