package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/MikeSquared-Agency/steward/internal/aggregate"
	"github.com/MikeSquared-Agency/steward/internal/feedback"
	"github.com/MikeSquared-Agency/steward/internal/report"
)

const maxSampleLimit = 100

func queryRange(r *http.Request) (aggregate.Range, error) {
	q := r.URL.Query()
	return aggregate.ParseRange(q.Get("start_date"), q.Get("end_date"))
}

// trend handles GET /api/v1/feedback/trend
func (s *Server) trend(w http.ResponseWriter, r *http.Request) {
	rng, err := queryRange(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	counts, err := s.agg.CountsByDaySentiment(r.Context(), rng)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	points := make([]report.TrendPoint, 0, len(counts))
	for _, dc := range counts {
		points = append(points, report.TrendPoint{Date: dc.Date(), Sentiment: dc.Sentiment, Count: dc.Count})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"start_date": rng.Start.Format(aggregate.DateLayout),
		"end_date":   rng.End.Format(aggregate.DateLayout),
		"trend":      points,
	})
}

// totals handles GET /api/v1/feedback/totals
func (s *Server) totals(w http.ResponseWriter, r *http.Request) {
	rng, err := queryRange(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	totals, err := s.agg.TotalCountsBySentiment(r.Context(), rng)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"start_date": rng.Start.Format(aggregate.DateLayout),
		"end_date":   rng.End.Format(aggregate.DateLayout),
		"totals":     totals,
	})
}

// samples handles GET /api/v1/feedback/samples
func (s *Server) samples(w http.ResponseWriter, r *http.Request) {
	rng, err := queryRange(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	category, ok := feedback.ParseCategory(q.Get("category"))
	if !ok {
		s.writeError(w, r, fmt.Errorf("%w: unknown or missing category %q", feedback.ErrValidation, q.Get("category")))
		return
	}

	limit := s.maxSamples
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxSampleLimit {
			s.writeError(w, r, fmt.Errorf("%w: limit must be between 1 and %d", feedback.ErrValidation, maxSampleLimit))
			return
		}
		limit = n
	}

	texts, err := s.agg.SampleByCategory(r.Context(), rng, category, limit, s.seed)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"category": category,
		"samples":  texts,
	})
}

// dashboard handles GET /api/v1/dashboard
func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	rng, err := queryRange(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	view, err := report.NewView(q.Get("view"), q.Get("category"), rng)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	panel, err := view.Render(r.Context(), s.agg, s.maxSamples, s.seed)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, panel)
}
