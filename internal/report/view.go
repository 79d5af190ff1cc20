package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/MikeSquared-Agency/steward/internal/aggregate"
	"github.com/MikeSquared-Agency/steward/internal/feedback"
)

// Mode selects how sentiment is charted on the dashboard.
type Mode string

const (
	ModeTrend Mode = "trend"
	ModePie   Mode = "pie"
)

// View is the dashboard state for one request: chart mode, the category
// whose samples are shown, and the date window.
type View struct {
	Mode     Mode
	Category feedback.Category
	Range    aggregate.Range
}

// NewView validates mode and category strings. An empty mode is ModeTrend; an
// empty category shows no samples.
func NewView(mode, category string, rng aggregate.Range) (View, error) {
	v := View{Mode: ModeTrend, Range: rng}
	switch Mode(strings.ToLower(strings.TrimSpace(mode))) {
	case "", ModeTrend:
	case ModePie:
		v.Mode = ModePie
	default:
		return View{}, fmt.Errorf("%w: unknown view %q, use trend or pie", feedback.ErrValidation, mode)
	}
	if strings.TrimSpace(category) != "" {
		c, ok := feedback.ParseCategory(category)
		if !ok {
			return View{}, fmt.Errorf("%w: unknown category %q", feedback.ErrValidation, category)
		}
		v.Category = c
	}
	return v, nil
}

// Slice is one sentiment share of the pie chart.
type Slice struct {
	Sentiment feedback.Sentiment `json:"sentiment"`
	Count     int                `json:"count"`
	Percent   float64            `json:"percent"`
}

// TrendPoint is the JSON form of an aggregate.DayCount.
type TrendPoint struct {
	Date      string             `json:"date"`
	Sentiment feedback.Sentiment `json:"sentiment"`
	Count     int                `json:"count"`
}

// Panel is a rendered View.
type Panel struct {
	Mode     Mode              `json:"view"`
	Start    string            `json:"start_date"`
	End      string            `json:"end_date"`
	Records  int               `json:"records"`
	Trend    []TrendPoint      `json:"trend,omitempty"`
	Pie      []Slice           `json:"pie,omitempty"`
	Category feedback.Category `json:"category,omitempty"`
	Samples  []string          `json:"samples,omitempty"`
}

// Render computes the panel for v from a single snapshot of the log.
func (v View) Render(ctx context.Context, agg *aggregate.Aggregator, maxSamples int, seed uint64) (*Panel, error) {
	w, err := agg.Snapshot(ctx, v.Range)
	if err != nil {
		return nil, err
	}

	p := &Panel{
		Mode:    v.Mode,
		Start:   v.Range.Start.Format(aggregate.DateLayout),
		End:     v.Range.End.Format(aggregate.DateLayout),
		Records: len(w.Records),
	}

	switch v.Mode {
	case ModePie:
		totals := w.Totals()
		for _, s := range feedback.Sentiments {
			sl := Slice{Sentiment: s, Count: totals[s]}
			if p.Records > 0 {
				sl.Percent = float64(totals[s]) * 100 / float64(p.Records)
			}
			p.Pie = append(p.Pie, sl)
		}
	default:
		for _, dc := range w.Trend() {
			p.Trend = append(p.Trend, TrendPoint{Date: dc.Date(), Sentiment: dc.Sentiment, Count: dc.Count})
		}
	}

	if v.Category != "" {
		p.Category = v.Category
		p.Samples = w.SampleByCategory(v.Category, maxSamples, seed)
	}
	return p, nil
}
