package aggregate

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/steward/internal/feedback"
)

// DateLayout is the wire format of range endpoints.
const DateLayout = "2006-01-02"

const (
	DefaultMaxSamples = 5
	DefaultSeed       = 42
)

// Reader is the read side of the feedback log.
type Reader interface {
	ReadAll(ctx context.Context) ([]feedback.Record, error)
}

// Range is an inclusive span of calendar dates.
type Range struct {
	Start time.Time
	End   time.Time
}

// ParseRange parses two YYYY-MM-DD strings into a Range. Missing values are
// feedback.ErrValidation; malformed dates and start after end are
// feedback.ErrRange.
func ParseRange(start, end string) (Range, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" || end == "" {
		return Range{}, fmt.Errorf("%w: start_date and end_date are required", feedback.ErrValidation)
	}
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return Range{}, fmt.Errorf("%w: invalid start_date %q, use YYYY-MM-DD", feedback.ErrRange, start)
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return Range{}, fmt.Errorf("%w: invalid end_date %q, use YYYY-MM-DD", feedback.ErrRange, end)
	}
	return NewRange(s, e)
}

// NewRange builds a Range from the calendar dates of start and end.
func NewRange(start, end time.Time) (Range, error) {
	r := Range{Start: day(start), End: day(end)}
	if err := r.Validate(); err != nil {
		return Range{}, err
	}
	return r, nil
}

// Validate reports feedback.ErrRange when Start is after End.
func (r Range) Validate() error {
	if r.Start.After(r.End) {
		return fmt.Errorf("%w: start date %s is after end date %s", feedback.ErrRange,
			r.Start.Format(DateLayout), r.End.Format(DateLayout))
	}
	return nil
}

// Contains reports whether the calendar date of ts is within the range.
func (r Range) Contains(ts time.Time) bool {
	d := day(ts)
	return !d.Before(r.Start) && !d.After(r.End)
}

func (r Range) String() string {
	return r.Start.Format(DateLayout) + ".." + r.End.Format(DateLayout)
}

// day drops the time of day, keeping the calendar date as written in the
// timestamp's own location.
func day(ts time.Time) time.Time {
	y, m, d := ts.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayCount is one (day, sentiment) bucket of the trend series.
type DayCount struct {
	Day       time.Time          `json:"-"`
	Sentiment feedback.Sentiment `json:"sentiment"`
	Count     int                `json:"count"`
}

// Date returns the bucket day as YYYY-MM-DD.
func (d DayCount) Date() string {
	return d.Day.Format(DateLayout)
}

// Window is the set of log records whose dates fall inside a Range, read
// once so several outputs can be computed from the same snapshot.
type Window struct {
	Range   Range
	Records []feedback.Record
}

// Trend counts records per (day, sentiment), ordered by day and then from
// most negative to most positive. Empty buckets are omitted.
func (w *Window) Trend() []DayCount {
	type key struct {
		day       time.Time
		sentiment feedback.Sentiment
	}
	counts := make(map[key]int)
	for _, rec := range w.Records {
		counts[key{day(rec.Timestamp), rec.Attributes.Sentiment}]++
	}

	out := make([]DayCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, DayCount{Day: k.day, Sentiment: k.sentiment, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Day.Equal(out[j].Day) {
			return out[i].Day.Before(out[j].Day)
		}
		ri, rj := out[i].Sentiment.Rank(), out[j].Sentiment.Rank()
		if ri != rj {
			return ri < rj
		}
		return out[i].Sentiment < out[j].Sentiment
	})
	return out
}

// Totals counts records per sentiment. Every member of feedback.Sentiments
// is present, zero when absent from the window.
func (w *Window) Totals() map[feedback.Sentiment]int {
	totals := make(map[feedback.Sentiment]int, len(feedback.Sentiments))
	for _, s := range feedback.Sentiments {
		totals[s] = 0
	}
	for _, rec := range w.Records {
		totals[rec.Attributes.Sentiment]++
	}
	return totals
}

// SampleByCategory returns up to max feedback texts in category c.
func (w *Window) SampleByCategory(c feedback.Category, max int, seed uint64) []string {
	return w.sample(func(rec feedback.Record) bool { return rec.Attributes.Category == c }, max, seed)
}

// SampleBySentiment returns up to max feedback texts with sentiment s.
func (w *Window) SampleBySentiment(s feedback.Sentiment, max int, seed uint64) []string {
	return w.sample(func(rec feedback.Record) bool { return rec.Attributes.Sentiment == s }, max, seed)
}

// sample shuffles the matching texts, taken in log order, with a generator
// seeded from seed and keeps the first max. Identical inputs always give
// identical output.
func (w *Window) sample(match func(feedback.Record) bool, max int, seed uint64) []string {
	if max <= 0 {
		return []string{}
	}
	var pool []string
	for _, rec := range w.Records {
		if match(rec) {
			pool = append(pool, rec.Feedback)
		}
	}
	rng := rand.New(rand.NewPCG(seed, seed))
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if len(pool) > max {
		pool = pool[:max]
	}
	if pool == nil {
		return []string{}
	}
	return pool
}

// Aggregator answers date-windowed questions over the feedback log.
type Aggregator struct {
	log    Reader
	logger *slog.Logger
}

func New(log Reader, logger *slog.Logger) *Aggregator {
	return &Aggregator{log: log, logger: logger}
}

// Snapshot reads the log once and keeps the records inside r. The range is
// validated before the log is touched.
func (a *Aggregator) Snapshot(ctx context.Context, r Range) (*Window, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	all, err := a.log.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("read feedback log: %w", err)
	}

	w := &Window{Range: r}
	for _, rec := range all {
		if r.Contains(rec.Timestamp) {
			w.Records = append(w.Records, rec)
		}
	}
	a.logger.Debug("window selected", "start", r.Start.Format(DateLayout), "end", r.End.Format(DateLayout),
		"total", len(all), "in_range", len(w.Records))
	return w, nil
}

func (a *Aggregator) CountsByDaySentiment(ctx context.Context, r Range) ([]DayCount, error) {
	w, err := a.Snapshot(ctx, r)
	if err != nil {
		return nil, err
	}
	return w.Trend(), nil
}

func (a *Aggregator) TotalCountsBySentiment(ctx context.Context, r Range) (map[feedback.Sentiment]int, error) {
	w, err := a.Snapshot(ctx, r)
	if err != nil {
		return nil, err
	}
	return w.Totals(), nil
}

func (a *Aggregator) SampleByCategory(ctx context.Context, r Range, c feedback.Category, max int, seed uint64) ([]string, error) {
	w, err := a.Snapshot(ctx, r)
	if err != nil {
		return nil, err
	}
	return w.SampleByCategory(c, max, seed), nil
}
