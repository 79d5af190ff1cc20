package aggregate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"testing"
	"time"

	"github.com/MikeSquared-Agency/steward/internal/feedback"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeLog struct {
	records []feedback.Record
	err     error
	reads   int
}

func (f *fakeLog) ReadAll(ctx context.Context) ([]feedback.Record, error) {
	f.reads++
	return f.records, f.err
}

func rec(ts string, s feedback.Sentiment, c feedback.Category, text string) feedback.Record {
	t, err := time.Parse("2006-01-02T15:04:05", ts)
	if err != nil {
		panic(err)
	}
	return feedback.Record{
		Timestamp:  t,
		Feedback:   text,
		Attributes: feedback.Attributes{Sentiment: s, Urgency: feedback.UrgencyLow, Emotion: "calm", Category: c},
	}
}

func mustRange(t *testing.T, start, end string) Range {
	t.Helper()
	r, err := ParseRange(start, end)
	if err != nil {
		t.Fatalf("ParseRange(%q, %q): %v", start, end, err)
	}
	return r
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		want       error
	}{
		{"valid", "2024-01-01", "2024-01-31", nil},
		{"same day", "2024-02-29", "2024-02-29", nil},
		{"missing start", "", "2024-01-31", feedback.ErrValidation},
		{"missing end", "2024-01-01", "  ", feedback.ErrValidation},
		{"invalid month", "2024-13-01", "2024-12-31", feedback.ErrRange},
		{"wrong layout", "01/02/2024", "2024-12-31", feedback.ErrRange},
		{"start after end", "2024-02-01", "2024-01-31", feedback.ErrRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRange(tt.start, tt.end)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestSnapshot_StartAfterEndReadsNothing(t *testing.T) {
	log := &fakeLog{}
	a := New(log, discardLogger())
	bad := Range{Start: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), End: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}

	if _, err := a.CountsByDaySentiment(context.Background(), bad); !errors.Is(err, feedback.ErrRange) {
		t.Errorf("expected ErrRange, got %v", err)
	}
	if _, err := a.TotalCountsBySentiment(context.Background(), bad); !errors.Is(err, feedback.ErrRange) {
		t.Errorf("expected ErrRange, got %v", err)
	}
	if _, err := a.SampleByCategory(context.Background(), bad, feedback.CategoryOther, 5, 42); !errors.Is(err, feedback.ErrRange) {
		t.Errorf("expected ErrRange, got %v", err)
	}
	if log.reads != 0 {
		t.Errorf("log read %d times for an invalid range", log.reads)
	}
}

func TestSnapshot_StorageErrorPropagates(t *testing.T) {
	a := New(&fakeLog{err: feedback.ErrLogNotFound}, discardLogger())
	_, err := a.TotalCountsBySentiment(context.Background(), mustRange(t, "2024-01-01", "2024-01-02"))
	if !errors.Is(err, feedback.ErrLogNotFound) {
		t.Errorf("expected ErrLogNotFound, got %v", err)
	}
}

func TestRange_InclusiveByCalendarDate(t *testing.T) {
	log := &fakeLog{records: []feedback.Record{
		rec("2024-02-29T23:59:59", feedback.SentimentPositive, feedback.CategoryOther, "before"),
		rec("2024-03-01T00:00:00", feedback.SentimentPositive, feedback.CategoryOther, "first instant"),
		rec("2024-03-03T23:59:59", feedback.SentimentNegative, feedback.CategoryOther, "last instant"),
		rec("2024-03-04T00:00:00", feedback.SentimentNegative, feedback.CategoryOther, "after"),
	}}
	w, err := New(log, discardLogger()).Snapshot(context.Background(), mustRange(t, "2024-03-01", "2024-03-03"))
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(w.Records) != 2 {
		t.Fatalf("expected 2 records in range, got %d", len(w.Records))
	}
	if w.Records[0].Feedback != "first instant" || w.Records[1].Feedback != "last instant" {
		t.Errorf("unexpected records: %q, %q", w.Records[0].Feedback, w.Records[1].Feedback)
	}
}

func TestTrend_EachRecordInExactlyOneBucket(t *testing.T) {
	var records []feedback.Record
	for d := 1; d <= 10; d++ {
		for i, s := range feedback.Sentiments {
			if (d+i)%3 == 0 {
				continue
			}
			for n := 0; n <= i; n++ {
				records = append(records, rec(fmt.Sprintf("2024-04-%02dT%02d:00:00", d, 8+n), s, feedback.CategoryDelivery, "x"))
			}
		}
	}
	a := New(&fakeLog{records: records}, discardLogger())
	r := mustRange(t, "2024-04-03", "2024-04-07")

	trend, err := a.CountsByDaySentiment(context.Background(), r)
	if err != nil {
		t.Fatalf("CountsByDaySentiment failed: %v", err)
	}

	inRange := 0
	for _, rr := range records {
		if r.Contains(rr.Timestamp) {
			inRange++
		}
	}
	sum := 0
	seen := make(map[string]bool)
	for i, dc := range trend {
		if dc.Count == 0 {
			t.Errorf("zero bucket %s/%s should be omitted", dc.Date(), dc.Sentiment)
		}
		if !r.Contains(dc.Day) {
			t.Errorf("bucket day %s outside range", dc.Date())
		}
		k := dc.Date() + "/" + string(dc.Sentiment)
		if seen[k] {
			t.Errorf("duplicate bucket %s", k)
		}
		seen[k] = true
		sum += dc.Count

		if i > 0 {
			prev := trend[i-1]
			if dc.Day.Before(prev.Day) || (dc.Day.Equal(prev.Day) && dc.Sentiment.Rank() < prev.Sentiment.Rank()) {
				t.Errorf("trend not ordered at %d: %s/%s after %s/%s", i, dc.Date(), dc.Sentiment, prev.Date(), prev.Sentiment)
			}
		}
	}
	if sum != inRange {
		t.Errorf("bucket total %d, want %d records in range", sum, inRange)
	}
}

func TestTotals_AllSentimentsPresent(t *testing.T) {
	log := &fakeLog{records: []feedback.Record{
		rec("2024-05-01T10:00:00", feedback.SentimentVeryPositive, feedback.CategoryFoodQuality, "a"),
		rec("2024-05-01T11:00:00", feedback.SentimentVeryPositive, feedback.CategoryFoodQuality, "b"),
		rec("2024-05-02T11:00:00", feedback.SentimentNeutral, feedback.CategoryPricing, "c"),
	}}
	totals, err := New(log, discardLogger()).TotalCountsBySentiment(context.Background(), mustRange(t, "2024-05-01", "2024-05-31"))
	if err != nil {
		t.Fatalf("TotalCountsBySentiment failed: %v", err)
	}
	want := map[feedback.Sentiment]int{
		feedback.SentimentVeryNegative: 0,
		feedback.SentimentNegative:     0,
		feedback.SentimentNeutral:      1,
		feedback.SentimentPositive:     0,
		feedback.SentimentVeryPositive: 2,
	}
	if !reflect.DeepEqual(totals, want) {
		t.Errorf("got %v, want %v", totals, want)
	}
}

func TestSampleByCategory_DeterministicAndCapped(t *testing.T) {
	var records []feedback.Record
	for i := 0; i < 1000; i++ {
		records = append(records, rec("2024-06-15T12:00:00", feedback.SentimentNegative, feedback.CategoryWaitingTime, fmt.Sprintf("slow %d", i)))
	}
	records = append(records, rec("2024-06-15T12:00:00", feedback.SentimentNegative, feedback.CategoryPricing, "pricey"))

	a := New(&fakeLog{records: records}, discardLogger())
	r := mustRange(t, "2024-06-01", "2024-06-30")
	ctx := context.Background()

	first, err := a.SampleByCategory(ctx, r, feedback.CategoryWaitingTime, DefaultMaxSamples, DefaultSeed)
	if err != nil {
		t.Fatalf("SampleByCategory failed: %v", err)
	}
	if len(first) != DefaultMaxSamples {
		t.Fatalf("expected %d samples, got %d", DefaultMaxSamples, len(first))
	}
	for i := 0; i < 5; i++ {
		again, err := a.SampleByCategory(ctx, r, feedback.CategoryWaitingTime, DefaultMaxSamples, DefaultSeed)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("sample changed between calls: %v vs %v", first, again)
		}
	}
	for _, s := range first {
		if s == "pricey" {
			t.Errorf("sample leaked a record from another category")
		}
	}
}

func TestSampleByCategory_FewerThanMax(t *testing.T) {
	log := &fakeLog{records: []feedback.Record{
		rec("2024-06-15T12:00:00", feedback.SentimentPositive, feedback.CategoryCleanliness, "spotless"),
		rec("2024-06-16T12:00:00", feedback.SentimentPositive, feedback.CategoryCleanliness, "shiny floors"),
		rec("2024-07-16T12:00:00", feedback.SentimentPositive, feedback.CategoryCleanliness, "out of range"),
	}}
	got, err := New(log, discardLogger()).SampleByCategory(context.Background(), mustRange(t, "2024-06-01", "2024-06-30"), feedback.CategoryCleanliness, 5, 42)
	if err != nil {
		t.Fatalf("SampleByCategory failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 samples, got %v", got)
	}
	for _, s := range got {
		if s == "out of range" {
			t.Errorf("sample includes a record outside the range")
		}
	}
}

func TestSample_NoMatchesIsEmpty(t *testing.T) {
	w := &Window{}
	if got := w.SampleBySentiment(feedback.SentimentVeryNegative, 5, 42); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
	if got := w.SampleByCategory(feedback.CategoryOther, 0, 42); len(got) != 0 {
		t.Errorf("expected no samples for max 0, got %v", got)
	}
}
