package feedbacklog

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/MikeSquared-Agency/steward/internal/feedback"
)

// TimestampLayout is the on-disk timestamp format, ISO-8601 at seconds precision.
const TimestampLayout = "2006-01-02T15:04:05"

// Header is the fixed column order of the log.
var Header = []string{"timestamp", "feedback", "sentiment", "urgency", "emotion", "category", "reply"}

var readLayouts = []string{
	TimestampLayout,
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
}

// Log is an append-only CSV file of feedback records.
//
// Appends are serialized and each one is a single write of complete rows.
// Readers share the lock with each other and see the file as of the start of
// their read.
type Log struct {
	path   string
	logger *slog.Logger
	now    func() time.Time

	mu   sync.RWMutex
	last time.Time
}

func Open(path string, logger *slog.Logger) *Log {
	return &Log{path: path, logger: logger, now: time.Now}
}

// Append stamps rec with the current time and writes it as one row. The
// header row is written first when the file is new or empty. The stored
// record is returned.
func (l *Log) Append(ctx context.Context, rec feedback.Record) (feedback.Record, error) {
	if err := ctx.Err(); err != nil {
		return feedback.Record{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	ts := l.now().Truncate(time.Second)
	if ts.Before(l.last) {
		ts = l.last
	}
	rec.Timestamp = ts

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return feedback.Record{}, fmt.Errorf("%w: open %s: %v", feedback.ErrStorage, l.path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return feedback.Record{}, fmt.Errorf("%w: stat %s: %v", feedback.ErrStorage, l.path, err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if info.Size() == 0 {
		w.Write(Header)
	}
	w.Write(encode(rec))
	w.Flush()
	if err := w.Error(); err != nil {
		return feedback.Record{}, fmt.Errorf("%w: encode row: %v", feedback.ErrStorage, err)
	}

	if _, err := f.Write(buf.Bytes()); err != nil {
		return feedback.Record{}, fmt.Errorf("%w: write %s: %v", feedback.ErrStorage, l.path, err)
	}

	l.last = ts
	l.logger.Debug("feedback appended", "path", l.path, "timestamp", ts.Format(TimestampLayout), "new_file", info.Size() == 0)
	return rec, nil
}

// ReadAll returns every record in append order. A missing file is
// feedback.ErrLogNotFound.
func (l *Log) ReadAll(ctx context.Context) ([]feedback.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.RLock()
	data, err := os.ReadFile(l.path)
	l.mu.RUnlock()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, feedback.ErrLogNotFound
		}
		return nil, fmt.Errorf("%w: read %s: %v", feedback.ErrStorage, l.path, err)
	}

	return Decode(bytes.NewReader(data))
}

func encode(rec feedback.Record) []string {
	a := rec.Attributes
	return []string{
		rec.Timestamp.Format(TimestampLayout),
		rec.Feedback,
		string(a.Sentiment),
		string(a.Urgency),
		a.Emotion,
		string(a.Category),
		rec.Reply,
	}
}

// Decode reads a log from r. Columns are matched by header name; the
// emotion, category, urgency and reply columns are optional so older
// datasets still load.
func Decode(r io.Reader) ([]feedback.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", feedback.ErrStorage, err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, required := range []string{"timestamp", "feedback", "sentiment"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: header missing %q column", feedback.ErrStorage, required)
		}
	}
	get := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var records []feedback.Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read row: %v", feedback.ErrStorage, err)
		}
		line, _ := cr.FieldPos(0)

		ts, err := parseTimestamp(get(row, "timestamp"))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", feedback.ErrStorage, line, err)
		}

		records = append(records, feedback.Record{
			Timestamp: ts,
			Feedback:  get(row, "feedback"),
			Attributes: feedback.Attributes{
				Sentiment: feedback.Sentiment(strings.TrimSpace(get(row, "sentiment"))),
				Urgency:   feedback.Urgency(strings.TrimSpace(get(row, "urgency"))),
				Emotion:   strings.TrimSpace(get(row, "emotion")),
				Category:  feedback.Category(strings.TrimSpace(get(row, "category"))),
			},
			Reply: get(row, "reply"),
		})
	}
	return records, nil
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range readLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}
