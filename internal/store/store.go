package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeSquared-Agency/steward/internal/feedback"
	"github.com/MikeSquared-Agency/steward/internal/feedbacklog"
)

const schema = `
CREATE TABLE IF NOT EXISTS feedback_records (
	id          UUID PRIMARY KEY,
	recorded_at TIMESTAMP NOT NULL,
	feedback    TEXT NOT NULL,
	sentiment   TEXT NOT NULL,
	urgency     TEXT NOT NULL,
	emotion     TEXT NOT NULL,
	category    TEXT NOT NULL,
	reply       TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS feedback_records_recorded_at_idx ON feedback_records (recorded_at);`

// Store mirrors feedback records into Postgres for ad-hoc querying. The CSV
// log stays authoritative.
type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// EnsureSchema creates the mirror table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create feedback_records: %w", err)
	}
	return nil
}

// recordNamespace scopes the name-based row ids of mirrored records.
var recordNamespace = uuid.MustParse("5b1f0c5e-3d6a-4f55-9a57-2f7c1e0d8a41")

// RecordID derives the mirror row id from the record's timestamp as written
// to the log, its text and its reply. A record returned by Append and the
// same row read back from the log share an id.
func RecordID(rec feedback.Record) uuid.UUID {
	key := rec.Timestamp.Format(feedbacklog.TimestampLayout) + "\x00" + rec.Feedback + "\x00" + rec.Reply
	return uuid.NewSHA1(recordNamespace, []byte(key))
}

// wallClock drops the location of ts, keeping the date and time as the log
// stores them.
func wallClock(ts time.Time) time.Time {
	y, mo, d := ts.Date()
	h, mi, sec := ts.Clock()
	return time.Date(y, mo, d, h, mi, sec, 0, time.UTC)
}

// WriteRecord inserts rec and returns its row id. Writing a record that is
// already mirrored is a no-op.
func (s *Store) WriteRecord(ctx context.Context, rec feedback.Record) (uuid.UUID, error) {
	id := RecordID(rec)
	a := rec.Attributes
	_, err := s.pool.Exec(ctx, `
		INSERT INTO feedback_records (id, recorded_at, feedback, sentiment, urgency, emotion, category, reply)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING`,
		id, wallClock(rec.Timestamp), rec.Feedback, string(a.Sentiment), string(a.Urgency), a.Emotion, string(a.Category), rec.Reply,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert feedback record: %w", err)
	}
	return id, nil
}
