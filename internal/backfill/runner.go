package backfill

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/steward/internal/aggregate"
	"github.com/MikeSquared-Agency/steward/internal/feedback"
)

// Reader is the read side of the feedback log.
type Reader interface {
	ReadAll(ctx context.Context) ([]feedback.Record, error)
}

// Mirror receives copies of log records.
type Mirror interface {
	WriteRecord(ctx context.Context, rec feedback.Record) (uuid.UUID, error)
}

// Config holds the backfill command configuration.
type Config struct {
	LogPath   string
	StatePath string
	Range     *aggregate.Range // only mirror records inside this range; nil means all
	DryRun    bool
	BatchSize int // save progress every BatchSize rows
}

// Result summarizes one run.
type Result struct {
	Scanned  int
	Mirrored int
	Skipped  int
}

// Runner copies feedback log rows the mirror has not seen yet.
type Runner struct {
	cfg    Config
	log    Reader
	mirror Mirror
	logger *slog.Logger
}

func NewRunner(cfg Config, log Reader, mirror Mirror, logger *slog.Logger) *Runner {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.StatePath == "" {
		cfg.StatePath = DefaultStatePath
	}
	return &Runner{cfg: cfg, log: log, mirror: mirror, logger: logger}
}

// Run mirrors every log row after the saved offset. A write failure saves
// progress and stops, so the next run retries from the failing row.
//
// A ranged run scans the whole log and leaves the saved progress alone, so a
// later full run still mirrors the rows the range skipped.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	var res Result

	prog, err := r.loadProgress()
	if err != nil {
		return res, err
	}

	logPath, err := filepath.Abs(r.cfg.LogPath)
	if err != nil {
		logPath = r.cfg.LogPath
	}
	if prog.LogPath != logPath {
		if prog.LogPath != "" {
			r.logger.Warn("state belongs to a different log, starting over", "state_log", prog.LogPath, "log", logPath)
		}
		prog.Restart(logPath)
	}

	records, err := r.log.ReadAll(ctx)
	if err != nil {
		return res, fmt.Errorf("read feedback log: %w", err)
	}
	if prog.Offset > len(records) {
		r.logger.Warn("log is shorter than saved offset, starting over", "offset", prog.Offset, "rows", len(records))
		prog.Restart(logPath)
	}

	pending := records[prog.Offset:]
	r.logger.Info("backfill starting",
		"log", logPath,
		"offset", prog.Offset,
		"pending", len(pending),
		"dry_run", r.cfg.DryRun,
		"ranged", r.cfg.Range != nil,
	)

	for _, rec := range pending {
		if err := ctx.Err(); err != nil {
			r.logger.Info("backfill interrupted, saving progress", "offset", prog.Offset)
			r.save(prog)
			return res, err
		}

		res.Scanned++
		switch {
		case r.cfg.Range != nil && !r.cfg.Range.Contains(rec.Timestamp):
			res.Skipped++
		case r.cfg.DryRun:
			res.Mirrored++
		default:
			if _, err := r.mirror.WriteRecord(ctx, rec); err != nil {
				row := prog.Offset + 1
				prog.Fail(row, err)
				r.save(prog)
				return res, fmt.Errorf("mirror row %d: %w", row, err)
			}
			res.Mirrored++
			prog.Mirrored++
			prog.LastTimestamp = rec.Timestamp
		}
		prog.Offset++

		if res.Scanned%r.cfg.BatchSize == 0 {
			r.save(prog)
			r.logger.Debug("backfill progress", "scanned", res.Scanned, "mirrored", res.Mirrored)
		}
	}

	r.save(prog)
	r.logger.Info("backfill complete",
		"scanned", res.Scanned,
		"mirrored", res.Mirrored,
		"skipped", res.Skipped,
		"total_mirrored", prog.Mirrored,
	)
	return res, nil
}

func (r *Runner) loadProgress() (*Progress, error) {
	if r.cfg.Range != nil {
		return &Progress{StartedAt: time.Now().UTC()}, nil
	}
	return LoadProgress(r.cfg.StatePath)
}

// persistent reports whether this run records its progress.
func (r *Runner) persistent() bool {
	return !r.cfg.DryRun && r.cfg.Range == nil
}

func (r *Runner) save(prog *Progress) {
	if !r.persistent() {
		return
	}
	if err := prog.Save(); err != nil {
		r.logger.Error("failed to save backfill progress", "error", err)
	}
}
