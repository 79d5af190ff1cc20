package backfill

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const DefaultStatePath = "~/.steward/mirror-backfill-state.json"

// maxFailures bounds the failure history kept in the state file.
const maxFailures = 20

// Failure is one row the mirror rejected.
type Failure struct {
	Row   int       `json:"row"`
	Error string    `json:"error"`
	At    time.Time `json:"at"`
}

// Progress records how far the mirror has been filled from one feedback
// log. Offset counts log rows already handled, mirrored or skipped.
type Progress struct {
	LogPath       string    `json:"log_path"`
	Offset        int       `json:"offset"`
	Mirrored      int       `json:"mirrored"`
	LastTimestamp time.Time `json:"last_timestamp,omitempty"`
	StartedAt     time.Time `json:"started_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Failures      []Failure `json:"failures,omitempty"`

	file string
}

// LoadProgress reads the state file at path. A missing file yields empty
// progress that will be written to path on Save.
func LoadProgress(path string) (*Progress, error) {
	file := expandHome(path)

	data, err := os.ReadFile(file)
	if errors.Is(err, fs.ErrNotExist) {
		return &Progress{StartedAt: time.Now().UTC(), file: file}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state %s: %w", file, err)
	}

	p := &Progress{file: file}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parse state %s: %w", file, err)
	}
	return p, nil
}

// Save writes the progress next to its final location and renames it into
// place, so a crash never leaves a half-written state file.
func (p *Progress) Save() error {
	p.UpdatedAt = time.Now().UTC()

	if err := os.MkdirAll(filepath.Dir(p.file), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tmp := p.file + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	if err := os.Rename(tmp, p.file); err != nil {
		return fmt.Errorf("replace state: %w", err)
	}
	return nil
}

// Restart forgets everything and tracks logPath from its first row.
func (p *Progress) Restart(logPath string) {
	*p = Progress{LogPath: logPath, StartedAt: time.Now().UTC(), file: p.file}
}

// Fail records a rejected row, keeping only the most recent failures.
func (p *Progress) Fail(row int, err error) {
	p.Failures = append(p.Failures, Failure{Row: row, Error: err.Error(), At: time.Now().UTC()})
	if n := len(p.Failures); n > maxFailures {
		p.Failures = p.Failures[n-maxFailures:]
	}
}

func expandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~/")
	if !ok {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}
