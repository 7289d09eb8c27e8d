package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/afero"
)

// ErrNoSessions is returned when the journal directory holds no readable session.
var ErrNoSessions = errors.New("no sessions found")

// Journal stores sessions as JSON files in a directory.
type Journal struct {
	fs            afero.Fs
	dir           string
	retentionDays int
	now           func() time.Time
}

// New returns a journal rooted at dir. Sessions older than retentionDays are
// pruned on save; zero or less keeps everything.
func New(fs afero.Fs, dir string, retentionDays int) *Journal {
	return &Journal{fs: fs, dir: dir, retentionDays: retentionDays, now: time.Now}
}

// DefaultDir returns ~/.season-tidy/logs.
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".season-tidy", "logs"), nil
}

// Start begins a new in-memory session. Nothing is written until Save.
func (j *Journal) Start(args []string, root, series string) *LogSession {
	return NewSession(args, root, series, j.now())
}

// Save writes s to its journal file, choosing a timestamped file name the
// first time. Saving again overwrites the same file.
func (j *Journal) Save(s *LogSession) error {
	if s == nil {
		return nil
	}
	if err := j.fs.MkdirAll(j.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	if err := j.Prune(); err != nil {
		return err
	}

	if s.Path == "" {
		ts := s.Metadata.Timestamp
		s.Path = filepath.Join(j.dir, fmt.Sprintf("%s.%03d.json", ts.Format("2006-01-02_150405"), ts.Nanosecond()/1000000))
	}
	s.updateStats()

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := afero.WriteFile(j.fs, s.Path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write log file: %w", err)
	}
	return nil
}

// Read loads a single session file.
func (j *Journal) Read(path string) (*LogSession, error) {
	data, err := afero.ReadFile(j.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}

	var s LogSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	s.Path = path
	return &s, nil
}

// Sessions returns up to limit sessions, newest first. A limit of zero or
// less returns all of them. Corrupted files are skipped.
func (j *Journal) Sessions(limit int) ([]*LogSession, error) {
	files, err := j.files()
	if err != nil {
		return nil, err
	}
	sort.Sort(sort.Reverse(sort.StringSlice(files)))

	sessions := make([]*LogSession, 0, len(files))
	for _, file := range files {
		if limit > 0 && len(sessions) == limit {
			break
		}
		s, err := j.Read(file)
		if err != nil {
			continue
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

// Latest returns the newest session.
func (j *Journal) Latest() (*LogSession, error) {
	sessions, err := j.Sessions(1)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, ErrNoSessions
	}
	return sessions[0], nil
}

// Find returns the session with the given id.
func (j *Journal) Find(id string) (*LogSession, error) {
	sessions, err := j.Sessions(0)
	if err != nil {
		return nil, err
	}
	for _, s := range sessions {
		if s.Metadata.SessionID == id {
			return s, nil
		}
	}
	return nil, fmt.Errorf("session %q: %w", id, ErrNoSessions)
}

// Prune removes session files last modified before the retention window.
func (j *Journal) Prune() error {
	if j.retentionDays <= 0 {
		return nil
	}
	files, err := j.files()
	if err != nil {
		return err
	}

	cutoff := j.now().AddDate(0, 0, -j.retentionDays)
	var errs []error
	for _, file := range files {
		info, err := j.fs.Stat(file)
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := j.fs.Remove(file); err != nil {
				errs = append(errs, fmt.Errorf("failed to remove old log file %s: %w", file, err))
			}
		}
	}
	return errors.Join(errs...)
}

func (j *Journal) files() ([]string, error) {
	if ok, err := afero.DirExists(j.fs, j.dir); err != nil || !ok {
		return nil, err
	}
	files, err := afero.Glob(j.fs, filepath.Join(j.dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list log files: %w", err)
	}
	return files, nil
}
