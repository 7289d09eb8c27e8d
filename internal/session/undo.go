package session

import (
	"context"
	"fmt"
	"time"

	"github.com/Digital-Shane/season-tidy/internal/core"
	"github.com/spf13/afero"
)

// Undo rolls back the entries of the session that are still applied. The
// session is marked rolled back only when every entry was reverted. Deleted
// outliers are reported as skipped since they cannot be restored.
func Undo(ctx context.Context, fs afero.Fs, s *LogSession, logger core.Logger) (core.Report, error) {
	var report core.Report
	if s.Metadata.RolledBack {
		return report, fmt.Errorf("session %s was already rolled back", s.Metadata.SessionID)
	}

	report = core.Rollback(ctx, fs, s.Ledger(), logger)
	s.RecordRollback(report)
	for _, path := range s.Deletions() {
		report.Skip(path, "deleted files cannot be restored")
	}
	return report, nil
}

// Summary is a listing row for one session.
type Summary struct {
	Session      *LogSession
	RelativeTime string
}

// Summaries returns listing rows for up to limit sessions, newest first.
func (j *Journal) Summaries(limit int) ([]Summary, error) {
	sessions, err := j.Sessions(limit)
	if err != nil {
		return nil, err
	}
	now := j.now()
	summaries := make([]Summary, 0, len(sessions))
	for _, s := range sessions {
		summaries = append(summaries, Summary{
			Session:      s,
			RelativeTime: formatRelativeTime(now, s.Metadata.Timestamp),
		})
	}
	return summaries, nil
}

func formatRelativeTime(now, t time.Time) string {
	duration := now.Sub(t)
	switch {
	case duration < time.Minute:
		return "just now"
	case duration < time.Hour:
		mins := int(duration.Minutes())
		return fmt.Sprintf("%d minute%s ago", mins, plural(mins))
	case duration < 24*time.Hour:
		hours := int(duration.Hours())
		return fmt.Sprintf("%d hour%s ago", hours, plural(hours))
	case duration < 7*24*time.Hour:
		days := int(duration.Hours() / 24)
		return fmt.Sprintf("%d day%s ago", days, plural(days))
	default:
		return t.Format("Jan 2, 2006")
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
