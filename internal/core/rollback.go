package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Rollback reverses ledger entries in exact reverse order of application.
// It is best effort: entries whose renamed path has vanished are skipped with
// a warning, failures are logged, and neither stops the remaining entries.
//
// The report holds exactly one result per entry, last entry first.
func Rollback(ctx context.Context, fs afero.Fs, ledger *Ledger, logger Logger) Report {
	var report Report
	entries := ledger.Entries()
	logger.Warn("Starting rollback", "entries", len(entries))

	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if err := ctx.Err(); err != nil {
			logger.Warn("Rollback interrupted", "remaining", i+1, "err", err)
			for j := i; j >= 0; j-- {
				report.Skip(subjectOf(entries[j]), ReasonInterrupted)
			}
			break
		}

		skipReason, err := rollbackEntry(fs, e)
		subject := subjectOf(e)
		switch {
		case err != nil:
			logger.Error("Failed to roll back", "type", e.Type, "path", subject, "err", err)
			report.Fail(subject, err)
		case skipReason != "":
			logger.Warn("Skipping rollback", "type", e.Type, "path", subject, "reason", skipReason)
			report.Skip(subject, skipReason)
		default:
			logger.Info("Rolled back", "type", e.Type, "from", e.Destination, "to", e.Source)
			report.Success(subject)
		}
	}

	logger.Warn("Rollback complete", "restored", report.Count(StatusSuccess), "skipped", report.Count(StatusSkipped), "failed", report.Count(StatusFailed))
	return report
}

// Unreverted returns, in ledger order, the indexes of entries that a Rollback
// of ledger left applied: failed entries and entries skipped by cancellation.
func Unreverted(ledger *Ledger, report Report) []int {
	n := ledger.Len()
	var out []int
	for k := len(report.Results) - 1; k >= 0; k-- {
		if k >= n {
			continue
		}
		res := report.Results[k]
		if res.Status == StatusFailed || (res.Status == StatusSkipped && res.Reason == ReasonInterrupted) {
			out = append(out, n-1-k)
		}
	}
	return out
}

func subjectOf(e LedgerEntry) string {
	if e.Type == OpCreateDir {
		return e.Destination
	}
	return e.Source
}

// rollbackEntry undoes one entry. A non-empty skip reason means nothing was
// done and nothing went wrong.
func rollbackEntry(fs afero.Fs, e LedgerEntry) (string, error) {
	switch e.Type {
	case OpRename:
		return undoRename(fs, e.Destination, e.Source)
	case OpCreateDir:
		return undoCreateDir(fs, e.Destination)
	case OpMergeDir:
		return "", undoMerge(fs, e)
	default:
		return "", fmt.Errorf("unknown ledger entry type %q", e.Type)
	}
}

func undoRename(fs afero.Fs, current, original string) (string, error) {
	exists, err := afero.Exists(fs, current)
	if err != nil {
		return "", err
	}
	if !exists {
		return "renamed path no longer exists", nil
	}
	if err := checkFree(fs, current, original); err != nil {
		if errors.Is(err, ErrDestinationExists) {
			return "", fmt.Errorf("%s: %w", original, ErrOriginalExists)
		}
		return "", err
	}
	if err := fs.Rename(current, original); err != nil {
		return "", err
	}
	return "", nil
}

func undoCreateDir(fs afero.Fs, dir string) (string, error) {
	info, err := fs.Stat(dir)
	if os.IsNotExist(err) {
		return "directory already removed", nil
	}
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", dir)
	}
	empty, err := afero.IsEmpty(fs, dir)
	if err != nil {
		return "", err
	}
	if !empty {
		return "", fmt.Errorf("%s: %w", dir, ErrNotEmpty)
	}
	return "", fs.Remove(dir)
}

// undoMerge recreates the merged-away source directory and moves its former
// children back out of the destination.
func undoMerge(fs afero.Fs, e LedgerEntry) error {
	if e.RemovedSource {
		if err := fs.MkdirAll(e.Source, 0o755); err != nil {
			return fmt.Errorf("recreate %s: %w", e.Source, err)
		}
	}

	var errs []error
	for i := len(e.Children) - 1; i >= 0; i-- {
		name := e.Children[i]
		reason, err := undoRename(fs, filepath.Join(e.Destination, name), filepath.Join(e.Source, name))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if reason != "" {
			errs = append(errs, fmt.Errorf("%s: %s", name, reason))
		}
	}
	return errors.Join(errs...)
}
