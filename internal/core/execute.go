package core

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/afero"
)

var (
	// ErrDestinationExists is returned instead of overwriting an existing path.
	ErrDestinationExists = errors.New("destination already exists")
	// ErrOriginalExists is returned when rollback would overwrite the original path.
	ErrOriginalExists = errors.New("original path already exists")
	// ErrNotEmpty is returned when rollback finds a created directory in use.
	ErrNotEmpty = errors.New("directory not empty")
)

// Apply executes the plan deepest-source-first and returns the ledger of
// changes that were committed. A failing operation is logged and recorded in
// the report; the remaining operations still run. Cancelling ctx stops before
// the next operation.
func Apply(ctx context.Context, fs afero.Fs, plan *Plan, logger Logger) (*Ledger, Report) {
	ledger := NewLedger()
	var report Report
	if plan.Empty() {
		return ledger, report
	}

	ordered := slices.Clone(plan.Operations)
	slices.SortStableFunc(ordered, func(a, b RenameOperation) int {
		return cmp.Compare(b.Depth(), a.Depth())
	})

	for i, op := range ordered {
		if err := ctx.Err(); err != nil {
			logger.Warn("Renaming interrupted", "remaining", len(ordered)-i, "err", err)
			for _, rest := range ordered[i:] {
				report.Skip(rest.Source, ReasonInterrupted)
			}
			break
		}

		var err error
		if op.Kind == KindDir {
			err = applyDir(fs, op, ledger)
		} else {
			err = applyFile(fs, op, ledger)
		}
		if err != nil {
			logger.Error("Failed to rename", "from", plan.Rel(op.Source), "to", plan.Rel(op.Destination), "err", err)
			report.Fail(op.Source, err)
			continue
		}
		logger.Info("Renamed", "from", plan.Rel(op.Source), "to", plan.Rel(op.Destination))
		report.Success(op.Source)
	}

	logger.Info("Renaming complete", "applied", report.Count(StatusSuccess), "failed", report.Count(StatusFailed))
	return ledger, report
}

func applyFile(fs afero.Fs, op RenameOperation, ledger *Ledger) error {
	if err := ensureDir(fs, filepath.Dir(op.Destination), ledger); err != nil {
		return err
	}
	if err := checkFree(fs, op.Source, op.Destination); err != nil {
		return err
	}
	if err := fs.Rename(op.Source, op.Destination); err != nil {
		return err
	}
	ledger.record(LedgerEntry{Type: OpRename, Kind: op.Kind, Source: op.Source, Destination: op.Destination})
	return nil
}

// applyDir renames a season directory. When its files were already moved into
// the canonical directory, the destination exists and the leftovers are merged
// into it instead.
func applyDir(fs afero.Fs, op RenameOperation, ledger *Ledger) error {
	info, err := fs.Stat(op.Destination)
	switch {
	case os.IsNotExist(err):
		if err := ensureDir(fs, filepath.Dir(op.Destination), ledger); err != nil {
			return err
		}
		if err := fs.Rename(op.Source, op.Destination); err != nil {
			return err
		}
		ledger.record(LedgerEntry{Type: OpRename, Kind: op.Kind, Source: op.Source, Destination: op.Destination})
		return nil
	case err != nil:
		return err
	case sameEntry(fs, op.Source, info):
		// Case-only rename on a case-insensitive filesystem.
		if err := fs.Rename(op.Source, op.Destination); err != nil {
			return err
		}
		ledger.record(LedgerEntry{Type: OpRename, Kind: op.Kind, Source: op.Source, Destination: op.Destination})
		return nil
	case !info.IsDir():
		return fmt.Errorf("%s: %w", op.Destination, ErrDestinationExists)
	}
	return mergeDir(fs, op, ledger)
}

// mergeDir moves every remaining child of op.Source into op.Destination and
// removes op.Source once empty. A partial merge is still recorded so rollback
// can move the children that did move.
func mergeDir(fs afero.Fs, op RenameOperation, ledger *Ledger) error {
	children, err := afero.ReadDir(fs, op.Source)
	if err != nil {
		return fmt.Errorf("read %s: %w", op.Source, err)
	}

	entry := LedgerEntry{Type: OpMergeDir, Kind: op.Kind, Source: op.Source, Destination: op.Destination}
	var errs []error
	for _, child := range children {
		from := filepath.Join(op.Source, child.Name())
		to := filepath.Join(op.Destination, child.Name())
		if err := checkFree(fs, from, to); err != nil {
			errs = append(errs, err)
			continue
		}
		if err := fs.Rename(from, to); err != nil {
			errs = append(errs, err)
			continue
		}
		entry.Children = append(entry.Children, child.Name())
	}

	if len(errs) == 0 {
		if err := fs.Remove(op.Source); err != nil {
			errs = append(errs, fmt.Errorf("remove merged directory: %w", err))
		} else {
			entry.RemovedSource = true
		}
	}
	if len(entry.Children) > 0 || entry.RemovedSource {
		ledger.record(entry)
	}
	return errors.Join(errs...)
}

// ensureDir creates dir and any missing ancestors, journaling each created
// directory top-down so rollback can remove them bottom-up.
func ensureDir(fs afero.Fs, dir string, ledger *Ledger) error {
	var missing []string
	for d := dir; ; {
		info, err := fs.Stat(d)
		if err == nil {
			if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", d)
			}
			break
		}
		if !os.IsNotExist(err) {
			return err
		}
		missing = append(missing, d)
		parent := filepath.Dir(d)
		if parent == d {
			break
		}
		d = parent
	}
	if len(missing) == 0 {
		return nil
	}

	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	for i := len(missing) - 1; i >= 0; i-- {
		ledger.record(LedgerEntry{Type: OpCreateDir, Destination: missing[i]})
	}
	return nil
}

// checkFree returns ErrDestinationExists when dst is taken by something other
// than src itself.
func checkFree(fs afero.Fs, src, dst string) error {
	info, err := fs.Stat(dst)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if sameEntry(fs, src, info) {
		return nil
	}
	return fmt.Errorf("%s: %w", dst, ErrDestinationExists)
}

func sameEntry(fs afero.Fs, path string, other os.FileInfo) bool {
	info, err := fs.Stat(path)
	if err != nil {
		return false
	}
	return os.SameFile(info, other)
}
