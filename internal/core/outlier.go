package core

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// DefaultJunkMarkers are case-sensitive substrings that betray release-group
// notices, tracker links and text metadata dropped next to episodes.
var DefaultJunkMarkers = []string{
	"RARBG", "YIFY", "YTS", "EZTV", "eztv", "ETTV", "ettv",
	"www.", "WWW.", "Torrent", "torrent",
	".txt", ".nfo", ".url",
}

// Outlier is a file in a season directory that the plan does not account for
// and whose name carries a junk marker.
type Outlier struct {
	Dir    string
	Name   string
	Marker string
}

// Path returns the absolute path of the outlier.
func (o Outlier) Path() string {
	return filepath.Join(o.Dir, o.Name)
}

// MatchMarker returns the first marker contained in name, or "" when none is.
func MatchMarker(name string, markers []string) string {
	for _, m := range markers {
		if m != "" && strings.Contains(name, m) {
			return m
		}
	}
	return ""
}

// FindOutliers inspects every season directory of the plan, once per
// directory. Files that are neither classified episodes nor operation sources
// are flagged when their name contains one of markers. Directories are never
// flagged.
func FindOutliers(fs afero.Fs, plan *Plan, markers []string, logger Logger) ([]Outlier, Report) {
	var (
		outliers []Outlier
		report   Report
	)
	if plan == nil {
		return nil, report
	}

	sources := make(map[string]bool, len(plan.Operations))
	for _, op := range plan.Operations {
		sources[op.Source] = true
	}

	for _, sp := range plan.Seasons {
		covered := make(map[string]bool, len(sp.Episodes))
		for _, name := range sp.Episodes {
			covered[name] = true
		}

		entries, err := afero.ReadDir(fs, sp.SourceDir)
		if err != nil {
			logger.Error("Failed to list season directory", "dir", plan.Rel(sp.SourceDir), "err", err)
			report.Fail(sp.SourceDir, fmt.Errorf("list for outliers: %w", err))
			continue
		}
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || covered[name] || sources[filepath.Join(sp.SourceDir, name)] {
				continue
			}
			marker := MatchMarker(name, markers)
			if marker == "" {
				logger.Debug("Leaving unrecognized file", "file", name)
				continue
			}
			logger.Info("Flagged outlier", "file", plan.Rel(filepath.Join(sp.SourceDir, name)), "marker", marker)
			outliers = append(outliers, Outlier{Dir: sp.SourceDir, Name: name, Marker: marker})
		}
	}
	return outliers, report
}

// DeleteOutliers permanently removes the flagged files. Deletion is outside
// the ledger and cannot be rolled back. A failed deletion is logged and the
// remaining files are still removed.
func DeleteOutliers(ctx context.Context, fs afero.Fs, outliers []Outlier, logger Logger) Report {
	var report Report
	for i, o := range outliers {
		if err := ctx.Err(); err != nil {
			logger.Warn("Deletion interrupted", "remaining", len(outliers)-i)
			for _, rest := range outliers[i:] {
				report.Skip(rest.Path(), ReasonInterrupted)
			}
			break
		}
		if err := fs.Remove(o.Path()); err != nil {
			logger.Error("Failed to delete", "file", o.Path(), "err", err)
			report.Fail(o.Path(), err)
			continue
		}
		logger.Info("Deleted", "file", o.Path())
		report.Success(o.Path())
	}
	return report
}
