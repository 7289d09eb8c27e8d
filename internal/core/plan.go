package core

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/Digital-Shane/season-tidy/internal/media"
	"github.com/spf13/afero"
)

// SeasonPlan describes one recognized season directory.
//
// Episodes lists every classified episode file name in SourceDir, including
// files that are already canonical and therefore have no operation.
type SeasonPlan struct {
	Season    media.Season
	SourceDir string
	TargetDir string
	Episodes  []string
}

// Plan is the ordered set of renames needed to canonicalize a library root.
type Plan struct {
	Root       string
	Series     string
	Operations []RenameOperation
	Seasons    []SeasonPlan
	Report     Report
}

// Empty reports whether the plan contains no operations.
func (p *Plan) Empty() bool {
	return p == nil || len(p.Operations) == 0
}

// Rel returns path relative to the plan root for display, or path itself when
// it lies elsewhere.
func (p *Plan) Rel(path string) string {
	if p == nil || p.Root == "" {
		return path
	}
	rel, err := filepath.Rel(p.Root, path)
	if err != nil {
		return path
	}
	return rel
}

// BuildPlan walks root (season directories) and their files (episodes) and
// returns the renames that would canonicalize them. The filesystem is only
// read.
//
// Per-entry problems are logged and recorded in Plan.Report. Only a failure to
// list root itself is returned as an error, alongside an empty plan.
func BuildPlan(ctx context.Context, fs afero.Fs, root, series string, logger Logger) (*Plan, error) {
	plan := &Plan{Root: root}

	title, err := SanitizeName(series)
	if err != nil {
		logger.Error("Invalid series title", "series", series, "err", err)
		return plan, fmt.Errorf("invalid series title: %w", err)
	}
	if title != series {
		logger.Warn("Series title sanitized", "from", series, "to", title)
	}
	plan.Series = title

	logger.Info("Starting operation gathering", "root", root)
	entries, err := afero.ReadDir(fs, root)
	if err != nil {
		logger.Error("Failed gathering operations", "root", root, "err", err)
		return plan, fmt.Errorf("read root %s: %w", root, err)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return plan, err
		}
		name := entry.Name()
		if media.IsHidden(name) || !entry.IsDir() {
			logger.Debug("Ignoring root entry", "name", name)
			continue
		}

		season, ok := media.ClassifySeason(name)
		if !ok {
			logger.Warn("Skipping unknown folder", "name", name)
			plan.Report.Skip(filepath.Join(root, name), "no season marker")
			continue
		}
		plan.addSeason(fs, name, season, logger)
	}

	logger.Info("Gathering complete", "operations", len(plan.Operations))
	return plan, nil
}

// addSeason plans the episode files of one season directory, then the
// directory itself, so file moves always refer to the original parent path.
func (p *Plan) addSeason(fs afero.Fs, dirName string, season media.Season, logger Logger) {
	sourceDir := filepath.Join(p.Root, dirName)
	targetDir := filepath.Join(p.Root, media.SeasonDirName(p.Series, season))
	logger.Debug("Processing directory", "name", dirName, "season", season.String())

	files, err := afero.ReadDir(fs, sourceDir)
	if err != nil {
		logger.Error("Failed to read season directory", "dir", dirName, "err", err)
		p.Report.Fail(sourceDir, fmt.Errorf("read season directory: %w", err))
		return
	}

	sp := SeasonPlan{Season: season, SourceDir: sourceDir, TargetDir: targetDir}
	for _, f := range files {
		name := f.Name()
		if f.IsDir() || media.IsHidden(name) {
			continue
		}
		logger.Debug("Examining file", "file", name)

		episode, ok := media.ClassifyEpisode(name)
		if !ok {
			logger.Warn("Skipping file, no episode found", "file", name)
			p.Report.Skip(filepath.Join(sourceDir, name), "no episode marker")
			continue
		}
		sp.Episodes = append(sp.Episodes, name)

		src := filepath.Join(sourceDir, name)
		dst := filepath.Join(targetDir, media.EpisodeFileName(p.Series, season, episode, media.Extension(name)))
		if src == dst {
			continue
		}
		p.Operations = append(p.Operations, RenameOperation{Source: src, Destination: dst, Kind: KindFile})
		logger.Info("Planned rename", "from", p.Rel(src), "to", p.Rel(dst))
	}

	if sourceDir != targetDir {
		p.Operations = append(p.Operations, RenameOperation{Source: sourceDir, Destination: targetDir, Kind: KindDir})
		logger.Info("Planned folder rename", "from", dirName, "to", filepath.Base(targetDir))
	}
	p.Seasons = append(p.Seasons, sp)
}
