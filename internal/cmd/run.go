package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/Digital-Shane/season-tidy/internal/config"
	"github.com/Digital-Shane/season-tidy/internal/core"
	"github.com/Digital-Shane/season-tidy/internal/session"
	"github.com/Digital-Shane/season-tidy/internal/tui"
	"github.com/Digital-Shane/season-tidy/internal/tui/theme"
	"github.com/spf13/afero"
)

// Runner drives one plan, delete, apply and rollback pass over a library.
type Runner struct {
	Fs      afero.Fs
	Config  *config.Config
	Logger  core.Logger
	Confirm Confirmer
	// Journal is nil when journaling is disabled.
	Journal *session.Journal
	Out     io.Writer
	Theme   theme.Theme
	Width   int
	Args    []string
}

// Run executes the workflow. Only failed renames produce an error; a library
// root that cannot be read is logged and treated as nothing to do.
func (r *Runner) Run(ctx context.Context) error {
	cfg := r.Config

	plan, err := core.BuildPlan(ctx, r.Fs, cfg.MountPoint, cfg.SeriesTitle, r.Logger)
	if err != nil {
		r.Logger.Error("Nothing to do", "err", err)
		return nil
	}

	var sess *session.LogSession
	if r.Journal != nil {
		sess = r.Journal.Start(r.Args, plan.Root, plan.Series)
	}

	outliers, scan := core.FindOutliers(r.Fs, plan, cfg.JunkMarkers, r.Logger)
	var problems core.Report
	problems.Merge(plan.Report)
	problems.Merge(scan)
	if problems.Count(core.StatusFailed) > 0 {
		r.print(tui.RenderReport("Scan problems", problems, plan, r.Theme, r.Width))
	}
	if len(outliers) > 0 {
		r.deleteOutliers(ctx, plan, outliers, sess)
	}

	if plan.Empty() {
		r.Logger.Info("Nothing to rename.")
		r.save(sess)
		return nil
	}

	r.print(tui.RenderPlan(fmt.Sprintf("Planned operations for %q", plan.Series), plan, r.Theme, r.Width))
	if !cfg.AutoRun && !r.Confirm.Confirm(ctx, fmt.Sprintf("Apply %d operations?", len(plan.Operations)), cfg.PromptTimeout) {
		r.Logger.Info("User aborted, no changes applied.")
		r.save(sess)
		return nil
	}

	ledger, report := core.Apply(ctx, r.Fs, plan, r.Logger)
	if sess != nil {
		sess.RecordLedger(ledger)
		sess.RecordFailures(plan, report)
	}
	r.save(sess)
	if report.Count(core.StatusFailed) > 0 || report.Count(core.StatusSkipped) > 0 {
		r.print(tui.RenderReport("Rename problems", report, plan, r.Theme, r.Width))
	}

	if ledger.Len() > 0 && r.Confirm.Confirm(ctx, "Roll back these changes?", cfg.PromptTimeout) {
		rb := core.Rollback(ctx, r.Fs, ledger, r.Logger)
		r.print(tui.RenderReport("Rollback results", rb, plan, r.Theme, r.Width))
		if sess != nil {
			sess.RecordRollback(rb)
			r.save(sess)
			if !sess.Metadata.RolledBack {
				r.Logger.Warn("Some changes are still applied; run undo to retry", "session", sess.Metadata.SessionID)
			}
		}
	}

	if n := report.Count(core.StatusFailed); n > 0 {
		return fmt.Errorf("%d errors occurred during renaming", n)
	}
	return nil
}

func (r *Runner) deleteOutliers(ctx context.Context, plan *core.Plan, outliers []core.Outlier, sess *session.LogSession) {
	r.print(tui.RenderOutliers(outliers, plan, r.Theme, r.Width))
	if !r.Confirm.Confirm(ctx, fmt.Sprintf("Delete %d flagged files?", len(outliers)), r.Config.PromptTimeout) {
		r.Logger.Info("Keeping flagged files")
		return
	}
	report := core.DeleteOutliers(ctx, r.Fs, outliers, r.Logger)
	if sess != nil {
		sess.RecordDeletions(report)
	}
}

// save writes the session when it recorded anything. Journal failures never
// fail the run.
func (r *Runner) save(sess *session.LogSession) {
	if sess == nil || len(sess.Operations) == 0 {
		return
	}
	if err := r.Journal.Save(sess); err != nil {
		r.Logger.Warn("Failed to write session journal", "err", err)
		return
	}
	r.Logger.Debug("Session journaled", "session", sess.Metadata.SessionID, "path", sess.Path)
}

func (r *Runner) print(s string) {
	if s != "" {
		fmt.Fprintln(r.Out, s)
	}
}

// withInterrupt cancels the returned context on SIGINT.
func withInterrupt(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt)
}
