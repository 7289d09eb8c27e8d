package cmd

import (
	"errors"
	"fmt"

	"github.com/Digital-Shane/season-tidy/internal/core"
	"github.com/Digital-Shane/season-tidy/internal/session"
	"github.com/Digital-Shane/season-tidy/internal/tui"
	"github.com/spf13/cobra"
)

// listLimit caps the sessions shown by undo --list.
const listLimit = 20

func newUndoCmd(a *app) *cobra.Command {
	undoCmd := &cobra.Command{
		Use:   "undo",
		Short: "Undo a journaled rename session",
		Long: `Roll back the most recent journaled session, or the one named by --session.

Renames are reversed in exact reverse order. Deleted junk files are reported
but cannot be restored.`,
		Args: cobra.NoArgs,
		RunE: a.runUndo,
	}
	undoCmd.Flags().Bool("list", false, "List journaled sessions instead of undoing")
	undoCmd.Flags().String("session", "", "Session ID to undo (default latest)")
	return undoCmd
}

func (a *app) runUndo(cmd *cobra.Command, args []string) error {
	cfg, err := a.loadConfig(cmd, nil)
	if err != nil {
		return err
	}
	logger := a.logger(cfg)
	journal := a.journal(cfg)

	if list, _ := cmd.Flags().GetBool("list"); list {
		summaries, err := journal.Summaries(listLimit)
		if err != nil {
			return fmt.Errorf("failed to read log sessions: %w", err)
		}
		if len(summaries) == 0 {
			fmt.Fprintln(a.out, "No operation sessions found to undo.")
			return nil
		}
		fmt.Fprintln(a.out, tui.RenderSessions(summaries, a.theme))
		return nil
	}

	var s *session.LogSession
	if id, _ := cmd.Flags().GetString("session"); id != "" {
		s, err = journal.Find(id)
	} else {
		s, err = journal.Latest()
	}
	switch {
	case errors.Is(err, session.ErrNoSessions):
		fmt.Fprintln(a.out, "No operation sessions found to undo.")
		return nil
	case err != nil:
		return fmt.Errorf("failed to read log sessions: %w", err)
	}

	meta := s.Metadata
	if meta.RolledBack {
		fmt.Fprintf(a.out, "Session %s was already rolled back.\n", meta.SessionID)
		return nil
	}
	if !s.Undoable() {
		fmt.Fprintf(a.out, "Session %s has no changes to undo.\n", meta.SessionID)
		return nil
	}

	ledger := s.Ledger()
	width := terminalWidth(a.out)
	fmt.Fprintln(a.out, tui.RenderLedger(fmt.Sprintf("Session %s (%s)", meta.SessionID, meta.Series), ledger, meta.Root, a.theme, width))

	ctx, stop := withInterrupt(cmd.Context())
	defer stop()

	// An explicit undo is the primary action of this command, so --auto skips
	// the question the same way it skips the apply question of a run.
	if !cfg.AutoRun {
		prompt := fmt.Sprintf("Roll back %d changes from session %s?", ledger.Len(), meta.SessionID)
		if !a.newGate(false).Confirm(ctx, prompt, cfg.PromptTimeout) {
			logger.Info("User aborted, nothing rolled back.")
			return nil
		}
	}

	report, err := session.Undo(ctx, a.fs, s, logger)
	if err != nil {
		return err
	}
	if err := journal.Save(s); err != nil {
		logger.Warn("Failed to update session journal", "session", meta.SessionID, "err", err)
	}
	fmt.Fprintln(a.out, tui.RenderReport("Rollback results", report, &core.Plan{Root: meta.Root}, a.theme, width))

	if n := report.Count(core.StatusFailed); n > 0 {
		return fmt.Errorf("%d errors occurred during rollback, run undo again to retry", n)
	}
	return nil
}
