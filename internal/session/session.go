package session

import (
	"fmt"
	"time"

	"github.com/Digital-Shane/season-tidy/internal/core"
)

type OperationType string

const (
	OpRename    OperationType = "rename"
	OpCreateDir OperationType = "create_dir"
	OpMergeDir  OperationType = "merge_dir"
	OpDelete    OperationType = "delete"
)

type OperationLog struct {
	ID            string        `json:"id"`
	Timestamp     time.Time     `json:"timestamp"`
	Type          OperationType `json:"type"`
	Kind          string        `json:"kind,omitempty"`
	SourcePath    string        `json:"source_path,omitempty"`
	DestPath      string        `json:"dest_path,omitempty"`
	Children      []string      `json:"children,omitempty"`
	RemovedSource bool          `json:"removed_source,omitempty"`
	Success       bool          `json:"success"`
	Error         string        `json:"error,omitempty"`
	Reverted      bool          `json:"reverted,omitempty"`
}

type SessionMetadata struct {
	CommandArgs   []string  `json:"command_args"`
	Root          string    `json:"root"`
	Series        string    `json:"series"`
	Timestamp     time.Time `json:"timestamp"`
	SessionID     string    `json:"session_id"`
	TotalOps      int       `json:"total_operations"`
	SuccessfulOps int       `json:"successful_operations"`
	FailedOps     int       `json:"failed_operations"`
	RolledBack    bool      `json:"rolled_back"`
}

// LogSession is the persisted record of one run.
type LogSession struct {
	Metadata   SessionMetadata `json:"metadata"`
	Operations []OperationLog  `json:"operations"`

	// Path is the journal file the session was read from or saved to.
	Path string `json:"-"`
}

// NewSession starts an empty session stamped with now.
func NewSession(args []string, root, series string, now time.Time) *LogSession {
	return &LogSession{
		Metadata: SessionMetadata{
			CommandArgs: append([]string(nil), args...),
			Root:        root,
			Series:      series,
			Timestamp:   now,
			SessionID:   fmt.Sprintf("%s_%03d", now.Format("20060102_150405"), now.Nanosecond()/1000000),
		},
		Operations: []OperationLog{},
	}
}

// RecordLedger appends one successful operation per ledger entry.
func (s *LogSession) RecordLedger(ledger *core.Ledger) {
	for _, e := range ledger.Entries() {
		op := OperationLog{
			Type:          OperationType(e.Type),
			SourcePath:    e.Source,
			DestPath:      e.Destination,
			Children:      e.Children,
			RemovedSource: e.RemovedSource,
			Success:       true,
		}
		if e.Type != core.OpCreateDir {
			op.Kind = e.Kind.String()
		}
		s.append(op)
	}
}

// RecordFailures appends the failed operations of an apply report. Destinations
// are looked up in plan.
func (s *LogSession) RecordFailures(plan *core.Plan, report core.Report) {
	dest := make(map[string]core.RenameOperation)
	if plan != nil {
		for _, op := range plan.Operations {
			dest[op.Source] = op
		}
	}
	for _, res := range report.Failures() {
		op := dest[res.Subject]
		s.append(OperationLog{
			Type:       OpRename,
			Kind:       op.Kind.String(),
			SourcePath: res.Subject,
			DestPath:   op.Destination,
			Success:    false,
			Error:      res.Reason,
		})
	}
}

// RecordDeletions appends one delete entry per attempted outlier deletion.
func (s *LogSession) RecordDeletions(report core.Report) {
	for _, res := range report.Results {
		if res.Status == core.StatusSkipped {
			continue
		}
		s.append(OperationLog{
			Type:       OpDelete,
			SourcePath: res.Subject,
			Success:    res.Status == core.StatusSuccess,
			Error:      res.Reason,
		})
	}
}

// MarkRolledBack flags the session as already undone.
func (s *LogSession) MarkRolledBack() {
	s.Metadata.RolledBack = true
}

// RecordRollback marks the entries a rollback of Ledger() reverted. The
// session only counts as rolled back once nothing is left applied, so a later
// undo retries whatever failed.
func (s *LogSession) RecordRollback(report core.Report) {
	pending := make(map[int]bool)
	for _, i := range core.Unreverted(s.Ledger(), report) {
		pending[i] = true
	}
	for i, idx := range s.ledgerIndexes() {
		if !pending[i] {
			s.Operations[idx].Reverted = true
		}
	}
	if len(pending) == 0 {
		s.MarkRolledBack()
	}
}

// Ledger rebuilds the executor ledger from the successful, reversible
// operations that are not yet reverted, in journal order.
func (s *LogSession) Ledger() *core.Ledger {
	var entries []core.LedgerEntry
	for _, idx := range s.ledgerIndexes() {
		op := s.Operations[idx]
		kind := core.KindFile
		if op.Kind == core.KindDir.String() {
			kind = core.KindDir
		}
		entries = append(entries, core.LedgerEntry{
			Type:          core.EntryType(op.Type),
			Kind:          kind,
			Source:        op.SourcePath,
			Destination:   op.DestPath,
			Children:      op.Children,
			RemovedSource: op.RemovedSource,
		})
	}
	return core.NewLedger(entries...)
}

func (s *LogSession) ledgerIndexes() []int {
	var out []int
	for i, op := range s.Operations {
		if !op.Success || op.Reverted {
			continue
		}
		switch op.Type {
		case OpRename, OpCreateDir, OpMergeDir:
			out = append(out, i)
		}
	}
	return out
}

// Deletions returns the successfully deleted paths, which cannot be restored.
func (s *LogSession) Deletions() []string {
	var out []string
	for _, op := range s.Operations {
		if op.Type == OpDelete && op.Success {
			out = append(out, op.SourcePath)
		}
	}
	return out
}

// PartiallyRolledBack reports whether some, but not all, applied entries were
// reverted.
func (s *LogSession) PartiallyRolledBack() bool {
	if s.Metadata.RolledBack {
		return false
	}
	for _, op := range s.Operations {
		if op.Reverted {
			return true
		}
	}
	return false
}

// Undoable reports whether the session still has changes to roll back.
func (s *LogSession) Undoable() bool {
	return !s.Metadata.RolledBack && s.Ledger().Len() > 0
}

func (s *LogSession) append(op OperationLog) {
	op.ID = fmt.Sprintf("%s_%d", s.Metadata.SessionID, len(s.Operations))
	if op.Timestamp.IsZero() {
		op.Timestamp = time.Now()
	}
	s.Operations = append(s.Operations, op)
}

// updateStats updates the session statistics
func (s *LogSession) updateStats() {
	successful := 0
	failed := 0
	for _, op := range s.Operations {
		if op.Success {
			successful++
		} else {
			failed++
		}
	}
	s.Metadata.TotalOps = len(s.Operations)
	s.Metadata.SuccessfulOps = successful
	s.Metadata.FailedOps = failed
}
