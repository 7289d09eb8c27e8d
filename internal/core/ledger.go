package core

import "slices"

// EntryType identifies what a ledger entry changed on disk.
type EntryType string

const (
	OpRename    EntryType = "rename"
	OpCreateDir EntryType = "create_dir"
	OpMergeDir  EntryType = "merge_dir"
)

// LedgerEntry is one change the executor committed.
//
// Fields:
//   - Source / Destination: the original and new path of a rename or merge.
//     For create_dir only Destination is set.
//   - Children: names moved from Source into an existing Destination
//     during a merge, in move order.
//   - RemovedSource: true when a merge removed the emptied Source directory.
//   - Kind: the planned operation kind behind a rename or merge.
type LedgerEntry struct {
	Type          EntryType
	Kind          OpKind
	Source        string
	Destination   string
	Children      []string
	RemovedSource bool
}

// Ledger is the ordered record of changes actually applied, in application
// order. Rollback walks it backwards.
type Ledger struct {
	entries []LedgerEntry
}

// NewLedger returns a ledger holding entries, typically rebuilt from a journal.
func NewLedger(entries ...LedgerEntry) *Ledger {
	return &Ledger{entries: slices.Clone(entries)}
}

// Entries returns a copy of the recorded entries.
func (l *Ledger) Entries() []LedgerEntry {
	if l == nil {
		return nil
	}
	return slices.Clone(l.entries)
}

// Len returns the number of recorded entries.
func (l *Ledger) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}

func (l *Ledger) record(e LedgerEntry) {
	l.entries = append(l.entries, e)
}
