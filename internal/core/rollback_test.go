package core

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRollback_ReverseOrderChain(t *testing.T) {
	fsys, root := buildLibrary(t, "c.mkv")
	a := filepath.Join(root, "a.mkv")
	b := filepath.Join(root, "b.mkv")
	c := filepath.Join(root, "c.mkv")

	ledger := NewLedger(
		LedgerEntry{Type: OpRename, Source: a, Destination: b},
		LedgerEntry{Type: OpRename, Source: b, Destination: c},
	)
	report := Rollback(context.Background(), fsys, ledger, discardLogger())
	if err := report.Err(); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}
	if diff := cmp.Diff([]string{"a.mkv"}, snapshot(t, fsys, root)); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
	if got, want := report.Results[0].Subject, b; got != want {
		t.Errorf("first rolled back = %q, want %q", got, want)
	}
}

func TestRollback_SkipsVanishedPaths(t *testing.T) {
	fsys, root := buildLibrary(t, "keep.mkv")
	ledger := NewLedger(
		LedgerEntry{Type: OpCreateDir, Destination: filepath.Join(root, "Show S01")},
		LedgerEntry{Type: OpRename, Source: filepath.Join(root, "old.mkv"), Destination: filepath.Join(root, "gone.mkv")},
	)
	logger, buf := bufferLogger()

	report := Rollback(context.Background(), fsys, ledger, logger)

	if got := report.Count(StatusSkipped); got != 2 {
		t.Fatalf("skipped = %d, want 2: %+v", got, report.Results)
	}
	if got := report.Count(StatusFailed); got != 0 {
		t.Errorf("failed = %d, want 0", got)
	}
	want := []string{"renamed path no longer exists", "directory already removed"}
	got := []string{report.Results[0].Reason, report.Results[1].Reason}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("skip reasons mismatch (-want +got):\n%s", diff)
	}
	if buf.Len() == 0 {
		t.Error("expected rollback warnings to be logged")
	}
}

func TestRollback_RefusesToOverwriteOriginal(t *testing.T) {
	fsys, root := buildLibrary(t, "old.mkv", "new.mkv")
	ledger := NewLedger(LedgerEntry{
		Type:        OpRename,
		Source:      filepath.Join(root, "old.mkv"),
		Destination: filepath.Join(root, "new.mkv"),
	})

	report := Rollback(context.Background(), fsys, ledger, discardLogger())
	if !errors.Is(report.Err(), ErrOriginalExists) {
		t.Fatalf("Rollback() error = %v, want ErrOriginalExists", report.Err())
	}
	if !exists(t, fsys, filepath.Join(root, "new.mkv")) {
		t.Error("renamed file disappeared")
	}
}

func TestRollback_KeepsDirectoryInUse(t *testing.T) {
	fsys, root := buildLibrary(t, "Show S01/added later.mkv")
	dir := filepath.Join(root, "Show S01")
	ledger := NewLedger(LedgerEntry{Type: OpCreateDir, Destination: dir})

	report := Rollback(context.Background(), fsys, ledger, discardLogger())
	if !errors.Is(report.Err(), ErrNotEmpty) {
		t.Fatalf("Rollback() error = %v, want ErrNotEmpty", report.Err())
	}
	if !exists(t, fsys, dir) {
		t.Error("non-empty directory removed")
	}
}

func TestRollback_ContinuesAfterFailure(t *testing.T) {
	base, root := buildLibrary(t, "b1.mkv", "b2.mkv")
	b1 := filepath.Join(root, "b1.mkv")
	fsys := newFailingFs(base, b1)
	ledger := NewLedger(
		LedgerEntry{Type: OpRename, Source: filepath.Join(root, "a1.mkv"), Destination: b1},
		LedgerEntry{Type: OpRename, Source: filepath.Join(root, "a2.mkv"), Destination: filepath.Join(root, "b2.mkv")},
	)

	report := Rollback(context.Background(), fsys, ledger, discardLogger())
	if got := report.Count(StatusFailed); got != 1 {
		t.Errorf("failed = %d, want 1", got)
	}
	if diff := cmp.Diff([]string{"a2.mkv", "b1.mkv"}, snapshot(t, base, root)); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestRollback_UnknownEntryType(t *testing.T) {
	fsys, root := buildLibrary(t)
	ledger := NewLedger(LedgerEntry{Type: "chmod", Source: filepath.Join(root, "x")})

	report := Rollback(context.Background(), fsys, ledger, discardLogger())
	if got := report.Count(StatusFailed); got != 1 {
		t.Errorf("failed = %d, want 1", got)
	}
}

func TestRollback_Cancelled(t *testing.T) {
	fsys, root := buildLibrary(t, "b.mkv")
	ledger := NewLedger(LedgerEntry{Type: OpRename, Source: filepath.Join(root, "a.mkv"), Destination: filepath.Join(root, "b.mkv")})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report := Rollback(ctx, fsys, ledger, discardLogger())

	if got := report.Count(StatusSkipped); got != 1 {
		t.Errorf("skipped = %d, want 1", got)
	}
	if !exists(t, fsys, filepath.Join(root, "b.mkv")) {
		t.Error("cancelled rollback still renamed")
	}
}

func TestRollback_NilLedger(t *testing.T) {
	fsys, _ := buildLibrary(t)
	report := Rollback(context.Background(), fsys, nil, discardLogger())
	if len(report.Results) != 0 {
		t.Errorf("Rollback(nil) results = %v, want none", report.Results)
	}
}

func TestUnreverted(t *testing.T) {
	fsys, root := buildLibrary(t, "b.mkv", "c.mkv", "d.mkv")
	path := func(name string) string { return filepath.Join(root, name) }
	ledger := NewLedger(
		LedgerEntry{Type: OpRename, Source: path("a.mkv"), Destination: path("b.mkv")},
		LedgerEntry{Type: OpRename, Source: path("c.mkv"), Destination: path("d.mkv")},
		LedgerEntry{Type: OpRename, Source: path("e.mkv"), Destination: path("f.mkv")},
	)

	report := Rollback(context.Background(), fsys, ledger, discardLogger())
	if diff := cmp.Diff([]int{1}, Unreverted(ledger, report)); diff != "" {
		t.Errorf("Unreverted() mismatch (-want +got):\n%s", diff)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report = Rollback(ctx, fsys, ledger, discardLogger())
	if diff := cmp.Diff([]int{0, 1, 2}, Unreverted(ledger, report)); diff != "" {
		t.Errorf("Unreverted() after cancel mismatch (-want +got):\n%s", diff)
	}
}
