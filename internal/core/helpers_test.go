package core

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

var errSimulated = errors.New("simulated failure")

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}

func bufferLogger() (*log.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return log.NewWithOptions(buf, log.Options{Level: log.DebugLevel}), buf
}

// buildLibrary creates the given relative paths under a fresh temp dir. Paths
// ending in "/" become directories, everything else an empty file.
func buildLibrary(t *testing.T, paths ...string) (afero.Fs, string) {
	t.Helper()
	root := t.TempDir()
	fsys := afero.NewOsFs()
	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		if strings.HasSuffix(p, "/") {
			if err := fsys.MkdirAll(full, 0o755); err != nil {
				t.Fatalf("MkdirAll(%q) error = %v", full, err)
			}
			continue
		}
		if err := fsys.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("MkdirAll(%q) error = %v", filepath.Dir(full), err)
		}
		if err := afero.WriteFile(fsys, full, []byte(p), 0o644); err != nil {
			t.Fatalf("WriteFile(%q) error = %v", full, err)
		}
	}
	return fsys, root
}

// snapshot lists every path below root, relative and slash separated, with a
// trailing "/" on directories.
func snapshot(t *testing.T, fsys afero.Fs, root string) []string {
	t.Helper()
	var out []string
	err := afero.Walk(fsys, root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, _ := filepath.Rel(root, path)
		rel = filepath.ToSlash(rel)
		if info.IsDir() {
			rel += "/"
		}
		out = append(out, rel)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk(%q) error = %v", root, err)
	}
	sort.Strings(out)
	return out
}

func exists(t *testing.T, fsys afero.Fs, path string) bool {
	t.Helper()
	ok, err := afero.Exists(fsys, path)
	if err != nil {
		t.Fatalf("Exists(%q) error = %v", path, err)
	}
	return ok
}

// failingFs fails Rename and Remove for the listed source paths.
type failingFs struct {
	afero.Fs
	fail map[string]bool
}

func newFailingFs(base afero.Fs, paths ...string) *failingFs {
	f := &failingFs{Fs: base, fail: map[string]bool{}}
	for _, p := range paths {
		f.fail[p] = true
	}
	return f
}

func (f *failingFs) Rename(oldname, newname string) error {
	if f.fail[oldname] {
		return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: errSimulated}
	}
	return f.Fs.Rename(oldname, newname)
}

func (f *failingFs) Remove(name string) error {
	if f.fail[name] {
		return &os.PathError{Op: "remove", Path: name, Err: errSimulated}
	}
	return f.Fs.Remove(name)
}
