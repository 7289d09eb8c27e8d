package cmd

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

// scriptedConfirmer answers prompts by prefix and remembers what was asked.
// Unknown prompts are declined. before, when set, runs ahead of each answer.
type scriptedConfirmer struct {
	answers map[string]bool
	asked   []string
	before  func(prompt string)
}

func (s *scriptedConfirmer) Confirm(_ context.Context, prompt string, _ time.Duration) bool {
	s.asked = append(s.asked, prompt)
	if s.before != nil {
		s.before(prompt)
	}
	for prefix, answer := range s.answers {
		if strings.HasPrefix(prompt, prefix) {
			return answer
		}
	}
	return false
}

var errSimulated = errors.New("simulated failure")

// failOpenFs fails to open one path, which makes listing it fail.
type failOpenFs struct {
	afero.Fs
	path string
}

func (f failOpenFs) Open(name string) (afero.File, error) {
	if name == f.path {
		return nil, &fs.PathError{Op: "open", Path: name, Err: errSimulated}
	}
	return f.Fs.Open(name)
}

func bufferLogger() (*log.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return log.NewWithOptions(buf, log.Options{Level: log.DebugLevel}), buf
}

// buildLibrary creates the given relative paths under a fresh temp dir. Paths
// ending in "/" become directories, everything else a small file.
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
