package core

import (
	"path/filepath"
	"strings"
)

// OpKind distinguishes file moves from season directory renames.
type OpKind int

const (
	KindFile OpKind = iota // Episode file move into its canonical season directory
	KindDir                // Season directory rename, planned after its files
)

func (k OpKind) String() string {
	if k == KindDir {
		return "directory"
	}
	return "file"
}

// RenameOperation is a single planned move from Source to Destination.
//
// Both paths are absolute and rooted under the library root. Operations are
// plain values; nothing mutates them after the plan builder emits them.
type RenameOperation struct {
	Source      string
	Destination string
	Kind        OpKind
}

// Depth is the number of path separators in Source. The executor applies
// deeper operations first so directory renames never run ahead of the files
// planned against their old path.
func (o RenameOperation) Depth() int {
	return strings.Count(filepath.ToSlash(filepath.Clean(o.Source)), "/")
}

// CompareOperations orders operations by source path, then destination path.
func CompareOperations(a, b RenameOperation) int {
	if c := strings.Compare(a.Source, b.Source); c != 0 {
		return c
	}
	return strings.Compare(a.Destination, b.Destination)
}

// Logger is the logging capability components report through. It is
// satisfied by *log.Logger from github.com/charmbracelet/log.
type Logger interface {
	Debug(msg interface{}, keyvals ...interface{})
	Info(msg interface{}, keyvals ...interface{})
	Warn(msg interface{}, keyvals ...interface{})
	Error(msg interface{}, keyvals ...interface{})
}
