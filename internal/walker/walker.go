// Package walker enumerates candidate source files under root directories.
package walker

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// Predicate decides whether an enumerated path is a candidate file.
// Kept separate from the walk itself so callers can swap file-type rules.
type Predicate func(path string) bool

// PythonFiles is the default predicate: .py extension, hidden files excluded.
func PythonFiles(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return strings.EqualFold(filepath.Ext(base), ".py")
}

// WarnFunc receives paths that could not be read during the walk.
type WarnFunc func(path string, err error)

// Walk enumerates files under each root in lexical order and returns the
// paths accepted by keep. Roots are visited in the given order; a root that
// is itself a file is offered to the predicate directly. Unreadable entries
// are reported through warn and skipped, the rest of the walk continues.
// Every call performs a fresh walk; nothing is cached between calls.
func Walk(roots []string, keep Predicate, warn WarnFunc) []string {
	if warn == nil {
		warn = func(string, error) {}
	}
	paths := make([]string, 0, 64)
	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				warn(path, err)
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if keep(path) {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			warn(root, err)
		}
	}
	return paths
}
