package distribution

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Walker enumerates the files of a file set.
type Walker interface {
	Walk(root, pattern string) ([]string, error)
}

// FSWalker walks an fs.FS with doublestar patterns.
type FSWalker struct {
	FS fs.FS
}

// NewFSWalker creates a walker over fsys.
func NewFSWalker(fsys fs.FS) *FSWalker {
	return &FSWalker{FS: fsys}
}

// Walk returns the files under root matching pattern, sorted, as paths
// relative to root.
func (w *FSWalker) Walk(root, pattern string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("%w: %q", doublestar.ErrBadPattern, pattern)
	}
	if root == "" {
		root = "."
	}
	sub, err := fs.Sub(w.FS, root)
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	matches, err := doublestar.Glob(sub, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("walk %s for %s: %w", root, pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}

// Match reports whether name matches a file set include pattern. Patterns
// without a directory part match against the base name.
func Match(pattern, name string) bool {
	if ok, err := doublestar.Match(pattern, name); err == nil && ok {
		return true
	}
	if !doublestar.ValidatePattern(pattern) || strings.Contains(pattern, "/") {
		return false
	}
	ok, _ := doublestar.Match(pattern, path.Base(name))
	return ok
}
