// Package adapter contains infrastructure adapters for the hypisolate CLI.
package adapter

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	m "hypisolate.dev/pkg/hypisolate/internal/model"
)

// SourceFSAdapter abstracts filesystem-specific operations that the domain layer
// relies on when scanning a source tree and writing extracted tests. It hides
// direct `os` access so the extraction logic can be tested in isolation.
type SourceFSAdapter interface {
	// Walk traverses root recursively. Directories below root whose base name
	// is listed in skipDirs are pruned together with everything beneath them.
	Walk(root m.Path, skipDirs []string, fn FilepathWalkFunc) error

	// ReadFile loads a file from disk and returns its contents.
	ReadFile(path m.Path) ([]byte, error)

	// WriteFile writes content to a file, replacing any existing file.
	WriteFile(path m.Path, content []byte, perm os.FileMode) error

	// FileInfo returns metadata for a path, following symlinks.
	FileInfo(path m.Path) (os.FileInfo, error)

	// MkdirAll creates a directory and any missing parents.
	MkdirAll(path m.Path) error

	// JoinPath joins path elements into a single path.
	JoinPath(elem ...string) m.Path
}

// FilepathWalkFunc mirrors the callback shape used by filepath.Walk. It is
// defined here to avoid leaking the standard-library type directly into the
// domain layer.
type FilepathWalkFunc func(path string, info os.FileInfo, err error) error

// LocalSourceFSAdapter is the os-backed SourceFSAdapter.
type LocalSourceFSAdapter struct{}

// NewLocalSourceFSAdapter constructs a LocalSourceFSAdapter instance ready to
// be wired into the workflow.
func NewLocalSourceFSAdapter() *LocalSourceFSAdapter {
	return &LocalSourceFSAdapter{}
}

// Walk iterates over entries under root, pruning skipped directories. A
// symlinked root is followed; symlinked directories below it are reported but
// not descended.
func (a *LocalSourceFSAdapter) Walk(root m.Path, skipDirs []string, fn FilepathWalkFunc) error {
	rootStr := filepath.Clean(string(root))

	walkRoot := rootStr
	if resolved, err := filepath.EvalSymlinks(rootStr); err == nil {
		walkRoot = resolved
	}

	return filepath.Walk(walkRoot, func(path string, info os.FileInfo, err error) error {
		path = underRoot(rootStr, walkRoot, path)

		if err != nil {
			return fn(path, info, err)
		}

		if info.IsDir() && path != rootStr && slices.Contains(skipDirs, info.Name()) {
			return filepath.SkipDir
		}

		return fn(path, info, nil)
	})
}

// underRoot rewrites a path found below walkRoot so it sits under root, the
// name the caller passed in.
func underRoot(root, walkRoot, path string) string {
	if root == walkRoot {
		return path
	}

	rel, err := filepath.Rel(walkRoot, path)
	if err != nil {
		return path
	}

	return filepath.Join(root, rel)
}

// ReadFile loads file contents from disk.
func (a *LocalSourceFSAdapter) ReadFile(path m.Path) ([]byte, error) {
	// #nosec G304 - path comes from walking the user-supplied root
	return os.ReadFile(string(path))
}

// WriteFile writes content to a file with the given permissions.
func (a *LocalSourceFSAdapter) WriteFile(path m.Path, content []byte, perm os.FileMode) error {
	return os.WriteFile(string(path), content, perm)
}

// FileInfo returns os.FileInfo metadata for the given path.
func (a *LocalSourceFSAdapter) FileInfo(path m.Path) (os.FileInfo, error) {
	return os.Stat(string(path))
}

// MkdirAll creates the directory at path including parents.
func (a *LocalSourceFSAdapter) MkdirAll(path m.Path) error {
	if err := os.MkdirAll(string(path), 0o750); err != nil {
		return fmt.Errorf("create directory %s: %w", path, err)
	}

	return nil
}

// JoinPath joins path elements into a single path.
func (a *LocalSourceFSAdapter) JoinPath(elem ...string) m.Path {
	return m.Path(filepath.Join(elem...))
}
