package domain

import (
	"crypto/sha256"
	"fmt"
	"log/slog"
	"strings"

	"hypisolate.dev/pkg/hypisolate/internal/adapter"
	m "hypisolate.dev/pkg/hypisolate/internal/model"
)

const (
	outputPrefix = "test_"
	outputExt    = ".hyp"
	dedentPrefix = "    "
	outputPerm   = 0o644
)

var filenameReplacer = strings.NewReplacer(".", "_", "-", "_", " ", "_")

// Writer stores extracted test cases as standalone files.
type Writer interface {
	WriteCases(filename string, cases []m.TestCase) ([]m.Path, error)
}

type writer struct {
	adapter.SourceFSAdapter
	dir m.Path
}

// NewWriter creates a Writer that places files in dir ("." when empty).
func NewWriter(fsAdapter adapter.SourceFSAdapter, dir m.Path) Writer {
	if dir == "" {
		dir = "."
	}

	return &writer{
		SourceFSAdapter: fsAdapter,
		dir:             dir,
	}
}

// WriteCases writes one file per case and returns the paths written. Files
// with the same name are overwritten.
func (w *writer) WriteCases(filename string, cases []m.TestCase) ([]m.Path, error) {
	if w.SourceFSAdapter == nil {
		return nil, fmt.Errorf("missing adapters")
	}

	sanitized := SanitizeFilename(filename)
	written := make([]m.Path, 0, len(cases))

	for _, tc := range cases {
		name := OutputName(ContentHash(tc.Body), sanitized)
		target := w.JoinPath(string(w.dir), name)

		if err := w.WriteFile(target, []byte(Dedent(tc.Body)), outputPerm); err != nil {
			slog.Error("failed to write test case", "path", target, "origin", tc.Origin, "error", err)
			return written, fmt.Errorf("write %s: %w", target, err)
		}

		slog.Debug("wrote test case", "path", target, "origin", tc.Origin, "line", tc.Line)

		written = append(written, target)
	}

	return written, nil
}

// SanitizeFilename replaces '.', '-' and ' ' with '_' and lowercases the result.
func SanitizeFilename(name string) string {
	return strings.ToLower(filenameReplacer.Replace(name))
}

// Dedent removes one four-space indent from the start of every line.
func Dedent(body string) string {
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, dedentPrefix)
	}

	return strings.Join(lines, "\n")
}

// ContentHash returns the hex SHA-256 of body. It is computed before Dedent.
func ContentHash(body string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(body)))
}

// OutputName builds test_<hash>_<sanitized>.hyp.
func OutputName(hash, sanitized string) string {
	return outputPrefix + hash + "_" + sanitized + outputExt
}
