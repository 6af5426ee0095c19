// Package domain contains the test isolation workflow: scanning source files for
// embedded test programs and writing them out as standalone files.
package domain

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"hypisolate.dev/pkg/hypisolate/internal/adapter"
	m "hypisolate.dev/pkg/hypisolate/internal/model"
)

// DefaultNativeExt is the suffix of files that already are standalone tests.
const DefaultNativeExt = ".hyp"

// openingMarker matches R"tag( and captures the tag and the rest of the line.
var openingMarker = regexp.MustCompile(`R"([^(]*)\((.*)$`)

// Extractor pulls embedded test programs out of a single source file.
type Extractor interface {
	Extract(path m.Path) ([]m.TestCase, error)
	Mode(path m.Path) m.ExtractionMode
}

type extractor struct {
	adapter.SourceFSAdapter
	nativeExt string
}

// NewExtractor creates an Extractor. Files whose name ends with nativeExt are
// taken whole; an empty nativeExt falls back to DefaultNativeExt.
func NewExtractor(fsAdapter adapter.SourceFSAdapter, nativeExt string) Extractor {
	if nativeExt == "" {
		nativeExt = DefaultNativeExt
	}

	return &extractor{
		SourceFSAdapter: fsAdapter,
		nativeExt:       nativeExt,
	}
}

// Mode reports which extraction mode applies to path.
func (e *extractor) Mode(path m.Path) m.ExtractionMode {
	if strings.HasSuffix(string(path), e.nativeExt) {
		return m.ModeWholeFile
	}

	return m.ModeMarkerScan
}

// Extract reads path and returns its test cases in the order they appear.
func (e *extractor) Extract(path m.Path) ([]m.TestCase, error) {
	if e.SourceFSAdapter == nil {
		return nil, fmt.Errorf("missing adapters")
	}

	raw, err := e.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	text := decodeLenient(raw)
	if len(text) != len(raw) {
		slog.Debug("dropped undecodable bytes", "path", path, "dropped", len(raw)-len(text))
	}

	if e.Mode(path) == m.ModeWholeFile {
		return []m.TestCase{{
			Origin:     path,
			Body:       normalizeNewlines(text),
			Line:       1,
			Terminated: true,
		}}, nil
	}

	cases := ScanTestCases(text)
	for i := range cases {
		cases[i].Origin = path

		if !cases[i].Terminated {
			slog.Warn("unterminated raw string marker", "path", path, "line", cases[i].Line)
		}
	}

	slog.Debug("scanned file", "path", path, "cases", len(cases))

	return cases, nil
}

// ScanTestCases runs the marker state machine over text. A body still open when
// the input ends is returned with Terminated set to false.
func ScanTestCases(text string) []m.TestCase {
	var s scanner

	for i, line := range splitLines(text) {
		s.feed(i+1, line)
	}

	return s.finish()
}

type scanState int

const (
	stateIdle scanState = iota
	stateInside
)

// scanner is the per-file extraction state. The body in progress lives in its
// own buffer and only reaches cases once it is closed or the input ends.
type scanner struct {
	state     scanState
	delimiter string
	body      strings.Builder
	start     int
	cases     []m.TestCase
}

func (s *scanner) feed(lineNo int, line string) {
	switch s.state {
	case stateIdle:
		match := openingMarker.FindStringSubmatch(strings.TrimSpace(line))
		if match == nil {
			return
		}

		s.state = stateInside
		s.delimiter = match[1]
		s.start = lineNo
		s.body.Reset()

		// Text after R"tag( is the first body line.
		if match[2] != "" {
			s.body.WriteString(match[2])
			s.body.WriteByte('\n')
		}

	case stateInside:
		trimmed := strings.TrimRightFunc(line, unicode.IsSpace)
		closing := ")" + s.delimiter + `";`

		if !strings.HasSuffix(trimmed, closing) {
			s.body.WriteString(line)
			s.body.WriteByte('\n')

			return
		}

		s.body.WriteString(strings.TrimSuffix(trimmed, closing))
		s.flush(true)
	}
}

func (s *scanner) flush(terminated bool) {
	s.cases = append(s.cases, m.TestCase{
		Body:       s.body.String(),
		Line:       s.start,
		Terminated: terminated,
	})
	s.state = stateIdle
	s.delimiter = ""
	s.body.Reset()
}

func (s *scanner) finish() []m.TestCase {
	if s.state == stateInside {
		s.flush(false)
	}

	return s.cases
}

// decodeLenient decodes raw as UTF-8, dropping invalid byte sequences.
func decodeLenient(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}

	return strings.ToValidUTF8(string(raw), "")
}

func normalizeNewlines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// splitLines splits on \n, \r\n and \r. A trailing line break does not yield
// an empty final line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}

	lines := strings.Split(normalizeNewlines(text), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	return lines
}
