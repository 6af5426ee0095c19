// Package model defines the data structures shared by the extractor, the
// output writer and the UI.
package model

// Path represents a file system path.
type Path string

// ExtractionMode defines how test cases are pulled out of a source file.
type ExtractionMode string

const (
	// ModeWholeFile treats the entire file as a single test case.
	// Used for files that already carry the native test suffix.
	ModeWholeFile ExtractionMode = "whole-file"

	// ModeMarkerScan scans the file line by line for R"tag( ... )tag";
	// raw string literals.
	ModeMarkerScan ExtractionMode = "marker-scan"
)

// TestCase is one extracted test program.
type TestCase struct {
	Origin Path
	Body   string
	// Line is the 1-based line of the opening marker (1 for whole-file mode).
	Line int
	// Terminated is false when the input ended before the closing marker.
	Terminated bool
}
