package model

// FileEstimate describes what extraction would produce for one source file.
type FileEstimate struct {
	Path         Path
	Mode         ExtractionMode
	Cases        int
	Unterminated int
}

// Summary holds the totals of an isolation run.
type Summary struct {
	FilesScanned   int
	FilesWithCases int
	CasesWritten   int
	// Unterminated counts bodies whose closing marker was never found,
	// whether they were written or discarded.
	Unterminated int
	Discarded    int
	OutputDir    Path
}
