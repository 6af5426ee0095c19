package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"hypisolate.dev/pkg/hypisolate/internal/adapter"
	"hypisolate.dev/pkg/hypisolate/internal/controller"
	m "hypisolate.dev/pkg/hypisolate/internal/model"
)

// DefaultSkipDir is the build-output directory pruned from every walk.
const DefaultSkipDir = "_build"

// ErrRootNotDirectory is returned when the scan root is not a directory.
var ErrRootNotDirectory = errors.New("root is not a directory")

// UnterminatedPolicy decides what happens to a body whose closing marker is missing.
type UnterminatedPolicy string

const (
	// UnterminatedKeep writes unterminated bodies like closed ones.
	UnterminatedKeep UnterminatedPolicy = "keep"
	// UnterminatedDiscard drops unterminated bodies.
	UnterminatedDiscard UnterminatedPolicy = "discard"
)

// ParseUnterminatedPolicy parses "keep" or "discard" (case-insensitive).
// An empty value means keep.
func ParseUnterminatedPolicy(value string) (UnterminatedPolicy, error) {
	switch UnterminatedPolicy(strings.ToLower(strings.TrimSpace(value))) {
	case "", UnterminatedKeep:
		return UnterminatedKeep, nil
	case UnterminatedDiscard:
		return UnterminatedDiscard, nil
	}

	return "", fmt.Errorf("unknown unterminated policy %q (want keep or discard)", value)
}

// EstimateArgs contains the arguments shared by listing and isolation.
type EstimateArgs struct {
	Root      m.Path
	SkipDirs  []string
	NativeExt string
}

// IsolateArgs contains the arguments for writing isolated tests.
type IsolateArgs struct {
	EstimateArgs
	OutputDir    m.Path
	Unterminated UnterminatedPolicy
}

// Workflow defines the high-level operations exposed to the CLI.
type Workflow interface {
	Estimate(ctx context.Context, args EstimateArgs) error
	Isolate(ctx context.Context, args IsolateArgs) error
}

type workflow struct {
	adapter.SourceFSAdapter
	controller.UI
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(fsAdapter adapter.SourceFSAdapter, ui controller.UI) Workflow {
	return &workflow{
		SourceFSAdapter: fsAdapter,
		UI:              ui,
	}
}

// Estimate walks the tree and reports per-file case counts without writing.
func (w *workflow) Estimate(ctx context.Context, args EstimateArgs) error {
	if w.SourceFSAdapter == nil || w.UI == nil {
		return fmt.Errorf("missing adapters")
	}

	ext := NewExtractor(w.SourceFSAdapter, args.NativeExt)

	var estimates []m.FileEstimate

	err := w.forEachCandidate(ctx, args, func(path m.Path) error {
		cases, err := ext.Extract(path)
		if err != nil {
			return err
		}

		if len(cases) == 0 {
			return nil
		}

		estimates = append(estimates, m.FileEstimate{
			Path:         path,
			Mode:         ext.Mode(path),
			Cases:        len(cases),
			Unterminated: countUnterminated(cases),
		})

		return nil
	})

	return w.DisplayEstimation(ctx, estimates, err)
}

// Isolate extracts every test case under the root and writes it to the output directory.
func (w *workflow) Isolate(ctx context.Context, args IsolateArgs) error {
	if w.SourceFSAdapter == nil || w.UI == nil {
		return fmt.Errorf("missing adapters")
	}

	outputDir := args.OutputDir
	if outputDir == "" {
		outputDir = "."
	}

	if err := w.MkdirAll(outputDir); err != nil {
		return err
	}

	ext := NewExtractor(w.SourceFSAdapter, args.NativeExt)
	out := NewWriter(w.SourceFSAdapter, outputDir)
	summary := m.Summary{OutputDir: outputDir}

	err := w.forEachCandidate(ctx, args.EstimateArgs, func(path m.Path) error {
		summary.FilesScanned++

		cases, err := ext.Extract(path)
		if err != nil {
			return err
		}

		unterminated := countUnterminated(cases)
		summary.Unterminated += unterminated

		if args.Unterminated == UnterminatedDiscard && unterminated > 0 {
			cases = terminatedOnly(cases)
			summary.Discarded += unterminated
		}

		if len(cases) == 0 {
			return nil
		}

		written, err := out.WriteCases(filepath.Base(string(path)), cases)
		summary.CasesWritten += len(written)
		summary.FilesWithCases++

		return err
	})
	if err != nil {
		slog.Error("isolation aborted", "root", args.Root, "error", err)
		return err
	}

	slog.Info("isolation finished",
		"root", args.Root,
		"files", summary.FilesScanned,
		"cases", summary.CasesWritten,
		"unterminated", summary.Unterminated,
	)

	w.DisplaySummary(ctx, summary)

	return nil
}

// forEachCandidate calls fn for every regular file under args.Root.
func (w *workflow) forEachCandidate(ctx context.Context, args EstimateArgs, fn func(path m.Path) error) error {
	info, err := w.FileInfo(args.Root)
	if err != nil {
		return fmt.Errorf("root path error: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%s: %w", args.Root, ErrRootNotDirectory)
	}

	skipDirs := args.SkipDirs
	if skipDirs == nil {
		skipDirs = []string{DefaultSkipDir}
	}

	return w.Walk(args.Root, skipDirs, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walk %s: %w", path, err)
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		regular, err := w.isRegularFile(m.Path(path), info)
		if err != nil {
			return err
		}

		if !regular {
			return nil
		}

		return fn(m.Path(path))
	})
}

func (w *workflow) isRegularFile(path m.Path, info os.FileInfo) (bool, error) {
	if info.Mode()&os.ModeSymlink == 0 {
		return info.Mode().IsRegular(), nil
	}

	target, err := w.FileInfo(path)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}

	return target.Mode().IsRegular(), nil
}

func countUnterminated(cases []m.TestCase) int {
	n := 0

	for _, tc := range cases {
		if !tc.Terminated {
			n++
		}
	}

	return n
}

func terminatedOnly(cases []m.TestCase) []m.TestCase {
	kept := make([]m.TestCase, 0, len(cases))

	for _, tc := range cases {
		if tc.Terminated {
			kept = append(kept, tc)
			continue
		}

		slog.Warn("discarding unterminated test case", "path", tc.Origin, "line", tc.Line)
	}

	return kept
}
