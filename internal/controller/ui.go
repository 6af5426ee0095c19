// Package controller provides output adapters for displaying extraction results.
package controller

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	m "hypisolate.dev/pkg/hypisolate/internal/model"
)

// UI defines how the workflow reports its results.
// Implementations can use different output methods (plain text, styled text).
type UI interface {
	DisplayEstimation(ctx context.Context, estimates []m.FileEstimate, err error) error
	DisplaySummary(ctx context.Context, summary m.Summary)
}

// NewUI returns a SimpleUI writing through cmd. Headings are styled when
// useTTY is true.
func NewUI(cmd *cobra.Command, useTTY bool) UI {
	ui := NewSimpleUI(cmd)
	ui.styled = useTTY

	return ui
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(int(f.Fd()))
}
