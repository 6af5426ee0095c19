package controller

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "hypisolate.dev/pkg/hypisolate/internal/model"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// SimpleUI implements UI using cobra Command's output stream.
type SimpleUI struct {
	cmd    *cobra.Command
	styled bool
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// DisplayEstimation prints the per-file table of a dry run, or the error.
func (s *SimpleUI) DisplayEstimation(ctx context.Context, estimates []m.FileEstimate, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	if err != nil {
		s.printf("estimation error: %v\n", err)
		return err
	}

	if len(estimates) == 0 {
		s.printf("%s\n", s.heading("No embedded test cases found"))
		return nil
	}

	s.printf("\n%s", renderEstimationTable(estimates))

	return nil
}

// DisplaySummary prints the totals of an isolation run.
func (s *SimpleUI) DisplaySummary(ctx context.Context, summary m.Summary) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("%s\n", s.heading(fmt.Sprintf("Isolated %d test case(s) into %s", summary.CasesWritten, summary.OutputDir)))
	s.printf("Scanned %d file(s), %d with test cases\n", summary.FilesScanned, summary.FilesWithCases)

	if summary.Unterminated > 0 {
		line := fmt.Sprintf("Unterminated markers: %d (discarded %d)", summary.Unterminated, summary.Discarded)
		s.printf("%s\n", s.warn(line))
	}
}

func renderEstimationTable(estimates []m.FileEstimate) string {
	sorted := make([]m.FileEstimate, len(estimates))
	copy(sorted, estimates)

	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Path < sorted[j].Path
	})

	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Path", "Mode", "Cases", "Unterminated"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_CENTER,
	})

	total := 0
	unterminated := 0

	for _, est := range sorted {
		table.Append([]string{
			string(est.Path),
			string(est.Mode),
			fmt.Sprintf("%d", est.Cases),
			fmt.Sprintf("%d", est.Unterminated),
		})

		total += est.Cases
		unterminated += est.Unterminated
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", len(sorted)),
		"",
		fmt.Sprintf("%d", total),
		fmt.Sprintf("%d", unterminated),
	})

	table.Render()

	return tableBuffer.String()
}

func (s *SimpleUI) heading(text string) string {
	if !s.styled {
		return text
	}

	return headingStyle.Render(text)
}

func (s *SimpleUI) warn(text string) string {
	if !s.styled {
		return text
	}

	return warnStyle.Render(text)
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
