package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

// listCmd represents the list command.
var listCmd = newListCmd()

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <root>",
		Short: "List files with embedded test cases without writing anything",
		Long: `Walk the tree like the root command does and print, per file, the
extraction mode and how many test cases (and unterminated markers) it holds.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return workflow.Estimate(context.Background(), estimateArgs(args[0]))
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(listCmd)
}
