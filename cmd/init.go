package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var initPrintFlag bool

// initCmd represents the init command.
var initCmd = newInitCmd()

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a default hypisolate.yaml configuration file",
		Long: `Create a hypisolate.yaml in the current working directory populated with the
current CLI defaults so it can be edited manually. With --print the effective
settings are written to stdout instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if initPrintFlag {
				out, err := yaml.Marshal(viper.AllSettings())
				if err != nil {
					return fmt.Errorf("failed to render settings: %w", err)
				}

				_, err = cmd.OutOrStdout().Write(out)

				return err
			}

			targetPath := filepath.Join(configFolderPath, configFileName)

			err := viper.SafeWriteConfigAs(targetPath)
			if err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&initPrintFlag, "print", false, "print the effective settings as YAML instead of writing a file")

	return cmd
}

func init() {
	rootCmd.AddCommand(initCmd)
}
