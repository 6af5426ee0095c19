// Package cmd provides the root command and CLI setup for hypisolate.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"hypisolate.dev/pkg/hypisolate/internal/adapter"
	"hypisolate.dev/pkg/hypisolate/internal/controller"
	"hypisolate.dev/pkg/hypisolate/internal/domain"
	m "hypisolate.dev/pkg/hypisolate/internal/model"
)

var fsAdapter adapter.SourceFSAdapter
var workflow domain.Workflow
var ui controller.UI

var (
	outputDirFlag    string
	unterminatedFlag string
	skipDirsFlag     []string
	nativeExtFlag    string
	verboseFlag      bool
	logFileFlag      string
)

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	workflow = domain.NewWorkflow(fsAdapter, ui)
}

const rootLongDescription = `hypisolate extracts test programs embedded in source files as raw string
literals (R"tag( ... )tag";) and writes each one to its own file named
test_<sha256>_<sanitized-filename>.hyp.

Files ending in the native test suffix (.hyp) are copied whole. Directories
named _build are skipped. Running twice over an unchanged tree produces the
same files.`

// rootCmd represents the base command. Given a directory it isolates tests.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hypisolate <root>",
		Short: "Extract embedded test programs into standalone files",
		Long:  rootLongDescription,
		Args:  cobra.ExactArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if configReadErr != nil {
				return configReadErr
			}

			logPath := configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
			logResolvedSettings(cmd.Name(), logPath)

			return nil
		},
		RunE: func(_ *cobra.Command, args []string) error {
			policy, err := domain.ParseUnterminatedPolicy(viper.GetString(unterminatedConfigKey))
			if err != nil {
				return err
			}

			return workflow.Isolate(context.Background(), domain.IsolateArgs{
				EstimateArgs: estimateArgs(args[0]),
				OutputDir:    m.Path(viper.GetString(outputConfigKey)),
				Unterminated: policy,
			})
		},
	}
}

func newRootCmd() *cobra.Command {
	cmd := baseRootCmd()
	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.Flags().
		StringVarP(
			&outputDirFlag, outputFlagName, "o",
			viper.GetString(outputConfigKey),
			"directory that receives the extracted test files",
		)
	bindFlagToConfig(cmd.Flags().Lookup(outputFlagName), outputConfigKey)

	cmd.Flags().StringVar(&unterminatedFlag, unterminatedFlagName, viper.GetString(unterminatedConfigKey), "what to do with a body whose closing marker is missing: keep or discard")
	bindFlagToConfig(cmd.Flags().Lookup(unterminatedFlagName), unterminatedConfigKey)

	cmd.PersistentFlags().StringArrayVar(&skipDirsFlag, skipDirFlagName, viper.GetStringSlice(skipDirsConfigKey), "directory name to skip while walking (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(skipDirFlagName), skipDirsConfigKey)

	cmd.PersistentFlags().StringVar(&nativeExtFlag, nativeExtFlagName, viper.GetString(nativeExtConfigKey), "suffix of files that are taken whole as a single test")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(nativeExtFlagName), nativeExtConfigKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)

	cmd.PersistentFlags().StringVar(&logFileFlag, logFileFlagName, viper.GetString(logFilenameKey), "log file path")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(logFileFlagName), logFilenameKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func estimateArgs(root string) domain.EstimateArgs {
	return domain.EstimateArgs{
		Root:      m.Path(root),
		SkipDirs:  viper.GetStringSlice(skipDirsConfigKey),
		NativeExt: viper.GetString(nativeExtConfigKey),
	}
}
