package commands

import (
	"errors"
	"fmt"
	"os"

	"inkbook/internal/qualitygates"
	"inkbook/pkg/logger"

	"github.com/spf13/cobra"
)

// errGatesFailed makes the process exit non-zero without printing a second error.
var errGatesFailed = errors.New("quality gates failed")

// newExecutor is replaced in tests.
var newExecutor = func() qualitygates.Executor { return qualitygates.CommandExecutor{} }

// NewRootCmd builds the qualitygates command tree.
func NewRootCmd() *cobra.Command {
	var (
		configPath string
		verbose    bool
	)
	root := &cobra.Command{
		Use:   "qualitygates",
		Short: "Run inkbook's analysis, security, test and build gates",
		Long: `qualitygates runs the repository checks in four phases:
analysis, security, tests and build.

Gates of one phase run concurrently. When a required gate does not pass,
the remaining phases are skipped and the command exits with status 1.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := "warn"
			if verbose {
				level = "debug"
			}
			logger.Init("development", level)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML file that replaces the default gates")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every gate as it finishes")

	root.AddCommand(newRunCmd(&configPath), newListCmd(&configPath))
	return root
}

// Execute runs the root command and exits 1 on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		if !errors.Is(err, errGatesFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func loadGates(configPath string) ([]qualitygates.Gate, error) {
	if configPath == "" {
		return qualitygates.DefaultGates(), nil
	}
	return qualitygates.LoadConfig(configPath)
}
