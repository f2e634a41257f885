package cmd

import (
	"os"

	"github.com/sambabib/depdrift/pkg/logger"
	"github.com/spf13/cobra"
)

// Version is set during build using ldflags
var Version = "dev"

// NewRootCmd creates the base command. Invoked without a subcommand it
// analyzes the directory given as its only argument.
func NewRootCmd() *cobra.Command {
	opts := newAnalyzeOptions()

	rootCmd := &cobra.Command{
		Use:   "depdrift [dir]",
		Short: "Summarizes how far project dependencies have drifted from their latest versions",
		Long: `depdrift runs "yarn outdated", classifies every outdated dependency by the most
significant version component that changed (major, minor or patch) and prints a
summary table with counts and percentages per bucket.`,
		Version:       Version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, opts, args)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to config file (default: search for .depdrift.yaml from the project directory upwards)")
	opts.bindFlags(rootCmd.Flags())

	rootCmd.AddCommand(newAnalyzeCmd(opts))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Execute runs the root command.
func Execute() {
	defer logger.Sync()
	if err := NewRootCmd().Execute(); err != nil {
		logger.Errorf("%v", err)
		logger.Sync()
		os.Exit(1)
	}
}
