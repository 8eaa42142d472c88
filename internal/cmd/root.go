package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for tgrep
func NewRootCommand() *cobra.Command {
	var flags searchFlags

	cmd := &cobra.Command{
		Use:   "tgrep [search-term] [file-pattern]",
		Short: "Concurrent case-insensitive text search",
		Long: `tgrep searches files for a case-insensitive substring and prints every
matching line as it is found.

Files are selected by a glob (default *.txt) in one directory, optionally
recursively, and scanned concurrently. A match limit stops the search early,
and pressing 'c' cancels it. Without a search term tgrep prompts for every
parameter. After each search it offers to run another one.

Examples:
  # Search *.txt files in the current directory
  tgrep error

  # Search Go files recursively below ./src, stop after 20 matches
  tgrep -r -t 20 -d ./src timeout "*.go"

  # Colon forms are still accepted
  tgrep error "*.log" -t:5 -d:/var/log`,
		Args:    cobra.MaximumNArgs(2),
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
		// main prints the returned error
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, args, &flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.recursive, "recursive", "r", false, "Search subdirectories")
	cmd.Flags().Int64VarP(&flags.limit, "limit", "t", 0, "Stop after N matches (0 = no limit)")
	cmd.Flags().StringVarP(&flags.dir, "dir", "d", "", "Directory to search (default current directory)")
	cmd.Flags().BoolVarP(&flags.lineNumbers, "line-number", "n", false, "Print line numbers with matches")
	cmd.Flags().IntVar(&flags.maxConcurrency, "max-concurrency", 0, "Maximum files scanned at once (0 = number of CPUs)")
	cmd.Flags().StringVar(&flags.configPath, "config", "", "Path to config file (default .tgrep/config.yaml)")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "Verbose output (same as --log-level debug)")
	cmd.Flags().StringVar(&flags.logDir, "log-dir", "", "Write run logs to this directory")
	cmd.Flags().BoolVar(&flags.noColor, "no-color", false, "Disable colored output")
	cmd.Flags().BoolVar(&flags.noHistory, "no-history", false, "Do not record searches in history")
	cmd.Flags().BoolVar(&flags.once, "once", false, "Run a single search without asking to search again")

	// Add subcommands
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}
