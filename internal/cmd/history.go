package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/harrison/tgrep/internal/config"
	"github.com/harrison/tgrep/internal/history"
	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the 'tgrep history' parent command
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Search history commands",
		Long: `Commands for viewing and managing the record of finished searches.

Every completed, limited or cancelled search is stored in a local SQLite
database ($TGREP_HOME/history.db unless history.db_path is set).`,
	}

	// Add subcommands
	cmd.AddCommand(newHistoryListCommand())
	cmd.AddCommand(newHistoryClearCommand())
	cmd.AddCommand(newHistoryExportCommand())

	return cmd
}

// resolveHistoryDBPath returns the override when set, otherwise the path
// configured for the current directory.
func resolveHistoryDBPath(override string) (string, error) {
	if override != "" {
		return override, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	cfg, err := config.Load("", cwd)
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}

	return cfg.HistoryDBPath()
}

// openExistingHistory opens the history database, reporting to output and
// returning a nil store when none has been created yet.
func openExistingHistory(output io.Writer, dbPathOverride string) (*history.Store, error) {
	dbPath, err := resolveHistoryDBPath(dbPathOverride)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Fprintf(output, "No search history found at: %s\n", dbPath)
		return nil, nil
	}

	store, err := history.NewStore(dbPath, 0)
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}
	return store, nil
}

// newHistoryListCommand creates the 'tgrep history list' command
func newHistoryListCommand() *cobra.Command {
	var count int
	var dbPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show recent searches",
		Long: `Show recent searches, newest first.

Examples:
  tgrep history list
  tgrep history list --count 50`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryList(cmd, count, dbPath)
		},
	}

	cmd.Flags().IntVar(&count, "count", 20, "Number of searches to show (0 = all)")
	cmd.Flags().StringVar(&dbPath, "db-path", "", "Path to history database (for testing)")

	return cmd
}

func runHistoryList(cmd *cobra.Command, count int, dbPathOverride string) error {
	output := cmd.OutOrStdout()

	store, err := openExistingHistory(output, dbPathOverride)
	if err != nil || store == nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(context.Background(), count)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintln(output, "No searches recorded.")
		return nil
	}

	fmt.Fprintf(output, "%-19s  %-14s  %7s  %-9s  %s\n", "WHEN", "OUTCOME", "MATCHES", "DURATION", "SEARCH")
	fmt.Fprintln(output, strings.Repeat("-", 78))

	for _, e := range entries {
		fmt.Fprintf(output, "%-19s  %-14s  %7d  %-9s  %s\n",
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			e.Outcome,
			e.TotalMatches,
			e.Duration.Round(time.Millisecond),
			describeEntry(e),
		)
	}

	return nil
}

// describeEntry renders the parameters of a recorded search on one line.
func describeEntry(e history.Entry) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%q in %s/%s", e.Term, e.Directory, e.FilePattern)
	if e.Recursive {
		b.WriteString(" -r")
	}
	if e.Limit > 0 {
		fmt.Fprintf(&b, " -t %d", e.Limit)
	}

	return b.String()
}

// newHistoryClearCommand creates the 'tgrep history clear' command
func newHistoryClearCommand() *cobra.Command {
	var yes bool
	var dbPath string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded searches",
		Long: `Delete every recorded search from the history database.

Examples:
  # Asks for confirmation
  tgrep history clear

  # No confirmation
  tgrep history clear --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryClear(cmd, NewDefaultMenuReader(cmd.InOrStdin()), yes, dbPath)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	cmd.Flags().StringVar(&dbPath, "db-path", "", "Path to history database (for testing)")

	return cmd
}

func runHistoryClear(cmd *cobra.Command, reader MenuReader, yes bool, dbPathOverride string) error {
	output := cmd.OutOrStdout()

	if !yes {
		fmt.Fprintf(output, "WARNING: This will delete ALL recorded searches.\n")
		if !confirmAction(reader, output) {
			fmt.Fprintf(output, "Operation cancelled.\n")
			return nil
		}
	}

	store, err := openExistingHistory(output, dbPathOverride)
	if err != nil || store == nil {
		return err
	}
	defer store.Close()

	deletedCount, err := store.Clear(context.Background())
	if err != nil {
		return err
	}

	// Report results
	recordText := "search"
	if deletedCount != 1 {
		recordText = "searches"
	}
	fmt.Fprintf(output, "Deleted %d %s.\n", deletedCount, recordText)

	return nil
}

// confirmAction prompts the user for confirmation
func confirmAction(reader MenuReader, output io.Writer) bool {
	answer, err := readAnswer(reader, output, "Continue? [y/N]: ")
	if err != nil {
		return false
	}
	return isYes(answer)
}

// newHistoryExportCommand creates the 'tgrep history export' command
func newHistoryExportCommand() *cobra.Command {
	var format string
	var outputPath string
	var count int
	var dbPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export search history",
		Long: `Export recorded searches as Markdown, HTML or YAML.

Examples:
  # Markdown to stdout
  tgrep history export

  # HTML report
  tgrep history export --format html --output history.html`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryExport(cmd, format, outputPath, count, dbPath)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "md", "Output format: md, html, yaml")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write to file instead of stdout")
	cmd.Flags().IntVar(&count, "count", 0, "Number of searches to export (0 = all)")
	cmd.Flags().StringVar(&dbPath, "db-path", "", "Path to history database (for testing)")

	return cmd
}

func runHistoryExport(cmd *cobra.Command, formatName, outputPath string, count int, dbPathOverride string) error {
	output := cmd.OutOrStdout()

	format, err := history.ParseFormat(formatName)
	if err != nil {
		return err
	}

	store, err := openExistingHistory(cmd.ErrOrStderr(), dbPathOverride)
	if err != nil || store == nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(context.Background(), count)
	if err != nil {
		return err
	}

	data, err := history.Render(entries, format)
	if err != nil {
		return err
	}

	if outputPath == "" {
		_, err := output.Write(data)
		return err
	}

	if err := history.WriteExport(outputPath, data); err != nil {
		return err
	}

	fmt.Fprintf(output, "Exported %d searches to %s\n", len(entries), outputPath)
	return nil
}
