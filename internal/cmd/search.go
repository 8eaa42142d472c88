package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/harrison/tgrep/internal/config"
	"github.com/harrison/tgrep/internal/display"
	"github.com/harrison/tgrep/internal/history"
	"github.com/harrison/tgrep/internal/keypress"
	"github.com/harrison/tgrep/internal/logger"
	"github.com/harrison/tgrep/internal/models"
	"github.com/harrison/tgrep/internal/search"
	"github.com/spf13/cobra"
)

// clearScreen moves the cursor home and clears the terminal.
const clearScreen = "\033[H\033[2J"

// searchFlags holds the root command's flag values.
type searchFlags struct {
	recursive      bool
	limit          int64
	dir            string
	lineNumbers    bool
	maxConcurrency int
	configPath     string
	logLevel       string
	verbose        bool
	logDir         string
	noColor        bool
	noHistory      bool
	once           bool
}

// session is one invocation of the search loop.
type session struct {
	cfg      *config.Config
	reader   MenuReader
	out      io.Writer
	listener *keypress.Listener
	printer  *display.MatchPrinter
	searcher *search.Searcher
	logger   search.Logger
	console  *logger.ConsoleLogger
	store    *history.Store
	useColor bool
	cwd      string
}

// runSearch executes the root command: it resolves configuration, wires the
// search engine to the terminal and runs the search loop.
func runSearch(cmd *cobra.Command, args []string, flags *searchFlags) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	cfg, err := config.Load(flags.configPath, cwd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Build flag overrides (only set pointers for flags that were explicitly provided)
	var overrides config.FlagOverrides
	if len(args) > 1 {
		overrides.FilePattern = &args[1]
	}
	if cmd.Flags().Changed("max-concurrency") {
		overrides.MaxConcurrency = &flags.maxConcurrency
	}
	if cmd.Flags().Changed("log-level") {
		overrides.LogLevel = &flags.logLevel
	}
	if flags.verbose {
		debug := "debug"
		overrides.LogLevel = &debug
	}
	if cmd.Flags().Changed("log-dir") {
		overrides.LogDir = &flags.logDir
	}
	if cmd.Flags().Changed("no-history") {
		overrides.NoHistory = &flags.noHistory
	}
	if cmd.Flags().Changed("once") {
		overrides.Once = &flags.once
	}

	cfg.MergeWithFlags(overrides)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if flags.noColor {
		color.NoColor = true
	}

	listener := keypress.New(cmd.InOrStdin(), cfg.CancelRune())
	out := listener.Wrap(cmd.OutOrStdout())
	errOut := listener.Wrap(cmd.ErrOrStderr())

	console := logger.NewConsoleLogger(errOut, cfg.LogLevel)
	loggers := []search.Logger{console}

	if cfg.LogDir != "" {
		fileLog, err := logger.NewFileLoggerWithDirAndLevel(cfg.LogDir, cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("failed to create file logger: %w", err)
		}
		defer fileLog.Close()
		loggers = append(loggers, fileLog)
		console.LogDebug(fmt.Sprintf("Writing run log to %s", fileLog.Path()))
	}

	s := &session{
		cfg:      cfg,
		reader:   NewDefaultMenuReader(cmd.InOrStdin()),
		out:      out,
		listener: listener,
		logger:   newMultiLogger(loggers...),
		console:  console,
		useColor: display.ColorEnabled(out),
		cwd:      cwd,
	}

	if cfg.History.Enabled {
		store, err := openHistory(cfg)
		if err != nil {
			// History is a convenience; searching works without it
			console.LogWarn(fmt.Sprintf("Search history disabled: %v", err))
		} else {
			defer store.Close()
			s.store = store
		}
	}

	s.printer = display.NewMatchPrinter(out, s.useColor)
	s.printer.ShowLineNumbers = flags.lineNumbers
	s.searcher = search.NewSearcher(s.printer, s.logger, search.Options{
		MaxConcurrency: cfg.MaxConcurrency,
		MaxLineBytes:   cfg.MaxLineBytes,
		ExcludeDirs:    cfg.ExcludeDirs,
		SkipHidden:     cfg.SkipHidden,
		MaxDepth:       cfg.MaxDepth,
	})

	var initial *models.SearchRequest
	if len(args) > 0 {
		req := s.requestFromArgs(args, flags, cmd.Flags().Changed("dir"))
		initial = &req
	}

	return s.loop(cmd.Context(), initial)
}

// openHistory opens the history store configured in cfg.
func openHistory(cfg *config.Config) (*history.Store, error) {
	dbPath, err := cfg.HistoryDBPath()
	if err != nil {
		return nil, err
	}
	return history.NewStore(dbPath, cfg.History.MaxEntries)
}

// requestFromArgs builds the first round's request from the command line.
func (s *session) requestFromArgs(args []string, flags *searchFlags, dirSet bool) models.SearchRequest {
	req := models.NewSearchRequest(args[0], s.cwd)
	req.FilePattern = s.cfg.FilePattern
	req.Recursive = flags.recursive
	req.Limit = flags.limit

	if dirSet {
		dir, ok := resolveDirectory(flags.dir, s.cwd)
		if !ok {
			display.WarnInvalidDirectory(flags.dir).Display(s.out, s.useColor)
		}
		req.Directory = dir
	}

	return req
}

// loop runs search rounds until the user declines another one. initial, when
// set, is used for the first round instead of prompting.
func (s *session) loop(ctx context.Context, initial *models.SearchRequest) error {
	if ctx == nil {
		ctx = context.Background()
	}

	for {
		if s.cfg.UI.ClearScreen && s.useColor {
			fmt.Fprint(s.out, clearScreen)
		}

		var req models.SearchRequest
		if initial != nil {
			req = *initial
			initial = nil
		} else {
			req = promptForRequest(s.reader, s.out, s.cfg.FilePattern, s.cwd, s.useColor)
		}

		if req.SearchTerm == "" {
			return models.ErrEmptySearchTerm
		}

		if err := s.runRound(ctx, req); err != nil {
			display.PrintError(s.out, err, s.useColor)
		}

		if !s.cfg.UI.PromptAgain || !askSearchAgain(s.reader, s.out) {
			return nil
		}
	}
}

// runRound performs a single search and reports its outcome. The returned
// error aborted the search before any results were produced.
func (s *session) runRound(ctx context.Context, req models.SearchRequest) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	sig := search.NewSignal()

	if s.listener.Interactive() {
		fmt.Fprintf(s.out, "\nPress '%c' to cancel the search anytime...\n", s.listener.CancelKey())
		err := s.listener.Start(func() {
			if sig.Trigger() {
				s.printer.Notice("\nCancellation requested.")
			}
		})
		if err != nil {
			s.console.LogWarn(fmt.Sprintf("Cancel key unavailable: %v", err))
		} else {
			defer s.stopListener()
		}
	}

	summary, err := s.searcher.Search(ctx, req, sig)
	if err != nil {
		return err
	}

	s.stopListener()
	display.PrintSummary(s.out, summary, s.useColor)

	if s.store != nil {
		if _, err := s.store.Record(context.Background(), req, summary); err != nil {
			s.console.LogWarn(fmt.Sprintf("Failed to record search history: %v", err))
		}
	}

	return nil
}

// stopListener restores the terminal; it is safe to call more than once.
func (s *session) stopListener() {
	if err := s.listener.Stop(); err != nil {
		s.console.LogWarn(fmt.Sprintf("Failed to restore terminal: %v", err))
	}
}
