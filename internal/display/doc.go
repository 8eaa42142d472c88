// Package display renders tgrep's user-facing terminal output: matching
// lines, the end-of-search summary and warnings.
//
// # Matches
//
// MatchPrinter is the output sink handed to the search engine. It prints one
// line per match and serializes concurrent writers:
//
//	printer := display.NewMatchPrinter(os.Stdout, display.ColorEnabled(os.Stdout))
//	printer.ShowLineNumbers = true
//	searcher := search.NewSearcher(printer, logger, opts)
//
// Output format is "<file>: <line>", or "<file>:<lineNo>: <line>" with line
// numbers enabled, in green on a terminal.
//
// # Summary
//
//	display.PrintSummary(os.Stdout, summary, useColor)
//
// prints "<N> matches found." in yellow when anything matched and red
// otherwise, followed by "(Limit reached)" or "(Search cancelled)".
//
// # Warnings
//
//	display.WarnInvalidDirectory(dir).Display(os.Stdout, useColor)
//
// All functions accept io.Writer for testability. Colors come from
// fatih/color and are only emitted when the caller asks for them.
package display
