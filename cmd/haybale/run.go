package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/haybale/haybale/internal/binstrings"
	"github.com/haybale/haybale/internal/content"
	"github.com/haybale/haybale/internal/coordinator"
	"github.com/haybale/haybale/internal/herr"
	"github.com/haybale/haybale/internal/output"
	"github.com/haybale/haybale/internal/query"
)

// lastExitCode carries the §6 exit-code decision out of runSearch for
// Execute to return, since cobra's RunE only communicates pass/fail via
// error and SilenceErrors/SilenceUsage are already set so we can report our
// own diagnostics.
var lastExitCode int

// runSearch wires parsed flags into one query.Query per path, drains the
// coordinator's event stream through an output.Formatter, and sets
// lastExitCode per §6: 0 on any Result, 1 on no Result and no Warning, 2 on
// a fatal QueryParse or RootUnreadable condition. With more than one path,
// an unreadable root arrives as a Warning event from SearchRoots and does
// not by itself set 2.
func runSearch(cmd *cobra.Command, cfg *Config) error {
	if cfg.ListStrings != "" {
		return listStrings(cfg.ListStrings)
	}

	raw := query.Raw{
		NamePattern:          namePattern,
		ContentPattern:       cfg.Pattern,
		CaseSensitiveContent: !cfg.IgnoreCase,
		MinSize:              cfg.MinSize,
		MaxSize:              cfg.MaxSize,
		ModifiedAfter:        cfg.ModifiedAfter,
		ModifiedBefore:       cfg.ModifiedBefore,
		SearchBinaries:       cfg.SearchBinaries,
		IncludeHidden:        cfg.Hidden,
		HasMaxDepth:          cfg.MaxDepth >= 0,
		MaxDepth:             cfg.MaxDepth,
		RespectGitignore:     cfg.RespectGitignore,
	}

	now := time.Now()
	queries := make([]*query.Query, 0, len(cfg.Paths))
	for _, p := range cfg.Paths {
		r := raw
		r.Root = p
		q, err := query.Build(r, now)
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)
			lastExitCode = 2
			return nil
		}
		queries = append(queries, q)
	}

	formatter := newFormatter(cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())

	sawResult := false
	sawWarning := false
	fatal := false

	emit := func(ev coordinator.SearchEvent) {
		switch ev.Kind {
		case coordinator.EventResult:
			sawResult = true
			if err := formatter.WriteResult(ev.Result.Path, toOutputMatches(ev.Result.ContentMatches)); err != nil {
				log.Error("write result failed", "path", ev.Result.Path, "err", err)
			}
		case coordinator.EventWarning:
			sawWarning = true
			if cfg.Verbose {
				log.Warn(ev.WarningReason, "path", ev.WarningPath)
			}
			if err := formatter.WriteWarning(ev.WarningPath, ev.WarningReason); err != nil {
				log.Error("write warning failed", "path", ev.WarningPath, "err", err)
			}
		}
	}

	var totalStats coordinator.Stats
	droppedWarnings := 0
	if len(queries) == 1 {
		c, err := coordinator.New(queries[0])
		if err != nil {
			if se, ok := err.(*herr.SearchError); ok && se.Kind == herr.RootUnreadable {
				fatal = true
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)
		} else {
			for {
				ev, ok := c.Next()
				if !ok {
					break
				}
				emit(*ev)
			}
			totalStats = c.Stats()
			droppedWarnings = c.WarningsDropped()
		}
	} else {
		events, dropped, err := coordinator.SearchRoots(context.Background(), queries, int64(cfg.Workers))
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)
			fatal = true
		}
		droppedWarnings = dropped
		for _, ev := range events {
			emit(ev)
		}
	}

	if cfg.Stats {
		fmt.Fprintf(cmd.ErrOrStderr(), "files scanned: %d, matched: %d, dirs visited: %d, warnings: %d (dropped: %d), elapsed: %s\n",
			totalStats.FilesScanned, totalStats.FilesMatched, totalStats.DirsVisited, totalStats.Warnings, droppedWarnings, totalStats.ElapsedAtStop)
	}

	switch {
	case fatal:
		lastExitCode = 2
	case sawResult:
		lastExitCode = 0
	case sawWarning:
		lastExitCode = 1
	default:
		lastExitCode = 1
	}
	return nil
}

func newFormatter(cfg *Config, out, diag io.Writer) output.Formatter {
	if cfg.JSON {
		return output.NewJSONLines(out, diag)
	}
	return output.NewText(out, diag, output.Config{Color: cfg.Color})
}

func toOutputMatches(matches []content.ContentMatch) []output.ContentMatch {
	if len(matches) == 0 {
		return nil
	}
	out := make([]output.ContentMatch, 0, len(matches))
	for _, m := range matches {
		om := output.ContentMatch{LineNumber: m.LineNumber, LineText: m.LineText}
		for _, r := range m.Ranges {
			om.Ranges = append(om.Ranges, output.Range{Start: r.Start, End: r.End})
		}
		for _, l := range m.ContextBefore {
			om.ContextBefore = append(om.ContextBefore, output.Line{LineNumber: l.LineNumber, Text: l.Text})
		}
		for _, l := range m.ContextAfter {
			om.ContextAfter = append(om.ContextAfter, output.Line{LineNumber: l.LineNumber, Text: l.Text})
		}
		out = append(out, om)
	}
	return out
}

// listStrings bypasses the coordinator entirely and dumps every string
// binstrings.Extract finds in a single file.
func listStrings(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		lastExitCode = 2
		return fmt.Errorf("cannot read %s: %w", path, err)
	}
	for _, s := range binstrings.Extract(data) {
		fmt.Printf("%8d  %-8s %q\n", s.ByteOffset, s.Encoding, s.Value)
	}
	lastExitCode = 0
	return nil
}
