package cli

import (
	"errors"
	"fmt"

	"github.com/leeovery/duplines/internal/config"
	"github.com/leeovery/duplines/internal/engine"
	"github.com/leeovery/duplines/internal/history"
)

var errNoHistory = errors.New("no history ledger configured (use --history <path> or [history] path in duplines.toml)")

func (a *App) runHistory(fc FormatConfig, flags globalFlags, cfg config.Config) error {
	path := historyPath(flags, cfg)
	if path == "" {
		return errNoHistory
	}

	ledger, err := history.Open(path)
	if err != nil {
		return err
	}
	defer ledger.Close()
	fc.Logger.Logf("history: %s", ledger.Path())

	runs, err := ledger.Recent(flags.limit)
	if err != nil {
		return err
	}

	if fc.Quiet {
		for _, r := range runs {
			fmt.Fprintln(a.Stdout, r.ID)
		}
		return nil
	}
	return fc.Formatter().FormatHistory(a.Stdout, runs)
}

// recordRun appends report to the ledger at path and returns the new row ID.
// Ledger failures never fail the run; they are reported as warnings.
func (a *App) recordRun(fc FormatConfig, path string, report *engine.Report) int64 {
	ledger, err := history.Open(path)
	if err != nil {
		fmt.Fprintf(a.Stderr, "warning: failed to open history: %v\n", err)
		return 0
	}
	defer ledger.Close()

	if prev, ok, err := ledger.LastWithDigest(report.Digest); err == nil && ok {
		fc.Logger.Logf("history: same input content as run #%d (%s)", prev.ID, prev.Input)
	}

	run := history.Run{
		Input:       report.Input,
		Output:      report.Output,
		Digest:      report.Digest,
		Strategy:    string(report.Strategy),
		InputBytes:  report.InputBytes,
		Lines:       report.Lines,
		Trimmed:     report.Trimmed,
		Rejections:  report.Marker.Rejections,
		Comparisons: report.Marker.Comparisons,
		Duplicates:  report.Marker.Duplicates,
		Written:     report.Written.Written,
		Collapsed:   report.Written.Collapsed,
	}
	if report.WriteErr != nil {
		run.WriteError = report.WriteErr.Error()
	}

	id, err := ledger.Record(run)
	if err != nil {
		fmt.Fprintf(a.Stderr, "warning: failed to record run in history: %v\n", err)
		return 0
	}
	fc.Logger.Logf("history: recorded run #%d in %s", id, ledger.Path())
	return id
}
