package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/leeovery/duplines/internal/config"
	"github.com/leeovery/duplines/internal/engine"
	"github.com/leeovery/duplines/internal/history"
)

// Format represents the output format type.
type Format string

// Format constants for output selection.
const (
	FormatToon   Format = "toon"
	FormatPretty Format = "pretty"
	FormatJSON   Format = "json"
)

// FormatConfig holds output configuration passed to handlers.
type FormatConfig struct {
	Format Format
	Quiet  bool
	Logger *engine.VerboseLogger
}

// Formatter defines the interface for report output.
type Formatter interface {
	// FormatReport renders the summary of a completed run.
	FormatReport(w io.Writer, data ReportData) error
	// FormatHistory renders ledger entries, newest first.
	FormatHistory(w io.Writer, runs []history.Run) error
}

// ReportData is the formatter view of an engine.Report.
type ReportData struct {
	Input       string
	Output      string
	InputBytes  int
	Lines       int
	Trimming    bool
	Trimmed     int
	Strategy    string
	Rejections  int
	Comparisons int
	Duplicates  int
	Collapsed   int
	Written     int
	Bytes       int
	WriteError  string
	// HistoryID is the ledger row for this run, 0 when not recorded.
	HistoryID int64
}

func newReportData(r *engine.Report) ReportData {
	d := ReportData{
		Input:       r.Input,
		Output:      r.Output,
		InputBytes:  r.InputBytes,
		Lines:       r.Lines,
		Trimming:    r.Trimming,
		Trimmed:     r.Trimmed,
		Strategy:    string(r.Strategy),
		Rejections:  r.Marker.Rejections,
		Comparisons: r.Marker.Comparisons,
		Duplicates:  r.Marker.Duplicates,
		Collapsed:   r.Written.Collapsed,
		Written:     r.Written.Written,
		Bytes:       r.Written.Bytes,
	}
	if r.WriteErr != nil {
		d.WriteError = r.WriteErr.Error()
	}
	return d
}

// DetectTTY reports whether w is a terminal. Anything that is not an
// *os.File is treated as non-TTY.
func DetectTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// ParseFormat resolves a format name from configuration.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatToon, FormatPretty, FormatJSON:
		return Format(name), nil
	default:
		return "", fmt.Errorf("unknown report format %q (want toon, pretty or json)", name)
	}
}

// ResolveFormat determines the output format from flags, the configured
// default and TTY status. Returns error if more than one format flag is set.
// With no flag and no configured default, returns Pretty for a TTY and Toon
// otherwise.
func ResolveFormat(toonFlag, prettyFlag, jsonFlag bool, configured string, isTTY bool) (Format, error) {
	count := 0
	for _, set := range []bool{toonFlag, prettyFlag, jsonFlag} {
		if set {
			count++
		}
	}
	if count > 1 {
		return "", errors.New("cannot specify multiple format flags (--toon, --pretty, --json)")
	}

	switch {
	case toonFlag:
		return FormatToon, nil
	case prettyFlag:
		return FormatPretty, nil
	case jsonFlag:
		return FormatJSON, nil
	}

	if configured != "" {
		return ParseFormat(configured)
	}
	if isTTY {
		return FormatPretty, nil
	}
	return FormatToon, nil
}

func newFormatConfig(flags globalFlags, cfg config.Config, stdout, stderr io.Writer) (FormatConfig, error) {
	format, err := ResolveFormat(flags.toon, flags.pretty, flags.json, cfg.Report.Format, DetectTTY(stdout))
	if err != nil {
		return FormatConfig{}, err
	}

	return FormatConfig{
		Format: format,
		Quiet:  flags.quiet,
		Logger: engine.NewVerboseLogger(stderr, flags.verbose),
	}, nil
}

// Formatter returns the appropriate Formatter for the configured format.
func (c FormatConfig) Formatter() Formatter {
	switch c.Format {
	case FormatJSON:
		return &JSONFormatter{}
	case FormatPretty:
		return &PrettyFormatter{}
	default:
		return &ToonFormatter{}
	}
}
