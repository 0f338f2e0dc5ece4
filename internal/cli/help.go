package cli

import (
	"fmt"
	"io"
)

// flagInfo describes a single flag for help output.
type flagInfo struct {
	Name string // "--strategy"
	Arg  string // "<grouped|quadratic>", "" for bool
	Desc string
}

var flagHelp = []flagInfo{
	{"--quiet, -q", "", "Suppress the run report"},
	{"--verbose, -v", "", "Show diagnostics on stderr"},
	{"--toon", "", "Force TOON output format"},
	{"--pretty", "", "Force pretty output format"},
	{"--json", "", "Force JSON output format"},
	{"--trim", "", "Count trailing non-blank bytes per line (report only)"},
	{"--no-trim", "", "Disable trimming set in duplines.toml"},
	{"--strategy", "<grouped|quadratic>", "Duplicate marking algorithm (default: grouped)"},
	{"--history", "<path>", "Record the run in a SQLite ledger"},
	{"--config", "<path>", "Use this config instead of the nearest duplines.toml"},
	{"--limit", "<n>", "history: show at most n runs (default: all)"},
	{"--version", "", "Print the version"},
	{"--help, -h", "", "Show this help"},
}

// printUsage writes the full usage text to w.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: duplines [flags] <input> <output>")
	fmt.Fprintln(w, "       duplines [flags] history")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Copies <input> to <output> keeping only the first occurrence of each line.")
	fmt.Fprintln(w, "Consecutive blank lines are collapsed into one. Every output line ends in \\n.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	for _, f := range flagHelp {
		name := f.Name
		if f.Arg != "" {
			name += " " + f.Arg
		}
		fmt.Fprintf(w, "  %-32s%s\n", name, f.Desc)
	}
}
