package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"

	"github.com/leeovery/duplines/internal/history"
)

const timeLayout = "2006-01-02T15:04:05Z"

var (
	removedColor = color.New(color.FgYellow, color.Bold)
	keptColor    = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed, color.Bold)
)

// PrettyFormatter implements the Formatter interface for human-readable
// terminal output: aligned labels, with color only when the terminal
// supports it.
type PrettyFormatter struct{}

// FormatReport renders the run summary as key-value pairs with a 13-char
// label column. Trimmed and History lines only appear when set.
func (f *PrettyFormatter) FormatReport(w io.Writer, d ReportData) error {
	fmt.Fprintf(w, "%-13s%s\n", "Input:", d.Input)
	fmt.Fprintf(w, "%-13s%s\n", "Output:", d.Output)
	fmt.Fprintf(w, "%-13s%d bytes\n", "Size:", d.InputBytes)
	fmt.Fprintf(w, "%-13s%d\n", "Lines:", d.Lines)
	if d.Trimming {
		fmt.Fprintf(w, "%-13s%d\n", "Trimmed:", d.Trimmed)
	}
	fmt.Fprintf(w, "%-13s%s\n", "Strategy:", d.Strategy)
	fmt.Fprintf(w, "%-13s%d checks, %d skipped\n", "Comparisons:", d.Comparisons, d.Rejections)
	fmt.Fprintf(w, "%-13s%s\n", "Duplicates:", removedColor.Sprint(d.Duplicates))
	fmt.Fprintf(w, "%-13s%s\n", "Collapsed:", removedColor.Sprint(d.Collapsed))
	fmt.Fprintf(w, "%-13s%s lines, %d bytes\n", "Written:", keptColor.Sprint(d.Written), d.Bytes)
	if d.HistoryID != 0 {
		fmt.Fprintf(w, "%-13s#%d\n", "History:", d.HistoryID)
	}
	if d.WriteError != "" {
		fmt.Fprintf(w, "%-13s%s\n", "Error:", errorColor.Sprint(d.WriteError))
	}
	return nil
}

// FormatHistory renders ledger entries as an aligned column table with a
// header row. An empty ledger produces "No runs recorded." with no headers.
func (f *PrettyFormatter) FormatHistory(w io.Writer, runs []history.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded.")
		return err
	}

	idW := len("ID")
	inW := len("INPUT")
	for _, r := range runs {
		if n := len(strconv.FormatInt(r.ID, 10)); n > idW {
			idW = n
		}
		if len(r.Input) > inW {
			inW = len(r.Input)
		}
	}

	rowFmt := fmt.Sprintf("%%-%ds  %%-20s  %%-%ds  %%6s  %%6s  %%s\n", idW, inW)
	if _, err := fmt.Fprintf(w, rowFmt, "ID", "STARTED", "INPUT", "LINES", "DUPS", "OUTPUT"); err != nil {
		return err
	}
	for _, r := range runs {
		output := r.Output
		if r.WriteError != "" {
			output += " " + errorColor.Sprint("(truncated)")
		}
		_, err := fmt.Fprintf(w, rowFmt,
			strconv.FormatInt(r.ID, 10),
			r.Started.UTC().Format(timeLayout),
			r.Input,
			strconv.Itoa(r.Lines),
			strconv.Itoa(r.Duplicates),
			output,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

