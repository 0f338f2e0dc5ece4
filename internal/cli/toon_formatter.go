package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	toon "github.com/toon-format/toon-go"

	"github.com/leeovery/duplines/internal/history"
)

// ToonFormatter implements the Formatter interface using TOON format, which
// keeps reports compact for scripts and agents.
type ToonFormatter struct{}

const historyFields = "id,started,input,output,strategy,lines,duplicates,collapsed,written,error"

// FormatReport renders the run summary as a single-row TOON section.
// trimmed, history_id and error are omitted from the schema when not set.
func (f *ToonFormatter) FormatReport(w io.Writer, d ReportData) error {
	fields := []string{"input", "output", "input_bytes", "lines"}
	values := []string{
		toonEscapeValue(d.Input),
		toonEscapeValue(d.Output),
		strconv.Itoa(d.InputBytes),
		strconv.Itoa(d.Lines),
	}

	if d.Trimming {
		fields = append(fields, "trimmed")
		values = append(values, strconv.Itoa(d.Trimmed))
	}

	fields = append(fields, "strategy", "rejections", "comparisons", "duplicates", "collapsed", "written", "bytes")
	values = append(values,
		toonEscapeValue(d.Strategy),
		strconv.Itoa(d.Rejections),
		strconv.Itoa(d.Comparisons),
		strconv.Itoa(d.Duplicates),
		strconv.Itoa(d.Collapsed),
		strconv.Itoa(d.Written),
		strconv.Itoa(d.Bytes),
	)

	if d.HistoryID != 0 {
		fields = append(fields, "history_id")
		values = append(values, strconv.FormatInt(d.HistoryID, 10))
	}
	if d.WriteError != "" {
		fields = append(fields, "error")
		values = append(values, toonEscapeValue(d.WriteError))
	}

	_, err := fmt.Fprintf(w, "report{%s}:\n  %s\n", strings.Join(fields, ","), strings.Join(values, ","))
	return err
}

// FormatHistory renders ledger entries as a TOON tabular array.
// An empty ledger produces runs[0]{...}: with no rows.
func (f *ToonFormatter) FormatHistory(w io.Writer, runs []history.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintf(w, "runs[0]{%s}:\n", historyFields)
		return err
	}

	objects := make([]toon.Object, len(runs))
	for i, r := range runs {
		objects[i] = toon.NewObject(
			toon.Field{Key: "id", Value: int(r.ID)},
			toon.Field{Key: "started", Value: r.Started.UTC().Format(timeLayout)},
			toon.Field{Key: "input", Value: r.Input},
			toon.Field{Key: "output", Value: r.Output},
			toon.Field{Key: "strategy", Value: r.Strategy},
			toon.Field{Key: "lines", Value: r.Lines},
			toon.Field{Key: "duplicates", Value: r.Duplicates},
			toon.Field{Key: "collapsed", Value: r.Collapsed},
			toon.Field{Key: "written", Value: r.Written},
			toon.Field{Key: "error", Value: r.WriteError},
		)
	}

	doc := toon.NewObject(
		toon.Field{Key: "runs", Value: objects},
	)
	result, err := toon.MarshalString(doc)
	if err != nil {
		return fmt.Errorf("toon marshal error: %w", err)
	}
	_, err = fmt.Fprintln(w, result)
	return err
}

// toonEscapeValue uses the toon-go library to escape a string value for use
// in a comma-delimited TOON row.
func toonEscapeValue(s string) string {
	// Marshal a single-row tabular array to get array-context escaping.
	doc := toon.NewObject(
		toon.Field{Key: "a", Value: []toon.Object{
			toon.NewObject(toon.Field{Key: "v", Value: s}),
		}},
	)
	result, err := toon.MarshalString(doc)
	if err != nil {
		return s
	}
	// Result is "a[1]{v}:\n  <value>"; keep the value.
	lines := strings.SplitN(result, "\n", 2)
	if len(lines) == 2 {
		return strings.TrimSpace(lines[1])
	}
	return s
}
