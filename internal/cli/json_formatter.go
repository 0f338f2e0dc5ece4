package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/leeovery/duplines/internal/history"
)

// JSONFormatter formats output as indented JSON with snake_case keys.
type JSONFormatter struct{}

// jsonReport is the JSON representation of a run report. trimmed is only
// present when trimming ran; history_id and error only when set.
type jsonReport struct {
	Input      string     `json:"input"`
	Output     string     `json:"output"`
	InputBytes int        `json:"input_bytes"`
	Lines      int        `json:"lines"`
	Trimmed    *int       `json:"trimmed,omitempty"`
	Strategy   string     `json:"strategy"`
	Marker     jsonMarker `json:"marker"`
	Written    jsonOutput `json:"written"`
	HistoryID  int64      `json:"history_id,omitempty"`
	Error      string     `json:"error,omitempty"`
}

type jsonMarker struct {
	Rejections  int `json:"rejections"`
	Comparisons int `json:"comparisons"`
	Duplicates  int `json:"duplicates"`
}

type jsonOutput struct {
	Lines     int `json:"lines"`
	Bytes     int `json:"bytes"`
	Collapsed int `json:"collapsed"`
}

// jsonRun is the JSON representation of a ledger entry.
type jsonRun struct {
	ID          int64  `json:"id"`
	Started     string `json:"started"`
	Input       string `json:"input"`
	Output      string `json:"output"`
	Digest      string `json:"digest"`
	Strategy    string `json:"strategy"`
	InputBytes  int    `json:"input_bytes"`
	Lines       int    `json:"lines"`
	Trimmed     int    `json:"trimmed"`
	Rejections  int    `json:"rejections"`
	Comparisons int    `json:"comparisons"`
	Duplicates  int    `json:"duplicates"`
	Written     int    `json:"written"`
	Collapsed   int    `json:"collapsed"`
	Error       string `json:"error,omitempty"`
}

// FormatReport formats the run summary as a JSON object.
func (f *JSONFormatter) FormatReport(w io.Writer, d ReportData) error {
	r := jsonReport{
		Input:      d.Input,
		Output:     d.Output,
		InputBytes: d.InputBytes,
		Lines:      d.Lines,
		Strategy:   d.Strategy,
		Marker: jsonMarker{
			Rejections:  d.Rejections,
			Comparisons: d.Comparisons,
			Duplicates:  d.Duplicates,
		},
		Written: jsonOutput{
			Lines:     d.Written,
			Bytes:     d.Bytes,
			Collapsed: d.Collapsed,
		},
		HistoryID: d.HistoryID,
		Error:     d.WriteError,
	}
	if d.Trimming {
		trimmed := d.Trimmed
		r.Trimmed = &trimmed
	}
	return jsonWrite(w, r)
}

// FormatHistory formats ledger entries as a JSON array. An empty ledger
// produces [].
func (f *JSONFormatter) FormatHistory(w io.Writer, runs []history.Run) error {
	items := make([]jsonRun, len(runs))
	for i, r := range runs {
		items[i] = jsonRun{
			ID:          r.ID,
			Started:     r.Started.UTC().Format(timeLayout),
			Input:       r.Input,
			Output:      r.Output,
			Digest:      r.Digest,
			Strategy:    r.Strategy,
			InputBytes:  r.InputBytes,
			Lines:       r.Lines,
			Trimmed:     r.Trimmed,
			Rejections:  r.Rejections,
			Comparisons: r.Comparisons,
			Duplicates:  r.Duplicates,
			Written:     r.Written,
			Collapsed:   r.Collapsed,
			Error:       r.WriteError,
		}
	}
	return jsonWrite(w, items)
}

func jsonWrite(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal error: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
