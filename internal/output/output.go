// Package output serializes the surviving lines of a buffer. Every written
// line gets a single '\n', and a blank line directly following another
// written blank line is dropped.
package output

import (
	"fmt"
	"io"

	"github.com/leeovery/duplines/internal/dedup"
	"github.com/leeovery/duplines/internal/lines"
)

// Summary describes what Write emitted.
type Summary struct {
	// Written counts lines written, terminator included.
	Written int
	// Collapsed counts kept blank lines suppressed by the blank-line rule.
	Collapsed int
	// Bytes counts bytes written, terminators included.
	Bytes int
}

// ShortWriteError reports that a line or its terminator could not be fully
// written. Everything before Line is already on the writer.
type ShortWriteError struct {
	Line     int
	Written  int
	Expected int
	Err      error
}

func (e *ShortWriteError) Error() string {
	msg := fmt.Sprintf("failed to write line %d: bytes written/expected: %d/%d", e.Line, e.Written, e.Expected)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ShortWriteError) Unwrap() error {
	return e.Err
}

var terminator = []byte{lines.Terminator}

// Write emits every kept record of buf to w in record order. It stops at the
// first short or failed write and returns a *ShortWriteError together with the
// summary of what was written up to that point. mask must cover records.
func Write(w io.Writer, buf []byte, records []lines.Record, mask dedup.Mask) (Summary, error) {
	var sum Summary
	if mask.Len() != len(records) {
		return sum, fmt.Errorf("mask covers %d records, have %d", mask.Len(), len(records))
	}
	lastLen := 0

	for i, rec := range records {
		if !mask.Keep(i) {
			continue
		}
		if lastLen == 0 && rec.Length == 0 {
			sum.Collapsed++
			continue
		}

		n, err := w.Write(rec.Bytes(buf))
		sum.Bytes += n
		if err == nil && n != rec.Length {
			err = io.ErrShortWrite
		}
		if err == nil {
			var t int
			t, err = w.Write(terminator)
			sum.Bytes += t
			if err == nil && t != 1 {
				err = io.ErrShortWrite
			}
		}
		if err != nil {
			return sum, &ShortWriteError{Line: rec.Index, Written: n, Expected: rec.Length, Err: err}
		}

		sum.Written++
		lastLen = rec.Length
	}

	return sum, nil
}
