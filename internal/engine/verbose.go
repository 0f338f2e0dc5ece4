package engine

import (
	"fmt"
	"io"
)

// VerboseLogger writes run diagnostics to the given writer when enabled.
// Every line is prefixed with "verbose: " for grep-ability. A nil or disabled
// logger discards everything.
type VerboseLogger struct {
	w       io.Writer
	enabled bool
}

// NewVerboseLogger creates a VerboseLogger. When enabled is false, Log and
// Logf are no-ops regardless of the writer value.
func NewVerboseLogger(w io.Writer, enabled bool) *VerboseLogger {
	return &VerboseLogger{w: w, enabled: enabled}
}

// Log writes msg with the "verbose: " prefix and a trailing newline.
func (v *VerboseLogger) Log(msg string) {
	if v == nil || !v.enabled {
		return
	}
	fmt.Fprintf(v.w, "verbose: %s\n", msg)
}

// Logf is Log with fmt formatting.
func (v *VerboseLogger) Logf(format string, args ...interface{}) {
	if v == nil || !v.enabled {
		return
	}
	fmt.Fprintf(v.w, "verbose: "+format+"\n", args...)
}
