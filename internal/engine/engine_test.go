package engine

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leeovery/duplines/internal/dedup"
)

// writeInput creates an input file with content in a fresh temp dir and
// returns its path together with an output path in the same dir.
func writeInput(t *testing.T, content string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	input := filepath.Join(dir, "input.txt")
	if err := os.WriteFile(input, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write input: %v", err)
	}
	return input, filepath.Join(dir, "output.txt")
}

func readOutput(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	return string(data)
}

func TestRun(t *testing.T) {
	examples := []struct {
		name string
		in   string
		want string
	}{
		{"it removes a repeated line", "a\nb\na\n", "a\nb\n"},
		{"it collapses consecutive blank lines", "x\n\n\ny\n", "x\n\ny\n"},
		{"it terminates a single unterminated line", "foo", "foo\n"},
		{"it leaves carriage returns alone", "a\r\nb\r\na\r\n", "a\r\nb\r\n"},
	}
	for _, ex := range examples {
		t.Run(ex.name, func(t *testing.T) {
			input, output := writeInput(t, ex.in)

			report, err := Run(context.Background(), Options{Input: input, Output: output})
			if err != nil {
				t.Fatalf("Run returned error: %v", err)
			}
			if report.WriteErr != nil {
				t.Fatalf("unexpected write error: %v", report.WriteErr)
			}
			if got := readOutput(t, output); got != ex.want {
				t.Errorf("output = %q, want %q", got, ex.want)
			}
		})
	}

	t.Run("it fills in the report", func(t *testing.T) {
		input, output := writeInput(t, "a\nb\na\n\n\nc")

		report, err := Run(context.Background(), Options{Input: input, Output: output, Strategy: dedup.Quadratic, Trim: true})
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}

		if report.InputBytes != 9 {
			t.Errorf("InputBytes = %d, want 9", report.InputBytes)
		}
		if report.Lines != 6 {
			t.Errorf("Lines = %d, want 6", report.Lines)
		}
		if !report.Trimming {
			t.Error("expected Trimming to be reported")
		}
		if report.Strategy != dedup.Quadratic {
			t.Errorf("Strategy = %q, want %q", report.Strategy, dedup.Quadratic)
		}
		if report.Marker.Duplicates != 1 {
			t.Errorf("Duplicates = %d, want 1", report.Marker.Duplicates)
		}
		if report.Written.Written != 4 || report.Written.Collapsed != 1 {
			t.Errorf("Written = %+v, want 4 written 1 collapsed", report.Written)
		}
		if len(report.Digest) != 64 {
			t.Errorf("Digest = %q, want 64 hex chars", report.Digest)
		}
	})

	t.Run("it replaces existing output content", func(t *testing.T) {
		input, output := writeInput(t, "one\none\n")
		if err := os.WriteFile(output, []byte(strings.Repeat("stale\n", 100)), 0644); err != nil {
			t.Fatalf("failed to seed output: %v", err)
		}

		if _, err := Run(context.Background(), Options{Input: input, Output: output}); err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
		if got := readOutput(t, output); got != "one\n" {
			t.Errorf("output = %q, want %q", got, "one\n")
		}
	})

	t.Run("it is idempotent on its own output", func(t *testing.T) {
		input, first := writeInput(t, "b\na\n\n\nb\n\nc\na\n\n")
		second := filepath.Join(filepath.Dir(input), "second.txt")

		if _, err := Run(context.Background(), Options{Input: input, Output: first}); err != nil {
			t.Fatalf("first run: %v", err)
		}
		if _, err := Run(context.Background(), Options{Input: first, Output: second}); err != nil {
			t.Fatalf("second run: %v", err)
		}
		if a, b := readOutput(t, first), readOutput(t, second); a != b {
			t.Errorf("second pass changed output: %q -> %q", a, b)
		}
	})

	t.Run("it logs progress when verbose", func(t *testing.T) {
		input, output := writeInput(t, "a\nb\na\n")
		var stderr bytes.Buffer

		_, err := Run(context.Background(), Options{
			Input:  input,
			Output: output,
			Logger: NewVerboseLogger(&stderr, true),
		})
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}

		for _, phrase := range []string{
			"verbose: input: " + input,
			"verbose: output: " + output,
			"verbose: size: input: 6 bytes",
			"verbose: lines: 3",
			"verbose: strategy: grouped | checks: 1 | skipped: 2 | dups: 1",
			"verbose: written: 2 lines, 4 bytes, 0 blank lines collapsed",
		} {
			if !strings.Contains(stderr.String(), phrase) {
				t.Errorf("expected verbose output to contain %q, got:\n%s", phrase, stderr.String())
			}
		}
	})
}

func TestRunRefusals(t *testing.T) {
	t.Run("it rejects missing paths as a usage error", func(t *testing.T) {
		_, err := Run(context.Background(), Options{Input: "in.txt"})
		if !errors.Is(err, ErrUsage) {
			t.Errorf("expected ErrUsage, got %v", err)
		}
	})

	t.Run("it rejects identical paths", func(t *testing.T) {
		input, _ := writeInput(t, "a\na\n")
		_, err := Run(context.Background(), Options{Input: input, Output: input})
		if !errors.Is(err, ErrSamePath) {
			t.Errorf("expected ErrSamePath, got %v", err)
		}
	})

	t.Run("it rejects paths that differ only in spelling", func(t *testing.T) {
		input, _ := writeInput(t, "a\na\n")
		alias := filepath.Join(filepath.Dir(input), ".", "input.txt")
		_, err := Run(context.Background(), Options{Input: input, Output: alias})
		if !errors.Is(err, ErrSamePath) {
			t.Errorf("expected ErrSamePath, got %v", err)
		}
		if got := readOutput(t, input); got != "a\na\n" {
			t.Errorf("input modified: %q", got)
		}
	})

	t.Run("it rejects a missing input", func(t *testing.T) {
		dir := t.TempDir()
		_, err := Run(context.Background(), Options{
			Input:  filepath.Join(dir, "absent.txt"),
			Output: filepath.Join(dir, "out.txt"),
		})
		if !errors.Is(err, ErrStat) {
			t.Errorf("expected ErrStat, got %v", err)
		}
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected wrapped not-exist error, got %v", err)
		}
	})

	t.Run("it rejects an output in a missing directory", func(t *testing.T) {
		input, _ := writeInput(t, "a\na\n")
		output := filepath.Join(t.TempDir(), "missing", "out.txt")
		_, err := Run(context.Background(), Options{Input: input, Output: output})
		if !errors.Is(err, ErrOpen) && !errors.Is(err, ErrStat) {
			t.Errorf("expected ErrOpen or ErrStat, got %v", err)
		}
	})

	for _, content := range []string{"", "x"} {
		t.Run("it rejects a degenerate input of "+string(rune('0'+len(content)))+" bytes", func(t *testing.T) {
			input, output := writeInput(t, content)

			_, err := Run(context.Background(), Options{Input: input, Output: output})
			if !errors.Is(err, ErrDegenerateInput) {
				t.Fatalf("expected ErrDegenerateInput, got %v", err)
			}
			var e *Error
			if !errors.As(err, &e) || e.Got != int64(len(content)) || e.Want != MinInputBytes {
				t.Errorf("error = %+v, want got %d want %d", e, len(content), MinInputBytes)
			}
			if got := readOutput(t, output); got != "" {
				t.Errorf("output = %q, want empty", got)
			}
		})
	}

	t.Run("it accepts the smallest valid input", func(t *testing.T) {
		input, output := writeInput(t, "\n\n")
		if _, err := Run(context.Background(), Options{Input: input, Output: output}); err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
		if got := readOutput(t, output); got != "" {
			t.Errorf("output = %q, want empty", got)
		}
	})

	t.Run("it rejects input larger than the limit", func(t *testing.T) {
		input, output := writeInput(t, "0123456789\n")

		_, err := Run(context.Background(), Options{Input: input, Output: output, MaxInputBytes: 4})
		if !errors.Is(err, ErrAllocation) {
			t.Fatalf("expected ErrAllocation, got %v", err)
		}
		if KindOf(err) != KindAllocation {
			t.Errorf("KindOf = %v, want %v", KindOf(err), KindAllocation)
		}
	})
}

func TestErrorMessages(t *testing.T) {
	t.Run("it formats byte counts for short reads", func(t *testing.T) {
		err := &Error{Kind: KindShortRead, Path: "in.txt", Got: 3, Want: 10}
		want := "failed to read file data: got 3 bytes != 10 expected (in.txt)"
		if err.Error() != want {
			t.Errorf("Error() = %q, want %q", err.Error(), want)
		}
	})

	t.Run("it appends the underlying error", func(t *testing.T) {
		err := &Error{Kind: KindOpen, Path: "out.txt", Err: os.ErrPermission}
		want := "cannot open out.txt: permission denied"
		if err.Error() != want {
			t.Errorf("Error() = %q, want %q", err.Error(), want)
		}
		if !errors.Is(err, os.ErrPermission) {
			t.Error("expected errors.Is to reach the wrapped error")
		}
	})

	t.Run("it names kinds", func(t *testing.T) {
		if KindDegenerateInput.String() != "degenerate_input" {
			t.Errorf("String() = %q", KindDegenerateInput.String())
		}
		if Kind(99).String() != "kind(99)" {
			t.Errorf("String() = %q", Kind(99).String())
		}
	})

	t.Run("it reports no kind for foreign errors", func(t *testing.T) {
		if KindOf(errors.New("boom")) != 0 {
			t.Error("expected zero kind")
		}
	})
}
