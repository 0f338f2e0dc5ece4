//go:build unix

package cli

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
)

func TestDedupCommandDevices(t *testing.T) {
	t.Run("it exits 0 and prints Abort! when the output fills up", func(t *testing.T) {
		if _, err := os.Stat("/dev/full"); err != nil {
			t.Skip("/dev/full not available")
		}
		dir, input, _ := setupFiles(t, "a\nb\na\n")

		code, stdout, stderr := runApp(t, dir, "--json", input, "/dev/full")
		if code != 0 {
			t.Fatalf("expected exit code 0, got %d; stderr: %s", code, stderr)
		}
		if !strings.Contains(stderr, "Error: failed to write line 0: bytes written/expected: 0/1") {
			t.Errorf("expected short write error, got %q", stderr)
		}
		if !strings.HasSuffix(stderr, "Abort!\n") {
			t.Errorf("expected Abort!, got %q", stderr)
		}

		var result map[string]interface{}
		if err := json.Unmarshal([]byte(stdout), &result); err != nil {
			t.Fatalf("failed to parse JSON report: %v\n%s", err, stdout)
		}
		if !strings.HasPrefix(result["error"].(string), "failed to write line 0") {
			t.Errorf("error = %v", result["error"])
		}
	})

	t.Run("it accepts /dev/null as the output", func(t *testing.T) {
		dir, input, _ := setupFiles(t, "a\na\n")

		code, stdout, stderr := runApp(t, dir, "-q", input, os.DevNull)
		if code != 0 || stdout != "" || stderr != "" {
			t.Errorf("code = %d, stdout = %q, stderr = %q", code, stdout, stderr)
		}
	})
}
