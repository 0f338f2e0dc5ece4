//go:build unix

package engine

import (
	"errors"

	"golang.org/x/sys/unix"
)

// advisoryLocks is set where flock locks do not block the run's own writes.
const advisoryLocks = true

// sameFile reports whether input and output resolve to the same device and
// inode. A missing output is not an error.
func sameFile(input, output string) (bool, error) {
	var in unix.Stat_t
	if err := unix.Stat(input, &in); err != nil {
		return false, &Error{Kind: KindStat, Path: input, Err: err}
	}

	var out unix.Stat_t
	if err := unix.Stat(output, &out); err != nil {
		if errors.Is(err, unix.ENOENT) {
			return false, nil
		}
		return false, &Error{Kind: KindStat, Path: output, Err: err}
	}

	return in.Dev == out.Dev && in.Ino == out.Ino, nil
}
