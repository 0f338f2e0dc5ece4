//go:build !unix

package engine

import (
	"errors"
	"io/fs"
	"os"
)

// Windows byte-range locks are mandatory and would block the run's own
// writes through a second handle.
const advisoryLocks = false

// sameFile reports whether input and output name the same underlying file.
// A missing output is not an error.
func sameFile(input, output string) (bool, error) {
	in, err := os.Stat(input)
	if err != nil {
		return false, &Error{Kind: KindStat, Path: input, Err: err}
	}

	out, err := os.Stat(output)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, &Error{Kind: KindStat, Path: output, Err: err}
	}

	return os.SameFile(in, out), nil
}
