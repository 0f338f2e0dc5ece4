// Package engine runs one deduplication pass from an input file to an output
// file: it refuses unsafe or degenerate runs, reads the whole input into
// memory, indexes and marks its lines, and serializes the survivors.
package engine

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"fortio.org/safecast"

	"github.com/leeovery/duplines/internal/dedup"
	"github.com/leeovery/duplines/internal/lines"
	"github.com/leeovery/duplines/internal/output"
)

// DefaultMaxInputBytes caps the size of the in-memory input buffer.
const DefaultMaxInputBytes int64 = 1 << 30

// Options configures a run.
type Options struct {
	Input    string
	Output   string
	Strategy dedup.Strategy
	Trim     bool
	// MaxInputBytes defaults to DefaultMaxInputBytes when zero.
	MaxInputBytes int64
	// LockTimeout defaults to DefaultLockTimeout when zero.
	LockTimeout time.Duration
	Logger      *VerboseLogger
}

// Report describes a completed run.
type Report struct {
	Input      string
	Output     string
	InputBytes int
	// Digest is the hex sha256 of the input content.
	Digest   string
	Lines    int
	Trimming bool
	Trimmed  int
	Strategy dedup.Strategy
	Marker   dedup.Stats
	Written  output.Summary
	// WriteErr is set when serialization stopped early. The output holds
	// everything written before the failure.
	WriteErr error
}

// Run deduplicates opts.Input into opts.Output. Any failure before
// serialization starts is returned as an *Error and leaves no content in the
// output. A failure during serialization is not an error of Run; it is
// recorded in Report.WriteErr.
func Run(ctx context.Context, opts Options) (*Report, error) {
	if opts.Input == "" || opts.Output == "" {
		return nil, &Error{Kind: KindUsage}
	}
	if opts.MaxInputBytes == 0 {
		opts.MaxInputBytes = DefaultMaxInputBytes
	}
	if opts.LockTimeout == 0 {
		opts.LockTimeout = DefaultLockTimeout
	}
	if opts.Strategy == "" {
		opts.Strategy = dedup.Grouped
	}
	log := opts.Logger

	log.Logf("input: %s", opts.Input)
	log.Logf("output: %s", opts.Output)

	if filepath.Clean(opts.Input) == filepath.Clean(opts.Output) {
		return nil, &Error{Kind: KindSamePath, Path: opts.Input}
	}
	same, err := sameFile(opts.Input, opts.Output)
	if err != nil {
		return nil, err
	}
	if same {
		return nil, &Error{Kind: KindSameFile, Path: opts.Input}
	}

	in, err := os.Open(opts.Input)
	if err != nil {
		return nil, &Error{Kind: KindOpen, Path: opts.Input, Err: err}
	}
	defer in.Close()

	if advisoryLocks {
		unlockIn, err := acquireShared(ctx, opts.Input, opts.LockTimeout)
		if err != nil {
			return nil, err
		}
		log.Log("lock acquired (shared) on input")
		defer func() {
			unlockIn()
			log.Log("lock released on input")
		}()
	}

	out, err := os.OpenFile(opts.Output, os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return nil, &Error{Kind: KindOpen, Path: opts.Output, Err: err}
	}
	defer out.Close()

	info, err := out.Stat()
	if err != nil {
		return nil, &Error{Kind: KindStat, Path: opts.Output, Err: err}
	}
	// Devices and pipes such as /dev/null can be neither locked nor truncated.
	if info.Mode().IsRegular() {
		if advisoryLocks {
			unlockOut, err := acquireExclusive(ctx, opts.Output, opts.LockTimeout)
			if err != nil {
				return nil, err
			}
			log.Log("lock acquired (exclusive) on output")
			defer func() {
				unlockOut()
				log.Log("lock released on output")
			}()
		}

		if err := out.Truncate(0); err != nil {
			return nil, &Error{Kind: KindOpen, Path: opts.Output, Err: err}
		}
	}

	buf, err := readInput(in, opts.Input, opts.MaxInputBytes)
	if err != nil {
		return nil, err
	}
	log.Logf("size: input: %d bytes", len(buf))

	digest := sha256.Sum256(buf)
	report := &Report{
		Input:      opts.Input,
		Output:     opts.Output,
		InputBytes: len(buf),
		Digest:     fmt.Sprintf("%x", digest),
		Strategy:   opts.Strategy,
	}

	indexed := lines.Index(buf, lines.WithTrim(opts.Trim))
	report.Lines = len(indexed.Records)
	report.Trimming = indexed.Trimming
	report.Trimmed = indexed.Trimmed
	if indexed.Trimming {
		log.Logf("lines: %d | trimmed: %d", report.Lines, report.Trimmed)
	} else {
		log.Logf("lines: %d", report.Lines)
	}

	marked := dedup.Mark(buf, indexed.Records, opts.Strategy)
	report.Marker = marked.Stats
	log.Logf("strategy: %s | checks: %d | skipped: %d | dups: %d",
		opts.Strategy, marked.Stats.Comparisons, marked.Stats.Rejections, marked.Stats.Duplicates)

	report.Written, report.WriteErr = output.Write(out, buf, indexed.Records, marked.Mask)
	if err := out.Close(); err != nil && report.WriteErr == nil {
		report.WriteErr = fmt.Errorf("closing %s: %w", opts.Output, err)
	}
	if report.WriteErr != nil {
		log.Logf("write aborted: %v", report.WriteErr)
	} else {
		log.Logf("written: %d lines, %d bytes, %d blank lines collapsed",
			report.Written.Written, report.Written.Bytes, report.Written.Collapsed)
	}

	return report, nil
}

// readInput reads the whole of f into memory. Files that report fewer than
// MinInputBytes through seeking are measured by reading them, since special
// files report a size of zero.
func readInput(f *os.File, path string, maxBytes int64) ([]byte, error) {
	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, &Error{Kind: KindSeek, Path: path, Err: err}
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, &Error{Kind: KindSeek, Path: path, Err: err}
	}

	if size < MinInputBytes {
		data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
		if err != nil {
			return nil, &Error{Kind: KindShortRead, Path: path, Got: int64(len(data)), Want: size, Err: err}
		}
		return checkSize(data, path, maxBytes)
	}

	if size > maxBytes {
		return nil, &Error{Kind: KindAllocation, Path: path, Got: size, Want: maxBytes}
	}
	n, err := safecast.Conv[int](size)
	if err != nil {
		return nil, &Error{Kind: KindAllocation, Path: path, Got: size, Want: maxBytes, Err: err}
	}

	buf := make([]byte, n)
	read, err := io.ReadFull(f, buf)
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			err = nil
		}
		return nil, &Error{Kind: KindShortRead, Path: path, Got: int64(read), Want: size, Err: err}
	}
	return buf, nil
}

func checkSize(data []byte, path string, maxBytes int64) ([]byte, error) {
	n := int64(len(data))
	if n < MinInputBytes {
		return nil, &Error{Kind: KindDegenerateInput, Path: path, Got: n, Want: MinInputBytes}
	}
	if n > maxBytes {
		return nil, &Error{Kind: KindAllocation, Path: path, Got: n, Want: maxBytes}
	}
	return data, nil
}
