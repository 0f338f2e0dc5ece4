// Package lines splits a raw byte buffer into line records carrying a byte
// range and a cheap fingerprint of the line's content.
package lines

import "bytes"

const (
	// Terminator is the only byte treated as a line end. Carriage returns are
	// line content.
	Terminator = '\n'

	adlerMod = 65521
)

// Record describes one line of the buffer it was indexed from. Records never
// copy line content; Bytes slices it out of the original buffer.
type Record struct {
	Index       int
	Offset      int
	Length      int
	Fingerprint uint32
}

// Bytes returns the line content from buf, without its terminator.
func (r Record) Bytes(buf []byte) []byte {
	return buf[r.Offset : r.Offset+r.Length]
}

// Result is the outcome of indexing a buffer.
type Result struct {
	Records []Record
	// Trimming reports whether the trimming scan ran.
	Trimming bool
	// Trimmed counts the trailing non-blank bytes walked by the trimming scan.
	Trimmed int
}

// Option configures Index.
type Option func(*indexer)

// WithTrim enables the trimming scan. The scan only counts bytes; recorded
// lengths and fingerprints are unaffected.
func WithTrim(enabled bool) Option {
	return func(ix *indexer) {
		ix.trim = enabled
	}
}

type indexer struct {
	trim bool
}

// Fingerprint computes the Adler-32 style checksum of b: two accumulators
// modulo 65521 packed into the high and low halves of the result.
func Fingerprint(b []byte) uint32 {
	s1, s2 := uint32(1), uint32(0)
	for _, c := range b {
		s1 = (s1 + uint32(c)) % adlerMod
		s2 = (s2 + s1) % adlerMod
	}
	return s2<<16 | s1
}

// Index builds one Record per line of buf, in order. A trailing run of bytes
// without a terminator becomes the final record. Empty lines get fingerprint 0.
func Index(buf []byte, opts ...Option) Result {
	ix := &indexer{}
	for _, opt := range opts {
		opt(ix)
	}

	n := bytes.Count(buf, []byte{Terminator})
	unterminated := len(buf) > 0 && buf[len(buf)-1] != Terminator
	if unterminated {
		n++
	}

	res := Result{
		Records:  make([]Record, 0, n),
		Trimming: ix.trim,
	}

	start := 0
	for pos, c := range buf {
		if c != Terminator {
			continue
		}
		rec := newRecord(buf, len(res.Records), start, pos-start)
		if ix.trim {
			res.Trimmed += trailingRun(rec.Bytes(buf))
		}
		res.Records = append(res.Records, rec)
		start = pos + 1
	}

	if unterminated {
		res.Records = append(res.Records, newRecord(buf, len(res.Records), start, len(buf)-start))
	}

	return res
}

func newRecord(buf []byte, index, offset, length int) Record {
	rec := Record{Index: index, Offset: offset, Length: length}
	if length > 0 {
		rec.Fingerprint = Fingerprint(buf[offset : offset+length])
	}
	return rec
}

// trailingRun walks line backward from its last byte until it meets a space
// or tab, and returns how many bytes it stepped over. The first byte of the
// line is never stepped over.
func trailingRun(line []byte) int {
	count := 0
	for i := len(line) - 1; i > 0; i-- {
		if line[i] == ' ' || line[i] == '\t' {
			break
		}
		count++
	}
	return count
}
