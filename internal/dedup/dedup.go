// Package dedup decides which line records are duplicates of an earlier line.
// The first occurrence of any content is always the one kept, and only an
// exact byte comparison can mark a line as a duplicate; fingerprints merely
// decide which pairs are worth comparing.
package dedup

import (
	"bytes"
	"fmt"

	"github.com/leeovery/duplines/internal/lines"
)

// Strategy selects the marking algorithm. Both strategies produce the same
// mask; they differ in cost and in the counters they report.
type Strategy string

const (
	// Grouped buckets records by fingerprint and length and compares only
	// within a bucket.
	Grouped Strategy = "grouped"
	// Quadratic compares every record against every later record.
	Quadratic Strategy = "quadratic"
)

// ParseStrategy resolves a strategy name. An empty name selects Grouped.
func ParseStrategy(name string) (Strategy, error) {
	switch Strategy(name) {
	case "", Grouped:
		return Grouped, nil
	case Quadratic:
		return Quadratic, nil
	default:
		return "", fmt.Errorf("unknown strategy %q (want %q or %q)", name, Grouped, Quadratic)
	}
}

// Mask holds the keep/skip decision for each record, indexed by
// Record.Index. Entries start as keep and can only move to skip.
type Mask struct {
	skip []bool
}

// NewMask returns a mask of n entries, all keep.
func NewMask(n int) Mask {
	return Mask{skip: make([]bool, n)}
}

// Len returns the number of entries.
func (m Mask) Len() int {
	return len(m.skip)
}

// Keep reports whether record i survives.
func (m Mask) Keep(i int) bool {
	return !m.skip[i]
}

// Skip marks record i as a duplicate. It reports false when i was already
// skipped.
func (m Mask) Skip(i int) bool {
	if m.skip[i] {
		return false
	}
	m.skip[i] = true
	return true
}

// Stats are the marker's work counters.
type Stats struct {
	// Rejections counts records or pairs dismissed without an exact comparison.
	Rejections int
	// Comparisons counts exact byte comparisons.
	Comparisons int
	// Duplicates counts records marked skip.
	Duplicates int
}

// Result is the outcome of Mark.
type Result struct {
	Mask  Mask
	Stats Stats
}

// Mark decides, in record order, which records duplicate an earlier record's
// content. Records that are empty or have fingerprint 0 are never marked and
// never used as a source.
func Mark(buf []byte, records []lines.Record, strategy Strategy) Result {
	if strategy == Quadratic {
		return markQuadratic(buf, records)
	}
	return markGrouped(buf, records)
}

func eligible(r lines.Record) bool {
	return r.Length != 0 && r.Fingerprint != 0
}

func markQuadratic(buf []byte, records []lines.Record) Result {
	res := Result{Mask: NewMask(len(records))}

	for i, first := range records {
		if !eligible(first) {
			res.Stats.Rejections++
			continue
		}
		content := first.Bytes(buf)

		for j := i + 1; j < len(records); j++ {
			second := records[j]
			if second.Length != first.Length || second.Fingerprint != first.Fingerprint || !res.Mask.Keep(j) {
				res.Stats.Rejections++
				continue
			}

			res.Stats.Comparisons++
			if bytes.Equal(content, second.Bytes(buf)) {
				res.Mask.Skip(j)
				res.Stats.Duplicates++
			}
		}
	}

	return res
}

type groupKey struct {
	fingerprint uint32
	length      int
}

func markGrouped(buf []byte, records []lines.Record) Result {
	res := Result{Mask: NewMask(len(records))}
	groups := make(map[groupKey][]int)

	for i, rec := range records {
		if !eligible(rec) {
			res.Stats.Rejections++
			continue
		}

		key := groupKey{fingerprint: rec.Fingerprint, length: rec.Length}
		members := groups[key]
		if len(members) == 0 {
			res.Stats.Rejections++
			groups[key] = append(members, i)
			continue
		}

		content := rec.Bytes(buf)
		duplicate := false
		for _, m := range members {
			res.Stats.Comparisons++
			if bytes.Equal(content, records[m].Bytes(buf)) {
				duplicate = true
				break
			}
		}

		if duplicate {
			res.Mask.Skip(i)
			res.Stats.Duplicates++
			continue
		}
		// Distinct content sharing a fingerprint and length.
		groups[key] = append(members, i)
	}

	return res
}
