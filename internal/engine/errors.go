package engine

import (
	"errors"
	"fmt"
)

// Kind classifies the ways a run can be refused before any output is
// serialized. All of them are terminal.
type Kind int

const (
	KindUsage Kind = iota + 1
	KindSamePath
	KindSameFile
	KindStat
	KindOpen
	KindLock
	KindSeek
	KindDegenerateInput
	KindAllocation
	KindShortRead
)

var kindNames = map[Kind]string{
	KindUsage:           "usage",
	KindSamePath:        "same_path",
	KindSameFile:        "same_file",
	KindStat:            "stat",
	KindOpen:            "open",
	KindLock:            "lock",
	KindSeek:            "seek",
	KindDegenerateInput: "degenerate_input",
	KindAllocation:      "allocation",
	KindShortRead:       "short_read",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MinInputBytes is the smallest input a run accepts.
const MinInputBytes = 2

// Error is a refused run. Path names the file involved, Got and Want carry
// byte counts where the kind has them, and Err is the underlying OS error.
type Error struct {
	Kind Kind
	Path string
	Got  int64
	Want int64
	Err  error
}

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case KindUsage:
		msg = "missing parameters: duplines <input> <output>"
	case KindSamePath:
		msg = fmt.Sprintf("no action: input and output files have the same name (%s)", e.Path)
	case KindSameFile:
		msg = fmt.Sprintf("no action: input and output are the same file (%s)", e.Path)
	case KindStat:
		msg = fmt.Sprintf("cannot stat %s", e.Path)
	case KindOpen:
		msg = fmt.Sprintf("cannot open %s", e.Path)
	case KindLock:
		msg = fmt.Sprintf("could not acquire lock on %s - another process may be using it", e.Path)
	case KindSeek:
		msg = fmt.Sprintf("failed to seek in input file (%s)", e.Path)
	case KindDegenerateInput:
		msg = fmt.Sprintf("input file has less than %d bytes (%s)", e.Want, e.Path)
	case KindAllocation:
		msg = fmt.Sprintf("input file of %d bytes exceeds the %d byte limit (%s)", e.Got, e.Want, e.Path)
	case KindShortRead:
		msg = fmt.Sprintf("failed to read file data: got %d bytes != %d expected (%s)", e.Got, e.Want, e.Path)
	default:
		msg = e.Kind.String()
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so callers can test against the
// Err* sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrUsage           = &Error{Kind: KindUsage}
	ErrSamePath        = &Error{Kind: KindSamePath}
	ErrSameFile        = &Error{Kind: KindSameFile}
	ErrStat            = &Error{Kind: KindStat}
	ErrOpen            = &Error{Kind: KindOpen}
	ErrLock            = &Error{Kind: KindLock}
	ErrSeek            = &Error{Kind: KindSeek}
	ErrDegenerateInput = &Error{Kind: KindDegenerateInput}
	ErrAllocation      = &Error{Kind: KindAllocation}
	ErrShortRead       = &Error{Kind: KindShortRead}
)

// KindOf returns the Kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
