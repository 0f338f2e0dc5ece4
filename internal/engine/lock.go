package engine

import (
	"context"
	"time"

	"github.com/gofrs/flock"
)

const (
	// DefaultLockTimeout bounds how long a run waits for another process to
	// release the input or output file.
	DefaultLockTimeout = 5 * time.Second

	lockRetryDelay = 10 * time.Millisecond
)

// acquireShared takes a shared lock on path, retrying until timeout. It
// returns an unlock function that must be deferred by the caller.
func acquireShared(ctx context.Context, path string, timeout time.Duration) (unlock func(), err error) {
	fl := flock.New(path)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	locked, err := fl.TryRLockContext(ctx, lockRetryDelay)
	if !locked || err != nil {
		return nil, &Error{Kind: KindLock, Path: path, Err: err}
	}

	return func() {
		_ = fl.Unlock()
	}, nil
}

// acquireExclusive takes an exclusive lock on path, retrying until timeout.
// It returns an unlock function that must be deferred by the caller.
func acquireExclusive(ctx context.Context, path string, timeout time.Duration) (unlock func(), err error) {
	fl := flock.New(path)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	locked, err := fl.TryLockContext(ctx, lockRetryDelay)
	if !locked || err != nil {
		return nil, &Error{Kind: KindLock, Path: path, Err: err}
	}

	return func() {
		_ = fl.Unlock()
	}, nil
}
