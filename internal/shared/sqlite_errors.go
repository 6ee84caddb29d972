// Package shared provides common utilities used across the codebase.
//
//nolint:revive // "shared" is an intentional package name for cross-cutting helpers.
package shared

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Primary SQLite result codes for lock contention.
const (
	sqliteBusy   = 5
	sqliteLocked = 6
)

type codedError interface {
	Code() int
}

func sqliteCode(err error) (int, bool) {
	var ce codedError
	if errors.As(err, &ce) {
		// Extended result codes keep the primary code in the low byte.
		return ce.Code() & 0xff, true
	}
	return 0, false
}

// IsSQLiteBusyError reports whether err is SQLITE_BUSY.
func IsSQLiteBusyError(err error) bool {
	if err == nil {
		return false
	}
	if code, ok := sqliteCode(err); ok && code == sqliteBusy {
		return true
	}
	return strings.Contains(err.Error(), "SQLITE_BUSY")
}

// IsSQLiteLockedError reports whether err is a "database is locked" error.
func IsSQLiteLockedError(err error) bool {
	if err == nil {
		return false
	}
	if code, ok := sqliteCode(err); ok && code == sqliteLocked {
		return true
	}
	return strings.Contains(err.Error(), "database is locked")
}

// IsSQLiteConflictError reports whether err is either kind of SQLite
// lock contention. These usually succeed on retry.
func IsSQLiteConflictError(err error) bool {
	return IsSQLiteBusyError(err) || IsSQLiteLockedError(err)
}

// RetryOnConflict runs fn up to attempts times, sleeping backoff (doubled each
// time) between tries, as long as fn keeps failing with a SQLite conflict.
func RetryOnConflict(ctx context.Context, attempts int, backoff time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil || !IsSQLiteConflictError(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return err
}
