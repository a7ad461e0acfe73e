package tech

import (
	"errors"
	"time"
)

// TimestampLayout matches the ISO-8601 form the browser UI wrote
// (millisecond precision, UTC, trailing Z).
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Clock supplies wall-clock time for ids, createdAt and deadline checks.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real time.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// MaxID is the largest id a record may carry: 2^53-1, the largest integer
// a JavaScript number holds exactly.
const MaxID ID = 1<<53 - 1

// ErrIDsExhausted is returned by NextID when last is already MaxID.
var ErrIDsExhausted = errors.New("no id left above the largest existing id")

// NextID derives a fresh id from the clock: the current Unix milliseconds,
// bumped past last so ids stay strictly increasing even within one
// millisecond or after a clock step backwards. The result never exceeds
// MaxID.
func NextID(now time.Time, last ID) (ID, error) {
	if last >= MaxID {
		return 0, ErrIDsExhausted
	}
	id := ID(now.UnixMilli())
	if id <= last || id > MaxID {
		id = last + 1
	}
	return id, nil
}
