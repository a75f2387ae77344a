// Package runlog records one entry per sync run: who ran, in which
// direction, and how many records were pushed, created, merged, or failed.
// The log is the only surface per-row failures propagate to.
package runlog

import (
	"context"
	"time"
	"unicode/utf8"
)

// Direction identifies which phase(s) a run executed.
type Direction string

// Run directions.
const (
	DirectionPush Direction = "push"
	DirectionPull Direction = "pull"
	DirectionSync Direction = "sync"
)

// String returns the string representation of a direction.
func (d Direction) String() string { return string(d) }

// Entry is one run-log row. Timestamps are recorded in UTC and rendered
// ISO-8601 by sinks.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Account   string    `json:"account"`
	Direction Direction `json:"direction"`
	Pushed    int       `json:"pushed"`
	New       int       `json:"new"`
	Merged    int       `json:"merged"`
	Failed    int       `json:"failed"`
	Errors    string    `json:"errors,omitempty"`
}

// Sink persists run-log entries.
type Sink interface {
	// Append writes one entry.
	Append(ctx context.Context, entry Entry) error

	// Trim drops the oldest entries beyond keep. keep <= 0 disables
	// trimming.
	Trim(ctx context.Context, keep int) error
}

// Truncate caps an error summary at max bytes, cutting back to the nearest
// rune boundary so a multi-byte character is never split. max <= 0 leaves
// the string untouched.
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
