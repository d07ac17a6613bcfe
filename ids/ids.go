// Package ids provides identifier generation and time sourcing for the
// storage and span lifecycle packages.
package ids

import (
	"time"

	"github.com/google/uuid"
)

// New returns a new random v4 identifier.
func New() uuid.UUID {
	return uuid.New()
}

// Parse validates and parses a string identifier.
func Parse(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

// Clock abstracts the current time so span ordering invariants
// (parent.started_at <= child.started_at) can be tested deterministically.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by time.Now.
type SystemClock struct{}

// Now returns the current wall-clock time in UTC.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// Fixed is a Clock that always returns the same instant, advancing only when
// told to. Used by tests that need deterministic ordering.
type Fixed struct {
	t time.Time
}

// NewFixed returns a Fixed clock starting at t.
func NewFixed(t time.Time) *Fixed {
	return &Fixed{t: t.UTC()}
}

// Now returns the clock's current instant.
func (f *Fixed) Now() time.Time {
	return f.t
}

// Advance moves the clock forward by d and returns the new instant.
func (f *Fixed) Advance(d time.Duration) time.Time {
	f.t = f.t.Add(d)
	return f.t
}
