// Package domain defines the business logic for the gamification award service.
package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrInvalidEntry indicates a performance entry missing the identifiers
	// needed to process it. Non-retryable.
	ErrInvalidEntry = errors.New("invalid performance entry")
)

// PerformanceEntry is the immutable input recorded by the workout-logging
// pipeline. It is never mutated or deleted here.
type PerformanceEntry struct {
	ID         string
	UserID     string
	ExerciseID string
	SessionID  string
	WeightKg   float64
	Reps       int
	RecordedAt time.Time
}

// Validate reports whether the entry can be processed at all. Value sanity is
// not checked here: a zero or negative weight/rep entry is simply never a
// record, it does not fail the call.
func (e PerformanceEntry) Validate() error {
	// An empty ID is rejected outright: a committed record carries its
	// entry ID, and a blank one would read back as the never-set marker.
	if strings.TrimSpace(e.ID) == "" {
		return ErrInvalidEntry
	}
	if strings.TrimSpace(e.UserID) == "" {
		return ErrInvalidEntry
	}
	if strings.TrimSpace(e.ExerciseID) == "" {
		return ErrInvalidEntry
	}
	if e.RecordedAt.IsZero() {
		return ErrInvalidEntry
	}
	return nil
}
