// Package schedule contains the court allocator, the reconciler that keeps
// materialized slots consistent with an activity's recurrence, and the
// registration ledger.  All storage access goes through the small
// interfaces in store.go so the logic can be exercised without a database.
package schedule

import (
	"errors"
	"fmt"
)

// ErrCourtsExhausted is returned when fewer free courts exist than a
// slot's capacity requires.  Allocation is all-or-nothing: the slot is
// never left with a partial court set.
var ErrCourtsExhausted = errors.New("not enough free courts")

// ErrSlotNotFound is returned by stores when no slot matches the
// (activity, start) identity key.
var ErrSlotNotFound = errors.New("slot not found")

// ErrSlotExists is returned when inserting a slot that already exists for
// its (activity, start) key.
var ErrSlotExists = errors.New("slot already exists")

// Registration ledger errors.  All of these are expected, user-facing and
// fully recoverable.
var (
	ErrAlreadyRegistered  = errors.New("already registered for this slot")
	ErrNotRegistered      = errors.New("not registered for this slot")
	ErrGenderMismatch     = errors.New("event gender restriction excludes this member")
	ErrRegistrationClosed = errors.New("registration window for this slot has closed")
)

// ErrIdentityResolution indicates a data-integrity anomaly: a slot whose
// activity or governing event cannot be resolved.  It is never swallowed;
// callers log it and surface a generic failure.
var ErrIdentityResolution = errors.New("slot has no resolvable activity or event")

// ValidationError reports a rejected activity field.  Validation runs
// before any mutation, so a validation failure leaves storage untouched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
