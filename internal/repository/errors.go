// Package repository implements raw-SQL persistence for the club's
// members, events, courts, activities, slots and registrations.  This
// file defines sentinel errors shared across repositories so handlers can
// map failure modes to HTTP responses without string matching.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they are not allowed to touch.  Handlers translate this into
// an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an operation cannot proceed because of
// conflicting state.  Handlers translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// Not-found sentinels per entity.  Repositories return these instead of
// leaking sql.ErrNoRows to handlers.
var (
	ErrActivityNotFound = errors.New("activity not found")
	ErrEventNotFound    = errors.New("event not found")
	ErrMemberNotFound   = errors.New("member not found")
)

// ErrEmailExists is returned when registering a member with an email that
// is already taken.
var ErrEmailExists = errors.New("email already exists")
