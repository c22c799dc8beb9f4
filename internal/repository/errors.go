// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrShiftAlreadyActive indicates that opening a second
// concurrent shift was refused, while ErrShiftNotActive signals that
// a close was attempted against a shift that has already completed.
package repository

import "errors"

// ErrShiftNotFound is returned when a shift ID does not exist.
// Handlers should translate this into an HTTP 404 response.
var ErrShiftNotFound = errors.New("shift not found")

// ErrShiftAlreadyActive is returned when opening a shift while
// another shift is still active. At most one shift may be active
// system-wide; the caller must close the running shift first or use
// the handover operation. Handlers should translate this into an
// HTTP 409 response.
var ErrShiftAlreadyActive = errors.New("a shift is already active")

// ErrShiftNotActive is returned when closing or mutating a shift
// that is not currently active. A completed shift never transitions
// back. Handlers should translate this into an HTTP 409 response.
var ErrShiftNotActive = errors.New("shift is not active")

// ErrNoActiveShift is returned when an operation requires an active
// shift and none is open. Handlers should translate this into an
// HTTP 404 response.
var ErrNoActiveShift = errors.New("no active shift")

// ErrEntryNotFound is returned when a parking entry ID does not
// exist or the entry has been archived. Handlers should translate
// this into an HTTP 404 response.
var ErrEntryNotFound = errors.New("parking entry not found")

// ErrEntryAlreadyExited is returned when recording an exit for an
// entry whose fee has already been written. Fees are set exactly
// once at exit and are only changed by an explicit manager
// correction. Handlers should translate this into an HTTP 409
// response.
var ErrEntryAlreadyExited = errors.New("parking entry already exited")

// ErrForbidden is returned when the caller attempts an operation
// reserved for another role. Handlers should translate this into an
// HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an operation cannot proceed because
// of conflicting state that does not fit a more specific sentinel.
// Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")
