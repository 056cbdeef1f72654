package model

import "errors"

var (
	// ErrNotFound is returned when a record id does not exist or belongs to
	// a different owner. The two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyPending is returned when starting a pending for a
	// (owner, timeline, name) key that already has one open.
	ErrAlreadyPending = errors.New("pending already open")

	// ErrNoPending is returned when finishing a key with no open pending.
	ErrNoPending = errors.New("no pending open")

	// ErrInvalidRange is returned when a dash write supplies end < start.
	ErrInvalidRange = errors.New("end precedes start")

	// ErrStoreUnavailable indicates the persistence layer could not be
	// reached. It is always surfaced, never retried inside the core.
	ErrStoreUnavailable = errors.New("store unavailable")

	ErrValidation = errors.New("validation error")
)
