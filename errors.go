package stelace

import "errors"

var (
	// ErrInvalidCursor reports a pagination token that is malformed or
	// does not decode to a value for every key of the sort key spec.
	// Surfaced to callers as a client-input error; never retried.
	ErrInvalidCursor = errors.New("invalid pagination cursor")

	// ErrContractViolation reports a pagination request that the
	// upstream validation layer should have rejected: both cursors
	// supplied, a limit outside the allowed bounds, a sort column with
	// no getter. Fail fast, no silent coercion.
	ErrContractViolation = errors.New("pagination contract violation")
)
