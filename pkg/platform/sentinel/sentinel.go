package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and transport adapters
// return these (optionally wrapped) so handlers can translate them into
// user-facing replies.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in store
// - ErrConflict: a uniqueness rule was violated or a concurrent write lost
// - ErrUnavailable: external collaborator temporarily unavailable
//
// Validation failures (bad user input) never travel as errors; the security
// package returns a validity flag plus a human-readable reason instead.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
