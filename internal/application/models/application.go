package models

import "time"

// Status is the review state of an application.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is one of the three known states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether s ends the review lifecycle. Both decisions are
// terminal in this design; the store still applies a later write if two
// admins race (last write wins, both notifications may fire).
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Application is the sole persisted entity: one applicant's submitted
// registration data and its review status.
//
// Invariants:
//   - ApplicantID is unique per row; a repeat submission replaces the row's
//     data and resets Status to pending instead of duplicating
//   - all string fields are stored post-sanitization
//   - CreatedAt is immutable after the first insert
//   - rows are never deleted; the record outlives group membership
type Application struct {
	ID          int64
	ApplicantID int64
	Username    string
	FullName    string
	Phone       string
	PlotNumber  string
	DocumentRef string
	Status      Status
	CreatedAt   time.Time
}

// Statistics aggregates application counts by review state.
type Statistics struct {
	Total    int
	Pending  int
	Approved int
	Rejected int
}
