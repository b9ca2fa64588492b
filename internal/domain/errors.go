package domain

import "errors"

// Sentinel errors returned by repositories and services. Handlers and
// services translate these into the HTTP error taxonomy.
var (
	ErrNotFound = errors.New("not found")

	// Call slots
	ErrSlotFull     = errors.New("call slot is full")
	ErrSlotReserved = errors.New("applicant already reserved this slot")
	ErrSlotInUse    = errors.New("call slot is referenced by an active application")

	// Applications
	ErrDuplicateActive  = errors.New("an active application already exists")
	ErrCampNotAccepting = errors.New("camp is not accepting members")
	ErrTerminalStatus   = errors.New("application is in a terminal status")

	// Invites
	ErrInviteFinalized = errors.New("invite already applied or expired")

	// Rosters
	ErrRosterArchived     = errors.New("roster is archived")
	ErrActiveRosterExists = errors.New("camp already has an active roster")
	ErrNotApproved        = errors.New("member is not approved")
	ErrAlreadyCampLead    = errors.New("member is already a camp lead")
	ErrNotCampLead        = errors.New("member is not a camp lead")
)
