package domain

import "time"

// Status is the application lifecycle status.
type Status string

const (
	StatusPendingOrientation Status = "pending-orientation"
	StatusUndecided          Status = "undecided"
	StatusCallScheduled      Status = "call-scheduled"
	StatusUnderReview        Status = "under-review"
	StatusApproved           Status = "approved"
	StatusRejected           Status = "rejected"
	StatusUnresponsive       Status = "unresponsive"
	StatusWithdrawn          Status = "withdrawn"
	StatusDeleted            Status = "deleted"
)

// NormalizeStatus maps wire-level status strings onto the canonical set.
// "pending" is a legacy synonym still sent by older clients.
func NormalizeStatus(s string) (Status, bool) {
	if s == "pending" {
		return StatusPendingOrientation, true
	}
	st := Status(s)
	switch st {
	case StatusPendingOrientation, StatusUndecided, StatusCallScheduled,
		StatusUnderReview, StatusApproved, StatusRejected,
		StatusUnresponsive, StatusWithdrawn, StatusDeleted:
		return st, true
	}
	return "", false
}

// IsTerminal reports whether the status permits a fresh application
// for the same (applicant, camp) pair.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusRejected, StatusWithdrawn, StatusDeleted:
		return true
	}
	return false
}

// TerminalStatuses lists the statuses excluded by the active-application
// uniqueness constraint. Order matters to nobody but the migration DDL.
var TerminalStatuses = []Status{StatusRejected, StatusWithdrawn, StatusDeleted}

// ApplicationData holds the applicant's free-form answers.
type ApplicationData struct {
	BurningPlans   string         `json:"burningPlans,omitempty"`
	CallSlotID     string         `json:"callSlotId,omitempty"`
	Motivation     string         `json:"motivation,omitempty"`
	Experience     string         `json:"experience,omitempty"`
	Contribution   string         `json:"contribution,omitempty"`
	Answers        map[string]any `json:"answers,omitempty"`
	InterestedIn   []string       `json:"interestedIn,omitempty"`
	ReferredBy     string         `json:"referredBy,omitempty"`
	AdditionalInfo string         `json:"additionalInfo,omitempty"`
}

// ActionEntry is one append-only audit record of a status transition.
type ActionEntry struct {
	Action     string    `json:"action"`
	FromStatus Status    `json:"fromStatus,omitempty"`
	ToStatus   Status    `json:"toStatus"`
	Actor      string    `json:"actor"`
	Note       string    `json:"note,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Message is a threaded note between applicant and camp staff.
type Message struct {
	Sender    string    `json:"sender"` // "applicant" or "camp"
	SenderID  string    `json:"senderId"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
}

// Application is one application cycle for an (applicant, camp) pair.
type Application struct {
	ID            string          `json:"id"`
	ApplicantID   string          `json:"applicant_id"`
	CampID        string          `json:"camp_id"`
	Status        Status          `json:"status"`
	Data          ApplicationData `json:"application_data"`
	ActionHistory []ActionEntry   `json:"action_history"`
	Messages      []Message       `json:"messages"`
	InviteToken   string          `json:"invite_token,omitempty"`
	ReviewedBy    string          `json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time      `json:"reviewed_at,omitempty"`
	ReviewNotes   string          `json:"review_notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// InitialStatus selects the status a new application starts in.
func InitialStatus(data ApplicationData) Status {
	if data.BurningPlans == "undecided" {
		return StatusUndecided
	}
	if data.CallSlotID != "" {
		return StatusCallScheduled
	}
	return StatusPendingOrientation
}
