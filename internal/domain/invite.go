package domain

import "time"

// InviteStatus moves forward only: pending → sent → applied, or expired.
type InviteStatus string

const (
	InviteStatusPending InviteStatus = "pending"
	InviteStatusSent    InviteStatus = "sent"
	InviteStatusApplied InviteStatus = "applied"
	InviteStatusExpired InviteStatus = "expired"
)

// InviteExpiry is how long an invite stays correlatable after issue.
const InviteExpiry = 7 * 24 * time.Hour

// Invite is a single-use invitation token issued by camp staff.
type Invite struct {
	ID        string       `json:"id"`
	CampID    string       `json:"camp_id"`
	Token     string       `json:"-"`
	Recipient string       `json:"recipient"`
	Method    string       `json:"method"` // "email" or "sms"
	Status    InviteStatus `json:"status"`
	SenderID  string       `json:"sender_id"`
	Message   string       `json:"message,omitempty"`
	AppliedBy string       `json:"applied_by,omitempty"`
	AppliedAt *time.Time   `json:"applied_at,omitempty"`
	ExpiresAt time.Time    `json:"expires_at"`
	CreatedAt time.Time    `json:"created_at"`
}

// IsExpired reports whether the invite has passed its expiry at the given instant.
func (i *Invite) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// IsOpen reports whether the invite can still be correlated to an application.
func (i *Invite) IsOpen(now time.Time) bool {
	return (i.Status == InviteStatusPending || i.Status == InviteStatusSent) && !i.IsExpired(now)
}
