package domain

import "time"

// Camp is the organization applicants join.
type Camp struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	OwnerID           string    `json:"owner_id"`
	AcceptingMembers  bool      `json:"accepting_members"`
	TotalMembers      int       `json:"total_members"`
	TotalApplications int       `json:"total_applications"`
	InviteTemplate    string    `json:"invite_template,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
