package domain

import "time"

// MemberStatus is the camp-side membership status.
type MemberStatus string

const (
	MemberStatusActive    MemberStatus = "active"
	MemberStatusWithdrawn MemberStatus = "withdrawn"
	MemberStatusDeleted   MemberStatus = "deleted"
)

// MemberRole within a camp.
type MemberRole string

const (
	RoleMember      MemberRole = "member"
	RoleProjectLead MemberRole = "project-lead"
	RoleCampLead    MemberRole = "camp-lead"
)

// Member is the camp-scoped identity created when an application is approved.
// Distinct from the global user identity, which is owned externally.
type Member struct {
	ID         string       `json:"id"`
	CampID     string       `json:"camp_id"`
	UserID     string       `json:"user_id"`
	Role       MemberRole   `json:"role"`
	Status     MemberStatus `json:"status"`
	AppliedAt  *time.Time   `json:"applied_at,omitempty"`
	ReviewedAt *time.Time   `json:"reviewed_at,omitempty"`
	ReviewedBy string       `json:"reviewed_by,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}
