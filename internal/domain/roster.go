package domain

import "time"

// DuesStatus for a roster entry.
type DuesStatus string

const (
	DuesPaid   DuesStatus = "Paid"
	DuesUnpaid DuesStatus = "Unpaid"
)

// Roster is one membership cycle for a camp. At most one roster per camp
// is active and not archived at any time.
type Roster struct {
	ID          string    `json:"id"`
	CampID      string    `json:"camp_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	IsArchived  bool      `json:"is_archived"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MemberOverrides are per-roster-cycle display values that win over the
// canonical profile fields without mutating them. Pointer fields
// distinguish "not set" from zero values so partial merges work. Skills
// cannot be cleared once overridden: omitempty drops empty slices from the
// merge patch, so a clear would need a dedicated remove operation.
type MemberOverrides struct {
	PlayaName      *string    `json:"playaName,omitempty"`
	YearsBurned    *int       `json:"yearsBurned,omitempty"`
	Skills         []string   `json:"skills,omitempty"`
	HasTicket      *bool      `json:"hasTicket,omitempty"`
	HasVehiclePass *bool      `json:"hasVehiclePass,omitempty"`
	ArrivalDate    *time.Time `json:"arrivalDate,omitempty"`
	DepartureDate  *time.Time `json:"departureDate,omitempty"`
	City           *string    `json:"city,omitempty"`
	State          *string    `json:"state,omitempty"`
}

// Merge applies only the fields set in patch, leaving the rest untouched.
func (o *MemberOverrides) Merge(patch MemberOverrides) {
	if patch.PlayaName != nil {
		o.PlayaName = patch.PlayaName
	}
	if patch.YearsBurned != nil {
		o.YearsBurned = patch.YearsBurned
	}
	if patch.Skills != nil {
		o.Skills = patch.Skills
	}
	if patch.HasTicket != nil {
		o.HasTicket = patch.HasTicket
	}
	if patch.HasVehiclePass != nil {
		o.HasVehiclePass = patch.HasVehiclePass
	}
	if patch.ArrivalDate != nil {
		o.ArrivalDate = patch.ArrivalDate
	}
	if patch.DepartureDate != nil {
		o.DepartureDate = patch.DepartureDate
	}
	if patch.City != nil {
		o.City = patch.City
	}
	if patch.State != nil {
		o.State = patch.State
	}
}

// RosterMemberEntry links a member into one roster cycle.
type RosterMemberEntry struct {
	RosterID   string          `json:"roster_id"`
	MemberID   string          `json:"member_id"`
	AddedAt    time.Time       `json:"added_at"`
	AddedBy    string          `json:"added_by"`
	DuesStatus DuesStatus      `json:"dues_status"`
	IsCampLead bool            `json:"is_camp_lead"`
	Overrides  MemberOverrides `json:"overrides"`
}

// RosterMemberView is an entry joined with its member and profile for
// display, with overrides already applied.
type RosterMemberView struct {
	Entry   RosterMemberEntry `json:"entry"`
	Member  Member            `json:"member"`
	Profile ApplicantProfile  `json:"profile"`
}

// ApplyOverrides returns the profile with this entry's overrides folded in.
func (v *RosterMemberView) ApplyOverrides() ApplicantProfile {
	p := v.Profile
	o := v.Entry.Overrides
	if o.PlayaName != nil {
		p.PlayaName = *o.PlayaName
	}
	if o.YearsBurned != nil {
		p.YearsBurned = *o.YearsBurned
	}
	if o.Skills != nil {
		p.Skills = o.Skills
	}
	if o.HasTicket != nil {
		p.HasTicket = o.HasTicket
	}
	if o.HasVehiclePass != nil {
		p.HasVehiclePass = o.HasVehiclePass
	}
	if o.ArrivalDate != nil {
		p.ArrivalDate = o.ArrivalDate
	}
	if o.DepartureDate != nil {
		p.DepartureDate = o.DepartureDate
	}
	if o.City != nil {
		p.City = *o.City
	}
	if o.State != nil {
		p.State = *o.State
	}
	return p
}
