package domain

import "time"

// Principal is the authenticated caller supplied by the identity collaborator.
// Core operations trust it and run their own camp-ownership checks.
type Principal struct {
	ID          string `json:"id"`
	CampID      string `json:"camp_id,omitempty"`
	AccountType string `json:"account_type"` // "personal" or "camp"
	Email       string `json:"email"`
}

// IsCampAccount reports whether the principal acts on behalf of a camp.
func (p *Principal) IsCampAccount() bool {
	return p.AccountType == "camp"
}

// OwnsCamp reports whether the principal may administer the given camp.
func (p *Principal) OwnsCamp(campID string) bool {
	return p.IsCampAccount() && p.CampID == campID
}

// ApplicantProfile is the canonical profile snapshot used for the
// completeness check and roster views.
type ApplicantProfile struct {
	UserID         string         `json:"user_id"`
	FirstName      string         `json:"firstName"`
	LastName       string         `json:"lastName"`
	Email          string         `json:"email"`
	Phone          string         `json:"phone"`
	City           string         `json:"city"`
	State          string         `json:"state,omitempty"`
	PlayaName      string         `json:"playaName,omitempty"`
	YearsBurned    int            `json:"yearsBurned"`
	Bio            string         `json:"bio"`
	Skills         []string       `json:"skills,omitempty"`
	InterestFlags  map[string]any `json:"interestFlags,omitempty"`
	HasTicket      *bool          `json:"hasTicket,omitempty"`
	HasVehiclePass *bool          `json:"hasVehiclePass,omitempty"`
	ArrivalDate    *time.Time     `json:"arrivalDate,omitempty"`
	DepartureDate  *time.Time     `json:"departureDate,omitempty"`
	CampName       string         `json:"campName,omitempty"` // denormalized current camp
}

// MissingProfileFields returns the names of required fields that fail the
// fixed completeness check. Empty result means the profile is complete.
func (p *ApplicantProfile) MissingProfileFields() []string {
	var missing []string
	if p.FirstName == "" {
		missing = append(missing, "firstName")
	}
	if p.LastName == "" {
		missing = append(missing, "lastName")
	}
	if p.Phone == "" {
		missing = append(missing, "phone")
	}
	if p.City == "" {
		missing = append(missing, "city")
	}
	if p.YearsBurned < 0 {
		missing = append(missing, "yearsBurned")
	}
	if p.Bio == "" {
		missing = append(missing, "bio")
	}
	// Interest flags are optional but must be boolean-typed when present.
	for name, v := range p.InterestFlags {
		if _, ok := v.(bool); !ok {
			missing = append(missing, "interestFlags."+name)
		}
	}
	return missing
}
