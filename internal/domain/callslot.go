package domain

import "time"

// CallSlot is a capacity-bounded orientation call time for one camp.
type CallSlot struct {
	ID                  string    `json:"id"`
	CampID              string    `json:"camp_id"`
	Date                time.Time `json:"date"`
	StartTime           string    `json:"start_time"`
	EndTime             string    `json:"end_time"`
	MaxParticipants     int       `json:"max_participants"`
	CurrentParticipants int       `json:"current_participants"`
	IsAvailable         bool      `json:"is_available"`
	Participants        []string  `json:"participants"`
	CreatedBy           string    `json:"created_by"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// HasParticipant reports whether the applicant already holds a seat.
func (s *CallSlot) HasParticipant(applicantID string) bool {
	for _, p := range s.Participants {
		if p == applicantID {
			return true
		}
	}
	return false
}
