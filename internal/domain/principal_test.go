package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func completeProfile() ApplicantProfile {
	return ApplicantProfile{
		UserID:      "u1",
		FirstName:   "Jo",
		LastName:    "Dust",
		Phone:       "+15550100",
		City:        "Reno",
		YearsBurned: 0,
		Bio:         "hello",
	}
}

func TestMissingProfileFields(t *testing.T) {
	t.Run("complete profile", func(t *testing.T) {
		p := completeProfile()
		assert.Empty(t, p.MissingProfileFields())
	})

	t.Run("missing required fields", func(t *testing.T) {
		p := completeProfile()
		p.FirstName = ""
		p.Bio = ""
		missing := p.MissingProfileFields()
		assert.Contains(t, missing, "firstName")
		assert.Contains(t, missing, "bio")
		assert.Len(t, missing, 2)
	})

	t.Run("negative years", func(t *testing.T) {
		p := completeProfile()
		p.YearsBurned = -1
		assert.Contains(t, p.MissingProfileFields(), "yearsBurned")
	})

	t.Run("interest flags must be boolean typed", func(t *testing.T) {
		p := completeProfile()
		p.InterestFlags = map[string]any{"cooking": true, "art": "yes"}
		missing := p.MissingProfileFields()
		assert.Contains(t, missing, "interestFlags.art")
		assert.NotContains(t, missing, "interestFlags.cooking")
	})
}

func TestPrincipalOwnsCamp(t *testing.T) {
	camp := &Principal{ID: "p1", CampID: "c1", AccountType: "camp"}
	assert.True(t, camp.OwnsCamp("c1"))
	assert.False(t, camp.OwnsCamp("c2"))

	personal := &Principal{ID: "p2", AccountType: "personal"}
	assert.False(t, personal.OwnsCamp("c1"))
}
