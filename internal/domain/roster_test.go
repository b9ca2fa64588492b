package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func boolPtr(b bool) *bool    { return &b }

func TestMemberOverridesMergePreservesUnsetFields(t *testing.T) {
	existing := MemberOverrides{
		PlayaName:   strPtr("Sparkle"),
		YearsBurned: intPtr(5),
		HasTicket:   boolPtr(true),
	}

	existing.Merge(MemberOverrides{City: strPtr("Oakland")})

	assert.Equal(t, "Sparkle", *existing.PlayaName)
	assert.Equal(t, 5, *existing.YearsBurned)
	assert.True(t, *existing.HasTicket)
	assert.Equal(t, "Oakland", *existing.City)
	assert.Nil(t, existing.State)
}

func TestMemberOverridesMergeReplacesProvidedFields(t *testing.T) {
	existing := MemberOverrides{PlayaName: strPtr("Sparkle")}
	existing.Merge(MemberOverrides{
		PlayaName: strPtr("Glitter"),
		Skills:    []string{"carpentry"},
		HasTicket: boolPtr(false),
	})

	assert.Equal(t, "Glitter", *existing.PlayaName)
	assert.Equal(t, []string{"carpentry"}, existing.Skills)
	assert.False(t, *existing.HasTicket)
}

func TestRosterMemberViewApplyOverrides(t *testing.T) {
	arrival := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
	view := RosterMemberView{
		Entry: RosterMemberEntry{
			Overrides: MemberOverrides{
				PlayaName:   strPtr("Dusty"),
				YearsBurned: intPtr(10),
				ArrivalDate: &arrival,
			},
		},
		Profile: ApplicantProfile{
			FirstName:   "Jo",
			PlayaName:   "OldName",
			YearsBurned: 2,
			City:        "Reno",
		},
	}

	got := view.ApplyOverrides()

	// Overridden fields win for this cycle only.
	assert.Equal(t, "Dusty", got.PlayaName)
	assert.Equal(t, 10, got.YearsBurned)
	assert.Equal(t, &arrival, got.ArrivalDate)
	// Canonical fields without overrides are untouched.
	assert.Equal(t, "Jo", got.FirstName)
	assert.Equal(t, "Reno", got.City)
	// The canonical profile itself is not mutated.
	assert.Equal(t, "OldName", view.Profile.PlayaName)
}
