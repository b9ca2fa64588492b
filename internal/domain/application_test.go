package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   Status
		wantOK bool
	}{
		{"canonical status", "under-review", StatusUnderReview, true},
		{"legacy pending synonym", "pending", StatusPendingOrientation, true},
		{"pending-orientation", "pending-orientation", StatusPendingOrientation, true},
		{"approved", "approved", StatusApproved, true},
		{"unknown status", "on-hold", "", false},
		{"empty string", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeStatus(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatusIsTerminal(t *testing.T) {
	terminal := []Status{StatusRejected, StatusWithdrawn, StatusDeleted}
	for _, s := range terminal {
		assert.True(t, s.IsTerminal(), "expected %s to be terminal", s)
	}

	nonTerminal := []Status{
		StatusPendingOrientation, StatusUndecided, StatusCallScheduled,
		StatusUnderReview, StatusApproved, StatusUnresponsive,
	}
	for _, s := range nonTerminal {
		assert.False(t, s.IsTerminal(), "expected %s to be non-terminal", s)
	}
}

func TestInitialStatus(t *testing.T) {
	tests := []struct {
		name string
		data ApplicationData
		want Status
	}{
		{"undecided plans win over slot", ApplicationData{BurningPlans: "undecided", CallSlotID: "slot-1"}, StatusUndecided},
		{"slot selected", ApplicationData{BurningPlans: "attending", CallSlotID: "slot-1"}, StatusCallScheduled},
		{"no plans no slot", ApplicationData{}, StatusPendingOrientation},
		{"plans without slot", ApplicationData{BurningPlans: "attending"}, StatusPendingOrientation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InitialStatus(tt.data))
		})
	}
}
