package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyBuilderEnvironmentPrefix(t *testing.T) {
	tests := []struct {
		environment string
		wantPrefix  string
	}{
		{"production", "prod"},
		{"development", "staging"},
		{"staging", "staging"},
		{"", "prod"},
	}

	for _, tt := range tests {
		t.Run(tt.environment, func(t *testing.T) {
			kb := NewKeyBuilder(tt.environment)
			assert.Equal(t, tt.wantPrefix, kb.GetPrefix())
			assert.Equal(t, tt.wantPrefix+":x", kb.BuildKey("x"))
		})
	}
}

func TestKeyBuilderDomainKeys(t *testing.T) {
	kb := NewKeyBuilder("production")

	assert.Equal(t, "prod:callslots:camp:c1:available", kb.KeySlotsAvailable("c1"))
	assert.Equal(t, "prod:callslots:slot:s1", kb.KeySlotByID("s1"))
	assert.Equal(t, "prod:applications:user:u1:camp:c1:active", kb.KeyApplicationActive("u1", "c1"))
	assert.Equal(t, "prod:camps:c1:accepting", kb.KeyCampAccepting("c1"))
	assert.Equal(t, "prod:invites:correlated:i1", kb.KeyInviteCorrelated("i1"))
	assert.Equal(t, "prod:custom:42", kb.KeyCustom("custom:%d", 42))
}
