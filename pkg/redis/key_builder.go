package redis

import "fmt"

// KeyBuilder provides environment-aware Redis key building functionality
type KeyBuilder struct {
	prefix string // Environment prefix (staging/prod)
}

// NewKeyBuilder creates a new key builder with environment-based prefix
func NewKeyBuilder(environment string) *KeyBuilder {
	prefix := "prod"
	if environment == "development" || environment == "staging" {
		prefix = "staging"
	}

	return &KeyBuilder{
		prefix: prefix,
	}
}

// BuildKey constructs a Redis key with the environment prefix
func (kb *KeyBuilder) BuildKey(key string) string {
	return fmt.Sprintf("%s:%s", kb.prefix, key)
}

// GetPrefix returns the current environment prefix
func (kb *KeyBuilder) GetPrefix() string {
	return kb.prefix
}

// Call slot key builders
func (kb *KeyBuilder) KeySlotsAvailable(campID string) string {
	return kb.BuildKey(fmt.Sprintf(KeySlotsAvailable, campID))
}

func (kb *KeyBuilder) KeySlotByID(slotID string) string {
	return kb.BuildKey(fmt.Sprintf(KeySlotByID, slotID))
}

// Application key builders
func (kb *KeyBuilder) KeyApplicationActive(applicantID, campID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyApplicationActive, applicantID, campID))
}

func (kb *KeyBuilder) KeyCampAccepting(campID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyCampAccepting, campID))
}

// Invite key builders
func (kb *KeyBuilder) KeyInviteCorrelated(inviteID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyInviteCorrelated, inviteID))
}

// Generic key builder for custom patterns
func (kb *KeyBuilder) KeyCustom(pattern string, args ...interface{}) string {
	key := fmt.Sprintf(pattern, args...)
	return kb.BuildKey(key)
}
