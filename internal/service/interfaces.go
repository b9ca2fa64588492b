package service

import (
	"context"

	"camphub-be/internal/domain"
)

// Notifier delivers outbound notifications. Calls are fire-and-forget from
// the caller's perspective: failures are logged, never propagated.
type Notifier interface {
	NotifyApplicationReceived(ctx context.Context, camp *domain.Camp, applicant *domain.ApplicantProfile, app *domain.Application) error
	NotifyStatusChanged(ctx context.Context, app *domain.Application, applicant *domain.ApplicantProfile, camp *domain.Camp, status domain.Status) error
	NotifyInvite(ctx context.Context, recipient, method string, camp *domain.Camp, senderID, link, message string) error
}

// ProfileService is the read-only profile collaborator used by the
// completeness check and roster views.
type ProfileService interface {
	GetProfile(ctx context.Context, userID string) (*domain.ApplicantProfile, error)
}

// ActivityRecorder appends audit activity. Best-effort at every call site.
type ActivityRecorder interface {
	Record(ctx context.Context, entityType, entityID, actorID, activityType string, details map[string]any)
}

// Activity entity types.
const (
	EntityMember = "MEMBER"
	EntityCamp   = "CAMP"
)
