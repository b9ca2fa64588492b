package service

import (
	"context"
	"fmt"
	"time"

	"camphub-be/internal/domain"
	"camphub-be/internal/repository"
	apperrors "camphub-be/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MembershipService coordinates the cross-entity effects of application
// decisions: approval creates a member and seats it on the active roster,
// rejection releases a held call slot, roster removal resets everything so
// the person can apply again.
type MembershipService struct {
	members  repository.MemberRepository
	rosters  repository.RosterRepository
	apps     repository.ApplicationRepository
	slots    repository.CallSlotRepository
	camps    repository.CampRepository
	profiles repository.ProfileRepository
	activity ActivityRecorder
	logger   *zap.Logger
}

func NewMembershipService(
	members repository.MemberRepository,
	rosters repository.RosterRepository,
	apps repository.ApplicationRepository,
	slots repository.CallSlotRepository,
	camps repository.CampRepository,
	profiles repository.ProfileRepository,
	activity ActivityRecorder,
	logger *zap.Logger,
) *MembershipService {
	return &MembershipService{
		members:  members,
		rosters:  rosters,
		apps:     apps,
		slots:    slots,
		camps:    camps,
		profiles: profiles,
		activity: activity,
		logger:   logger,
	}
}

// OnApproved creates the member, seats it on the camp's active roster
// (creating the roster if the camp has none), and bumps the member counter.
// The three steps are one logical unit for failure reporting: once the
// member exists, a later failure surfaces as a partial-success dependency
// error naming what completed, never a silent loss.
func (s *MembershipService) OnApproved(ctx context.Context, app *domain.Application, reviewerID string) (*domain.Member, error) {
	now := time.Now()
	member := &domain.Member{
		ID:         uuid.NewString(),
		CampID:     app.CampID,
		UserID:     app.ApplicantID,
		Role:       domain.RoleMember,
		Status:     domain.MemberStatusActive,
		AppliedAt:  &app.CreatedAt,
		ReviewedAt: &now,
		ReviewedBy: reviewerID,
	}
	if err := s.members.Create(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to create member: %w", err)
	}

	completed := []string{"member_created"}

	roster, err := s.rosters.GetActive(ctx, app.CampID)
	if err != nil {
		return member, s.partialFailure(completed, "load active roster", err)
	}

	if roster == nil {
		activeMembers, err := s.members.ListActiveByCamp(ctx, app.CampID)
		if err != nil {
			return member, s.partialFailure(completed, "list active members", err)
		}
		memberIDs := make([]string, 0, len(activeMembers))
		for _, m := range activeMembers {
			memberIDs = append(memberIDs, m.ID)
		}

		roster = &domain.Roster{
			ID:        uuid.NewString(),
			CampID:    app.CampID,
			Name:      fmt.Sprintf("%d Roster", now.Year()),
			CreatedBy: reviewerID,
		}
		if err := s.rosters.CreateWithRotation(ctx, roster, memberIDs, reviewerID); err != nil {
			return member, s.partialFailure(completed, "create roster", err)
		}
		completed = append(completed, "roster_created")
	} else {
		entry := &domain.RosterMemberEntry{
			RosterID:   roster.ID,
			MemberID:   member.ID,
			AddedBy:    reviewerID,
			DuesStatus: domain.DuesUnpaid,
		}
		if _, err := s.rosters.AddEntry(ctx, entry); err != nil {
			return member, s.partialFailure(completed, "add roster entry", err)
		}
	}
	completed = append(completed, "roster_entry_added")

	if err := s.camps.IncrementMembers(ctx, app.CampID, 1); err != nil {
		return member, s.partialFailure(completed, "increment member count", err)
	}

	// Denormalize the camp name onto the profile. Best-effort.
	if camp, err := s.camps.GetByID(ctx, app.CampID); err == nil && camp != nil {
		if err := s.profiles.SetCampName(ctx, app.ApplicantID, camp.Name); err != nil {
			s.logger.Warn("failed to set profile camp name",
				zap.String("user_id", app.ApplicantID),
				zap.Error(err))
		}
	}

	s.activity.Record(ctx, EntityMember, member.ID, reviewerID, "member_approved",
		map[string]any{"applicationId": app.ID, "campId": app.CampID})

	return member, nil
}

// OnRejected releases any call slot the application reserved. A failed
// release is logged and swallowed; it must not block the rejection.
func (s *MembershipService) OnRejected(ctx context.Context, app *domain.Application) {
	slotID := app.Data.CallSlotID
	if slotID == "" {
		return
	}
	if err := s.slots.Release(ctx, slotID, app.ApplicantID); err != nil && err != domain.ErrNotFound {
		s.logger.Warn("failed to release call slot on rejection",
			zap.String("application_id", app.ID),
			zap.String("slot_id", slotID),
			zap.Error(err))
	}
}

// OnRemovedFromRoster resets member and application state to withdrawn and
// clears the profile's camp denormalization, enabling a clean re-apply.
func (s *MembershipService) OnRemovedFromRoster(ctx context.Context, actorID, memberID string) error {
	member, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		return fmt.Errorf("failed to load member: %w", err)
	}
	if member == nil {
		return apperrors.NewNotFoundError("member not found")
	}

	if roster, err := s.rosters.GetActive(ctx, member.CampID); err != nil {
		return fmt.Errorf("failed to load active roster: %w", err)
	} else if roster != nil {
		if _, err := s.rosters.RemoveEntry(ctx, roster.ID, memberID); err != nil {
			return fmt.Errorf("failed to remove roster entry: %w", err)
		}
	}

	if err := s.members.UpdateStatus(ctx, memberID, domain.MemberStatusWithdrawn); err != nil {
		return fmt.Errorf("failed to withdraw member: %w", err)
	}

	entry := domain.ActionEntry{
		Action:    "removed-from-roster",
		ToStatus:  domain.StatusWithdrawn,
		Actor:     actorID,
		Timestamp: time.Now(),
	}
	if _, err := s.apps.ResetActiveToWithdrawn(ctx, member.UserID, member.CampID, entry); err != nil {
		return fmt.Errorf("failed to withdraw applications: %w", err)
	}

	if err := s.camps.IncrementMembers(ctx, member.CampID, -1); err != nil {
		s.logger.Warn("failed to decrement member count",
			zap.String("camp_id", member.CampID),
			zap.Error(err))
	}

	if err := s.profiles.SetCampName(ctx, member.UserID, ""); err != nil && err != domain.ErrNotFound {
		s.logger.Warn("failed to clear profile camp name",
			zap.String("user_id", member.UserID),
			zap.Error(err))
	}

	s.activity.Record(ctx, EntityMember, memberID, actorID, "member_removed",
		map[string]any{"campId": member.CampID})

	return nil
}

func (s *MembershipService) partialFailure(completed []string, failedStep string, err error) error {
	s.logger.Error("approval pipeline failed partway",
		zap.Strings("completed", completed),
		zap.String("failed_step", failedStep),
		zap.Error(err))
	appErr := apperrors.NewDependencyError(
		fmt.Sprintf("approval partially completed: %s failed", failedStep), err)
	appErr.Details = map[string]any{"completedSteps": completed}
	return appErr
}
