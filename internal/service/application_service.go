package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"camphub-be/internal/domain"
	"camphub-be/internal/repository"
	apperrors "camphub-be/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxMessageLength = 2000

// ApplicationService owns the application entity and its status machine.
type ApplicationService struct {
	apps        repository.ApplicationRepository
	camps       repository.CampRepository
	profiles    ProfileService
	slots       *CallSlotService
	invites     *InviteService
	coordinator *MembershipService
	notifier    Notifier
	activity    ActivityRecorder
	cache       *CacheService
	logger      *zap.Logger
}

func NewApplicationService(
	apps repository.ApplicationRepository,
	camps repository.CampRepository,
	profiles ProfileService,
	slots *CallSlotService,
	invites *InviteService,
	coordinator *MembershipService,
	notifier Notifier,
	activity ActivityRecorder,
	cache *CacheService,
	logger *zap.Logger,
) *ApplicationService {
	return &ApplicationService{
		apps:        apps,
		camps:       camps,
		profiles:    profiles,
		slots:       slots,
		invites:     invites,
		coordinator: coordinator,
		notifier:    notifier,
		activity:    activity,
		cache:       cache,
		logger:      logger,
	}
}

// Apply creates a new application cycle for (applicant, camp). The
// duplicate pre-check is an optimization only; the storage-level unique
// constraint is the final arbiter and a lost race resolves to the same
// duplicate conflict the pre-check would have produced.
func (s *ApplicationService) Apply(ctx context.Context, principal *domain.Principal, campID string, data domain.ApplicationData, inviteToken string) (*domain.Application, error) {
	camp, err := s.camps.GetByID(ctx, campID)
	if err != nil {
		return nil, fmt.Errorf("failed to load camp: %w", err)
	}
	if camp == nil {
		return nil, apperrors.NewNotFoundError("camp not found")
	}

	accepting, err := s.cache.GetCampAcceptingWithCache(ctx, campID, func(ctx context.Context) (bool, error) {
		return camp.AcceptingMembers, nil
	})
	if err != nil {
		accepting = camp.AcceptingMembers
	}
	if !accepting {
		return nil, domain.ErrCampNotAccepting
	}

	profile, err := s.profiles.GetProfile(ctx, principal.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if profile == nil {
		return nil, apperrors.NewValidationError("profile is incomplete",
			map[string]any{"missingFields": []string{"profile"}})
	}
	if missing := profile.MissingProfileFields(); len(missing) > 0 {
		return nil, apperrors.NewValidationError("profile is incomplete",
			map[string]any{"missingFields": missing})
	}

	if existing, err := s.apps.GetActive(ctx, principal.ID, campID); err != nil {
		return nil, fmt.Errorf("failed to check existing application: %w", err)
	} else if existing != nil {
		return nil, duplicateActiveError(existing)
	}

	// reservedSlot is set only when THIS request took the seat; a seat the
	// applicant already held satisfies the selection but is not ours to
	// release if the create below fails.
	reservedSlot := ""
	if data.CallSlotID != "" {
		switch err := s.slots.Reserve(ctx, data.CallSlotID, principal.ID); {
		case err == nil:
			reservedSlot = data.CallSlotID
		case errors.Is(err, domain.ErrSlotReserved):
			// Seat already held; selection satisfied.
		case errors.Is(err, domain.ErrNotFound):
			return nil, apperrors.NewValidationError("selected call slot does not exist", nil)
		case errors.Is(err, domain.ErrSlotFull):
			return nil, apperrors.NewConflictError("call slot is full",
				map[string]any{"slotId": data.CallSlotID})
		default:
			return nil, fmt.Errorf("failed to reserve call slot: %w", err)
		}
	}

	app := &domain.Application{
		ID:          uuid.NewString(),
		ApplicantID: principal.ID,
		CampID:      campID,
		Status:      domain.InitialStatus(data),
		Data:        data,
		InviteToken: inviteToken,
		ActionHistory: []domain.ActionEntry{{
			Action:    "applied",
			ToStatus:  domain.InitialStatus(data),
			Actor:     principal.ID,
			Timestamp: time.Now(),
		}},
		Messages: []domain.Message{},
	}

	if err := s.apps.Create(ctx, app); err != nil {
		if reservedSlot != "" {
			if relErr := s.slots.Release(ctx, reservedSlot, principal.ID); relErr != nil {
				s.logger.Warn("failed to release slot after apply failure",
					zap.String("slot_id", reservedSlot),
					zap.Error(relErr))
			}
		}
		if errors.Is(err, domain.ErrDuplicateActive) {
			existing, refetchErr := s.apps.GetActive(ctx, principal.ID, campID)
			if refetchErr == nil && existing != nil {
				return nil, duplicateActiveError(existing)
			}
			return nil, apperrors.NewConflictError("an active application already exists", nil)
		}
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	if invite, err := s.invites.Correlate(ctx, campID, principal.ID, principal.Email, inviteToken); err != nil {
		s.logger.Warn("invite correlation failed",
			zap.String("application_id", app.ID),
			zap.Error(err))
	} else if invite != nil {
		s.logger.Info("application correlated to invite",
			zap.String("application_id", app.ID),
			zap.String("invite_id", invite.ID))
	}

	if err := s.camps.IncrementApplications(ctx, campID, 1); err != nil {
		s.logger.Warn("failed to increment application count",
			zap.String("camp_id", campID),
			zap.Error(err))
	}

	runEffects(ctx, s.logger, []effect{
		{name: "notify_application_received", run: func(ctx context.Context) error {
			return s.notifier.NotifyApplicationReceived(ctx, camp, profile, app)
		}},
		{name: "record_activity", run: func(ctx context.Context) error {
			s.activity.Record(ctx, EntityCamp, campID, principal.ID, "application_received",
				map[string]any{"applicationId": app.ID, "status": app.Status})
			return nil
		}},
	})

	return app, nil
}

// GetActive returns the applicant's non-terminal application for the camp,
// or nil when none exists.
func (s *ApplicationService) GetActive(ctx context.Context, applicantID, campID string) (*domain.Application, error) {
	return s.apps.GetActive(ctx, applicantID, campID)
}

// ListMine returns all application cycles for the caller, newest first.
func (s *ApplicationService) ListMine(ctx context.Context, principal *domain.Principal) ([]domain.Application, error) {
	return s.apps.ListByApplicant(ctx, principal.ID)
}

// ListByCamp returns a camp's applications, optionally filtered by status.
func (s *ApplicationService) ListByCamp(ctx context.Context, principal *domain.Principal, campID, statusFilter string) ([]domain.Application, error) {
	if !principal.OwnsCamp(campID) {
		return nil, apperrors.NewAuthorizationError("only the camp can list its applications")
	}

	var status *domain.Status
	if statusFilter != "" {
		normalized, ok := domain.NormalizeStatus(statusFilter)
		if !ok {
			return nil, apperrors.NewValidationError("unknown status filter",
				map[string]any{"status": statusFilter})
		}
		status = &normalized
	}
	return s.apps.ListByCamp(ctx, campID, status)
}

// SetStatus applies a staff-initiated transition, appends the audit entry,
// and hands terminal decisions to the membership coordinator. A coordinator
// failure after the status committed is reported as partial success.
func (s *ApplicationService) SetStatus(ctx context.Context, principal *domain.Principal, applicationID, statusStr, notes string) (*domain.Application, error) {
	newStatus, ok := domain.NormalizeStatus(statusStr)
	if !ok {
		return nil, apperrors.NewValidationError("unknown status",
			map[string]any{"status": statusStr})
	}

	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load application: %w", err)
	}
	if app == nil {
		return nil, apperrors.NewNotFoundError("application not found")
	}
	if !principal.OwnsCamp(app.CampID) {
		return nil, apperrors.NewAuthorizationError("only the camp can update this application")
	}
	if app.Status.IsTerminal() {
		return nil, domain.ErrTerminalStatus
	}

	entry := domain.ActionEntry{
		Action:     "status-changed",
		FromStatus: app.Status,
		ToStatus:   newStatus,
		Actor:      principal.ID,
		Note:       notes,
		Timestamp:  time.Now(),
	}
	if err := s.apps.UpdateStatus(ctx, applicationID, newStatus, principal.ID, notes, entry); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("application not found")
		}
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	app.Status = newStatus
	app.ActionHistory = append(app.ActionHistory, entry)

	var coordinatorErr error
	switch newStatus {
	case domain.StatusApproved:
		_, coordinatorErr = s.coordinator.OnApproved(ctx, app, principal.ID)
	case domain.StatusRejected:
		s.coordinator.OnRejected(ctx, app)
	}

	camp, _ := s.camps.GetByID(ctx, app.CampID)
	profile, _ := s.profiles.GetProfile(ctx, app.ApplicantID)
	runEffects(ctx, s.logger, []effect{
		{name: "notify_status_changed", run: func(ctx context.Context) error {
			return s.notifier.NotifyStatusChanged(ctx, app, profile, camp, newStatus)
		}},
		{name: "record_activity", run: func(ctx context.Context) error {
			s.activity.Record(ctx, EntityCamp, app.CampID, principal.ID, "application_status_changed",
				map[string]any{"applicationId": app.ID, "from": entry.FromStatus, "to": newStatus})
			return nil
		}},
	})

	if coordinatorErr != nil {
		// The transition itself committed; surface the partial failure.
		return app, coordinatorErr
	}
	return app, nil
}

// AppendMessage adds one threaded note. The sender side is derived from the
// principal, never from the payload.
func (s *ApplicationService) AppendMessage(ctx context.Context, principal *domain.Principal, applicationID, body string) (*domain.Application, error) {
	body = strings.TrimSpace(body)
	if body == "" || len(body) > maxMessageLength {
		return nil, apperrors.NewValidationError("message must be 1-2000 characters", nil)
	}

	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load application: %w", err)
	}
	if app == nil {
		return nil, apperrors.NewNotFoundError("application not found")
	}

	var sender string
	switch {
	case principal.OwnsCamp(app.CampID):
		sender = "camp"
	case principal.ID == app.ApplicantID:
		sender = "applicant"
	default:
		return nil, apperrors.NewAuthorizationError("not a participant of this application")
	}

	msg := domain.Message{
		Sender:    sender,
		SenderID:  principal.ID,
		Body:      body,
		Timestamp: time.Now(),
	}
	if err := s.apps.AppendMessage(ctx, applicationID, msg); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("application not found")
		}
		return nil, fmt.Errorf("failed to append message: %w", err)
	}

	app.Messages = append(app.Messages, msg)
	return app, nil
}

// ResetToWithdrawn bulk-moves every non-terminal application for the pair
// to withdrawn. Administrative undo; idempotent.
func (s *ApplicationService) ResetToWithdrawn(ctx context.Context, principal *domain.Principal, applicantID, campID string) (int64, error) {
	if !principal.OwnsCamp(campID) {
		return 0, apperrors.NewAuthorizationError("only the camp can reset applications")
	}

	entry := domain.ActionEntry{
		Action:    "reset",
		ToStatus:  domain.StatusWithdrawn,
		Actor:     principal.ID,
		Timestamp: time.Now(),
	}
	count, err := s.apps.ResetActiveToWithdrawn(ctx, applicantID, campID, entry)
	if err != nil {
		return 0, fmt.Errorf("failed to reset applications: %w", err)
	}

	if count > 0 {
		s.activity.Record(ctx, EntityCamp, campID, principal.ID, "applications_reset",
			map[string]any{"applicantId": applicantID, "count": count})
	}
	return count, nil
}

func duplicateActiveError(existing *domain.Application) *apperrors.AppError {
	return apperrors.NewConflictError("an active application already exists",
		map[string]any{
			"existingApplicationId": existing.ID,
			"status":                existing.Status,
		})
}
