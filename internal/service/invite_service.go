package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"camphub-be/internal/domain"
	"camphub-be/internal/repository"
	apperrors "camphub-be/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultInviteTemplate = "You've been invited to join {{campName}}! Apply here: {{link}}"

// InviteService issues, correlates, and finalizes single-use invitation
// tokens that seed applications.
type InviteService struct {
	invites  repository.InviteRepository
	camps    repository.CampRepository
	cache    *CacheService
	notifier Notifier
	logger   *zap.Logger
	linkBase string
}

func NewInviteService(invites repository.InviteRepository, camps repository.CampRepository, cache *CacheService, notifier Notifier, logger *zap.Logger, linkBase string) *InviteService {
	return &InviteService{
		invites:  invites,
		camps:    camps,
		cache:    cache,
		notifier: notifier,
		logger:   logger,
		linkBase: linkBase,
	}
}

// InviteRecipient is one target of a batch issue.
type InviteRecipient struct {
	Recipient string `json:"recipient"`
	Method    string `json:"method"` // "email" or "sms"
}

// InviteResult reports the per-recipient outcome of a batch issue.
type InviteResult struct {
	Recipient string         `json:"recipient"`
	Invite    *domain.Invite `json:"invite,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// RenderInviteTemplate substitutes the {{campName}} and {{link}}
// placeholders. Pure; delivery is the notifier's problem.
func RenderInviteTemplate(template, campName, link string) string {
	if template == "" {
		template = defaultInviteTemplate
	}
	out := strings.ReplaceAll(template, "{{campName}}", campName)
	return strings.ReplaceAll(out, "{{link}}", link)
}

// Issue creates invites for each recipient, collecting per-recipient errors
// instead of failing the whole batch. Delivery is queued as a post-commit
// effect; a delivered invite is marked sent.
func (s *InviteService) Issue(ctx context.Context, principal *domain.Principal, campID string, recipients []InviteRecipient, message string) ([]InviteResult, error) {
	if !principal.OwnsCamp(campID) {
		return nil, apperrors.NewAuthorizationError("only the camp can send invites")
	}
	if len(recipients) == 0 {
		return nil, apperrors.NewValidationError("at least one recipient is required", nil)
	}

	camp, err := s.camps.GetByID(ctx, campID)
	if err != nil {
		return nil, fmt.Errorf("failed to load camp: %w", err)
	}
	if camp == nil {
		return nil, apperrors.NewNotFoundError("camp not found")
	}

	template := message
	if template == "" {
		template = camp.InviteTemplate
	}

	results := make([]InviteResult, 0, len(recipients))
	var effects []effect

	for _, rec := range recipients {
		result := InviteResult{Recipient: rec.Recipient}
		if rec.Recipient == "" {
			result.Error = "recipient is required"
			results = append(results, result)
			continue
		}
		if rec.Method != "email" && rec.Method != "sms" {
			result.Error = "method must be email or sms"
			results = append(results, result)
			continue
		}

		token, err := generateInviteToken()
		if err != nil {
			return nil, fmt.Errorf("failed to generate invite token: %w", err)
		}

		invite := &domain.Invite{
			ID:        uuid.NewString(),
			CampID:    campID,
			Token:     token,
			Recipient: rec.Recipient,
			Method:    rec.Method,
			Status:    domain.InviteStatusPending,
			SenderID:  principal.ID,
			Message:   template,
			ExpiresAt: time.Now().Add(domain.InviteExpiry),
		}
		if err := s.invites.Create(ctx, invite); err != nil {
			result.Error = "failed to create invite"
			s.logger.Error("invite creation failed",
				zap.String("camp_id", campID),
				zap.Error(err))
			results = append(results, result)
			continue
		}

		link := fmt.Sprintf("%s?token=%s", s.linkBase, token)
		rendered := RenderInviteTemplate(template, camp.Name, link)

		inv := invite
		effects = append(effects, effect{
			name: "notify_invite",
			run: func(ctx context.Context) error {
				if err := s.notifier.NotifyInvite(ctx, inv.Recipient, inv.Method, camp, inv.SenderID, link, rendered); err != nil {
					return err
				}
				return s.invites.MarkSent(ctx, inv.ID)
			},
		})

		result.Invite = invite
		results = append(results, result)
	}

	runEffects(ctx, s.logger, effects)
	return results, nil
}

// ListByCamp returns the camp's invites, lazily expiring overdue ones first.
func (s *InviteService) ListByCamp(ctx context.Context, principal *domain.Principal, campID string, status *domain.InviteStatus) ([]domain.Invite, error) {
	if !principal.OwnsCamp(campID) {
		return nil, apperrors.NewAuthorizationError("only the camp can list invites")
	}

	if expired, err := s.invites.ExpireOverdue(ctx, campID, time.Now()); err != nil {
		s.logger.Warn("failed to expire overdue invites",
			zap.String("camp_id", campID),
			zap.Error(err))
	} else if expired > 0 {
		s.logger.Info("expired overdue invites",
			zap.String("camp_id", campID),
			zap.Int64("count", expired))
	}

	return s.invites.ListByCamp(ctx, campID, status)
}

// MarkSent records delivery. Forward-only.
func (s *InviteService) MarkSent(ctx context.Context, inviteID string) error {
	if err := s.invites.MarkSent(ctx, inviteID); err != nil {
		if err == domain.ErrInviteFinalized {
			return apperrors.NewConflictError("invite is no longer pending", nil)
		}
		return fmt.Errorf("failed to mark invite sent: %w", err)
	}
	return nil
}

// Correlate ties a submitted application back to the invite that prompted
// it: exact token match first, then the most recent open invite for the
// applicant's email. Idempotent; a second call for the same application
// cannot finalize a second invite. Returns nil when nothing matches.
func (s *InviteService) Correlate(ctx context.Context, campID, applicantID, applicantEmail, token string) (*domain.Invite, error) {
	now := time.Now()

	var invite *domain.Invite
	if token != "" {
		found, err := s.invites.GetByToken(ctx, campID, token)
		if err != nil {
			return nil, fmt.Errorf("failed to look up invite token: %w", err)
		}
		if found != nil {
			if found.Status == domain.InviteStatusApplied && found.AppliedBy == applicantID {
				return found, nil
			}
			if found.IsOpen(now) {
				invite = found
			}
		}
	}

	if invite == nil && applicantEmail != "" {
		found, err := s.invites.FindOpenByRecipient(ctx, campID, applicantEmail, now)
		if err != nil {
			return nil, fmt.Errorf("failed to look up invite by recipient: %w", err)
		}
		invite = found
	}

	if invite == nil {
		return nil, nil
	}

	if !s.cache.TryCorrelateLock(ctx, invite.ID) {
		// Another request already finalized this invite.
		return s.invites.GetByID(ctx, invite.ID)
	}

	marked, err := s.invites.MarkApplied(ctx, invite.ID, applicantID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to finalize invite: %w", err)
	}
	if !marked {
		// Lost the race to the conditional update; the invite is already final.
		return s.invites.GetByID(ctx, invite.ID)
	}

	invite.Status = domain.InviteStatusApplied
	invite.AppliedBy = applicantID
	invite.AppliedAt = &now
	return invite, nil
}

func generateInviteToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
