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

// CallSlotService owns the capacity-bounded orientation call slots.
type CallSlotService struct {
	slots  repository.CallSlotRepository
	apps   repository.ApplicationRepository
	cache  *CacheService
	logger *zap.Logger
}

func NewCallSlotService(slots repository.CallSlotRepository, apps repository.ApplicationRepository, cache *CacheService, logger *zap.Logger) *CallSlotService {
	return &CallSlotService{slots: slots, apps: apps, cache: cache, logger: logger}
}

// CreateSlotRequest is the staff-facing creation payload.
type CreateSlotRequest struct {
	Date            time.Time `json:"date"`
	StartTime       string    `json:"startTime"`
	EndTime         string    `json:"endTime"`
	MaxParticipants int       `json:"maxParticipants"`
}

func (s *CallSlotService) Create(ctx context.Context, principal *domain.Principal, campID string, req CreateSlotRequest) (*domain.CallSlot, error) {
	if !principal.OwnsCamp(campID) {
		return nil, apperrors.NewAuthorizationError("only the camp can manage call slots")
	}
	if req.MaxParticipants < 1 {
		return nil, apperrors.NewValidationError("maxParticipants must be at least 1", nil)
	}
	if req.StartTime == "" || req.EndTime == "" {
		return nil, apperrors.NewValidationError("startTime and endTime are required", nil)
	}

	slot := &domain.CallSlot{
		ID:              uuid.NewString(),
		CampID:          campID,
		Date:            req.Date,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		MaxParticipants: req.MaxParticipants,
		CreatedBy:       principal.ID,
	}
	if err := s.slots.Create(ctx, slot); err != nil {
		return nil, fmt.Errorf("failed to create call slot: %w", err)
	}

	s.cache.InvalidateSlots(ctx, campID)
	return slot, nil
}

func (s *CallSlotService) ListByCamp(ctx context.Context, campID string) ([]domain.CallSlot, error) {
	return s.slots.ListByCamp(ctx, campID)
}

// ListAvailable returns open slots, optionally on or after a date. Served
// through the cache; invalidated on every mutation.
func (s *CallSlotService) ListAvailable(ctx context.Context, campID string, afterDate *time.Time) ([]domain.CallSlot, error) {
	if afterDate != nil {
		// Date-filtered listings bypass the cache; only the unfiltered
		// listing is hot enough to matter.
		return s.slots.ListAvailable(ctx, campID, afterDate)
	}
	return s.cache.GetAvailableSlotsWithCache(ctx, campID, func(ctx context.Context) ([]domain.CallSlot, error) {
		return s.slots.ListAvailable(ctx, campID, nil)
	})
}

// Reserve takes one seat for the applicant. The repository serializes the
// capacity check; losers get domain.ErrSlotFull, never a silent
// over-capacity seat. Callers distinguish the sentinels (the apply flow
// treats an existing seat held by the same applicant as satisfied).
func (s *CallSlotService) Reserve(ctx context.Context, slotID, applicantID string) error {
	if err := s.slots.Reserve(ctx, slotID, applicantID); err != nil {
		return err
	}

	slot, err := s.slots.GetByID(ctx, slotID)
	if err == nil && slot != nil {
		s.cache.InvalidateSlots(ctx, slot.CampID)
	}
	return nil
}

// Release gives the seat back and reopens the slot. Idempotent.
func (s *CallSlotService) Release(ctx context.Context, slotID, applicantID string) error {
	slot, err := s.slots.GetByID(ctx, slotID)
	if err != nil {
		return fmt.Errorf("failed to load call slot: %w", err)
	}
	if slot == nil {
		return domain.ErrNotFound
	}

	if err := s.slots.Release(ctx, slotID, applicantID); err != nil {
		return err
	}

	s.cache.InvalidateSlots(ctx, slot.CampID)
	return nil
}

// Delete removes a slot, refusing while any non-terminal application still
// references it.
func (s *CallSlotService) Delete(ctx context.Context, principal *domain.Principal, slotID string) error {
	slot, err := s.slots.GetByID(ctx, slotID)
	if err != nil {
		return fmt.Errorf("failed to load call slot: %w", err)
	}
	if slot == nil {
		return apperrors.NewNotFoundError("call slot not found")
	}
	if !principal.OwnsCamp(slot.CampID) {
		return apperrors.NewAuthorizationError("only the camp can manage call slots")
	}

	active, err := s.apps.CountActiveBySlot(ctx, slotID)
	if err != nil {
		return fmt.Errorf("failed to check slot references: %w", err)
	}
	if active > 0 {
		return domain.ErrSlotInUse
	}

	if err := s.slots.Delete(ctx, slotID); err != nil {
		if err == domain.ErrNotFound {
			return apperrors.NewNotFoundError("call slot not found")
		}
		return fmt.Errorf("failed to delete call slot: %w", err)
	}

	s.cache.InvalidateSlots(ctx, slot.CampID)
	return nil
}
