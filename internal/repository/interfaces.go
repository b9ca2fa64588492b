package repository

import (
	"context"
	"time"

	"camphub-be/internal/domain"
)

// ApplicationRepository persists applications. Create relies on a partial
// unique index over non-terminal rows and reports races as
// domain.ErrDuplicateActive.
type ApplicationRepository interface {
	Create(ctx context.Context, app *domain.Application) error
	GetByID(ctx context.Context, id string) (*domain.Application, error)
	GetActive(ctx context.Context, applicantID, campID string) (*domain.Application, error)
	ListByApplicant(ctx context.Context, applicantID string) ([]domain.Application, error)
	ListByCamp(ctx context.Context, campID string, status *domain.Status) ([]domain.Application, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status, reviewedBy, notes string, entry domain.ActionEntry) error
	AppendMessage(ctx context.Context, id string, msg domain.Message) error
	ResetActiveToWithdrawn(ctx context.Context, applicantID, campID string, entry domain.ActionEntry) (int64, error)
	CountActiveBySlot(ctx context.Context, slotID string) (int64, error)
}

// CallSlotRepository persists call slots. Reserve and Release are the only
// mutation paths for participant state and must be atomic per slot.
type CallSlotRepository interface {
	Create(ctx context.Context, slot *domain.CallSlot) error
	GetByID(ctx context.Context, id string) (*domain.CallSlot, error)
	ListByCamp(ctx context.Context, campID string) ([]domain.CallSlot, error)
	ListAvailable(ctx context.Context, campID string, afterDate *time.Time) ([]domain.CallSlot, error)
	Reserve(ctx context.Context, slotID, applicantID string) error
	Release(ctx context.Context, slotID, applicantID string) error
	Delete(ctx context.Context, slotID string) error
}

// InviteRepository persists invites. MarkApplied is conditional on the
// invite still being open so double correlation cannot finalize twice.
type InviteRepository interface {
	Create(ctx context.Context, invite *domain.Invite) error
	GetByID(ctx context.Context, id string) (*domain.Invite, error)
	GetByToken(ctx context.Context, campID, token string) (*domain.Invite, error)
	FindOpenByRecipient(ctx context.Context, campID, recipient string, now time.Time) (*domain.Invite, error)
	ListByCamp(ctx context.Context, campID string, status *domain.InviteStatus) ([]domain.Invite, error)
	MarkSent(ctx context.Context, id string) error
	MarkApplied(ctx context.Context, id, applicantID string, at time.Time) (bool, error)
	ExpireOverdue(ctx context.Context, campID string, now time.Time) (int64, error)
}

// MemberRepository persists camp-scoped member records.
type MemberRepository interface {
	Create(ctx context.Context, member *domain.Member) error
	GetByID(ctx context.Context, id string) (*domain.Member, error)
	GetByCampAndUser(ctx context.Context, campID, userID string) (*domain.Member, error)
	ListActiveByCamp(ctx context.Context, campID string) ([]domain.Member, error)
	UpdateStatus(ctx context.Context, id string, status domain.MemberStatus) error
}

// RosterRepository persists rosters and their member entries. Rotation
// (archive old active, create new, populate) runs in one transaction.
type RosterRepository interface {
	CreateWithRotation(ctx context.Context, roster *domain.Roster, memberIDs []string, actorID string) error
	GetByID(ctx context.Context, id string) (*domain.Roster, error)
	GetActive(ctx context.Context, campID string) (*domain.Roster, error)
	ListByCamp(ctx context.Context, campID string) ([]domain.Roster, error)
	Rename(ctx context.Context, id, name, description string) error
	Archive(ctx context.Context, id string) (bool, error)
	AddEntry(ctx context.Context, entry *domain.RosterMemberEntry) (bool, error)
	GetEntry(ctx context.Context, rosterID, memberID string) (*domain.RosterMemberEntry, error)
	RemoveEntry(ctx context.Context, rosterID, memberID string) (bool, error)
	MergeOverrides(ctx context.Context, rosterID, memberID string, patch domain.MemberOverrides) error
	SetDues(ctx context.Context, rosterID, memberID string, status domain.DuesStatus) error
	SetCampLead(ctx context.Context, rosterID, memberID string, isLead bool) error
	ListMemberViews(ctx context.Context, rosterID string) ([]domain.RosterMemberView, error)
}

// CampRepository reads camp records and maintains their counters.
type CampRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Camp, error)
	IncrementMembers(ctx context.Context, campID string, delta int) error
	IncrementApplications(ctx context.Context, campID string, delta int) error
}

// ProfileRepository reads locally-stored profile snapshots and clears the
// camp-name denormalization on withdrawal.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*domain.ApplicantProfile, error)
	SetCampName(ctx context.Context, userID, campName string) error
}

// ActivityRepository appends activity log rows. Best-effort at call sites.
type ActivityRepository interface {
	Insert(ctx context.Context, entityType, entityID, actorID, activityType string, details map[string]any) error
}
