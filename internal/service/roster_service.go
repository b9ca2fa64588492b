package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"time"

	"camphub-be/internal/domain"
	"camphub-be/internal/repository"
	apperrors "camphub-be/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RosterService owns the single-active-roster invariant and the per-cycle
// member entry lifecycle: overrides, dues, and camp-lead delegation.
type RosterService struct {
	rosters  repository.RosterRepository
	members  repository.MemberRepository
	activity ActivityRecorder
	logger   *zap.Logger
}

func NewRosterService(rosters repository.RosterRepository, members repository.MemberRepository, activity ActivityRecorder, logger *zap.Logger) *RosterService {
	return &RosterService{rosters: rosters, members: members, activity: activity, logger: logger}
}

// RosterView is a roster with its member entries joined and overrides
// applied for display.
type RosterView struct {
	Roster  domain.Roster      `json:"roster"`
	Members []RosterMemberItem `json:"members"`
}

type RosterMemberItem struct {
	MemberID   string                  `json:"member_id"`
	AddedAt    time.Time               `json:"added_at"`
	AddedBy    string                  `json:"added_by"`
	DuesStatus domain.DuesStatus       `json:"dues_status"`
	IsCampLead bool                    `json:"is_camp_lead"`
	Role       domain.MemberRole       `json:"role"`
	Status     domain.MemberStatus     `json:"status"`
	Profile    domain.ApplicantProfile `json:"profile"`
}

// Create rotates the camp onto a fresh roster: the current active roster is
// archived and the new one is created active, pre-populated with every
// active member, in one transaction.
func (s *RosterService) Create(ctx context.Context, principal *domain.Principal, name, description string) (*domain.Roster, error) {
	if !principal.IsCampAccount() {
		return nil, apperrors.NewAuthorizationError("only camp accounts manage rosters")
	}
	if name == "" {
		return nil, apperrors.NewValidationError("roster name is required", nil)
	}

	activeMembers, err := s.members.ListActiveByCamp(ctx, principal.CampID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active members: %w", err)
	}
	memberIDs := make([]string, 0, len(activeMembers))
	for _, m := range activeMembers {
		memberIDs = append(memberIDs, m.ID)
	}

	roster := &domain.Roster{
		ID:          uuid.NewString(),
		CampID:      principal.CampID,
		Name:        name,
		Description: description,
		CreatedBy:   principal.ID,
	}
	if err := s.rosters.CreateWithRotation(ctx, roster, memberIDs, principal.ID); err != nil {
		return nil, fmt.Errorf("failed to rotate roster: %w", err)
	}

	s.activity.Record(ctx, EntityCamp, principal.CampID, principal.ID, "roster_created",
		map[string]any{"rosterId": roster.ID, "members": len(memberIDs)})

	return roster, nil
}

func (s *RosterService) ListByCamp(ctx context.Context, principal *domain.Principal) ([]domain.Roster, error) {
	if !principal.IsCampAccount() {
		return nil, apperrors.NewAuthorizationError("only camp accounts manage rosters")
	}
	return s.rosters.ListByCamp(ctx, principal.CampID)
}

func (s *RosterService) GetActive(ctx context.Context, principal *domain.Principal) (*domain.Roster, error) {
	if !principal.IsCampAccount() {
		return nil, apperrors.NewAuthorizationError("only camp accounts manage rosters")
	}
	roster, err := s.rosters.GetActive(ctx, principal.CampID)
	if err != nil {
		return nil, fmt.Errorf("failed to load active roster: %w", err)
	}
	if roster == nil {
		return nil, apperrors.NewNotFoundError("no active roster")
	}
	return roster, nil
}

// GetWithMembers returns the roster and its display view, per-cycle
// overrides winning over canonical profile fields.
func (s *RosterService) GetWithMembers(ctx context.Context, principal *domain.Principal, rosterID string) (*RosterView, error) {
	roster, err := s.authorizedRoster(ctx, principal, rosterID)
	if err != nil {
		return nil, err
	}

	views, err := s.rosters.ListMemberViews(ctx, rosterID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster members: %w", err)
	}

	items := make([]RosterMemberItem, 0, len(views))
	for i := range views {
		v := &views[i]
		items = append(items, RosterMemberItem{
			MemberID:   v.Entry.MemberID,
			AddedAt:    v.Entry.AddedAt,
			AddedBy:    v.Entry.AddedBy,
			DuesStatus: v.Entry.DuesStatus,
			IsCampLead: v.Entry.IsCampLead,
			Role:       v.Member.Role,
			Status:     v.Member.Status,
			Profile:    v.ApplyOverrides(),
		})
	}
	return &RosterView{Roster: *roster, Members: items}, nil
}

func (s *RosterService) Rename(ctx context.Context, principal *domain.Principal, rosterID, name, description string) (*domain.Roster, error) {
	if name == "" {
		return nil, apperrors.NewValidationError("roster name is required", nil)
	}
	roster, err := s.authorizedRoster(ctx, principal, rosterID)
	if err != nil {
		return nil, err
	}
	if roster.IsArchived {
		return nil, domain.ErrRosterArchived
	}

	if err := s.rosters.Rename(ctx, rosterID, name, description); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrRosterArchived
		}
		return nil, fmt.Errorf("failed to rename roster: %w", err)
	}
	roster.Name = name
	roster.Description = description
	return roster, nil
}

// Archive retires a roster for good. Archival is irreversible.
func (s *RosterService) Archive(ctx context.Context, principal *domain.Principal, rosterID string) error {
	if _, err := s.authorizedRoster(ctx, principal, rosterID); err != nil {
		return err
	}

	archived, err := s.rosters.Archive(ctx, rosterID)
	if err != nil {
		return fmt.Errorf("failed to archive roster: %w", err)
	}
	if !archived {
		return apperrors.NewConflictError("roster is already archived", nil)
	}

	s.activity.Record(ctx, EntityCamp, principal.CampID, principal.ID, "roster_archived",
		map[string]any{"rosterId": rosterID})
	return nil
}

// AddMember seats a member on the roster. Idempotent: adding an already
// seated member is a no-op, never a duplicate entry.
func (s *RosterService) AddMember(ctx context.Context, principal *domain.Principal, rosterID, memberID string) error {
	roster, err := s.authorizedRoster(ctx, principal, rosterID)
	if err != nil {
		return err
	}
	if roster.IsArchived {
		return domain.ErrRosterArchived
	}

	member, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		return fmt.Errorf("failed to load member: %w", err)
	}
	if member == nil || member.CampID != roster.CampID {
		return apperrors.NewNotFoundError("member not found")
	}

	entry := &domain.RosterMemberEntry{
		RosterID:   rosterID,
		MemberID:   memberID,
		AddedBy:    principal.ID,
		DuesStatus: domain.DuesUnpaid,
	}
	added, err := s.rosters.AddEntry(ctx, entry)
	if err != nil {
		return fmt.Errorf("failed to add roster entry: %w", err)
	}
	if added {
		s.activity.Record(ctx, EntityMember, memberID, principal.ID, "roster_member_added",
			map[string]any{"rosterId": rosterID})
	}
	return nil
}

// SetOverrides merges only the provided per-cycle fields into the entry's
// overrides; fields absent from the patch are untouched.
func (s *RosterService) SetOverrides(ctx context.Context, principal *domain.Principal, rosterID, memberID string, patch domain.MemberOverrides) error {
	roster, err := s.authorizedRoster(ctx, principal, rosterID)
	if err != nil {
		return err
	}
	if roster.IsArchived {
		return domain.ErrRosterArchived
	}

	if err := s.rosters.MergeOverrides(ctx, rosterID, memberID, patch); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperrors.NewNotFoundError("roster member not found")
		}
		return fmt.Errorf("failed to merge overrides: %w", err)
	}

	s.activity.Record(ctx, EntityMember, memberID, principal.ID, "roster_overrides_updated",
		map[string]any{"rosterId": rosterID})
	return nil
}

func (s *RosterService) SetDues(ctx context.Context, principal *domain.Principal, rosterID, memberID string, status domain.DuesStatus) error {
	if status != domain.DuesPaid && status != domain.DuesUnpaid {
		return apperrors.NewValidationError("dues status must be Paid or Unpaid", nil)
	}
	if _, err := s.authorizedRoster(ctx, principal, rosterID); err != nil {
		return err
	}

	if err := s.rosters.SetDues(ctx, rosterID, memberID, status); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperrors.NewNotFoundError("roster member not found")
		}
		return fmt.Errorf("failed to set dues: %w", err)
	}

	s.activity.Record(ctx, EntityMember, memberID, principal.ID, "roster_dues_updated",
		map[string]any{"rosterId": rosterID, "dues": status})
	return nil
}

// GrantCampLead delegates camp-lead duties to a roster member. Requires an
// active member; granting twice to the same member is a conflict. A second
// grant to a different member is allowed.
func (s *RosterService) GrantCampLead(ctx context.Context, principal *domain.Principal, rosterID, memberID string) error {
	if _, err := s.authorizedRoster(ctx, principal, rosterID); err != nil {
		return err
	}

	entry, err := s.rosters.GetEntry(ctx, rosterID, memberID)
	if err != nil {
		return fmt.Errorf("failed to load roster entry: %w", err)
	}
	if entry == nil {
		return apperrors.NewNotFoundError("roster member not found")
	}
	if entry.IsCampLead {
		return domain.ErrAlreadyCampLead
	}

	member, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		return fmt.Errorf("failed to load member: %w", err)
	}
	if member == nil || member.Status != domain.MemberStatusActive {
		return domain.ErrNotApproved
	}

	if err := s.rosters.SetCampLead(ctx, rosterID, memberID, true); err != nil {
		return fmt.Errorf("failed to grant camp lead: %w", err)
	}

	s.activity.Record(ctx, EntityMember, memberID, principal.ID, "camp_lead_granted",
		map[string]any{"rosterId": rosterID})
	return nil
}

func (s *RosterService) RevokeCampLead(ctx context.Context, principal *domain.Principal, rosterID, memberID string) error {
	if _, err := s.authorizedRoster(ctx, principal, rosterID); err != nil {
		return err
	}

	entry, err := s.rosters.GetEntry(ctx, rosterID, memberID)
	if err != nil {
		return fmt.Errorf("failed to load roster entry: %w", err)
	}
	if entry == nil {
		return apperrors.NewNotFoundError("roster member not found")
	}
	if !entry.IsCampLead {
		return domain.ErrNotCampLead
	}

	if err := s.rosters.SetCampLead(ctx, rosterID, memberID, false); err != nil {
		return fmt.Errorf("failed to revoke camp lead: %w", err)
	}

	s.activity.Record(ctx, EntityMember, memberID, principal.ID, "camp_lead_revoked",
		map[string]any{"rosterId": rosterID})
	return nil
}

// ExportCSV renders the roster view as CSV, overrides applied.
func (s *RosterService) ExportCSV(ctx context.Context, principal *domain.Principal, rosterID string) ([]byte, error) {
	view, err := s.GetWithMembers(ctx, principal, rosterID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"First Name", "Last Name", "Playa Name", "Email", "Phone", "City",
		"Years Burned", "Dues", "Camp Lead", "Has Ticket", "Has Vehicle Pass"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, m := range view.Members {
		p := m.Profile
		row := []string{
			p.FirstName,
			p.LastName,
			p.PlayaName,
			p.Email,
			p.Phone,
			p.City,
			strconv.Itoa(p.YearsBurned),
			string(m.DuesStatus),
			strconv.FormatBool(m.IsCampLead),
			boolPtrString(p.HasTicket),
			boolPtrString(p.HasVehiclePass),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *RosterService) authorizedRoster(ctx context.Context, principal *domain.Principal, rosterID string) (*domain.Roster, error) {
	roster, err := s.rosters.GetByID(ctx, rosterID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}
	if roster == nil {
		return nil, apperrors.NewNotFoundError("roster not found")
	}
	if !principal.OwnsCamp(roster.CampID) {
		return nil, apperrors.NewAuthorizationError("roster belongs to another camp")
	}
	return roster, nil
}

func boolPtrString(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}
