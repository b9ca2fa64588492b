package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"camphub-be/internal/domain"
)

// In-memory repository fakes preserving the storage-level atomic semantics
// (conditional updates, unique constraints) the services rely on.

type fakeSlotRepo struct {
	mu    sync.Mutex
	slots map[string]*domain.CallSlot
}

func newFakeSlotRepo() *fakeSlotRepo {
	return &fakeSlotRepo{slots: map[string]*domain.CallSlot{}}
}

func (f *fakeSlotRepo) Create(_ context.Context, slot *domain.CallSlot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *slot
	cp.IsAvailable = cp.CurrentParticipants < cp.MaxParticipants
	if cp.Participants == nil {
		cp.Participants = []string{}
	}
	f.slots[slot.ID] = &cp
	slot.IsAvailable = cp.IsAvailable
	return nil
}

func (f *fakeSlotRepo) GetByID(_ context.Context, id string) (*domain.CallSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	slot, ok := f.slots[id]
	if !ok {
		return nil, nil
	}
	cp := *slot
	cp.Participants = append([]string(nil), slot.Participants...)
	return &cp, nil
}

func (f *fakeSlotRepo) ListByCamp(_ context.Context, campID string) ([]domain.CallSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.CallSlot
	for _, s := range f.slots {
		if s.CampID == campID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSlotRepo) ListAvailable(_ context.Context, campID string, afterDate *time.Time) ([]domain.CallSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.CallSlot
	for _, s := range f.slots {
		if s.CampID != campID || !s.IsAvailable {
			continue
		}
		if afterDate != nil && s.Date.Before(*afterDate) {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeSlotRepo) Reserve(_ context.Context, slotID, applicantID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	slot, ok := f.slots[slotID]
	if !ok {
		return domain.ErrNotFound
	}
	if slot.HasParticipant(applicantID) {
		return domain.ErrSlotReserved
	}
	if slot.CurrentParticipants >= slot.MaxParticipants {
		return domain.ErrSlotFull
	}
	slot.CurrentParticipants++
	slot.Participants = append(slot.Participants, applicantID)
	slot.IsAvailable = slot.CurrentParticipants < slot.MaxParticipants
	return nil
}

func (f *fakeSlotRepo) Release(_ context.Context, slotID, applicantID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	slot, ok := f.slots[slotID]
	if !ok {
		return domain.ErrNotFound
	}
	if slot.HasParticipant(applicantID) {
		var kept []string
		for _, p := range slot.Participants {
			if p != applicantID {
				kept = append(kept, p)
			}
		}
		slot.Participants = kept
		if slot.CurrentParticipants > 0 {
			slot.CurrentParticipants--
		}
	}
	slot.IsAvailable = true
	return nil
}

func (f *fakeSlotRepo) Delete(_ context.Context, slotID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.slots[slotID]; !ok {
		return domain.ErrNotFound
	}
	delete(f.slots, slotID)
	return nil
}

type fakeAppRepo struct {
	mu   sync.Mutex
	apps map[string]*domain.Application

	// failNextCreate is returned by the next Create call, once. Used to
	// simulate losing the insert race to a concurrent writer.
	failNextCreate error
}

func newFakeAppRepo() *fakeAppRepo {
	return &fakeAppRepo{apps: map[string]*domain.Application{}}
}

func (f *fakeAppRepo) Create(_ context.Context, app *domain.Application) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failNextCreate; err != nil {
		f.failNextCreate = nil
		return err
	}
	for _, a := range f.apps {
		if a.ApplicantID == app.ApplicantID && a.CampID == app.CampID && !a.Status.IsTerminal() {
			return domain.ErrDuplicateActive
		}
	}
	now := time.Now()
	app.CreatedAt = now
	app.UpdatedAt = now
	cp := *app
	f.apps[app.ID] = &cp
	return nil
}

func (f *fakeAppRepo) GetByID(_ context.Context, id string) (*domain.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	app, ok := f.apps[id]
	if !ok {
		return nil, nil
	}
	cp := *app
	return &cp, nil
}

func (f *fakeAppRepo) GetActive(_ context.Context, applicantID, campID string) (*domain.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.apps {
		if a.ApplicantID == applicantID && a.CampID == campID && !a.Status.IsTerminal() {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeAppRepo) ListByApplicant(_ context.Context, applicantID string) ([]domain.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Application
	for _, a := range f.apps {
		if a.ApplicantID == applicantID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeAppRepo) ListByCamp(_ context.Context, campID string, status *domain.Status) ([]domain.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Application
	for _, a := range f.apps {
		if a.CampID != campID {
			continue
		}
		if status != nil && a.Status != *status {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeAppRepo) UpdateStatus(_ context.Context, id string, status domain.Status, reviewedBy, notes string, entry domain.ActionEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	app, ok := f.apps[id]
	if !ok {
		return domain.ErrNotFound
	}
	now := time.Now()
	app.Status = status
	app.ReviewedBy = reviewedBy
	app.ReviewedAt = &now
	app.ReviewNotes = notes
	app.ActionHistory = append(app.ActionHistory, entry)
	app.UpdatedAt = now
	return nil
}

func (f *fakeAppRepo) AppendMessage(_ context.Context, id string, msg domain.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	app, ok := f.apps[id]
	if !ok {
		return domain.ErrNotFound
	}
	app.Messages = append(app.Messages, msg)
	return nil
}

func (f *fakeAppRepo) ResetActiveToWithdrawn(_ context.Context, applicantID, campID string, entry domain.ActionEntry) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, a := range f.apps {
		if a.ApplicantID == applicantID && a.CampID == campID && !a.Status.IsTerminal() {
			a.Status = domain.StatusWithdrawn
			a.ActionHistory = append(a.ActionHistory, entry)
			count++
		}
	}
	return count, nil
}

func (f *fakeAppRepo) CountActiveBySlot(_ context.Context, slotID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, a := range f.apps {
		if a.Data.CallSlotID == slotID && !a.Status.IsTerminal() {
			count++
		}
	}
	return count, nil
}

type fakeInviteRepo struct {
	mu      sync.Mutex
	invites map[string]*domain.Invite
}

func newFakeInviteRepo() *fakeInviteRepo {
	return &fakeInviteRepo{invites: map[string]*domain.Invite{}}
}

func (f *fakeInviteRepo) Create(_ context.Context, invite *domain.Invite) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	invite.CreatedAt = time.Now()
	cp := *invite
	f.invites[invite.ID] = &cp
	return nil
}

func (f *fakeInviteRepo) GetByID(_ context.Context, id string) (*domain.Invite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invites[id]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (f *fakeInviteRepo) GetByToken(_ context.Context, campID, token string) (*domain.Invite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, inv := range f.invites {
		if inv.CampID == campID && inv.Token == token {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeInviteRepo) FindOpenByRecipient(_ context.Context, campID, recipient string, now time.Time) (*domain.Invite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var best *domain.Invite
	for _, inv := range f.invites {
		if inv.CampID != campID || inv.Recipient != recipient || !inv.IsOpen(now) {
			continue
		}
		if best == nil || inv.CreatedAt.After(best.CreatedAt) {
			best = inv
		}
	}
	if best == nil {
		return nil, nil
	}
	cp := *best
	return &cp, nil
}

func (f *fakeInviteRepo) ListByCamp(_ context.Context, campID string, status *domain.InviteStatus) ([]domain.Invite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Invite
	for _, inv := range f.invites {
		if inv.CampID != campID {
			continue
		}
		if status != nil && inv.Status != *status {
			continue
		}
		out = append(out, *inv)
	}
	return out, nil
}

func (f *fakeInviteRepo) MarkSent(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invites[id]
	if !ok || inv.Status != domain.InviteStatusPending {
		return domain.ErrInviteFinalized
	}
	inv.Status = domain.InviteStatusSent
	return nil
}

func (f *fakeInviteRepo) MarkApplied(_ context.Context, id, applicantID string, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invites[id]
	if !ok {
		return false, nil
	}
	if inv.Status != domain.InviteStatusPending && inv.Status != domain.InviteStatusSent {
		return false, nil
	}
	inv.Status = domain.InviteStatusApplied
	inv.AppliedBy = applicantID
	inv.AppliedAt = &at
	return true, nil
}

func (f *fakeInviteRepo) ExpireOverdue(_ context.Context, campID string, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, inv := range f.invites {
		if inv.CampID == campID && (inv.Status == domain.InviteStatusPending || inv.Status == domain.InviteStatusSent) && !inv.ExpiresAt.After(now) {
			inv.Status = domain.InviteStatusExpired
			count++
		}
	}
	return count, nil
}

type fakeMemberRepo struct {
	mu      sync.Mutex
	members map[string]*domain.Member
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{members: map[string]*domain.Member{}}
}

func (f *fakeMemberRepo) Create(_ context.Context, member *domain.Member) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	// Upsert on (camp_id, user_id), mirroring the unique constraint.
	for _, m := range f.members {
		if m.CampID == member.CampID && m.UserID == member.UserID {
			m.Role = member.Role
			m.Status = member.Status
			m.ReviewedAt = member.ReviewedAt
			m.ReviewedBy = member.ReviewedBy
			member.ID = m.ID
			return nil
		}
	}
	member.CreatedAt = time.Now()
	member.UpdatedAt = member.CreatedAt
	cp := *member
	f.members[member.ID] = &cp
	return nil
}

func (f *fakeMemberRepo) GetByID(_ context.Context, id string) (*domain.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMemberRepo) GetByCampAndUser(_ context.Context, campID, userID string) (*domain.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.members {
		if m.CampID == campID && m.UserID == userID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeMemberRepo) ListActiveByCamp(_ context.Context, campID string) ([]domain.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Member
	for _, m := range f.members {
		if m.CampID == campID && m.Status == domain.MemberStatusActive {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeMemberRepo) UpdateStatus(_ context.Context, id string, status domain.MemberStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[id]
	if !ok {
		return domain.ErrNotFound
	}
	m.Status = status
	return nil
}

type fakeRosterRepo struct {
	mu      sync.Mutex
	rosters map[string]*domain.Roster
	entries map[string]map[string]*domain.RosterMemberEntry

	members  *fakeMemberRepo
	profiles *fakeProfileRepo
}

func newFakeRosterRepo(members *fakeMemberRepo, profiles *fakeProfileRepo) *fakeRosterRepo {
	return &fakeRosterRepo{
		rosters:  map[string]*domain.Roster{},
		entries:  map[string]map[string]*domain.RosterMemberEntry{},
		members:  members,
		profiles: profiles,
	}
}

func (f *fakeRosterRepo) CreateWithRotation(_ context.Context, roster *domain.Roster, memberIDs []string, actorID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rosters {
		if r.CampID == roster.CampID && r.IsActive && !r.IsArchived {
			r.IsActive = false
			r.IsArchived = true
		}
	}
	roster.IsActive = true
	roster.IsArchived = false
	roster.CreatedAt = time.Now()
	roster.UpdatedAt = roster.CreatedAt
	cp := *roster
	f.rosters[roster.ID] = &cp
	f.entries[roster.ID] = map[string]*domain.RosterMemberEntry{}
	for _, memberID := range memberIDs {
		f.entries[roster.ID][memberID] = &domain.RosterMemberEntry{
			RosterID:   roster.ID,
			MemberID:   memberID,
			AddedAt:    time.Now(),
			AddedBy:    actorID,
			DuesStatus: domain.DuesUnpaid,
		}
	}
	return nil
}

func (f *fakeRosterRepo) GetByID(_ context.Context, id string) (*domain.Roster, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rosters[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRosterRepo) GetActive(_ context.Context, campID string) (*domain.Roster, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rosters {
		if r.CampID == campID && r.IsActive && !r.IsArchived {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeRosterRepo) ListByCamp(_ context.Context, campID string) ([]domain.Roster, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Roster
	for _, r := range f.rosters {
		if r.CampID == campID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRosterRepo) Rename(_ context.Context, id, name, description string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rosters[id]
	if !ok || r.IsArchived {
		return domain.ErrNotFound
	}
	r.Name = name
	r.Description = description
	return nil
}

func (f *fakeRosterRepo) Archive(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rosters[id]
	if !ok || r.IsArchived {
		return false, nil
	}
	r.IsArchived = true
	r.IsActive = false
	return true, nil
}

func (f *fakeRosterRepo) AddEntry(_ context.Context, entry *domain.RosterMemberEntry) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries, ok := f.entries[entry.RosterID]
	if !ok {
		entries = map[string]*domain.RosterMemberEntry{}
		f.entries[entry.RosterID] = entries
	}
	if _, exists := entries[entry.MemberID]; exists {
		return false, nil
	}
	entry.AddedAt = time.Now()
	cp := *entry
	entries[entry.MemberID] = &cp
	return true, nil
}

func (f *fakeRosterRepo) GetEntry(_ context.Context, rosterID, memberID string) (*domain.RosterMemberEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[rosterID][memberID]
	if !ok {
		return nil, nil
	}
	cp := *entry
	return &cp, nil
}

func (f *fakeRosterRepo) RemoveEntry(_ context.Context, rosterID, memberID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.entries[rosterID][memberID]; !ok {
		return false, nil
	}
	delete(f.entries[rosterID], memberID)
	return true, nil
}

func (f *fakeRosterRepo) MergeOverrides(_ context.Context, rosterID, memberID string, patch domain.MemberOverrides) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[rosterID][memberID]
	if !ok {
		return domain.ErrNotFound
	}
	entry.Overrides.Merge(patch)
	return nil
}

func (f *fakeRosterRepo) SetDues(_ context.Context, rosterID, memberID string, status domain.DuesStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[rosterID][memberID]
	if !ok {
		return domain.ErrNotFound
	}
	entry.DuesStatus = status
	return nil
}

func (f *fakeRosterRepo) SetCampLead(_ context.Context, rosterID, memberID string, isLead bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[rosterID][memberID]
	if !ok {
		return domain.ErrNotFound
	}
	entry.IsCampLead = isLead
	return nil
}

func (f *fakeRosterRepo) ListMemberViews(ctx context.Context, rosterID string) ([]domain.RosterMemberView, error) {
	f.mu.Lock()
	entries := make([]*domain.RosterMemberEntry, 0, len(f.entries[rosterID]))
	for _, e := range f.entries[rosterID] {
		cp := *e
		entries = append(entries, &cp)
	}
	f.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].AddedAt.Before(entries[j].AddedAt) })

	var views []domain.RosterMemberView
	for _, e := range entries {
		v := domain.RosterMemberView{Entry: *e}
		if m, _ := f.members.GetByID(ctx, e.MemberID); m != nil {
			v.Member = *m
			if p, _ := f.profiles.GetByUserID(ctx, m.UserID); p != nil {
				v.Profile = *p
			}
		}
		views = append(views, v)
	}
	return views, nil
}

type fakeCampRepo struct {
	mu    sync.Mutex
	camps map[string]*domain.Camp
}

func newFakeCampRepo() *fakeCampRepo {
	return &fakeCampRepo{camps: map[string]*domain.Camp{}}
}

func (f *fakeCampRepo) GetByID(_ context.Context, id string) (*domain.Camp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.camps[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCampRepo) IncrementMembers(_ context.Context, campID string, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.camps[campID]
	if !ok {
		return domain.ErrNotFound
	}
	c.TotalMembers += delta
	if c.TotalMembers < 0 {
		c.TotalMembers = 0
	}
	return nil
}

func (f *fakeCampRepo) IncrementApplications(_ context.Context, campID string, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.camps[campID]
	if !ok {
		return domain.ErrNotFound
	}
	c.TotalApplications += delta
	if c.TotalApplications < 0 {
		c.TotalApplications = 0
	}
	return nil
}

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*domain.ApplicantProfile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: map[string]*domain.ApplicantProfile{}}
}

func (f *fakeProfileRepo) GetByUserID(_ context.Context, userID string) (*domain.ApplicantProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfileRepo) SetCampName(_ context.Context, userID, campName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		return domain.ErrNotFound
	}
	p.CampName = campName
	return nil
}

type fakeActivityRepo struct {
	mu   sync.Mutex
	rows []string
}

func (f *fakeActivityRepo) Insert(_ context.Context, _, _, _, activityType string, _ map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, activityType)
	return nil
}

type notifierCall struct {
	kind      string
	recipient string
	status    domain.Status
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []notifierCall
	fail  bool
}

func (f *fakeNotifier) NotifyApplicationReceived(_ context.Context, _ *domain.Camp, applicant *domain.ApplicantProfile, _ *domain.Application) error {
	return f.record("application_received", emailOf(applicant), "")
}

func (f *fakeNotifier) NotifyStatusChanged(_ context.Context, _ *domain.Application, applicant *domain.ApplicantProfile, _ *domain.Camp, status domain.Status) error {
	return f.record("status_changed", emailOf(applicant), status)
}

func (f *fakeNotifier) NotifyInvite(_ context.Context, recipient, _ string, _ *domain.Camp, _, _, _ string) error {
	return f.record("invite", recipient, "")
}

func (f *fakeNotifier) record(kind, recipient string, status domain.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return context.DeadlineExceeded
	}
	f.calls = append(f.calls, notifierCall{kind: kind, recipient: recipient, status: status})
	return nil
}

func emailOf(p *domain.ApplicantProfile) string {
	if p == nil {
		return ""
	}
	return p.Email
}
