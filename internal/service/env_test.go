package service

import (
	"camphub-be/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// testEnv wires the services over the in-memory fakes with no Redis.
type testEnv struct {
	slots    *fakeSlotRepo
	apps     *fakeAppRepo
	invites  *fakeInviteRepo
	members  *fakeMemberRepo
	rosters  *fakeRosterRepo
	camps    *fakeCampRepo
	profiles *fakeProfileRepo
	notifier *fakeNotifier
	activity *fakeActivityRepo

	slotSvc    *CallSlotService
	inviteSvc  *InviteService
	appSvc     *ApplicationService
	rosterSvc  *RosterService
	membership *MembershipService
}

func newTestEnv() *testEnv {
	logger := zap.NewNop()
	cache := NewCacheService(nil, logger)

	env := &testEnv{
		slots:    newFakeSlotRepo(),
		apps:     newFakeAppRepo(),
		invites:  newFakeInviteRepo(),
		members:  newFakeMemberRepo(),
		camps:    newFakeCampRepo(),
		profiles: newFakeProfileRepo(),
		notifier: &fakeNotifier{},
		activity: &fakeActivityRepo{},
	}
	env.rosters = newFakeRosterRepo(env.members, env.profiles)

	recorder := NewDBActivityRecorder(env.activity, logger)
	env.slotSvc = NewCallSlotService(env.slots, env.apps, cache, logger)
	env.inviteSvc = NewInviteService(env.invites, env.camps, cache, env.notifier, logger, "https://join.example/apply")
	env.membership = NewMembershipService(env.members, env.rosters, env.apps, env.slots, env.camps, env.profiles, recorder, logger)
	env.appSvc = NewApplicationService(env.apps, env.camps, NewRepoProfileService(env.profiles), env.slotSvc, env.inviteSvc, env.membership, env.notifier, recorder, cache, logger)
	env.rosterSvc = NewRosterService(env.rosters, env.members, recorder, logger)

	return env
}

func (e *testEnv) seedCamp(id, name string, accepting bool) *domain.Camp {
	camp := &domain.Camp{
		ID:               id,
		Name:             name,
		OwnerID:          "owner-" + id,
		AcceptingMembers: accepting,
	}
	e.camps.camps[id] = camp
	return camp
}

func (e *testEnv) seedProfile(userID, email string) *domain.ApplicantProfile {
	profile := &domain.ApplicantProfile{
		UserID:      userID,
		FirstName:   "Test",
		LastName:    "Burner",
		Email:       email,
		Phone:       "+15550100",
		City:        "Reno",
		YearsBurned: 2,
		Bio:         "ready for the dust",
	}
	e.profiles.profiles[userID] = profile
	return profile
}

func (e *testEnv) seedSlot(campID string, max int) *domain.CallSlot {
	slot := &domain.CallSlot{
		ID:              uuid.NewString(),
		CampID:          campID,
		StartTime:       "18:00",
		EndTime:         "18:30",
		MaxParticipants: max,
		IsAvailable:     true,
		Participants:    []string{},
	}
	e.slots.slots[slot.ID] = slot
	return slot
}

func campPrincipal(campID string) *domain.Principal {
	return &domain.Principal{
		ID:          "staff-" + campID,
		CampID:      campID,
		AccountType: "camp",
		Email:       "staff@" + campID + ".example",
	}
}

func userPrincipal(id, email string) *domain.Principal {
	return &domain.Principal{ID: id, AccountType: "personal", Email: email}
}
