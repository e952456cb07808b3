package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravadigital/santa-api/internal/domain/assignment"
	"github.com/gravadigital/santa-api/internal/domain/event"
	"github.com/gravadigital/santa-api/internal/domain/user"
	"github.com/gravadigital/santa-api/internal/notifications"
	"github.com/gravadigital/santa-api/internal/storage"
	"github.com/gravadigital/santa-api/internal/storage/memory"
)

type santaFixture struct {
	santa        *SantaService
	profile      *ProfileService
	events       *memory.EventRepository
	participants *memory.ParticipantRepository
	assignments  *memory.AssignmentRepository
	users        *memory.UserRepository
}

func newSantaFixture(t *testing.T) *santaFixture {
	t.Helper()
	store := memory.NewStore()

	events := memory.NewEventRepository(store)
	participants := memory.NewParticipantRepository(store)
	assignments := memory.NewAssignmentRepository(store)
	users := memory.NewUserRepository(store)

	profile := NewProfileService(users, nil)
	santa := NewSantaService(events, participants, assignments, users, profile, notifications.NewLogNotifier(), &fakeImageStore{}, 1<<20)

	return &santaFixture{
		santa:        santa,
		profile:      profile,
		events:       events,
		participants: participants,
		assignments:  assignments,
		users:        users,
	}
}

func (f *santaFixture) newUser(t *testing.T, name string) *user.User {
	t.Helper()
	u := &user.User{ID: uuid.New(), Name: name}
	require.NoError(t, f.users.Create(u))
	return u
}

func (f *santaFixture) newEvent(t *testing.T, creatorID uuid.UUID) *event.Event {
	t.Helper()
	ev, err := f.santa.CreateEvent(context.Background(), creatorID, EventInput{Name: "Navidad"})
	require.NoError(t, err)
	return ev
}

func TestCreateEventEnrollsCreator(t *testing.T) {
	f := newSantaFixture(t)
	creator := f.newUser(t, "Ana")

	ev := f.newEvent(t, creator.ID)

	assert.Equal(t, event.StatusCreated, ev.Status)
	assert.Len(t, ev.InviteCode, 16)

	members, err := f.participants.ListByEvent(ev.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.NotNil(t, members[0].UserID)
	assert.Equal(t, creator.ID, *members[0].UserID)
	assert.Equal(t, "Ana", members[0].Name)
}

func TestCreateEventValidation(t *testing.T) {
	f := newSantaFixture(t)
	creator := f.newUser(t, "Ana")

	_, err := f.santa.CreateEvent(context.Background(), creator.ID, EventInput{Name: "  "})
	assert.ErrorIs(t, err, ErrValidation)

	minBudget, maxBudget := 100, 10
	_, err = f.santa.CreateEvent(context.Background(), creator.ID, EventInput{
		Name:      "Navidad",
		MinBudget: &minBudget,
		MaxBudget: &maxBudget,
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestJoinByInviteCode(t *testing.T) {
	f := newSantaFixture(t)
	creator := f.newUser(t, "Ana")
	guest := f.newUser(t, "Bruno")
	ev := f.newEvent(t, creator.ID)

	joined, err := f.santa.JoinByInviteCode(context.Background(), ev.InviteCode, guest.ID)
	require.NoError(t, err)
	assert.Equal(t, ev.ID, joined.ID)

	members, err := f.participants.ListByEvent(ev.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	// joining through an invite makes the two users friends
	friends, err := f.users.ListFriends(guest.ID)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, creator.ID, friends[0].ID)

	_, err = f.santa.JoinByInviteCode(context.Background(), ev.InviteCode, guest.ID)
	assert.ErrorIs(t, err, ErrAlreadyParticipating)

	_, err = f.santa.JoinByInviteCode(context.Background(), "nope", guest.ID)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestAddParticipantRules(t *testing.T) {
	f := newSantaFixture(t)
	creator := f.newUser(t, "Ana")
	other := f.newUser(t, "Bruno")
	ev := f.newEvent(t, creator.ID)

	p, err := f.santa.AddParticipant(ev.ID, creator.ID, "Abuela")
	require.NoError(t, err)
	assert.True(t, p.IsMock())

	_, err = f.santa.AddParticipant(ev.ID, other.ID, "Colado")
	assert.ErrorIs(t, err, ErrNotEventCreator)

	_, err = f.santa.AddParticipant(ev.ID, creator.ID, "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDrawNames(t *testing.T) {
	f := newSantaFixture(t)
	creator := f.newUser(t, "Ana")
	guest := f.newUser(t, "Bruno")
	ev := f.newEvent(t, creator.ID)

	_, err := f.santa.JoinByInviteCode(context.Background(), ev.InviteCode, guest.ID)
	require.NoError(t, err)
	_, err = f.santa.AddParticipant(ev.ID, creator.ID, "Abuela")
	require.NoError(t, err)

	created, err := f.santa.DrawNames(context.Background(), ev.ID, creator.ID)
	require.NoError(t, err)
	require.Len(t, created, 3)

	members, err := f.participants.ListByEvent(ev.ID)
	require.NoError(t, err)
	memberIDs := make(map[uuid.UUID]bool, len(members))
	for _, m := range members {
		memberIDs[m.ID] = true
	}

	givers := make(map[uuid.UUID]bool)
	receivers := make(map[uuid.UUID]bool)
	for _, a := range created {
		assert.NotEqual(t, a.GiverID, a.ReceiverID)
		assert.True(t, memberIDs[a.GiverID])
		assert.True(t, memberIDs[a.ReceiverID])
		assert.Equal(t, assignment.GiftPending, a.GiftStatus)
		givers[a.GiverID] = true
		receivers[a.ReceiverID] = true
	}
	assert.Len(t, givers, 3)
	assert.Len(t, receivers, 3)

	stored, err := f.events.GetByID(ev.ID)
	require.NoError(t, err)
	assert.Equal(t, event.StatusAssigned, stored.Status)

	// real participants earn draw points; the creator earns the
	// organizer achievement
	for _, id := range []uuid.UUID{creator.ID, guest.ID} {
		u, err := f.users.GetByID(id)
		require.NoError(t, err)
		assert.Equal(t, PointsDrawParticipation, u.Points)
	}
	organizer, err := f.users.GetByID(creator.ID)
	require.NoError(t, err)
	assert.True(t, organizer.HasAchievement(AchievementOrganizer))
}

func TestDrawNamesIsTerminal(t *testing.T) {
	f := newSantaFixture(t)
	creator := f.newUser(t, "Ana")
	ev := f.newEvent(t, creator.ID)
	_, err := f.santa.AddParticipant(ev.ID, creator.ID, "Abuela")
	require.NoError(t, err)

	first, err := f.santa.DrawNames(context.Background(), ev.ID, creator.ID)
	require.NoError(t, err)

	_, err = f.santa.DrawNames(context.Background(), ev.ID, creator.ID)
	assert.ErrorIs(t, err, ErrEventLocked)

	// the losing call must not disturb the committed assignments
	after, err := f.assignments.ListByEvent(ev.ID)
	require.NoError(t, err)
	require.Len(t, after, len(first))
	want := make(map[uuid.UUID]uuid.UUID)
	for _, a := range first {
		want[a.GiverID] = a.ReceiverID
	}
	for _, a := range after {
		assert.Equal(t, want[a.GiverID], a.ReceiverID)
	}
}

func TestDrawNamesBelowMinimum(t *testing.T) {
	f := newSantaFixture(t)
	creator := f.newUser(t, "Ana")
	ev := f.newEvent(t, creator.ID)

	// only the creator is enrolled
	_, err := f.santa.DrawNames(context.Background(), ev.ID, creator.ID)
	assert.ErrorIs(t, err, ErrInsufficientParticipants)

	rows, err := f.assignments.ListByEvent(ev.ID)
	require.NoError(t, err)
	assert.Empty(t, rows, "a failed draw must write nothing")

	stored, err := f.events.GetByID(ev.ID)
	require.NoError(t, err)
	assert.Equal(t, event.StatusCreated, stored.Status)
}

func TestDrawNamesRequiresCreator(t *testing.T) {
	f := newSantaFixture(t)
	creator := f.newUser(t, "Ana")
	guest := f.newUser(t, "Bruno")
	ev := f.newEvent(t, creator.ID)
	_, err := f.santa.JoinByInviteCode(context.Background(), ev.InviteCode, guest.ID)
	require.NoError(t, err)

	_, err = f.santa.DrawNames(context.Background(), ev.ID, guest.ID)
	assert.ErrorIs(t, err, ErrNotEventCreator)
}

func TestLockedEventRejectsChanges(t *testing.T) {
	f := newSantaFixture(t)
	creator := f.newUser(t, "Ana")
	late := f.newUser(t, "Carla")
	ev := f.newEvent(t, creator.ID)
	_, err := f.santa.AddParticipant(ev.ID, creator.ID, "Abuela")
	require.NoError(t, err)
	_, err = f.santa.DrawNames(context.Background(), ev.ID, creator.ID)
	require.NoError(t, err)

	_, err = f.santa.JoinByInviteCode(context.Background(), ev.InviteCode, late.ID)
	assert.ErrorIs(t, err, ErrEventLocked)

	_, err = f.santa.AddParticipant(ev.ID, creator.ID, "Tarde")
	assert.ErrorIs(t, err, ErrEventLocked)

	_, err = f.santa.UpdateEvent(ev.ID, creator.ID, EventInput{Name: "Otro nombre"})
	assert.ErrorIs(t, err, ErrEventLocked)
}

func TestGetMyAssignment(t *testing.T) {
	f := newSantaFixture(t)
	creator := f.newUser(t, "Ana")
	guest := f.newUser(t, "Bruno")
	outsider := f.newUser(t, "Diego")
	ev := f.newEvent(t, creator.ID)
	_, err := f.santa.JoinByInviteCode(context.Background(), ev.InviteCode, guest.ID)
	require.NoError(t, err)

	// before the draw: participant sees "pending", outsider sees nothing
	my, err := f.santa.GetMyAssignment(ev.ID, creator.ID)
	require.NoError(t, err)
	assert.Nil(t, my)

	_, err = f.santa.GetMyAssignment(ev.ID, outsider.ID)
	assert.ErrorIs(t, err, ErrNotAParticipant)

	_, err = f.santa.DrawNames(context.Background(), ev.ID, creator.ID)
	require.NoError(t, err)

	my, err = f.santa.GetMyAssignment(ev.ID, creator.ID)
	require.NoError(t, err)
	require.NotNil(t, my)
	require.NotNil(t, my.Receiver)
	assert.Equal(t, my.Assignment.ReceiverID, my.Receiver.ID)
	if my.Receiver.UserID != nil {
		assert.NotEqual(t, creator.ID, *my.Receiver.UserID, "nobody gifts themselves")
	}
}

func TestUpdateGiftStatus(t *testing.T) {
	f := newSantaFixture(t)
	creator := f.newUser(t, "Ana")
	guest := f.newUser(t, "Bruno")
	ev := f.newEvent(t, creator.ID)
	_, err := f.santa.JoinByInviteCode(context.Background(), ev.InviteCode, guest.ID)
	require.NoError(t, err)
	_, err = f.santa.DrawNames(context.Background(), ev.ID, creator.ID)
	require.NoError(t, err)

	my, err := f.santa.GetMyAssignment(ev.ID, creator.ID)
	require.NoError(t, err)
	require.NotNil(t, my)
	assignmentID := my.Assignment.ID

	// only the giver may touch their assignment
	_, err = f.santa.UpdateGiftStatus(context.Background(), assignmentID, guest.ID, GiftUpdateInput{Status: assignment.GiftPurchased})
	assert.ErrorIs(t, err, ErrNotAuthorized)

	unchanged, err := f.assignments.GetByID(assignmentID)
	require.NoError(t, err)
	assert.Equal(t, assignment.GiftPending, unchanged.GiftStatus)

	// skipping a stage is rejected
	_, err = f.santa.UpdateGiftStatus(context.Background(), assignmentID, creator.ID, GiftUpdateInput{Status: assignment.GiftDelivered})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	note := "un libro"
	updated, err := f.santa.UpdateGiftStatus(context.Background(), assignmentID, creator.ID, GiftUpdateInput{
		Status: assignment.GiftPurchased,
		Note:   &note,
	})
	require.NoError(t, err)
	assert.Equal(t, assignment.GiftPurchased, updated.GiftStatus)
	assert.NotNil(t, updated.PurchasedAt)
	require.NotNil(t, updated.GiftNote)
	assert.Equal(t, "un libro", *updated.GiftNote)

	updated, err = f.santa.UpdateGiftStatus(context.Background(), assignmentID, creator.ID, GiftUpdateInput{Status: assignment.GiftDelivered})
	require.NoError(t, err)
	assert.NotNil(t, updated.DeliveredAt)

	deliverer, err := f.users.GetByID(creator.ID)
	require.NoError(t, err)
	assert.True(t, deliverer.HasAchievement(AchievementGifter))

	// stepping back clears the delivery timestamp
	updated, err = f.santa.UpdateGiftStatus(context.Background(), assignmentID, creator.ID, GiftUpdateInput{Status: assignment.GiftPurchased})
	require.NoError(t, err)
	assert.Nil(t, updated.DeliveredAt)
	assert.NotNil(t, updated.PurchasedAt)
}

func TestUploadGiftPhoto(t *testing.T) {
	f := newSantaFixture(t)
	creator := f.newUser(t, "Ana")
	guest := f.newUser(t, "Bruno")
	ev := f.newEvent(t, creator.ID)
	_, err := f.santa.JoinByInviteCode(context.Background(), ev.InviteCode, guest.ID)
	require.NoError(t, err)
	_, err = f.santa.DrawNames(context.Background(), ev.ID, creator.ID)
	require.NoError(t, err)

	my, err := f.santa.GetMyAssignment(ev.ID, creator.ID)
	require.NoError(t, err)
	require.NotNil(t, my)
	assignmentID := my.Assignment.ID

	// only the giver may attach a photo
	_, err = f.santa.UploadGiftPhoto(context.Background(), assignmentID, guest.ID, "regalo.png", "image/png", []byte("png"))
	assert.ErrorIs(t, err, ErrNotAuthorized)

	// oversized uploads are rejected before touching storage
	_, err = f.santa.UploadGiftPhoto(context.Background(), assignmentID, creator.ID, "grande.png", "image/png", make([]byte, 2<<20))
	assert.ErrorIs(t, err, ErrImageTooLarge)

	updated, err := f.santa.UploadGiftPhoto(context.Background(), assignmentID, creator.ID, "regalo.png", "image/png", []byte("png"))
	require.NoError(t, err)
	require.NotNil(t, updated.GiftPhotoURL)
	assert.Contains(t, *updated.GiftPhotoURL, "gifts/"+ev.ID.String())

	stored, err := f.assignments.GetByID(assignmentID)
	require.NoError(t, err)
	require.NotNil(t, stored.GiftPhotoURL)
	assert.Equal(t, *updated.GiftPhotoURL, *stored.GiftPhotoURL)
}

func TestUploadGiftPhotoWithoutStore(t *testing.T) {
	f := newSantaFixture(t)
	creator := f.newUser(t, "Ana")
	disabled := NewSantaService(f.events, f.participants, f.assignments, f.users, f.profile, notifications.NewLogNotifier(), nil, 1<<20)

	_, err := disabled.UploadGiftPhoto(context.Background(), uuid.New(), creator.ID, "regalo.png", "image/png", []byte("png"))
	assert.ErrorIs(t, err, ErrImageStoreDisabled)
}

func TestUpdateAndDeleteEvent(t *testing.T) {
	f := newSantaFixture(t)
	creator := f.newUser(t, "Ana")
	other := f.newUser(t, "Bruno")
	ev := f.newEvent(t, creator.ID)

	_, err := f.santa.UpdateEvent(ev.ID, other.ID, EventInput{Name: "Hackeado"})
	assert.ErrorIs(t, err, ErrNotEventCreator)

	minBudget := 20
	updated, err := f.santa.UpdateEvent(ev.ID, creator.ID, EventInput{Name: "Navidad 2026", MinBudget: &minBudget})
	require.NoError(t, err)
	assert.Equal(t, "Navidad 2026", updated.Name)

	err = f.santa.DeleteEvent(ev.ID, other.ID)
	assert.ErrorIs(t, err, ErrNotEventCreator)

	require.NoError(t, f.santa.DeleteEvent(ev.ID, creator.ID))
	_, err = f.events.GetByID(ev.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestMyEvents(t *testing.T) {
	f := newSantaFixture(t)
	creator := f.newUser(t, "Ana")
	guest := f.newUser(t, "Bruno")

	first := f.newEvent(t, creator.ID)
	second := f.newEvent(t, guest.ID)
	_, err := f.santa.JoinByInviteCode(context.Background(), second.InviteCode, creator.ID)
	require.NoError(t, err)

	events, err := f.santa.MyEvents(creator.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)

	ids := map[uuid.UUID]bool{events[0].ID: true, events[1].ID: true}
	assert.True(t, ids[first.ID])
	assert.True(t, ids[second.ID])

	events, err = f.santa.MyEvents(guest.ID)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}
