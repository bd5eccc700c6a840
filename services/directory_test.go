package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classverse/classverse"
	"github.com/classverse/classverse/mocks"
	"github.com/classverse/classverse/services"
)

func TestCreatePrivateChatSelf(t *testing.T) {
	db := mocks.NewStore()
	alice := seedUser(db, "Alice Jones", "9A", classverse.RoleStudent)

	dir, err := services.NewDirectory(db)
	require.NoError(t, err)

	_, err = dir.CreatePrivateChat(alice.ID, alice.ID)
	assert.Equal(t, classverse.ErrSelfTarget, err)
}

func TestCreatePrivateChatRequiresContact(t *testing.T) {
	db := mocks.NewStore()
	alice := seedUser(db, "Alice Jones", "9A", classverse.RoleStudent)
	bob := seedUser(db, "Bob Smith", "9A", classverse.RoleStudent)

	dir, err := services.NewDirectory(db)
	require.NoError(t, err)

	_, err = dir.CreatePrivateChat(alice.ID, bob.ID)
	assert.Equal(t, classverse.ErrNotContact, err)

	require.NoError(t, db.AddContact(alice.ID, bob.ID))
	ch, err := dir.CreatePrivateChat(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, ch.Private)
	assert.ElementsMatch(t, []string{alice.ID, bob.ID}, ch.Participants)
}

func TestCreatePrivateChatIdempotent(t *testing.T) {
	db := mocks.NewStore()
	alice := seedUser(db, "Alice Jones", "9A", classverse.RoleStudent)
	bob := seedUser(db, "Bob Smith", "9A", classverse.RoleStudent)
	require.NoError(t, db.AddContact(alice.ID, bob.ID))
	require.NoError(t, db.AddContact(bob.ID, alice.ID))

	dir, err := services.NewDirectory(db)
	require.NoError(t, err)

	first, err := dir.CreatePrivateChat(alice.ID, bob.ID)
	require.NoError(t, err)

	// the other side opening the chat lands in the same channel
	second, err := dir.CreatePrivateChat(bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestCreateGroupRequiresName(t *testing.T) {
	db := mocks.NewStore()
	alice := seedUser(db, "Alice Jones", "9A", classverse.RoleStudent)

	dir, err := services.NewDirectory(db)
	require.NoError(t, err)

	_, err = dir.CreateGroup(alice.ID, "", "Math", "", false)
	assert.True(t, classverse.IsValidation(err))

	ch, err := dir.CreateGroup(alice.ID, "Math club", "Math", "", true)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, ch.AdminID)
	assert.Equal(t, []string{alice.ID}, ch.Participants)
	assert.True(t, ch.HasSubgroups)
}

func TestCreateSubgroupInheritsParticipants(t *testing.T) {
	db := mocks.NewStore()
	alice := seedUser(db, "Alice Jones", "9A", classverse.RoleStudent)
	bob := seedUser(db, "Bob Smith", "9A", classverse.RoleStudent)

	dir, err := services.NewDirectory(db)
	require.NoError(t, err)

	parent, err := dir.CreateGroup(alice.ID, "Math club", "Math", "", true)
	require.NoError(t, err)
	require.NoError(t, db.AddUserToChannel(bob.ID, parent.ID))

	sub, err := dir.CreateSubgroup(bob.ID, parent.ID, "Homework help", "Math")
	require.NoError(t, err)
	assert.Equal(t, parent.ID, sub.Parent)
	assert.Equal(t, bob.ID, sub.AdminID)
	assert.ElementsMatch(t, []string{alice.ID, bob.ID}, sub.Participants)
}

func TestCreateSubgroupDeniedWhenParentDisallows(t *testing.T) {
	db := mocks.NewStore()
	alice := seedUser(db, "Alice Jones", "9A", classverse.RoleStudent)

	dir, err := services.NewDirectory(db)
	require.NoError(t, err)

	parent, err := dir.CreateGroup(alice.ID, "Math club", "Math", "", false)
	require.NoError(t, err)

	_, err = dir.CreateSubgroup(alice.ID, parent.ID, "Homework help", "Math")
	assert.Equal(t, classverse.ErrPermissionDenied, err)
}

func TestCreateClassGroupAdminOnly(t *testing.T) {
	db := mocks.NewStore()
	student := seedUser(db, "Alice Jones", "9A", classverse.RoleStudent)

	dir, err := services.NewDirectory(db)
	require.NoError(t, err)

	_, err = dir.CreateClassGroup(student.ID, "9A")
	assert.Equal(t, classverse.ErrPermissionDenied, err)
}

func TestCreateClassGroupIdempotent(t *testing.T) {
	db := mocks.NewStore()
	admin := seedUser(db, "Head Teacher", "", classverse.RoleAdmin)
	alice := seedUser(db, "Alice Jones", "9A", classverse.RoleStudent)
	bob := seedUser(db, "Bob Smith", "9A", classverse.RoleStudent)

	dir, err := services.NewDirectory(db)
	require.NoError(t, err)

	first, err := dir.CreateClassGroup(admin.ID, "9A")
	require.NoError(t, err)
	assert.True(t, first.ClassGroup)
	assert.Equal(t, "9A", first.Name)
	assert.ElementsMatch(t, []string{admin.ID, alice.ID, bob.ID}, first.Participants)

	second, err := dir.CreateClassGroup(admin.ID, "9A")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestDeleteChannelAdminOnly(t *testing.T) {
	db := mocks.NewStore()
	alice := seedUser(db, "Alice Jones", "9A", classverse.RoleStudent)
	bob := seedUser(db, "Bob Smith", "9A", classverse.RoleStudent)

	dir, err := services.NewDirectory(db)
	require.NoError(t, err)

	ch, err := dir.CreateGroup(alice.ID, "Math club", "Math", "", false)
	require.NoError(t, err)
	require.NoError(t, db.AddUserToChannel(bob.ID, ch.ID))

	assert.Equal(t, classverse.ErrPermissionDenied, dir.DeleteChannel(bob.ID, ch.ID))
	require.NoError(t, dir.DeleteChannel(alice.ID, ch.ID))

	_, err = db.GetChannel(ch.ID)
	assert.Equal(t, classverse.ErrNotFound, err)
}

func TestDeletePrivateChatHidesForCaller(t *testing.T) {
	db := mocks.NewStore()
	alice := seedUser(db, "Alice Jones", "9A", classverse.RoleStudent)
	bob := seedUser(db, "Bob Smith", "9A", classverse.RoleStudent)
	require.NoError(t, db.AddContact(alice.ID, bob.ID))

	dir, err := services.NewDirectory(db)
	require.NoError(t, err)

	ch, err := dir.CreatePrivateChat(alice.ID, bob.ID)
	require.NoError(t, err)

	require.NoError(t, dir.DeletePrivateChat(alice.ID, ch.ID, false))

	mine, err := dir.ListChannels(alice.ID)
	require.NoError(t, err)
	assert.Empty(t, mine)

	theirs, err := dir.ListChannels(bob.ID)
	require.NoError(t, err)
	require.Len(t, theirs, 1)
	assert.Equal(t, ch.ID, theirs[0].ID)
}

func TestCreatePrivateChatReopensHiddenChat(t *testing.T) {
	db := mocks.NewStore()
	alice := seedUser(db, "Alice Jones", "9A", classverse.RoleStudent)
	bob := seedUser(db, "Bob Smith", "9A", classverse.RoleStudent)
	require.NoError(t, db.AddContact(alice.ID, bob.ID))

	dir, err := services.NewDirectory(db)
	require.NoError(t, err)

	ch, err := dir.CreatePrivateChat(alice.ID, bob.ID)
	require.NoError(t, err)
	require.NoError(t, dir.DeletePrivateChat(alice.ID, ch.ID, false))

	reopened, err := dir.CreatePrivateChat(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, ch.ID, reopened.ID)

	mine, err := dir.ListChannels(alice.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, ch.ID, mine[0].ID)
}

func TestDeletePrivateChatForBoth(t *testing.T) {
	db := mocks.NewStore()
	alice := seedUser(db, "Alice Jones", "9A", classverse.RoleStudent)
	bob := seedUser(db, "Bob Smith", "9A", classverse.RoleStudent)
	require.NoError(t, db.AddContact(alice.ID, bob.ID))

	dir, err := services.NewDirectory(db)
	require.NoError(t, err)

	ch, err := dir.CreatePrivateChat(alice.ID, bob.ID)
	require.NoError(t, err)

	require.NoError(t, dir.DeletePrivateChat(bob.ID, ch.ID, true))

	_, err = db.GetChannel(ch.ID)
	assert.Equal(t, classverse.ErrNotFound, err)
}

func TestGetChannelHiddenFromOutsiders(t *testing.T) {
	db := mocks.NewStore()
	alice := seedUser(db, "Alice Jones", "9A", classverse.RoleStudent)
	mallory := seedUser(db, "Mallory Gray", "9B", classverse.RoleStudent)

	dir, err := services.NewDirectory(db)
	require.NoError(t, err)

	ch, err := dir.CreateGroup(alice.ID, "Math club", "Math", "", false)
	require.NoError(t, err)

	_, err = dir.GetChannel(mallory.ID, ch.ID)
	assert.Equal(t, classverse.ErrNotFound, err)
}

func TestDisplayIdentityFromProfile(t *testing.T) {
	db := mocks.NewStore()
	alice := seedUser(db, "Alice Jones", "9A", classverse.RoleStudent)
	bob := seedUser(db, "Bob Smith", "9A", classverse.RoleStudent)
	require.NoError(t, db.AddContact(alice.ID, bob.ID))

	dir, err := services.NewDirectory(db)
	require.NoError(t, err)

	_, err = dir.CreatePrivateChat(alice.ID, bob.ID)
	require.NoError(t, err)

	channels, err := dir.ListChannels(alice.ID)
	require.NoError(t, err)
	require.Len(t, channels, 1)
	assert.Equal(t, "Bob Smith", channels[0].Display.Name)
	assert.Equal(t, "Private chat", channels[0].Display.Subtitle)
	assert.Equal(t, "BS", channels[0].Display.Initials)
}

func TestDisplayIdentityLegacyDescription(t *testing.T) {
	db := mocks.NewStore()
	alice := seedUser(db, "Alice Jones", "9A", classverse.RoleStudent)

	// the other participant's profile is gone; only the legacy
	// description remains
	now := time.Now().UTC()
	_, err := db.CreateChannel(&classverse.Channel{
		ID:           "legacy",
		Description:  "Private chat between Alice Jones and Bob Smith",
		AdminID:      alice.ID,
		Private:      true,
		Participants: []string{alice.ID, "gone"},
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	require.NoError(t, err)

	dir, err := services.NewDirectory(db)
	require.NoError(t, err)

	channels, err := dir.ListChannels(alice.ID)
	require.NoError(t, err)
	require.Len(t, channels, 1)
	assert.Equal(t, "Bob Smith", channels[0].Display.Name)
}

func TestDisplayIdentityPlaceholder(t *testing.T) {
	db := mocks.NewStore()
	alice := seedUser(db, "Alice Jones", "9A", classverse.RoleStudent)

	now := time.Now().UTC()
	_, err := db.CreateChannel(&classverse.Channel{
		ID:           "orphan",
		AdminID:      alice.ID,
		Private:      true,
		Participants: []string{alice.ID, "gone"},
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	require.NoError(t, err)

	dir, err := services.NewDirectory(db)
	require.NoError(t, err)

	channels, err := dir.ListChannels(alice.ID)
	require.NoError(t, err)
	require.Len(t, channels, 1)
	assert.Equal(t, "Interlocutor", channels[0].Display.Name)
}
