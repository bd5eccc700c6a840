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

func TestAddMemberAdminOnlyByDefault(t *testing.T) {
	db := mocks.NewStore()
	admin := seedUser(db, "Alice Jones", "9A", classverse.RoleStudent)
	bob := seedUser(db, "Bob Smith", "9A", classverse.RoleStudent)
	carol := seedUser(db, "Carol White", "9A", classverse.RoleStudent)
	ch := seedGroup(t, db, admin.ID, bob.ID)

	member, err := services.NewMembership(db, nil)
	require.NoError(t, err)

	assert.Equal(t, classverse.ErrPermissionDenied, member.AddMember(bob.ID, ch.ID, carol.ID))
	require.NoError(t, member.AddMember(admin.ID, ch.ID, carol.ID))

	assert.Equal(t, classverse.ErrAlreadyMember, member.AddMember(admin.ID, ch.ID, carol.ID))
}

func TestListMembersRequiresMembership(t *testing.T) {
	db := mocks.NewStore()
	alice := seedUser(db, "Alice Jones", "9A", classverse.RoleStudent)
	bob := seedUser(db, "Bob Smith", "9A", classverse.RoleStudent)
	mallory := seedUser(db, "Mallory Gray", "9B", classverse.RoleStudent)

	now := time.Now().UTC()
	ch, err := db.CreateChannel(&classverse.Channel{
		ID:           "pc",
		AdminID:      alice.ID,
		Private:      true,
		Participants: []string{alice.ID, bob.ID},
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	require.NoError(t, err)

	member, err := services.NewMembership(db, nil)
	require.NoError(t, err)

	_, err = member.ListMembers(mallory.ID, ch.ID)
	assert.Equal(t, classverse.ErrNotFound, err)

	members, err := member.ListMembers(bob.ID, ch.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestAddMemberAnyParticipantPolicy(t *testing.T) {
	db := mocks.NewStore()
	admin := seedUser(db, "Alice Jones", "9A", classverse.RoleStudent)
	bob := seedUser(db, "Bob Smith", "9A", classverse.RoleStudent)
	carol := seedUser(db, "Carol White", "9A", classverse.RoleStudent)
	ch := seedGroup(t, db, admin.ID, bob.ID)

	member, err := services.NewMembership(db, classverse.PolicyAnyParticipant)
	require.NoError(t, err)

	dave := seedUser(db, "Dave Brown", "9A", classverse.RoleStudent)

	require.NoError(t, member.AddMember(bob.ID, ch.ID, carol.ID))
	assert.Equal(t, classverse.ErrPermissionDenied, member.AddMember(dave.ID, ch.ID, bob.ID))
}

func TestAddMemberPrivateChannelDenied(t *testing.T) {
	db := mocks.NewStore()
	alice := seedUser(db, "Alice Jones", "9A", classverse.RoleStudent)
	bob := seedUser(db, "Bob Smith", "9A", classverse.RoleStudent)
	carol := seedUser(db, "Carol White", "9A", classverse.RoleStudent)

	now := time.Now().UTC()
	ch, err := db.CreateChannel(&classverse.Channel{
		ID:           "pc",
		AdminID:      alice.ID,
		Private:      true,
		Participants: []string{alice.ID, bob.ID},
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	require.NoError(t, err)

	member, err := services.NewMembership(db, nil)
	require.NoError(t, err)

	assert.Equal(t, classverse.ErrPermissionDenied, member.AddMember(alice.ID, ch.ID, carol.ID))
}

func TestRemoveMemberRules(t *testing.T) {
	db := mocks.NewStore()
	admin := seedUser(db, "Alice Jones", "9A", classverse.RoleStudent)
	bob := seedUser(db, "Bob Smith", "9A", classverse.RoleStudent)
	carol := seedUser(db, "Carol White", "9A", classverse.RoleStudent)
	ch := seedGroup(t, db, admin.ID, bob.ID, carol.ID)

	member, err := services.NewMembership(db, nil)
	require.NoError(t, err)

	// the admin cannot be removed, even by themselves
	assert.Equal(t, classverse.ErrPermissionDenied, member.RemoveMember(admin.ID, ch.ID, admin.ID))

	// a participant cannot remove someone else without the policy
	assert.Equal(t, classverse.ErrPermissionDenied, member.RemoveMember(bob.ID, ch.ID, carol.ID))

	// a participant may always remove themselves
	require.NoError(t, member.RemoveMember(bob.ID, ch.ID, bob.ID))

	// the admin may remove anyone
	require.NoError(t, member.RemoveMember(admin.ID, ch.ID, carol.ID))

	assert.Equal(t, classverse.ErrNotFound, member.RemoveMember(admin.ID, ch.ID, carol.ID))
}

func TestLeavePromotesLongestStanding(t *testing.T) {
	db := mocks.NewStore()
	admin := seedUser(db, "Alice Jones", "9A", classverse.RoleStudent)
	bob := seedUser(db, "Bob Smith", "9A", classverse.RoleStudent)
	carol := seedUser(db, "Carol White", "9A", classverse.RoleStudent)
	ch := seedGroup(t, db, admin.ID, bob.ID, carol.ID)

	member, err := services.NewMembership(db, nil)
	require.NoError(t, err)

	require.NoError(t, member.Leave(admin.ID, ch.ID))

	after, err := db.GetChannel(ch.ID)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, after.AdminID)
	assert.ElementsMatch(t, []string{bob.ID, carol.ID}, after.Participants)
}

func TestLeaveDeletesEmptyChannel(t *testing.T) {
	db := mocks.NewStore()
	admin := seedUser(db, "Alice Jones", "9A", classverse.RoleStudent)
	ch := seedGroup(t, db, admin.ID)

	member, err := services.NewMembership(db, nil)
	require.NoError(t, err)

	require.NoError(t, member.Leave(admin.ID, ch.ID))

	_, err = db.GetChannel(ch.ID)
	assert.Equal(t, classverse.ErrNotFound, err)
}

func TestLeaveNonAdmin(t *testing.T) {
	db := mocks.NewStore()
	admin := seedUser(db, "Alice Jones", "9A", classverse.RoleStudent)
	bob := seedUser(db, "Bob Smith", "9A", classverse.RoleStudent)
	ch := seedGroup(t, db, admin.ID, bob.ID)

	member, err := services.NewMembership(db, nil)
	require.NoError(t, err)

	require.NoError(t, member.Leave(bob.ID, ch.ID))

	after, err := db.GetChannel(ch.ID)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, after.AdminID)
	assert.Equal(t, []string{admin.ID}, after.Participants)
}

func TestCandidatesForGroup(t *testing.T) {
	db := mocks.NewStore()
	admin := seedUser(db, "Alice Jones", "9A", classverse.RoleStudent)
	bob := seedUser(db, "Bob Smith", "9A", classverse.RoleStudent)
	carol := seedUser(db, "Carol White", "9A", classverse.RoleStudent)
	ch := seedGroup(t, db, admin.ID, bob.ID)

	require.NoError(t, db.AddContact(admin.ID, bob.ID))
	require.NoError(t, db.AddContact(admin.ID, carol.ID))

	member, err := services.NewMembership(db, nil)
	require.NoError(t, err)

	candidates, err := member.CandidatesForGroup(admin.ID, ch.ID, "")
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	byID := make(map[string]bool)
	for _, c := range candidates {
		byID[c.UserID] = c.Member
	}
	assert.True(t, byID[bob.ID])
	assert.False(t, byID[carol.ID])

	filtered, err := member.CandidatesForGroup(admin.ID, ch.ID, "carol")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, carol.ID, filtered[0].UserID)
}
