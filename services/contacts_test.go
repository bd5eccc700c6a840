package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classverse/classverse"
	"github.com/classverse/classverse/mocks"
	"github.com/classverse/classverse/services"
)

func TestAddContactSelf(t *testing.T) {
	db := mocks.NewStore()
	alice := seedUser(db, "Alice Jones", "9A", classverse.RoleStudent)

	c, err := services.NewContacter(db)
	require.NoError(t, err)

	assert.Equal(t, classverse.ErrSelfTarget, c.AddContact(alice.ID, alice.ID))
}

func TestAddContactUnknownTarget(t *testing.T) {
	db := mocks.NewStore()
	alice := seedUser(db, "Alice Jones", "9A", classverse.RoleStudent)

	c, err := services.NewContacter(db)
	require.NoError(t, err)

	assert.Equal(t, classverse.ErrNotFound, c.AddContact(alice.ID, "nobody"))
}

func TestAddContactIdempotent(t *testing.T) {
	db := mocks.NewStore()
	alice := seedUser(db, "Alice Jones", "9A", classverse.RoleStudent)
	bob := seedUser(db, "Bob Smith", "9A", classverse.RoleStudent)

	c, err := services.NewContacter(db)
	require.NoError(t, err)

	require.NoError(t, c.AddContact(alice.ID, bob.ID))
	require.NoError(t, c.AddContact(alice.ID, bob.ID))

	contacts, err := c.ListContacts(alice.ID)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, bob.ID, contacts[0].ID)

	// the relationship is one-directional
	theirs, err := c.ListContacts(bob.ID)
	require.NoError(t, err)
	assert.Empty(t, theirs)
}

func TestSearchUsersFlagsContacts(t *testing.T) {
	db := mocks.NewStore()
	alice := seedUser(db, "Alice Jones", "9A", classverse.RoleStudent)
	bob := seedUser(db, "Bob Smith", "9A", classverse.RoleStudent)
	seedUser(db, "Bob Taylor", "9B", classverse.RoleStudent)

	c, err := services.NewContacter(db)
	require.NoError(t, err)
	require.NoError(t, c.AddContact(alice.ID, bob.ID))

	results, err := c.SearchUsers(alice.ID, "bob")
	require.NoError(t, err)
	require.Len(t, results, 2)

	flags := make(map[string]bool)
	for _, r := range results {
		flags[r.ID] = r.IsContact
	}
	assert.True(t, flags[bob.ID])
}

func TestSearchUsersExcludesSelf(t *testing.T) {
	db := mocks.NewStore()
	alice := seedUser(db, "Alice Jones", "9A", classverse.RoleStudent)

	c, err := services.NewContacter(db)
	require.NoError(t, err)

	results, err := c.SearchUsers(alice.ID, "alice")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRemoveContact(t *testing.T) {
	db := mocks.NewStore()
	alice := seedUser(db, "Alice Jones", "9A", classverse.RoleStudent)
	bob := seedUser(db, "Bob Smith", "9A", classverse.RoleStudent)

	c, err := services.NewContacter(db)
	require.NoError(t, err)

	require.NoError(t, c.AddContact(alice.ID, bob.ID))
	require.NoError(t, c.RemoveContact(alice.ID, bob.ID))

	contacts, err := c.ListContacts(alice.ID)
	require.NoError(t, err)
	assert.Empty(t, contacts)
}
