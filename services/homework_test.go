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

func TestToggleHomeworkPerUser(t *testing.T) {
	db := mocks.NewStore()
	alice := seedUser(db, "Alice Jones", "9A", classverse.RoleStudent)
	bob := seedUser(db, "Bob Smith", "9A", classverse.RoleStudent)

	p, err := services.NewPlanner(db)
	require.NoError(t, err)

	hw, err := p.CreateHomework(alice.ID, classverse.NewHomework{
		Subject: "Math",
		Task:    "Exercises 1-10",
		DueDate: time.Now().UTC().Add(48 * time.Hour),
	})
	require.NoError(t, err)

	done, err := p.ToggleHomework(alice.ID, hw.ID)
	require.NoError(t, err)
	assert.True(t, done)

	// completion is tracked per user
	bobView, err := p.ListHomework(bob.ID)
	require.NoError(t, err)
	require.Len(t, bobView, 1)
	assert.False(t, bobView[0].Completed)

	aliceView, err := p.ListHomework(alice.ID)
	require.NoError(t, err)
	require.Len(t, aliceView, 1)
	assert.True(t, aliceView[0].Completed)

	done, err = p.ToggleHomework(alice.ID, hw.ID)
	require.NoError(t, err)
	assert.False(t, done)
}

func TestToggleHomeworkUnknown(t *testing.T) {
	db := mocks.NewStore()
	alice := seedUser(db, "Alice Jones", "9A", classverse.RoleStudent)

	p, err := services.NewPlanner(db)
	require.NoError(t, err)

	_, err = p.ToggleHomework(alice.ID, "missing")
	assert.Equal(t, classverse.ErrNotFound, err)
}

func TestDeleteHomeworkPermissions(t *testing.T) {
	db := mocks.NewStore()
	alice := seedUser(db, "Alice Jones", "9A", classverse.RoleStudent)
	bob := seedUser(db, "Bob Smith", "9A", classverse.RoleStudent)
	admin := seedUser(db, "Head Teacher", "", classverse.RoleAdmin)

	p, err := services.NewPlanner(db)
	require.NoError(t, err)

	hw, err := p.CreateHomework(alice.ID, classverse.NewHomework{
		Subject: "Math",
		Task:    "Exercises 1-10",
		DueDate: time.Now().UTC().Add(48 * time.Hour),
	})
	require.NoError(t, err)

	assert.Equal(t, classverse.ErrPermissionDenied, p.DeleteHomework(bob.ID, hw.ID))
	require.NoError(t, p.DeleteHomework(alice.ID, hw.ID))

	hw2, err := p.CreateHomework(alice.ID, classverse.NewHomework{
		Subject: "History",
		Task:    "Read chapter 4",
		DueDate: time.Now().UTC().Add(48 * time.Hour),
	})
	require.NoError(t, err)

	// an admin may delete anyone's assignment
	require.NoError(t, p.DeleteHomework(admin.ID, hw2.ID))
}

func TestHomeworkStats(t *testing.T) {
	db := mocks.NewStore()
	alice := seedUser(db, "Alice Jones", "9A", classverse.RoleStudent)

	p, err := services.NewPlanner(db)
	require.NoError(t, err)

	now := time.Now().UTC()
	_, err = p.CreateHomework(alice.ID, classverse.NewHomework{
		Subject: "Math", Task: "Late one", DueDate: now.Add(-48 * time.Hour),
	})
	require.NoError(t, err)
	_, err = p.CreateHomework(alice.ID, classverse.NewHomework{
		Subject: "History", Task: "Upcoming", DueDate: now.Add(48 * time.Hour),
	})
	require.NoError(t, err)
	completed, err := p.CreateHomework(alice.ID, classverse.NewHomework{
		Subject: "Biology", Task: "Done one", DueDate: now.Add(-48 * time.Hour),
	})
	require.NoError(t, err)

	_, err = p.ToggleHomework(alice.ID, completed.ID)
	require.NoError(t, err)

	stats, err := p.HomeworkStats(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 2, stats.Pending)
	assert.Equal(t, 1, stats.Overdue)
}
