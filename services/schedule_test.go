package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classverse/classverse"
	"github.com/classverse/classverse/mocks"
	"github.com/classverse/classverse/services"
)

func TestPutLessonAdminOnly(t *testing.T) {
	db := mocks.NewStore()
	student := seedUser(db, "Alice Jones", "9A", classverse.RoleStudent)

	s, err := services.NewScheduler(db)
	require.NoError(t, err)

	_, err = s.PutLesson(student.ID, &classverse.Lesson{
		ClassName: "9A", DayOfWeek: 1, LessonNumber: 1, Subject: "Math",
	})
	assert.Equal(t, classverse.ErrPermissionDenied, err)
}

func TestPutLessonDefaultTimes(t *testing.T) {
	db := mocks.NewStore()
	admin := seedUser(db, "Head Teacher", "", classverse.RoleAdmin)

	s, err := services.NewScheduler(db)
	require.NoError(t, err)

	lesson, err := s.PutLesson(admin.ID, &classverse.Lesson{
		ClassName: "9A", DayOfWeek: 1, LessonNumber: 3, Subject: "Math",
	})
	require.NoError(t, err)
	assert.Equal(t, "11:00", lesson.StartTime)
	assert.Equal(t, "11:45", lesson.EndTime)
	assert.NotEmpty(t, lesson.ID)
}

func TestPutLessonReplacesSlot(t *testing.T) {
	db := mocks.NewStore()
	admin := seedUser(db, "Head Teacher", "", classverse.RoleAdmin)

	s, err := services.NewScheduler(db)
	require.NoError(t, err)

	_, err = s.PutLesson(admin.ID, &classverse.Lesson{
		ClassName: "9A", DayOfWeek: 2, LessonNumber: 1, Subject: "Math",
	})
	require.NoError(t, err)

	_, err = s.PutLesson(admin.ID, &classverse.Lesson{
		ClassName: "9A", DayOfWeek: 2, LessonNumber: 1, Subject: "History",
	})
	require.NoError(t, err)

	schedule, err := s.ClassSchedule("9A")
	require.NoError(t, err)
	require.Len(t, schedule, 1)
	assert.Equal(t, "History", schedule[0].Subject)
}

func TestClassScheduleOrder(t *testing.T) {
	db := mocks.NewStore()
	admin := seedUser(db, "Head Teacher", "", classverse.RoleAdmin)

	s, err := services.NewScheduler(db)
	require.NoError(t, err)

	for _, slot := range []struct{ day, num int }{{3, 2}, {1, 2}, {1, 1}} {
		_, err = s.PutLesson(admin.ID, &classverse.Lesson{
			ClassName: "9A", DayOfWeek: slot.day, LessonNumber: slot.num, Subject: "Math",
		})
		require.NoError(t, err)
	}

	schedule, err := s.ClassSchedule("9A")
	require.NoError(t, err)
	require.Len(t, schedule, 3)
	assert.Equal(t, 1, schedule[0].DayOfWeek)
	assert.Equal(t, 1, schedule[0].LessonNumber)
	assert.Equal(t, 2, schedule[1].LessonNumber)
	assert.Equal(t, 3, schedule[2].DayOfWeek)
}

func TestDeleteLessonAdminOnly(t *testing.T) {
	db := mocks.NewStore()
	admin := seedUser(db, "Head Teacher", "", classverse.RoleAdmin)
	student := seedUser(db, "Alice Jones", "9A", classverse.RoleStudent)

	s, err := services.NewScheduler(db)
	require.NoError(t, err)

	lesson, err := s.PutLesson(admin.ID, &classverse.Lesson{
		ClassName: "9A", DayOfWeek: 1, LessonNumber: 1, Subject: "Math",
	})
	require.NoError(t, err)

	assert.Equal(t, classverse.ErrPermissionDenied, s.DeleteLesson(student.ID, lesson.ID))
	require.NoError(t, s.DeleteLesson(admin.ID, lesson.ID))
}
