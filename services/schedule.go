package services

import (
	"time"

	"github.com/google/uuid"

	"github.com/classverse/classverse"
	"github.com/classverse/classverse/store"
)

type scheduler struct {
	DB store.Database
}

// NewScheduler wraps a database connection with a *scheduler that
// implements the classverse.Scheduler interface.
func NewScheduler(db store.Database) (classverse.Scheduler, error) {
	return &scheduler{
		DB: db,
	}, nil
}

func (s *scheduler) ClassSchedule(className string) ([]*classverse.Lesson, error) {
	return s.DB.GetClassSchedule(className)
}

func (s *scheduler) Classes() ([]*classverse.ClassInfo, error) {
	return s.DB.GetClasses()
}

// PutLesson writes a lesson into its (class, day, number) slot.
// Admin-only; missing times fall back to the default bell schedule.
func (s *scheduler) PutLesson(callerID string, l *classverse.Lesson) (*classverse.Lesson, error) {
	caller, err := s.DB.GetUser(callerID)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() {
		return nil, classverse.ErrPermissionDenied
	}

	if l.StartTime == "" || l.EndTime == "" {
		l.StartTime, l.EndTime = classverse.LessonTime(l.LessonNumber)
	}

	now := time.Now().UTC()
	if l.ID == "" {
		l.ID = uuid.New().String()
		l.CreatedAt = now
	}
	l.UpdatedAt = now

	return s.DB.UpsertLesson(l)
}

func (s *scheduler) DeleteLesson(callerID, lessonID string) error {
	caller, err := s.DB.GetUser(callerID)
	if err != nil {
		return err
	}
	if !caller.IsAdmin() {
		return classverse.ErrPermissionDenied
	}

	return s.DB.DeleteLesson(lessonID)
}
