package services

import (
	"time"

	"github.com/google/uuid"

	"github.com/classverse/classverse"
	"github.com/classverse/classverse/store"
)

type planner struct {
	DB store.Database
}

// NewPlanner wraps a database connection with a *planner that
// implements the classverse.Planner interface.
func NewPlanner(db store.Database) (classverse.Planner, error) {
	return &planner{
		DB: db,
	}, nil
}

func (p *planner) ListHomework(userID string) ([]*classverse.Homework, error) {
	return p.DB.GetHomework(userID)
}

func (p *planner) CreateHomework(userID string, nh classverse.NewHomework) (*classverse.Homework, error) {
	now := time.Now().UTC()
	return p.DB.CreateHomework(&classverse.Homework{
		ID:        uuid.New().String(),
		Subject:   nh.Subject,
		Task:      nh.Task,
		DueDate:   nh.DueDate,
		CreatedBy: userID,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// DeleteHomework removes an assignment. Only its creator or an admin
// may do this.
func (p *planner) DeleteHomework(userID, homeworkID string) error {
	hw, err := p.DB.GetHomeworkByID(homeworkID)
	if err != nil {
		return err
	}

	if hw.CreatedBy != userID {
		caller, err := p.DB.GetUser(userID)
		if err != nil {
			return err
		}
		if !caller.IsAdmin() {
			return classverse.ErrPermissionDenied
		}
	}

	return p.DB.DeleteHomework(homeworkID)
}

// ToggleHomework flips the caller's completion flag and returns the
// new state.
func (p *planner) ToggleHomework(userID, homeworkID string) (bool, error) {
	if _, err := p.DB.GetHomeworkByID(homeworkID); err != nil {
		return false, err
	}

	done, err := p.DB.IsHomeworkDone(homeworkID, userID)
	if err != nil {
		return false, err
	}

	if err := p.DB.SetHomeworkDone(homeworkID, userID, !done); err != nil {
		return false, err
	}
	return !done, nil
}

// HomeworkStats summarizes the caller's view of the assignment list.
// An assignment counts as overdue when it is pending and was due
// before the start of today.
func (p *planner) HomeworkStats(userID string) (classverse.HomeworkStats, error) {
	assignments, err := p.DB.GetHomework(userID)
	if err != nil {
		return classverse.HomeworkStats{}, err
	}

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	stats := classverse.HomeworkStats{Total: len(assignments)}
	for _, hw := range assignments {
		if hw.Completed {
			stats.Completed++
			continue
		}
		stats.Pending++
		if hw.DueDate.Before(today) {
			stats.Overdue++
		}
	}
	return stats, nil
}
