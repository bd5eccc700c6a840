package classverse

import "time"

// Homework is an assignment visible to the whole school. Completion
// is tracked per user, not on the assignment itself.
type Homework struct {
	ID        string    `json:"id"`
	Subject   string    `json:"subject"`
	Task      string    `json:"task"`
	DueDate   time.Time `json:"due_date"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Completed is the viewing user's own completion flag.
	Completed bool `json:"completed"`
}

// NewHomework carries the fields required to create an assignment.
type NewHomework struct {
	Subject string    `json:"subject" validate:"required"`
	Task    string    `json:"task" validate:"required"`
	DueDate time.Time `json:"due_date" validate:"required"`
}

// HomeworkStats summarizes one user's view of the assignment list.
type HomeworkStats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
	Overdue   int `json:"overdue"`
}
