package store

import (
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/classverse/classverse"
)

type homework struct {
	ID        string    `db:"id"`
	Subject   string    `db:"subject"`
	Task      string    `db:"task"`
	DueDate   time.Time `db:"due_date"`
	CreatedBy string    `db:"created_by"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func homeworkFromModel(h *classverse.Homework) *homework {
	return &homework{
		ID:        h.ID,
		Subject:   h.Subject,
		Task:      h.Task,
		DueDate:   h.DueDate,
		CreatedBy: h.CreatedBy,
		CreatedAt: h.CreatedAt,
		UpdatedAt: h.UpdatedAt,
	}
}

func (h *homework) ToModel() *classverse.Homework {
	return &classverse.Homework{
		ID:        h.ID,
		Subject:   h.Subject,
		Task:      h.Task,
		DueDate:   h.DueDate,
		CreatedBy: h.CreatedBy,
		CreatedAt: h.CreatedAt,
		UpdatedAt: h.UpdatedAt,
	}
}

func (d *database) CreateHomework(h *classverse.Homework) (*classverse.Homework, error) {
	dhw := homeworkFromModel(h)
	_, err := psql.Insert("homework").
		Columns("id", "subject", "task", "due_date", "created_by", "created_at", "updated_at").
		Values(dhw.ID, dhw.Subject, dhw.Task, dhw.DueDate, dhw.CreatedBy, dhw.CreatedAt, dhw.UpdatedAt).
		RunWith(d).Exec()
	if err != nil {
		return nil, err
	}

	return dhw.ToModel(), nil
}

// GetHomework returns all assignments in due-date order with the
// given user's completion flag joined on.
func (d *database) GetHomework(userID string) ([]*classverse.Homework, error) {
	rows, err := psql.Select("hw.id", "hw.subject", "hw.task", "hw.due_date", "hw.created_by",
		"hw.created_at", "hw.updated_at").
		Column(sq.Expr("EXISTS (SELECT 1 FROM completed_homework chw WHERE chw.homework_id = hw.id AND chw.user_id = ?)", userID)).
		From("homework as hw").
		OrderBy("hw.due_date ASC").
		RunWith(d).Query()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []*classverse.Homework
	for rows.Next() {
		var h homework
		var done bool
		err := rows.Scan(&h.ID, &h.Subject, &h.Task, &h.DueDate, &h.CreatedBy, &h.CreatedAt, &h.UpdatedAt, &done)
		if err != nil {
			continue
		}

		mod := h.ToModel()
		mod.Completed = done
		assignments = append(assignments, mod)
	}

	return assignments, nil
}

func (d *database) GetHomeworkByID(id string) (*classverse.Homework, error) {
	var h homework
	row := psql.Select("id", "subject", "task", "due_date", "created_by", "created_at", "updated_at").
		From("homework").Where(sq.Eq{"id": id}).RunWith(d).QueryRow()
	err := row.Scan(&h.ID, &h.Subject, &h.Task, &h.DueDate, &h.CreatedBy, &h.CreatedAt, &h.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, classverse.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return h.ToModel(), nil
}

func (d *database) DeleteHomework(id string) error {
	res, err := psql.Delete("homework").Where(sq.Eq{"id": id}).RunWith(d).Exec()
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return classverse.ErrNotFound
	}
	return nil
}

func (d *database) IsHomeworkDone(homeworkID, userID string) (bool, error) {
	var done bool
	err := d.QueryRow("SELECT EXISTS (SELECT 1 FROM completed_homework WHERE homework_id = $1 AND user_id = $2)",
		homeworkID, userID).Scan(&done)
	return done, err
}

func (d *database) SetHomeworkDone(homeworkID, userID string, done bool) error {
	if !done {
		_, err := psql.Delete("completed_homework").
			Where(sq.Eq{"homework_id": homeworkID, "user_id": userID}).
			RunWith(d).Exec()
		return err
	}

	_, err := psql.Insert("completed_homework").
		Columns("homework_id", "user_id", "completed_at").
		Values(homeworkID, userID, time.Now().UTC()).
		Suffix("ON CONFLICT (homework_id, user_id) DO NOTHING").
		RunWith(d).Exec()
	return err
}
