package store

import (
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/classverse/classverse"
)

type lesson struct {
	ID           string    `db:"id"`
	ClassName    string    `db:"class_name"`
	DayOfWeek    int       `db:"day_of_week"`
	LessonNumber int       `db:"lesson_number"`
	Subject      string    `db:"subject_name"`
	Teacher      string    `db:"teacher_name"`
	Classroom    string    `db:"classroom"`
	StartTime    string    `db:"start_time"`
	EndTime      string    `db:"end_time"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func lessonFromModel(l *classverse.Lesson) *lesson {
	return &lesson{
		ID:           l.ID,
		ClassName:    l.ClassName,
		DayOfWeek:    l.DayOfWeek,
		LessonNumber: l.LessonNumber,
		Subject:      l.Subject,
		Teacher:      l.Teacher,
		Classroom:    l.Classroom,
		StartTime:    l.StartTime,
		EndTime:      l.EndTime,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

func (l *lesson) ToModel() *classverse.Lesson {
	return &classverse.Lesson{
		ID:           l.ID,
		ClassName:    l.ClassName,
		DayOfWeek:    l.DayOfWeek,
		LessonNumber: l.LessonNumber,
		Subject:      l.Subject,
		Teacher:      l.Teacher,
		Classroom:    l.Classroom,
		StartTime:    l.StartTime,
		EndTime:      l.EndTime,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

var lessonColumns = []string{
	"id", "class_name", "day_of_week", "lesson_number", "subject_name",
	"teacher_name", "classroom", "start_time", "end_time", "created_at", "updated_at",
}

// UpsertLesson writes the lesson for its (class, day, number) slot,
// replacing whatever was scheduled there.
func (d *database) UpsertLesson(l *classverse.Lesson) (*classverse.Lesson, error) {
	dlesson := lessonFromModel(l)
	_, err := psql.Insert("schedule").
		Columns(lessonColumns...).
		Values(dlesson.ID, dlesson.ClassName, dlesson.DayOfWeek, dlesson.LessonNumber, dlesson.Subject,
			dlesson.Teacher, dlesson.Classroom, dlesson.StartTime, dlesson.EndTime,
			dlesson.CreatedAt, dlesson.UpdatedAt).
		Suffix(`ON CONFLICT (class_name, day_of_week, lesson_number) DO UPDATE SET
			subject_name = EXCLUDED.subject_name,
			teacher_name = EXCLUDED.teacher_name,
			classroom = EXCLUDED.classroom,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			updated_at = EXCLUDED.updated_at`).
		RunWith(d).Exec()
	if err != nil {
		return nil, err
	}

	return d.GetLessonForSlot(l.ClassName, l.DayOfWeek, l.LessonNumber)
}

func (d *database) GetLesson(id string) (*classverse.Lesson, error) {
	row := psql.Select(lessonColumns...).
		From("schedule").Where(sq.Eq{"id": id}).RunWith(d).QueryRow()
	return scanLesson(row)
}

// GetLessonForSlot fetches the lesson occupying (class, day, number).
func (d *database) GetLessonForSlot(className string, day, number int) (*classverse.Lesson, error) {
	row := psql.Select(lessonColumns...).
		From("schedule").
		Where(sq.Eq{"class_name": className, "day_of_week": day, "lesson_number": number}).
		RunWith(d).QueryRow()
	return scanLesson(row)
}

func scanLesson(row sq.RowScanner) (*classverse.Lesson, error) {
	var l lesson
	err := row.Scan(&l.ID, &l.ClassName, &l.DayOfWeek, &l.LessonNumber, &l.Subject,
		&l.Teacher, &l.Classroom, &l.StartTime, &l.EndTime, &l.CreatedAt, &l.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, classverse.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return l.ToModel(), nil
}

func (d *database) GetClassSchedule(className string) ([]*classverse.Lesson, error) {
	rows, err := psql.Select(lessonColumns...).
		From("schedule").
		Where(sq.Eq{"class_name": className}).
		OrderBy("day_of_week", "lesson_number").
		RunWith(d).Query()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lessons []*classverse.Lesson
	for rows.Next() {
		mod, err := scanLesson(rows)
		if err != nil {
			continue
		}
		lessons = append(lessons, mod)
	}

	return lessons, nil
}

// GetClasses lists every class name seen on a profile, with student
// and scheduled-lesson counts.
func (d *database) GetClasses() ([]*classverse.ClassInfo, error) {
	rows, err := d.Query(`
		SELECT p.class_name, COUNT(DISTINCT p.id),
			(SELECT COUNT(*) FROM schedule s WHERE s.class_name = p.class_name)
		FROM profiles p
		WHERE p.class_name <> ''
		GROUP BY p.class_name
		ORDER BY p.class_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var classes []*classverse.ClassInfo
	for rows.Next() {
		var c classverse.ClassInfo
		if err := rows.Scan(&c.ClassName, &c.StudentCount, &c.LessonCount); err != nil {
			continue
		}
		classes = append(classes, &c)
	}

	return classes, nil
}

func (d *database) DeleteLesson(id string) error {
	res, err := psql.Delete("schedule").Where(sq.Eq{"id": id}).RunWith(d).Exec()
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return classverse.ErrNotFound
	}
	return nil
}
