package classverse

import "time"

// Lesson is one slot in a class's weekly schedule, keyed by
// (class, day of week, lesson number).
type Lesson struct {
	ID           string    `json:"id"`
	ClassName    string    `json:"class_name" validate:"required"`
	DayOfWeek    int       `json:"day_of_week" validate:"min=1,max=7"`
	LessonNumber int       `json:"lesson_number" validate:"min=1,max=8"`
	Subject      string    `json:"subject_name" validate:"required"`
	Teacher      string    `json:"teacher_name"`
	Classroom    string    `json:"classroom"`
	StartTime    string    `json:"start_time"`
	EndTime      string    `json:"end_time"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DayName returns the schedule's display name for the lesson's day.
func (l *Lesson) DayName() string {
	if l.DayOfWeek < 1 || l.DayOfWeek > 7 {
		return ""
	}
	return dayNames[l.DayOfWeek-1]
}

var dayNames = [7]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// lessonTimes is the default bell schedule applied when a lesson is
// saved without explicit times.
var lessonTimes = map[int][2]string{
	1: {"09:00", "09:45"},
	2: {"10:00", "10:45"},
	3: {"11:00", "11:45"},
	4: {"11:55", "12:40"},
	5: {"13:00", "13:45"},
	6: {"14:05", "14:50"},
	7: {"15:00", "15:45"},
	8: {"15:55", "16:40"},
}

// LessonTime returns the default start and end time for the given
// lesson number.
func LessonTime(number int) (start, end string) {
	t, ok := lessonTimes[number]
	if !ok {
		return "", ""
	}
	return t[0], t[1]
}

// ClassInfo summarizes one class for the schedule overview.
type ClassInfo struct {
	ClassName    string `json:"class_name"`
	StudentCount int    `json:"student_count"`
	LessonCount  int    `json:"lesson_count"`
}
