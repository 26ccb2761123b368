package models

import "time"

// PendingRequest - строка списка заявок для админки.
type PendingRequest struct {
	ID          uint
	UserID      uint
	CourseID    uint
	Username    string
	FullName    string
	Email       string
	CourseTitle LocalizedText
	CreatedAt   time.Time
}

// LessonProgress is a lesson together with the learner's completion flag.
// Completed is false both for an incomplete row and a missing one.
type LessonProgress struct {
	Lesson    Lesson
	Completed bool
}

// CourseProgress - курс с уроками и прогрессом ученика.
type CourseProgress struct {
	Course  Course
	Lessons []LessonProgress
}

// Done counts completed lessons.
func (c CourseProgress) Done() int {
	n := 0
	for _, l := range c.Lessons {
		if l.Completed {
			n++
		}
	}
	return n
}

// Percent is the completion ratio rounded down.
func (c CourseProgress) Percent() int {
	if len(c.Lessons) == 0 {
		return 0
	}
	return c.Done() * 100 / len(c.Lessons)
}

// EnrolleeProgress is one row of the admin progress report.
type EnrolleeProgress struct {
	UserID    uint
	Username  string
	FullName  string
	Completed int
	Total     int
}
