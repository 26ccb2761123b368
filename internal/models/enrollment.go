package models

import "time"

// RequestStatus - статус заявки. Отклонённая заявка удаляется, отдельного статуса нет.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusAccepted RequestStatus = "accepted"
)

// EnrollRequest (Заявка на курс). Не более одной на пару (user, course).
type EnrollRequest struct {
	ID        uint          `gorm:"primarykey" json:"id"`
	UserID    uint          `gorm:"uniqueIndex:idx_enroll_requests_user_course" json:"user_id"`
	CourseID  uint          `gorm:"uniqueIndex:idx_enroll_requests_user_course" json:"course_id"`
	Status    RequestStatus `gorm:"default:pending" json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

// Accepted reports whether the request has been approved.
func (r EnrollRequest) Accepted() bool {
	return r.Status == StatusAccepted
}

// Enrollment (Подписка). Создаётся только при принятии заявки.
type Enrollment struct {
	ID       uint `gorm:"primarykey" json:"id"`
	UserID   uint `gorm:"uniqueIndex:idx_enrollments_user_course" json:"user_id"`
	CourseID uint `gorm:"uniqueIndex:idx_enrollments_user_course" json:"course_id"`
	Approved bool `json:"approved"`
}

// UserProgress - отметка о просмотре урока.
type UserProgress struct {
	ID        uint `gorm:"primarykey" json:"id"`
	UserID    uint `gorm:"uniqueIndex:idx_user_progress_user_lesson" json:"user_id"`
	LessonID  uint `gorm:"uniqueIndex:idx_user_progress_user_lesson" json:"lesson_id"`
	Completed bool `json:"completed"`
}

// TableName keeps the singular table name used by the schema.
func (UserProgress) TableName() string { return "user_progress" }
