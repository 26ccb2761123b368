package models

import (
	"time"

	"gorm.io/datatypes"
)

// Действия, которые пишутся в журнал.
const (
	ActionEnrollRequested    = "enroll_requested"
	ActionEnrollAccepted     = "enroll_accepted"
	ActionEnrollRejected     = "enroll_rejected"
	ActionLessonWatched      = "lesson_watched"
	ActionCertificateRequest = "certificate_requested"
)

// ActivityLog хранит историю действий пользователя
type ActivityLog struct {
	ID        uint              `gorm:"primarykey"`
	UserID    uint              `gorm:"index"`
	Action    string            `json:"action"`
	Details   datatypes.JSONMap `json:"details"`
	CreatedAt time.Time         `json:"created_at"`
}

// TableName keeps the singular table name used by the schema.
func (ActivityLog) TableName() string { return "activity_log" }

// NewActivity builds a log entry; details are stored as a JSON object.
func NewActivity(userID uint, action string, details map[string]any) ActivityLog {
	return ActivityLog{
		UserID:  userID,
		Action:  action,
		Details: datatypes.JSONMap(details),
	}
}
