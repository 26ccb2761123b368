package storage

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/s/eduportal/internal/models"
)

func (r *Repository) SeedProgress(ctx context.Context, rows []models.UserProgress) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	for i := range rows {
		rows[i].ID = 0
		rows[i].Completed = false
	}
	res := r.conn(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows)
	return int(res.RowsAffected), translate(res.Error, "seeding progress")
}

func (r *Repository) MarkCompleted(ctx context.Context, userID, lessonID uint) error {
	row := models.UserProgress{UserID: userID, LessonID: lessonID, Completed: true}
	err := r.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.Assignments(map[string]any{"completed": true}),
	}).Create(&row).Error
	return translate(err, "marking lesson completed")
}

func (r *Repository) CountCompleted(ctx context.Context, userID, courseID uint) (int, error) {
	var n int64
	err := r.conn(ctx).Model(&models.UserProgress{}).
		Joins("JOIN lessons l ON l.id = user_progress.lesson_id").
		Where("user_progress.user_id = ? AND l.course_id = ? AND user_progress.completed = ?", userID, courseID, true).
		Count(&n).Error
	return int(n), translate(err, "counting completed lessons")
}

func (r *Repository) ProgressRows(ctx context.Context, userID, courseID uint) (map[uint]models.UserProgress, error) {
	var rows []models.UserProgress
	err := r.conn(ctx).
		Joins("JOIN lessons l ON l.id = user_progress.lesson_id").
		Where("user_progress.user_id = ? AND l.course_id = ?", userID, courseID).
		Find(&rows).Error
	if err != nil {
		return nil, translate(err, "listing progress")
	}
	out := make(map[uint]models.UserProgress, len(rows))
	for _, row := range rows {
		out[row.LessonID] = row
	}
	return out, nil
}
