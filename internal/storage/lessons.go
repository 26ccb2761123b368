package storage

import (
	"context"

	"gorm.io/gorm"

	"github.com/s/eduportal/internal/models"
)

func (r *Repository) CreateLesson(ctx context.Context, l *models.Lesson) error {
	return translate(r.conn(ctx).Create(l).Error, "creating lesson")
}

func (r *Repository) UpdateLesson(ctx context.Context, l *models.Lesson) error {
	res := r.conn(ctx).Model(&models.Lesson{}).
		Where("id = ? AND course_id = ?", l.ID, l.CourseID).
		Updates(map[string]any{
			"title_ar":   l.Title.Ar,
			"title_en":   l.Title.En,
			"content_ar": l.Content.Ar,
			"content_en": l.Content.En,
			"position":   l.Position,
			"video":      l.Video,
			"video_url":  l.VideoURL,
		})
	if res.Error != nil {
		return translate(res.Error, "updating lesson")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteLesson(ctx context.Context, id uint) error {
	return r.conn(ctx).Transaction(func(db *gorm.DB) error {
		if err := db.Where("lesson_id = ?", id).Delete(&models.UserProgress{}).Error; err != nil {
			return translate(err, "deleting lesson progress")
		}
		res := db.Delete(&models.Lesson{}, id)
		if res.Error != nil {
			return translate(res.Error, "deleting lesson")
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *Repository) LessonByID(ctx context.Context, id uint) (models.Lesson, error) {
	var l models.Lesson
	err := r.conn(ctx).First(&l, id).Error
	return l, translate(err, "getting lesson")
}

func (r *Repository) LessonsByCourse(ctx context.Context, courseID uint) ([]models.Lesson, error) {
	var lessons []models.Lesson
	err := r.conn(ctx).Where("course_id = ?", courseID).Order("position ASC, id ASC").Find(&lessons).Error
	return lessons, translate(err, "listing lessons")
}

func (r *Repository) CountLessons(ctx context.Context, courseID uint) (int, error) {
	var n int64
	err := r.conn(ctx).Model(&models.Lesson{}).Where("course_id = ?", courseID).Count(&n).Error
	return int(n), translate(err, "counting lessons")
}
