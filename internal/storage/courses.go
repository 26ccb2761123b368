package storage

import (
	"context"

	"gorm.io/gorm"

	"github.com/s/eduportal/internal/models"
)

func (r *Repository) CreateCourse(ctx context.Context, c *models.Course) error {
	return translate(r.conn(ctx).Omit("Lessons").Create(c).Error, "creating course")
}

func (r *Repository) UpdateCourse(ctx context.Context, c *models.Course) error {
	res := r.conn(ctx).Model(&models.Course{}).Where("id = ?", c.ID).Updates(map[string]any{
		"title_ar":      c.Title.Ar,
		"title_en":      c.Title.En,
		"short_desc_ar": c.ShortDesc.Ar,
		"short_desc_en": c.ShortDesc.En,
		"full_desc_ar":  c.FullDesc.Ar,
		"full_desc_en":  c.FullDesc.En,
		"image":         c.Image,
	})
	if res.Error != nil {
		return translate(res.Error, "updating course")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCourse removes the dependent rows first, all in one transaction.
// Внутри Tx gorm делает SAVEPOINT.
func (r *Repository) DeleteCourse(ctx context.Context, id uint) error {
	return r.conn(ctx).Transaction(func(db *gorm.DB) error {
		lessonIDs := db.Model(&models.Lesson{}).Select("id").Where("course_id = ?", id)

		steps := []struct {
			msg string
			run func() *gorm.DB
		}{
			{"deleting progress", func() *gorm.DB {
				return db.Where("lesson_id IN (?)", lessonIDs).Delete(&models.UserProgress{})
			}},
			{"deleting lessons", func() *gorm.DB { return db.Where("course_id = ?", id).Delete(&models.Lesson{}) }},
			{"deleting enrollments", func() *gorm.DB { return db.Where("course_id = ?", id).Delete(&models.Enrollment{}) }},
			{"deleting requests", func() *gorm.DB { return db.Where("course_id = ?", id).Delete(&models.EnrollRequest{}) }},
		}
		for _, s := range steps {
			if err := s.run().Error; err != nil {
				return translate(err, s.msg)
			}
		}

		res := db.Delete(&models.Course{}, id)
		if res.Error != nil {
			return translate(res.Error, "deleting course")
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *Repository) CourseByID(ctx context.Context, id uint) (models.Course, error) {
	var c models.Course
	err := r.conn(ctx).First(&c, id).Error
	return c, translate(err, "getting course")
}

func (r *Repository) ListCourses(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	err := r.conn(ctx).Order("id DESC").Find(&courses).Error
	return courses, translate(err, "listing courses")
}

func (r *Repository) CoursesNotApproved(ctx context.Context, userID uint) ([]models.Course, error) {
	var courses []models.Course
	approved := r.conn(ctx).Model(&models.Enrollment{}).
		Select("course_id").
		Where("user_id = ? AND approved = ?", userID, true)
	err := r.conn(ctx).Where("id NOT IN (?)", approved).Order("id").Find(&courses).Error
	return courses, translate(err, "listing courses not approved")
}

func (r *Repository) ApprovedCourses(ctx context.Context, userID uint) ([]models.Course, error) {
	var courses []models.Course
	err := r.conn(ctx).
		Joins("JOIN enrollments e ON e.course_id = courses.id").
		Where("e.user_id = ? AND e.approved = ?", userID, true).
		Order("courses.id").
		Find(&courses).Error
	return courses, translate(err, "listing approved courses")
}
