package progress

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/s/eduportal/internal/models"
	"github.com/s/eduportal/internal/storage"
)

// AddLesson creates the lesson and, in the same transaction, seeds incomplete
// progress for every approved enrollee of its course.
// Уроки, добавленные после зачисления, тоже входят в подсчёт для сертификата.
func (t *Tracker) AddLesson(ctx context.Context, lesson *models.Lesson) (int, error) {
	var seeded int
	err := t.store.Tx(ctx, func(tx storage.Store) error {
		if err := tx.CreateLesson(ctx, lesson); err != nil {
			return err
		}
		var err error
		seeded, err = seedLesson(ctx, tx, *lesson)
		return err
	})
	if err != nil {
		return 0, errors.Wrap(err, "adding lesson")
	}
	if seeded > 0 {
		t.log.Info("seeded progress for new lesson",
			zap.Uint("lesson_id", lesson.ID), zap.Uint("course_id", lesson.CourseID), zap.Int("rows", seeded))
	}
	return seeded, nil
}

// ReconcileCourse backfills missing progress rows for every lesson of the course.
// Existing rows are left as they are.
func (t *Tracker) ReconcileCourse(ctx context.Context, courseID uint) (int, error) {
	if _, err := t.store.CourseByID(ctx, courseID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return 0, ErrCourseNotFound
		}
		return 0, err
	}

	var seeded int
	err := t.store.Tx(ctx, func(tx storage.Store) error {
		lessons, err := tx.LessonsByCourse(ctx, courseID)
		if err != nil {
			return err
		}
		for _, l := range lessons {
			n, err := seedLesson(ctx, tx, l)
			if err != nil {
				return err
			}
			seeded += n
		}
		return nil
	})
	if err != nil {
		return 0, errors.Wrap(err, "reconciling course")
	}
	t.log.Info("course reconciled", zap.Uint("course_id", courseID), zap.Int("rows", seeded))
	return seeded, nil
}

func seedLesson(ctx context.Context, tx storage.Store, lesson models.Lesson) (int, error) {
	userIDs, err := tx.ApprovedUserIDs(ctx, lesson.CourseID)
	if err != nil {
		return 0, err
	}
	rows := make([]models.UserProgress, 0, len(userIDs))
	for _, id := range userIDs {
		rows = append(rows, models.UserProgress{UserID: id, LessonID: lesson.ID})
	}
	return tx.SeedProgress(ctx, rows)
}
