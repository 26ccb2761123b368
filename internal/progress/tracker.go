// Package progress tracks per-lesson completion for enrolled learners.
package progress

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/s/eduportal/internal/metrics"
	"github.com/s/eduportal/internal/models"
	"github.com/s/eduportal/internal/notify"
	"github.com/s/eduportal/internal/storage"
)

var (
	ErrLessonNotFound = errors.New("lesson not found")
	ErrCourseNotFound = errors.New("course not found")
	ErrNotEnrolled    = errors.New("not enrolled in course")
	ErrIncomplete     = errors.New("course not completed")
)

// Eligibility is the certificate check result for one (user, course).
type Eligibility struct {
	Enrolled  bool
	Completed int
	Total     int
}

// Eligible holds when the learner is enrolled and every lesson is completed.
func (e Eligibility) Eligible() bool {
	return e.Enrolled && e.Completed == e.Total
}

type Tracker struct {
	store storage.Store
	wa    notify.WhatsApp
	log   *zap.Logger
}

func NewTracker(store storage.Store, wa notify.WhatsApp, log *zap.Logger) *Tracker {
	return &Tracker{store: store, wa: wa, log: log.Named("progress")}
}

// MarkWatched sets the lesson completed for the user. The user must hold an
// approved enrollment in the lesson's course. Repeated calls are no-ops.
func (t *Tracker) MarkWatched(ctx context.Context, userID, lessonID uint) error {
	lesson, err := t.store.LessonByID(ctx, lessonID)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrLessonNotFound
	}
	if err != nil {
		return err
	}

	ok, err := t.store.IsApproved(ctx, userID, lesson.CourseID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotEnrolled
	}

	err = t.store.Tx(ctx, func(tx storage.Store) error {
		if err := tx.MarkCompleted(ctx, userID, lessonID); err != nil {
			return err
		}
		return tx.LogActivity(ctx, models.NewActivity(userID, models.ActionLessonWatched, map[string]any{
			"course_id": lesson.CourseID,
			"lesson_id": lessonID,
		}))
	})
	if err != nil {
		return errors.Wrap(err, "marking lesson watched")
	}
	metrics.LessonsWatched.Inc()
	return nil
}

// CertificateEligibility counts completed lessons against all lessons of the course.
// Курс без уроков считается завершённым.
func (t *Tracker) CertificateEligibility(ctx context.Context, userID, courseID uint) (Eligibility, error) {
	var e Eligibility
	var err error

	if e.Enrolled, err = t.store.IsApproved(ctx, userID, courseID); err != nil {
		return Eligibility{}, err
	}
	if e.Total, err = t.store.CountLessons(ctx, courseID); err != nil {
		return Eligibility{}, err
	}
	if e.Completed, err = t.store.CountCompleted(ctx, userID, courseID); err != nil {
		return Eligibility{}, err
	}
	return e, nil
}

// RequestCertificate returns the WhatsApp link for an eligible learner.
func (t *Tracker) RequestCertificate(ctx context.Context, user models.User, courseID uint, lang models.Lang) (string, error) {
	course, err := t.store.CourseByID(ctx, courseID)
	if errors.Is(err, storage.ErrNotFound) {
		return "", ErrCourseNotFound
	}
	if err != nil {
		return "", err
	}

	e, err := t.CertificateEligibility(ctx, user.ID, courseID)
	if err != nil {
		return "", err
	}
	switch {
	case !e.Enrolled:
		metrics.CertificateRequests.WithLabelValues("not_enrolled").Inc()
		return "", ErrNotEnrolled
	case !e.Eligible():
		metrics.CertificateRequests.WithLabelValues("incomplete").Inc()
		return "", ErrIncomplete
	}

	if err := t.store.LogActivity(ctx, models.NewActivity(user.ID, models.ActionCertificateRequest, map[string]any{
		"course_id": courseID,
	})); err != nil {
		t.log.Warn("activity log failed", zap.Error(err))
	}
	metrics.CertificateRequests.WithLabelValues("eligible").Inc()
	return t.wa.CertificateLink(lang, course.Title.Resolve(lang), user.Username), nil
}

// CourseProgress returns the course lessons in position order with the user's
// completion flags.
func (t *Tracker) CourseProgress(ctx context.Context, userID uint, course models.Course) (models.CourseProgress, error) {
	lessons, err := t.store.LessonsByCourse(ctx, course.ID)
	if err != nil {
		return models.CourseProgress{}, err
	}
	rows, err := t.store.ProgressRows(ctx, userID, course.ID)
	if err != nil {
		return models.CourseProgress{}, err
	}

	cp := models.CourseProgress{Course: course, Lessons: make([]models.LessonProgress, 0, len(lessons))}
	for _, l := range lessons {
		cp.Lessons = append(cp.Lessons, models.LessonProgress{Lesson: l, Completed: rows[l.ID].Completed})
	}
	return cp, nil
}

// Enrolled returns every approved course of the user with its progress.
func (t *Tracker) Enrolled(ctx context.Context, userID uint) ([]models.CourseProgress, error) {
	courses, err := t.store.ApprovedCourses(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]models.CourseProgress, 0, len(courses))
	for _, c := range courses {
		cp, err := t.CourseProgress(ctx, userID, c)
		if err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	return out, nil
}
