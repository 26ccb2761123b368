// Package enrollment implements the request -> accept/reject workflow.
package enrollment

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
	ErrCourseNotFound  = errors.New("course not found")
	ErrRequestNotFound = errors.New("enroll request not found")
)

// Outcome describes what Request did.
type Outcome int

const (
	Created Outcome = iota
	AlreadyPending
	AlreadyAccepted
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case AlreadyPending:
		return "already_pending"
	case AlreadyAccepted:
		return "already_accepted"
	default:
		return "unknown"
	}
}

// RequestResult carries the outcome plus the contact link, set only for Created.
type RequestResult struct {
	Outcome    Outcome
	Course     models.Course
	ContactURL string
}

type Service struct {
	store storage.Store
	wa    notify.WhatsApp
	log   *zap.Logger
}

func NewService(store storage.Store, wa notify.WhatsApp, log *zap.Logger) *Service {
	return &Service{store: store, wa: wa, log: log.Named("enrollment")}
}

// Request files a pending request for (user, course). An existing request of
// any status makes it a no-op.
func (s *Service) Request(ctx context.Context, user models.User, courseID uint, lang models.Lang) (RequestResult, error) {
	course, err := s.store.CourseByID(ctx, courseID)
	if errors.Is(err, storage.ErrNotFound) {
		return RequestResult{}, ErrCourseNotFound
	}
	if err != nil {
		return RequestResult{}, err
	}
	res := RequestResult{Course: course}

	existing, err := s.store.EnrollRequestFor(ctx, user.ID, courseID)
	switch {
	case err == nil:
		res.Outcome = AlreadyPending
		if existing.Accepted() {
			res.Outcome = AlreadyAccepted
		}
		metrics.EnrollRequests.WithLabelValues(res.Outcome.String()).Inc()
		return res, nil
	case !errors.Is(err, storage.ErrNotFound):
		return RequestResult{}, err
	}

	err = s.store.Tx(ctx, func(tx storage.Store) error {
		req := models.EnrollRequest{UserID: user.ID, CourseID: courseID, Status: models.StatusPending}
		if err := tx.CreateEnrollRequest(ctx, &req); err != nil {
			return err
		}
		return tx.LogActivity(ctx, models.NewActivity(user.ID, models.ActionEnrollRequested, map[string]any{
			"course_id":  courseID,
			"request_id": req.ID,
		}))
	})
	if errors.Is(err, storage.ErrDuplicate) {
		// Параллельный запрос успел раньше.
		res.Outcome = AlreadyPending
		metrics.EnrollRequests.WithLabelValues(res.Outcome.String()).Inc()
		return res, nil
	}
	if err != nil {
		return RequestResult{}, errors.Wrap(err, "creating enroll request")
	}

	res.Outcome = Created
	res.ContactURL = s.wa.EnrollmentLink(lang, course.Title.Resolve(lang), user.Username)
	metrics.EnrollRequests.WithLabelValues(res.Outcome.String()).Inc()
	s.log.Info("enroll request created", zap.Uint("user_id", user.ID), zap.Uint("course_id", courseID))
	return res, nil
}

// Accept approves the enrollment, seeds incomplete progress for every lesson of
// the course and marks the request accepted. Re-accepting is safe: existing
// progress rows are never overwritten.
func (s *Service) Accept(ctx context.Context, requestID uint) error {
	var req models.EnrollRequest
	err := s.store.Tx(ctx, func(tx storage.Store) error {
		var err error
		req, err = tx.EnrollRequestByID(ctx, requestID)
		if errors.Is(err, storage.ErrNotFound) {
			return ErrRequestNotFound
		}
		if err != nil {
			return err
		}

		if err := tx.ApproveEnrollment(ctx, req.UserID, req.CourseID); err != nil {
			return err
		}

		lessons, err := tx.LessonsByCourse(ctx, req.CourseID)
		if err != nil {
			return err
		}
		rows := make([]models.UserProgress, 0, len(lessons))
		for _, l := range lessons {
			rows = append(rows, models.UserProgress{UserID: req.UserID, LessonID: l.ID})
		}
		if _, err := tx.SeedProgress(ctx, rows); err != nil {
			return err
		}

		if err := tx.SetEnrollRequestStatus(ctx, requestID, models.StatusAccepted); err != nil {
			return err
		}
		return tx.LogActivity(ctx, models.NewActivity(req.UserID, models.ActionEnrollAccepted, map[string]any{
			"course_id":  req.CourseID,
			"request_id": requestID,
		}))
	})
	if err != nil {
		if errors.Is(err, ErrRequestNotFound) {
			return err
		}
		return errors.Wrap(err, "accepting enroll request")
	}

	metrics.EnrollDecisions.WithLabelValues("accepted").Inc()
	s.log.Info("enroll request accepted",
		zap.Uint("request_id", requestID), zap.Uint("user_id", req.UserID), zap.Uint("course_id", req.CourseID))
	return nil
}

// Reject deletes the request. Enrollment and progress are left untouched.
func (s *Service) Reject(ctx context.Context, requestID uint) error {
	err := s.store.Tx(ctx, func(tx storage.Store) error {
		req, err := tx.EnrollRequestByID(ctx, requestID)
		if errors.Is(err, storage.ErrNotFound) {
			return ErrRequestNotFound
		}
		if err != nil {
			return err
		}
		if err := tx.DeleteEnrollRequest(ctx, requestID); err != nil {
			return err
		}
		return tx.LogActivity(ctx, models.NewActivity(req.UserID, models.ActionEnrollRejected, map[string]any{
			"course_id":  req.CourseID,
			"request_id": requestID,
		}))
	})
	if err != nil {
		if errors.Is(err, ErrRequestNotFound) {
			return err
		}
		return errors.Wrap(err, "rejecting enroll request")
	}

	metrics.EnrollDecisions.WithLabelValues("rejected").Inc()
	s.log.Info("enroll request rejected", zap.Uint("request_id", requestID))
	return nil
}

// Pending lists requests awaiting a decision, newest first.
func (s *Service) Pending(ctx context.Context) ([]models.PendingRequest, error) {
	reqs, err := s.store.PendingEnrollRequests(ctx)
	return reqs, errors.Wrap(err, "listing pending requests")
}
