// Package storage is the persistence boundary. Store is implemented by the gorm
// repository in this package and by memstore for tests.
package storage

import (
	"context"

	"github.com/pkg/errors"

	"github.com/s/eduportal/internal/models"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("storage: not found")
	// ErrDuplicate is returned when an insert violates a uniqueness constraint.
	ErrDuplicate = errors.New("storage: duplicate")
)

// Store is the set of queries the portal runs. Every call made on the Store
// handed to Tx's callback runs inside that transaction.
type Store interface {
	// Tx runs fn in a transaction. A non-nil error from fn rolls it back.
	Tx(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error

	UserStore
	CourseStore
	LessonStore
	EnrollmentStore
	ProgressStore
	SlideStore

	LogActivity(ctx context.Context, entry models.ActivityLog) error
}

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	UserByID(ctx context.Context, id uint) (models.User, error)
	// UserByLogin matches username or email.
	UserByLogin(ctx context.Context, login string) (models.User, error)
	UpdatePassword(ctx context.Context, id uint, hash string) error
	// SaveOAuthUser finds a user by Google ID or email and links or creates it.
	SaveOAuthUser(ctx context.Context, u models.User) (models.User, error)
}

type CourseStore interface {
	CreateCourse(ctx context.Context, c *models.Course) error
	UpdateCourse(ctx context.Context, c *models.Course) error
	// DeleteCourse atomically removes the course with its lessons, progress, enrollments and requests.
	DeleteCourse(ctx context.Context, id uint) error
	CourseByID(ctx context.Context, id uint) (models.Course, error)
	// ListCourses returns every course, newest first.
	ListCourses(ctx context.Context) ([]models.Course, error)
	// CoursesNotApproved returns courses the user holds no approved enrollment in.
	CoursesNotApproved(ctx context.Context, userID uint) ([]models.Course, error)
	// ApprovedCourses returns courses the user holds an approved enrollment in.
	ApprovedCourses(ctx context.Context, userID uint) ([]models.Course, error)
}

type LessonStore interface {
	CreateLesson(ctx context.Context, l *models.Lesson) error
	UpdateLesson(ctx context.Context, l *models.Lesson) error
	// DeleteLesson atomically removes the lesson and its progress rows.
	DeleteLesson(ctx context.Context, id uint) error
	LessonByID(ctx context.Context, id uint) (models.Lesson, error)
	// LessonsByCourse returns lessons ordered by position.
	LessonsByCourse(ctx context.Context, courseID uint) ([]models.Lesson, error)
	CountLessons(ctx context.Context, courseID uint) (int, error)
}

type EnrollmentStore interface {
	EnrollRequestByID(ctx context.Context, id uint) (models.EnrollRequest, error)
	EnrollRequestFor(ctx context.Context, userID, courseID uint) (models.EnrollRequest, error)
	CreateEnrollRequest(ctx context.Context, r *models.EnrollRequest) error
	SetEnrollRequestStatus(ctx context.Context, id uint, status models.RequestStatus) error
	DeleteEnrollRequest(ctx context.Context, id uint) error
	PendingEnrollRequests(ctx context.Context) ([]models.PendingRequest, error)

	// ApproveEnrollment upserts Enrollment(user, course) with approved set.
	ApproveEnrollment(ctx context.Context, userID, courseID uint) error
	IsApproved(ctx context.Context, userID, courseID uint) (bool, error)
	// ApprovedUserIDs lists users holding an approved enrollment in the course.
	ApprovedUserIDs(ctx context.Context, courseID uint) ([]uint, error)
}

type ProgressStore interface {
	// SeedProgress inserts incomplete rows for the given pairs, leaving existing rows untouched.
	SeedProgress(ctx context.Context, rows []models.UserProgress) (int, error)
	// MarkCompleted upserts the (user, lesson) row with completed set.
	MarkCompleted(ctx context.Context, userID, lessonID uint) error
	CountCompleted(ctx context.Context, userID, courseID uint) (int, error)
	// ProgressRows returns the user's rows for one course, keyed by lesson id.
	ProgressRows(ctx context.Context, userID, courseID uint) (map[uint]models.UserProgress, error)
}

type SlideStore interface {
	CreateSlide(ctx context.Context, s *models.HeroSlide) error
	UpdateSlide(ctx context.Context, s *models.HeroSlide) error
	DeleteSlide(ctx context.Context, id uint) error
	SlideByID(ctx context.Context, id uint) (models.HeroSlide, error)
	// ListSlides returns slides in id order.
	ListSlides(ctx context.Context) ([]models.HeroSlide, error)
}
