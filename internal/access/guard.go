// Package access decides who may see lessons and the admin area.
package access

import (
	"context"

	"github.com/pkg/errors"

	"github.com/s/eduportal/internal/models"
	"github.com/s/eduportal/internal/storage"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrNotAdmin        = errors.New("administrator required")
	ErrLessonNotFound  = errors.New("lesson not found")
	ErrNotEnrolled     = errors.New("approved enrollment required")
)

type Guard struct {
	store storage.Store
}

func NewGuard(store storage.Store) *Guard {
	return &Guard{store: store}
}

// Resolve loads the identity for a session user id. A zero id or a user that
// no longer exists yields Anonymous.
func (g *Guard) Resolve(ctx context.Context, userID uint) (Identity, error) {
	if userID == 0 {
		return Anonymous, nil
	}
	u, err := g.store.UserByID(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return Anonymous, nil
	}
	if err != nil {
		return Anonymous, err
	}
	return Identity{User: u, Authenticated: true}, nil
}

// Lesson returns the lesson when id holds an approved enrollment in its course.
// On ErrNotEnrolled the lesson is still returned so the caller can point to the
// course page.
func (g *Guard) Lesson(ctx context.Context, id Identity, lessonID uint) (models.Lesson, error) {
	if !id.Authenticated {
		return models.Lesson{}, ErrUnauthenticated
	}
	lesson, err := g.store.LessonByID(ctx, lessonID)
	if errors.Is(err, storage.ErrNotFound) {
		return models.Lesson{}, ErrLessonNotFound
	}
	if err != nil {
		return models.Lesson{}, err
	}

	ok, err := g.store.IsApproved(ctx, id.UserID(), lesson.CourseID)
	if err != nil {
		return models.Lesson{}, err
	}
	if !ok {
		return lesson, ErrNotEnrolled
	}
	return lesson, nil
}

// Enrolled reports whether id holds an approved enrollment in the course.
func (g *Guard) Enrolled(ctx context.Context, id Identity, courseID uint) (bool, error) {
	if !id.Authenticated {
		return false, nil
	}
	return g.store.IsApproved(ctx, id.UserID(), courseID)
}

// Admin requires an authenticated administrator.
func (g *Guard) Admin(id Identity) error {
	if !id.Authenticated {
		return ErrUnauthenticated
	}
	if !id.User.IsAdmin {
		return ErrNotAdmin
	}
	return nil
}
