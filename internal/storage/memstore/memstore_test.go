package memstore

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s/eduportal/internal/models"
	"github.com/s/eduportal/internal/storage"
)

func TestStore_TxRollback(t *testing.T) {
	ctx := context.Background()
	s := New()
	boom := errors.New("boom")

	err := s.Tx(ctx, func(tx storage.Store) error {
		c := models.Course{Title: models.Text("أ", "A")}
		require.NoError(t, tx.CreateCourse(ctx, &c))
		return boom
	})
	assert.Equal(t, boom, err)

	courses, err := s.ListCourses(ctx)
	require.NoError(t, err)
	assert.Empty(t, courses)
}

func TestStore_Uniqueness(t *testing.T) {
	ctx := context.Background()
	s := New()

	u := models.User{Username: "a@example.com", Email: "a@example.com"}
	require.NoError(t, s.CreateUser(ctx, &u))
	dup := models.User{Username: "a@example.com", Email: "a@example.com"}
	assert.True(t, errors.Is(s.CreateUser(ctx, &dup), storage.ErrDuplicate))

	require.NoError(t, s.CreateEnrollRequest(ctx, &models.EnrollRequest{UserID: 1, CourseID: 2}))
	err := s.CreateEnrollRequest(ctx, &models.EnrollRequest{UserID: 1, CourseID: 2})
	assert.True(t, errors.Is(err, storage.ErrDuplicate))

	require.NoError(t, s.ApproveEnrollment(ctx, 1, 2))
	require.NoError(t, s.ApproveEnrollment(ctx, 1, 2))
	assert.Len(t, s.Enrollments(1, 2), 1)
}

func TestStore_SeedProgressKeepsExisting(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.MarkCompleted(ctx, 1, 10))
	n, err := s.SeedProgress(ctx, []models.UserProgress{{UserID: 1, LessonID: 10}, {UserID: 1, LessonID: 11}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
