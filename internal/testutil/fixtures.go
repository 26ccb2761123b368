// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/s/eduportal/internal/models"
	"github.com/s/eduportal/internal/storage"
)

const Password = "password123"

// CreateUser stores a user whose password is Password.
func CreateUser(t testing.TB, store storage.Store, username string, admin bool) models.User {
	t.Helper()
	u := models.User{Username: username, Email: username, FullName: "User " + username, IsAdmin: admin}
	require.NoError(t, u.SetPassword(Password))
	require.NoError(t, store.CreateUser(context.Background(), &u))
	return u
}

func CreateCourse(t testing.TB, store storage.Store, title string) models.Course {
	t.Helper()
	c := models.Course{
		Title:     models.Text(title+" (ar)", title),
		ShortDesc: models.Text("وصف", "short "+title),
		FullDesc:  models.Text("وصف كامل", "full "+title),
	}
	require.NoError(t, store.CreateCourse(context.Background(), &c))
	return c
}

// CreateLessons adds n lessons with positions 1..n.
func CreateLessons(t testing.TB, store storage.Store, courseID uint, n int) []models.Lesson {
	t.Helper()
	out := make([]models.Lesson, 0, n)
	for i := 1; i <= n; i++ {
		l := models.Lesson{
			CourseID: courseID,
			Title:    models.Text(fmt.Sprintf("درس %d", i), fmt.Sprintf("Lesson %d", i)),
			Content:  models.Text("محتوى", "content"),
			Position: i,
		}
		require.NoError(t, store.CreateLesson(context.Background(), &l))
		out = append(out, l)
	}
	return out
}
