package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLesson_SetVideo(t *testing.T) {
	t.Run("upload wins over url", func(t *testing.T) {
		var l Lesson
		l.SetVideo("intro.mp4", "https://youtu.be/x")
		assert.Equal(t, "intro.mp4", l.VideoName())
		assert.Nil(t, l.VideoURL)
	})
	t.Run("empty url stored as null", func(t *testing.T) {
		url := "https://youtu.be/old"
		l := Lesson{VideoURL: &url}
		l.SetVideo("", "")
		assert.Nil(t, l.VideoURL)
	})
	t.Run("url kept without upload", func(t *testing.T) {
		var l Lesson
		l.SetVideo("", "https://youtu.be/x")
		assert.Equal(t, "https://youtu.be/x", l.ExternalURL())
		assert.Empty(t, l.VideoName())
	})
}

func TestCourseProgress_Percent(t *testing.T) {
	assert.Equal(t, 0, CourseProgress{}.Percent())

	cp := CourseProgress{Lessons: []LessonProgress{{Completed: true}, {}, {}}}
	assert.Equal(t, 1, cp.Done())
	assert.Equal(t, 33, cp.Percent())
}
