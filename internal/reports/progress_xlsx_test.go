package reports

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/s/eduportal/internal/models"
	"github.com/s/eduportal/internal/storage/memstore"
	"github.com/s/eduportal/internal/testutil"
)

func TestProgressWorkbook(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	ali := testutil.CreateUser(t, store, "ali@example.com", false)
	course := testutil.CreateCourse(t, store, "Go: basics")
	lessons := testutil.CreateLessons(t, store, course.ID, 2)
	testutil.CreateCourse(t, store, "Empty")

	require.NoError(t, store.ApproveEnrollment(ctx, ali.ID, course.ID))
	require.NoError(t, store.MarkCompleted(ctx, ali.ID, lessons[0].ID))

	sheets, err := CollectProgress(ctx, store)
	require.NoError(t, err)
	require.Len(t, sheets, 2)

	buf := &bytes.Buffer{}
	require.NoError(t, WriteProgress(buf, sheets, models.LangEn))

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Empty", "Go basics"}, f.GetSheetList())

	rows, err := f.GetRows("Go basics")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, progressHeader, rows[0])
	assert.Equal(t, []string{"ali@example.com", "User ali@example.com", "1", "2", "50", "no"}, rows[1])
}

func TestSheetName(t *testing.T) {
	used := map[string]bool{}
	long := models.Course{ID: 1, Title: models.Text("", "An extremely long course title that overflows")}

	first := sheetName(long, models.LangEn, used)
	second := sheetName(long, models.LangEn, used)
	assert.Len(t, []rune(first), maxSheetName)
	assert.NotEqual(t, first, second)
	assert.Contains(t, second, "(2)")

	assert.Equal(t, "course 9", sheetName(models.Course{ID: 9}, models.LangEn, used))
}

func TestWriteProgress_NoCourses(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, WriteProgress(buf, nil, models.LangEn))

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"No courses"}, f.GetSheetList())
}
