// Package reports builds admin spreadsheets.
package reports

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/s/eduportal/internal/models"
	"github.com/s/eduportal/internal/storage"
)

var progressHeader = []string{"Username", "Full name", "Completed", "Total", "Percent", "Eligible"}

// maxSheetName is Excel's limit on sheet name length.
const maxSheetName = 31

// CourseSheet is the progress of every approved enrollee of one course.
type CourseSheet struct {
	Course models.Course
	Rows   []models.EnrolleeProgress
}

// CollectProgress gathers one sheet per course.
func CollectProgress(ctx context.Context, store storage.Store) ([]CourseSheet, error) {
	courses, err := store.ListCourses(ctx)
	if err != nil {
		return nil, err
	}
	sheets := make([]CourseSheet, 0, len(courses))
	for _, c := range courses {
		total, err := store.CountLessons(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		ids, err := store.ApprovedUserIDs(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		sheet := CourseSheet{Course: c}
		for _, id := range ids {
			u, err := store.UserByID(ctx, id)
			if err != nil {
				return nil, err
			}
			done, err := store.CountCompleted(ctx, id, c.ID)
			if err != nil {
				return nil, err
			}
			sheet.Rows = append(sheet.Rows, models.EnrolleeProgress{
				UserID: id, Username: u.Username, FullName: u.FullName, Completed: done, Total: total,
			})
		}
		sheets = append(sheets, sheet)
	}
	return sheets, nil
}

// WriteProgress renders the sheets as an xlsx workbook to w.
func WriteProgress(w io.Writer, sheets []CourseSheet, lang models.Lang) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "creating header style")
	}

	if len(sheets) == 0 {
		sheets = []CourseSheet{{Course: models.Course{Title: models.Text("لا توجد دورات", "No courses")}}}
	}

	used := map[string]bool{}
	for i, s := range sheets {
		name := sheetName(s.Course, lang, used)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return errors.Wrap(err, "renaming sheet")
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return errors.Wrap(err, "adding sheet")
		}

		if err := f.SetSheetRow(name, "A1", &progressHeader); err != nil {
			return errors.Wrap(err, "writing header")
		}
		end, _ := excelize.CoordinatesToCellName(len(progressHeader), 1)
		_ = f.SetCellStyle(name, "A1", end, bold)
		_ = f.AutoFilter(name, "A1:"+end, nil)
		_ = f.SetColWidth(name, "A", "B", 30)

		for r, row := range s.Rows {
			cell, _ := excelize.CoordinatesToCellName(1, r+2)
			values := []any{row.Username, row.FullName, row.Completed, row.Total, percent(row), eligible(row)}
			if err := f.SetSheetRow(name, cell, &values); err != nil {
				return errors.Wrapf(err, "writing row %d", r+2)
			}
		}
	}

	return errors.Wrap(f.Write(w), "writing workbook")
}

func percent(r models.EnrolleeProgress) int {
	if r.Total == 0 {
		return 0
	}
	return r.Completed * 100 / r.Total
}

func eligible(r models.EnrolleeProgress) string {
	if r.Completed == r.Total {
		return "yes"
	}
	return "no"
}

func sheetName(c models.Course, lang models.Lang, used map[string]bool) string {
	base := []rune(sanitizeSheet(c.Title.Resolve(lang)))
	if len(base) == 0 {
		base = []rune("course " + strconv.Itoa(int(c.ID)))
	}
	for n := 1; ; n++ {
		suffix := ""
		if n > 1 {
			suffix = fmt.Sprintf(" (%d)", n)
		}
		limit := maxSheetName - len([]rune(suffix))
		name := base
		if len(name) > limit {
			name = name[:limit]
		}
		candidate := string(name) + suffix
		if !used[candidate] {
			used[candidate] = true
			return candidate
		}
	}
}

func sanitizeSheet(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
