package admin

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/s/eduportal/internal/handlers"
	"github.com/s/eduportal/internal/models"
	"github.com/s/eduportal/internal/storage"
	"github.com/s/eduportal/internal/uploads"
	"github.com/s/eduportal/internal/validation"
)

type courseForm struct {
	TitleAr     string `form:"title_ar" validate:"required_without=TitleEn,max=255"`
	TitleEn     string `form:"title_en" validate:"max=255"`
	ShortDescAr string `form:"short_desc_ar"`
	ShortDescEn string `form:"short_desc_en"`
	FullDescAr  string `form:"full_desc_ar"`
	FullDescEn  string `form:"full_desc_en"`
}

func readCourseForm(r *http.Request) courseForm {
	return courseForm{
		TitleAr:     strings.TrimSpace(r.FormValue("title_ar")),
		TitleEn:     strings.TrimSpace(r.FormValue("title_en")),
		ShortDescAr: r.FormValue("short_desc_ar"),
		ShortDescEn: r.FormValue("short_desc_en"),
		FullDescAr:  r.FormValue("full_desc_ar"),
		FullDescEn:  r.FormValue("full_desc_en"),
	}
}

func (f courseForm) apply(c *models.Course) {
	c.Title = models.Text(f.TitleAr, f.TitleEn)
	c.ShortDesc = models.Text(f.ShortDescAr, f.ShortDescEn)
	c.FullDesc = models.Text(f.FullDescAr, f.FullDescEn)
}

type lessonForm struct {
	TitleAr   string `form:"title_ar" validate:"required_without=TitleEn,max=255"`
	TitleEn   string `form:"title_en" validate:"max=255"`
	ContentAr string `form:"content_ar"`
	ContentEn string `form:"content_en"`
	Position  int    `form:"position" validate:"gte=0"`
	VideoURL  string `form:"video_url" validate:"omitempty,url"`
}

func readLessonForm(r *http.Request) lessonForm {
	// Пустая или битая позиция - 0.
	pos, _ := strconv.Atoi(strings.TrimSpace(r.FormValue("position")))
	return lessonForm{
		TitleAr:   strings.TrimSpace(r.FormValue("title_ar")),
		TitleEn:   strings.TrimSpace(r.FormValue("title_en")),
		ContentAr: strings.TrimSpace(r.FormValue("content_ar")),
		ContentEn: strings.TrimSpace(r.FormValue("content_en")),
		Position:  pos,
		VideoURL:  strings.TrimSpace(r.FormValue("video_url")),
	}
}

func (f lessonForm) apply(l *models.Lesson, upload string) {
	l.Title = models.Text(f.TitleAr, f.TitleEn)
	l.Content = models.Text(f.ContentAr, f.ContentEn)
	l.Position = f.Position
	l.SetVideo(upload, f.VideoURL)
}

func lessonsPath(courseID uint) string { return fmt.Sprintf("/admin/course/%d/lessons", courseID) }

func (serv Service) renderCourseForm(w http.ResponseWriter, r *http.Request, course models.Course, verr *validation.Error) {
	data := serv.Page(w, r, handlers.T(serv.Lang(w, r), "الدورة", "Course"))
	data.Course = course
	status := http.StatusOK
	if verr != nil {
		data.Errors = verr.Fields
		status = http.StatusBadRequest
	}
	serv.Render(w, r, status, "admin/course_form.html", data)
}

func (serv Service) HandleCourseNew(w http.ResponseWriter, r *http.Request) {
	lang := serv.Lang(w, r)
	if r.Method != http.MethodPost {
		serv.renderCourseForm(w, r, models.Course{}, nil)
		return
	}
	if err := serv.parseForm(w, r); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	form := readCourseForm(r)
	var course models.Course
	form.apply(&course)
	if !serv.validate(w, r, form, func(verr *validation.Error) { serv.renderCourseForm(w, r, course, verr) }) {
		return
	}

	name, err := serv.saveUpload(r, "image", uploads.Image)
	if err != nil {
		serv.uploadFailed(w, r, lang, err, "/admin/course/new")
		return
	}
	if name != "" {
		course.Image = &name
	}

	if err := serv.Store.CreateCourse(r.Context(), &course); err != nil {
		serv.Uploads.Remove(name)
		serv.ServerError(w, r, err)
		return
	}
	serv.Logger(r).Info("course created", zap.Uint("course_id", course.ID))
	serv.AddFlash(w, r, "success", handlers.T(lang, "تم إنشاء الدورة", "Course created"))
	serv.Redirect(w, r, "/admin")
}

// loadCourse answers the request itself when the course is missing.
func (serv Service) loadCourse(w http.ResponseWriter, r *http.Request) (models.Course, bool) {
	lang := serv.Lang(w, r)
	id, ok := handlers.VarID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return models.Course{}, false
	}
	course, err := serv.Store.CourseByID(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		serv.AddFlash(w, r, "error", handlers.T(lang, "لم يتم العثور على الدورة", "Course not found"))
		serv.Redirect(w, r, "/admin")
		return models.Course{}, false
	}
	if err != nil {
		serv.ServerError(w, r, err)
		return models.Course{}, false
	}
	return course, true
}

func (serv Service) HandleCourseEdit(w http.ResponseWriter, r *http.Request) {
	lang := serv.Lang(w, r)
	course, ok := serv.loadCourse(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodPost {
		serv.renderCourseForm(w, r, course, nil)
		return
	}
	if err := serv.parseForm(w, r); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	form := readCourseForm(r)
	form.apply(&course)
	if !serv.validate(w, r, form, func(verr *validation.Error) { serv.renderCourseForm(w, r, course, verr) }) {
		return
	}

	name, err := serv.saveUpload(r, "image", uploads.Image)
	if err != nil {
		serv.uploadFailed(w, r, lang, err, fmt.Sprintf("/admin/course/%d/edit", course.ID))
		return
	}
	old := course.ImageName()
	if name != "" {
		course.Image = &name
	}

	if err := serv.Store.UpdateCourse(r.Context(), &course); err != nil {
		serv.Uploads.Remove(name)
		serv.ServerError(w, r, err)
		return
	}
	if name != "" {
		serv.Uploads.Remove(old)
	}
	serv.AddFlash(w, r, "success", handlers.T(lang, "تم تحديث الدورة", "Course updated"))
	serv.Redirect(w, r, "/admin")
}

// HandleCourseDelete removes the course rows in one transaction, then its
// image and lesson videos.
func (serv Service) HandleCourseDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lang := serv.Lang(w, r)
	course, ok := serv.loadCourse(w, r)
	if !ok {
		return
	}

	lessons, err := serv.Store.LessonsByCourse(ctx, course.ID)
	if err != nil {
		serv.ServerError(w, r, err)
		return
	}
	err = serv.Store.Tx(ctx, func(tx storage.Store) error {
		return tx.DeleteCourse(ctx, course.ID)
	})
	if err != nil {
		serv.Logger(r).Error("course delete failed", zap.Uint("course_id", course.ID), zap.Error(err))
		serv.AddFlash(w, r, "error", handlers.T(lang, "فشل الحذف", "Delete failed"))
		serv.Redirect(w, r, "/admin")
		return
	}

	for _, l := range lessons {
		serv.Uploads.Remove(l.VideoName())
	}
	serv.Uploads.Remove(course.ImageName())

	serv.AddFlash(w, r, "info", handlers.T(lang, "تم حذف الدورة", "Course deleted"))
	serv.Redirect(w, r, "/admin")
}

func (serv Service) HandleLessonsPage(w http.ResponseWriter, r *http.Request) {
	course, ok := serv.loadCourse(w, r)
	if !ok {
		return
	}
	lessons, err := serv.Store.LessonsByCourse(r.Context(), course.ID)
	if err != nil {
		serv.ServerError(w, r, err)
		return
	}

	data := serv.Page(w, r, course.Title.Resolve(serv.Lang(w, r)))
	data.Course = course
	data.Lessons = lessons
	serv.Render(w, r, http.StatusOK, "admin/lessons.html", data)
}

func (serv Service) renderLessonForm(w http.ResponseWriter, r *http.Request, course models.Course, lesson models.Lesson, verr *validation.Error) {
	data := serv.Page(w, r, handlers.T(serv.Lang(w, r), "الدرس", "Lesson"))
	data.Course = course
	data.Lesson = lesson
	status := http.StatusOK
	if verr != nil {
		data.Errors = verr.Fields
		status = http.StatusBadRequest
	}
	serv.Render(w, r, status, "admin/lesson_form.html", data)
}

// HandleLessonNew adds a lesson. Learners already approved in the course get
// an incomplete progress row for it in the same transaction.
func (serv Service) HandleLessonNew(w http.ResponseWriter, r *http.Request) {
	lang := serv.Lang(w, r)
	course, ok := serv.loadCourse(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodPost {
		serv.renderLessonForm(w, r, course, models.Lesson{CourseID: course.ID}, nil)
		return
	}
	if err := serv.parseForm(w, r); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	form := readLessonForm(r)
	lesson := models.Lesson{CourseID: course.ID}
	form.apply(&lesson, "")
	if !serv.validate(w, r, form, func(verr *validation.Error) { serv.renderLessonForm(w, r, course, lesson, verr) }) {
		return
	}

	name, err := serv.saveUpload(r, "video", uploads.Video)
	if err != nil {
		serv.uploadFailed(w, r, lang, err, fmt.Sprintf("/admin/course/%d/lesson/new", course.ID))
		return
	}
	form.apply(&lesson, name)

	seeded, err := serv.Progress.AddLesson(r.Context(), &lesson)
	if err != nil {
		serv.Uploads.Remove(name)
		serv.ServerError(w, r, err)
		return
	}
	serv.Logger(r).Info("lesson created",
		zap.Uint("course_id", course.ID), zap.Uint("lesson_id", lesson.ID), zap.Int("progress_rows", seeded))
	serv.AddFlash(w, r, "success", handlers.T(lang, "✅ تم إضافة الدرس بنجاح", "Lesson added"))
	serv.Redirect(w, r, lessonsPath(course.ID))
}

// loadLesson resolves {id}/{lesson_id} and requires the lesson to belong to
// the course.
func (serv Service) loadLesson(w http.ResponseWriter, r *http.Request) (models.Course, models.Lesson, bool) {
	lang := serv.Lang(w, r)
	course, ok := serv.loadCourse(w, r)
	if !ok {
		return models.Course{}, models.Lesson{}, false
	}
	lessonID, ok := handlers.VarID(r, "lesson_id")
	if !ok {
		http.NotFound(w, r)
		return models.Course{}, models.Lesson{}, false
	}

	lesson, err := serv.Store.LessonByID(r.Context(), lessonID)
	if err == nil && lesson.CourseID != course.ID {
		err = storage.ErrNotFound
	}
	if errors.Is(err, storage.ErrNotFound) {
		serv.AddFlash(w, r, "error", handlers.T(lang, "لم يتم العثور على الدرس", "Lesson not found"))
		serv.Redirect(w, r, lessonsPath(course.ID))
		return models.Course{}, models.Lesson{}, false
	}
	if err != nil {
		serv.ServerError(w, r, err)
		return models.Course{}, models.Lesson{}, false
	}
	return course, lesson, true
}

func (serv Service) HandleLessonEdit(w http.ResponseWriter, r *http.Request) {
	lang := serv.Lang(w, r)
	course, lesson, ok := serv.loadLesson(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodPost {
		serv.renderLessonForm(w, r, course, lesson, nil)
		return
	}
	if err := serv.parseForm(w, r); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	form := readLessonForm(r)
	old := lesson.VideoName()
	form.apply(&lesson, "")
	if !serv.validate(w, r, form, func(verr *validation.Error) { serv.renderLessonForm(w, r, course, lesson, verr) }) {
		return
	}

	name, err := serv.saveUpload(r, "video", uploads.Video)
	if err != nil {
		serv.uploadFailed(w, r, lang, err, fmt.Sprintf("/admin/course/%d/lesson/%d/edit", course.ID, lesson.ID))
		return
	}
	form.apply(&lesson, name)

	if err := serv.Store.UpdateLesson(r.Context(), &lesson); err != nil {
		serv.Uploads.Remove(name)
		serv.ServerError(w, r, err)
		return
	}
	if name != "" {
		serv.Uploads.Remove(old)
	}
	serv.AddFlash(w, r, "success", handlers.T(lang, "✅ تم تحديث بيانات الدرس بنجاح", "Lesson updated"))
	serv.Redirect(w, r, lessonsPath(course.ID))
}

// HandleLessonDelete only deletes on POST. A GET lands back on the list.
func (serv Service) HandleLessonDelete(w http.ResponseWriter, r *http.Request) {
	lang := serv.Lang(w, r)
	if r.Method != http.MethodPost {
		if id, ok := handlers.VarID(r, "id"); ok {
			serv.AddFlash(w, r, "warning", handlers.T(lang,
				"⚠️ لا يمكنك الوصول إلى هذا الرابط مباشرة", "This link cannot be opened directly"))
			serv.Redirect(w, r, lessonsPath(id))
			return
		}
		http.NotFound(w, r)
		return
	}

	course, lesson, ok := serv.loadLesson(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	err := serv.Store.Tx(ctx, func(tx storage.Store) error {
		return tx.DeleteLesson(ctx, lesson.ID)
	})
	if err != nil {
		serv.ServerError(w, r, err)
		return
	}
	serv.Uploads.Remove(lesson.VideoName())

	serv.AddFlash(w, r, "info", handlers.T(lang, "🗑️ تم حذف الدرس بنجاح", "Lesson deleted"))
	serv.Redirect(w, r, lessonsPath(course.ID))
}
