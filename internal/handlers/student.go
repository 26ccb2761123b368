package handlers

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"

	"github.com/s/eduportal/internal/access"
	"github.com/s/eduportal/internal/enrollment"
	"github.com/s/eduportal/internal/progress"
)

func coursePath(id uint) string { return fmt.Sprintf("/course/%d", id) }

// HandleLessonView - страница урока. Без одобренной записи на курс ученик
// возвращается на страницу курса.
func (h *Handler) HandleLessonView(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lang := h.Lang(w, r)
	id := access.FromContext(ctx)

	lessonID, ok := VarID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	lesson, err := h.Guard.Lesson(ctx, id, lessonID)
	switch {
	case errors.Is(err, access.ErrUnauthenticated):
		h.Redirect(w, r, "/login")
		return
	case errors.Is(err, access.ErrLessonNotFound):
		http.NotFound(w, r)
		return
	case errors.Is(err, access.ErrNotEnrolled):
		h.AddFlash(w, r, "error", T(lang,
			"❌ يجب أن تكون مسجلاً ومقبولاً في الدورة للوصول لهذا الدرس.",
			"You must be enrolled and approved in the course to open this lesson."))
		h.Redirect(w, r, coursePath(lesson.CourseID))
		return
	case err != nil:
		h.ServerError(w, r, err)
		return
	}

	rows, err := h.Store.ProgressRows(ctx, id.UserID(), lesson.CourseID)
	if err != nil {
		h.ServerError(w, r, err)
		return
	}

	data := h.Page(w, r, lesson.Title.Resolve(lang))
	data.Lesson = lesson
	data.LessonDone = rows[lesson.ID].Completed
	h.Render(w, r, http.StatusOK, "lesson.html", data)
}

// HandleEnroll files an enrollment request. A new request sends the learner
// on to WhatsApp to message the administrator.
func (h *Handler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lang := h.Lang(w, r)

	courseID, ok := VarID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	res, err := h.Enroll.Request(ctx, access.FromContext(ctx).User, courseID, lang)
	if errors.Is(err, enrollment.ErrCourseNotFound) {
		h.AddFlash(w, r, "error", T(lang, "❌ الدورة غير موجودة.", "Course not found."))
		h.Redirect(w, r, "/")
		return
	}
	if err != nil {
		h.ServerError(w, r, err)
		return
	}

	switch res.Outcome {
	case enrollment.Created:
		h.AddFlash(w, r, "success", T(lang,
			"✅ تم إرسال طلب التسجيل بنجاح. سيتم توجيهك إلى واتساب للتواصل مع المدير.",
			"Your enrollment request was sent. You will be redirected to WhatsApp to contact the administrator."))
		h.Redirect(w, r, res.ContactURL)
	case enrollment.AlreadyAccepted:
		h.AddFlash(w, r, "info", T(lang,
			"✅ أنت مسجل ومقبول بالفعل في هذه الدورة.",
			"You are already enrolled in this course."))
		h.Redirect(w, r, coursePath(courseID))
	default:
		h.AddFlash(w, r, "info", T(lang,
			"⏳ تم إرسال طلبك مسبقاً، يرجى الانتظار للموافقة.",
			"Your request was already sent, please wait for approval."))
		h.Redirect(w, r, coursePath(courseID))
	}
}

// HandleMarkWatched answers 204 on success, 404 for an unknown lesson and 403
// without an approved enrollment.
func (h *Handler) HandleMarkWatched(w http.ResponseWriter, r *http.Request) {
	lessonID, ok := VarID(r, "id")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	err := h.Progress.MarkWatched(r.Context(), access.FromContext(r.Context()).UserID(), lessonID)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, progress.ErrLessonNotFound):
		w.WriteHeader(http.StatusNotFound)
	case errors.Is(err, progress.ErrNotEnrolled):
		w.WriteHeader(http.StatusForbidden)
	default:
		h.ServerError(w, r, err)
	}
}

func (h *Handler) HandleRequestCertificate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lang := h.Lang(w, r)

	courseID, ok := VarID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	link, err := h.Progress.RequestCertificate(ctx, access.FromContext(ctx).User, courseID, lang)
	switch {
	case err == nil:
		h.AddFlash(w, r, "success", T(lang,
			"✅ تم تجهيز طلب الشهادة، يرجى إرسال رسالة الواتساب للمتابعة.",
			"Your certificate request is ready, please send the WhatsApp message to continue."))
		h.Redirect(w, r, link)
	case errors.Is(err, progress.ErrCourseNotFound):
		h.AddFlash(w, r, "error", T(lang, "❌ الدورة غير موجودة.", "Course not found."))
		h.Redirect(w, r, "/")
	case errors.Is(err, progress.ErrNotEnrolled):
		h.AddFlash(w, r, "error", T(lang,
			"❌ يجب أن تكون مسجلاً ومقبولاً في الدورة لطلب الشهادة.",
			"You must be enrolled and approved in the course to request a certificate."))
		h.Redirect(w, r, coursePath(courseID))
	case errors.Is(err, progress.ErrIncomplete):
		h.AddFlash(w, r, "error", T(lang,
			"❌ يجب إكمال جميع الدروس في الدورة أولاً لطلب الشهادة.",
			"Complete every lesson of the course before requesting a certificate."))
		h.Redirect(w, r, coursePath(courseID))
	default:
		h.ServerError(w, r, err)
	}
}
