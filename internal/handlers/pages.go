package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/s/eduportal/internal/metrics"
	"github.com/s/eduportal/internal/models"
	"github.com/s/eduportal/internal/storage"
)

var promos = map[models.Lang][]string{
	models.LangAr: {"تعلّم من الخبراء", "دورات عملية", "انضم لآلاف المتعلمين"},
	models.LangEn: {"Learn from experts", "Hands-on courses", "Join thousands"},
}

// HandleMain - главная: слайды, промо и курсы, в которые пользователь ещё не принят.
func (h *Handler) HandleMain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := h.Page(w, r, T(h.Lang(w, r), "الرئيسية", "Home"))
	data.Promos = promos[data.Lang]

	slides, err := h.Store.ListSlides(ctx)
	if err != nil {
		h.ServerError(w, r, err)
		return
	}
	data.Slides = slides

	if data.Identity.Authenticated {
		data.Courses, err = h.Store.CoursesNotApproved(ctx, data.Identity.UserID())
	} else {
		data.Courses, err = h.Store.ListCourses(ctx)
	}
	if err != nil {
		h.ServerError(w, r, err)
		return
	}

	h.Render(w, r, http.StatusOK, "landing.html", data)
}

func (h *Handler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	data := h.Page(w, r, T(h.Lang(w, r), "حسابي", "My profile"))

	enrolled, err := h.Progress.Enrolled(r.Context(), data.Identity.UserID())
	if err != nil {
		h.ServerError(w, r, err)
		return
	}
	data.Enrolled = enrolled

	h.Render(w, r, http.StatusOK, "profile.html", data)
}

// HandleCoursePage shows the course with its lessons. Lesson links and the
// certificate button only appear for approved learners.
func (h *Handler) HandleCoursePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lang := h.Lang(w, r)

	courseID, ok := VarID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	course, err := h.Store.CourseByID(ctx, courseID)
	if errors.Is(err, storage.ErrNotFound) {
		h.AddFlash(w, r, "error", T(lang, "لم يتم العثور على الدورة", "Course not found"))
		h.Redirect(w, r, "/")
		return
	}
	if err != nil {
		h.ServerError(w, r, err)
		return
	}

	data := h.Page(w, r, course.Title.Resolve(lang))
	data.Course = course
	if data.IsEnrolled, err = h.Guard.Enrolled(ctx, data.Identity, courseID); err != nil {
		h.ServerError(w, r, err)
		return
	}
	if data.Progress, err = h.Progress.CourseProgress(ctx, data.Identity.UserID(), course); err != nil {
		h.ServerError(w, r, err)
		return
	}
	if data.IsEnrolled {
		if data.Eligibility, err = h.Progress.CertificateEligibility(ctx, data.Identity.UserID(), courseID); err != nil {
			h.ServerError(w, r, err)
			return
		}
	}

	h.Render(w, r, http.StatusOK, "course.html", data)
}

// HandleUploads serves stored images and videos.
func (h *Handler) HandleUploads(w http.ResponseWriter, r *http.Request) {
	h.Uploads.ServeFile(w, r, mux.Vars(r)["path"])
}

// HandleHealth pings the database.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	err := h.Store.Ping(r.Context())
	metrics.ObserveDBPing(time.Since(start))

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err != nil {
		h.Logger(r).Warn("health check failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("db unavailable\n"))
		return
	}
	_, _ = w.Write([]byte("ok\n"))
}
