// Package server assembles the HTTP routes.
package server

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/s/eduportal/internal/handlers"
	"github.com/s/eduportal/internal/handlers/admin"
	"github.com/s/eduportal/internal/metrics"
	"github.com/s/eduportal/internal/middleware"
)

// New builds the router for h.
func New(h *handlers.Handler) *mux.Router {
	adminService := &admin.Service{Handler: *h}

	loginRequired := middleware.RequireLogin(h)
	adminOnly := middleware.RequireAdmin(h)

	r := mux.NewRouter()
	r.Use(middleware.RequestID(h.Log), middleware.Recover(h.Log), middleware.Identify(h))

	// --- Служебные ---
	r.HandleFunc("/healthz", h.HandleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/uploads/{path:.+}", h.HandleUploads).Methods(http.MethodGet, http.MethodHead)

	// --- Публичные маршруты ---
	r.HandleFunc("/", h.HandleMain).Methods(http.MethodGet)
	r.HandleFunc("/register", h.HandleRegister).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/login", h.HandleLogin).Methods(http.MethodGet, http.MethodPost)
	if h.OAuth != nil {
		r.HandleFunc("/auth/google/login", h.HandleGoogleLogin).Methods(http.MethodGet)
		r.HandleFunc("/auth/google/callback", h.HandleGoogleCallback).Methods(http.MethodGet)
	}

	// --- Ученик ---
	r.HandleFunc("/logout", loginRequired(h.HandleLogout)).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/profile", loginRequired(h.HandleProfile)).Methods(http.MethodGet)
	r.HandleFunc("/course/{id:[0-9]+}", loginRequired(h.HandleCoursePage)).Methods(http.MethodGet)
	r.HandleFunc("/course/{id:[0-9]+}/enroll", loginRequired(h.HandleEnroll)).Methods(http.MethodPost)
	r.HandleFunc("/course/{id:[0-9]+}/request_certificate", loginRequired(h.HandleRequestCertificate)).Methods(http.MethodGet)
	r.HandleFunc("/lesson/{id:[0-9]+}", loginRequired(h.HandleLessonView)).Methods(http.MethodGet)
	r.HandleFunc("/lesson/{id:[0-9]+}/mark_watched", loginRequired(h.HandleMarkWatched)).Methods(http.MethodPost)

	// --- Админ-панель ---
	r.HandleFunc("/admin", adminOnly(adminService.HandleAdminPage)).Methods(http.MethodGet)

	r.HandleFunc("/admin/slider/new", adminOnly(adminService.HandleSlideNew)).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/admin/slider/edit/{id:[0-9]+}", adminOnly(adminService.HandleSlideEdit)).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/admin/slider/delete/{id:[0-9]+}", adminOnly(adminService.HandleSlideDelete)).Methods(http.MethodPost)
	r.HandleFunc("/admin/slider/delete_image/{id:[0-9]+}", adminOnly(adminService.HandleSlideDeleteImage)).Methods(http.MethodPost)

	r.HandleFunc("/admin/course/new", adminOnly(adminService.HandleCourseNew)).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/admin/course/{id:[0-9]+}/edit", adminOnly(adminService.HandleCourseEdit)).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/admin/course/{id:[0-9]+}/delete", adminOnly(adminService.HandleCourseDelete)).Methods(http.MethodPost)
	r.HandleFunc("/admin/course/{id:[0-9]+}/lessons", adminOnly(adminService.HandleLessonsPage)).Methods(http.MethodGet)
	r.HandleFunc("/admin/course/{id:[0-9]+}/lesson/new", adminOnly(adminService.HandleLessonNew)).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/admin/course/{id:[0-9]+}/lesson/{lesson_id:[0-9]+}/edit", adminOnly(adminService.HandleLessonEdit)).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/admin/course/{id:[0-9]+}/lesson/{lesson_id:[0-9]+}/delete", adminOnly(adminService.HandleLessonDelete)).Methods(http.MethodGet, http.MethodPost)

	r.HandleFunc("/admin/enroll_requests", adminOnly(adminService.HandleEnrollRequestsPage)).Methods(http.MethodGet)
	r.HandleFunc("/admin/enroll_requests/{id:[0-9]+}/accept", adminOnly(adminService.HandleAcceptRequest)).Methods(http.MethodPost)
	r.HandleFunc("/admin/enroll_requests/{id:[0-9]+}/reject", adminOnly(adminService.HandleRejectRequest)).Methods(http.MethodPost)
	r.HandleFunc("/admin/reports/progress.xlsx", adminOnly(adminService.HandleProgressReport)).Methods(http.MethodGet)

	// --- Админ API (JSON) ---
	r.HandleFunc("/api/admin/enroll_requests", adminOnly(adminService.GetEnrollRequestsAPI)).Methods(http.MethodGet)
	r.HandleFunc("/api/admin/enroll_requests/{id:[0-9]+}", adminOnly(adminService.UpdateEnrollRequestAPI)).Methods(http.MethodPut)

	return r
}
