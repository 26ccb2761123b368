package handlers

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/s/eduportal/internal/access"
	"github.com/s/eduportal/internal/config"
	"github.com/s/eduportal/internal/enrollment"
	"github.com/s/eduportal/internal/logging"
	"github.com/s/eduportal/internal/metrics"
	"github.com/s/eduportal/internal/models"
	"github.com/s/eduportal/internal/notify"
	"github.com/s/eduportal/internal/observability"
	"github.com/s/eduportal/internal/progress"
	"github.com/s/eduportal/internal/storage"
	"github.com/s/eduportal/internal/uploads"
	"github.com/s/eduportal/internal/validation"
	"github.com/s/eduportal/internal/web"
)

const (
	sessionName = "session"
	flashKey    = "_flash"
)

type Handler struct {
	Sessions sessions.Store
	Pages    *web.Renderer
	Store    storage.Store
	Enroll   *enrollment.Service
	Progress *progress.Tracker
	Guard    *access.Guard
	Uploads  *uploads.Store
	OAuth    *oauth2.Config // nil, если Google не настроен
	Log      *zap.Logger
	Config   config.Config
}

// NewSessionStore builds the cookie store for the "session" cookie.
// Secure ставится только в prod: по http браузер такую куку не вернёт.
func NewSessionStore(cfg config.Config) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(cfg.SessionKey))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// NewHandler wires the services around one store.
func NewHandler(store storage.Store, sess sessions.Store, cfg config.Config, log *zap.Logger) (*Handler, error) {
	pages, err := web.New()
	if err != nil {
		return nil, err
	}
	files, err := uploads.NewStore(cfg.UploadDir, cfg.MaxImageWidth, log)
	if err != nil {
		return nil, err
	}

	wa := notify.NewWhatsApp(cfg.AdminPhone)
	h := &Handler{
		Sessions: sess,
		Pages:    pages,
		Store:    store,
		Enroll:   enrollment.NewService(store, wa, log),
		Progress: progress.NewTracker(store, wa, log),
		Guard:    access.NewGuard(store),
		Uploads:  files,
		Log:      log,
		Config:   cfg,
	}
	if cfg.GoogleEnabled() {
		h.OAuth = googleOAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	}
	return h, nil
}

// Flash - одно уведомление для следующей страницы.
type Flash struct {
	Category string
	Message  string
}

type PageData struct {
	Title       string
	Lang        models.Lang
	Identity    access.Identity
	CurrentPath string
	Flashes     []Flash
	Errors      []validation.FieldError
	Form        map[string]string
	GoogleLogin bool

	Slides   []models.HeroSlide
	Promos   []string
	Courses  []models.Course
	Enrolled []models.CourseProgress

	Course      models.Course
	Lessons     []models.Lesson
	Progress    models.CourseProgress
	IsEnrolled  bool
	Eligibility progress.Eligibility

	Lesson     models.Lesson
	LessonDone bool

	Slide    models.HeroSlide
	Requests []models.PendingRequest
}

func (h *Handler) session(r *http.Request) *sessions.Session {
	s, err := h.Sessions.Get(r, sessionName)
	if err != nil {
		// Битая или чужая кука: работаем с новой сессией.
		h.Logger(r).Debug("session decode failed", zap.Error(err))
	}
	return s
}

func (h *Handler) saveSession(w http.ResponseWriter, r *http.Request, s *sessions.Session) {
	if err := s.Save(r, w); err != nil {
		h.Logger(r).Warn("session save failed", zap.Error(err))
	}
}

// GetAuthenticatedUserID returns the user id stored in the session.
func (h *Handler) GetAuthenticatedUserID(r *http.Request) (uint, bool) {
	userID, ok := h.session(r).Values["user_id"].(uint)
	return userID, ok && userID != 0
}

// Lang resolves the page language: ?lang= first, then the session, then the
// configured default. A query value is remembered in the session.
func (h *Handler) Lang(w http.ResponseWriter, r *http.Request) models.Lang {
	s := h.session(r)
	if q := r.URL.Query().Get("lang"); q != "" {
		lang := models.ParseLang(q)
		if s.Values["lang"] != string(lang) {
			s.Values["lang"] = string(lang)
			h.saveSession(w, r, s)
		}
		return lang
	}
	if v, ok := s.Values["lang"].(string); ok {
		return models.ParseLang(v)
	}
	return models.ParseLang(h.Config.DefaultLang)
}

// AddFlash queues a notice shown on the next rendered page.
func (h *Handler) AddFlash(w http.ResponseWriter, r *http.Request, category, msg string) {
	s := h.session(r)
	s.AddFlash(category+"|"+msg, flashKey)
	h.saveSession(w, r, s)
}

func (h *Handler) popFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	s := h.session(r)
	raw := s.Flashes(flashKey)
	if len(raw) == 0 {
		return nil
	}
	h.saveSession(w, r, s)

	out := make([]Flash, 0, len(raw))
	for _, v := range raw {
		str, _ := v.(string)
		cat, msg, ok := strings.Cut(str, "|")
		if !ok {
			cat, msg = "info", str
		}
		out = append(out, Flash{Category: cat, Message: msg})
	}
	return out
}

// Page fills the common part of PageData. It must run before anything is
// written to w since it may update the session cookie.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request, title string) PageData {
	return PageData{
		Title:       title,
		Lang:        h.Lang(w, r),
		Identity:    access.FromContext(r.Context()),
		CurrentPath: r.URL.Path,
		Flashes:     h.popFlashes(w, r),
		GoogleLogin: h.OAuth != nil,
	}
}

// Render executes the page into a buffer first so a template error still
// yields a clean 500.
func (h *Handler) Render(w http.ResponseWriter, r *http.Request, status int, name string, data PageData) {
	var buf bytes.Buffer
	if err := h.Pages.Render(&buf, name, data); err != nil {
		h.ServerError(w, r, errors.Wrapf(err, "rendering %s", name))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// ServerError logs err and answers 500.
func (h *Handler) ServerError(w http.ResponseWriter, r *http.Request, err error) {
	h.Logger(r).Error("request failed", zap.Error(err), zap.String("path", r.URL.Path))
	metrics.HandlerErrors.Inc()
	observability.CaptureErr(err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (h *Handler) Logger(r *http.Request) *zap.Logger {
	return logging.FromContext(r.Context(), h.Log)
}

// Redirect answers 303 to url.
func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request, url string) {
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// VarID parses a numeric mux path variable.
func VarID(r *http.Request, name string) (uint, bool) {
	v, err := strconv.ParseUint(mux.Vars(r)[name], 10, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}

// T picks the message for lang.
func T(lang models.Lang, ar, en string) string {
	if lang == models.LangEn {
		return en
	}
	return ar
}

func withLang(path string, lang models.Lang) string {
	return path + "?lang=" + string(lang)
}
