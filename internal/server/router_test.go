package server

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/s/eduportal/internal/config"
	"github.com/s/eduportal/internal/handlers"
	"github.com/s/eduportal/internal/models"
	"github.com/s/eduportal/internal/storage"
	"github.com/s/eduportal/internal/storage/memstore"
	"github.com/s/eduportal/internal/testutil"
)

const adminPhone = "+201124592083"

type testApp struct {
	store     *memstore.Store
	srv       *httptest.Server
	uploadDir string
}

func newApp(t *testing.T) *testApp {
	t.Helper()
	store := memstore.New()
	cfg := config.Config{
		AdminPhone:    adminPhone,
		DefaultLang:   "en",
		UploadDir:     t.TempDir(),
		MaxImageWidth: 800,
		MaxUploadMB:   10,
		SessionKey:    "test-session-key-0123456789abcdef",
	}
	h, err := handlers.NewHandler(store, handlers.NewSessionStore(cfg), cfg, zap.NewNop())
	require.NoError(t, err)

	srv := httptest.NewServer(New(h))
	t.Cleanup(srv.Close)
	return &testApp{store: store, srv: srv, uploadDir: cfg.UploadDir}
}

// browser keeps cookies and never follows redirects.
type browser struct {
	t    *testing.T
	base string
	c    *http.Client
}

func (a *testApp) browser(t *testing.T) *browser {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{t: t, base: a.srv.URL, c: &http.Client{
		Jar:           jar,
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}}
}

func (b *browser) do(method, path string, body io.Reader, contentType string) *http.Response {
	b.t.Helper()
	req, err := http.NewRequest(method, b.base+path, body)
	require.NoError(b.t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := b.c.Do(req)
	require.NoError(b.t, err)
	b.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (b *browser) get(path string) *http.Response {
	return b.do(http.MethodGet, path, nil, "")
}

func (b *browser) post(path string, form url.Values) *http.Response {
	return b.do(http.MethodPost, path, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
}

func (b *browser) login(username string) {
	b.t.Helper()
	resp := b.post("/login", url.Values{"email": {username}, "password": {testutil.Password}})
	require.Equal(b.t, http.StatusSeeOther, resp.StatusCode)
}

func location(resp *http.Response) string {
	return resp.Header.Get("Location")
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestLogin(t *testing.T) {
	app := newApp(t)
	testutil.CreateUser(t, app.store, "ali@example.com", false)
	testutil.CreateUser(t, app.store, "admin", true)

	t.Run("learner lands on profile", func(t *testing.T) {
		resp := app.browser(t).post("/login", url.Values{"email": {"ali@example.com"}, "password": {testutil.Password}})
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/profile?lang=en", location(resp))
	})
	t.Run("admin lands on admin", func(t *testing.T) {
		resp := app.browser(t).post("/login", url.Values{"email": {"admin"}, "password": {testutil.Password}})
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/admin", location(resp))
	})
	t.Run("wrong password", func(t *testing.T) {
		resp := app.browser(t).post("/login", url.Values{"email": {"ali@example.com"}, "password": {"nope"}})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Contains(t, body(t, resp), "Invalid credentials")
	})
}

func TestRegister(t *testing.T) {
	app := newApp(t)
	form := url.Values{
		"fullname": {"Sara Ahmed"},
		"email":    {"sara@example.com"},
		"password": {"secret1"},
		"confirm":  {"secret1"},
	}

	resp := app.browser(t).post("/register", form)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login?lang=en", location(resp))

	u, err := app.store.UserByLogin(context.Background(), "sara@example.com")
	require.NoError(t, err)
	assert.Equal(t, "sara@example.com", u.Username)
	assert.True(t, u.CheckPassword("secret1"))

	t.Run("duplicate email", func(t *testing.T) {
		b := app.browser(t)
		resp := b.post("/register", form)
		assert.Equal(t, "/register?lang=en", location(resp))
		assert.Contains(t, body(t, b.get("/register")), "Email already used")
	})
	t.Run("passwords differ", func(t *testing.T) {
		bad := url.Values{"fullname": {"X"}, "email": {"x@example.com"}, "password": {"secret1"}, "confirm": {"other"}}
		b := app.browser(t)
		resp := b.post("/register", bad)
		assert.Equal(t, "/register?lang=en", location(resp))
		assert.Contains(t, body(t, b.get("/register")), "Passwords do not match")
	})
	t.Run("invalid email", func(t *testing.T) {
		bad := url.Values{"fullname": {"X"}, "email": {"not-an-email"}, "password": {"secret1"}, "confirm": {"secret1"}}
		resp := app.browser(t).post("/register", bad)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, body(t, resp), "email must be a valid email address")
	})
}

func TestLanding_HidesApprovedCourses(t *testing.T) {
	app := newApp(t)
	ctx := context.Background()
	ali := testutil.CreateUser(t, app.store, "ali@example.com", false)
	taken := testutil.CreateCourse(t, app.store, "Taken course")
	testutil.CreateCourse(t, app.store, "Open course")
	require.NoError(t, app.store.ApproveEnrollment(ctx, ali.ID, taken.ID))

	anon := body(t, app.browser(t).get("/?lang=en"))
	assert.Contains(t, anon, "Taken course")
	assert.Contains(t, anon, "Open course")
	assert.Contains(t, anon, "Learn from experts")

	b := app.browser(t)
	b.login("ali@example.com")
	page := body(t, b.get("/?lang=en"))
	assert.NotContains(t, page, "Taken course")
	assert.Contains(t, page, "Open course")
}

func TestLanguage_RememberedInSession(t *testing.T) {
	app := newApp(t)
	b := app.browser(t)

	assert.Contains(t, body(t, b.get("/?lang=ar")), `dir="rtl"`)
	assert.Contains(t, body(t, b.get("/")), `dir="rtl"`)
	assert.Contains(t, body(t, app.browser(t).get("/")), `dir="ltr"`)
}

func TestLessonGuard(t *testing.T) {
	app := newApp(t)
	ctx := context.Background()
	ali := testutil.CreateUser(t, app.store, "ali@example.com", false)
	testutil.CreateUser(t, app.store, "omar@example.com", false)
	course := testutil.CreateCourse(t, app.store, "Go")
	lesson := testutil.CreateLessons(t, app.store, course.ID, 1)[0]
	require.NoError(t, app.store.ApproveEnrollment(ctx, ali.ID, course.ID))
	lessonPath := fmt.Sprintf("/lesson/%d", lesson.ID)

	t.Run("anonymous goes to login", func(t *testing.T) {
		resp := app.browser(t).get(lessonPath)
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/login", location(resp))
	})
	t.Run("not enrolled goes to course page", func(t *testing.T) {
		b := app.browser(t)
		b.login("omar@example.com")
		resp := b.get(lessonPath)
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, fmt.Sprintf("/course/%d", course.ID), location(resp))
	})
	t.Run("enrolled sees lesson", func(t *testing.T) {
		b := app.browser(t)
		b.login("ali@example.com")
		resp := b.get(lessonPath + "?lang=en")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body(t, resp), "Lesson 1")
	})
	t.Run("unknown lesson", func(t *testing.T) {
		b := app.browser(t)
		b.login("ali@example.com")
		assert.Equal(t, http.StatusNotFound, b.get("/lesson/9999").StatusCode)
	})
}

func TestMarkWatched(t *testing.T) {
	app := newApp(t)
	ctx := context.Background()
	ali := testutil.CreateUser(t, app.store, "ali@example.com", false)
	testutil.CreateUser(t, app.store, "omar@example.com", false)
	course := testutil.CreateCourse(t, app.store, "Go")
	lesson := testutil.CreateLessons(t, app.store, course.ID, 1)[0]
	require.NoError(t, app.store.ApproveEnrollment(ctx, ali.ID, course.ID))
	path := fmt.Sprintf("/lesson/%d/mark_watched", lesson.ID)

	omar := app.browser(t)
	omar.login("omar@example.com")
	assert.Equal(t, http.StatusForbidden, omar.post(path, nil).StatusCode)

	b := app.browser(t)
	b.login("ali@example.com")
	assert.Equal(t, http.StatusNotFound, b.post("/lesson/9999/mark_watched", nil).StatusCode)
	assert.Equal(t, http.StatusNoContent, b.post(path, nil).StatusCode)
	assert.Equal(t, http.StatusNoContent, b.post(path, nil).StatusCode)

	rows, err := app.store.ProgressRows(ctx, ali.ID, course.ID)
	require.NoError(t, err)
	assert.True(t, rows[lesson.ID].Completed)
}

func TestEnrollAndCertificateFlow(t *testing.T) {
	app := newApp(t)
	ctx := context.Background()
	testutil.CreateUser(t, app.store, "ali@example.com", false)
	testutil.CreateUser(t, app.store, "admin", true)
	course := testutil.CreateCourse(t, app.store, "Go")
	lesson := testutil.CreateLessons(t, app.store, course.ID, 1)[0]
	coursePath := fmt.Sprintf("/course/%d", course.ID)

	learner := app.browser(t)
	learner.login("ali@example.com")

	resp := learner.post(coursePath+"/enroll?lang=en", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.True(t, strings.HasPrefix(location(resp), "https://wa.me/201124592083?text="), location(resp))

	resp = learner.post(coursePath+"/enroll?lang=en", nil)
	assert.Equal(t, coursePath, location(resp))

	resp = learner.get(coursePath + "/request_certificate")
	assert.Equal(t, coursePath, location(resp))

	pending, err := app.store.PendingEnrollRequests(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	admin := app.browser(t)
	admin.login("admin")
	resp = admin.post(fmt.Sprintf("/admin/enroll_requests/%d/accept", pending[0].ID), nil)
	assert.Equal(t, "/admin/enroll_requests", location(resp))

	page := body(t, learner.get(coursePath+"?lang=en"))
	assert.Contains(t, page, "0 / 1")

	resp = learner.get(coursePath + "/request_certificate")
	assert.Equal(t, coursePath, location(resp))

	require.Equal(t, http.StatusNoContent, learner.post(fmt.Sprintf("/lesson/%d/mark_watched", lesson.ID), nil).StatusCode)
	resp = learner.get(coursePath + "/request_certificate?lang=en")
	assert.True(t, strings.HasPrefix(location(resp), "https://wa.me/201124592083?text=Requesting%20certificate"), location(resp))
}

func TestEnroll_MissingCourse(t *testing.T) {
	app := newApp(t)
	testutil.CreateUser(t, app.store, "ali@example.com", false)
	b := app.browser(t)
	b.login("ali@example.com")

	resp := b.post("/course/4242/enroll", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", location(resp))
}

func TestAdminGuard(t *testing.T) {
	app := newApp(t)
	testutil.CreateUser(t, app.store, "ali@example.com", false)
	testutil.CreateUser(t, app.store, "admin", true)

	resp := app.browser(t).get("/admin")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", location(resp))

	learner := app.browser(t)
	learner.login("ali@example.com")
	resp = learner.get("/admin/enroll_requests")
	assert.Equal(t, "/login", location(resp))

	admin := app.browser(t)
	admin.login("admin")
	assert.Equal(t, http.StatusOK, admin.get("/admin").StatusCode)
}

func TestAdminLessonNew_SeedsApprovedLearners(t *testing.T) {
	app := newApp(t)
	ctx := context.Background()
	ali := testutil.CreateUser(t, app.store, "ali@example.com", false)
	testutil.CreateUser(t, app.store, "admin", true)
	course := testutil.CreateCourse(t, app.store, "Go")
	require.NoError(t, app.store.ApproveEnrollment(ctx, ali.ID, course.ID))

	admin := app.browser(t)
	admin.login("admin")
	resp := admin.post(fmt.Sprintf("/admin/course/%d/lesson/new", course.ID), url.Values{
		"title_ar":  {"مقدمة"},
		"title_en":  {"Intro"},
		"position":  {"1"},
		"video_url": {"https://www.youtube.com/embed/abc"},
	})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, fmt.Sprintf("/admin/course/%d/lessons", course.ID), location(resp))

	lessons, err := app.store.LessonsByCourse(ctx, course.ID)
	require.NoError(t, err)
	require.Len(t, lessons, 1)
	assert.Equal(t, "https://www.youtube.com/embed/abc", lessons[0].ExternalURL())

	rows, err := app.store.ProgressRows(ctx, ali.ID, course.ID)
	require.NoError(t, err)
	require.Contains(t, rows, lessons[0].ID)
	assert.False(t, rows[lessons[0].ID].Completed)

	resp = admin.get(fmt.Sprintf("/admin/course/%d/lesson/%d/delete", course.ID, lessons[0].ID))
	assert.Equal(t, fmt.Sprintf("/admin/course/%d/lessons", course.ID), location(resp))
	_, err = app.store.LessonByID(ctx, lessons[0].ID)
	assert.NoError(t, err, "GET must not delete")
}

func TestAdminCourseDelete_RemovesFiles(t *testing.T) {
	app := newApp(t)
	ctx := context.Background()
	testutil.CreateUser(t, app.store, "admin", true)

	video := "intro.mp4"
	require.NoError(t, os.WriteFile(filepath.Join(app.uploadDir, video), []byte("x"), 0o644))
	course := testutil.CreateCourse(t, app.store, "Go")
	lesson := models.Lesson{CourseID: course.ID, Title: models.Text("أ", "A"), Video: &video}
	require.NoError(t, app.store.CreateLesson(ctx, &lesson))

	admin := app.browser(t)
	admin.login("admin")
	resp := admin.post(fmt.Sprintf("/admin/course/%d/delete", course.ID), nil)
	assert.Equal(t, "/admin", location(resp))

	_, err := app.store.CourseByID(ctx, course.ID)
	assert.Error(t, err)
	assert.NoFileExists(t, filepath.Join(app.uploadDir, video))
}

func TestAdminCourseDelete_FailureKeepsEverything(t *testing.T) {
	app := newApp(t)
	ctx := context.Background()
	testutil.CreateUser(t, app.store, "admin", true)

	video := "intro.mp4"
	require.NoError(t, os.WriteFile(filepath.Join(app.uploadDir, video), []byte("x"), 0o644))
	course := testutil.CreateCourse(t, app.store, "Go")
	lesson := models.Lesson{CourseID: course.ID, Title: models.Text("أ", "A"), Video: &video}
	require.NoError(t, app.store.CreateLesson(ctx, &lesson))

	admin := app.browser(t)
	admin.login("admin")
	app.store.FailOn["DeleteCourse"] = assert.AnError
	resp := admin.post(fmt.Sprintf("/admin/course/%d/delete", course.ID), nil)
	assert.Equal(t, "/admin", location(resp))
	delete(app.store.FailOn, "DeleteCourse")

	_, err := app.store.CourseByID(ctx, course.ID)
	assert.NoError(t, err)
	_, err = app.store.LessonByID(ctx, lesson.ID)
	assert.NoError(t, err)
	assert.FileExists(t, filepath.Join(app.uploadDir, video))
	assert.Contains(t, body(t, admin.get("/admin")), "Delete failed")
}

func TestAdminSlideDelete_PostOnly(t *testing.T) {
	app := newApp(t)
	ctx := context.Background()
	testutil.CreateUser(t, app.store, "admin", true)

	image := "hero.png"
	require.NoError(t, os.WriteFile(filepath.Join(app.uploadDir, image), []byte("x"), 0o644))
	slide := models.HeroSlide{Title: models.Text("عنوان", "Title"), Desc: models.Text("وصف", "Desc"), ImagePath: &image}
	require.NoError(t, app.store.CreateSlide(ctx, &slide))

	admin := app.browser(t)
	admin.login("admin")

	for _, path := range []string{
		fmt.Sprintf("/admin/slider/delete/%d", slide.ID),
		fmt.Sprintf("/admin/slider/delete_image/%d", slide.ID),
	} {
		resp := admin.get(path)
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode, path)
	}
	got, err := app.store.SlideByID(ctx, slide.ID)
	require.NoError(t, err)
	assert.Equal(t, image, got.ImageName())
	assert.FileExists(t, filepath.Join(app.uploadDir, image))

	resp := admin.post(fmt.Sprintf("/admin/slider/delete_image/%d", slide.ID), nil)
	assert.Equal(t, fmt.Sprintf("/admin/slider/edit/%d", slide.ID), location(resp))
	got, err = app.store.SlideByID(ctx, slide.ID)
	require.NoError(t, err)
	assert.Empty(t, got.ImageName())
	assert.NoFileExists(t, filepath.Join(app.uploadDir, image))

	resp = admin.post(fmt.Sprintf("/admin/slider/delete/%d", slide.ID), nil)
	assert.Equal(t, "/admin", location(resp))
	_, err = app.store.SlideByID(ctx, slide.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestAdminReport(t *testing.T) {
	app := newApp(t)
	testutil.CreateUser(t, app.store, "admin", true)
	testutil.CreateCourse(t, app.store, "Go")

	admin := app.browser(t)
	admin.login("admin")
	resp := admin.get("/admin/reports/progress.xlsx")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix([]byte(body(t, resp)), []byte("PK")))
}

func TestEnrollRequestsAPI(t *testing.T) {
	app := newApp(t)
	ctx := context.Background()
	ali := testutil.CreateUser(t, app.store, "ali@example.com", false)
	testutil.CreateUser(t, app.store, "admin", true)
	course := testutil.CreateCourse(t, app.store, "Go")
	req := models.EnrollRequest{UserID: ali.ID, CourseID: course.ID, Status: models.StatusPending}
	require.NoError(t, app.store.CreateEnrollRequest(ctx, &req))

	admin := app.browser(t)
	admin.login("admin")

	list := admin.get("/api/admin/enroll_requests")
	assert.Equal(t, http.StatusOK, list.StatusCode)
	assert.Contains(t, body(t, list), `"username":"ali@example.com"`)

	resp := admin.do(http.MethodPut, fmt.Sprintf("/api/admin/enroll_requests/%d", req.ID),
		strings.NewReader(`{"status":"accepted"}`), "application/json")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ok, err := app.store.IsApproved(ctx, ali.ID, course.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	resp = admin.do(http.MethodPut, "/api/admin/enroll_requests/9999",
		strings.NewReader(`{"status":"rejected"}`), "application/json")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUploads(t *testing.T) {
	app := newApp(t)
	require.NoError(t, os.WriteFile(filepath.Join(app.uploadDir, "note.txt"), []byte("hello"), 0o644))

	b := app.browser(t)
	resp := b.get("/uploads/note.txt")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "hello", body(t, resp))

	assert.Equal(t, http.StatusNotFound, b.get("/uploads/missing.txt").StatusCode)
}

func TestHealthz(t *testing.T) {
	app := newApp(t)
	resp := app.browser(t).get("/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok\n", body(t, resp))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	assert.Equal(t, http.StatusOK, app.browser(t).get("/metrics").StatusCode)
}

func TestHealthz_DBDown(t *testing.T) {
	app := newApp(t)
	app.store.FailOn["Ping"] = assert.AnError

	resp := app.browser(t).get("/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
