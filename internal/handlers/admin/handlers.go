package admin

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/s/eduportal/internal/enrollment"
	"github.com/s/eduportal/internal/handlers"
	"github.com/s/eduportal/internal/models"
	"github.com/s/eduportal/internal/reports"
	"github.com/s/eduportal/internal/uploads"
)

type Service struct {
	handlers.Handler
}

const multipartMemory = 32 << 20

func (serv Service) HandleAdminPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := serv.Page(w, r, handlers.T(serv.Lang(w, r), "لوحة الإدارة", "Admin"))

	courses, err := serv.Store.ListCourses(ctx)
	if err != nil {
		serv.ServerError(w, r, err)
		return
	}
	slides, err := serv.Store.ListSlides(ctx)
	if err != nil {
		serv.ServerError(w, r, err)
		return
	}
	data.Courses = courses
	data.Slides = slides

	serv.Render(w, r, http.StatusOK, "admin/index.html", data)
}

// HandleEnrollRequestsPage lists requests still waiting for a decision.
func (serv Service) HandleEnrollRequestsPage(w http.ResponseWriter, r *http.Request) {
	data := serv.Page(w, r, handlers.T(serv.Lang(w, r), "طلبات التسجيل", "Enrollment requests"))

	pending, err := serv.Enroll.Pending(r.Context())
	if err != nil {
		serv.ServerError(w, r, err)
		return
	}
	data.Requests = pending

	serv.Render(w, r, http.StatusOK, "admin/enroll_requests.html", data)
}

func (serv Service) HandleAcceptRequest(w http.ResponseWriter, r *http.Request) {
	serv.decide(w, r, serv.Enroll.Accept,
		"✅ تم قبول الطلب وتفعيل جميع دروس الدورة للمستخدم", "Request accepted, all course lessons are open to the user")
}

func (serv Service) HandleRejectRequest(w http.ResponseWriter, r *http.Request) {
	serv.decide(w, r, serv.Enroll.Reject, "🚫 تم رفض أو إيقاف الطلب", "Request rejected")
}

func (serv Service) decide(w http.ResponseWriter, r *http.Request, fn func(context.Context, uint) error, ar, en string) {
	lang := serv.Lang(w, r)
	id, ok := handlers.VarID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	err := fn(r.Context(), id)
	switch {
	case err == nil:
		serv.AddFlash(w, r, "success", handlers.T(lang, ar, en))
	case errors.Is(err, enrollment.ErrRequestNotFound):
		serv.AddFlash(w, r, "error", handlers.T(lang, "❌ لم يتم العثور على الطلب", "Request not found"))
	default:
		serv.ServerError(w, r, err)
		return
	}
	serv.Redirect(w, r, "/admin/enroll_requests")
}

// HandleProgressReport отдаёт xlsx с прогрессом всех учеников по курсам.
func (serv Service) HandleProgressReport(w http.ResponseWriter, r *http.Request) {
	lang := serv.Lang(w, r)
	sheets, err := reports.CollectProgress(r.Context(), serv.Store)
	if err != nil {
		serv.ServerError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := reports.WriteProgress(&buf, sheets, lang); err != nil {
		serv.ServerError(w, r, err)
		return
	}

	name := "progress_" + time.Now().Format("20060102") + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	_, _ = buf.WriteTo(w)
}

// parseForm reads a form that may carry files, bounded by MaxUploadMB.
func (serv Service) parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, serv.Config.MaxUploadMB<<20)
	err := r.ParseMultipartForm(multipartMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		return nil
	}
	return err
}

func formFile(r *http.Request, field string) *multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	files := r.MultipartForm.File[field]
	if len(files) == 0 || files[0].Filename == "" {
		return nil
	}
	return files[0]
}

// saveUpload stores the optional file from field. No file gives "".
func (serv Service) saveUpload(r *http.Request, field string, kind uploads.Kind) (string, error) {
	fh := formFile(r, field)
	if fh == nil {
		return "", nil
	}
	name, err := serv.Uploads.Save(fh, kind)
	if err != nil {
		return "", err
	}
	serv.Log.Info("upload stored", zap.String("field", field), zap.String("name", name))
	return name, nil
}

// uploadFailed reports a rejected file back to the form at back. Disk errors
// are server errors.
func (serv Service) uploadFailed(w http.ResponseWriter, r *http.Request, lang models.Lang, err error, back string) {
	switch {
	case errors.Is(err, uploads.ErrUnsupportedImage):
		serv.AddFlash(w, r, "error", handlers.T(lang, "صيغة الصورة غير مدعومة.", "Unsupported image format."))
	case errors.Is(err, uploads.ErrEmptyFilename):
		serv.AddFlash(w, r, "error", handlers.T(lang, "اسم الملف غير صالح.", "Invalid file name."))
	default:
		serv.ServerError(w, r, err)
		return
	}
	serv.Redirect(w, r, back)
}
