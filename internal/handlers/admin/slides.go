package admin

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/s/eduportal/internal/handlers"
	"github.com/s/eduportal/internal/models"
	"github.com/s/eduportal/internal/storage"
	"github.com/s/eduportal/internal/uploads"
	"github.com/s/eduportal/internal/validation"
)

type slideForm struct {
	TitleAr string `form:"title_ar" validate:"required"`
	TitleEn string `form:"title_en" validate:"required"`
	DescAr  string `form:"desc_ar" validate:"required"`
	DescEn  string `form:"desc_en" validate:"required"`
}

func readSlideForm(r *http.Request) slideForm {
	return slideForm{
		TitleAr: strings.TrimSpace(r.FormValue("title_ar")),
		TitleEn: strings.TrimSpace(r.FormValue("title_en")),
		DescAr:  strings.TrimSpace(r.FormValue("desc_ar")),
		DescEn:  strings.TrimSpace(r.FormValue("desc_en")),
	}
}

func (f slideForm) apply(s *models.HeroSlide) {
	s.Title = models.Text(f.TitleAr, f.TitleEn)
	s.Desc = models.Text(f.DescAr, f.DescEn)
}

func slideEditPath(id uint) string { return fmt.Sprintf("/admin/slider/edit/%d", id) }

// renderSlideForm показывает форму слайда; при ошибках валидации - с кодом 400.
func (serv Service) renderSlideForm(w http.ResponseWriter, r *http.Request, slide models.HeroSlide, verr *validation.Error) {
	lang := serv.Lang(w, r)
	data := serv.Page(w, r, handlers.T(lang, "الشريحة", "Slide"))
	data.Slide = slide
	status := http.StatusOK
	if verr != nil {
		data.Errors = verr.Fields
		status = http.StatusBadRequest
	}
	serv.Render(w, r, status, "admin/slide_form.html", data)
}

// validate returns false after answering the request itself.
func (serv Service) validate(w http.ResponseWriter, r *http.Request, form any, onInvalid func(*validation.Error)) bool {
	err := validation.Struct(form)
	if err == nil {
		return true
	}
	var verr *validation.Error
	if errors.As(err, &verr) {
		onInvalid(verr)
	} else {
		serv.ServerError(w, r, err)
	}
	return false
}

func (serv Service) HandleSlideNew(w http.ResponseWriter, r *http.Request) {
	lang := serv.Lang(w, r)
	if r.Method != http.MethodPost {
		serv.renderSlideForm(w, r, models.HeroSlide{}, nil)
		return
	}
	if err := serv.parseForm(w, r); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	form := readSlideForm(r)
	var slide models.HeroSlide
	form.apply(&slide)
	if !serv.validate(w, r, form, func(verr *validation.Error) { serv.renderSlideForm(w, r, slide, verr) }) {
		return
	}

	// Картинка обязательна только при создании.
	if formFile(r, "new_image") == nil {
		serv.AddFlash(w, r, "error", handlers.T(lang, "يجب توفير صورة للشريحة الجديدة.", "A new slide needs an image."))
		serv.Redirect(w, r, "/admin/slider/new")
		return
	}
	name, err := serv.saveUpload(r, "new_image", uploads.Image)
	if err != nil {
		serv.uploadFailed(w, r, lang, err, "/admin/slider/new")
		return
	}
	slide.ImagePath = &name

	if err := serv.Store.CreateSlide(r.Context(), &slide); err != nil {
		serv.Uploads.Remove(name)
		serv.ServerError(w, r, err)
		return
	}
	serv.AddFlash(w, r, "success", handlers.T(lang, "✅ تم إضافة شريحة جديدة بنجاح", "Slide added"))
	serv.Redirect(w, r, "/admin")
}

// loadSlide answers the request itself when the slide is missing.
func (serv Service) loadSlide(w http.ResponseWriter, r *http.Request) (models.HeroSlide, bool) {
	lang := serv.Lang(w, r)
	id, ok := handlers.VarID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return models.HeroSlide{}, false
	}
	slide, err := serv.Store.SlideByID(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		serv.AddFlash(w, r, "error", handlers.T(lang, "لم يتم العثور على الشريحة", "Slide not found"))
		serv.Redirect(w, r, "/admin")
		return models.HeroSlide{}, false
	}
	if err != nil {
		serv.ServerError(w, r, err)
		return models.HeroSlide{}, false
	}
	return slide, true
}

func (serv Service) HandleSlideEdit(w http.ResponseWriter, r *http.Request) {
	lang := serv.Lang(w, r)
	slide, ok := serv.loadSlide(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodPost {
		serv.renderSlideForm(w, r, slide, nil)
		return
	}
	if err := serv.parseForm(w, r); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	form := readSlideForm(r)
	form.apply(&slide)
	if !serv.validate(w, r, form, func(verr *validation.Error) { serv.renderSlideForm(w, r, slide, verr) }) {
		return
	}

	name, err := serv.saveUpload(r, "new_image", uploads.Image)
	if err != nil {
		serv.uploadFailed(w, r, lang, err, slideEditPath(slide.ID))
		return
	}
	old := slide.ImageName()
	if name != "" {
		slide.ImagePath = &name
	}

	if err := serv.Store.UpdateSlide(r.Context(), &slide); err != nil {
		serv.Uploads.Remove(name)
		serv.ServerError(w, r, err)
		return
	}
	if name != "" {
		serv.Uploads.Remove(old)
	}
	serv.AddFlash(w, r, "success", handlers.T(lang, "✅ تم تحديث الشريحة بنجاح", "Slide updated"))
	serv.Redirect(w, r, "/admin")
}

func (serv Service) HandleSlideDelete(w http.ResponseWriter, r *http.Request) {
	lang := serv.Lang(w, r)
	slide, ok := serv.loadSlide(w, r)
	if !ok {
		return
	}
	if err := serv.Store.DeleteSlide(r.Context(), slide.ID); err != nil {
		serv.ServerError(w, r, err)
		return
	}
	serv.Uploads.Remove(slide.ImageName())

	serv.AddFlash(w, r, "info", handlers.T(lang, "🗑️ تم حذف الشريحة بنجاح", "Slide deleted"))
	serv.Redirect(w, r, "/admin")
}

// HandleSlideDeleteImage removes the picture but keeps the slide.
func (serv Service) HandleSlideDeleteImage(w http.ResponseWriter, r *http.Request) {
	lang := serv.Lang(w, r)
	slide, ok := serv.loadSlide(w, r)
	if !ok {
		return
	}
	old := slide.ImageName()
	if old == "" {
		serv.AddFlash(w, r, "warning", handlers.T(lang, "لا توجد صورة لحذفها.", "No image to delete."))
		serv.Redirect(w, r, slideEditPath(slide.ID))
		return
	}

	slide.ImagePath = nil
	if err := serv.Store.UpdateSlide(r.Context(), &slide); err != nil {
		serv.ServerError(w, r, err)
		return
	}
	serv.Uploads.Remove(old)

	serv.AddFlash(w, r, "info", handlers.T(lang,
		"🖼️ تم حذف الصورة بنجاح. يمكنك رفع صورة جديدة الآن.", "Image deleted. You can upload a new one now."))
	serv.Redirect(w, r, slideEditPath(slide.ID))
}
