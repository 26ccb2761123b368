package handlers

import (
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/s/eduportal/internal/models"
	"github.com/s/eduportal/internal/storage"
	"github.com/s/eduportal/internal/validation"
)

type registerForm struct {
	FullName string `form:"fullname" validate:"required,max=255"`
	Email    string `form:"email" validate:"required,email,max=255"`
	Password string `form:"password" validate:"required,min=6"`
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	lang := h.Lang(w, r)
	if r.Method != http.MethodPost {
		h.Render(w, r, http.StatusOK, "register.html", h.Page(w, r, T(lang, "إنشاء حساب", "Register")))
		return
	}

	form := registerForm{
		FullName: strings.TrimSpace(r.FormValue("fullname")),
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: strings.TrimSpace(r.FormValue("password")),
	}
	if form.Password != strings.TrimSpace(r.FormValue("confirm")) {
		h.AddFlash(w, r, "error", T(lang, "كلمتا المرور غير متطابقتين", "Passwords do not match"))
		h.Redirect(w, r, withLang("/register", lang))
		return
	}

	if err := validation.Struct(form); err != nil {
		var verr *validation.Error
		if !errors.As(err, &verr) {
			h.ServerError(w, r, err)
			return
		}
		data := h.Page(w, r, T(lang, "إنشاء حساب", "Register"))
		data.Errors = verr.Fields
		data.Form = map[string]string{"fullname": form.FullName, "email": form.Email}
		h.Render(w, r, http.StatusBadRequest, "register.html", data)
		return
	}

	// Логин - это email.
	user := models.User{Username: form.Email, Email: form.Email, FullName: form.FullName}
	if err := user.SetPassword(form.Password); err != nil {
		h.ServerError(w, r, err)
		return
	}
	err := h.Store.CreateUser(r.Context(), &user)
	if errors.Is(err, storage.ErrDuplicate) {
		h.AddFlash(w, r, "error", T(lang, "البريد مستخدم", "Email already used"))
		h.Redirect(w, r, withLang("/register", lang))
		return
	}
	if err != nil {
		h.ServerError(w, r, err)
		return
	}

	h.Logger(r).Info("user registered", zap.Uint("user_id", user.ID))
	h.AddFlash(w, r, "success", T(lang, "تم إنشاء الحساب", "Account created"))
	h.Redirect(w, r, withLang("/login", lang))
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	lang := h.Lang(w, r)
	if r.Method != http.MethodPost {
		h.Render(w, r, http.StatusOK, "login.html", h.Page(w, r, T(lang, "تسجيل الدخول", "Login")))
		return
	}

	login := strings.TrimSpace(r.FormValue("email"))
	password := strings.TrimSpace(r.FormValue("password"))

	user, err := h.Store.UserByLogin(r.Context(), login)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		h.ServerError(w, r, err)
		return
	}
	if err != nil || !user.CheckPassword(password) {
		h.AddFlash(w, r, "error", T(lang, "خطأ في البيانات", "Invalid credentials"))
		data := h.Page(w, r, T(lang, "تسجيل الدخول", "Login"))
		data.Form = map[string]string{"email": login}
		h.Render(w, r, http.StatusUnauthorized, "login.html", data)
		return
	}

	h.signIn(w, r, user)
	if user.IsAdmin {
		h.AddFlash(w, r, "success", T(lang, "مرحباً أيها المشرف", "Welcome Admin"))
		h.Redirect(w, r, "/admin")
		return
	}
	h.AddFlash(w, r, "success", T(lang, "تم تسجيل الدخول", "Logged in"))
	h.Redirect(w, r, withLang("/profile", lang))
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request, user models.User) {
	s := h.session(r)
	s.Values["user_id"] = user.ID
	h.saveSession(w, r, s)
	h.Logger(r).Info("user signed in", zap.Uint("user_id", user.ID))
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	lang := h.Lang(w, r)
	s := h.session(r)
	delete(s.Values, "user_id")
	h.saveSession(w, r, s)

	h.AddFlash(w, r, "info", T(lang, "تم تسجيل الخروج", "Logged out"))
	h.Redirect(w, r, withLang("/", lang))
}
