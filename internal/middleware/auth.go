package middleware

import (
	"net/http"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/s/eduportal/internal/access"
	"github.com/s/eduportal/internal/handlers"
)

// Identify кладёт в контекст запроса пользователя из сессии. Без сессии или
// для удалённого пользователя это access.Anonymous.
func Identify(h *handlers.Handler) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, _ := h.GetAuthenticatedUserID(r)

			id, err := h.Guard.Resolve(r.Context(), userID)
			if err != nil {
				h.ServerError(w, r, errors.Wrap(err, "resolving session user"))
				return
			}
			if id.Authenticated {
				h.Logger(r).Debug("identified", zap.Uint("user_id", id.UserID()))
			}
			next.ServeHTTP(w, r.WithContext(access.WithIdentity(r.Context(), id)))
		})
	}
}

// RequireLogin sends anonymous visitors to the login page.
func RequireLogin(h *handlers.Handler) func(next http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if !access.FromContext(r.Context()).Authenticated {
				lang := h.Lang(w, r)
				h.AddFlash(w, r, "info", handlers.T(lang, "يرجى تسجيل الدخول أولاً", "Please log in first"))
				h.Redirect(w, r, "/login")
				return
			}
			next.ServeHTTP(w, r)
		}
	}
}

// RequireAdmin lets only administrators through. Everyone else is sent to the
// login page.
func RequireAdmin(h *handlers.Handler) func(next http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			id := access.FromContext(r.Context())
			if err := h.Guard.Admin(id); err != nil {
				h.Logger(r).Info("admin access denied", zap.Uint("user_id", id.UserID()), zap.Error(err))
				h.AddFlash(w, r, "error", handlers.T(h.Lang(w, r), "تم رفض الوصول", "Access denied"))
				h.Redirect(w, r, "/login")
				return
			}
			next.ServeHTTP(w, r)
		}
	}
}
