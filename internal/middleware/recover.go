package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/s/eduportal/internal/logging"
	"github.com/s/eduportal/internal/metrics"
	"github.com/s/eduportal/internal/observability"
)

// Recover turns a panic into a 500 and reports it.
func Recover(log *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					if v == http.ErrAbortHandler {
						panic(v)
					}
					logging.FromContext(r.Context(), log).Error("panic", zap.Any("value", v), zap.Stack("stack"))
					metrics.HandlerErrors.Inc()
					observability.CapturePanic(v)
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
