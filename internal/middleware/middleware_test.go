package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/s/eduportal/internal/logging"
	"github.com/s/eduportal/internal/metrics"
)

func TestRecover(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	before := promtest.ToFloat64(metrics.HandlerErrors)

	h := Recover(zap.New(core))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, before+1, promtest.ToFloat64(metrics.HandlerErrors))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "panic", logs.All()[0].Message)
}

func TestRecover_AbortHandlerPropagates(t *testing.T) {
	h := Recover(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	r := mux.NewRouter()
	r.Use(RequestID(zap.New(core)))
	r.HandleFunc("/course/{id:[0-9]+}", func(w http.ResponseWriter, r *http.Request) {
		logging.FromContext(r.Context(), zap.NewNop()).Info("inside")
		w.WriteHeader(http.StatusTeapot)
	})

	t.Run("generates id", func(t *testing.T) {
		logs.TakeAll()
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/course/7", nil))

		assert.Equal(t, http.StatusTeapot, rec.Code)
		id := rec.Header().Get("X-Request-ID")
		require.NotEmpty(t, id)

		entries := logs.TakeAll()
		require.Len(t, entries, 2)
		assert.Equal(t, "inside", entries[0].Message)
		assert.Equal(t, id, entries[0].ContextMap()["request_id"])
		assert.Equal(t, "request", entries[1].Message)
		assert.EqualValues(t, http.StatusTeapot, entries[1].ContextMap()["status"])
	})

	t.Run("keeps incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/course/7", nil)
		req.Header.Set("X-Request-ID", "abc")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, "abc", rec.Header().Get("X-Request-ID"))
	})

	assert.Positive(t, promtest.CollectAndCount(metrics.HTTPDuration, "eduportal_http_request_duration_seconds"))
}
