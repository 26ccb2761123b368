package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s/eduportal/internal/config"
)

func TestNewSessionStore(t *testing.T) {
	tests := []struct {
		name       string
		secure     bool
		wantSecure bool
	}{
		{name: "dev cookie works over plain http", secure: false, wantSecure: false},
		{name: "prod cookie is secure", secure: true, wantSecure: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewSessionStore(config.Config{SessionKey: "test-session-key-0123456789abcdef", SecureCookies: tt.secure})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			sess, err := store.New(req, sessionName)
			require.NoError(t, err)
			sess.Values["user_id"] = uint(7)
			require.NoError(t, sess.Save(req, rec))

			cookies := rec.Result().Cookies()
			require.Len(t, cookies, 1)
			c := cookies[0]
			assert.Equal(t, sessionName, c.Name)
			assert.Equal(t, "/", c.Path)
			assert.True(t, c.HttpOnly)
			assert.Equal(t, tt.wantSecure, c.Secure)
			assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
			assert.Equal(t, 86400*7, c.MaxAge)
		})
	}
}
