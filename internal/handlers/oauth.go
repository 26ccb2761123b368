package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/s/eduportal/internal/models"
)

const (
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	oauthStateKey     = "oauth_state"
)

func googleOAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

type googleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
}

func (h *Handler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	s := h.session(r)
	s.Values[oauthStateKey] = state
	h.saveSession(w, r, s)

	http.Redirect(w, r, h.OAuth.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

func (h *Handler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	lang := h.Lang(w, r)
	s := h.session(r)
	want, _ := s.Values[oauthStateKey].(string)
	delete(s.Values, oauthStateKey)
	h.saveSession(w, r, s)

	if want == "" || r.URL.Query().Get("state") != want {
		http.Error(w, "Invalid state", http.StatusUnauthorized)
		return
	}

	ctx := r.Context()
	token, err := h.OAuth.Exchange(ctx, r.URL.Query().Get("code"))
	if err != nil {
		h.Logger(r).Warn("oauth exchange failed", zap.Error(err))
		http.Error(w, "Token exchange error", http.StatusBadRequest)
		return
	}

	resp, err := h.OAuth.Client(ctx, token).Get(googleUserInfoURL)
	if err != nil {
		h.ServerError(w, r, errors.Wrap(err, "fetching google profile"))
		return
	}
	defer resp.Body.Close()

	var info googleUser
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		h.ServerError(w, r, errors.Wrap(err, "decoding google profile"))
		return
	}
	if info.ID == "" || info.Email == "" || !info.VerifiedEmail {
		h.AddFlash(w, r, "error", T(lang, "تعذر التحقق من حساب Google", "Could not verify the Google account"))
		h.Redirect(w, r, withLang("/login", lang))
		return
	}

	user, err := h.Store.SaveOAuthUser(ctx, models.User{
		Username: info.Email,
		Email:    info.Email,
		FullName: info.Name,
		GoogleID: &info.ID,
	})
	if err != nil {
		h.ServerError(w, r, err)
		return
	}

	h.signIn(w, r, user)
	if user.IsAdmin {
		h.Redirect(w, r, "/admin")
		return
	}
	h.Redirect(w, r, withLang("/profile", lang))
}
