package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/conftrack/internal/auth"
	"github.com/sakif/conftrack/internal/respond"
	"github.com/sakif/conftrack/internal/service"
	"github.com/sakif/conftrack/internal/view"
)

const oauthStateCookie = "conftrack_oauth_state"

// Authenticator is the part of service.AuthService the login pages use.
type Authenticator interface {
	LoginWithPassword(ctx context.Context, login, password string) (*service.AuthResult, error)
	LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*service.AuthResult, error)
}

// OAuthProvider is the GitHub side of the OAuth flow.
type OAuthProvider interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.GitHubUser, error)
}

// AuthHandler serves the login and logout endpoints.
type AuthHandler struct {
	base
	auth         Authenticator
	github       OAuthProvider // nil when GitHub login is not configured
	tokenTTL     time.Duration
	secureCookie bool
}

func NewAuthHandler(a Authenticator, github OAuthProvider, tokenTTL time.Duration, secureCookie bool, out *respond.Writer, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		base:         base{out: out, logger: logger},
		auth:         a,
		github:       github,
		tokenTTL:     tokenTTL,
		secureCookie: secureCookie,
	}
}

type loginPage struct {
	view.Page
	Login  string
	Error  string
	GitHub bool
}

func (h *AuthHandler) loginView(login, errMsg string, status int) respond.View {
	page := &loginPage{Login: login, Error: errMsg, GitHub: h.github != nil}
	page.Title = "Log in"
	return respond.View{Template: "auth/login", Data: page, Status: status}
}

func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.out.Write(w, r, h.loginView("", "", http.StatusOK))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	login := r.PostFormValue("login")

	result, err := h.auth.LoginWithPassword(r.Context(), login, r.PostFormValue("password"))
	if errors.Is(err, service.ErrInvalidCredentials) {
		h.out.Write(w, r, h.loginView(login, "Invalid login or password", http.StatusUnauthorized))
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	auth.SetSessionCookie(w, result.Token, h.tokenTTL, h.secureCookie)
	h.out.Write(w, r, respond.Redirect{Location: "/", Flash: respond.Notice("Logged in as " + result.User.Login + ".")})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w, h.secureCookie)
	h.out.Write(w, r, respond.Redirect{Location: "/", Flash: respond.Notice("Logged out.")})
}

// GitHubLogin starts the OAuth flow. The state value is kept in a short-lived
// cookie and checked on the callback.
func (h *AuthHandler) GitHubLogin(w http.ResponseWriter, r *http.Request) {
	if h.github == nil {
		http.NotFound(w, r)
		return
	}

	state := auth.NewState()
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/auth/github",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.github.AuthURL(state), http.StatusFound)
}

func (h *AuthHandler) GitHubCallback(w http.ResponseWriter, r *http.Request) {
	if h.github == nil {
		http.NotFound(w, r)
		return
	}

	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		h.logger.Warn("oauth state mismatch", slog.String("remoteAddr", r.RemoteAddr))
		h.out.Write(w, r, respond.Redirect{Location: "/login", Flash: respond.Failure("GitHub login failed, please try again.")})
		return
	}
	http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Path: "/auth/github", MaxAge: -1})

	ghUser, err := h.github.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		h.logger.Error("github exchange failed", slog.String("error", err.Error()))
		h.out.Write(w, r, respond.Redirect{Location: "/login", Flash: respond.Failure("GitHub login failed, please try again.")})
		return
	}

	result, err := h.auth.LoginOrRegisterGitHub(r.Context(), ghUser)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	auth.SetSessionCookie(w, result.Token, h.tokenTTL, h.secureCookie)
	h.out.Write(w, r, respond.Redirect{Location: "/", Flash: respond.Notice("Logged in as " + result.User.Login + ".")})
}
