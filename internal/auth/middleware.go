package auth

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/conftrack/internal/flash"
	"github.com/sakif/conftrack/internal/model"
)

// SessionCookie holds the session JWT.
const SessionCookie = "conftrack_session"

// AccessDeniedMessage is flashed when the guard turns a request away.
const AccessDeniedMessage = "Access denied, you must login as admin"

// Principal is whoever is making the request. The zero value is an
// anonymous visitor.
type Principal struct {
	User *model.User
}

func (p Principal) Authenticated() bool {
	return p.User != nil
}

// Role is the mass-assignment role of the principal.
func (p Principal) Role() model.Role {
	return p.User.Role()
}

// Privilege is a level of access a route can demand.
type Privilege int

const (
	PrivilegeUser Privilege = iota + 1
	PrivilegeAdmin
)

// Has reports whether the principal holds level.
func (p Principal) Has(level Privilege) bool {
	switch level {
	case PrivilegeUser:
		return p.Authenticated()
	case PrivilegeAdmin:
		return p.Role().IsAdmin()
	}
	return false
}

type contextKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// PrincipalFromContext returns the request's principal, anonymous if none
// was loaded.
func PrincipalFromContext(ctx context.Context) Principal {
	p, _ := ctx.Value(contextKey{}).(Principal)
	return p
}

// RoleFromContext is shorthand for PrincipalFromContext(ctx).Role().
func RoleFromContext(ctx context.Context) model.Role {
	return PrincipalFromContext(ctx).Role()
}

// UserLoader resolves a token subject to a user.
type UserLoader interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// LoadUser resolves the session cookie to a Principal for every request.
// A missing, expired or dangling token leaves the request anonymous; it never
// fails the request.
func LoadUser(tokens *TokenService, users UserLoader, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := tokens.Validate(cookie.Value)
			if err != nil {
				logger.Debug("ignoring session cookie", slog.String("error", err.Error()))
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.GetUserByID(r.Context(), userID)
			if err != nil {
				logger.Warn("session user not loadable",
					slog.String("userID", userID),
					slog.String("error", err.Error()),
				)
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithPrincipal(r.Context(), Principal{User: user})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Require lets a request through only when its principal holds level.
// Otherwise it flashes AccessDeniedMessage and redirects to the home page;
// the wrapped handler never runs.
func Require(level Privilege) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !PrincipalFromContext(r.Context()).Has(level) {
				flash.Set(w, flash.Failure, AccessDeniedMessage)
				http.Redirect(w, r, "/", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SetSessionCookie stores token for ttl.
func SetSessionCookie(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
