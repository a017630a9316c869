package auth

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/conftrack/internal/apperror"
	"github.com/sakif/conftrack/internal/flash"
	"github.com/sakif/conftrack/internal/model"
)

type stubUsers map[string]*model.User

func (s stubUsers) GetUserByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, apperror.NotFound("user", id)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// captured runs LoadUser and returns the principal the handler saw.
func captured(t *testing.T, ts *TokenService, users stubUsers, cookie *http.Cookie) Principal {
	t.Helper()
	var got Principal
	h := LoadUser(ts, users, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = PrincipalFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	h.ServeHTTP(httptest.NewRecorder(), req)
	return got
}

func TestLoadUser(t *testing.T) {
	ts := newTestTokenService(t)
	admin := &model.User{ID: "u1", Login: "root", Admin: true}
	users := stubUsers{"u1": admin}

	token, err := ts.Generate("u1")
	require.NoError(t, err)
	dangling, err := ts.Generate("deleted-user")
	require.NoError(t, err)

	p := captured(t, ts, users, &http.Cookie{Name: SessionCookie, Value: token})
	assert.Same(t, admin, p.User)
	assert.Equal(t, model.RoleAdmin, p.Role())

	assert.False(t, captured(t, ts, users, nil).Authenticated(), "no cookie")
	assert.False(t, captured(t, ts, users, &http.Cookie{Name: SessionCookie, Value: "junk"}).Authenticated(), "bad token")
	assert.False(t, captured(t, ts, users, &http.Cookie{Name: SessionCookie, Value: dangling}).Authenticated(), "unknown user")
}

func TestPrincipalRoles(t *testing.T) {
	var anon Principal
	assert.Equal(t, model.RoleDefault, anon.Role())
	assert.False(t, anon.Has(PrivilegeUser))
	assert.False(t, anon.Has(PrivilegeAdmin))

	member := Principal{User: &model.User{ID: "u2"}}
	assert.Equal(t, model.RoleDefault, member.Role())
	assert.True(t, member.Has(PrivilegeUser))
	assert.False(t, member.Has(PrivilegeAdmin))

	admin := Principal{User: &model.User{ID: "u1", Admin: true}}
	assert.True(t, admin.Has(PrivilegeAdmin))
	assert.Equal(t, model.RoleAdmin, RoleFromContext(WithPrincipal(context.Background(), admin)))
}

func TestRequire(t *testing.T) {
	tests := []struct {
		name      string
		principal Principal
		allowed   bool
	}{
		{"anonymous", Principal{}, false},
		{"non-admin", Principal{User: &model.User{ID: "u2"}}, false},
		{"admin", Principal{User: &model.User{ID: "u1", Admin: true}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ran := false
			h := Require(PrivilegeAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ran = true
				w.WriteHeader(http.StatusNoContent)
			}))

			req := httptest.NewRequest(http.MethodPost, "/manage/snippets", nil)
			req = req.WithContext(WithPrincipal(req.Context(), tt.principal))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.allowed, ran)
			if tt.allowed {
				assert.Equal(t, http.StatusNoContent, rec.Code)
				return
			}
			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, "/", rec.Header().Get("Location"))
			assert.Equal(t, AccessDeniedMessage, flash.Read(rec.Result()).Get(flash.Failure))
		})
	}
}

func TestSessionCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	SetSessionCookie(rec, "tok", DefaultTokenTTL, true)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookie, cookies[0].Name)
	assert.Equal(t, "tok", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)

	rec = httptest.NewRecorder()
	ClearSessionCookie(rec, false)
	assert.Equal(t, -1, rec.Result().Cookies()[0].MaxAge)
}
