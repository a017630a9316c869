package handler

import (
	"context"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/mock"

	"github.com/sakif/conftrack/internal/auth"
	"github.com/sakif/conftrack/internal/flash"
	"github.com/sakif/conftrack/internal/model"
	"github.com/sakif/conftrack/internal/respond"
	"github.com/sakif/conftrack/internal/service"
)

type mockSnippetService struct{ mock.Mock }

func (m *mockSnippetService) Find(ctx context.Context, id string) (*model.Snippet, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*model.Snippet)
	return s, args.Error(1)
}

func (m *mockSnippetService) ListPublic(ctx context.Context) (model.Snippets, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(model.Snippets)
	return s, args.Error(1)
}

func (m *mockSnippetService) New() *model.Snippet {
	return m.Called().Get(0).(*model.Snippet)
}

func (m *mockSnippetService) Save(ctx context.Context, s *model.Snippet) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockSnippetService) Destroy(ctx context.Context, s *model.Snippet) error {
	return m.Called(ctx, s).Error(0)
}

type mockSessionTypeService struct{ mock.Mock }

func (m *mockSessionTypeService) Find(ctx context.Context, id string) (*model.SessionType, error) {
	args := m.Called(ctx, id)
	st, _ := args.Get(0).(*model.SessionType)
	return st, args.Error(1)
}

func (m *mockSessionTypeService) ListByEvent(ctx context.Context, e *model.Event) (model.SessionTypes, error) {
	args := m.Called(ctx, e)
	list, _ := args.Get(0).(model.SessionTypes)
	return list, args.Error(1)
}

func (m *mockSessionTypeService) New(e *model.Event) *model.SessionType {
	return m.Called(e).Get(0).(*model.SessionType)
}

func (m *mockSessionTypeService) Save(ctx context.Context, st *model.SessionType) error {
	return m.Called(ctx, st).Error(0)
}

func (m *mockSessionTypeService) Destroy(ctx context.Context, st *model.SessionType) error {
	return m.Called(ctx, st).Error(0)
}

type mockEvents struct{ mock.Mock }

func (m *mockEvents) Current(ctx context.Context, ref string) (*model.Event, error) {
	args := m.Called(ctx, ref)
	e, _ := args.Get(0).(*model.Event)
	return e, args.Error(1)
}

type mockAuthenticator struct{ mock.Mock }

func (m *mockAuthenticator) LoginWithPassword(ctx context.Context, login, password string) (*service.AuthResult, error) {
	args := m.Called(ctx, login, password)
	res, _ := args.Get(0).(*service.AuthResult)
	return res, args.Error(1)
}

func (m *mockAuthenticator) LoginOrRegisterGitHub(ctx context.Context, gh *auth.GitHubUser) (*service.AuthResult, error) {
	args := m.Called(ctx, gh)
	res, _ := args.Get(0).(*service.AuthResult)
	return res, args.Error(1)
}

type mockOAuth struct{ mock.Mock }

func (m *mockOAuth) AuthURL(state string) string {
	return m.Called(state).String(0)
}

func (m *mockOAuth) Exchange(ctx context.Context, code string) (*auth.GitHubUser, error) {
	args := m.Called(ctx, code)
	u, _ := args.Get(0).(*auth.GitHubUser)
	return u, args.Error(1)
}

// plainMarkdown echoes the source so tests can see it reached the page.
type plainMarkdown struct{}

func (plainMarkdown) Render(source string) (template.HTML, error) {
	return template.HTML("<p>" + template.HTMLEscapeString(source) + "</p>"), nil
}

// fakeRenderer records what would have been rendered.
type fakeRenderer struct {
	template string
	data     any
	status   int
}

func (f *fakeRenderer) Render(w http.ResponseWriter, _ *http.Request, status int, name string, data any) error {
	f.template, f.data, f.status = name, data, status
	w.WriteHeader(status)
	_, _ = io.WriteString(w, name)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestWriter() (*respond.Writer, *fakeRenderer) {
	fr := &fakeRenderer{}
	return respond.NewWriter(fr, discardLogger()), fr
}

var (
	adminUser  = &model.User{ID: "u-admin", Login: "root", Admin: true}
	memberUser = &model.User{ID: "u-member", Login: "guest"}
)

// serve runs req through a router carrying the same middleware as the real
// server: URL format detection, flash loading and a fixed principal.
func serve(routes func(r chi.Router), user *model.User, req *http.Request) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Use(chimiddleware.URLFormat)
	r.Use(flash.Middleware)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := auth.WithPrincipal(req.Context(), auth.Principal{User: user})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	routes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}
