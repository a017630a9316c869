package view

import (
	"html/template"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/conftrack/internal/apperror"
	"github.com/sakif/conftrack/internal/auth"
	"github.com/sakif/conftrack/internal/flash"
	"github.com/sakif/conftrack/internal/model"
	"github.com/sakif/conftrack/web"
)

func TestNew_ParsesEmbeddedTemplates(t *testing.T) {
	tmpl, err := New(web.Templates())
	require.NoError(t, err)

	for _, name := range []string{
		"home/index", "auth/login", "errors/404", "errors/500",
		"snippets/index", "snippets/show", "snippets/new", "snippets/edit",
		"session_types/index", "session_types/show", "session_types/new", "session_types/edit",
	} {
		assert.True(t, tmpl.Has(name), name)
	}
	assert.False(t, tmpl.Has("snippets/_form"), "partials are not pages")
}

type snippetPage struct {
	Page
	Snippet  *model.Snippet
	Errors   *apperror.AppError
	Action   string
	Method   string
	ReturnTo string
}

func TestRender_FormWithErrorsAndLayout(t *testing.T) {
	tmpl, err := New(web.Templates())
	require.NoError(t, err)

	data := &snippetPage{
		Snippet:  &model.Snippet{ID: "s1", Slug: "cfp", Public: true},
		Errors:   apperror.ValidationFailed("slug", "Slug has already been taken"),
		Action:   "/manage/snippets/s1",
		Method:   "PUT",
		ReturnTo: "/manage",
	}
	data.Title = "Editing cfp"
	data.Breadcrumbs.Add("Manage", "/manage")
	data.Breadcrumbs.Add("cfp", "")

	req := httptest.NewRequest(http.MethodGet, "/manage/snippets/s1/edit", nil)
	ctx := auth.WithPrincipal(req.Context(), auth.Principal{User: &model.User{Login: "root", Admin: true}})
	ctx = flash.NewContext(ctx, flash.Messages{{Kind: flash.Notice, Text: "Welcome back"}})
	rec := httptest.NewRecorder()

	require.NoError(t, tmpl.Render(rec, req.WithContext(ctx), http.StatusUnprocessableEntity, "snippets/edit", data))

	body := rec.Body.String()
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, body, "<title>Editing cfp · conftrack</title>")
	assert.Contains(t, body, `<a href="/manage">Manage</a>`)
	assert.Contains(t, body, "Welcome back")
	assert.Contains(t, body, "root")
	assert.Contains(t, body, `name="_method" value="PUT"`)
	assert.Contains(t, body, `value="cfp"`)
	assert.Contains(t, body, "Slug has already been taken")
	assert.Contains(t, body, " checked")
}

func TestRender_UnknownTemplate(t *testing.T) {
	tmpl, err := New(web.Templates())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	err = tmpl.Render(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, "nope", nil)
	assert.Error(t, err)
	assert.Empty(t, rec.Body.String())
}

func TestRender_ExecutionErrorWritesNothing(t *testing.T) {
	fsys := fstest.MapFS{
		"layout.html":  {Data: []byte(`{{define "layout"}}<p>{{template "content" .Content}}</p>{{end}}`)},
		"pages/x.html": {Data: []byte(`{{define "content"}}{{.Missing.Field}}{{end}}`)},
	}
	tmpl, err := New(fsys)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	err = tmpl.Render(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, "pages/x", struct{}{})
	assert.Error(t, err)
	assert.Empty(t, rec.Body.String())
}

func TestRender_HTMLIsNotEscapedTwice(t *testing.T) {
	tmpl, err := New(web.Templates())
	require.NoError(t, err)

	data := &struct {
		Page
		Snippet *model.Snippet
		HTML    template.HTML
	}{Snippet: &model.Snippet{ID: "s1", Slug: "cfp"}, HTML: "<p><strong>hi</strong></p>"}

	rec := httptest.NewRecorder()
	require.NoError(t, tmpl.Render(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, "snippets/show", data))
	assert.Contains(t, rec.Body.String(), "<p><strong>hi</strong></p>")
}

func TestBreadcrumbs(t *testing.T) {
	var b Breadcrumbs
	b.Add("Manage", "/manage")
	b.Add("Snippets", "/manage/snippets/")
	assert.Equal(t, Breadcrumbs{{"Manage", "/manage"}, {"Snippets", "/manage/snippets/"}}, b)
}
