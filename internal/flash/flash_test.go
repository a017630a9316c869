package flash

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetThenMiddleware(t *testing.T) {
	rec := httptest.NewRecorder()
	Set(rec, Notice, "Snippet was successfully created.")

	msgs := Read(rec.Result())
	require.Len(t, msgs, 1)
	assert.Equal(t, "Snippet was successfully created.", msgs.Get(Notice))

	// Next request carries the cookie back.
	req := httptest.NewRequest(http.MethodGet, "/manage/snippets/1", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}

	var seen Messages
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
	})
	rec2 := httptest.NewRecorder()
	Middleware(next).ServeHTTP(rec2, req)

	assert.Equal(t, "Snippet was successfully created.", seen.Get(Notice))
	assert.Empty(t, seen.Get(Failure))
	assert.Empty(t, Read(rec2.Result()), "flash is consumed after one request")
}

func TestSet_ReplacesEarlierFlash(t *testing.T) {
	rec := httptest.NewRecorder()
	http.SetCookie(rec, &http.Cookie{Name: "other", Value: "keep"})
	Set(rec, Notice, "first")
	Set(rec, Failure, "second")

	msgs := Read(rec.Result())
	assert.Equal(t, Messages{{Kind: Failure, Text: "second"}}, msgs)

	var names []string
	for _, c := range rec.Result().Cookies() {
		names = append(names, c.Name)
	}
	assert.ElementsMatch(t, []string{"other", cookieName}, names)
}

func TestMiddleware_NoCookie(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Nil(t, FromContext(r.Context()))
	})
	rec := httptest.NewRecorder()
	Middleware(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.True(t, called)
	assert.Empty(t, rec.Result().Cookies())
}

func TestMiddleware_GarbageCookieIgnored(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: "%%%not-base64"})

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Nil(t, FromContext(r.Context()))
	})
	Middleware(next).ServeHTTP(httptest.NewRecorder(), req)
}
