// Package flash carries one-request messages across a redirect.
//
// A handler calls Set before redirecting; the message travels in a cookie,
// Middleware moves it into the next request's context and expires the cookie,
// so each message is shown exactly once.
package flash

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
)

const cookieName = "conftrack_flash"

type Kind string

const (
	Notice  Kind = "notice"
	Failure Kind = "failure"
)

type Message struct {
	Kind Kind   `json:"k"`
	Text string `json:"t"`
}

// Messages is the flash of the current request.
type Messages []Message

// Get returns the text of the first message of kind, or "".
func (m Messages) Get(kind Kind) string {
	for _, msg := range m {
		if msg.Kind == kind {
			return msg.Text
		}
	}
	return ""
}

type contextKey struct{}

// Set schedules a message for the next request, replacing any flash already
// set on this response.
func Set(w http.ResponseWriter, kind Kind, text string) {
	raw, err := json.Marshal(Messages{{Kind: kind, Text: text}})
	if err != nil {
		return
	}
	dropCookie(w.Header())
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Middleware loads the pending flash into the request context and expires
// the cookie.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(cookieName)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     cookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		if msgs := decode(c.Value); len(msgs) > 0 {
			r = r.WithContext(NewContext(r.Context(), msgs))
		}
		next.ServeHTTP(w, r)
	})
}

// NewContext returns a copy of ctx carrying msgs.
func NewContext(ctx context.Context, msgs Messages) context.Context {
	return context.WithValue(ctx, contextKey{}, msgs)
}

// FromContext returns the flash loaded by Middleware, possibly nil.
func FromContext(ctx context.Context) Messages {
	msgs, _ := ctx.Value(contextKey{}).(Messages)
	return msgs
}

// Read decodes the flash scheduled on a response. It is meant for tests and
// for following redirects in-process.
func Read(resp *http.Response) Messages {
	var out Messages
	for _, c := range resp.Cookies() {
		if c.Name == cookieName && c.MaxAge >= 0 {
			out = decode(c.Value)
		}
	}
	return out
}

func decode(value string) Messages {
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}
	var msgs Messages
	if err := json.Unmarshal(raw, &msgs); err != nil {
		return nil
	}
	return msgs
}

func dropCookie(h http.Header) {
	prefix := cookieName + "="
	var kept []string
	for _, v := range h.Values("Set-Cookie") {
		if !strings.HasPrefix(v, prefix) {
			kept = append(kept, v)
		}
	}
	h.Del("Set-Cookie")
	for _, v := range kept {
		h.Add("Set-Cookie", v)
	}
}
