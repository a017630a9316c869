package middleware

import (
	"net/http"
	"strings"
)

// MethodOverrideField is the form field HTML forms use to ask for a method
// browsers cannot send.
const MethodOverrideField = "_method"

// MethodOverride turns a POST carrying _method=PUT, PATCH or DELETE into a
// request with that method. Only urlencoded and multipart bodies are
// inspected; any other value is left alone.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && isForm(r.Header.Get("Content-Type")) {
			switch m := strings.ToUpper(r.PostFormValue(MethodOverrideField)); m {
			case http.MethodPut, http.MethodPatch, http.MethodDelete:
				r.Method = m
			}
		}
		next.ServeHTTP(w, r)
	})
}

func isForm(contentType string) bool {
	return strings.HasPrefix(contentType, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(contentType, "multipart/form-data")
}
