package http

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/fwojciec/passage"
)

// TokenParams are the query parameters accepted as a credential, in order.
var TokenParams = []string{"token", "key"}

// Authorize checks r for the expected credential, given either as an
// "Authorization: Bearer" header or as a token query parameter. An empty
// expected credential disables the check. Returns EUNAUTHORIZED on
// mismatch.
func Authorize(r *http.Request, expected string) error {
	if expected == "" {
		return nil
	}

	if auth := r.Header.Get("Authorization"); auth != "" {
		scheme, token, ok := strings.Cut(auth, " ")
		if ok && strings.EqualFold(scheme, "Bearer") && tokenEqual(strings.TrimSpace(token), expected) {
			return nil
		}
	}

	q := r.URL.Query()
	for _, name := range TokenParams {
		if token := q.Get(name); token != "" && tokenEqual(token, expected) {
			return nil
		}
	}

	return passage.Errorf(passage.EUNAUTHORIZED, "missing or invalid token")
}

func tokenEqual(got, expected string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(expected)) == 1
}

// RequireToken rejects requests that fail Authorize before next runs.
func RequireToken(expected string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := Authorize(r, expected); err != nil {
			Error(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}
