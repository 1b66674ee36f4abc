package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/fwojciec/passage"
)

// codes maps application error codes to HTTP status codes.
var codes = map[string]int{
	passage.EINVALID:      http.StatusBadRequest,
	passage.EUNAUTHORIZED: http.StatusUnauthorized,
	passage.ENOTFOUND:     http.StatusNotFound,
	passage.EUNAVAILABLE:  http.StatusServiceUnavailable,
	passage.EINTERNAL:     http.StatusInternalServerError,
}

// ErrorStatusCode returns the HTTP status code for an application error code.
func ErrorStatusCode(code string) int {
	if v, ok := codes[code]; ok {
		return v
	}
	return http.StatusInternalServerError
}

// Error writes err as a JSON error response with the mapped status code.
// Internal errors are logged and their details hidden.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	code, message := passage.ErrorCode(err), passage.ErrorMessage(err)
	if code == passage.EINTERNAL {
		loggerFrom(r).Error("internal error", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	writeJSON(w, ErrorStatusCode(code), &ErrorResponse{Error: message})
}

// ErrorResponse is the body of an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type loggerKey struct{}

func loggerFrom(r *http.Request) *slog.Logger {
	if l, ok := r.Context().Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}
