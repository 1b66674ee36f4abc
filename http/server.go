package http

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/passage"
	"github.com/google/uuid"
)

// ShutdownTimeout is the time given for outstanding requests to finish
// before shutdown.
const ShutdownTimeout = 5 * time.Second

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// Query parameter aliases, in resolution order.
var (
	QueryParams = []string{"q", "query"}
	TopKParams  = []string{"top_k", "k"}
)

// Server serves the query endpoint, a health probe, and optionally an MCP
// handler, all over one listener.
type Server struct {
	ln     net.Listener
	server *http.Server
	router *http.ServeMux

	// Bind address for the server's listener.
	Addr string

	// Token guards /search and /mcp. Empty disables the check.
	Token string

	// Services used by the handlers.
	SearchService passage.SearchService
	StatusService passage.StatusService

	// MCPHandler is mounted at /mcp when set.
	MCPHandler http.Handler

	Logger *slog.Logger
}

// NewServer returns a new instance of Server.
func NewServer() *Server {
	s := &Server{
		server: &http.Server{ReadHeaderTimeout: 10 * time.Second},
		router: http.NewServeMux(),
		Logger: slog.New(slog.DiscardHandler),
	}
	s.server.Handler = s

	s.router.Handle("GET /search", s.requireToken(http.HandlerFunc(s.handleSearch)))
	s.router.HandleFunc("GET /healthz", s.handleHealthz)
	s.router.Handle("/mcp", s.requireToken(http.HandlerFunc(s.handleMCP)))

	return s
}

// Open begins listening on the bind address and serves in the background.
func (s *Server) Open() (err error) {
	if s.ln, err = net.Listen("tcp", s.Addr); err != nil {
		return err
	}
	go func() {
		_ = s.server.Serve(s.ln)
	}()
	return nil
}

// Close gracefully shuts down the server.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// URL returns the local base URL of the running server.
func (s *Server) URL() string {
	if s.ln == nil {
		return ""
	}
	return "http://" + s.ln.Addr().String()
}

// ServeHTTP tags the request with an ID, recovers panics, and logs the
// outcome before handing off to the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	begin := time.Now()

	id := r.Header.Get(RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set(RequestIDHeader, id)
	logger := s.Logger.With("request_id", id)
	r = r.WithContext(context.WithValue(r.Context(), loggerKey{}, logger))

	sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
	defer func() {
		if v := recover(); v != nil {
			logger.Error("panic serving request", "path", r.URL.Path, "panic", v)
			if !sw.wrote {
				if r.URL.Path == "/search" {
					writeJSON(sw, http.StatusOK, &SearchResponse{Results: []*passage.Result{}})
				} else {
					writeJSON(sw, http.StatusInternalServerError, &ErrorResponse{Error: "Internal error."})
				}
			}
		}
		logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", time.Since(begin),
		)
	}()

	s.router.ServeHTTP(sw, r)
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		RequireToken(s.Token, next).ServeHTTP(w, r)
	})
}

// SearchResponse is the body of a /search response. Results is never null.
type SearchResponse struct {
	Results []*passage.Result `json:"results"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	query := strings.TrimSpace(firstParam(q, QueryParams))
	if query == "" {
		Error(w, r, passage.Errorf(passage.EINVALID, "query parameter q required"))
		return
	}

	opts := passage.SearchOptions{
		TopK:   parseInt(firstParam(q, TopKParams), passage.DefaultTopK),
		Lambda: parseFloat(q.Get("lambda"), passage.DefaultLambda),
	}.Normalize()

	results, err := s.SearchService.Search(r.Context(), query, opts)
	if err != nil {
		if passage.ErrorCode(err) == passage.EINVALID {
			Error(w, r, err)
			return
		}
		loggerFrom(r).Error("search failed", "err", err)
		results = nil
	}
	if results == nil {
		results = []*passage.Result{}
	}

	writeJSON(w, http.StatusOK, &SearchResponse{Results: results})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	var status passage.Status
	if s.StatusService != nil {
		status = s.StatusService.Status()
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	if s.MCPHandler == nil {
		Error(w, r, passage.Errorf(passage.ENOTFOUND, "mcp is not enabled"))
		return
	}
	s.MCPHandler.ServeHTTP(w, r)
}

func firstParam(q map[string][]string, names []string) string {
	for _, name := range names {
		if v := q[name]; len(v) > 0 && strings.TrimSpace(v[0]) != "" {
			return v[0]
		}
	}
	return ""
}

// parseInt returns def for empty or unparsable input.
func parseInt(s string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return v
}

// parseFloat returns def for empty or unparsable input.
func parseFloat(s string, def float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return def
	}
	return v
}

// statusWriter records the response status and forwards flushes so
// streaming handlers keep working.
type statusWriter struct {
	http.ResponseWriter
	status int
	wrote  bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wrote {
		w.status = code
		w.wrote = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wrote = true
	return w.ResponseWriter.Write(b)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
