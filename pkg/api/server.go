package api

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rmax-ai/graphscope/pkg/blob"
	"github.com/rmax-ai/graphscope/pkg/graph"
	"github.com/rmax-ai/graphscope/pkg/store"
)

// Context keys
type contextKey string

const traceIDKey contextKey = "trace_id"

// MaxPayloadBytes caps the size of an uploaded dataset.
const MaxPayloadBytes = 32 << 20

// HTTPRequestsTotal counts API requests by route and status code.
var HTTPRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "graphscope_http_requests_total",
		Help: "Total number of API requests",
	},
	[]string{"route", "code"},
)

func init() {
	prometheus.MustRegister(HTTPRequestsTotal)
}

// Pinger is implemented by optional backends the health check reports on.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server encapsulates the HTTP API server
type Server struct {
	store  store.PayloadStore
	server *http.Server
	log    *slog.Logger

	version   string
	tokenHash string
	cache     Pinger
	archive   *blob.Archive

	// TLS Config
	tlsCertFile string
	tlsKeyFile  string
}

// NewServer creates a new API server instance serving st.
func NewServer(st store.PayloadStore, addr string) *Server {
	s := &Server{
		store:   st,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		version: "dev",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/v1/graph", s.handleGraph)
	mux.HandleFunc("/v1/graph/nodes/", s.handleNode)
	mux.HandleFunc("/v1/graph/revisions", s.handleRevisions)

	// Middleware: Logging, Panic Recovery, Security Headers
	handler := s.withLogging(s.withRecovery(withSecureHeaders(mux)))

	if addr == "" {
		addr = ":8090"
	}

	s.server = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler { return s.server.Handler }

// SetLogger sets the request and error logger.
func (s *Server) SetLogger(l *slog.Logger) {
	if l != nil {
		s.log = l.With("component", "api")
	}
}

// SetVersion sets the version reported by /v1/health.
func (s *Server) SetVersion(v string) { s.version = v }

// SetWriteToken requires "Authorization: Bearer <token>" on dataset
// uploads. An empty token disables the check.
func (s *Server) SetWriteToken(token string) {
	if token == "" {
		s.tokenHash = ""
		return
	}
	s.tokenHash = hashToken(token)
}

// SetCache registers the cache so /v1/health can report on it.
func (s *Server) SetCache(c Pinger) { s.cache = c }

// SetArchive keeps every uploaded revision in a. Archived revisions are
// served by GET /v1/graph?revision=N.
func (s *Server) SetArchive(a *blob.Archive) { s.archive = a }

// SetTLS configures the server to use TLS
func (s *Server) SetTLS(certFile, keyFile string) {
	s.tlsCertFile = certFile
	s.tlsKeyFile = keyFile
}

// Start runs the HTTP server (blocking)
func (s *Server) Start() error {
	var err error
	if s.tlsCertFile != "" && s.tlsKeyFile != "" {
		s.log.Info("server_starting_tls", "addr", s.server.Addr)
		err = s.server.ListenAndServeTLS(s.tlsCertFile, s.tlsKeyFile)
	} else {
		s.log.Info("server_starting", "addr", s.server.Addr)
		err = s.server.ListenAndServe()
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("server_stopping")
	return s.server.Shutdown(ctx)
}

// handleGraph serves the dataset (GET) and replaces it (PUT).
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.getGraph(w, r)
	case http.MethodPut:
		s.withAuth(s.putGraph)(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
	}
}

func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
	if rev := r.URL.Query().Get("revision"); rev != "" {
		s.getRevision(w, r, rev)
		return
	}

	p, err := s.store.LoadPayload(r.Context())
	if errors.Is(err, store.ErrNotFound) {
		// Nothing stored yet reads as an empty graph.
		p, err = &graph.Payload{Nodes: []graph.PayloadNode{}, Edges: []graph.PayloadEdge{}}, nil
	}
	if err != nil {
		s.log.Error("failed_to_load_graph", "trace_id", getTraceID(r.Context()), "err", err)
		writeError(w, http.StatusInternalServerError, "internal_server_error", "")
		return
	}
	s.writeJSON(w, r, http.StatusOK, p)
}

func (s *Server) getRevision(w http.ResponseWriter, r *http.Request, raw string) {
	if s.archive == nil {
		writeError(w, http.StatusNotFound, "archive_disabled", "")
		return
	}
	rev, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || rev <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_revision", raw)
		return
	}
	p, err := s.archive.Load(r.Context(), rev)
	if errors.Is(err, blob.ErrNotFound) {
		writeError(w, http.StatusNotFound, "revision_not_found", raw)
		return
	}
	if err != nil {
		s.log.Error("failed_to_load_revision", "trace_id", getTraceID(r.Context()), "revision", rev, "err", err)
		writeError(w, http.StatusInternalServerError, "internal_server_error", "")
		return
	}
	s.writeJSON(w, r, http.StatusOK, p)
}

// handleRevisions lists archived revisions, oldest first.
func (s *Server) handleRevisions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	revs := []int64{}
	if s.archive != nil {
		var err error
		revs, err = s.archive.Revisions(r.Context())
		if err != nil {
			s.log.Error("failed_to_list_revisions", "trace_id", getTraceID(r.Context()), "err", err)
			writeError(w, http.StatusInternalServerError, "internal_server_error", "")
			return
		}
	}
	s.writeJSON(w, r, http.StatusOK, RevisionsResponse{Revisions: revs})
}

func (s *Server) putGraph(w http.ResponseWriter, r *http.Request) {
	var p graph.Payload
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxPayloadBytes))
	if err := dec.Decode(&p); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	warnings, err := p.Validate()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_graph", err.Error())
		return
	}

	info, err := s.store.ReplacePayload(r.Context(), &p)
	if err != nil {
		s.log.Error("failed_to_store_graph", "trace_id", getTraceID(r.Context()), "err", err)
		writeError(w, http.StatusInternalServerError, "internal_server_error", "")
		return
	}

	if s.archive != nil {
		if err := s.archive.Save(r.Context(), info.Revision, &p); err != nil {
			s.log.Warn("failed_to_archive_graph", "trace_id", getTraceID(r.Context()), "revision", info.Revision, "err", err)
		}
	}

	s.log.Info("graph_replaced", "trace_id", getTraceID(r.Context()),
		"revision", info.Revision, "nodes", info.Nodes, "edges", info.Edges, "warnings", len(warnings))
	s.writeJSON(w, r, http.StatusOK, PutGraphResponse{
		Revision: info.Revision,
		Nodes:    info.Nodes,
		Edges:    info.Edges,
		Warnings: warnings,
	})
}

// handleNode returns one node with its incident edges.
func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/v1/graph/nodes/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing_node_id", "")
		return
	}

	p, err := s.store.LoadPayload(r.Context())
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "node_not_found", id)
		return
	}
	if err != nil {
		s.log.Error("failed_to_load_graph", "trace_id", getTraceID(r.Context()), "err", err)
		writeError(w, http.StatusInternalServerError, "internal_server_error", "")
		return
	}

	d, ok := graph.NewModel(p).Details(id)
	if !ok {
		writeError(w, http.StatusNotFound, "node_not_found", id)
		return
	}
	s.writeJSON(w, r, http.StatusOK, d)
}

// handleHealth reports store and cache status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}

	resp := HealthResponse{Status: "ok", Version: s.version, Cache: "none"}
	info, err := s.store.Info(r.Context())
	switch {
	case errors.Is(err, store.ErrNotFound):
		resp.Status = "empty"
	case err != nil:
		s.log.Error("health_store_failed", "trace_id", getTraceID(r.Context()), "err", err)
		writeError(w, http.StatusServiceUnavailable, "store_unavailable", "")
		return
	default:
		resp.Revision, resp.Nodes, resp.Edges = info.Revision, info.Nodes, info.Edges
	}

	if s.cache != nil {
		resp.Cache = "redis"
		if err := s.cache.Ping(r.Context()); err != nil {
			resp.Status = "degraded"
			s.log.Warn("health_cache_failed", "trace_id", getTraceID(r.Context()), "err", err)
		}
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("failed_to_encode_response", "trace_id", getTraceID(r.Context()), "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, reason string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: code, Reason: reason})
}

// Middleware: Auth
func (s *Server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.tokenHash == "" {
			next(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing_token")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid_token_format")
			return
		}

		if subtle.ConstantTimeCompare([]byte(hashToken(parts[1])), []byte(s.tokenHash)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid_token")
			return
		}

		next(w, r)
	}
}

// Middleware: Panic Recovery
func (s *Server) withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.log.Error("panic_recovered", "trace_id", getTraceID(r.Context()), "path", r.URL.Path, "err", err)
				writeError(w, http.StatusInternalServerError, "internal_server_error", "")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Middleware: Request Logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = uuid.NewString()
		}
		r = r.WithContext(context.WithValue(r.Context(), traceIDKey, traceID))
		w.Header().Set("X-Trace-ID", traceID)

		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)

		HTTPRequestsTotal.WithLabelValues(routeOf(r.URL.Path), strconv.Itoa(ww.status)).Inc()
		s.log.Info("http_request",
			"trace_id", traceID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// routeOf collapses per-node paths so metric labels stay bounded.
func routeOf(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/graph/nodes/"):
		return "/v1/graph/nodes"
	case path == "/v1/graph", path == "/v1/graph/revisions", path == "/v1/health", path == "/metrics":
		return path
	default:
		return "other"
	}
}

func getTraceID(ctx context.Context) string {
	if v, ok := ctx.Value(traceIDKey).(string); ok {
		return v
	}
	return ""
}

// statusWriter captures HTTP status code
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// Middleware: Secure Headers
func withSecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")

		next.ServeHTTP(w, r)
	})
}
