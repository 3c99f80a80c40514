package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"lesson_prep_assistant/exporter"
	"lesson_prep_assistant/generator"
)

//go:embed web/dist
var embeddedStatic embed.FS

const maxBodyBytes = 64 << 10

type Options struct {
	RequestTimeout time.Duration
	SessionTTL     time.Duration
	Logger         *zap.Logger
}

type Server struct {
	planner    generator.Planner
	store      *sessionStore
	metrics    *Metrics
	logger     *zap.Logger
	timeout    time.Duration
	static     fs.FS
	fileServer http.Handler
}

func New(planner generator.Planner, opts Options) (*Server, error) {
	if planner == nil {
		return nil, errors.New("generator agent required")
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 120 * time.Second
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 30 * time.Minute
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	sub, err := fs.Sub(embeddedStatic, "web/dist")
	if err != nil {
		return nil, err
	}

	store := newStore(opts.SessionTTL)
	return &Server{
		planner:    planner,
		store:      store,
		metrics:    newMetrics(store),
		logger:     logger,
		timeout:    opts.RequestTimeout,
		static:     sub,
		fileServer: http.FileServer(http.FS(sub)),
	}, nil
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", s.metrics.handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/presets", s.handlePresets)
		r.Post("/sessions", s.handleSessionCreate)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleSessionGet)
			r.Post("/search", s.handleSearch)
			r.Post("/back", s.handleBack)
			r.Get("/export", s.handleExport)
		})
	})

	r.Handle("/*", s.staticHandler())
	return r
}

// staticHandler serves the embedded UI; unknown paths fall back to index.html.
func (s *Server) staticHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
		if p == "" {
			p = "."
		}
		if _, err := fs.Stat(s.static, p); err != nil {
			http.ServeFileFS(w, r, s.static, "index.html")
			return
		}
		s.fileServer.ServeHTTP(w, r)
	})
}

// --- Handlers ---

type searchReq struct {
	Topic string `json:"topic"`
}

func (s *Server) handlePresets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"presets": generator.Presets})
}

func (s *Server) handleSessionCreate(w http.ResponseWriter, _ *http.Request) {
	id := uuid.NewString()
	sess := generator.NewSession(id, s.planner)
	s.store.set(id, sess)
	writeJSON(w, http.StatusCreated, sess.Snapshot())
}

func (s *Server) handleSessionGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req searchReq
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	start := time.Now()
	snap, err := sess.Submit(ctx, req.Topic)
	switch {
	case errors.Is(err, generator.ErrEmptyTopic):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, generator.ErrBusy):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	elapsed := time.Since(start)
	s.metrics.observeCycle(snap, elapsed)
	s.logger.Info("search cycle finished",
		zap.String("session_id", sess.ID),
		zap.String("topic", snap.Topic),
		zap.String("state", string(snap.State)),
		zap.Bool("diagram", snap.Diagram != nil),
		zap.Duration("elapsed", elapsed))

	status := http.StatusOK
	if snap.State == generator.StateError {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, snap)
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Back())
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	article, diagram, ok := sess.Result()
	if !ok {
		writeError(w, http.StatusConflict, exporter.ErrNoArticle.Error())
		return
	}
	doc, err := exporter.Export(article, diagram)
	if err != nil {
		s.logger.Error("export failed", zap.String("session_id", sess.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.metrics.exports.Inc()

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", doc.ContentDisposition())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Body)
}

// --- Helpers ---

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*generator.Session, bool) {
	id := chi.URLParam(r, "id")
	sess, ok := s.store.get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	return sess, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)))
	})
}
