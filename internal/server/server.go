// Package server exposes the REST API over offers, leads and scoring runs.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/leadscore/internal/model"
	"github.com/sells-group/leadscore/internal/store"
)

// ScoreRunner runs a scoring pass over the stored leads. The pipeline
// satisfies this; tests swap in a stub.
type ScoreRunner interface {
	Run(ctx context.Context) (*model.RunReport, error)
}

// Server holds the handler dependencies.
type Server struct {
	store  store.Store
	runner ScoreRunner
}

// New creates a Server over the given store and score runner.
func New(st store.Store, runner ScoreRunner) *Server {
	return &Server{store: st, runner: runner}
}

// Router builds the chi router with logging, panic recovery and CORS.
func (s *Server) Router(corsOrigins []string) http.Handler {
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/offer", func(r chi.Router) {
			r.Post("/", s.handleCreateOffer)
			r.Get("/", s.handleListOffers)
			r.Get("/{id}", s.handleGetOffer)
			r.Put("/{id}", s.handleUpdateOffer)
			r.Delete("/{id}", s.handleDeleteOffer)
		})
		r.Route("/leads", func(r chi.Router) {
			r.Post("/", s.handleCreateLead)
			r.Get("/", s.handleListLeads)
			r.Post("/upload", s.handleUpload)
			r.Post("/score", s.handleScore)
			r.Get("/results", s.handleResults)
			r.Get("/export", s.handleExport)
			r.Get("/{id}", s.handleGetLead)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		zap.L().Warn("server: store ping failed", zap.Error(err))
		respondError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requestLogger logs one line per request with status and duration.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("server: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("server: encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
