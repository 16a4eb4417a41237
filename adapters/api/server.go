// Package api exposes the analysis pipeline over HTTP.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"dataprism/app"
)

// maxUploadBytes bounds multipart uploads (64 MiB).
const maxUploadBytes = 64 << 20

// Server holds the router and the pipeline service.
type Server struct {
	router  *chi.Mux
	service *app.Service
}

// NewServer builds the router with its middleware and routes.
func NewServer(service *app.Service) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		service: service,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(corsMiddleware)
}

func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/", s.handleRoot)
		r.Post("/upload", s.handleUpload)
		r.Post("/query", s.handleQuery)
		r.Get("/sessions", s.handleListSessions)
		r.Get("/session/{id}", s.handleGetSession)
		r.Get("/session/{id}/data", s.handleSessionData)
		r.Get("/session/{id}/queries", s.handleSessionQueries)
		r.Delete("/session/{id}", s.handleDeleteSession)
		r.Get("/report/{queryId}/download", s.handleReportDownload)
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
