// Package api exposes the analytics engine over HTTP. The server holds one
// immutable snapshot per process; every request is answered by a pure
// computation against it, so handlers need no locking.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"agroyield/app"
	"agroyield/domain/yield"
	"agroyield/internal"
)

// Server is the HTTP application
type Server struct {
	router   *chi.Mux
	service  *app.AnalysisService
	snapshot *yield.Snapshot
	validate *validator.Validate
	log      *internal.Logger
}

// NewServer creates the HTTP server around a loaded snapshot
func NewServer(service *app.AnalysisService, snapshot *yield.Snapshot, log *internal.Logger) *Server {
	if log == nil {
		log = internal.DefaultLogger
	}
	s := &Server{
		router:   chi.NewRouter(),
		service:  service,
		snapshot: snapshot,
		validate: validator.New(),
		log:      log,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

func (s *Server) setupRoutes() {
	s.router.Get("/api/snapshot", s.handleSnapshotInfo)
	s.router.Post("/api/aggregate", s.handleAggregate)
	s.router.Get("/api/normalize", s.handleNormalize)
	s.router.Post("/api/compare", s.handleCompare)
	s.router.Post("/api/rank/parcels", s.handleRankParcels)
	s.router.Get("/api/overview", s.handleOverview)
	s.router.Get("/api/parcels/{id}/profile", s.handleParcelProfile)
	s.router.Get("/api/export/report", s.handleExportReport)
	s.router.Get("/api/export/normalized.csv", s.handleExportNormalizedCSV)
}

// ServeHTTP allows the server to be used as an http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the underlying router
func (s *Server) Handler() http.Handler { return s.router }
