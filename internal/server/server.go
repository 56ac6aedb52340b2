// Package server exposes the scan API over HTTP: a rate-limited scan
// endpoint, the back-office scan listing, and health/metrics probes.
package server

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/repradar/repradar/internal/models"
	"github.com/repradar/repradar/internal/ratelimit"
)

// Scanner runs brand scans.
type Scanner interface {
	Scan(ctx context.Context, brand string) (*models.ScanResult, error)
	GetMetrics() string
}

// History records completed scans and lists them for the back office.
type History interface {
	Record(result *models.ScanResult) (*models.ScanRecord, error)
	Recent(limit int) ([]models.ScanRecord, error)
}

// Server holds the HTTP dependencies and builds the router.
type Server struct {
	scanner     Scanner
	history     History
	scanLimiter *ratelimit.Limiter
	apiLimiter  *ratelimit.Limiter
}

// New creates a server.
func New(scanner Scanner, history History, scanLimiter, apiLimiter *ratelimit.Limiter) *Server {
	return &Server{
		scanner:     scanner,
		history:     history,
		scanLimiter: scanLimiter,
		apiLimiter:  apiLimiter,
	}
}

// Router assembles the route table. The scan endpoint sits behind the
// strict limiter, the listing behind the standard one; probes are unmetered.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()

	router.Handle("/api/scan",
		s.scanLimiter.Middleware()(http.HandlerFunc(s.handleScan))).Methods("POST")
	router.Handle("/api/scans",
		s.apiLimiter.Middleware()(http.HandlerFunc(s.handleListScans))).Methods("GET")

	router.HandleFunc("/health", s.handleHealth).Methods("GET")
	router.HandleFunc("/metrics", s.handleMetrics).Methods("GET")

	return router
}
