// Package server exposes the aggregated portfolio over a small JSON API.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/Avishkar2004/8byte/internal/app"
	"github.com/Avishkar2004/8byte/internal/common"
)

// Server wraps the HTTP handler set over an initialized App.
type Server struct {
	app    *app.App
	logger *common.Logger
}

// New creates a server over a.
func New(a *app.App) *Server {
	return &Server{app: a, logger: a.Logger}
}

// Handler returns the HTTP handler with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerRoutes(mux)
	return mux
}

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/portfolio", s.handlePortfolio)
	mux.HandleFunc("/api/portfolio/refresh", s.handleRefresh)
}

// WriteJSON writes v as a JSON response.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

// RequireMethod enforces the HTTP method, writing a 405 on mismatch.
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	return true
}
