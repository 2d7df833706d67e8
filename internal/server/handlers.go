package server

import (
	"net/http"
	"time"

	"github.com/Avishkar2004/8byte/internal/common"
)

// handleHealth handles GET /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	last := s.app.LastPass()

	resp := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.app.StartupTime).String(),
	}
	if last != nil {
		resp["last_pass"] = last.CompletedAt
		// Fresh means the snapshot is no older than two scheduler cycles.
		interval := s.app.Config.Aggregator.GetRefreshInterval()
		resp["last_pass_fresh"] = common.IsFresh(last.CompletedAt, 2*interval)
	}

	WriteJSON(w, http.StatusOK, resp)
}

// handlePortfolio handles GET /api/portfolio, serving the latest snapshot.
// Before the first pass completes this returns 503 so clients can
// distinguish "not yet aggregated" from an empty portfolio.
func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	last := s.app.LastPass()
	if last == nil {
		WriteError(w, http.StatusServiceUnavailable, "no aggregation pass has completed yet")
		return
	}

	WriteJSON(w, http.StatusOK, last)
}

// handleRefresh handles POST /api/portfolio/refresh, re-reading the
// holdings file and running a pass now. Scheduled passes keep the cached
// list; the manual endpoint is how edits get picked up without a restart.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if _, err := s.app.Holdings.Reload(r.Context()); err != nil {
		s.logger.Warn().Err(err).Msg("Holdings reload failed")
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	result, err := s.app.RefreshNow(r.Context())
	if err != nil {
		s.logger.Warn().Err(err).Msg("Manual refresh failed")
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, result)
}
