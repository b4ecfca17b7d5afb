package server

import (
	"net/http"
	"strings"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Analysis cache API
	mux.HandleFunc("/analyze/", s.app.AnalysisHandler.AnalyzeHandler)       // POST /analyze/{ticker}?force=true
	mux.HandleFunc("/results/", s.app.AnalysisHandler.ResultsHandler)       // GET/DELETE /results/{ticker}
	mux.HandleFunc("/cached-tickers", s.app.AnalysisHandler.CachedTickersHandler) // GET

	// WebSocket route (alert push)
	mux.HandleFunc("/ws", s.app.WSHandler.HandleWebSocket)

	// API routes - Alerts
	mux.HandleFunc("/api/alerts", s.app.AlertHandler.ListHandler) // GET ?unread=true
	mux.HandleFunc("/api/alerts/", s.handleAlertRoutes)           // POST /{id}/read

	// API routes - Theses
	mux.HandleFunc("/api/theses", s.app.ThesisHandler.CollectionHandler) // GET (list), POST (create)
	mux.HandleFunc("/api/theses/", s.app.ThesisHandler.ItemHandler)      // GET/PUT/DELETE /{id}

	// API routes - System
	mux.HandleFunc("/health", s.app.APIHandler.HealthHandler)
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}

// handleAlertRoutes routes alert subpaths to the appropriate handler
func (s *Server) handleAlertRoutes(w http.ResponseWriter, r *http.Request) {
	// POST /api/alerts/{id}/read
	if r.Method == "POST" && strings.HasSuffix(r.URL.Path, "/read") {
		s.app.AlertHandler.MarkReadHandler(w, r)
		return
	}

	s.app.APIHandler.NotFoundHandler(w, r)
}
