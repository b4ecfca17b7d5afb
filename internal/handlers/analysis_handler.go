package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stocksense/internal/interfaces"
	"github.com/ternarybob/stocksense/internal/models"
)

// AnalysisHandler exposes the analysis cache API: trigger, read, list, evict.
type AnalysisHandler struct {
	analysis interfaces.AnalysisService
	auth     interfaces.AuthService
	logger   arbor.ILogger
}

// NewAnalysisHandler creates a new analysis handler. The auth service is
// optional; without it every request runs anonymously.
func NewAnalysisHandler(analysis interfaces.AnalysisService, auth interfaces.AuthService, logger arbor.ILogger) *AnalysisHandler {
	return &AnalysisHandler{
		analysis: analysis,
		auth:     auth,
		logger:   logger,
	}
}

// AnalyzeHandler handles POST /analyze/{ticker}?force=true.
// The bearer credential is optional: present and valid it scopes
// kill-criteria evaluation, present and invalid it fails the request.
func (h *AnalysisHandler) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	ticker := PathSuffix(r, "/analyze/")
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	force := r.URL.Query().Get("force") == "true"

	principal, ok := h.optionalPrincipal(w, r)
	if !ok {
		return
	}

	result, err := h.analysis.RequestAnalysis(r.Context(), ticker, force, principal)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Str("ticker", ticker).
			Bool("force", force).
			Msg("Analysis request failed")
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// ResultsHandler handles GET and DELETE /results/{ticker}.
func (h *AnalysisHandler) ResultsHandler(w http.ResponseWriter, r *http.Request) {
	ticker := PathSuffix(r, "/results/")
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		result, err := h.analysis.GetCachedResult(r.Context(), ticker)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, result)

	case http.MethodDelete:
		evicted, err := h.analysis.EvictAnalysis(r.Context(), ticker)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{
			"message": "analysis evicted",
			"ticker":  evicted,
		})

	default:
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// CachedTickersHandler handles GET /cached-tickers.
func (h *AnalysisHandler) CachedTickersHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	tickers, err := h.analysis.ListCachedTickers(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	if tickers == nil {
		tickers = []models.CachedTicker{}
	}

	WriteJSON(w, http.StatusOK, tickers)
}

// optionalPrincipal resolves the bearer credential when one is supplied.
// A missing credential yields a nil principal; an invalid one writes a 401
// and returns ok=false.
func (h *AnalysisHandler) optionalPrincipal(w http.ResponseWriter, r *http.Request) (*models.Principal, bool) {
	token := BearerToken(r)
	if token == "" || h.auth == nil {
		return nil, true
	}

	principal, err := h.auth.VerifyToken(r.Context(), token)
	if err != nil {
		WriteServiceError(w, err)
		return nil, false
	}
	return principal, true
}
