package handlers

import (
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stocksense/internal/interfaces"
	"github.com/ternarybob/stocksense/internal/models"
)

// AlertHandler exposes the user's alert log: list and acknowledge.
// All routes require a valid bearer credential.
type AlertHandler struct {
	alertStorage interfaces.AlertStorage
	auth         interfaces.AuthService
	logger       arbor.ILogger
}

func NewAlertHandler(alertStorage interfaces.AlertStorage, auth interfaces.AuthService, logger arbor.ILogger) *AlertHandler {
	return &AlertHandler{
		alertStorage: alertStorage,
		auth:         auth,
		logger:       logger,
	}
}

// ListHandler handles GET /api/alerts?unread=true.
func (h *AlertHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	principal, ok := h.requirePrincipal(w, r)
	if !ok {
		return
	}

	unreadOnly := r.URL.Query().Get("unread") == "true"

	alerts, err := h.alertStorage.ListAlerts(r.Context(), principal.UserID, unreadOnly)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	if alerts == nil {
		alerts = []*models.AlertEvent{}
	}

	WriteJSON(w, http.StatusOK, alerts)
}

// MarkReadHandler handles POST /api/alerts/{id}/read.
func (h *AlertHandler) MarkReadHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	principal, ok := h.requirePrincipal(w, r)
	if !ok {
		return
	}

	alertID := strings.TrimSuffix(PathSuffix(r, "/api/alerts/"), "/read")
	if alertID == "" {
		WriteError(w, http.StatusBadRequest, "alert id is required")
		return
	}

	if err := h.alertStorage.MarkRead(r.Context(), principal.UserID, alertID); err != nil {
		WriteServiceError(w, err)
		return
	}

	h.logger.Debug().
		Str("alert_id", alertID).
		Str("user_id", principal.UserID).
		Msg("Alert acknowledged")

	WriteJSON(w, http.StatusOK, map[string]string{"id": alertID, "status": "read"})
}

func (h *AlertHandler) requirePrincipal(w http.ResponseWriter, r *http.Request) (*models.Principal, bool) {
	token := BearerToken(r)
	if token == "" {
		WriteError(w, http.StatusUnauthorized, "bearer credential required")
		return nil, false
	}
	principal, err := h.auth.VerifyToken(r.Context(), token)
	if err != nil {
		WriteServiceError(w, err)
		return nil, false
	}
	return principal, true
}
