package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stocksense/internal/common"
	"github.com/ternarybob/stocksense/internal/interfaces"
	"github.com/ternarybob/stocksense/internal/models"
)

// ThesisRequest is the inbound body for creating or updating a thesis.
type ThesisRequest struct {
	Ticker          string                 `json:"ticker" validate:"required,max=12"`
	Summary         string                 `json:"summary" validate:"required,max=4000"`
	ConvictionLevel string                 `json:"conviction_level" validate:"omitempty,oneof=high medium low"`
	TimeHorizon     string                 `json:"time_horizon" validate:"omitempty,oneof=short medium long"`
	ThesisType      string                 `json:"thesis_type" validate:"omitempty,oneof=growth value income turnaround special_situation"`
	Status          string                 `json:"status" validate:"omitempty,oneof=active validated invalidated exited"`
	KillCriteria    []models.KillCriterion `json:"kill_criteria" validate:"max=20"`
}

// ThesisHandler exposes owner-scoped thesis CRUD. All routes require a
// valid bearer credential.
type ThesisHandler struct {
	thesisStorage interfaces.ThesisStorage
	auth          interfaces.AuthService
	validate      *validator.Validate
	logger        arbor.ILogger
}

func NewThesisHandler(thesisStorage interfaces.ThesisStorage, auth interfaces.AuthService, logger arbor.ILogger) *ThesisHandler {
	return &ThesisHandler{
		thesisStorage: thesisStorage,
		auth:          auth,
		validate:      validator.New(),
		logger:        logger,
	}
}

// CollectionHandler handles /api/theses: POST creates, GET lists.
func (h *ThesisHandler) CollectionHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.requirePrincipal(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodPost:
		h.create(w, r, principal)
	case http.MethodGet:
		h.list(w, r, principal)
	default:
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// ItemHandler handles /api/theses/{id}: GET, PUT, DELETE.
func (h *ThesisHandler) ItemHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.requirePrincipal(w, r)
	if !ok {
		return
	}

	id := PathSuffix(r, "/api/theses/")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "thesis id is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, principal, id)
	case http.MethodPut:
		h.update(w, r, principal, id)
	case http.MethodDelete:
		h.delete(w, r, principal, id)
	default:
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *ThesisHandler) create(w http.ResponseWriter, r *http.Request, principal *models.Principal) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	ticker, err := common.NormalizeTicker(req.Ticker)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now()
	thesis := &models.Thesis{
		ID:              common.NewThesisID(),
		UserID:          principal.UserID,
		Ticker:          ticker,
		Summary:         req.Summary,
		ConvictionLevel: req.ConvictionLevel,
		KillCriteria:    req.KillCriteria,
		TimeHorizon:     req.TimeHorizon,
		ThesisType:      req.ThesisType,
		Status:          models.ThesisStatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := thesis.Validate(); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.thesisStorage.SaveThesis(r.Context(), thesis); err != nil {
		WriteServiceError(w, err)
		return
	}

	h.logger.Info().
		Str("thesis_id", thesis.ID).
		Str("ticker", thesis.Ticker).
		Str("user_id", principal.UserID).
		Int("kill_criteria", len(thesis.KillCriteria)).
		Msg("Thesis created")

	WriteJSON(w, http.StatusCreated, thesis)
}

func (h *ThesisHandler) list(w http.ResponseWriter, r *http.Request, principal *models.Principal) {
	ticker := r.URL.Query().Get("ticker")
	if ticker != "" {
		normalized, err := common.NormalizeTicker(ticker)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		ticker = normalized
	}

	theses, err := h.thesisStorage.ListTheses(r.Context(), principal.UserID, ticker)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	if theses == nil {
		theses = []*models.Thesis{}
	}

	WriteJSON(w, http.StatusOK, theses)
}

func (h *ThesisHandler) get(w http.ResponseWriter, r *http.Request, principal *models.Principal, id string) {
	thesis, err := h.loadOwned(r, principal, id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, thesis)
}

func (h *ThesisHandler) update(w http.ResponseWriter, r *http.Request, principal *models.Principal, id string) {
	thesis, err := h.loadOwned(r, principal, id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	ticker, err := common.NormalizeTicker(req.Ticker)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	thesis.Ticker = ticker
	thesis.Summary = req.Summary
	thesis.ConvictionLevel = req.ConvictionLevel
	thesis.KillCriteria = req.KillCriteria
	thesis.TimeHorizon = req.TimeHorizon
	thesis.ThesisType = req.ThesisType
	if req.Status != "" {
		thesis.Status = req.Status
	}
	thesis.UpdatedAt = time.Now()

	if err := thesis.Validate(); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.thesisStorage.SaveThesis(r.Context(), thesis); err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, thesis)
}

func (h *ThesisHandler) delete(w http.ResponseWriter, r *http.Request, principal *models.Principal, id string) {
	if err := h.thesisStorage.DeleteThesis(r.Context(), principal.UserID, id); err != nil {
		WriteServiceError(w, err)
		return
	}

	h.logger.Info().
		Str("thesis_id", id).
		Str("user_id", principal.UserID).
		Msg("Thesis deleted")

	WriteJSON(w, http.StatusOK, map[string]string{"id": id})
}

// loadOwned fetches the thesis and enforces ownership. Foreign theses
// surface as not found, never as forbidden, to avoid leaking existence.
func (h *ThesisHandler) loadOwned(r *http.Request, principal *models.Principal, id string) (*models.Thesis, error) {
	thesis, err := h.thesisStorage.GetThesis(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if thesis.UserID != principal.UserID {
		return nil, fmt.Errorf("%w: thesis %s", models.ErrNotFound, id)
	}
	return thesis, nil
}

func (h *ThesisHandler) decodeRequest(w http.ResponseWriter, r *http.Request) (*ThesisRequest, bool) {
	var req ThesisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return nil, false
	}
	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return nil, false
	}
	return &req, true
}

func (h *ThesisHandler) requirePrincipal(w http.ResponseWriter, r *http.Request) (*models.Principal, bool) {
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
