package leads

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fixitsanclemente/quote-intake/pkg/logging"
)

// Handler serves the owner's lead administration endpoints.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a new leads handler
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if repo == nil {
		panic("leads: repository cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

// ListLeadsResponse is the response for listing leads
type ListLeadsResponse struct {
	Leads  []*Record `json:"leads"`
	Count  int       `json:"count"`
	Offset int       `json:"offset"`
	Limit  int       `json:"limit"`
}

// ListLeads handles GET /admin/leads requests
func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{Limit: defaultListLimit}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 && limit <= maxListLimit {
			filter.Limit = limit
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			filter.Offset = offset
		}
	}
	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		status, err := ParseStatus(statusStr)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown status"})
			return
		}
		filter.Status = status
	}

	leads, err := h.repo.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list leads", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list leads"})
		return
	}
	if leads == nil {
		leads = []*Record{}
	}

	writeJSON(w, http.StatusOK, ListLeadsResponse{
		Leads:  leads,
		Count:  len(leads),
		Offset: filter.Offset,
		Limit:  filter.Limit,
	})
}

// GetLead handles GET /admin/leads/{leadID}
func (h *Handler) GetLead(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "leadID")
	lead, err := h.repo.GetByID(r.Context(), leadID)
	if err != nil {
		h.writeError(w, err, leadID)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PATCH /admin/leads/{leadID}
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "leadID")

	var req updateStatusRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	status, err := ParseStatus(req.Status)
	if err != nil {
		h.writeError(w, err, leadID)
		return
	}

	lead, err := h.repo.UpdateStatus(r.Context(), leadID, status)
	if err != nil {
		h.writeError(w, err, leadID)
		return
	}
	h.logger.Info("lead status updated", "lead_id", lead.ID, "status", string(lead.Status))
	writeJSON(w, http.StatusOK, lead)
}

func (h *Handler) writeError(w http.ResponseWriter, err error, leadID string) {
	switch {
	case errors.Is(err, ErrLeadNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "lead not found"})
	case errors.Is(err, ErrInvalidStatus):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown status"})
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrStatusConflict):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		h.logger.Error("lead admin request failed", "error", err, "lead_id", leadID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
