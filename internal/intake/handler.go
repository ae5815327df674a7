package intake

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/fixitsanclemente/quote-intake/internal/leads"
	"github.com/fixitsanclemente/quote-intake/pkg/logging"
)

const (
	maxContactBody = 64 << 10
	allowedMethods = "POST, OPTIONS"
)

// Handler exposes the contact form endpoint.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if service == nil {
		panic("intake: service cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// ContactResponse is the JSON body returned to the website.
type ContactResponse struct {
	Success               bool    `json:"success"`
	Message               string  `json:"message"`
	LeadID                *string `json:"leadId"`
	EmailSent             bool    `json:"emailSent"`
	ConfirmationEmailSent bool    `json:"confirmationEmailSent"`
}

type errorResponse struct {
	Success       bool     `json:"success"`
	Error         string   `json:"error"`
	MissingFields []string `json:"missingFields,omitempty"`
}

// Contact handles /api/contact.
func (h *Handler) Contact(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
	case http.MethodOptions:
		w.Header().Set("Allow", allowedMethods)
		w.WriteHeader(http.StatusNoContent)
		return
	default:
		w.Header().Set("Allow", allowedMethods)
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed.", nil)
		return
	}

	var sub leads.Submission
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxContactBody)).Decode(&sub); err != nil {
		h.logger.Warn("invalid contact request body", "error", err)
		h.writeError(w, http.StatusBadRequest, "We couldn't read your request.", nil)
		return
	}

	result, err := h.service.Submit(r.Context(), sub)
	if err != nil {
		var ve *ValidationError
		switch {
		case errors.As(err, &ve):
			h.writeError(w, http.StatusBadRequest, "Please fill in all required fields (name, phone, email, description).", ve.Missing)
		case errors.Is(err, ErrStoreUnavailable):
			h.writeError(w, http.StatusInternalServerError, "Failed to save your request.", nil)
		default:
			h.logger.Error("contact submission failed", "error", err)
			h.writeError(w, http.StatusInternalServerError, "Something went wrong.", nil)
		}
		return
	}

	writeJSON(w, http.StatusOK, ContactResponse{
		Success:               true,
		Message:               fmt.Sprintf("Quote request received! %s will contact you soon.", h.service.Profile().DisplayOwner()),
		LeadID:                result.LeadID,
		EmailSent:             result.EmailSent,
		ConfirmationEmailSent: result.ConfirmationEmailSent,
	})
}

// writeError appends the call-us fallback so every failure gives the
// customer a way to reach the business.
func (h *Handler) writeError(w http.ResponseWriter, status int, msg string, missing []string) {
	writeJSON(w, status, errorResponse{
		Success:       false,
		Error:         msg + " " + h.service.Profile().CallUsMessage(),
		MissingFields: missing,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
