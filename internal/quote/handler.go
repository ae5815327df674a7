package quote

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/fixitsanclemente/quote-intake/pkg/logging"
)

const (
	maxAnalyzeBody = 16 << 10

	msgEmptyDescription = "Please describe your project first."
	msgInvalidBody      = "We couldn't read that request. Please try again."
)

// Handler serves the quote helper endpoint.
type Handler struct {
	analyzer *Analyzer
	logger   *logging.Logger
}

func NewHandler(analyzer *Analyzer, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if analyzer == nil {
		analyzer = NewAnalyzer(nil, logger)
	}
	return &Handler{analyzer: analyzer, logger: logger}
}

type analyzeRequest struct {
	Description string `json:"description"`
}

type analyzeResponse struct {
	Success  bool      `json:"success"`
	Analysis *Analysis `json:"analysis,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// Analyze handles POST /api/quote/analyze.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST, OPTIONS")
		writeJSON(w, http.StatusMethodNotAllowed, analyzeResponse{Error: "Method not allowed"})
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAnalyzeBody)).Decode(&req); err != nil {
		h.logger.Warn("invalid analyze request", "error", err)
		writeJSON(w, http.StatusBadRequest, analyzeResponse{Error: msgInvalidBody})
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		writeJSON(w, http.StatusBadRequest, analyzeResponse{Error: msgEmptyDescription})
		return
	}

	result := h.analyzer.Analyze(r.Context(), req.Description)
	writeJSON(w, http.StatusOK, analyzeResponse{Success: true, Analysis: &result})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
