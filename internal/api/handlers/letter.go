package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/appealdesk/appealdesk/internal/api/dto"
	"github.com/appealdesk/appealdesk/internal/api/middleware"
	"github.com/appealdesk/appealdesk/internal/domain/appeal"
	"github.com/appealdesk/appealdesk/internal/pkg/errors"
	"github.com/appealdesk/appealdesk/internal/pkg/logger"
)

// LetterHandler serves the flat /api/generate-letter endpoint the original
// frontend calls. Its request and response bodies are fixed; the richer
// envelope lives under /api/v1.
type LetterHandler struct {
	service appeal.Service
	logger  *logger.Logger
}

// NewLetterHandler creates a new legacy letter handler
func NewLetterHandler(service appeal.Service, log *logger.Logger) *LetterHandler {
	return &LetterHandler{
		service: service,
		logger:  log,
	}
}

// GenerateLetter generates and saves a letter for an appeal
// @Summary Generate an appeal letter (legacy shape)
// @Tags Letters
// @Accept json
// @Produce json
// @Param request body dto.LegacyGenerateLetterRequest true "Appeal reference"
// @Success 200 {object} map[string]interface{} "Letter saved"
// @Failure 400 {object} map[string]string "Missing required fields"
// @Failure 402 {object} map[string]string "Quota exceeded"
// @Failure 403 {object} map[string]string "Unauthorized access to appeal"
// @Security BearerAuth
// @Router /generate-letter [post]
func (h *LetterHandler) GenerateLetter(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		writeFlat(w, http.StatusUnauthorized, map[string]string{"error": "Missing authentication token"})
		return
	}

	var req dto.LegacyGenerateLetterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFlat(w, http.StatusBadRequest, map[string]string{"error": "Missing required fields"})
		return
	}

	if strings.TrimSpace(req.AppealID) == "" ||
		strings.TrimSpace(req.Payer) == "" ||
		strings.TrimSpace(req.DenialCode) == "" {
		writeFlat(w, http.StatusBadRequest, map[string]string{"error": "Missing required fields"})
		return
	}

	a, err := h.service.GenerateLetter(r.Context(), userID, req.AppealID)
	if err != nil {
		h.writeLegacyError(w, err)
		return
	}

	writeFlat(w, http.StatusOK, map[string]interface{}{
		"message": "Letter saved",
		"letter":  a.LetterText,
	})
}

func (h *LetterHandler) writeLegacyError(w http.ResponseWriter, err error) {
	appErr, ok := errors.As(err)
	if !ok {
		h.logger.ErrorWithErr(err, "Letter generation failed")
		writeFlat(w, http.StatusInternalServerError, map[string]string{"error": "Failed to generate letter"})
		return
	}

	switch appErr.Code {
	case errors.ErrCodeForbidden, errors.ErrCodeNotFound:
		writeFlat(w, http.StatusForbidden, map[string]string{"error": "Unauthorized access to appeal"})
	case errors.ErrCodeQuotaExceeded:
		writeFlat(w, appErr.StatusCode, map[string]string{"error": appErr.Message})
	default:
		h.logger.ErrorWithErr(err, "Letter generation failed")
		writeFlat(w, http.StatusInternalServerError, map[string]string{"error": "Failed to generate letter"})
	}
}

func writeFlat(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
