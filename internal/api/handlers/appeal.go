package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/appealdesk/appealdesk/internal/api/dto"
	"github.com/appealdesk/appealdesk/internal/api/middleware"
	"github.com/appealdesk/appealdesk/internal/domain/appeal"
	"github.com/appealdesk/appealdesk/internal/pkg/errors"
	"github.com/appealdesk/appealdesk/internal/pkg/logger"
	"github.com/appealdesk/appealdesk/internal/pkg/utils"
	"github.com/appealdesk/appealdesk/internal/pkg/validator"
)

// AppealHandler handles appeal-related requests
type AppealHandler struct {
	service   appeal.Service
	logger    *logger.Logger
	validator *validator.Validator
}

// NewAppealHandler creates a new appeal handler
func NewAppealHandler(service appeal.Service, log *logger.Logger, val *validator.Validator) *AppealHandler {
	return &AppealHandler{
		service:   service,
		logger:    log,
		validator: val,
	}
}

// Create submits a new appeal
// @Summary Create an appeal
// @Description Record an insurance denial for appeal
// @Tags Appeals
// @Accept json
// @Produce json
// @Param request body dto.CreateAppealRequest true "Appeal details"
// @Success 201 {object} dto.AppealDTO "Appeal created"
// @Failure 400 {object} utils.ErrorResponse "Invalid request"
// @Failure 402 {object} utils.ErrorResponse "Quota exceeded"
// @Security BearerAuth
// @Router /appeals [post]
func (h *AppealHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	var req dto.CreateAppealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	if validationErrs := h.validator.Validate(req); len(validationErrs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", validationErrs))
		return
	}

	a, err := h.service.Create(r.Context(), userID, appeal.CreateInput{
		Payer:      req.Payer,
		DenialCode: req.DenialCode,
		LetterText: req.LetterText,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusCreated, dto.NewAppealDTO(a))
}

// List returns the caller's appeals, newest first
// @Summary List appeals
// @Tags Appeals
// @Produce json
// @Param status query string false "Filter by status (draft or generated)"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} utils.PaginatedResponse "Appeals"
// @Security BearerAuth
// @Router /appeals [get]
func (h *AppealHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	pagination := utils.ParsePagination(r)
	filter := appeal.Filter{Status: r.URL.Query().Get("status")}

	appeals, total, err := h.service.List(r.Context(), userID, filter, pagination.PageSize, pagination.Offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response := utils.NewPaginatedResponse(dto.NewAppealDTOs(appeals), pagination.Page, pagination.PageSize, total)
	utils.WriteSuccess(w, http.StatusOK, response)
}

// Get returns one of the caller's appeals
// @Summary Get an appeal
// @Tags Appeals
// @Produce json
// @Param id path string true "Appeal ID"
// @Success 200 {object} dto.AppealDTO "Appeal"
// @Failure 404 {object} utils.ErrorResponse "Not found"
// @Security BearerAuth
// @Router /appeals/{id} [get]
func (h *AppealHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	id := chi.URLParam(r, "id")
	a, err := h.service.GetByID(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.NewAppealDTO(a))
}

// GenerateLetter runs the letter pipeline for an appeal
// @Summary Generate an appeal letter
// @Description Generate and persist the appeal letter, consuming quota
// @Tags Appeals
// @Produce json
// @Param id path string true "Appeal ID"
// @Success 200 {object} dto.AppealDTO "Appeal with letter"
// @Failure 402 {object} utils.ErrorResponse "Quota exceeded"
// @Failure 403 {object} utils.ErrorResponse "Unauthorized access to appeal"
// @Security BearerAuth
// @Router /appeals/{id}/letter [post]
func (h *AppealHandler) GenerateLetter(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	id := chi.URLParam(r, "id")
	a, err := h.service.GenerateLetter(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteSuccessWithMessage(w, http.StatusOK, "Letter saved", dto.NewAppealDTO(a))
}

// Quota reports the caller's quota consumption
// @Summary Get quota status
// @Tags Appeals
// @Produce json
// @Success 200 {object} appeal.QuotaStatus "Quota status"
// @Security BearerAuth
// @Router /quota [get]
func (h *AppealHandler) Quota(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	status, err := h.service.Quota(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, status)
}
