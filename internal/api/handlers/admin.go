package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/appealdesk/appealdesk/internal/api/dto"
	"github.com/appealdesk/appealdesk/internal/domain/profile"
	"github.com/appealdesk/appealdesk/internal/pkg/errors"
	"github.com/appealdesk/appealdesk/internal/pkg/logger"
	"github.com/appealdesk/appealdesk/internal/pkg/utils"
	"github.com/appealdesk/appealdesk/internal/pkg/validator"
)

// AdminHandler handles the admin panel's profile management
type AdminHandler struct {
	profiles  profile.Service
	logger    *logger.Logger
	validator *validator.Validator
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(profiles profile.Service, log *logger.Logger, val *validator.Validator) *AdminHandler {
	return &AdminHandler{
		profiles:  profiles,
		logger:    log,
		validator: val,
	}
}

// ListProfiles lists profiles for the admin panel
// @Summary List profiles
// @Tags Admin
// @Produce json
// @Param search query string false "Match email or name"
// @Param plan query string false "Filter by plan"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} utils.PaginatedResponse "Profiles"
// @Security BearerAuth
// @Router /admin/profiles [get]
func (h *AdminHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	pagination := utils.ParsePagination(r)
	filter := profile.Filter{
		Search: r.URL.Query().Get("search"),
		Plan:   r.URL.Query().Get("plan"),
	}

	profiles, total, err := h.profiles.List(r.Context(), filter, pagination.PageSize, pagination.Offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	dtos := make([]*dto.ProfileDTO, 0, len(profiles))
	for _, p := range profiles {
		dtos = append(dtos, dto.NewProfileDTO(p))
	}

	response := utils.NewPaginatedResponse(dtos, pagination.Page, pagination.PageSize, total)
	utils.WriteSuccess(w, http.StatusOK, response)
}

// UpdateProfile applies a plan or quota change to a profile
// @Summary Update a profile's subscription
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path int true "Profile ID"
// @Param request body dto.UpdateSubscriptionRequest true "Subscription patch"
// @Success 200 {object} dto.ProfileDTO "Updated profile"
// @Failure 400 {object} utils.ErrorResponse "Invalid request"
// @Failure 404 {object} utils.ErrorResponse "Profile not found"
// @Security BearerAuth
// @Router /admin/profiles/{id} [patch]
func (h *AdminHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid profile ID"))
		return
	}

	var req dto.UpdateSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	if validationErrs := h.validator.Validate(req); len(validationErrs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", validationErrs))
		return
	}

	patch := profile.QuotaPatch{
		Plan:         req.Plan,
		AppealQuota:  req.AppealQuota,
		SetUnlimited: req.Unlimited,
	}

	p, err := h.profiles.UpdateSubscription(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.logger.WithFields(map[string]interface{}{
		"profile_id": id,
		"plan":       p.Plan,
	}).Info("Admin updated subscription")

	utils.WriteSuccess(w, http.StatusOK, dto.NewProfileDTO(p))
}
