package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/appealdesk/appealdesk/internal/api/dto"
	"github.com/appealdesk/appealdesk/internal/api/middleware"
	"github.com/appealdesk/appealdesk/internal/auth"
	"github.com/appealdesk/appealdesk/internal/config"
	"github.com/appealdesk/appealdesk/internal/domain/profile"
	"github.com/appealdesk/appealdesk/internal/pkg/errors"
	"github.com/appealdesk/appealdesk/internal/pkg/logger"
	"github.com/appealdesk/appealdesk/internal/pkg/utils"
	"github.com/appealdesk/appealdesk/internal/pkg/validator"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	profiles  profile.Service
	config    *config.Config
	logger    *logger.Logger
	validator *validator.Validator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(profiles profile.Service, cfg *config.Config, log *logger.Logger, val *validator.Validator) *AuthHandler {
	return &AuthHandler{
		profiles:  profiles,
		config:    cfg,
		logger:    log,
		validator: val,
	}
}

// Register handles user registration
// @Summary Register a clinic account
// @Description Create a profile on the starter plan with a trial window
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration details"
// @Success 201 {object} dto.AuthResponse "Profile created"
// @Failure 400 {object} utils.ErrorResponse "Invalid request"
// @Failure 409 {object} utils.ErrorResponse "Email already registered"
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	if validationErrs := h.validator.Validate(req); len(validationErrs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", validationErrs))
		return
	}

	p, err := h.profiles.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.respondWithTokens(w, http.StatusCreated, p)
}

// Login handles user login
// @Summary Log in
// @Description Authenticate with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.AuthResponse "Authenticated"
// @Failure 401 {object} utils.ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	if validationErrs := h.validator.Validate(req); len(validationErrs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", validationErrs))
		return
	}

	p, err := h.profiles.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.WithFields(map[string]interface{}{
			"email": req.Email,
		}).Warn("Authentication failed")
		writeServiceError(w, err)
		return
	}

	h.logger.WithFields(map[string]interface{}{
		"user_id": p.ID,
		"email":   p.Email,
	}).Info("User logged in")

	h.respondWithTokens(w, http.StatusOK, p)
}

// RefreshToken mints a new token pair from a valid refresh token
// @Summary Refresh tokens
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.AuthResponse "New tokens"
// @Failure 401 {object} utils.ErrorResponse "Invalid refresh token"
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	tokenStr := req.RefreshToken
	if tokenStr == "" {
		if cookie, err := r.Cookie("refreshToken"); err == nil {
			tokenStr = cookie.Value
		}
	}
	if tokenStr == "" {
		utils.WriteError(w, errors.Unauthorized("Missing refresh token"))
		return
	}

	claims, err := auth.ParseClaims(tokenStr, h.config.Auth.JWTSecret)
	if err != nil {
		utils.WriteError(w, errors.Unauthorized("Invalid or expired refresh token"))
		return
	}

	p, err := h.profiles.GetByID(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.respondWithTokens(w, http.StatusOK, p)
}

// Logout clears the auth cookies
// @Summary Log out
// @Tags Auth
// @Success 200 {object} utils.SuccessResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.setCookie(w, "accessToken", "", -1)
	h.setCookie(w, "refreshToken", "", -1)
	utils.WriteSuccessWithMessage(w, http.StatusOK, "Logged out successfully", nil)
}

// Me returns the current user's profile
// @Summary Get current profile
// @Tags Auth
// @Produce json
// @Success 200 {object} dto.ProfileDTO "Profile"
// @Failure 401 {object} utils.ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	p, err := h.profiles.GetByID(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.NewProfileDTO(p))
}

func (h *AuthHandler) respondWithTokens(w http.ResponseWriter, status int, p *profile.Profile) {
	tokens, err := auth.MintTokens(
		p.ID,
		p.Email,
		p.Role,
		h.config.Auth.JWTSecret,
		h.config.Auth.AccessTokenExpiry,
		h.config.Auth.RefreshTokenExpiry,
	)
	if err != nil {
		h.logger.ErrorWithErr(err, "Failed to generate tokens")
		utils.WriteError(w, errors.Internal("Failed to generate tokens", err))
		return
	}

	h.setCookie(w, "accessToken", tokens.AccessToken, int(h.config.Auth.AccessTokenExpiry.Seconds()))
	h.setCookie(w, "refreshToken", tokens.RefreshToken, int(h.config.Auth.RefreshTokenExpiry.Seconds()))

	utils.WriteSuccess(w, status, dto.AuthResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		User:         dto.NewProfileDTO(p),
	})
}

func (h *AuthHandler) setCookie(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		HttpOnly: true,
		Secure:   h.config.Server.Environment == "production",
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   maxAge,
	})
}
