package handlers

import (
	"net/http"

	"game_store_backend/internal/middleware"
	"game_store_backend/internal/services"
	"game_store_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service.
type AuthHandler struct {
	authService services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(as services.AuthService) *AuthHandler {
	return &AuthHandler{authService: as}
}

func currentUser(c *gin.Context) (int64, bool) {
	id, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User not authenticated.", "Missing user ID in context"))
	}
	return id, ok
}

// Login godoc
// @Summary  Staff login
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body services.LoginRequest true "Credentials"
// @Success  200 {object} services.AuthResponse
// @Failure  401 {object} utils.APIError
// @Router   /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if !bindJSON(c, &req, "Login") {
		return
	}
	resp, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "Login: authService.Login failed", "Failed to login.")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Refresh exchanges a refresh token for a new token pair.
// @Summary  Refresh tokens
// @Tags     auth
// @Param    body body services.RefreshRequest true "Refresh token"
// @Success  200 {object} services.AuthResponse
// @Router   /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req services.RefreshRequest
	if !bindJSON(c, &req, "Refresh") {
		return
	}
	resp, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondServiceError(c, err, "Refresh: authService.Refresh failed", "Failed to refresh token.")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Logout is a client-side action for stateless JWT; the server only acknowledges.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully. Please discard your token."})
}

// Me returns the profile of the authenticated user.
// @Summary  Current user
// @Tags     auth
// @Security BearerAuth
// @Success  200 {object} models.User
// @Router   /api/v1/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	user, err := h.authService.Me(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "Me: authService.Me failed", "Failed to retrieve user profile.")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req services.ChangePasswordRequest
	if !bindJSON(c, &req, "ChangePassword") {
		return
	}
	if err := h.authService.ChangePassword(c.Request.Context(), userID, req); err != nil {
		respondServiceError(c, err, "ChangePassword: authService.ChangePassword failed", "Failed to change password.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated."})
}

// RequestPasswordReset answers the same way for known and unknown emails.
// @Summary  Request a password reset email
// @Tags     auth
// @Param    body body services.PasswordResetRequest true "Email"
// @Success  200 {object} map[string]string
// @Failure  504 {object} utils.APIError
// @Router   /api/v1/auth/password-reset [post]
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req services.PasswordResetRequest
	if !bindJSON(c, &req, "RequestPasswordReset") {
		return
	}
	if err := h.authService.RequestPasswordReset(c.Request.Context(), req); err != nil {
		respondServiceError(c, err, "RequestPasswordReset: authService.RequestPasswordReset failed", "Failed to send the reset email.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "If the address is registered, a reset link has been sent."})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req services.ResetPasswordRequest
	if !bindJSON(c, &req, "ResetPassword") {
		return
	}
	if err := h.authService.ResetPassword(c.Request.Context(), req); err != nil {
		respondServiceError(c, err, "ResetPassword: authService.ResetPassword failed", "Failed to reset password.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset."})
}

func (h *AuthHandler) UpdateOnboarding(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req services.OnboardingRequest
	if !bindJSON(c, &req, "UpdateOnboarding") {
		return
	}
	user, err := h.authService.UpdateOnboarding(c.Request.Context(), userID, req)
	if err != nil {
		respondServiceError(c, err, "UpdateOnboarding: authService.UpdateOnboarding failed", "Failed to update onboarding state.")
		return
	}
	c.JSON(http.StatusOK, user)
}
