package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/blackicons2020/skillskonnect-sub001/internal/domain"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/middleware"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/response"
)

// Register handles account registration.
func (h *Handler) Register(c *gin.Context) {
	var req domain.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.svc.Users.Register(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err, "failed to register user")
		return
	}

	response.Created(c, result)
}

// Login handles user login.
func (h *Handler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.svc.Users.Login(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err, "failed to login")
		return
	}

	response.Success(c, result)
}

// RefreshToken exchanges a refresh token for a new pair.
func (h *Handler) RefreshToken(c *gin.Context) {
	var req domain.RefreshTokenRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.svc.Users.RefreshToken(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err, "failed to refresh token")
		return
	}

	response.Success(c, result)
}

// Logout revokes the caller's tokens.
func (h *Handler) Logout(c *gin.Context) {
	if err := h.svc.Users.Logout(c.Request.Context(), middleware.GetUserID(c)); err != nil {
		handleError(c, err, "failed to logout")
		return
	}

	response.Success(c, gin.H{"message": "logged out successfully"})
}

// GetMe returns the current user.
func (h *Handler) GetMe(c *gin.Context) {
	user, err := h.svc.Users.GetMe(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		handleError(c, err, "failed to get user")
		return
	}

	response.Success(c, user)
}
