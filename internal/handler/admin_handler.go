package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/blackicons2020/skillskonnect-sub001/internal/domain"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/response"
)

func (h *Handler) AdminStats(c *gin.Context) {
	stats, err := h.svc.Admin.Stats(c.Request.Context())
	if err != nil {
		handleError(c, err, "failed to load stats")
		return
	}

	response.Success(c, stats)
}

func (h *Handler) AdminListUsers(c *gin.Context) {
	var filter domain.AdminUserFilter
	if !bindQuery(c, &filter) {
		return
	}

	users, total, err := h.svc.Admin.ListUsers(c.Request.Context(), filter)
	if err != nil {
		handleError(c, err, "failed to list users")
		return
	}

	page(c, users, total, filter.Pagination)
}

// AdminUpdateUser changes a user's status or verification.
func (h *Handler) AdminUpdateUser(c *gin.Context) {
	var req domain.AdminUpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.svc.Admin.UpdateUser(c.Request.Context(), actor(c), c.Param("id"), &req)
	if err != nil {
		handleError(c, err, "failed to update user")
		return
	}

	response.Success(c, user)
}

func (h *Handler) AdminDeleteUser(c *gin.Context) {
	if err := h.svc.Admin.DeleteUser(c.Request.Context(), actor(c), c.Param("id")); err != nil {
		handleError(c, err, "failed to delete user")
		return
	}

	response.Success(c, gin.H{"message": "user deleted"})
}

func (h *Handler) AdminListBookings(c *gin.Context) {
	var filter domain.BookingFilter
	if !bindQuery(c, &filter) {
		return
	}

	bookings, total, err := h.svc.Admin.ListBookings(c.Request.Context(), filter)
	if err != nil {
		handleError(c, err, "failed to list bookings")
		return
	}

	page(c, bookings, total, filter.Pagination)
}

func (h *Handler) AdminCreateAdmin(c *gin.Context) {
	var req domain.CreateAdminRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.svc.Admin.CreateAdmin(c.Request.Context(), actor(c), &req)
	if err != nil {
		handleError(c, err, "failed to create admin")
		return
	}

	response.Created(c, user)
}
