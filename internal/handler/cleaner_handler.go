package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/blackicons2020/skillskonnect-sub001/internal/domain"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/middleware"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/response"
)

// ListCleaners searches the cleaner directory.
func (h *Handler) ListCleaners(c *gin.Context) {
	var filter domain.CleanerFilter
	if !bindQuery(c, &filter) {
		return
	}

	cleaners, total, err := h.svc.Cleaners.List(c.Request.Context(), filter)
	if err != nil {
		handleError(c, err, "failed to list cleaners")
		return
	}

	page(c, cleaners, total, filter.Pagination)
}

func (h *Handler) GetCleaner(c *gin.Context) {
	cleaner, err := h.svc.Cleaners.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err, "failed to get cleaner")
		return
	}

	response.Success(c, cleaner)
}

func (h *Handler) UpdateCleanerProfile(c *gin.Context) {
	var req domain.UpdateCleanerProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	cleaner, err := h.svc.Cleaners.UpdateProfile(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		handleError(c, err, "failed to update cleaner profile")
		return
	}

	response.Success(c, cleaner)
}

func (h *Handler) ListCleanerReviews(c *gin.Context) {
	var p domain.Pagination
	if !bindQuery(c, &p) {
		return
	}

	reviews, total, err := h.svc.Cleaners.ListReviews(c.Request.Context(), c.Param("id"), p)
	if err != nil {
		handleError(c, err, "failed to list reviews")
		return
	}

	page(c, reviews, total, p)
}
