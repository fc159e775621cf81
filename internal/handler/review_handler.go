package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/blackicons2020/skillskonnect-sub001/internal/domain"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/response"
)

func (h *Handler) CreateReview(c *gin.Context) {
	var req domain.CreateReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	review, err := h.svc.Reviews.Create(c.Request.Context(), actor(c), &req)
	if err != nil {
		handleError(c, err, "failed to create review")
		return
	}

	response.Created(c, review)
}

func (h *Handler) GetReview(c *gin.Context) {
	review, err := h.svc.Reviews.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err, "failed to get review")
		return
	}

	response.Success(c, review)
}

func (h *Handler) AdminDeleteReview(c *gin.Context) {
	if err := h.svc.Reviews.Delete(c.Request.Context(), actor(c), c.Param("id")); err != nil {
		handleError(c, err, "failed to delete review")
		return
	}

	response.Success(c, gin.H{"message": "review deleted"})
}
