package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/blackicons2020/skillskonnect-sub001/internal/domain"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/response"
)

func (h *Handler) CreateSubscription(c *gin.Context) {
	var req domain.CreateSubscriptionRequest
	if !bindJSON(c, &req) {
		return
	}

	sub, err := h.svc.Subscriptions.Create(c.Request.Context(), actor(c), &req)
	if err != nil {
		handleError(c, err, "failed to create subscription")
		return
	}

	response.Created(c, sub)
}

func (h *Handler) ListSubscriptions(c *gin.Context) {
	subs, err := h.svc.Subscriptions.List(c.Request.Context(), actor(c))
	if err != nil {
		handleError(c, err, "failed to list subscriptions")
		return
	}

	response.Success(c, subs)
}

func (h *Handler) GetSubscription(c *gin.Context) {
	sub, err := h.svc.Subscriptions.Get(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		handleError(c, err, "failed to get subscription")
		return
	}

	response.Success(c, sub)
}

// UpdateSubscription pauses, resumes or cancels a subscription.
func (h *Handler) UpdateSubscription(c *gin.Context) {
	var req domain.UpdateSubscriptionRequest
	if !bindJSON(c, &req) {
		return
	}

	sub, err := h.svc.Subscriptions.Update(c.Request.Context(), actor(c), c.Param("id"), &req)
	if err != nil {
		handleError(c, err, "failed to update subscription")
		return
	}

	response.Success(c, sub)
}
