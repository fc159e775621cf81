package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/blackicons2020/skillskonnect-sub001/internal/domain"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/response"
)

func (h *Handler) CreateTicket(c *gin.Context) {
	var req domain.CreateTicketRequest
	if !bindJSON(c, &req) {
		return
	}

	ticket, err := h.svc.Support.Create(c.Request.Context(), actor(c), &req)
	if err != nil {
		handleError(c, err, "failed to create ticket")
		return
	}

	response.Created(c, ticket)
}

func (h *Handler) ListMyTickets(c *gin.Context) {
	var p domain.Pagination
	if !bindQuery(c, &p) {
		return
	}

	tickets, total, err := h.svc.Support.ListMine(c.Request.Context(), actor(c), p)
	if err != nil {
		handleError(c, err, "failed to list tickets")
		return
	}

	page(c, tickets, total, p)
}

func (h *Handler) GetTicket(c *gin.Context) {
	ticket, err := h.svc.Support.Get(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		handleError(c, err, "failed to get ticket")
		return
	}

	response.Success(c, ticket)
}

// AdminListTickets returns the support queue.
func (h *Handler) AdminListTickets(c *gin.Context) {
	var filter domain.TicketFilter
	if !bindQuery(c, &filter) {
		return
	}

	tickets, total, err := h.svc.Support.AdminList(c.Request.Context(), filter)
	if err != nil {
		handleError(c, err, "failed to list tickets")
		return
	}

	page(c, tickets, total, filter.Pagination)
}

func (h *Handler) AdminUpdateTicket(c *gin.Context) {
	var req domain.UpdateTicketRequest
	if !bindJSON(c, &req) {
		return
	}

	ticket, err := h.svc.Support.AdminUpdate(c.Request.Context(), actor(c), c.Param("id"), &req)
	if err != nil {
		handleError(c, err, "failed to update ticket")
		return
	}

	response.Success(c, ticket)
}
