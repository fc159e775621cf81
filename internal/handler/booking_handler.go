package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/blackicons2020/skillskonnect-sub001/internal/domain"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/response"
)

// CreateBooking books a cleaner for the calling client.
func (h *Handler) CreateBooking(c *gin.Context) {
	var req domain.CreateBookingRequest
	if !bindJSON(c, &req) {
		return
	}

	booking, err := h.svc.Bookings.Create(c.Request.Context(), actor(c), &req)
	if err != nil {
		handleError(c, err, "failed to create booking")
		return
	}

	response.Created(c, booking)
}

func (h *Handler) ListBookings(c *gin.Context) {
	var filter domain.BookingFilter
	if !bindQuery(c, &filter) {
		return
	}

	bookings, total, err := h.svc.Bookings.List(c.Request.Context(), actor(c), filter)
	if err != nil {
		handleError(c, err, "failed to list bookings")
		return
	}

	page(c, bookings, total, filter.Pagination)
}

func (h *Handler) GetBooking(c *gin.Context) {
	booking, err := h.svc.Bookings.Get(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		handleError(c, err, "failed to get booking")
		return
	}

	response.Success(c, booking)
}

// UpdateBooking edits a pending booking.
func (h *Handler) UpdateBooking(c *gin.Context) {
	var req domain.UpdateBookingRequest
	if !bindJSON(c, &req) {
		return
	}

	booking, err := h.svc.Bookings.Update(c.Request.Context(), actor(c), c.Param("id"), &req)
	if err != nil {
		handleError(c, err, "failed to update booking")
		return
	}

	response.Success(c, booking)
}

func (h *Handler) UpdateBookingStatus(c *gin.Context) {
	var req domain.UpdateBookingStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	booking, err := h.svc.Bookings.UpdateStatus(c.Request.Context(), actor(c), c.Param("id"), &req)
	if err != nil {
		handleError(c, err, "failed to update booking status")
		return
	}

	response.Success(c, booking)
}
