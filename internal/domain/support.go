package domain

import "time"

// TicketCategory groups support tickets.
type TicketCategory string

const (
	TicketBooking   TicketCategory = "booking"
	TicketPayment   TicketCategory = "payment"
	TicketAccount   TicketCategory = "account"
	TicketTechnical TicketCategory = "technical"
	TicketOther     TicketCategory = "other"
)

// TicketPriority of a support ticket.
type TicketPriority string

const (
	PriorityLow    TicketPriority = "low"
	PriorityMedium TicketPriority = "medium"
	PriorityHigh   TicketPriority = "high"
	PriorityUrgent TicketPriority = "urgent"
)

// TicketStatus of a support ticket.
type TicketStatus string

const (
	TicketOpen       TicketStatus = "open"
	TicketInProgress TicketStatus = "in_progress"
	TicketResolved   TicketStatus = "resolved"
	TicketClosed     TicketStatus = "closed"
)

// TicketReferencePrefix starts every human-readable ticket reference.
const TicketReferencePrefix = "SK-"

// SupportTicket is a user's request for help.
type SupportTicket struct {
	ID            string         `json:"id"`
	Reference     string         `json:"reference"`
	UserID        string         `json:"userId"`
	Subject       string         `json:"subject"`
	Message       string         `json:"message"`
	Category      TicketCategory `json:"category"`
	Priority      TicketPriority `json:"priority"`
	Status        TicketStatus   `json:"status"`
	AdminResponse string         `json:"adminResponse,omitempty"`
	AssignedTo    *string        `json:"assignedTo,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	ResolvedAt    *time.Time     `json:"resolvedAt,omitempty"`
}

// CreateTicketRequest represents a new support ticket.
type CreateTicketRequest struct {
	Subject  string         `json:"subject" binding:"required,min=3,max=200"`
	Message  string         `json:"message" binding:"required,min=1,max=5000"`
	Category TicketCategory `json:"category" binding:"required,oneof=booking payment account technical other"`
	Priority TicketPriority `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
}

// UpdateTicketRequest is an admin's partial update of a ticket.
type UpdateTicketRequest struct {
	Status        *TicketStatus `json:"status" binding:"omitempty,oneof=open in_progress resolved closed"`
	AdminResponse *string       `json:"adminResponse" binding:"omitempty,max=5000"`
	AssignedTo    *string       `json:"assignedTo"`
}

// TicketFilter narrows the admin ticket queue.
type TicketFilter struct {
	Status   TicketStatus   `form:"status"`
	Priority TicketPriority `form:"priority"`
	UserID   string         `form:"-"`
	Pagination
}
