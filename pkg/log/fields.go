package log

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldRoute     = "route"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Actor (matches pkg/middleware/auth.go keys)
	FieldUserID    = "user_id"
	FieldRole      = "role"
	FieldAdminRole = "admin_role"

	// Marketplace entities
	FieldBookingID      = "booking_id"
	FieldChatID         = "chat_id"
	FieldReviewID       = "review_id"
	FieldTicketID       = "ticket_id"
	FieldSubscriptionID = "subscription_id"

	// Service
	FieldService = "service"
	FieldJob     = "job"

	// Log type (for audit log)
	FieldLogType = "log_type"
	LogTypeAudit = "audit"
)
