package audit

import (
	"context"

	"github.com/blackicons2020/skillskonnect-sub001/pkg/log"
)

// Audit actions.
const (
	ActionRegister       = "user.register"
	ActionLogin          = "user.login"
	ActionLoginFailed    = "user.login_failed"
	ActionLogout         = "user.logout"
	ActionRefreshToken   = "user.refresh_token"
	ActionUpdateProfile  = "user.update_profile"
	ActionChangePassword = "user.change_password"
	ActionUploadAvatar   = "user.upload_avatar"
	ActionDeleteAccount  = "user.delete_account"

	ActionUpdateCleanerProfile = "cleaner.update_profile"

	ActionCreateBooking = "booking.create"
	ActionUpdateBooking = "booking.update"
	ActionBookingStatus = "booking.status"
	ActionExpireBooking = "booking.expire"

	ActionCreateReview = "review.create"
	ActionDeleteReview = "review.delete"

	ActionCreateSubscription = "subscription.create"
	ActionSubscriptionStatus = "subscription.status"
	ActionRenewSubscription  = "subscription.renew"
	ActionExpireSubscription = "subscription.expire"

	ActionCreateTicket = "support.create_ticket"
	ActionUpdateTicket = "support.update_ticket"

	ActionAdminUpdateUser = "admin.update_user"
	ActionAdminDeleteUser = "admin.delete_user"
	ActionAdminCreate     = "admin.create_admin"
)

// Field constants for audit entries.
const (
	FieldAction   = "action"
	FieldTargetID = "target_id"
	FieldDetail   = "detail"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action string, userID string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Msg(msg)
}

// LogTarget emits an audit entry for an action userID performed on targetID.
func LogTarget(ctx context.Context, action, userID, targetID, detail, msg string) {
	l := log.Ctx(ctx)
	e := l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Str(FieldTargetID, targetID)
	if detail != "" {
		e = e.Str(FieldDetail, detail)
	}
	e.Msg(msg)
}
