package service

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountSuspended   = errors.New("account is suspended")
	ErrInvalidRole        = errors.New("role must be client or cleaner")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrForbidden          = errors.New("forbidden")
	ErrCleanerNotFound    = errors.New("cleaner not found")

	ErrInvalidStatus       = errors.New("invalid status")
	ErrInvalidTransition   = errors.New("status change not allowed")
	ErrBookingNotEditable  = errors.New("only pending bookings can be edited")
	ErrBookingNotCompleted = errors.New("only completed bookings can be reviewed")

	ErrInvalidPlan = errors.New("unknown plan or frequency")

	ErrInvalidAssignee = errors.New("assignee must be an admin")

	ErrInvalidParticipants = errors.New("chats are between one client and one cleaner")
	ErrInvalidMessage      = errors.New("message must be 1 to 2000 characters")

	ErrUnsupportedMedia = errors.New("file must be a JPEG, PNG, GIF or WebP image")
	ErrFileTooLarge     = errors.New("file is too large")

	ErrCannotModifySelf = errors.New("admins cannot suspend or delete their own account")
)
