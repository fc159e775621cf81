package domain

// Stats is the admin dashboard summary.
type Stats struct {
	UsersByRole         map[Role]int64          `json:"usersByRole"`
	TotalUsers          int64                   `json:"totalUsers"`
	BookingsByStatus    map[BookingStatus]int64 `json:"bookingsByStatus"`
	TotalBookings       int64                   `json:"totalBookings"`
	CompletedRevenue    float64                 `json:"completedRevenue"`
	OpenTickets         int64                   `json:"openTickets"`
	ActiveSubscriptions int64                   `json:"activeSubscriptions"`
}

// AdminUserFilter narrows the admin user listing.
type AdminUserFilter struct {
	Role   Role       `form:"role"`
	Status UserStatus `form:"status"`
	Query  string     `form:"q"`
	Pagination
}

// AdminUpdateUserRequest is an admin's partial update of an account.
type AdminUpdateUserRequest struct {
	Status     *UserStatus `json:"status" binding:"omitempty,oneof=active suspended"`
	IsVerified *bool       `json:"isVerified"`
}

// CreateAdminRequest creates a new admin account.
type CreateAdminRequest struct {
	Name      string    `json:"name" binding:"required,min=2,max=100"`
	Email     string    `json:"email" binding:"required,email"`
	Password  string    `json:"password" binding:"required,min=8"`
	AdminRole AdminRole `json:"adminRole" binding:"required,oneof=super_admin support moderator"`
}
