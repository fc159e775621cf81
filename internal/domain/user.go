package domain

import (
	"time"
)

// Role is the marketplace side a user belongs to.
type Role string

const (
	RoleClient  Role = "client"
	RoleCleaner Role = "cleaner"
	RoleAdmin   Role = "admin"
)

// AdminRole narrows what an admin may do.
type AdminRole string

const (
	AdminRoleSuper     AdminRole = "super_admin"
	AdminRoleSupport   AdminRole = "support"
	AdminRoleModerator AdminRole = "moderator"
)

// Valid reports whether r is a known admin role.
func (r AdminRole) Valid() bool {
	switch r {
	case AdminRoleSuper, AdminRoleSupport, AdminRoleModerator:
		return true
	}
	return false
}

// UserStatus represents account status.
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

// User represents a marketplace account.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	IsAdmin      bool
	AdminRole    AdminRole
	Phone        string
	City         string
	Address      string
	Bio          string
	AvatarKey    string
	Status       UserStatus
	IsVerified   bool
	Profile      *CleanerProfile
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CleanerProfile holds the provider-facing fields of a cleaner.
type CleanerProfile struct {
	UserID          string   `json:"-"`
	Services        []string `json:"services"`
	HourlyRate      float64  `json:"hourlyRate"`
	YearsExperience int      `json:"yearsExperience"`
	Availability    []string `json:"availability"`
	ServiceRadiusKm int      `json:"serviceRadiusKm"`
	RatingAvg       float64  `json:"rating"`
	ReviewCount     int      `json:"reviewCount"`
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Email      string          `json:"email,omitempty"`
	Role       Role            `json:"role"`
	IsAdmin    bool            `json:"isAdmin"`
	AdminRole  AdminRole       `json:"adminRole,omitempty"`
	Phone      string          `json:"phone,omitempty"`
	City       string          `json:"city,omitempty"`
	Address    string          `json:"address,omitempty"`
	Bio        string          `json:"bio,omitempty"`
	AvatarURL  string          `json:"avatarUrl,omitempty"`
	Status     UserStatus      `json:"status"`
	IsVerified bool            `json:"isVerified"`
	Profile    *CleanerProfile `json:"cleanerProfile,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// ToResponse converts User to UserResponse without the avatar URL.
// The service layer resolves AvatarURL from AvatarKey.
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		IsAdmin:    u.IsAdmin,
		AdminRole:  u.AdminRole,
		Phone:      u.Phone,
		City:       u.City,
		Address:    u.Address,
		Bio:        u.Bio,
		Status:     u.Status,
		IsVerified: u.IsVerified,
		Profile:    u.Profile,
		CreatedAt:  u.CreatedAt,
	}
}

// PublicView strips contact details for viewers other than the user and admins.
func (r UserResponse) PublicView() UserResponse {
	r.Email = ""
	r.Phone = ""
	r.Address = ""
	return r
}

// Summary is the short form of a user embedded in other resources.
type Summary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Role      Role   `json:"role"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// RegisterRequest represents a registration request.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     Role   `json:"role" binding:"required"`
	Phone    string `json:"phone" binding:"max=30"`
	City     string `json:"city" binding:"max=100"`
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest represents a refresh token request.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// AuthResponse represents authentication response with tokens.
type AuthResponse struct {
	User         UserResponse `json:"user"`
	Token        string       `json:"token"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresAt    int64        `json:"expiresAt"`
}

// UpdateUserRequest is a partial update; nil fields are left unchanged.
type UpdateUserRequest struct {
	Name    *string `json:"name" binding:"omitempty,min=2,max=100"`
	Phone   *string `json:"phone" binding:"omitempty,max=30"`
	City    *string `json:"city" binding:"omitempty,max=100"`
	Address *string `json:"address" binding:"omitempty,max=255"`
	Bio     *string `json:"bio" binding:"omitempty,max=2000"`
}

// ChangePasswordRequest represents a change password request.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

// AvatarResponse is returned after a profile photo upload.
type AvatarResponse struct {
	AvatarURL string `json:"avatarUrl"`
}

// UpdateCleanerProfileRequest is a partial update of a cleaner's profile.
type UpdateCleanerProfileRequest struct {
	Services        []string `json:"services" binding:"omitempty,max=20,dive,min=1,max=50"`
	HourlyRate      *float64 `json:"hourlyRate" binding:"omitempty,gte=0,lte=10000"`
	YearsExperience *int     `json:"yearsExperience" binding:"omitempty,gte=0,lte=80"`
	Availability    []string `json:"availability" binding:"omitempty,max=7,dive,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	ServiceRadiusKm *int     `json:"serviceRadiusKm" binding:"omitempty,gte=0,lte=500"`
	Bio             *string  `json:"bio" binding:"omitempty,max=2000"`
	City            *string  `json:"city" binding:"omitempty,max=100"`
}

// CleanerFilter narrows the cleaner directory.
type CleanerFilter struct {
	Query     string   `form:"q"`
	City      string   `form:"city"`
	Service   string   `form:"service"`
	MinRating *float64 `form:"minRating" binding:"omitempty,gte=0,lte=5"`
	MaxRate   *float64 `form:"maxRate" binding:"omitempty,gte=0"`
	Pagination
}
