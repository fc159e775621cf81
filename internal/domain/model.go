package domain

import (
	"time"

	"gorm.io/gorm"

	"github.com/blackicons2020/skillskonnect-sub001/pkg/database"
)

// UserModel is the GORM model for users table.
type UserModel struct {
	ID           string               `gorm:"type:varchar(36);primaryKey"`
	Name         string               `gorm:"type:varchar(100);not null"`
	Email        string               `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string               `gorm:"type:varchar(255);not null"`
	Role         string               `gorm:"type:varchar(20);index;not null"`
	IsAdmin      bool                 `gorm:"not null;default:false"`
	AdminRole    string               `gorm:"type:varchar(20)"`
	Phone        string               `gorm:"type:varchar(30)"`
	City         string               `gorm:"type:varchar(100);index"`
	Address      string               `gorm:"type:varchar(255)"`
	Bio          string               `gorm:"type:text"`
	AvatarKey    string               `gorm:"type:varchar(255)"`
	Status       string               `gorm:"type:varchar(20);index;not null;default:'active'"`
	IsVerified   bool                 `gorm:"not null;default:false"`
	Profile      *CleanerProfileModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time            `gorm:"autoCreateTime"`
	UpdatedAt    time.Time            `gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt       `gorm:"index"`
}

// TableName specifies the table name for UserModel.
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts UserModel to domain User.
func (m *UserModel) ToDomain() *User {
	u := &User{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Role:         Role(m.Role),
		IsAdmin:      m.IsAdmin,
		AdminRole:    AdminRole(m.AdminRole),
		Phone:        m.Phone,
		City:         m.City,
		Address:      m.Address,
		Bio:          m.Bio,
		AvatarKey:    m.AvatarKey,
		Status:       UserStatus(m.Status),
		IsVerified:   m.IsVerified,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	if m.Profile != nil {
		u.Profile = m.Profile.ToDomain()
	}
	return u
}

// UserToModel converts domain User to UserModel. The profile is not included.
func UserToModel(u *User) *UserModel {
	return &UserModel{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		IsAdmin:      u.IsAdmin,
		AdminRole:    string(u.AdminRole),
		Phone:        u.Phone,
		City:         u.City,
		Address:      u.Address,
		Bio:          u.Bio,
		AvatarKey:    u.AvatarKey,
		Status:       string(u.Status),
		IsVerified:   u.IsVerified,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// CleanerProfileModel is the GORM model for cleaner_profiles table.
type CleanerProfileModel struct {
	UserID          string               `gorm:"type:varchar(36);primaryKey"`
	Services        database.StringArray `gorm:"type:text"`
	HourlyRate      float64              `gorm:"not null;default:0"`
	YearsExperience int                  `gorm:"not null;default:0"`
	Availability    database.StringArray `gorm:"type:text"`
	ServiceRadiusKm int                  `gorm:"not null;default:0"`
	RatingAvg       float64              `gorm:"not null;default:0;index"`
	ReviewCount     int                  `gorm:"not null;default:0"`
	CreatedAt       time.Time            `gorm:"autoCreateTime"`
	UpdatedAt       time.Time            `gorm:"autoUpdateTime"`
}

// TableName specifies the table name for CleanerProfileModel.
func (CleanerProfileModel) TableName() string {
	return "cleaner_profiles"
}

// ToDomain converts CleanerProfileModel to domain CleanerProfile.
func (m *CleanerProfileModel) ToDomain() *CleanerProfile {
	return &CleanerProfile{
		UserID:          m.UserID,
		Services:        nonNil(m.Services),
		HourlyRate:      m.HourlyRate,
		YearsExperience: m.YearsExperience,
		Availability:    nonNil(m.Availability),
		ServiceRadiusKm: m.ServiceRadiusKm,
		RatingAvg:       m.RatingAvg,
		ReviewCount:     m.ReviewCount,
	}
}

func nonNil(a database.StringArray) []string {
	if a == nil {
		return []string{}
	}
	return []string(a)
}

// BookingModel is the GORM model for bookings table.
type BookingModel struct {
	ID            string     `gorm:"type:varchar(36);primaryKey"`
	ClientID      string     `gorm:"type:varchar(36);index;not null"`
	CleanerID     string     `gorm:"type:varchar(36);index;not null"`
	Client        *UserModel `gorm:"foreignKey:ClientID"`
	Cleaner       *UserModel `gorm:"foreignKey:CleanerID"`
	ServiceType   string     `gorm:"type:varchar(100);not null"`
	ScheduledDate string     `gorm:"type:varchar(10);not null"`
	ScheduledTime string     `gorm:"type:varchar(5);not null"`
	DurationHours int        `gorm:"not null"`
	Address       string     `gorm:"type:varchar(255);not null"`
	Notes         string     `gorm:"type:text"`
	HourlyRate    float64    `gorm:"not null;default:0"`
	TotalPrice    float64    `gorm:"not null"`
	Status        string     `gorm:"type:varchar(20);index;not null;default:'pending'"`
	PaymentStatus string     `gorm:"type:varchar(20);not null;default:'unpaid'"`
	CancelReason  string     `gorm:"type:varchar(500)"`
	CreatedAt     time.Time  `gorm:"autoCreateTime;index"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime"`
}

// TableName specifies the table name for BookingModel.
func (BookingModel) TableName() string {
	return "bookings"
}

// ToDomain converts BookingModel to domain Booking.
func (m *BookingModel) ToDomain() *Booking {
	return &Booking{
		ID:            m.ID,
		ClientID:      m.ClientID,
		CleanerID:     m.CleanerID,
		Client:        summaryOf(m.Client),
		Cleaner:       summaryOf(m.Cleaner),
		ServiceType:   m.ServiceType,
		ScheduledDate: m.ScheduledDate,
		ScheduledTime: m.ScheduledTime,
		DurationHours: m.DurationHours,
		Address:       m.Address,
		Notes:         m.Notes,
		HourlyRate:    m.HourlyRate,
		TotalPrice:    m.TotalPrice,
		Status:        BookingStatus(m.Status),
		PaymentStatus: PaymentStatus(m.PaymentStatus),
		CancelReason:  m.CancelReason,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// BookingToModel converts domain Booking to BookingModel.
func BookingToModel(b *Booking) *BookingModel {
	return &BookingModel{
		ID:            b.ID,
		ClientID:      b.ClientID,
		CleanerID:     b.CleanerID,
		ServiceType:   b.ServiceType,
		ScheduledDate: b.ScheduledDate,
		ScheduledTime: b.ScheduledTime,
		DurationHours: b.DurationHours,
		Address:       b.Address,
		Notes:         b.Notes,
		HourlyRate:    b.HourlyRate,
		TotalPrice:    b.TotalPrice,
		Status:        string(b.Status),
		PaymentStatus: string(b.PaymentStatus),
		CancelReason:  b.CancelReason,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

func summaryOf(m *UserModel) *Summary {
	if m == nil || m.ID == "" {
		return nil
	}
	return &Summary{ID: m.ID, Name: m.Name, Role: Role(m.Role)}
}

// ReviewModel is the GORM model for reviews table.
type ReviewModel struct {
	ID        string        `gorm:"type:varchar(36);primaryKey"`
	BookingID string        `gorm:"type:varchar(36);uniqueIndex;not null"`
	Booking   *BookingModel `gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE"`
	ClientID  string        `gorm:"type:varchar(36);index;not null"`
	CleanerID string        `gorm:"type:varchar(36);index;not null"`
	Client    *UserModel    `gorm:"foreignKey:ClientID"`
	Rating    int           `gorm:"not null"`
	Comment   string        `gorm:"type:text"`
	CreatedAt time.Time     `gorm:"autoCreateTime;index"`
}

// TableName specifies the table name for ReviewModel.
func (ReviewModel) TableName() string {
	return "reviews"
}

// ToDomain converts ReviewModel to domain Review.
func (m *ReviewModel) ToDomain() *Review {
	return &Review{
		ID:        m.ID,
		BookingID: m.BookingID,
		ClientID:  m.ClientID,
		CleanerID: m.CleanerID,
		Client:    summaryOf(m.Client),
		Rating:    m.Rating,
		Comment:   m.Comment,
		CreatedAt: m.CreatedAt,
	}
}

// ChatModel is the GORM model for chats table.
type ChatModel struct {
	ID            string     `gorm:"type:varchar(36);primaryKey"`
	ClientID      string     `gorm:"type:varchar(36);not null;uniqueIndex:idx_chat_pair"`
	CleanerID     string     `gorm:"type:varchar(36);not null;uniqueIndex:idx_chat_pair;index"`
	Client        *UserModel `gorm:"foreignKey:ClientID"`
	Cleaner       *UserModel `gorm:"foreignKey:CleanerID"`
	BookingID     *string    `gorm:"type:varchar(36)"`
	LastMessageAt *time.Time `gorm:"index"`
	CreatedAt     time.Time  `gorm:"autoCreateTime"`
}

// TableName specifies the table name for ChatModel.
func (ChatModel) TableName() string {
	return "chats"
}

// ToDomain converts ChatModel to domain Chat.
func (m *ChatModel) ToDomain() *Chat {
	return &Chat{
		ID:            m.ID,
		ClientID:      m.ClientID,
		CleanerID:     m.CleanerID,
		BookingID:     m.BookingID,
		LastMessageAt: m.LastMessageAt,
		CreatedAt:     m.CreatedAt,
	}
}

// MessageModel is the GORM model for messages table.
type MessageModel struct {
	ID        string     `gorm:"type:varchar(36);primaryKey"`
	ChatID    string     `gorm:"type:varchar(36);not null;index:idx_messages_chat_created,priority:1"`
	Chat      *ChatModel `gorm:"foreignKey:ChatID;constraint:OnDelete:CASCADE"`
	SenderID  string     `gorm:"type:varchar(36);not null"`
	Sender    *UserModel `gorm:"foreignKey:SenderID"`
	Content   string     `gorm:"type:text;not null"`
	IsRead    bool       `gorm:"not null;default:false"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index:idx_messages_chat_created,priority:2"`
}

// TableName specifies the table name for MessageModel.
func (MessageModel) TableName() string {
	return "messages"
}

// ToDomain converts MessageModel to domain Message.
func (m *MessageModel) ToDomain() *Message {
	return &Message{
		ID:        m.ID,
		ChatID:    m.ChatID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		IsRead:    m.IsRead,
		CreatedAt: m.CreatedAt,
	}
}

// SubscriptionModel is the GORM model for subscriptions table.
type SubscriptionModel struct {
	ID                 string     `gorm:"type:varchar(36);primaryKey"`
	ClientID           string     `gorm:"type:varchar(36);index;not null"`
	Client             *UserModel `gorm:"foreignKey:ClientID"`
	CleanerID          *string    `gorm:"type:varchar(36)"`
	Plan               string     `gorm:"type:varchar(20);not null"`
	Frequency          string     `gorm:"type:varchar(20);not null"`
	Price              float64    `gorm:"not null"`
	Status             string     `gorm:"type:varchar(20);index;not null"`
	AutoRenew          bool       `gorm:"not null"`
	CurrentPeriodStart time.Time  `gorm:"not null"`
	CurrentPeriodEnd   time.Time  `gorm:"not null;index"`
	CreatedAt          time.Time  `gorm:"autoCreateTime"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime"`
}

// TableName specifies the table name for SubscriptionModel.
func (SubscriptionModel) TableName() string {
	return "subscriptions"
}

// ToDomain converts SubscriptionModel to domain Subscription.
func (m *SubscriptionModel) ToDomain() *Subscription {
	return &Subscription{
		ID:                 m.ID,
		ClientID:           m.ClientID,
		CleanerID:          m.CleanerID,
		Plan:               SubscriptionPlan(m.Plan),
		Frequency:          Frequency(m.Frequency),
		Price:              m.Price,
		Status:             SubscriptionStatus(m.Status),
		AutoRenew:          m.AutoRenew,
		CurrentPeriodStart: m.CurrentPeriodStart,
		CurrentPeriodEnd:   m.CurrentPeriodEnd,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

// SubscriptionToModel converts domain Subscription to SubscriptionModel.
func SubscriptionToModel(s *Subscription) *SubscriptionModel {
	return &SubscriptionModel{
		ID:                 s.ID,
		ClientID:           s.ClientID,
		CleanerID:          s.CleanerID,
		Plan:               string(s.Plan),
		Frequency:          string(s.Frequency),
		Price:              s.Price,
		Status:             string(s.Status),
		AutoRenew:          s.AutoRenew,
		CurrentPeriodStart: s.CurrentPeriodStart,
		CurrentPeriodEnd:   s.CurrentPeriodEnd,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

// SupportTicketModel is the GORM model for support_tickets table.
type SupportTicketModel struct {
	ID            string     `gorm:"type:varchar(36);primaryKey"`
	Reference     string     `gorm:"type:varchar(20);uniqueIndex;not null"`
	UserID        string     `gorm:"type:varchar(36);index;not null"`
	User          *UserModel `gorm:"foreignKey:UserID"`
	Subject       string     `gorm:"type:varchar(200);not null"`
	Message       string     `gorm:"type:text;not null"`
	Category      string     `gorm:"type:varchar(20);not null"`
	Priority      string     `gorm:"type:varchar(20);index;not null;default:'medium'"`
	Status        string     `gorm:"type:varchar(20);index;not null;default:'open'"`
	AdminResponse string     `gorm:"type:text"`
	AssignedTo    *string    `gorm:"type:varchar(36)"`
	CreatedAt     time.Time  `gorm:"autoCreateTime;index"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime"`
	ResolvedAt    *time.Time
}

// TableName specifies the table name for SupportTicketModel.
func (SupportTicketModel) TableName() string {
	return "support_tickets"
}

// ToDomain converts SupportTicketModel to domain SupportTicket.
func (m *SupportTicketModel) ToDomain() *SupportTicket {
	return &SupportTicket{
		ID:            m.ID,
		Reference:     m.Reference,
		UserID:        m.UserID,
		Subject:       m.Subject,
		Message:       m.Message,
		Category:      TicketCategory(m.Category),
		Priority:      TicketPriority(m.Priority),
		Status:        TicketStatus(m.Status),
		AdminResponse: m.AdminResponse,
		AssignedTo:    m.AssignedTo,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
		ResolvedAt:    m.ResolvedAt,
	}
}

// Models lists every GORM model in migration order.
func Models() []interface{} {
	return []interface{}{
		&UserModel{},
		&CleanerProfileModel{},
		&BookingModel{},
		&ReviewModel{},
		&ChatModel{},
		&MessageModel{},
		&SubscriptionModel{},
		&SupportTicketModel{},
	}
}
