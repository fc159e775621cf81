package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/blackicons2020/skillskonnect-sub001/internal/domain"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/log"
)

// GormTicketRepository implements TicketRepository using GORM.
type GormTicketRepository struct {
	db *gorm.DB
}

// NewGormTicketRepository creates a new GORM-based support ticket repository.
func NewGormTicketRepository(db *gorm.DB) *GormTicketRepository {
	return &GormTicketRepository{db: db}
}

// Create creates a new ticket.
func (r *GormTicketRepository) Create(ctx context.Context, ticket *domain.SupportTicket) error {
	ticket.ID = uuid.New().String()

	model := &domain.SupportTicketModel{
		ID:        ticket.ID,
		Reference: ticket.Reference,
		UserID:    ticket.UserID,
		Subject:   ticket.Subject,
		Message:   ticket.Message,
		Category:  string(ticket.Category),
		Priority:  string(ticket.Priority),
		Status:    string(ticket.Status),
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return handleError(err, ErrDuplicate)
	}

	ticket.CreatedAt = model.CreatedAt
	ticket.UpdatedAt = model.UpdatedAt
	return nil
}

// GetByID retrieves a ticket by ID.
func (r *GormTicketRepository) GetByID(ctx context.Context, id string) (*domain.SupportTicket, error) {
	var model domain.SupportTicketModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrTicketNotFound)
	}
	return model.ToDomain(), nil
}

// List retrieves tickets with pagination, newest first.
func (r *GormTicketRepository) List(ctx context.Context, filter domain.TicketFilter) ([]domain.SupportTicket, int64, error) {
	l := log.Ctx(ctx)
	filter.Normalize()

	query := r.db.WithContext(ctx).Model(&domain.SupportTicketModel{})
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", string(filter.Priority))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		l.Error().Err(err).Msg("failed to count tickets")
		return nil, 0, err
	}

	var models []domain.SupportTicketModel
	err := query.Order("created_at DESC").
		Offset(filter.Offset()).Limit(filter.PageSize).
		Find(&models).Error
	if err != nil {
		l.Error().Err(err).Msg("failed to list tickets from db")
		return nil, 0, err
	}

	tickets := make([]domain.SupportTicket, len(models))
	for i := range models {
		tickets[i] = *models[i].ToDomain()
	}
	return tickets, total, nil
}

// Update updates the admin-managed columns of a ticket.
func (r *GormTicketRepository) Update(ctx context.Context, ticket *domain.SupportTicket) error {
	result := r.db.WithContext(ctx).Model(&domain.SupportTicketModel{}).
		Where("id = ?", ticket.ID).
		Updates(map[string]interface{}{
			"status":         string(ticket.Status),
			"admin_response": ticket.AdminResponse,
			"assigned_to":    ticket.AssignedTo,
			"resolved_at":    ticket.ResolvedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTicketNotFound
	}
	return nil
}

// CountByStatus counts tickets in any of statuses.
func (r *GormTicketRepository) CountByStatus(ctx context.Context, statuses ...domain.TicketStatus) (int64, error) {
	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&domain.SupportTicketModel{}).
		Where("status IN ?", values).
		Count(&count).Error
	return count, err
}

var _ TicketRepository = (*GormTicketRepository)(nil)
