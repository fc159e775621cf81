package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/blackicons2020/skillskonnect-sub001/internal/domain"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/log"
)

// GormBookingRepository implements BookingRepository using GORM.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GORM-based booking repository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// Create creates a new booking.
func (r *GormBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	booking.ID = uuid.New().String()

	model := domain.BookingToModel(booking)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}

	booking.CreatedAt = model.CreatedAt
	booking.UpdatedAt = model.UpdatedAt
	return nil
}

// GetByID retrieves a booking with participant summaries.
func (r *GormBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	var model domain.BookingModel
	err := r.withParticipants(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, ErrBookingNotFound)
	}
	return model.ToDomain(), nil
}

// List retrieves bookings with pagination, newest first.
func (r *GormBookingRepository) List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, int64, error) {
	l := log.Ctx(ctx)
	filter.Normalize()

	query := r.db.WithContext(ctx).Model(&domain.BookingModel{})
	if filter.UserID != "" {
		query = query.Where("client_id = ? OR cleaner_id = ?", filter.UserID, filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		l.Error().Err(err).Msg("failed to count bookings")
		return nil, 0, err
	}

	var models []domain.BookingModel
	err := query.Preload("Client").Preload("Cleaner").
		Order("created_at DESC").
		Offset(filter.Offset()).Limit(filter.PageSize).
		Find(&models).Error
	if err != nil {
		l.Error().Err(err).Msg("failed to list bookings from db")
		return nil, 0, err
	}

	return toBookings(models), total, nil
}

// Update updates the editable columns of a booking that is still pending.
func (r *GormBookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	result := r.db.WithContext(ctx).Model(&domain.BookingModel{}).
		Where("id = ? AND status = ?", booking.ID, string(domain.BookingPending)).
		Updates(map[string]interface{}{
			"scheduled_date": booking.ScheduledDate,
			"scheduled_time": booking.ScheduledTime,
			"duration_hours": booking.DurationHours,
			"address":        booking.Address,
			"notes":          booking.Notes,
			"total_price":    booking.TotalPrice,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}

// UpdateStatus performs a compare-and-set on the booking status.
func (r *GormBookingRepository) UpdateStatus(ctx context.Context, id string, from, to domain.BookingStatus, reason string) error {
	updates := map[string]interface{}{"status": string(to)}
	if reason != "" {
		updates["cancel_reason"] = reason
	}

	result := r.db.WithContext(ctx).Model(&domain.BookingModel{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}

// ExpirePending expires pending bookings created before cutoff.
func (r *GormBookingRepository) ExpirePending(ctx context.Context, cutoff time.Time) ([]domain.Booking, error) {
	var expired []domain.BookingModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("status = ? AND created_at < ?", string(domain.BookingPending), cutoff).
			Find(&expired).Error; err != nil {
			return err
		}
		if len(expired) == 0 {
			return nil
		}

		ids := make([]string, len(expired))
		for i := range expired {
			ids[i] = expired[i].ID
			expired[i].Status = string(domain.BookingExpired)
		}
		return tx.Model(&domain.BookingModel{}).
			Where("id IN ? AND status = ?", ids, string(domain.BookingPending)).
			Update("status", string(domain.BookingExpired)).Error
	})
	if err != nil {
		return nil, err
	}
	return toBookings(expired), nil
}

// CountByStatus counts bookings per status.
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[domain.BookingStatus]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&domain.BookingModel{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.BookingStatus]int64, len(rows))
	for _, row := range rows {
		counts[domain.BookingStatus(row.Status)] = row.Count
	}
	return counts, nil
}

// CompletedRevenue sums the price of completed bookings.
func (r *GormBookingRepository) CompletedRevenue(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Model(&domain.BookingModel{}).
		Select("COALESCE(SUM(total_price), 0)").
		Where("status = ?", string(domain.BookingCompleted)).
		Scan(&total).Error
	return total, err
}

func (r *GormBookingRepository) withParticipants(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Client").Preload("Cleaner")
}

func toBookings(models []domain.BookingModel) []domain.Booking {
	bookings := make([]domain.Booking, len(models))
	for i := range models {
		bookings[i] = *models[i].ToDomain()
	}
	return bookings
}

var _ BookingRepository = (*GormBookingRepository)(nil)
