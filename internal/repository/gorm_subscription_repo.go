package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/blackicons2020/skillskonnect-sub001/internal/domain"
)

// GormSubscriptionRepository implements SubscriptionRepository using GORM.
type GormSubscriptionRepository struct {
	db *gorm.DB
}

// NewGormSubscriptionRepository creates a new GORM-based subscription repository.
func NewGormSubscriptionRepository(db *gorm.DB) *GormSubscriptionRepository {
	return &GormSubscriptionRepository{db: db}
}

var liveSubscriptionStatuses = []string{
	string(domain.SubscriptionActive),
	string(domain.SubscriptionPaused),
}

// Create inserts a subscription unless the client already holds a live one.
// The client's row is locked so concurrent creates for one client run one at
// a time; the live subscription index catches anything that slips past.
func (r *GormSubscriptionRepository) Create(ctx context.Context, sub *domain.Subscription) error {
	sub.ID = uuid.New().String()
	model := domain.SubscriptionToModel(sub)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var client domain.UserModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&client, "id = ?", sub.ClientID).Error; err != nil {
			return notFound(err, ErrUserNotFound)
		}

		var live int64
		if err := tx.Model(&domain.SubscriptionModel{}).
			Where("client_id = ? AND status IN ?", sub.ClientID, liveSubscriptionStatuses).
			Count(&live).Error; err != nil {
			return err
		}
		if live > 0 {
			return ErrSubscriptionExists
		}
		return handleError(tx.Create(model).Error, ErrSubscriptionExists)
	})
	if err != nil {
		return err
	}

	sub.CreatedAt = model.CreatedAt
	sub.UpdatedAt = model.UpdatedAt
	return nil
}

// GetByID retrieves a subscription by ID.
func (r *GormSubscriptionRepository) GetByID(ctx context.Context, id string) (*domain.Subscription, error) {
	var model domain.SubscriptionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrSubscriptionNotFound)
	}
	return model.ToDomain(), nil
}

// ListByClient lists a client's subscriptions, newest first.
func (r *GormSubscriptionRepository) ListByClient(ctx context.Context, clientID string) ([]domain.Subscription, error) {
	var models []domain.SubscriptionModel
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return toSubscriptions(models), nil
}

// UpdateStatus performs a compare-and-set on the subscription status.
func (r *GormSubscriptionRepository) UpdateStatus(ctx context.Context, id string, from, to domain.SubscriptionStatus) error {
	result := r.db.WithContext(ctx).Model(&domain.SubscriptionModel{}).
		Where("id = ? AND status = ?", id, string(from)).
		Update("status", string(to))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}

// ListDue returns active subscriptions whose current period has ended.
func (r *GormSubscriptionRepository) ListDue(ctx context.Context, now time.Time) ([]domain.Subscription, error) {
	var models []domain.SubscriptionModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND current_period_end <= ?", string(domain.SubscriptionActive), now).
		Order("current_period_end ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return toSubscriptions(models), nil
}

// Renew moves an active subscription into a new period.
func (r *GormSubscriptionRepository) Renew(ctx context.Context, id string, start, end time.Time) error {
	result := r.db.WithContext(ctx).Model(&domain.SubscriptionModel{}).
		Where("id = ? AND status = ?", id, string(domain.SubscriptionActive)).
		Updates(map[string]interface{}{
			"current_period_start": start,
			"current_period_end":   end,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}

// CountByStatus counts subscriptions in status.
func (r *GormSubscriptionRepository) CountByStatus(ctx context.Context, status domain.SubscriptionStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.SubscriptionModel{}).
		Where("status = ?", string(status)).
		Count(&count).Error
	return count, err
}

func toSubscriptions(models []domain.SubscriptionModel) []domain.Subscription {
	subs := make([]domain.Subscription, len(models))
	for i := range models {
		subs[i] = *models[i].ToDomain()
	}
	return subs
}

var _ SubscriptionRepository = (*GormSubscriptionRepository)(nil)
