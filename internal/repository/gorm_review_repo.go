package repository

import (
	"context"
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/blackicons2020/skillskonnect-sub001/internal/domain"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/log"
)

// GormReviewRepository implements ReviewRepository using GORM.
type GormReviewRepository struct {
	db *gorm.DB
}

// NewGormReviewRepository creates a new GORM-based review repository.
func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

// Create inserts a review and refreshes the cleaner's rating.
func (r *GormReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	review.ID = uuid.New().String()

	model := &domain.ReviewModel{
		ID:        review.ID,
		BookingID: review.BookingID,
		ClientID:  review.ClientID,
		CleanerID: review.CleanerID,
		Rating:    review.Rating,
		Comment:   review.Comment,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(model).Error; err != nil {
			return handleError(err, ErrReviewExists)
		}
		return recomputeRating(tx, review.CleanerID)
	})
	if err != nil {
		return err
	}

	review.CreatedAt = model.CreatedAt
	return nil
}

// GetByID retrieves a review by ID.
func (r *GormReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	var model domain.ReviewModel
	err := r.db.WithContext(ctx).Preload("Client").First(&model, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, ErrReviewNotFound)
	}
	return model.ToDomain(), nil
}

// ListByCleaner lists a cleaner's reviews, newest first.
func (r *GormReviewRepository) ListByCleaner(ctx context.Context, cleanerID string, page domain.Pagination) ([]domain.Review, int64, error) {
	l := log.Ctx(ctx)
	page.Normalize()

	query := r.db.WithContext(ctx).Model(&domain.ReviewModel{}).Where("cleaner_id = ?", cleanerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		l.Error().Err(err).Msg("failed to count reviews")
		return nil, 0, err
	}

	var models []domain.ReviewModel
	err := query.Preload("Client").
		Order("created_at DESC").
		Offset(page.Offset()).Limit(page.PageSize).
		Find(&models).Error
	if err != nil {
		l.Error().Err(err).Msg("failed to list reviews from db")
		return nil, 0, err
	}

	reviews := make([]domain.Review, len(models))
	for i := range models {
		reviews[i] = *models[i].ToDomain()
	}
	return reviews, total, nil
}

// Delete removes a review and refreshes the cleaner's rating.
func (r *GormReviewRepository) Delete(ctx context.Context, id string) (*domain.Review, error) {
	var model domain.ReviewModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&model, "id = ?", id).Error; err != nil {
			return notFound(err, ErrReviewNotFound)
		}
		if err := tx.Delete(&domain.ReviewModel{}, "id = ?", id).Error; err != nil {
			return err
		}
		return recomputeRating(tx, model.CleanerID)
	})
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// recomputeRating rewrites rating_avg and review_count from the reviews table.
func recomputeRating(tx *gorm.DB, cleanerID string) error {
	var agg struct {
		Avg   float64
		Count int64
	}
	err := tx.Model(&domain.ReviewModel{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("cleaner_id = ?", cleanerID).
		Scan(&agg).Error
	if err != nil {
		return err
	}

	return tx.Model(&domain.CleanerProfileModel{}).
		Where("user_id = ?", cleanerID).
		Updates(map[string]interface{}{
			"rating_avg":   math.Round(agg.Avg*100) / 100,
			"review_count": agg.Count,
		}).Error
}

var _ ReviewRepository = (*GormReviewRepository)(nil)
