package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/blackicons2020/skillskonnect-sub001/internal/domain"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/database"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/log"
)

// GormUserRepository implements UserRepository using GORM.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GORM-based user repository.
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user.
func (r *GormUserRepository) Create(ctx context.Context, user *domain.User) error {
	user.ID = uuid.New().String()
	if user.Status == "" {
		user.Status = domain.UserStatusActive
	}

	model := domain.UserToModel(user)
	if user.Profile != nil {
		user.Profile.UserID = user.ID
		model.Profile = profileToModel(user.Profile)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return handleError(err, ErrEmailExists)
	}

	// Update the domain object with generated timestamps
	user.CreatedAt = model.CreatedAt
	user.UpdatedAt = model.UpdatedAt
	return nil
}

// GetByID retrieves a user with its cleaner profile.
func (r *GormUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var model domain.UserModel
	err := r.db.WithContext(ctx).Preload("Profile").First(&model, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return model.ToDomain(), nil
}

// GetByEmail retrieves a user by email.
func (r *GormUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var model domain.UserModel
	err := r.db.WithContext(ctx).Preload("Profile").First(&model, "email = ?", email).Error
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return model.ToDomain(), nil
}

// Update updates the account columns of a user.
func (r *GormUserRepository) Update(ctx context.Context, user *domain.User) error {
	model := domain.UserToModel(user)
	result := r.db.WithContext(ctx).Model(&domain.UserModel{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"name":          model.Name,
			"password_hash": model.PasswordHash,
			"phone":         model.Phone,
			"city":          model.City,
			"address":       model.Address,
			"bio":           model.Bio,
			"avatar_key":    model.AvatarKey,
			"status":        model.Status,
			"is_verified":   model.IsVerified,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	var updated domain.UserModel
	if err := r.db.WithContext(ctx).Select("updated_at").First(&updated, "id = ?", user.ID).Error; err == nil {
		user.UpdatedAt = updated.UpdatedAt
	}
	return nil
}

// UpdateProfile upserts the editable cleaner profile columns.
func (r *GormUserRepository) UpdateProfile(ctx context.Context, profile *domain.CleanerProfile) error {
	model := profileToModel(profile)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.CleanerProfileModel{}).
			Where("user_id = ?", profile.UserID).
			Updates(map[string]interface{}{
				"services":          model.Services,
				"hourly_rate":       model.HourlyRate,
				"years_experience":  model.YearsExperience,
				"availability":      model.Availability,
				"service_radius_km": model.ServiceRadiusKm,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			return nil
		}
		// Cleaners registered before profiles existed have no row yet.
		return tx.Create(model).Error
	})
}

// Delete soft-deletes a user and obfuscates the email to allow re-registration.
func (r *GormUserRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model domain.UserModel
		if err := tx.First(&model, "id = ?", id).Error; err != nil {
			return notFound(err, ErrUserNotFound)
		}

		suffix := "_deleted_" + id
		if err := tx.Model(&domain.UserModel{}).Where("id = ?", id).Updates(map[string]interface{}{
			"email":      model.Email + suffix,
			"avatar_key": "",
		}).Error; err != nil {
			return err
		}

		return tx.Delete(&domain.UserModel{}, "id = ?", id).Error
	})
}

// ListCleaners lists active cleaners with their profiles, best rated first.
func (r *GormUserRepository) ListCleaners(ctx context.Context, filter domain.CleanerFilter) ([]domain.User, int64, error) {
	l := log.Ctx(ctx)
	filter.Normalize()

	query := r.db.WithContext(ctx).Model(&domain.UserModel{}).
		Joins("JOIN cleaner_profiles ON cleaner_profiles.user_id = users.id").
		Where("users.role = ? AND users.status = ?", string(domain.RoleCleaner), string(domain.UserStatusActive))

	if filter.Query != "" {
		p := likePattern(filter.Query)
		query = query.Where("LOWER(users.name) LIKE ? ESCAPE '!' OR LOWER(users.bio) LIKE ? ESCAPE '!'", p, p)
	}
	if filter.City != "" {
		query = query.Where("LOWER(users.city) = ?", normalize(filter.City))
	}
	if filter.Service != "" {
		query = query.Where("LOWER(cleaner_profiles.services) LIKE ? ESCAPE '!'", likePattern(database.JSONString(strings.TrimSpace(filter.Service))))
	}
	if filter.MinRating != nil {
		query = query.Where("cleaner_profiles.rating_avg >= ?", *filter.MinRating)
	}
	if filter.MaxRate != nil {
		query = query.Where("cleaner_profiles.hourly_rate <= ?", *filter.MaxRate)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		l.Error().Err(err).Msg("failed to count cleaners")
		return nil, 0, err
	}

	var models []domain.UserModel
	err := query.Preload("Profile").
		Order("cleaner_profiles.rating_avg DESC").
		Order("cleaner_profiles.review_count DESC").
		Order("users.created_at ASC").
		Offset(filter.Offset()).Limit(filter.PageSize).
		Find(&models).Error
	if err != nil {
		l.Error().Err(err).Msg("failed to list cleaners from db")
		return nil, 0, err
	}

	return toUsers(models), total, nil
}

// List lists users for the admin console, newest first.
func (r *GormUserRepository) List(ctx context.Context, filter domain.AdminUserFilter) ([]domain.User, int64, error) {
	l := log.Ctx(ctx)
	filter.Normalize()

	query := r.db.WithContext(ctx).Model(&domain.UserModel{})
	if filter.Role != "" {
		query = query.Where("role = ?", string(filter.Role))
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.Query != "" {
		p := likePattern(filter.Query)
		query = query.Where("LOWER(name) LIKE ? ESCAPE '!' OR LOWER(email) LIKE ? ESCAPE '!'", p, p)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		l.Error().Err(err).Msg("failed to count users")
		return nil, 0, err
	}

	var models []domain.UserModel
	err := query.Preload("Profile").
		Order("created_at DESC").
		Offset(filter.Offset()).Limit(filter.PageSize).
		Find(&models).Error
	if err != nil {
		l.Error().Err(err).Msg("failed to list users from db")
		return nil, 0, err
	}

	return toUsers(models), total, nil
}

// CountByRole counts live users per role.
func (r *GormUserRepository) CountByRole(ctx context.Context) (map[domain.Role]int64, error) {
	var rows []struct {
		Role  string
		Count int64
	}
	err := r.db.WithContext(ctx).Model(&domain.UserModel{}).
		Select("role, COUNT(*) AS count").
		Group("role").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.Role]int64, len(rows))
	for _, row := range rows {
		counts[domain.Role(row.Role)] = row.Count
	}
	return counts, nil
}

func toUsers(models []domain.UserModel) []domain.User {
	users := make([]domain.User, len(models))
	for i := range models {
		users[i] = *models[i].ToDomain()
	}
	return users
}

func profileToModel(p *domain.CleanerProfile) *domain.CleanerProfileModel {
	return &domain.CleanerProfileModel{
		UserID:          p.UserID,
		Services:        database.StringArray(p.Services),
		HourlyRate:      p.HourlyRate,
		YearsExperience: p.YearsExperience,
		Availability:    database.StringArray(p.Availability),
		ServiceRadiusKm: p.ServiceRadiusKm,
		RatingAvg:       p.RatingAvg,
		ReviewCount:     p.ReviewCount,
	}
}

var _ UserRepository = (*GormUserRepository)(nil)

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
