package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/kidlearn-api/internal/models"
)

// UserRepository exposes persistence helpers for learner profiles.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (models.User, error)
	GetByReferralCode(ctx context.Context, code string) (models.User, error)
	Update(ctx context.Context, user *models.User) error
	AddXP(ctx context.Context, id uint, delta int) error
	List(ctx context.Context, group string, limit int) ([]models.User, error)
}

// NewUserRepository constructs a user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

type userRepository struct {
	db *gorm.DB
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return dbFor(ctx, r.db).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := dbFor(ctx, r.db).First(&user, id).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) GetByReferralCode(ctx context.Context, code string) (models.User, error) {
	var user models.User
	if err := dbFor(ctx, r.db).Where("referral_code = ?", code).First(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return dbFor(ctx, r.db).Save(user).Error
}

// AddXP increments a user's XP atomically in the store. XP is monotonically
// non-decreasing; negative deltas are a caller bug and rejected by the
// service layer.
func (r *userRepository) AddXP(ctx context.Context, id uint, delta int) error {
	return dbFor(ctx, r.db).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("xp", gorm.Expr("xp + ?", delta)).Error
}

// List returns users sorted by XP descending, optionally restricted to a
// group. The XP leaderboard is computed from this scan at query time.
func (r *userRepository) List(ctx context.Context, group string, limit int) ([]models.User, error) {
	query := dbFor(ctx, r.db).Model(&models.User{}).Order("xp DESC, id ASC")
	if group != "" {
		query = query.Where("\"group\" = ?", group)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
