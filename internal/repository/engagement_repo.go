package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/kidlearn-api/internal/models"
)

// EngagementRepository exposes persistence helpers for daily streaks and
// achievement unlocks.
type EngagementRepository interface {
	GetStreak(ctx context.Context, userID uint, date string) (models.DailyStreak, error)
	CreateStreak(ctx context.Context, streak *models.DailyStreak) error
	LatestStreak(ctx context.Context, userID uint) (models.DailyStreak, error)

	GetAchievement(ctx context.Context, userID uint, code string) (models.Achievement, error)
	CreateAchievement(ctx context.Context, achievement *models.Achievement) error
	ListAchievements(ctx context.Context, userID uint) ([]models.Achievement, error)
}

// NewEngagementRepository constructs an engagement repository.
func NewEngagementRepository(db *gorm.DB) EngagementRepository {
	return &engagementRepository{db: db}
}

type engagementRepository struct {
	db *gorm.DB
}

func (r *engagementRepository) GetStreak(ctx context.Context, userID uint, date string) (models.DailyStreak, error) {
	var streak models.DailyStreak
	err := dbFor(ctx, r.db).
		Where("user_id = ? AND date = ?", userID, date).
		First(&streak).Error
	if err != nil {
		return models.DailyStreak{}, err
	}
	return streak, nil
}

func (r *engagementRepository) CreateStreak(ctx context.Context, streak *models.DailyStreak) error {
	return dbFor(ctx, r.db).Create(streak).Error
}

func (r *engagementRepository) LatestStreak(ctx context.Context, userID uint) (models.DailyStreak, error) {
	var streak models.DailyStreak
	err := dbFor(ctx, r.db).
		Where("user_id = ?", userID).
		Order("date DESC").
		First(&streak).Error
	if err != nil {
		return models.DailyStreak{}, err
	}
	return streak, nil
}

func (r *engagementRepository) GetAchievement(ctx context.Context, userID uint, code string) (models.Achievement, error) {
	var achievement models.Achievement
	err := dbFor(ctx, r.db).
		Where("user_id = ? AND code = ?", userID, code).
		First(&achievement).Error
	if err != nil {
		return models.Achievement{}, err
	}
	return achievement, nil
}

func (r *engagementRepository) CreateAchievement(ctx context.Context, achievement *models.Achievement) error {
	return dbFor(ctx, r.db).Create(achievement).Error
}

func (r *engagementRepository) ListAchievements(ctx context.Context, userID uint) ([]models.Achievement, error) {
	var achievements []models.Achievement
	err := dbFor(ctx, r.db).
		Where("user_id = ?", userID).
		Order("unlocked_at ASC").
		Find(&achievements).Error
	if err != nil {
		return nil, err
	}
	return achievements, nil
}
