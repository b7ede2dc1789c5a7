package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/kidlearn-api/internal/models"
)

// ProgressRepository exposes persistence helpers for per-(user, item)
// progress rows.
type ProgressRepository interface {
	Get(ctx context.Context, userID uint, itemType string, itemID uint) (models.Progress, error)
	Create(ctx context.Context, progress *models.Progress) error
	Update(ctx context.Context, progress *models.Progress) error
	ListByUser(ctx context.Context, userID uint, itemType string) ([]models.Progress, error)
	CountSolvedInRange(ctx context.Context, userID uint, itemType string, from, to time.Time) (int64, error)
	CountSolvedForItems(ctx context.Context, userID uint, itemType string, itemIDs []uint) (int64, error)
	HasAnyForItem(ctx context.Context, itemType string, itemID uint) (bool, error)
}

// NewProgressRepository constructs a progress repository.
func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepository{db: db}
}

type progressRepository struct {
	db *gorm.DB
}

func (r *progressRepository) Get(ctx context.Context, userID uint, itemType string, itemID uint) (models.Progress, error) {
	var progress models.Progress
	err := dbFor(ctx, r.db).
		Where("user_id = ? AND item_type = ? AND item_id = ?", userID, itemType, itemID).
		First(&progress).Error
	if err != nil {
		return models.Progress{}, err
	}
	return progress, nil
}

func (r *progressRepository) Create(ctx context.Context, progress *models.Progress) error {
	return dbFor(ctx, r.db).Create(progress).Error
}

func (r *progressRepository) Update(ctx context.Context, progress *models.Progress) error {
	return dbFor(ctx, r.db).Save(progress).Error
}

func (r *progressRepository) ListByUser(ctx context.Context, userID uint, itemType string) ([]models.Progress, error) {
	query := dbFor(ctx, r.db).Where("user_id = ?", userID)
	if itemType != "" {
		query = query.Where("item_type = ?", itemType)
	}

	var rows []models.Progress
	if err := query.Order("last_attempt_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CountSolvedInRange counts first-time solves whose solve timestamp falls in
// [from, to). Leaderboard reconciliation compares this against the period
// entry's running total.
func (r *progressRepository) CountSolvedInRange(ctx context.Context, userID uint, itemType string, from, to time.Time) (int64, error) {
	var count int64
	err := dbFor(ctx, r.db).
		Model(&models.Progress{}).
		Where("user_id = ? AND item_type = ? AND solved = ?", userID, itemType, true).
		Where("solved_at >= ? AND solved_at < ?", from, to).
		Count(&count).Error
	return count, err
}

// HasAnyForItem reports whether any learner holds a progress row for the
// item. Authoring flows use it to freeze reward fields after first grading.
func (r *progressRepository) HasAnyForItem(ctx context.Context, itemType string, itemID uint) (bool, error) {
	var count int64
	err := dbFor(ctx, r.db).
		Model(&models.Progress{}).
		Where("item_type = ? AND item_id = ?", itemType, itemID).
		Count(&count).Error
	return count > 0, err
}

func (r *progressRepository) CountSolvedForItems(ctx context.Context, userID uint, itemType string, itemIDs []uint) (int64, error) {
	if len(itemIDs) == 0 {
		return 0, nil
	}

	var count int64
	err := dbFor(ctx, r.db).
		Model(&models.Progress{}).
		Where("user_id = ? AND item_type = ? AND solved = ? AND item_id IN ?", userID, itemType, true, itemIDs).
		Count(&count).Error
	return count, err
}
