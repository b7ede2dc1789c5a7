package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/kidlearn-api/internal/models"
)

// LeaderboardRepository exposes persistence helpers for per-(user, period)
// leaderboard tallies.
type LeaderboardRepository interface {
	Get(ctx context.Context, userID uint, period string) (models.LeaderboardEntry, error)
	ApplySolve(ctx context.Context, userID uint, periods []string, points, xp int, difficulty string) error
	TopByPoints(ctx context.Context, period string, limit int) ([]models.LeaderboardEntry, error)
}

// NewLeaderboardRepository constructs a leaderboard repository.
func NewLeaderboardRepository(db *gorm.DB) LeaderboardRepository {
	return &leaderboardRepository{db: db}
}

type leaderboardRepository struct {
	db *gorm.DB
}

func (r *leaderboardRepository) Get(ctx context.Context, userID uint, period string) (models.LeaderboardEntry, error) {
	var entry models.LeaderboardEntry
	err := dbFor(ctx, r.db).
		Where("user_id = ? AND period = ?", userID, period).
		First(&entry).Error
	if err != nil {
		return models.LeaderboardEntry{}, err
	}
	return entry, nil
}

// ApplySolve folds one first-time solve into every applicable period bucket,
// inserting seeded entries where none exist yet. All buckets move in one
// transaction so a crash cannot leave the windows disagreeing.
func (r *leaderboardRepository) ApplySolve(ctx context.Context, userID uint, periods []string, points, xp int, difficulty string) error {
	return dbFor(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		for _, period := range periods {
			var entry models.LeaderboardEntry
			err := tx.Where("user_id = ? AND period = ?", userID, period).First(&entry).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				entry = models.LeaderboardEntry{UserID: userID, Period: period}
				entry.AddSolve(points, xp, difficulty)
				if err := tx.Create(&entry).Error; err != nil {
					return err
				}
			case err != nil:
				return err
			default:
				entry.AddSolve(points, xp, difficulty)
				if err := tx.Save(&entry).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// TopByPoints returns the period's entries sorted descending by points. Ties
// fall back to total solved then stable id order.
func (r *leaderboardRepository) TopByPoints(ctx context.Context, period string, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}

	var entries []models.LeaderboardEntry
	err := dbFor(ctx, r.db).
		Where("period = ?", period).
		Order("total_points DESC, total_solved DESC, id ASC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
