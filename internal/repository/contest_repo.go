package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/kidlearn-api/internal/models"
)

// ContestRepository exposes persistence helpers for contests and entries.
type ContestRepository interface {
	Create(ctx context.Context, contest *models.Contest) error
	GetByID(ctx context.Context, id uint) (models.Contest, error)
	List(ctx context.Context) ([]models.Contest, error)
	Update(ctx context.Context, contest *models.Contest) error
	Delete(ctx context.Context, id uint) error
	MarkPublished(ctx context.Context, id uint) error

	CreateEntry(ctx context.Context, entry *models.ContestEntry) error
	GetEntry(ctx context.Context, userID, contestID uint) (models.ContestEntry, error)
	GetEntryByID(ctx context.Context, id uint) (models.ContestEntry, error)
	ListEvaluatedEntries(ctx context.Context, contestID uint) ([]models.ContestEntry, error)
	UpdateEntry(ctx context.Context, entry *models.ContestEntry) error
}

// NewContestRepository constructs a contest repository.
func NewContestRepository(db *gorm.DB) ContestRepository {
	return &contestRepository{db: db}
}

type contestRepository struct {
	db *gorm.DB
}

func (r *contestRepository) Create(ctx context.Context, contest *models.Contest) error {
	return dbFor(ctx, r.db).Create(contest).Error
}

func (r *contestRepository) GetByID(ctx context.Context, id uint) (models.Contest, error) {
	var contest models.Contest
	if err := dbFor(ctx, r.db).First(&contest, id).Error; err != nil {
		return models.Contest{}, err
	}
	return contest, nil
}

func (r *contestRepository) List(ctx context.Context) ([]models.Contest, error) {
	var contests []models.Contest
	if err := dbFor(ctx, r.db).Order("id DESC").Find(&contests).Error; err != nil {
		return nil, err
	}
	return contests, nil
}

func (r *contestRepository) Update(ctx context.Context, contest *models.Contest) error {
	return dbFor(ctx, r.db).Save(contest).Error
}

func (r *contestRepository) Delete(ctx context.Context, id uint) error {
	return dbFor(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("contest_id = ?", id).Delete(&models.ContestEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("item_type = ? AND item_id = ?", models.ItemTypeContest, id).Delete(&models.Progress{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Contest{}, id).Error
	})
}

func (r *contestRepository) MarkPublished(ctx context.Context, id uint) error {
	return dbFor(ctx, r.db).
		Model(&models.Contest{}).
		Where("id = ?", id).
		UpdateColumn("is_results_published", true).Error
}

func (r *contestRepository) CreateEntry(ctx context.Context, entry *models.ContestEntry) error {
	return dbFor(ctx, r.db).Create(entry).Error
}

func (r *contestRepository) GetEntry(ctx context.Context, userID, contestID uint) (models.ContestEntry, error) {
	var entry models.ContestEntry
	err := dbFor(ctx, r.db).
		Where("user_id = ? AND contest_id = ?", userID, contestID).
		First(&entry).Error
	if err != nil {
		return models.ContestEntry{}, err
	}
	return entry, nil
}

func (r *contestRepository) GetEntryByID(ctx context.Context, id uint) (models.ContestEntry, error) {
	var entry models.ContestEntry
	if err := dbFor(ctx, r.db).First(&entry, id).Error; err != nil {
		return models.ContestEntry{}, err
	}
	return entry, nil
}

// ListEvaluatedEntries returns graded entries ordered by marks descending,
// the order ranks are assigned in. Ties keep stable id order.
func (r *contestRepository) ListEvaluatedEntries(ctx context.Context, contestID uint) ([]models.ContestEntry, error) {
	var entries []models.ContestEntry
	err := dbFor(ctx, r.db).
		Where("contest_id = ? AND marks IS NOT NULL", contestID).
		Order("marks DESC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *contestRepository) UpdateEntry(ctx context.Context, entry *models.ContestEntry) error {
	return dbFor(ctx, r.db).Save(entry).Error
}
