package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/kidlearn-api/internal/models"
)

// ChallengeSubmissionRepository exposes persistence helpers for coding
// challenge submissions.
type ChallengeSubmissionRepository interface {
	Create(ctx context.Context, submission *models.ChallengeSubmission) error
	GetByID(ctx context.Context, id uint) (models.ChallengeSubmission, error)
	Update(ctx context.Context, submission *models.ChallengeSubmission) error
	ListByUserAndChallenge(ctx context.Context, userID, challengeID uint) ([]models.ChallengeSubmission, error)
	ListByUser(ctx context.Context, userID uint, limit int) ([]models.ChallengeSubmission, error)
}

// NewChallengeSubmissionRepository constructs a challenge submission repository.
func NewChallengeSubmissionRepository(db *gorm.DB) ChallengeSubmissionRepository {
	return &challengeSubmissionRepository{db: db}
}

type challengeSubmissionRepository struct {
	db *gorm.DB
}

func (r *challengeSubmissionRepository) Create(ctx context.Context, submission *models.ChallengeSubmission) error {
	return dbFor(ctx, r.db).Create(submission).Error
}

func (r *challengeSubmissionRepository) GetByID(ctx context.Context, id uint) (models.ChallengeSubmission, error) {
	var submission models.ChallengeSubmission
	if err := dbFor(ctx, r.db).First(&submission, id).Error; err != nil {
		return models.ChallengeSubmission{}, err
	}
	return submission, nil
}

func (r *challengeSubmissionRepository) Update(ctx context.Context, submission *models.ChallengeSubmission) error {
	return dbFor(ctx, r.db).Save(submission).Error
}

func (r *challengeSubmissionRepository) ListByUserAndChallenge(ctx context.Context, userID, challengeID uint) ([]models.ChallengeSubmission, error) {
	var submissions []models.ChallengeSubmission
	err := dbFor(ctx, r.db).
		Where("user_id = ? AND challenge_id = ?", userID, challengeID).
		Order("submitted_at DESC").
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *challengeSubmissionRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]models.ChallengeSubmission, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var submissions []models.ChallengeSubmission
	err := dbFor(ctx, r.db).
		Where("user_id = ?", userID).
		Order("submitted_at DESC").
		Limit(limit).
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}
	return submissions, nil
}
