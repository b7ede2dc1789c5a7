package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/kidlearn-api/internal/models"
)

// ChallengeQuery filters coding challenge listings.
type ChallengeQuery struct {
	Difficulty string
	Group      string
	Page       int
	PageSize   int
}

// ChallengeRepository exposes persistence helpers for coding challenges and
// their test cases.
type ChallengeRepository interface {
	Create(ctx context.Context, challenge *models.CodingChallenge) error
	GetByID(ctx context.Context, id uint) (models.CodingChallenge, error)
	List(ctx context.Context, query ChallengeQuery) ([]models.CodingChallenge, int64, error)
	Update(ctx context.Context, challenge *models.CodingChallenge) error
	Delete(ctx context.Context, id uint) error
	IncrementTotalSubmissions(ctx context.Context, id uint) error
	HasGradedSubmissions(ctx context.Context, id uint) (bool, error)
	ReplaceTestCases(ctx context.Context, challengeID uint, cases []models.ChallengeTestCase) error
}

// NewChallengeRepository constructs a challenge repository.
func NewChallengeRepository(db *gorm.DB) ChallengeRepository {
	return &challengeRepository{db: db}
}

type challengeRepository struct {
	db *gorm.DB
}

func (r *challengeRepository) Create(ctx context.Context, challenge *models.CodingChallenge) error {
	return dbFor(ctx, r.db).Create(challenge).Error
}

func (r *challengeRepository) GetByID(ctx context.Context, id uint) (models.CodingChallenge, error) {
	var challenge models.CodingChallenge
	err := dbFor(ctx, r.db).
		Preload("TestCases", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&challenge, id).Error
	if err != nil {
		return models.CodingChallenge{}, err
	}
	return challenge, nil
}

func (r *challengeRepository) List(ctx context.Context, query ChallengeQuery) ([]models.CodingChallenge, int64, error) {
	base := dbFor(ctx, r.db).Model(&models.CodingChallenge{})
	if query.Difficulty != "" {
		base = base.Where("difficulty = ?", query.Difficulty)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	var challenges []models.CodingChallenge
	err := base.
		Order("id ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&challenges).Error
	if err != nil {
		return nil, 0, err
	}
	return challenges, total, nil
}

func (r *challengeRepository) Update(ctx context.Context, challenge *models.CodingChallenge) error {
	return dbFor(ctx, r.db).Save(challenge).Error
}

// Delete removes the challenge together with its test cases, submissions and
// progress rows. Weak references do not cascade on their own, so every
// dependent table is cleared explicitly inside one transaction.
func (r *challengeRepository) Delete(ctx context.Context, id uint) error {
	return dbFor(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("coding_challenge_id = ?", id).Delete(&models.ChallengeTestCase{}).Error; err != nil {
			return err
		}
		if err := tx.Where("challenge_id = ?", id).Delete(&models.ChallengeSubmission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("item_type = ? AND item_id = ?", models.ItemTypeChallenge, id).Delete(&models.Progress{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.CodingChallenge{}, id).Error
	})
}

func (r *challengeRepository) IncrementTotalSubmissions(ctx context.Context, id uint) error {
	return dbFor(ctx, r.db).
		Model(&models.CodingChallenge{}).
		Where("id = ?", id).
		UpdateColumn("total_submissions", gorm.Expr("total_submissions + 1")).Error
}

// HasGradedSubmissions reports whether any submission for the challenge has
// reached a terminal status. Reward amounts are locked once this is true.
func (r *challengeRepository) HasGradedSubmissions(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := dbFor(ctx, r.db).
		Model(&models.ChallengeSubmission{}).
		Where("challenge_id = ? AND status NOT IN ?", id, []string{models.SubmissionStatusPending, models.SubmissionStatusRunning}).
		Count(&count).Error
	return count > 0, err
}

func (r *challengeRepository) ReplaceTestCases(ctx context.Context, challengeID uint, cases []models.ChallengeTestCase) error {
	return dbFor(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("coding_challenge_id = ?", challengeID).Delete(&models.ChallengeTestCase{}).Error; err != nil {
			return err
		}
		if len(cases) == 0 {
			return nil
		}
		for i := range cases {
			cases[i].CodingChallengeID = challengeID
			cases[i].Position = i
		}
		return tx.Create(&cases).Error
	})
}
