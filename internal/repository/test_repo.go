package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/kidlearn-api/internal/models"
)

// TestRepository exposes persistence helpers for weekly tests and their
// submissions.
type TestRepository interface {
	Create(ctx context.Context, test *models.WeeklyTest) error
	GetByID(ctx context.Context, id uint) (models.WeeklyTest, error)
	List(ctx context.Context) ([]models.WeeklyTest, error)
	Update(ctx context.Context, test *models.WeeklyTest) error
	Delete(ctx context.Context, id uint) error
	MarkPublished(ctx context.Context, id uint) error

	CreateSubmission(ctx context.Context, submission *models.TestSubmission) error
	GetSubmission(ctx context.Context, userID, testID uint) (models.TestSubmission, error)
	ListSubmissions(ctx context.Context, testID uint) ([]models.TestSubmission, error)
	UpdateSubmission(ctx context.Context, submission *models.TestSubmission) error
}

// NewTestRepository constructs a weekly test repository.
func NewTestRepository(db *gorm.DB) TestRepository {
	return &testRepository{db: db}
}

type testRepository struct {
	db *gorm.DB
}

func (r *testRepository) Create(ctx context.Context, test *models.WeeklyTest) error {
	return dbFor(ctx, r.db).Create(test).Error
}

func (r *testRepository) GetByID(ctx context.Context, id uint) (models.WeeklyTest, error) {
	var test models.WeeklyTest
	if err := dbFor(ctx, r.db).First(&test, id).Error; err != nil {
		return models.WeeklyTest{}, err
	}
	return test, nil
}

func (r *testRepository) List(ctx context.Context) ([]models.WeeklyTest, error) {
	var tests []models.WeeklyTest
	if err := dbFor(ctx, r.db).Order("id DESC").Find(&tests).Error; err != nil {
		return nil, err
	}
	return tests, nil
}

func (r *testRepository) Update(ctx context.Context, test *models.WeeklyTest) error {
	return dbFor(ctx, r.db).Save(test).Error
}

// Delete removes a test together with its submissions and progress rows in
// one transaction.
func (r *testRepository) Delete(ctx context.Context, id uint) error {
	return dbFor(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("test_id = ?", id).Delete(&models.TestSubmission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("item_type = ? AND item_id = ?", models.ItemTypeTest, id).Delete(&models.Progress{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.WeeklyTest{}, id).Error
	})
}

func (r *testRepository) MarkPublished(ctx context.Context, id uint) error {
	return dbFor(ctx, r.db).
		Model(&models.WeeklyTest{}).
		Where("id = ?", id).
		UpdateColumn("is_results_published", true).Error
}

func (r *testRepository) CreateSubmission(ctx context.Context, submission *models.TestSubmission) error {
	return dbFor(ctx, r.db).Create(submission).Error
}

func (r *testRepository) GetSubmission(ctx context.Context, userID, testID uint) (models.TestSubmission, error) {
	var submission models.TestSubmission
	err := dbFor(ctx, r.db).
		Where("user_id = ? AND test_id = ?", userID, testID).
		First(&submission).Error
	if err != nil {
		return models.TestSubmission{}, err
	}
	return submission, nil
}

// ListSubmissions returns every submission for a test ordered by score
// descending with time taken as the tie-break, the order ranks are assigned
// in.
func (r *testRepository) ListSubmissions(ctx context.Context, testID uint) ([]models.TestSubmission, error) {
	var submissions []models.TestSubmission
	err := dbFor(ctx, r.db).
		Where("test_id = ?", testID).
		Order("score DESC, time_taken_seconds ASC, id ASC").
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *testRepository) UpdateSubmission(ctx context.Context, submission *models.TestSubmission) error {
	return dbFor(ctx, r.db).Save(submission).Error
}
