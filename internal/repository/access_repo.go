package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/kidlearn-api/internal/models"
)

// AccessRepository exposes persistence helpers for PRO access codes,
// redemptions and referrals.
type AccessRepository interface {
	CreateCode(ctx context.Context, code *models.AccessCode) error
	GetCode(ctx context.Context, code string) (models.AccessCode, error)
	ListCodes(ctx context.Context) ([]models.AccessCode, error)
	IncrementRedemptions(ctx context.Context, codeID uint) error

	CreateRedemption(ctx context.Context, redemption *models.CodeRedemption) error
	GetRedemption(ctx context.Context, userID, codeID uint) (models.CodeRedemption, error)

	CreateReferral(ctx context.Context, referral *models.Referral) error
	GetReferralByReferred(ctx context.Context, referredID uint) (models.Referral, error)
}

// NewAccessRepository constructs an access repository.
func NewAccessRepository(db *gorm.DB) AccessRepository {
	return &accessRepository{db: db}
}

type accessRepository struct {
	db *gorm.DB
}

func (r *accessRepository) CreateCode(ctx context.Context, code *models.AccessCode) error {
	return dbFor(ctx, r.db).Create(code).Error
}

func (r *accessRepository) GetCode(ctx context.Context, code string) (models.AccessCode, error) {
	var record models.AccessCode
	if err := dbFor(ctx, r.db).Where("code = ?", code).First(&record).Error; err != nil {
		return models.AccessCode{}, err
	}
	return record, nil
}

func (r *accessRepository) ListCodes(ctx context.Context) ([]models.AccessCode, error) {
	var codes []models.AccessCode
	if err := dbFor(ctx, r.db).Order("id DESC").Find(&codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

func (r *accessRepository) IncrementRedemptions(ctx context.Context, codeID uint) error {
	return dbFor(ctx, r.db).
		Model(&models.AccessCode{}).
		Where("id = ?", codeID).
		UpdateColumn("redemptions", gorm.Expr("redemptions + 1")).Error
}

func (r *accessRepository) CreateRedemption(ctx context.Context, redemption *models.CodeRedemption) error {
	return dbFor(ctx, r.db).Create(redemption).Error
}

func (r *accessRepository) GetRedemption(ctx context.Context, userID, codeID uint) (models.CodeRedemption, error) {
	var redemption models.CodeRedemption
	err := dbFor(ctx, r.db).
		Where("user_id = ? AND code_id = ?", userID, codeID).
		First(&redemption).Error
	if err != nil {
		return models.CodeRedemption{}, err
	}
	return redemption, nil
}

func (r *accessRepository) CreateReferral(ctx context.Context, referral *models.Referral) error {
	return dbFor(ctx, r.db).Create(referral).Error
}

func (r *accessRepository) GetReferralByReferred(ctx context.Context, referredID uint) (models.Referral, error) {
	var referral models.Referral
	err := dbFor(ctx, r.db).
		Where("referred_id = ?", referredID).
		First(&referral).Error
	if err != nil {
		return models.Referral{}, err
	}
	return referral, nil
}
