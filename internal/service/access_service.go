package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/kidlearn-api/internal/dto"
	"github.com/noah-isme/kidlearn-api/internal/models"
	"github.com/noah-isme/kidlearn-api/internal/observability"
	"github.com/noah-isme/kidlearn-api/internal/repository"
)

// ErrCodeNotFound indicates no access code matches the input.
var ErrCodeNotFound = errors.New("access code not found")

// ErrCodeNotRedeemable indicates the code is expired or fully redeemed.
var ErrCodeNotRedeemable = errors.New("access code not redeemable")

// ErrCodeAlreadyRedeemed indicates this user already redeemed the code.
var ErrCodeAlreadyRedeemed = errors.New("access code already redeemed")

// ErrReferralNotFound indicates no user owns the referral code.
var ErrReferralNotFound = errors.New("referral code not found")

// ErrAlreadyReferred indicates the user was already counted as referred.
var ErrAlreadyReferred = errors.New("referral already applied")

// ErrSelfReferral indicates a user tried to refer themselves.
var ErrSelfReferral = errors.New("cannot apply own referral code")

// AccessService covers PRO vouchers and referral bonuses.
type AccessService interface {
	RedeemCode(ctx context.Context, userID uint, payload dto.RedeemCodeRequest) (dto.RedeemCodeResponse, error)
	ApplyReferral(ctx context.Context, userID uint, payload dto.ApplyReferralRequest) (dto.ApplyReferralResponse, error)
	CreateCode(ctx context.Context, adminID uint, payload dto.AccessCodeCreateRequest) (dto.AccessCodeResponse, error)
	ListCodes(ctx context.Context) ([]dto.AccessCodeResponse, error)
}

type accessService struct {
	access       repository.AccessRepository
	users        repository.UserRepository
	tx           repository.TxManager
	validator    *validator.Validate
	logger       zerolog.Logger
	referralXP   int
	now          func() time.Time
	generateCode func() string
}

// NewAccessService constructs the access service. referralXP is the bonus
// credited to each side of a successful referral.
func NewAccessService(
	accessRepo repository.AccessRepository,
	userRepo repository.UserRepository,
	tx repository.TxManager,
	validate *validator.Validate,
	referralXP int,
	logger zerolog.Logger,
) AccessService {
	return &accessService{
		access:     accessRepo,
		users:      userRepo,
		tx:         tx,
		validator:  validate,
		referralXP: referralXP,
		logger:     logger.With().Str("component", "access_service").Logger(),
		now:        time.Now,
		generateCode: func() string {
			return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:16])
		},
	}
}

// RedeemCode applies a PRO voucher. The extension stacks: it is added to
// the current expiry when PRO is still active, and to now otherwise.
func (s *accessService) RedeemCode(ctx context.Context, userID uint, payload dto.RedeemCodeRequest) (dto.RedeemCodeResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.RedeemCodeResponse{}, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RedeemCodeResponse{}, ErrUserNotFound
		}
		return dto.RedeemCodeResponse{}, err
	}

	code, err := s.access.GetCode(ctx, strings.ToUpper(strings.TrimSpace(payload.Code)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RedeemCodeResponse{}, ErrCodeNotFound
		}
		return dto.RedeemCodeResponse{}, err
	}

	now := s.now().UTC()
	if !code.IsRedeemable(now) {
		return dto.RedeemCodeResponse{}, ErrCodeNotRedeemable
	}

	if _, err := s.access.GetRedemption(ctx, userID, code.ID); err == nil {
		return dto.RedeemCodeResponse{}, ErrCodeAlreadyRedeemed
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.RedeemCodeResponse{}, err
	}

	base := now
	if user.IsProActive(now) && user.ProExpiresAt != nil && user.ProExpiresAt.After(now) {
		base = *user.ProExpiresAt
	}
	expiry := base.AddDate(0, 0, code.DurationDays)

	user.IsPro = true
	user.ProExpiresAt = &expiry

	err = s.tx.Do(ctx, func(ctx context.Context) error {
		redemption := models.CodeRedemption{CodeID: code.ID, UserID: userID, RedeemedAt: now}
		if err := s.access.CreateRedemption(ctx, &redemption); err != nil {
			return err
		}
		if err := s.access.IncrementRedemptions(ctx, code.ID); err != nil {
			return err
		}
		return s.users.Update(ctx, &user)
	})
	if err != nil {
		// The unique (user, code) index closes the double-redeem race.
		if _, getErr := s.access.GetRedemption(ctx, userID, code.ID); getErr == nil {
			return dto.RedeemCodeResponse{}, ErrCodeAlreadyRedeemed
		}
		return dto.RedeemCodeResponse{}, err
	}

	s.logger.Info().
		Uint("user_id", userID).
		Uint("code_id", code.ID).
		Time("pro_expires_at", expiry).
		Msg("access code redeemed")

	return dto.RedeemCodeResponse{IsPro: true, ProExpiresAt: expiry}, nil
}

// ApplyReferral credits the referral bonus to both the referrer and the
// referred user. Each user can be referred at most once, enforced by the
// unique index on the referred column.
func (s *accessService) ApplyReferral(ctx context.Context, userID uint, payload dto.ApplyReferralRequest) (dto.ApplyReferralResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ApplyReferralResponse{}, err
	}

	if _, err := s.access.GetReferralByReferred(ctx, userID); err == nil {
		return dto.ApplyReferralResponse{}, ErrAlreadyReferred
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.ApplyReferralResponse{}, err
	}

	referrer, err := s.users.GetByReferralCode(ctx, strings.TrimSpace(payload.ReferralCode))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ApplyReferralResponse{}, ErrReferralNotFound
		}
		return dto.ApplyReferralResponse{}, err
	}

	if referrer.ID == userID {
		return dto.ApplyReferralResponse{}, ErrSelfReferral
	}

	referral := models.Referral{
		ReferrerID: referrer.ID,
		ReferredID: userID,
		XPBonus:    s.referralXP,
		CreatedAt:  s.now().UTC(),
	}

	err = s.tx.Do(ctx, func(ctx context.Context) error {
		if err := s.access.CreateReferral(ctx, &referral); err != nil {
			return err
		}
		if err := s.users.AddXP(ctx, referrer.ID, s.referralXP); err != nil {
			return err
		}
		return s.users.AddXP(ctx, userID, s.referralXP)
	})
	if err != nil {
		if _, getErr := s.access.GetReferralByReferred(ctx, userID); getErr == nil {
			return dto.ApplyReferralResponse{}, ErrAlreadyReferred
		}
		return dto.ApplyReferralResponse{}, err
	}

	observability.XPAwarded().WithLabelValues("referral").Add(float64(2 * s.referralXP))
	s.logger.Info().
		Uint("referrer_id", referrer.ID).
		Uint("referred_id", userID).
		Int("xp_bonus", s.referralXP).
		Msg("referral applied")

	return dto.ApplyReferralResponse{ReferrerID: referrer.ID, XPBonus: s.referralXP}, nil
}

func (s *accessService) CreateCode(ctx context.Context, adminID uint, payload dto.AccessCodeCreateRequest) (dto.AccessCodeResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AccessCodeResponse{}, err
	}

	code := models.AccessCode{
		Code:           s.generateCode(),
		DurationDays:   payload.DurationDays,
		MaxRedemptions: payload.MaxRedemptions,
		ExpiresAt:      payload.ExpiresAt,
		CreatedBy:      adminID,
		CreatedAt:      s.now().UTC(),
	}
	if code.MaxRedemptions <= 0 {
		code.MaxRedemptions = 1
	}

	if err := s.access.CreateCode(ctx, &code); err != nil {
		return dto.AccessCodeResponse{}, err
	}

	s.logger.Info().Uint("code_id", code.ID).Uint("admin_id", adminID).Msg("access code created")
	return dto.NewAccessCodeResponse(code), nil
}

func (s *accessService) ListCodes(ctx context.Context) ([]dto.AccessCodeResponse, error) {
	codes, err := s.access.ListCodes(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.AccessCodeResponse, 0, len(codes))
	for _, code := range codes {
		responses = append(responses, dto.NewAccessCodeResponse(code))
	}
	return responses, nil
}
