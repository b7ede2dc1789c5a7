package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kidlearn-api/internal/dto"
	"github.com/noah-isme/kidlearn-api/internal/models"
)

func newAccessFixture(t *testing.T) (*accessService, *memoryAccessRepo, *memoryUserRepo) {
	t.Helper()
	accessRepo := newMemoryAccessRepo()
	userRepo := newMemoryUserRepo()
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewAccessService(accessRepo, userRepo, passthroughTx{}, validate, 25, zerolog.Nop()).(*accessService)
	svc.now = func() time.Time { return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) }
	return svc, accessRepo, userRepo
}

func TestRedeemCodeGrantsPro(t *testing.T) {
	svc, accessRepo, userRepo := newAccessFixture(t)

	user := models.User{Name: "Ana", Email: "ana@example.com"}
	require.NoError(t, userRepo.Create(context.Background(), &user))

	code := models.AccessCode{Code: "SPRING30", DurationDays: 30, MaxRedemptions: 5}
	require.NoError(t, accessRepo.CreateCode(context.Background(), &code))

	response, err := svc.RedeemCode(context.Background(), user.ID, dto.RedeemCodeRequest{Code: "spring30"})
	require.NoError(t, err)
	require.True(t, response.IsPro)
	require.Equal(t, time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC), response.ProExpiresAt)

	updated, err := userRepo.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.True(t, updated.IsPro)

	stored, err := accessRepo.GetCode(context.Background(), "SPRING30")
	require.NoError(t, err)
	require.Equal(t, 1, stored.Redemptions)
}

func TestRedeemCodeStacksOnActivePro(t *testing.T) {
	svc, accessRepo, userRepo := newAccessFixture(t)

	currentExpiry := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	user := models.User{Name: "Ben", Email: "ben@example.com", IsPro: true, ProExpiresAt: &currentExpiry}
	require.NoError(t, userRepo.Create(context.Background(), &user))

	code := models.AccessCode{Code: "EXTEND7", DurationDays: 7, MaxRedemptions: 1}
	require.NoError(t, accessRepo.CreateCode(context.Background(), &code))

	response, err := svc.RedeemCode(context.Background(), user.ID, dto.RedeemCodeRequest{Code: "EXTEND7"})
	require.NoError(t, err)
	require.Equal(t, currentExpiry.AddDate(0, 0, 7), response.ProExpiresAt)
}

func TestRedeemCodeTwiceConflicts(t *testing.T) {
	svc, accessRepo, userRepo := newAccessFixture(t)

	user := models.User{Name: "Cas", Email: "cas@example.com"}
	require.NoError(t, userRepo.Create(context.Background(), &user))

	code := models.AccessCode{Code: "ONCE", DurationDays: 7, MaxRedemptions: 5}
	require.NoError(t, accessRepo.CreateCode(context.Background(), &code))

	_, err := svc.RedeemCode(context.Background(), user.ID, dto.RedeemCodeRequest{Code: "ONCE"})
	require.NoError(t, err)

	_, err = svc.RedeemCode(context.Background(), user.ID, dto.RedeemCodeRequest{Code: "ONCE"})
	require.ErrorIs(t, err, ErrCodeAlreadyRedeemed)
}

func TestRedeemCodeExhaustedOrExpired(t *testing.T) {
	svc, accessRepo, userRepo := newAccessFixture(t)

	user := models.User{Name: "Dee", Email: "dee@example.com"}
	require.NoError(t, userRepo.Create(context.Background(), &user))

	exhausted := models.AccessCode{Code: "FULL", DurationDays: 7, MaxRedemptions: 1, Redemptions: 1}
	require.NoError(t, accessRepo.CreateCode(context.Background(), &exhausted))

	_, err := svc.RedeemCode(context.Background(), user.ID, dto.RedeemCodeRequest{Code: "FULL"})
	require.ErrorIs(t, err, ErrCodeNotRedeemable)

	past := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	expired := models.AccessCode{Code: "OLD", DurationDays: 7, MaxRedemptions: 5, ExpiresAt: &past}
	require.NoError(t, accessRepo.CreateCode(context.Background(), &expired))

	_, err = svc.RedeemCode(context.Background(), user.ID, dto.RedeemCodeRequest{Code: "OLD"})
	require.ErrorIs(t, err, ErrCodeNotRedeemable)
}

func TestRedeemCodeUnknown(t *testing.T) {
	svc, _, userRepo := newAccessFixture(t)

	user := models.User{Name: "Eli", Email: "eli@example.com"}
	require.NoError(t, userRepo.Create(context.Background(), &user))

	_, err := svc.RedeemCode(context.Background(), user.ID, dto.RedeemCodeRequest{Code: "NOPE"})
	require.ErrorIs(t, err, ErrCodeNotFound)
}

func TestApplyReferralCreditsBothSides(t *testing.T) {
	svc, _, userRepo := newAccessFixture(t)

	referrer := models.User{Name: "Ana", Email: "ana@example.com", ReferralCode: "ANA-REF"}
	require.NoError(t, userRepo.Create(context.Background(), &referrer))
	referred := models.User{Name: "Ben", Email: "ben@example.com"}
	require.NoError(t, userRepo.Create(context.Background(), &referred))

	response, err := svc.ApplyReferral(context.Background(), referred.ID, dto.ApplyReferralRequest{ReferralCode: "ANA-REF"})
	require.NoError(t, err)
	require.Equal(t, referrer.ID, response.ReferrerID)
	require.Equal(t, 25, response.XPBonus)

	updatedReferrer, err := userRepo.GetByID(context.Background(), referrer.ID)
	require.NoError(t, err)
	require.Equal(t, 25, updatedReferrer.XP)

	updatedReferred, err := userRepo.GetByID(context.Background(), referred.ID)
	require.NoError(t, err)
	require.Equal(t, 25, updatedReferred.XP)
}

func TestApplyReferralOnlyOnce(t *testing.T) {
	svc, _, userRepo := newAccessFixture(t)

	referrer := models.User{Name: "Ana", Email: "ana@example.com", ReferralCode: "ANA-REF"}
	require.NoError(t, userRepo.Create(context.Background(), &referrer))
	other := models.User{Name: "Cas", Email: "cas@example.com", ReferralCode: "CAS-REF"}
	require.NoError(t, userRepo.Create(context.Background(), &other))
	referred := models.User{Name: "Ben", Email: "ben@example.com"}
	require.NoError(t, userRepo.Create(context.Background(), &referred))

	_, err := svc.ApplyReferral(context.Background(), referred.ID, dto.ApplyReferralRequest{ReferralCode: "ANA-REF"})
	require.NoError(t, err)

	_, err = svc.ApplyReferral(context.Background(), referred.ID, dto.ApplyReferralRequest{ReferralCode: "CAS-REF"})
	require.ErrorIs(t, err, ErrAlreadyReferred)
}

func TestApplyReferralSelfRejected(t *testing.T) {
	svc, _, userRepo := newAccessFixture(t)

	user := models.User{Name: "Ana", Email: "ana@example.com", ReferralCode: "ANA-REF"}
	require.NoError(t, userRepo.Create(context.Background(), &user))

	_, err := svc.ApplyReferral(context.Background(), user.ID, dto.ApplyReferralRequest{ReferralCode: "ANA-REF"})
	require.ErrorIs(t, err, ErrSelfReferral)
}

func TestCreateCodeGeneratesUppercaseCode(t *testing.T) {
	svc, accessRepo, _ := newAccessFixture(t)
	svc.generateCode = func() string { return "GENERATEDCODE123" }

	response, err := svc.CreateCode(context.Background(), 9, dto.AccessCodeCreateRequest{DurationDays: 14, MaxRedemptions: 3})
	require.NoError(t, err)
	require.Equal(t, "GENERATEDCODE123", response.Code)
	require.Equal(t, 14, response.DurationDays)

	stored, err := accessRepo.GetCode(context.Background(), "GENERATEDCODE123")
	require.NoError(t, err)
	require.Equal(t, uint(9), stored.CreatedBy)
	require.Equal(t, 3, stored.MaxRedemptions)
}
