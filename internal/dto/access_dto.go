package dto

import "time"

// RedeemCodeRequest is the payload for redeeming a PRO voucher.
type RedeemCodeRequest struct {
	Code string `json:"code" validate:"required,max=64"`
}

// RedeemCodeResponse reports the PRO entitlement after redemption.
type RedeemCodeResponse struct {
	IsPro        bool      `json:"is_pro"`
	ProExpiresAt time.Time `json:"pro_expires_at"`
}

// ApplyReferralRequest links a new user to the referrer whose code they used.
type ApplyReferralRequest struct {
	ReferralCode string `json:"referral_code" validate:"required,max=64"`
}

// ApplyReferralResponse reports the bonus granted to both sides.
type ApplyReferralResponse struct {
	ReferrerID uint `json:"referrer_id"`
	XPBonus    int  `json:"xp_bonus"`
}
