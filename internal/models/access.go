package models

import "time"

// AccessCode is an admin-issued PRO voucher. Redeeming it extends the
// redeemer's PRO entitlement by DurationDays.
type AccessCode struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Code           string     `gorm:"size:64;uniqueIndex;not null" json:"code"`
	DurationDays   int        `gorm:"not null" json:"duration_days"`
	MaxRedemptions int        `gorm:"not null;default:1" json:"max_redemptions"`
	Redemptions    int        `gorm:"not null;default:0" json:"redemptions"`
	ExpiresAt      *time.Time `json:"expires_at"`
	CreatedBy      uint       `gorm:"not null" json:"created_by"`
	CreatedAt      time.Time  `json:"created_at"`
}

// IsRedeemable reports whether the code can still be redeemed at now.
func (c AccessCode) IsRedeemable(now time.Time) bool {
	if c.ExpiresAt != nil && !now.Before(*c.ExpiresAt) {
		return false
	}
	return c.Redemptions < c.MaxRedemptions
}

// CodeRedemption records one user's redemption of a code. CodeID is a weak
// reference; deleting the code does not delete redemption history.
type CodeRedemption struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CodeID     uint      `gorm:"not null;uniqueIndex:idx_redemptions_user_code" json:"code_id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_redemptions_user_code" json:"user_id"`
	RedeemedAt time.Time `json:"redeemed_at"`
}

// Referral records a successful referral. ReferredID is unique so a new
// user can only ever be counted once.
type Referral struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ReferrerID uint      `gorm:"not null;index" json:"referrer_id"`
	ReferredID uint      `gorm:"not null;uniqueIndex" json:"referred_id"`
	XPBonus    int       `gorm:"not null;default:0" json:"xp_bonus"`
	CreatedAt  time.Time `json:"created_at"`
}
