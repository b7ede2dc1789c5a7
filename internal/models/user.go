package models

import "time"

// Group cohorts a learner can belong to.
const (
	GroupJunior   = "junior"
	GroupExplorer = "explorer"
	GroupMaster   = "master"
)

// User represents a learner profile. Identity is resolved by the external
// auth provider; this record only carries what the learning core needs.
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Name         string     `gorm:"size:255;not null" json:"name"`
	Email        string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Group        string     `gorm:"size:32;not null;default:junior" json:"group"`
	XP           int        `gorm:"not null;default:0" json:"xp"`
	IsPro        bool       `gorm:"not null;default:false" json:"is_pro"`
	ProExpiresAt *time.Time `json:"pro_expires_at"`
	IsSuspended  bool       `gorm:"not null;default:false" json:"is_suspended"`
	ReferralCode string     `gorm:"size:64;uniqueIndex" json:"referral_code"`
	ReferredBy   *uint      `json:"referred_by"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Level derives the user's level from accumulated XP: floor(xp/100)+1.
func (u User) Level() int {
	if u.XP < 0 {
		return 1
	}
	return u.XP/100 + 1
}

// IsProActive reports whether the user holds a PRO entitlement at the given
// instant. A missing expiry on an active flag means a non-expiring grant.
func (u User) IsProActive(now time.Time) bool {
	if !u.IsPro {
		return false
	}
	if u.ProExpiresAt == nil {
		return true
	}
	return now.Before(*u.ProExpiresAt)
}
