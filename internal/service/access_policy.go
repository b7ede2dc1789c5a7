package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/noah-isme/kidlearn-api/internal/models"
)

// ErrAccessDenied is the base error for every denied item access. Handlers
// surface the wrapped reason string to the end user.
var ErrAccessDenied = errors.New("access denied")

// itemAccessPolicy captures the gate every assessable item applies before a
// submission is accepted.
type itemAccessPolicy struct {
	Groups    []string
	ProOnly   bool
	LiveAt    *time.Time
	ExpiresAt *time.Time
}

// checkItemAccess enforces suspension, cohort membership, PRO entitlement
// and the scheduling window, in that order. The first failing gate wins.
//
// Groups is preferred; older rows carried a single group string, so an empty
// slice falls back to that legacy field and an entirely empty policy admits
// every cohort.
func checkItemAccess(user models.User, policy itemAccessPolicy, legacyGroup string, now time.Time) error {
	if user.IsSuspended {
		return fmt.Errorf("%w: account suspended", ErrAccessDenied)
	}

	groups := policy.Groups
	if len(groups) == 0 && legacyGroup != "" {
		groups = []string{legacyGroup}
	}
	if len(groups) > 0 && !containsGroup(groups, user.Group) {
		return fmt.Errorf("%w: not available for group %q", ErrAccessDenied, user.Group)
	}

	if policy.ProOnly && !user.IsProActive(now) {
		return fmt.Errorf("%w: PRO subscription required", ErrAccessDenied)
	}

	if policy.LiveAt != nil && now.Before(*policy.LiveAt) {
		return fmt.Errorf("%w: not open yet", ErrAccessDenied)
	}
	if policy.ExpiresAt != nil && !now.Before(*policy.ExpiresAt) {
		return fmt.Errorf("%w: closed", ErrAccessDenied)
	}

	return nil
}

func containsGroup(groups []string, group string) bool {
	for _, g := range groups {
		if g == group {
			return true
		}
	}
	return false
}
