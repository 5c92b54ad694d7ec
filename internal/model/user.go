package model

import (
	"context"
	"time"
)

// UserStore defines persistence operations for user accounts.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (User, error)
	Create(ctx context.Context, user User) (User, error)
	SetPremium(ctx context.Context, id int64, since, expiry time.Time) error
	ClearPremium(ctx context.Context, id int64) error
	IncrementDownloads(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
	CountPremium(ctx context.Context) (int64, error)
}

// User represents a stored user account.
type User struct {
	ID            int64
	Username      string
	Premium       bool
	PremiumSince  *time.Time
	PremiumExpiry *time.Time
	DownloadCount int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PremiumExpired reports whether the premium flag is stale at the given
// instant. A user with premium set but no expiry is treated as expired,
// such a row violates the account invariant.
func (u User) PremiumExpired(now time.Time) bool {
	if !u.Premium {
		return false
	}
	return u.PremiumExpiry == nil || !u.PremiumExpiry.After(now)
}
