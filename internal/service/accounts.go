package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/grabtik/grabtik-bot/internal/logger"
	"github.com/grabtik/grabtik-bot/internal/model"
)

// Accounts manages user account lifecycle: creation on first contact,
// download counting and the lazy premium-expiry correction.
type Accounts struct {
	users  model.UserStore
	logger *logger.Logger
	now    func() time.Time
}

// NewAccounts creates the accounts service.
func NewAccounts(users model.UserStore, logger *logger.Logger) *Accounts {
	return &Accounts{
		users:  users,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// GetOrCreate fetches the user, creating it with defaults on first contact.
// A premium flag whose expiry has passed is corrected to false on this read
// and the correction is persisted; there is no background expiry sweep.
func (a *Accounts) GetOrCreate(ctx context.Context, id int64, username string) (model.User, error) {
	user, err := a.users.GetByID(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		created, err := a.users.Create(ctx, model.User{ID: id, Username: username})
		if err != nil {
			a.logger.Error("accounts: failed to create user",
				"user_id", id,
				"error", err.Error())
			return model.User{}, fmt.Errorf("failed to create user: %w", model.ErrStoreUnavailable)
		}

		a.logger.Info("accounts: new user created", "user_id", id)
		return created, nil
	}
	if err != nil {
		a.logger.Error("accounts: failed to get user",
			"user_id", id,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to get user: %w", model.ErrStoreUnavailable)
	}

	if user.PremiumExpired(a.now()) {
		if err := a.users.ClearPremium(ctx, id); err != nil {
			// The read still reports the corrected state; the row
			// is fixed on a later read.
			a.logger.Error("accounts: failed to persist premium expiry",
				"user_id", id,
				"error", err.Error())
		} else {
			a.logger.Info("accounts: premium expired", "user_id", id)
		}
		user.Premium = false
	}

	return user, nil
}

// RegisterDownload counts one delivered download for the user.
func (a *Accounts) RegisterDownload(ctx context.Context, id int64) error {
	if err := a.users.IncrementDownloads(ctx, id); err != nil {
		a.logger.Error("accounts: failed to increment downloads",
			"user_id", id,
			"error", err.Error())
		return fmt.Errorf("failed to increment downloads: %w", model.ErrStoreUnavailable)
	}

	return nil
}

// Stats returns total and premium user counts for the admin panel.
func (a *Accounts) Stats(ctx context.Context) (total, premium int64, err error) {
	total, err = a.users.Count(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count users: %w", model.ErrStoreUnavailable)
	}

	premium, err = a.users.CountPremium(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count premium users: %w", model.ErrStoreUnavailable)
	}

	return total, premium, nil
}
