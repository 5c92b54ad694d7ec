package service

import (
	"context"
	"fmt"
	"time"

	"github.com/grabtik/grabtik-bot/internal/logger"
	"github.com/grabtik/grabtik-bot/internal/model"
)

// Subscriptions grants premium status from payment confirmation events.
// Expiry is not swept here; Accounts corrects it lazily on read.
type Subscriptions struct {
	payments model.PaymentStore
	duration time.Duration
	logger   *logger.Logger
	now      func() time.Time
}

// NewSubscriptions creates the subscription manager. duration is the plan
// length added on each confirmed payment.
func NewSubscriptions(
	payments model.PaymentStore,
	duration time.Duration,
	logger *logger.Logger,
) *Subscriptions {
	return &Subscriptions{
		payments: payments,
		duration: duration,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Confirm applies a payment confirmation: records it keyed by the provider
// charge id and grants premium for the plan duration in one atomic store
// operation. A failed grant persists nothing, so the provider's redelivery
// of the same confirmation retries it. A confirmation whose charge id was
// already applied returns ErrDuplicatePayment without touching the account.
func (s *Subscriptions) Confirm(ctx context.Context, payment model.Payment) (time.Time, error) {
	since := s.now()
	expiry := since.Add(s.duration)

	fresh, err := s.payments.RecordAndGrant(ctx, payment, since, expiry)
	if err != nil {
		s.logger.Error("subscriptions: failed to apply payment",
			"user_id", payment.UserID,
			"charge_id", payment.ChargeID,
			"error", err.Error())
		return time.Time{}, fmt.Errorf("failed to apply payment: %w", model.ErrStoreUnavailable)
	}
	if !fresh {
		s.logger.Info("subscriptions: duplicate payment confirmation ignored",
			"user_id", payment.UserID,
			"charge_id", payment.ChargeID)
		return time.Time{}, model.ErrDuplicatePayment
	}

	s.logger.Info("subscriptions: premium granted",
		"user_id", payment.UserID,
		"expiry", expiry.Format(time.RFC3339))

	return expiry, nil
}
