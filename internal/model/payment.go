package model

import (
	"context"
	"time"
)

// PaymentStore persists payment confirmations and deduplicates redeliveries.
type PaymentStore interface {
	// RecordAndGrant atomically records the confirmation keyed by charge
	// id and grants premium from since until expiry. It reports false
	// without touching the account when the charge id was recorded
	// before. On error nothing is persisted, so a redelivered
	// confirmation retries the whole grant.
	RecordAndGrant(ctx context.Context, payment Payment, since, expiry time.Time) (bool, error)
}

// Payment is a confirmed payment event from a payment collaborator.
// ChargeID is the provider's transaction id and is the dedupe key.
type Payment struct {
	ChargeID  string
	UserID    int64
	Provider  string
	Payload   string
	Currency  string
	Amount    int64
	CreatedAt time.Time
}
