package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/grabtik/grabtik-bot/internal/model"
)

var _ model.PaymentStore = (*PaymentRepository)(nil)

type PaymentRepository struct {
	db *Connection
}

func NewPaymentRepository(db *Connection) *PaymentRepository {
	return &PaymentRepository{
		db: db,
	}
}

// RecordAndGrant inserts the confirmation keyed by provider charge id and
// grants premium to the paying user in one transaction. A conflict on the
// charge id means the same confirmation was delivered before and reports
// false. If the grant fails the dedupe row is rolled back with it, so the
// redelivered confirmation retries the whole grant.
func (r *PaymentRepository) RecordAndGrant(ctx context.Context, payment model.Payment, since, expiry time.Time) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	recordQuery := `INSERT INTO payments (charge_id, user_id, provider, payload, currency, amount)
				    VALUES ($1, $2, $3, $4, $5, $6)
				    ON CONFLICT (charge_id) DO NOTHING`

	tag, err := tx.Exec(ctx, recordQuery,
		payment.ChargeID, payment.UserID, payment.Provider, payment.Payload,
		payment.Currency, payment.Amount,
	)
	if err != nil {
		return false, fmt.Errorf("failed to record payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	grantQuery := `UPDATE users
				   SET premium = TRUE, premium_since = $2, premium_expiry = $3, updated_at = now()
				   WHERE id = $1`

	tag, err = tx.Exec(ctx, grantQuery, payment.UserID, since, expiry)
	if err != nil {
		return false, fmt.Errorf("failed to grant premium: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, model.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit payment: %w", err)
	}

	return true, nil
}
