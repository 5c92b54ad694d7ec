package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/grabtik/grabtik-bot/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

type UserRepository struct {
	db *Connection
}

func NewUserRepository(db *Connection) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (model.User, error) {
	var user model.User
	query := `SELECT id, username, premium, premium_since, premium_expiry, download_count, created_at, updated_at
			  FROM users WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Username, &user.Premium, &user.PremiumSince, &user.PremiumExpiry,
		&user.DownloadCount, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	query := `INSERT INTO users (id, username, premium, download_count)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id, username, premium, premium_since, premium_expiry, download_count, created_at, updated_at`

	var savedUser model.User
	err := r.db.QueryRow(ctx, query,
		user.ID, user.Username, user.Premium, user.DownloadCount,
	).Scan(
		&savedUser.ID, &savedUser.Username, &savedUser.Premium, &savedUser.PremiumSince,
		&savedUser.PremiumExpiry, &savedUser.DownloadCount, &savedUser.CreatedAt, &savedUser.UpdatedAt,
	)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return savedUser, nil
}

func (r *UserRepository) SetPremium(ctx context.Context, id int64, since, expiry time.Time) error {
	query := `UPDATE users SET premium = TRUE, premium_since = $2, premium_expiry = $3, updated_at = now()
			  WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, since, expiry)
	if err != nil {
		return fmt.Errorf("failed to set premium: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}

func (r *UserRepository) ClearPremium(ctx context.Context, id int64) error {
	query := `UPDATE users SET premium = FALSE, updated_at = now() WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to clear premium: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}

// IncrementDownloads bumps the counter in a single UPDATE so concurrent
// deliveries for the same user never lose an increment.
func (r *UserRepository) IncrementDownloads(ctx context.Context, id int64) error {
	query := `UPDATE users SET download_count = download_count + 1, updated_at = now() WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to increment downloads: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}

	return count, nil
}

func (r *UserRepository) CountPremium(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM users WHERE premium`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count premium users: %w", err)
	}

	return count, nil
}
