package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/grabtik/grabtik-bot/internal/model"
)

var _ model.AdStore = (*AdRepository)(nil)

type AdRepository struct {
	db *Connection
}

func NewAdRepository(db *Connection) *AdRepository {
	return &AdRepository{
		db: db,
	}
}

// PickActive returns one active ad chosen uniformly at random.
func (r *AdRepository) PickActive(ctx context.Context) (model.Ad, error) {
	var ad model.Ad
	query := `SELECT id, url, active, created_at FROM ads_links
			  WHERE active ORDER BY random() LIMIT 1`

	err := r.db.QueryRow(ctx, query).Scan(&ad.ID, &ad.URL, &ad.Active, &ad.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Ad{}, model.ErrNotFound
		}
		return model.Ad{}, fmt.Errorf("failed to pick active ad: %w", err)
	}

	return ad, nil
}

func (r *AdRepository) Create(ctx context.Context, url string) (model.Ad, error) {
	var ad model.Ad
	query := `INSERT INTO ads_links (url, active) VALUES ($1, TRUE)
			  RETURNING id, url, active, created_at`

	err := r.db.QueryRow(ctx, query, url).Scan(&ad.ID, &ad.URL, &ad.Active, &ad.CreatedAt)
	if err != nil {
		return model.Ad{}, fmt.Errorf("failed to create ad: %w", err)
	}

	return ad, nil
}

func (r *AdRepository) List(ctx context.Context) ([]model.Ad, error) {
	query := `SELECT id, url, active, created_at FROM ads_links ORDER BY id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list ads: %w", err)
	}
	defer rows.Close()

	var ads []model.Ad
	for rows.Next() {
		var ad model.Ad
		if err := rows.Scan(&ad.ID, &ad.URL, &ad.Active, &ad.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ad: %w", err)
		}
		ads = append(ads, ad)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ads: %w", err)
	}

	return ads, nil
}

func (r *AdRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM ads_links WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete ad: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}
