package model

import (
	"context"
	"time"
)

// AdStore defines persistence operations for advertisement links.
type AdStore interface {
	// PickActive returns one active ad chosen at random, or ErrNotFound
	// when none are configured.
	PickActive(ctx context.Context) (Ad, error)
	Create(ctx context.Context, url string) (Ad, error)
	List(ctx context.Context) ([]Ad, error)
	Delete(ctx context.Context, id int64) error
}

// Ad is an advertisement link shown by the ad-click gate.
type Ad struct {
	ID        int64
	URL       string
	Active    bool
	CreatedAt time.Time
}
