package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/grabtik/grabtik-bot/internal/logger"
	"github.com/grabtik/grabtik-bot/internal/model"
)

// fallbackAdURL is shown by the ad gate when no ads are configured.
const fallbackAdURL = "https://telegram.org"

// Ads serves advertisement links to the gate and backs the admin panel.
type Ads struct {
	store  model.AdStore
	logger *logger.Logger
}

// NewAds creates the ads service.
func NewAds(store model.AdStore, logger *logger.Logger) *Ads {
	return &Ads{
		store:  store,
		logger: logger,
	}
}

// PickURL returns a random active ad URL, or the fallback placeholder when
// none are configured or the store is unreachable. The gate must never fail
// because the ad inventory is empty.
func (s *Ads) PickURL(ctx context.Context) string {
	ad, err := s.store.PickActive(ctx)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			s.logger.Error("ads: failed to pick ad", "error", err.Error())
		}
		return fallbackAdURL
	}

	return ad.URL
}

// Add registers a new active ad link.
func (s *Ads) Add(ctx context.Context, url string) (model.Ad, error) {
	ad, err := s.store.Create(ctx, url)
	if err != nil {
		s.logger.Error("ads: failed to add ad", "url", url, "error", err.Error())
		return model.Ad{}, fmt.Errorf("failed to add ad: %w", model.ErrStoreUnavailable)
	}

	s.logger.Info("ads: ad added", "ad_id", ad.ID)
	return ad, nil
}

// List returns all ads, active or not.
func (s *Ads) List(ctx context.Context) ([]model.Ad, error) {
	ads, err := s.store.List(ctx)
	if err != nil {
		s.logger.Error("ads: failed to list ads", "error", err.Error())
		return nil, fmt.Errorf("failed to list ads: %w", model.ErrStoreUnavailable)
	}

	return ads, nil
}

// Remove deletes an ad by id.
func (s *Ads) Remove(ctx context.Context, id int64) error {
	err := s.store.Delete(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return err
	}
	if err != nil {
		s.logger.Error("ads: failed to delete ad", "ad_id", id, "error", err.Error())
		return fmt.Errorf("failed to delete ad: %w", model.ErrStoreUnavailable)
	}

	s.logger.Info("ads: ad removed", "ad_id", id)
	return nil
}
