// Package extractor is the client for the link-extraction collaborator,
// a tikwm-style HTTP API that resolves a shared link into direct asset URLs.
package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/grabtik/grabtik-bot/internal/logger"
	"github.com/grabtik/grabtik-bot/internal/model"
)

type Client struct {
	baseURL string
	http    *http.Client
	logger  *logger.Logger
}

// NewClient creates an extraction client for the API at baseURL.
func NewClient(baseURL string, timeout time.Duration, logger *logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type apiResponse struct {
	Code int     `json:"code"`
	Msg  string  `json:"msg"`
	Data apiData `json:"data"`
}

type apiData struct {
	Title  string   `json:"title"`
	Play   string   `json:"play"`
	Music  string   `json:"music"`
	Images []string `json:"images"`
}

// Fetch resolves a shared link into a media descriptor. Every failure mode,
// unreachable network, non-200 status, non-zero API code, empty asset set,
// maps to ErrExtractionFailed so the caller reports one user-visible
// "could not fetch media" message.
func (c *Client) Fetch(ctx context.Context, link string) (model.MediaDescriptor, error) {
	reqURL, err := url.Parse(c.baseURL)
	if err != nil {
		return model.MediaDescriptor{}, fmt.Errorf("failed to parse extractor base url: %w", err)
	}
	q := reqURL.Query()
	q.Set("url", link)
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return model.MediaDescriptor{}, fmt.Errorf("failed to build extractor request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("extractor: request failed", "error", err.Error())
		return model.MediaDescriptor{}, fmt.Errorf("extractor unreachable: %w", model.ErrExtractionFailed)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("extractor: unexpected status", "status", resp.StatusCode)
		return model.MediaDescriptor{}, fmt.Errorf("extractor returned status %d: %w", resp.StatusCode, model.ErrExtractionFailed)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.logger.Error("extractor: failed to decode response", "error", err.Error())
		return model.MediaDescriptor{}, fmt.Errorf("failed to decode extractor response: %w", model.ErrExtractionFailed)
	}

	if body.Code != 0 {
		c.logger.Info("extractor: link rejected",
			"code", body.Code,
			"msg", body.Msg)
		return model.MediaDescriptor{}, fmt.Errorf("extractor code %d: %w", body.Code, model.ErrExtractionFailed)
	}

	desc := model.MediaDescriptor{
		SourceURL: link,
		Title:     body.Data.Title,
		VideoURL:  body.Data.Play,
		AudioURL:  body.Data.Music,
		ImageURLs: body.Data.Images,
	}

	if desc.VideoURL == "" && desc.AudioURL == "" && len(desc.ImageURLs) == 0 {
		return model.MediaDescriptor{}, fmt.Errorf("extractor returned no assets: %w", model.ErrExtractionFailed)
	}

	return desc, nil
}
