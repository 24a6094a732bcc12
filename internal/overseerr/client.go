package overseerr

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"overseerr-approval-bot/internal/config"
)

// Client handles communication with the Overseerr API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new Overseerr client
func NewClient(cfg config.OverseerrConfig, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// MediaDetails fetches details for a movie or tv entry by TMDB id.
func (c *Client) MediaDetails(ctx context.Context, mediaType string, tmdbID int64) (*MediaDetails, error) {
	if mediaType != "movie" && mediaType != "tv" {
		return nil, fmt.Errorf("unsupported media type %q", mediaType)
	}

	reqURL := fmt.Sprintf("%s/%s/%d", c.baseURL, mediaType, tmdbID)

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("overseerr returned %d: %s", resp.StatusCode, string(body))
	}

	var details MediaDetails
	if err := json.NewDecoder(resp.Body).Decode(&details); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &details, nil
}

// Approve approves the request with the given id.
func (c *Client) Approve(ctx context.Context, requestID int64) error {
	return c.actOnRequest(ctx, requestID, "approve")
}

// Deny declines the request with the given id.
func (c *Client) Deny(ctx context.Context, requestID int64) error {
	return c.actOnRequest(ctx, requestID, "decline")
}

func (c *Client) actOnRequest(ctx context.Context, requestID int64, action string) error {
	reqURL := fmt.Sprintf("%s/request/%d/%s", c.baseURL, requestID, action)

	req, err := http.NewRequestWithContext(ctx, "POST", reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("overseerr %s returned %d: %s", action, resp.StatusCode, string(body))
	}

	c.logger.Debug("request action completed", "request_id", requestID, "action", action)
	return nil
}
