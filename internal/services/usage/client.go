// Package usage fetches and aggregates usage statistics from the relay service.
package usage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/veylab/relaymeter/internal/logger"
	"github.com/veylab/relaymeter/internal/models"
)

// DefaultEndpoint is used when a provider has no website URL configured.
const DefaultEndpoint = "https://api.packyrelay.com"

const (
	summaryPath = "/api/usage/summary"
	modelsPath  = "/api/usage/models"

	requestTimeout = 30 * time.Second
)

// overviewEnvelope is the wire envelope of the summary endpoint.
type overviewEnvelope struct {
	Success bool                  `json:"success"`
	Data    *models.UsageOverview `json:"data,omitempty"`
	Error   string                `json:"error,omitempty"`
}

// modelsEnvelope is the wire envelope of the per-model endpoint.
type modelsEnvelope struct {
	Success bool                `json:"success"`
	Data    []models.ModelUsage `json:"data,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// Client talks to the relay usage API. The API itself is opaque to this
// application: it returns usage already computed per key and period.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a usage API client.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// ResolveBaseURL picks the endpoint for a provider: a global override
// wins, then the provider's website URL (trimmed), then the default.
func ResolveBaseURL(p *models.Provider, override string) string {
	if trimmed := strings.TrimSpace(override); trimmed != "" {
		return strings.TrimRight(trimmed, "/")
	}
	if p != nil {
		if trimmed := strings.TrimSpace(p.WebsiteURL); trimmed != "" {
			return strings.TrimRight(trimmed, "/")
		}
	}
	return DefaultEndpoint
}

// QueryOverview fetches the account-level usage overview for a key.
func (c *Client) QueryOverview(ctx context.Context, baseURL, apiKey string, period models.Period) (*models.UsageOverview, error) {
	var env overviewEnvelope
	if err := c.get(ctx, baseURL+summaryPath, apiKey, period, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, apiError(env.Error)
	}
	if env.Data == nil {
		return nil, fmt.Errorf("usage API returned no overview data")
	}
	return env.Data, nil
}

// QueryModelStats fetches the per-model usage breakdown for a key.
func (c *Client) QueryModelStats(ctx context.Context, baseURL, apiKey string, period models.Period) ([]models.ModelUsage, error) {
	var env modelsEnvelope
	if err := c.get(ctx, baseURL+modelsPath, apiKey, period, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, apiError(env.Error)
	}
	return env.Data, nil
}

// get performs one authenticated GET and decodes the envelope.
func (c *Client) get(ctx context.Context, endpoint, apiKey string, period models.Period, out any) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid usage endpoint: %w", err)
	}
	q := u.Query()
	q.Set("period", period.String())
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create usage request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("usage request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read usage response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("usage request failed (status %d): %s", resp.StatusCode, truncateBody(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse usage response: %w", err)
	}
	return nil
}

func apiError(message string) error {
	if message == "" {
		message = "unknown error"
	}
	return fmt.Errorf("usage API error: %s", message)
}

func truncateBody(body []byte) string {
	const maxLen = 256
	if len(body) > maxLen {
		return string(body[:maxLen]) + "..."
	}
	return string(body)
}
