package irrigation

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/legnamegusta-ctrl/apporgania/internal/config"
)

// Client exposes the irrigation telemetry operations used by the snapshot
// job.
type Client interface {
	ActivePercentage(ctx context.Context, propertyID string) (float64, error)
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
}

// NewClient builds an irrigation telemetry client using the provided
// configuration values.
func NewClient(cfg config.IrrigationConfig) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey)).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout)

	return &APIClient{httpClient: restyClient}
}

// activeResponse mirrors the telemetry endpoint payload.
type activeResponse struct {
	PropertyID string  `json:"property_id"`
	ActivePct  float64 `json:"active_pct"`
}

// apiError represents a telemetry API error payload.
type apiError struct {
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// ActivePercentage fetches the share of the property's irrigation zones
// currently running, in [0, 100].
func (c *APIClient) ActivePercentage(ctx context.Context, propertyID string) (float64, error) {
	result := new(activeResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(result).
		SetError(apiErr).
		Get(fmt.Sprintf("/v1/properties/%s/irrigation", propertyID))
	if err != nil {
		return 0, fmt.Errorf("fetch irrigation telemetry: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		message := ""
		code := resp.StatusCode()
		if apiErr != nil {
			message = apiErr.Error.Message
			if apiErr.Error.Code != 0 {
				code = apiErr.Error.Code
			}
		}
		return 0, fmt.Errorf("irrigation api error: code=%d, message=%s", code, message)
	}

	if result.ActivePct < 0 || result.ActivePct > 100 {
		return 0, fmt.Errorf("irrigation api returned out-of-range percentage %f", result.ActivePct)
	}

	return result.ActivePct, nil
}
