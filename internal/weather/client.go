// Package weather implements the OpenWeatherMap current-conditions
// client used by the weather bot.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/nsmelov/tgbots/internal/config"
)

// ErrCityNotFound indicates the provider does not know the requested city.
var ErrCityNotFound = errors.New("city not found")

// APIError is any non-404 HTTP-level failure from the weather provider.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("weather API returned HTTP %d: %s", e.StatusCode, e.Body)
}

// Report holds the current conditions for one city. RawJSON keeps the
// provider's unmodified response body for the narrative prompt.
type Report struct {
	CityName    string
	TempC       float64
	FeelsLikeC  float64
	Description string
	WindSpeed   float64
	RawJSON     []byte
}

// Client queries OpenWeatherMap.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	units      string
	language   string
	log        *slog.Logger
}

// NewClient creates a weather client from configuration.
func NewClient(cfg config.WeatherConfig, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		units:      cfg.Units,
		language:   cfg.Language,
		log:        log.With("component", "weather_client"),
	}
}

// Current fetches the current conditions for a city. A 404 from the
// provider maps to ErrCityNotFound; any other non-2xx status maps to
// *APIError.
func (c *Client) Current(ctx context.Context, city string) (*Report, error) {
	query := url.Values{}
	query.Set("q", city)
	query.Set("appid", c.apiKey)
	query.Set("units", c.units)
	query.Set("lang", c.language)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build weather request: %w", err)
	}

	c.log.DebugContext(ctx, "Querying weather provider", "city", city)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.ErrorContext(ctx, "Weather provider request failed", "city", city, "error", err)
		return nil, fmt.Errorf("weather request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.log.WarnContext(ctx, "Failed to close weather response body", "error", closeErr)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read weather response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		c.log.InfoContext(ctx, "Weather provider does not know the city", "city", city)
		return nil, fmt.Errorf("%w: %q", ErrCityNotFound, city)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		c.log.ErrorContext(ctx, "Weather provider returned error status", "city", city, "status", resp.StatusCode)
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	report, err := parseReport(body)
	if err != nil {
		c.log.ErrorContext(ctx, "Failed to parse weather response", "city", city, "error", err)
		return nil, err
	}

	c.log.DebugContext(ctx, "Weather query succeeded", "city", city, "resolved_name", report.CityName, "temp_c", report.TempC)
	return report, nil
}

func parseReport(body []byte) (*Report, error) {
	var raw struct {
		Name string `json:"name"`
		Main struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse weather response: %w", err)
	}

	report := &Report{
		CityName:   raw.Name,
		TempC:      raw.Main.Temp,
		FeelsLikeC: raw.Main.FeelsLike,
		WindSpeed:  raw.Wind.Speed,
		RawJSON:    body,
	}
	if len(raw.Weather) > 0 {
		report.Description = raw.Weather[0].Description
	}
	return report, nil
}
