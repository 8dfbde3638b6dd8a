package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/portstack/surgeops/internal/cache"
	"github.com/portstack/surgeops/internal/models"
)

const (
	defaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
	defaultForecastURL  = "https://api.open-meteo.com/v1/forecast"
	currentFields       = "temperature_2m,wind_speed_10m,relative_humidity_2m,weather_code"
)

// OpenMeteoConfig configures the live weather client.
type OpenMeteoConfig struct {
	GeocodingURL string
	ForecastURL  string
	Timeout      time.Duration
	Recency      time.Duration
}

// OpenMeteoClient fetches current conditions for a named location. Readings
// younger than the recency window are served from the cache.
type OpenMeteoClient struct {
	geocodingURL string
	forecastURL  string
	recency      time.Duration
	httpClient   *http.Client
	cache        cache.Provider
	logger       *slog.Logger
	now          func() time.Time
}

// NewOpenMeteoClient constructs a client. A nil cache disables caching.
func NewOpenMeteoClient(cfg OpenMeteoConfig, cacheProvider cache.Provider, logger *slog.Logger) *OpenMeteoClient {
	if cfg.GeocodingURL == "" {
		cfg.GeocodingURL = defaultGeocodingURL
	}
	if cfg.ForecastURL == "" {
		cfg.ForecastURL = defaultForecastURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.Recency <= 0 {
		cfg.Recency = 30 * time.Minute
	}
	if cacheProvider == nil {
		cacheProvider = cache.NoopProvider{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OpenMeteoClient{
		geocodingURL: strings.TrimRight(cfg.GeocodingURL, "/"),
		forecastURL:  strings.TrimRight(cfg.ForecastURL, "/"),
		recency:      cfg.Recency,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		cache:        cacheProvider,
		logger:       logger,
		now:          time.Now,
	}
}

// Current returns the current weather at location.
func (c *OpenMeteoClient) Current(ctx context.Context, location string) (models.Weather, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return models.Weather{}, fmt.Errorf("weather location is required")
	}

	key := cache.WeatherKey(location)
	if cached, err := c.cache.Get(ctx, key); err == nil {
		var w models.Weather
		if err := json.Unmarshal(cached, &w); err == nil && c.now().Sub(w.ObservedAt) < c.recency {
			return w, nil
		}
	}

	lat, lon, err := c.geocode(ctx, location)
	if err != nil {
		return models.Weather{}, err
	}
	w, err := c.forecast(ctx, location, lat, lon)
	if err != nil {
		return models.Weather{}, err
	}

	if data, err := json.Marshal(w); err == nil {
		if err := c.cache.Set(ctx, key, data, c.recency); err != nil {
			c.logger.Warn("weather cache write failed", slog.String("location", location), slog.Any("error", err))
		}
	}
	return w, nil
}

func (c *OpenMeteoClient) geocode(ctx context.Context, location string) (float64, float64, error) {
	q := url.Values{}
	q.Set("name", geocodeName(location))
	q.Set("count", "1")

	var response struct {
		Results []struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"results"`
	}
	if err := c.getJSON(ctx, c.geocodingURL+"?"+q.Encode(), &response); err != nil {
		return 0, 0, fmt.Errorf("geocode %s: %w", location, err)
	}
	if len(response.Results) == 0 {
		return 0, 0, fmt.Errorf("geocode %s: location not found", location)
	}
	return response.Results[0].Latitude, response.Results[0].Longitude, nil
}

func (c *OpenMeteoClient) forecast(ctx context.Context, location string, lat, lon float64) (models.Weather, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', 4, 64))
	q.Set("current", currentFields)
	q.Set("wind_speed_unit", "ms")

	var response struct {
		Current struct {
			Temperature float64 `json:"temperature_2m"`
			WindSpeed   float64 `json:"wind_speed_10m"`
			Humidity    float64 `json:"relative_humidity_2m"`
			WeatherCode int     `json:"weather_code"`
		} `json:"current"`
	}
	if err := c.getJSON(ctx, c.forecastURL+"?"+q.Encode(), &response); err != nil {
		return models.Weather{}, fmt.Errorf("forecast %s: %w", location, err)
	}

	cur := response.Current
	return models.Weather{
		Location:          location,
		Temperature:       cur.Temperature,
		WindSpeed:         cur.WindSpeed,
		Humidity:          cur.Humidity,
		Condition:         ConditionForCode(cur.WeatherCode),
		Icon:              IconForCode(cur.WeatherCode),
		OperationalImpact: ImpactFor(cur.WindSpeed, cur.WeatherCode),
		Source:            models.WeatherOpenMeteo,
		ObservedAt:        c.now(),
	}, nil
}

func (c *OpenMeteoClient) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// geocodeName strips a trailing "Port" so "Singapore Port" geocodes as the city.
func geocodeName(location string) string {
	trimmed := strings.TrimSpace(strings.TrimSuffix(location, " Port"))
	if trimmed == "" {
		return location
	}
	return trimmed
}

// ConditionForCode maps a WMO weather code to a short condition.
func ConditionForCode(code int) string {
	switch code {
	case 0:
		return "Clear"
	case 1, 2, 3:
		return "Partly cloudy"
	case 45, 48:
		return "Foggy"
	case 51, 53, 55:
		return "Drizzle"
	case 61, 63, 65:
		return "Rain"
	case 66, 67:
		return "Freezing rain"
	case 71, 73, 75:
		return "Snow"
	case 80, 81, 82:
		return "Showers"
	case 95:
		return "Thunderstorm"
	case 96, 99:
		return "Severe storm"
	default:
		return "Unknown"
	}
}

// IconForCode maps a WMO weather code to a display glyph.
func IconForCode(code int) string {
	switch code {
	case 0:
		return "☀️"
	case 1, 2, 3:
		return "⛅"
	case 45, 48:
		return "🌫️"
	case 51, 53, 55, 61, 63, 65, 66, 67, 80, 81, 82:
		return "🌧️"
	case 71, 73, 75:
		return "❄️"
	case 95, 96, 99:
		return "⛈️"
	default:
		return "❓"
	}
}

// ImpactFor grades operational impact from wind speed in m/s and the weather
// code. 12.9 m/s is roughly 25 knots, the usual crane stop limit.
func ImpactFor(windSpeed float64, code int) models.Impact {
	switch code {
	case 65, 75, 82, 96, 99:
		return models.ImpactHigh
	}
	if windSpeed >= 12.9 {
		return models.ImpactHigh
	}
	switch code {
	case 63, 73, 81, 95:
		return models.ImpactMedium
	}
	if windSpeed >= 8 {
		return models.ImpactMedium
	}
	return models.ImpactLow
}
