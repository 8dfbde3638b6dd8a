package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/portstack/surgeops/internal/cache"
	"github.com/portstack/surgeops/internal/models"
)

func jsonResponse(t *testing.T, payload any) *http.Response {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewReader(data)),
		Header:     make(http.Header),
	}
}

func TestOpenMeteoCurrentCachesResults(t *testing.T) {
	hits := 0
	shared := cache.NewMemoryProvider()
	client := NewOpenMeteoClient(OpenMeteoConfig{
		GeocodingURL: "https://geo.example.com/v1/search",
		ForecastURL:  "https://api.example.com/v1/forecast",
		Recency:      30 * time.Minute,
	}, shared, nil)
	now := time.Date(2024, 3, 18, 10, 0, 0, 0, time.UTC)
	client.now = func() time.Time { return now }
	client.httpClient = newTestClient(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		hits++
		switch req.URL.Host {
		case "geo.example.com":
			if got := req.URL.Query().Get("name"); got != "Singapore" {
				t.Fatalf("unexpected geocode name %q", got)
			}
			return jsonResponse(t, map[string]any{
				"results": []map[string]any{{"latitude": 1.29, "longitude": 103.85}},
			}), nil
		case "api.example.com":
			q := req.URL.Query()
			if q.Get("wind_speed_unit") != "ms" || !strings.Contains(q.Get("current"), "weather_code") {
				t.Fatalf("unexpected forecast query %s", req.URL.RawQuery)
			}
			return jsonResponse(t, map[string]any{
				"current": map[string]any{
					"temperature_2m":       29.4,
					"wind_speed_10m":       13.5,
					"relative_humidity_2m": 78.0,
					"weather_code":         63,
				},
			}), nil
		}
		t.Fatalf("unexpected host %s", req.URL.Host)
		return nil, nil
	}))

	ctx := context.Background()
	w, err := client.Current(ctx, "Singapore Port")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hits != 2 {
		t.Fatalf("expected two upstream requests, got %d", hits)
	}
	if w.Condition != "Rain" || w.OperationalImpact != models.ImpactHigh || w.Source != models.WeatherOpenMeteo {
		t.Fatalf("unexpected reading %+v", w)
	}
	if w.Location != "Singapore Port" {
		t.Fatalf("expected location label preserved, got %q", w.Location)
	}

	if _, err := shared.Get(ctx, cache.WeatherKey("Singapore Port")); err != nil {
		t.Fatalf("expected reading cached under the weather key: %v", err)
	}

	now = now.Add(10 * time.Minute)
	if _, err := client.Current(ctx, "Singapore Port"); err != nil {
		t.Fatalf("unexpected error on cached read: %v", err)
	}
	if hits != 2 {
		t.Fatalf("expected cached read, got %d upstream requests", hits)
	}

	now = now.Add(31 * time.Minute)
	if _, err := client.Current(ctx, "Singapore Port"); err != nil {
		t.Fatalf("unexpected error on refetch: %v", err)
	}
	if hits != 4 {
		t.Fatalf("expected refetch after recency window, got %d upstream requests", hits)
	}
}

func TestOpenMeteoLocationNotFound(t *testing.T) {
	client := NewOpenMeteoClient(OpenMeteoConfig{}, nil, nil)
	client.httpClient = newTestClient(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(t, map[string]any{"results": []any{}}), nil
	}))
	if _, err := client.Current(context.Background(), "Atlantis"); err == nil {
		t.Fatalf("expected error for unknown location")
	}
}

func TestOpenMeteoUpstreamError(t *testing.T) {
	client := NewOpenMeteoClient(OpenMeteoConfig{}, nil, nil)
	client.httpClient = newTestClient(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusServiceUnavailable,
			Body:       io.NopCloser(strings.NewReader("busy")),
			Header:     make(http.Header),
		}, nil
	}))
	if _, err := client.Current(context.Background(), "Rotterdam"); err == nil {
		t.Fatalf("expected error for upstream failure")
	}
}

func TestImpactFor(t *testing.T) {
	cases := []struct {
		wind float64
		code int
		want models.Impact
	}{
		{wind: 3, code: 0, want: models.ImpactLow},
		{wind: 8, code: 0, want: models.ImpactMedium},
		{wind: 12.9, code: 0, want: models.ImpactHigh},
		{wind: 2, code: 95, want: models.ImpactMedium},
		{wind: 2, code: 99, want: models.ImpactHigh},
		{wind: 2, code: 82, want: models.ImpactHigh},
	}
	for _, tc := range cases {
		if got := ImpactFor(tc.wind, tc.code); got != tc.want {
			t.Fatalf("ImpactFor(%v, %d) = %s, want %s", tc.wind, tc.code, got, tc.want)
		}
	}
	if ConditionForCode(96) != "Severe storm" || IconForCode(71) != "❄️" || ConditionForCode(42) != "Unknown" {
		t.Fatalf("unexpected code mapping")
	}
}
