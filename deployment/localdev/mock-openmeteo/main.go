// Command mock-openmeteo serves canned Open-Meteo geocoding and forecast
// responses so surgeops can run with weather.provider: open-meteo offline.
// MOCK_WEATHER_CODE and MOCK_WIND_SPEED steer the reported conditions.
package main

import (
	"encoding/json"
	"log"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

type geocodeResult struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Country   string  `json:"country"`
}

type currentConditions struct {
	Time        string  `json:"time"`
	Temperature float64 `json:"temperature_2m"`
	WindSpeed   float64 `json:"wind_speed_10m"`
	Humidity    float64 `json:"relative_humidity_2m"`
	WeatherCode int     `json:"weather_code"`
}

var places = map[string]geocodeResult{
	"singapore": {Name: "Singapore", Latitude: 1.2897, Longitude: 103.8501, Country: "Singapore"},
	"rotterdam": {Name: "Rotterdam", Latitude: 51.9225, Longitude: 4.4792, Country: "Netherlands"},
	"shanghai":  {Name: "Shanghai", Latitude: 31.2222, Longitude: 121.4581, Country: "China"},
}

func main() {
	addr := envOr("MOCK_ADDR", ":8090")
	code := envInt("MOCK_WEATHER_CODE", 2)
	wind := envFloat("MOCK_WIND_SPEED", 6.5)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/v1/search", func(w http.ResponseWriter, r *http.Request) {
		if !enforceGet(w, r) {
			return
		}
		name := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("name")))
		place, ok := places[name]
		if !ok {
			writeJSON(w, map[string]any{"generationtime_ms": 0.1})
			return
		}
		writeJSON(w, map[string]any{"results": []geocodeResult{place}})
	})

	mux.HandleFunc("/v1/forecast", func(w http.ResponseWriter, r *http.Request) {
		if !enforceGet(w, r) {
			return
		}
		lat, err := strconv.ParseFloat(r.URL.Query().Get("latitude"), 64)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			writeJSON(w, map[string]any{"error": true, "reason": "latitude is required"})
			return
		}
		now := time.Now().UTC()
		// A slow diurnal swing keeps repeated polls from looking frozen.
		swing := math.Sin(float64(now.Hour()) / 24 * 2 * math.Pi)
		writeJSON(w, map[string]any{
			"latitude":  lat,
			"longitude": r.URL.Query().Get("longitude"),
			"current": currentConditions{
				Time:        now.Format("2006-01-02T15:04"),
				Temperature: math.Round((30-math.Abs(lat)/3+swing*3)*10) / 10,
				WindSpeed:   wind,
				Humidity:    72,
				WeatherCode: code,
			},
		})
	})

	logger := log.New(log.Writer(), "openmeteo-mock ", log.LstdFlags|log.Lmicroseconds)
	srv := &http.Server{
		Addr:              addr,
		Handler:           logRequests(logger, mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Printf("listening on %s (weather_code=%d wind=%.1fm/s)", addr, code, wind)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("server error: %v", err)
	}
}

func enforceGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encode error: %v", err)
	}
}

func logRequests(logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		logger.Printf("%s %s %d %s", r.Method, r.URL.RequestURI(), rw.status, time.Since(start))
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return fallback
}
