package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures every setting the SurgeOps server boots from.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	HTTP      HTTPConfig      `yaml:"http"`
	Logging   LoggingConfig   `yaml:"logging"`
	Generator GeneratorConfig `yaml:"generator"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Rules     RulesConfig     `yaml:"rules"`
	Cache     CacheConfig     `yaml:"cache"`
	Storage   StorageConfig   `yaml:"storage"`
	Events    EventsConfig    `yaml:"events"`
	Weather   WeatherConfig   `yaml:"weather"`
}

// ServerConfig controls gRPC listener behaviour.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	MetricsAddress  string        `yaml:"metricsAddress"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
}

// HTTPConfig controls the JSON/WebSocket API listener. An empty address
// disables it.
type HTTPConfig struct {
	Address        string        `yaml:"address"`
	RequestTimeout time.Duration `yaml:"requestTimeout"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// GeneratorConfig seeds the synthetic port data.
type GeneratorConfig struct {
	// Seed of zero means a time-based seed.
	Seed     int64   `yaml:"seed"`
	Baseline float64 `yaml:"baseline"`
	Location string  `yaml:"location"`
}

// ThresholdsConfig holds the surge hysteresis bounds.
type ThresholdsConfig struct {
	RaiseWaiting  int `yaml:"raiseWaiting"`
	RaiseCritical int `yaml:"raiseCritical"`
	ClearWaiting  int `yaml:"clearWaiting"`
	ClearCritical int `yaml:"clearCritical"`
}

// DashboardConfig controls the refresh scheduler and surge banner.
type DashboardConfig struct {
	RefreshInterval  time.Duration    `yaml:"refreshInterval"`
	SurgeDecay       time.Duration    `yaml:"surgeDecay"`
	AutoOpenPlan     bool             `yaml:"autoOpenPlan"`
	SubscriberBuffer int              `yaml:"subscriberBuffer"`
	SpikeThreshold   float64          `yaml:"spikeThreshold"`
	Thresholds       ThresholdsConfig `yaml:"thresholds"`
}

// RulesConfig controls rule-pack loading for the action plan.
type RulesConfig struct {
	Path string `yaml:"path"`
}

// CacheConfig controls the Redis/Valkey snapshot cache and refresh lease.
type CacheConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Addr         string        `yaml:"addr"`
	Username     string        `yaml:"username"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	DialTimeout  time.Duration `yaml:"dialTimeout"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	MaxRetries   int           `yaml:"maxRetries"`
	TLS          bool          `yaml:"tls"`
	SnapshotTTL  time.Duration `yaml:"snapshotTTL"`
}

// StorageConfig selects the surge history backend.
type StorageConfig struct {
	Driver       string `yaml:"driver"`
	DSN          string `yaml:"dsn"`
	HistoryLimit int    `yaml:"historyLimit"`
	MaxConns     int32  `yaml:"maxConns"`
}

// EventsConfig configures Kafka publishing. No brokers disables it.
type EventsConfig struct {
	Brokers         []string `yaml:"brokers"`
	SnapshotTopic   string   `yaml:"snapshotTopic"`
	TransitionTopic string   `yaml:"transitionTopic"`
}

// WeatherConfig configures the optional live weather overlay.
type WeatherConfig struct {
	Provider     string        `yaml:"provider"`
	Recency      time.Duration `yaml:"recency"`
	Timeout      time.Duration `yaml:"timeout"`
	GeocodingURL string        `yaml:"geocodingURL"`
	ForecastURL  string        `yaml:"forecastURL"`
}

// Load initialises Config from a YAML file and optional environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("SURGEOPS_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.Dashboard.RefreshInterval <= 0 {
		return fmt.Errorf("dashboard.refreshInterval must be positive")
	}
	if c.Dashboard.SurgeDecay < 0 {
		return fmt.Errorf("dashboard.surgeDecay must not be negative")
	}
	t := c.Dashboard.Thresholds
	if t.ClearWaiting > t.RaiseWaiting || t.ClearCritical > t.RaiseCritical {
		return fmt.Errorf("dashboard.thresholds: clear bounds must not exceed raise bounds")
	}
	switch c.Storage.Driver {
	case "memory":
	case "postgres":
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("storage.driver %q not supported", c.Storage.Driver)
	}
	switch c.Weather.Provider {
	case "", "synthetic", "open-meteo":
	default:
		return fmt.Errorf("weather.provider %q not supported", c.Weather.Provider)
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":50051",
			MetricsAddress:  ":2112",
			GracefulTimeout: 10 * time.Second,
		},
		HTTP: HTTPConfig{
			Address:        ":8080",
			RequestTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{Level: "info", JSON: false},
		Generator: GeneratorConfig{
			Baseline: 65,
			Location: "Singapore Port",
		},
		Dashboard: DashboardConfig{
			RefreshInterval:  5 * time.Second,
			SurgeDecay:       15 * time.Second,
			AutoOpenPlan:     true,
			SubscriberBuffer: 8,
			SpikeThreshold:   2.5,
			Thresholds: ThresholdsConfig{
				RaiseWaiting:  8,
				RaiseCritical: 2,
				ClearWaiting:  5,
				ClearCritical: 1,
			},
		},
		Rules: RulesConfig{Path: "configs/rules/default.yaml"},
		Cache: CacheConfig{
			Enabled:      false,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
			MaxRetries:   2,
			SnapshotTTL:  15 * time.Second,
		},
		Storage: StorageConfig{
			Driver:       "memory",
			HistoryLimit: 500,
			MaxConns:     4,
		},
		Events: EventsConfig{
			SnapshotTopic:   "surgeops.snapshots",
			TransitionTopic: "surgeops.surges",
		},
		Weather: WeatherConfig{
			Provider:     "synthetic",
			Recency:      30 * time.Minute,
			Timeout:      5 * time.Second,
			GeocodingURL: "https://geocoding-api.open-meteo.com/v1/search",
			ForecastURL:  "https://api.open-meteo.com/v1/forecast",
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SURGEOPS_SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("SURGEOPS_METRICS_ADDRESS"); v != "" {
		cfg.Server.MetricsAddress = v
	}
	if v := os.Getenv("SURGEOPS_HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("SURGEOPS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SURGEOPS_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("SURGEOPS_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Generator.Seed = seed
		}
	}
	if v := os.Getenv("SURGEOPS_BASELINE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Generator.Baseline = f
		}
	}
	if v := os.Getenv("SURGEOPS_LOCATION"); v != "" {
		cfg.Generator.Location = v
	}
	if v := os.Getenv("SURGEOPS_REFRESH_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Dashboard.RefreshInterval = d
		}
	}
	if v := os.Getenv("SURGEOPS_SURGE_DECAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Dashboard.SurgeDecay = d
		}
	}
	if v := os.Getenv("SURGEOPS_AUTO_OPEN_PLAN"); v != "" {
		cfg.Dashboard.AutoOpenPlan = envBool(v)
	}
	if v := os.Getenv("SURGEOPS_RULES_PATH"); v != "" {
		cfg.Rules.Path = v
	}
	if v := os.Getenv("SURGEOPS_CACHE_ADDR"); v != "" {
		cfg.Cache.Addr = v
	}
	if v := os.Getenv("SURGEOPS_CACHE_ENABLED"); v != "" {
		cfg.Cache.Enabled = envBool(v)
	}
	if v := os.Getenv("SURGEOPS_CACHE_USERNAME"); v != "" {
		cfg.Cache.Username = v
	}
	if v := os.Getenv("SURGEOPS_CACHE_PASSWORD"); v != "" {
		cfg.Cache.Password = v
	}
	if v := os.Getenv("SURGEOPS_CACHE_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Cache.DB = db
		}
	}
	if v := os.Getenv("SURGEOPS_CACHE_TLS"); envBool(v) {
		cfg.Cache.TLS = true
	}
	if v := os.Getenv("SURGEOPS_CACHE_MAX_RETRIES"); v != "" {
		if retry, err := strconv.Atoi(v); err == nil {
			cfg.Cache.MaxRetries = retry
		}
	}
	if v := os.Getenv("SURGEOPS_CACHE_SNAPSHOT_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.SnapshotTTL = d
		}
	}
	if v := os.Getenv("SURGEOPS_STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = strings.ToLower(v)
	}
	if v := os.Getenv("SURGEOPS_DATABASE_URL"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("SURGEOPS_KAFKA_BROKERS"); v != "" {
		cfg.Events.Brokers = splitList(v)
	}
	if v := os.Getenv("SURGEOPS_WEATHER_PROVIDER"); v != "" {
		cfg.Weather.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("SURGEOPS_WEATHER_RECENCY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Weather.Recency = d
		}
	}
}

func envBool(v string) bool {
	return strings.EqualFold(v, "true") || strings.EqualFold(v, "1")
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
