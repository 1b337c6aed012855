package config

import (
	_ "embed"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	Nominatim NominatimConfig `yaml:"nominatim"`
	Geocode   GeocodeConfig   `yaml:"geocode"`
	History   HistoryConfig   `yaml:"history"`
	Gazetteer GazetteerConfig `yaml:"gazetteer"`
	Web       WebConfig       `yaml:"web"`
	LogLevel  string          `yaml:"log_level"`
}

type NominatimConfig struct {
	URL       string `yaml:"url"`
	UserAgent string `yaml:"user_agent"` // Nominatim rejects requests without one
	Zoom      int    `yaml:"zoom"`       // 10 is city level
}

type GeocodeConfig struct {
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
	TickInterval      time.Duration `yaml:"tick_interval"` // How often pending lookups are polled
	Workers           int           `yaml:"workers"`       // Concurrent lookups, defaults to NumCPU
}

type HistoryConfig struct {
	MaxAccuracyM float64 `yaml:"max_accuracy_m"` // Drop samples less accurate than this, 0 keeps all
}

type GazetteerConfig struct {
	Path string `yaml:"path"` // Offline gazetteer used instead of Nominatim when set
}

type WebConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"` // CORS origins besides localhost
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat is envInt for non-negative floats.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 {
		return f
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func Load() *Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		// Embedded file, can only fail on a broken build.
		panic("failed to unmarshal embedded defaults.yaml: " + err.Error())
	}

	if cfg.Geocode.Workers <= 0 {
		cfg.Geocode.Workers = runtime.NumCPU()
	}

	cfg.Nominatim.URL = envString("NOMINATIM_URL", cfg.Nominatim.URL)
	cfg.Nominatim.UserAgent = envString("NOMINATIM_USER_AGENT", cfg.Nominatim.UserAgent)
	cfg.Nominatim.Zoom = envInt("NOMINATIM_ZOOM", cfg.Nominatim.Zoom)
	cfg.Geocode.RequestsPerSecond = envFloat("GEOCODE_RPS", cfg.Geocode.RequestsPerSecond)
	cfg.Geocode.Workers = envInt("GEOCODE_WORKERS", cfg.Geocode.Workers)
	cfg.History.MaxAccuracyM = envFloat("HISTORY_MAX_ACCURACY_M", cfg.History.MaxAccuracyM)
	cfg.Gazetteer.Path = envString("GAZETTEER_PATH", cfg.Gazetteer.Path)
	cfg.LogLevel = envString("LOG_LEVEL", cfg.LogLevel)
	if env := os.Getenv("WEB_ALLOWED_ORIGINS"); env != "" {
		cfg.Web.AllowedOrigins = strings.Split(env, ",")
	}

	return &cfg
}
