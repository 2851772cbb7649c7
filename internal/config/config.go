package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig carries all runtime configuration. The force-reinit and retrain
// toggles are explicit switches here rather than global constants so the
// orchestrator and model loader receive them as plain inputs.
type AppConfig struct {
	DatabaseURL    string
	Port           string
	WeatherBaseURL string
	HTTPTimeout    time.Duration
	ModelPath      string

	// ForceReinit drops and recreates the flight table before the next
	// collection run, discarding all prior data.
	ForceReinit bool

	// InitHistorical collects a trailing one-year window at startup when the
	// flight table is empty.
	InitHistorical bool

	// RetrainOnStart fits a fresh model at startup instead of loading the
	// cached snapshot.
	RetrainOnStart bool

	// ScheduleEnabled turns on the daily collection job.
	ScheduleEnabled bool
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		Port:            getenvDefault("PORT", "8080"),
		WeatherBaseURL:  getenvDefault("WEATHER_BASE_URL", "https://api.weather.gov"),
		ModelPath:       getenvDefault("MODEL_PATH", "data/model.json"),
		ForceReinit:     getenvBool("FORCE_REINIT", false),
		InitHistorical:  getenvBool("INIT_HISTORICAL", false),
		RetrainOnStart:  getenvBool("RETRAIN_MODEL", false),
		ScheduleEnabled: getenvBool("SCHEDULE_ENABLED", false),
	}

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "10s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}
