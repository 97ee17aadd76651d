// package config loads application configuration from environment variables
// and the YAML site file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// server
	HTTPPort           int
	APIPort            int
	CORSAllowedOrigins []string

	// stats service
	StatsBaseURL   string
	StatsTimeout   time.Duration
	StatsRateRPS   float64
	StatsRateBurst int

	// presentation
	SiteFile       string
	TemplatesDir   string // empty means the embedded templates
	StaticDir      string
	TemplateReload bool

	// logging
	LogLevel string
	LogFile  string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is applied first when present;
// variables already set in the environment win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		HTTPPort:           getEnvInt("HTTP_PORT", 3100),
		APIPort:            getEnvInt("API_PORT", 3101),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		StatsBaseURL:       strings.TrimRight(getEnv("STATS_API_BASE_URL", "https://zend-usuz.onrender.com"), "/"),
		StatsTimeout:       time.Duration(getEnvInt("STATS_TIMEOUT_SECONDS", 10)) * time.Second,
		StatsRateRPS:       getEnvFloat("STATS_RATE_LIMIT_RPS", 5),
		StatsRateBurst:     getEnvInt("STATS_RATE_LIMIT_BURST", 5),
		SiteFile:           getEnv("SITE_FILE", "./site.yaml"),
		TemplatesDir:       getEnv("TEMPLATES_DIR", ""),
		StaticDir:          getEnv("STATIC_DIR", ""),
		TemplateReload:     getEnvBool("TEMPLATE_RELOAD", false),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFile:            getEnv("LOG_FILE", ""),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.StatsBaseURL == "" {
		return errors.New("STATS_API_BASE_URL must not be empty")
	}
	if c.StatsTimeout <= 0 {
		return fmt.Errorf("STATS_TIMEOUT_SECONDS must be positive, got %s", c.StatsTimeout)
	}
	if c.HTTPPort < 0 || c.APIPort < 0 {
		return fmt.Errorf("ports must not be negative (http %d, api %d)", c.HTTPPort, c.APIPort)
	}
	return nil
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

// getEnvList splits a comma separated variable, dropping blank entries.
func getEnvList(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
