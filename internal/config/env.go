package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"feedwatch/internal/models"
)

// LoadFromEnv loads configuration from environment variables
// Environment variables override default values
func LoadFromEnv(cfg *Config) {
	// Source configuration
	if url := os.Getenv("FEEDWATCH_SOURCE_URL"); url != "" {
		cfg.Source.URL = url
	}

	if pollInterval := os.Getenv("FEEDWATCH_POLL_INTERVAL"); pollInterval != "" {
		if seconds, err := strconv.Atoi(pollInterval); err == nil && seconds > 0 {
			interval := time.Duration(seconds) * time.Second
			if interval >= cfg.Source.MinPollInterval && interval <= cfg.Source.MaxPollInterval {
				cfg.Source.PollInterval = interval
			}
		}
	}

	if fetchTimeout := os.Getenv("FEEDWATCH_FETCH_TIMEOUT"); fetchTimeout != "" {
		if seconds, err := strconv.Atoi(fetchTimeout); err == nil && seconds > 0 {
			cfg.Source.FetchTimeout = time.Duration(seconds) * time.Second
		}
	}

	// Feeding configuration
	if resetHour := os.Getenv("FEEDWATCH_RESET_HOUR"); resetHour != "" {
		if hour, err := strconv.Atoi(resetHour); err == nil && hour >= 0 && hour <= 23 {
			cfg.Feeding.ResetHour = hour
		}
	}

	if windows := os.Getenv("FEEDWATCH_WINDOWS"); windows != "" {
		if parsed, err := ParseWindows(windows); err == nil {
			cfg.Feeding.Windows = parsed
		}
	}

	if timeZone := os.Getenv("FEEDWATCH_TIMEZONE"); timeZone != "" {
		cfg.Feeding.TimeZone = timeZone
	}

	// Database configuration
	if dbPath := os.Getenv("FEEDWATCH_DB_PATH"); dbPath != "" {
		cfg.Database.Path = dbPath
	}

	if retention := os.Getenv("FEEDWATCH_DB_RETENTION_DAYS"); retention != "" {
		if days, err := strconv.Atoi(retention); err == nil && days >= 0 {
			cfg.Database.RetentionDays = days
		}
	}

	// Daemon configuration
	if pidFile := os.Getenv("FEEDWATCH_PID_FILE"); pidFile != "" {
		cfg.Daemon.PIDFile = pidFile
	}

	// Web configuration
	if webHost := os.Getenv("FEEDWATCH_WEB_HOST"); webHost != "" {
		cfg.Web.Host = webHost
	}

	if webPort := os.Getenv("FEEDWATCH_WEB_PORT"); webPort != "" {
		if port, err := strconv.Atoi(webPort); err == nil && port > 0 && port <= 65535 {
			cfg.Web.Port = port
		}
	}
}

// ParseWindows parses a window list of the form
// "breakfast=7-10,dinner=16-20" into named windows, preserving order.
func ParseWindows(s string) ([]models.Window, error) {
	var windows []models.Window

	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		name, hours, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("invalid window %q: expected name=start-end", part)
		}

		startStr, endStr, ok := strings.Cut(hours, "-")
		if !ok {
			return nil, fmt.Errorf("invalid window %q: expected name=start-end", part)
		}

		start, err := strconv.Atoi(strings.TrimSpace(startStr))
		if err != nil {
			return nil, fmt.Errorf("invalid start hour in window %q: %w", part, err)
		}

		end, err := strconv.Atoi(strings.TrimSpace(endStr))
		if err != nil {
			return nil, fmt.Errorf("invalid end hour in window %q: %w", part, err)
		}

		windows = append(windows, models.Window{
			Name:      strings.TrimSpace(name),
			StartHour: start,
			EndHour:   end,
		})
	}

	if len(windows) == 0 {
		return nil, fmt.Errorf("no windows in %q", s)
	}

	if err := validateWindows(windows); err != nil {
		return nil, err
	}

	return windows, nil
}

// New creates a new Config with default values and loads from environment.
// A .env file in the working directory is applied first when present.
func New() *Config {
	_ = godotenv.Load()

	cfg := Default()
	LoadFromEnv(cfg)
	return cfg
}
