package config

import (
	"fmt"
	"os"
	"sort"
	"time"

	"feedwatch/internal/models"
)

// Config holds all application configuration
type Config struct {
	// Source configuration
	Source SourceConfig

	// Feeding classification configuration
	Feeding FeedingConfig

	// Database configuration
	Database DatabaseConfig

	// Daemon configuration
	Daemon DaemonConfig

	// Web server configuration
	Web WebConfig
}

// SourceConfig holds beacon-log fetching configuration
type SourceConfig struct {
	URL             string        // URL of the beacon CSV log
	PollInterval    time.Duration // How often to fetch and reclassify
	MinPollInterval time.Duration // Minimum allowed poll interval
	MaxPollInterval time.Duration // Maximum allowed poll interval
	FetchTimeout    time.Duration // Per-request timeout for the fetch
}

// FeedingConfig holds the feeding-day and window rules
type FeedingConfig struct {
	ResetHour int             // Hour of day (0-23) at which the feeding day rolls over
	Windows   []models.Window // Named meal windows, in display order
	TimeZone  string          // Zone used for parsing and hour-of-day tests
}

// DatabaseConfig holds history database configuration
type DatabaseConfig struct {
	Path          string // Path to SQLite database file
	RetentionDays int    // Cycle history older than this is pruned; 0 keeps everything
}

// DaemonConfig holds daemon process configuration
type DaemonConfig struct {
	PIDFile string // Path to PID file for daemon management
}

// WebConfig holds web server configuration
type WebConfig struct {
	Host string // Host to bind web server to
	Port int    // Port for web server
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			URL:             "", // Required; no sensible default exists
			PollInterval:    120 * time.Second,
			MinPollInterval: 10 * time.Second,
			MaxPollInterval: 3600 * time.Second,
			FetchTimeout:    15 * time.Second,
		},
		Feeding: FeedingConfig{
			ResetHour: 2,
			Windows: []models.Window{
				{Name: "breakfast", StartHour: 7, EndHour: 10},
				{Name: "dinner", StartHour: 16, EndHour: 20},
			},
			TimeZone: "Local",
		},
		Database: DatabaseConfig{
			Path:          "", // Empty means use default ~/.config/feedwatch/feedwatch.db
			RetentionDays: 90,
		},
		Daemon: DaemonConfig{
			PIDFile: fmt.Sprintf("/tmp/feedwatch-%d.pid", os.Getuid()),
		},
		Web: WebConfig{
			Host: "localhost",
			Port: 10000 + os.Getuid(),
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Source.URL == "" {
		return fmt.Errorf("source URL cannot be empty (set FEEDWATCH_SOURCE_URL)")
	}

	if c.Source.PollInterval < c.Source.MinPollInterval {
		return fmt.Errorf("poll interval (%v) cannot be less than minimum (%v)",
			c.Source.PollInterval, c.Source.MinPollInterval)
	}

	if c.Source.PollInterval > c.Source.MaxPollInterval {
		return fmt.Errorf("poll interval (%v) cannot be greater than maximum (%v)",
			c.Source.PollInterval, c.Source.MaxPollInterval)
	}

	if c.Feeding.ResetHour < 0 || c.Feeding.ResetHour > 23 {
		return fmt.Errorf("reset hour must be between 0 and 23, got %d", c.Feeding.ResetHour)
	}

	if err := validateWindows(c.Feeding.Windows); err != nil {
		return err
	}

	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid time zone %q: %w", c.Feeding.TimeZone, err)
	}

	// Validate web config
	if c.Web.Port < 1 || c.Web.Port > 65535 {
		return fmt.Errorf("web port must be between 1 and 65535, got %d", c.Web.Port)
	}

	if c.Web.Host == "" {
		return fmt.Errorf("web host cannot be empty")
	}

	if c.Database.RetentionDays < 0 {
		return fmt.Errorf("history retention cannot be negative, got %d days", c.Database.RetentionDays)
	}

	if c.Daemon.PIDFile == "" {
		return fmt.Errorf("PID file path cannot be empty")
	}

	return nil
}

func validateWindows(windows []models.Window) error {
	seen := make(map[string]bool, len(windows))
	for _, w := range windows {
		if w.Name == "" {
			return fmt.Errorf("window name cannot be empty")
		}
		if seen[w.Name] {
			return fmt.Errorf("duplicate window name %q", w.Name)
		}
		seen[w.Name] = true

		if w.StartHour < 0 || w.StartHour > 23 {
			return fmt.Errorf("window %q: start hour must be between 0 and 23, got %d", w.Name, w.StartHour)
		}
		if w.EndHour < 1 || w.EndHour > 24 {
			return fmt.Errorf("window %q: end hour must be between 1 and 24, got %d", w.Name, w.EndHour)
		}
		if w.StartHour >= w.EndHour {
			return fmt.Errorf("window %q: start hour (%d) must be before end hour (%d)", w.Name, w.StartHour, w.EndHour)
		}
	}

	// Overlapping windows would make classification ambiguous.
	sorted := make([]models.Window, len(windows))
	copy(sorted, windows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartHour < sorted[j].StartHour })
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].Overlaps(sorted[i]) {
			return fmt.Errorf("windows %q and %q overlap", sorted[i-1].Name, sorted[i].Name)
		}
	}

	return nil
}

// SetPollInterval sets the poll interval with validation
func (c *Config) SetPollInterval(interval time.Duration) error {
	if interval < c.Source.MinPollInterval {
		return fmt.Errorf("poll interval cannot be less than %v", c.Source.MinPollInterval)
	}
	if interval > c.Source.MaxPollInterval {
		return fmt.Errorf("poll interval cannot be greater than %v", c.Source.MaxPollInterval)
	}
	c.Source.PollInterval = interval
	return nil
}

// SetWebPort sets the web server port with validation
func (c *Config) SetWebPort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	c.Web.Port = port
	return nil
}

// Location resolves the configured time zone
func (c *Config) Location() (*time.Location, error) {
	if c.Feeding.TimeZone == "" || c.Feeding.TimeZone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Feeding.TimeZone)
}

// String returns a string representation of the config
func (c *Config) String() string {
	windows := ""
	for i, w := range c.Feeding.Windows {
		if i > 0 {
			windows += ", "
		}
		windows += fmt.Sprintf("%s [%d-%d)", w.Name, w.StartHour, w.EndHour)
	}

	return fmt.Sprintf(`Configuration:
  Source:
    URL: %s
    Poll Interval: %v
    Min Interval: %v
    Max Interval: %v
    Fetch Timeout: %v
  Feeding:
    Reset Hour: %d
    Windows: %s
    Time Zone: %s
  Database:
    Path: %s
    Retention: %d days
  Daemon:
    PID File: %s
  Web:
    Host: %s
    Port: %d`,
		c.Source.URL,
		c.Source.PollInterval,
		c.Source.MinPollInterval,
		c.Source.MaxPollInterval,
		c.Source.FetchTimeout,
		c.Feeding.ResetHour,
		windows,
		c.Feeding.TimeZone,
		c.Database.Path,
		c.Database.RetentionDays,
		c.Daemon.PIDFile,
		c.Web.Host,
		c.Web.Port,
	)
}
