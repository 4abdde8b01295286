package config_test

import (
	"fmt"
	"time"

	"feedwatch/internal/config"
)

// Example of creating a default configuration
func ExampleDefault() {
	cfg := config.Default()
	fmt.Println("Poll Interval:", cfg.Source.PollInterval)
	fmt.Println("Reset Hour:", cfg.Feeding.ResetHour)
	fmt.Println("Windows:", len(cfg.Feeding.Windows))
	// Output:
	// Poll Interval: 2m0s
	// Reset Hour: 2
	// Windows: 2
}

// Example of setting poll interval with validation
func ExampleConfig_SetPollInterval() {
	cfg := config.Default()

	// Valid interval
	if err := cfg.SetPollInterval(30 * time.Second); err != nil {
		fmt.Println("Error:", err)
	} else {
		fmt.Println("Poll interval set to:", cfg.Source.PollInterval)
	}

	// Invalid interval (too low)
	if err := cfg.SetPollInterval(5 * time.Second); err != nil {
		fmt.Println("Error:", err)
	}

	// Output:
	// Poll interval set to: 30s
	// Error: poll interval cannot be less than 10s
}

// Example of validating configuration
func ExampleConfig_Validate() {
	cfg := config.Default()

	// The source URL is the one field without a usable default.
	if err := cfg.Validate(); err != nil {
		fmt.Println("Invalid config:", err)
	}

	cfg.Source.URL = "https://example.com/beacon.csv"
	if err := cfg.Validate(); err != nil {
		fmt.Println("Invalid config:", err)
	} else {
		fmt.Println("Configuration is valid")
	}

	// Output:
	// Invalid config: source URL cannot be empty (set FEEDWATCH_SOURCE_URL)
	// Configuration is valid
}

// Example of parsing a window list
func ExampleParseWindows() {
	windows, err := config.ParseWindows("breakfast=7-10,dinner=16-20")
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	for _, w := range windows {
		fmt.Printf("%s [%d-%d)\n", w.Name, w.StartHour, w.EndHour)
	}
	// Output:
	// breakfast [7-10)
	// dinner [16-20)
}
