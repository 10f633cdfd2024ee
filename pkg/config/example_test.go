package config_test

import (
	"fmt"

	"github.com/wonny/signalboard/pkg/config"
)

// Example demonstrates how to use the config package
func Example() {
	// Load configuration (DATABASE_URL is required)
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		return
	}

	// Access configuration values
	fmt.Printf("Server running on port: %s\n", cfg.Port)
	fmt.Printf("Environment: %s\n", cfg.Env)
	fmt.Printf("Site: %s\n", cfg.SiteURL)
	fmt.Printf("Redis cache enabled: %v\n", cfg.Redis.Enabled)
	fmt.Printf("Daily cron schedule: %s\n", cfg.Cron.DailySchedule)
	fmt.Printf("Emails enabled: %v\n", cfg.Email.APIKey != "")
}
