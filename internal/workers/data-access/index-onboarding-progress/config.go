// internal/workers/data-access/index-onboarding-progress/config.go
package indexonboardingprogress

import (
	"time"

	"onboarding-workers/internal/common/config"
)

type Config struct {
	Timeout   time.Duration
	IndexName string
	// Refresh makes the document visible to search before the job completes.
	Refresh bool
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		Timeout:   10 * time.Second,
		IndexName: cfg.Onboarding.IndexName,
		Refresh:   cfg.App.Environment == "development",
	}
}
