// internal/workers/data-access/search-onboarding-progress/config.go
package searchonboardingprogress

import (
	"time"

	"onboarding-workers/internal/common/config"
)

type Config struct {
	Timeout   time.Duration
	IndexName string
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		Timeout:   30 * time.Second,
		IndexName: cfg.Onboarding.IndexName,
	}
}
