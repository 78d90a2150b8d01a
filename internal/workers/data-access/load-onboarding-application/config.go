// internal/workers/data-access/load-onboarding-application/config.go
package loadonboardingapplication

import (
	"time"

	"onboarding-workers/internal/common/config"
)

type Config struct {
	Timeout  time.Duration
	CacheTTL time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		Timeout:  10 * time.Second,
		CacheTTL: cfg.Onboarding.CacheDuration(),
	}
}
