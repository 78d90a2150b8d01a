// internal/workers/onboarding/compute-onboarding-progress/config.go
package computeonboardingprogress

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}
