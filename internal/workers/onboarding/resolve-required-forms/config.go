// internal/workers/onboarding/resolve-required-forms/config.go
package resolverequiredforms

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}
