// internal/workers/onboarding/update-form-status/config.go
package updateformstatus

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
