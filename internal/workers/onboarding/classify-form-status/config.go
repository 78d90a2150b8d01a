// internal/workers/onboarding/classify-form-status/config.go
package classifyformstatus

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}
