// internal/workers/communication/notify-onboarding-status/config.go
package notifyonboardingstatus

import (
	"time"

	"onboarding-workers/internal/common/config"
)

type Config struct {
	Timeout      time.Duration
	EmailEnabled bool
	SMSEnabled   bool
	// SMSThreshold is the lowest priority that also goes out by SMS.
	SMSThreshold string
	HREmail      string
}

func LoadConfig(cfg *config.Config) *Config {
	threshold := cfg.Notifications.SMS.PriorityThreshold
	if threshold == "" {
		threshold = PriorityHigh
	}
	return &Config{
		Timeout:      30 * time.Second,
		EmailEnabled: cfg.Notifications.Email.Enabled,
		SMSEnabled:   cfg.Notifications.SMS.Enabled,
		SMSThreshold: threshold,
		HREmail:      cfg.Onboarding.HREmail,
	}
}
