// internal/common/config/validate.go
package config

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Elasticsearch index names are lower case and may not start with -, _ or +.
var indexNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

func init() {
	// report the yaml key rather than the Go field name
	validation.ErrorTag = "mapstructure"
}

func validateConfig(cfg *Config) error {
	pg := &cfg.Database.Postgres
	es := &cfg.Database.Elasticsearch
	rd := &cfg.Database.Redis
	email := &cfg.Notifications.Email
	sms := &cfg.Notifications.SMS

	return validation.Errors{
		"camunda": validation.ValidateStruct(&cfg.Camunda,
			validation.Field(&cfg.Camunda.BrokerAddress, validation.Required, is.DialString),
			validation.Field(&cfg.Camunda.MaxJobsActive, validation.Min(1)),
		),
		"database.postgres": validation.ValidateStruct(pg,
			validation.Field(&pg.Host, validation.Required),
			validation.Field(&pg.Database, validation.Required),
			validation.Field(&pg.User, validation.Required),
			validation.Field(&pg.Port, validation.Min(1), validation.Max(65535)),
			validation.Field(&pg.SSLMode, validation.In("disable", "allow", "prefer", "require", "verify-ca", "verify-full")),
		),
		"database.elasticsearch": validation.ValidateStruct(es,
			validation.Field(&es.URL,
				validation.When(len(es.Addresses) == 0, validation.Required.Error("url or addresses is required")),
				is.RequestURL,
			),
			validation.Field(&es.Addresses, validation.Each(is.RequestURL)),
		),
		"database.redis": validation.ValidateStruct(rd,
			validation.Field(&rd.Address, validation.Required, is.DialString),
			validation.Field(&rd.DB, validation.Min(0)),
		),
		"notifications.email": validation.ValidateStruct(email,
			validation.Field(&email.FromEmail, validation.When(email.Enabled, validation.Required), is.EmailFormat),
		),
		"notifications.sms": validation.ValidateStruct(sms,
			validation.Field(&sms.PriorityThreshold, validation.In("low", "normal", "high")),
		),
		"onboarding": validation.ValidateStruct(&cfg.Onboarding,
			validation.Field(&cfg.Onboarding.CacheTTL, validation.Min(0)),
			validation.Field(&cfg.Onboarding.IndexName, validation.Required, validation.Match(indexNamePattern)),
			validation.Field(&cfg.Onboarding.HREmail, is.EmailFormat),
		),
	}.Filter()
}
