// internal/common/config/loader_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
camunda:
  broker_address: ${TEST_ZEEBE_ADDRESS}
database:
  postgres:
    host: localhost
    database: onboarding
    user: onboarding
  elasticsearch:
    url: http://localhost:9200
  redis:
    address: localhost:6379
workers:
  update-form-status:
    enabled: false
onboarding:
  index_name: progress-test
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("TEST_ZEEBE_ADDRESS", "zeebe:26500")
	t.Setenv("ONBOARDING_HR_EMAIL", "hr@example.com")

	cfg, err := LoadFromFile(writeConfig(t, testConfig))
	require.NoError(t, err)

	assert.Equal(t, "zeebe:26500", cfg.Camunda.BrokerAddress)
	assert.Equal(t, 10, cfg.Camunda.MaxJobsActive)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, []string{"http://localhost:9200"}, cfg.Database.Elasticsearch.GetAddresses())

	assert.Equal(t, "progress-test", cfg.Onboarding.IndexName)
	assert.Equal(t, 5*time.Minute, cfg.Onboarding.CacheDuration())
	assert.Equal(t, "hr@example.com", cfg.Onboarding.HREmail)
	assert.Equal(t, ":8080", cfg.Metrics.Address)

	wcfg := GetWorkerConfig(cfg, "update-form-status")
	assert.False(t, wcfg.Enabled)
	assert.Equal(t, 3, wcfg.MaxRetries)
	assert.Equal(t, 30000, wcfg.Timeout)
	assert.False(t, IsWorkerEnabled(cfg, "update-form-status"))
	assert.True(t, IsWorkerEnabled(cfg, "classify-form-status"))
}

func TestLoadFromFile_MissingBroker(t *testing.T) {
	t.Setenv("TEST_ZEEBE_ADDRESS", "")

	_, err := LoadFromFile(writeConfig(t, testConfig))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker_address")
}

func TestLoadFromFile_NotFound(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestGetWorkerConfig_Defaults(t *testing.T) {
	wcfg := GetWorkerConfig(&Config{}, "search-onboarding-progress")

	assert.True(t, wcfg.Enabled)
	assert.Equal(t, 5, wcfg.MaxJobsActive)
	assert.Equal(t, 30*time.Second, GetDuration(wcfg.Timeout))
}

func TestPostgresConfig_GetDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "onboarding", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=onboarding sslmode=disable", p.GetDSN())
}

func validConfig() *Config {
	cfg := &Config{}
	cfg.Camunda.BrokerAddress = "zeebe:26500"
	cfg.Camunda.MaxJobsActive = 10
	cfg.Database.Postgres = PostgresConfig{Host: "db", Port: 5432, Database: "onboarding", User: "u", SSLMode: "disable"}
	cfg.Database.Elasticsearch.URL = "http://elasticsearch:9200"
	cfg.Database.Redis.Address = "redis:6379"
	cfg.Notifications.SMS.PriorityThreshold = "high"
	cfg.Onboarding.IndexName = "onboarding-progress"
	cfg.Onboarding.HREmail = "hr@example.com"
	return cfg
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errKey string
	}{
		{"valid", func(*Config) {}, ""},
		{"addresses replace url", func(c *Config) {
			c.Database.Elasticsearch.URL = ""
			c.Database.Elasticsearch.Addresses = []string{"http://es-1:9200", "http://es-2:9200"}
		}, ""},
		{"no elasticsearch", func(c *Config) { c.Database.Elasticsearch.URL = "" }, "url"},
		{"bad redis address", func(c *Config) { c.Database.Redis.Address = "redis" }, "address"},
		{"bad ssl mode", func(c *Config) { c.Database.Postgres.SSLMode = "sometimes" }, "sslmode"},
		{"unknown sms threshold", func(c *Config) { c.Notifications.SMS.PriorityThreshold = "urgent" }, "priority_threshold"},
		{"email enabled without sender", func(c *Config) { c.Notifications.Email.Enabled = true }, "from_email"},
		{"bad hr email", func(c *Config) { c.Onboarding.HREmail = "hr-at-example" }, "hr_email"},
		{"upper case index", func(c *Config) { c.Onboarding.IndexName = "Onboarding" }, "index_name"},
		{"negative cache ttl", func(c *Config) { c.Onboarding.CacheTTL = -1 }, "cache_ttl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := validateConfig(cfg)
			if tt.errKey == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errKey)
		})
	}
}
