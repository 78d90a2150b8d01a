// internal/common/camunda/client.go
package camunda

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"onboarding-workers/internal/common/logger"
)

// Client wraps the Zeebe gRPC client.
type Client struct {
	client zbc.Client
	config *ClientConfig
}

// ClientConfig holds configuration for the Camunda/Zeebe client.
type ClientConfig struct {
	GatewayAddress         string
	UsePlaintextConnection bool
	ConnectionTimeout      time.Duration
	RetryConfig            *RetryConfig
}

// RetryConfig defines retry behavior for transient failures.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

var DefaultRetryConfig = &RetryConfig{
	MaxRetries: 10,
	BaseDelay:  2 * time.Second,
	MaxDelay:   30 * time.Second,
}

// Connect creates the Zeebe client and waits for the broker topology,
// retrying transient failures with exponential backoff.
func Connect(ctx context.Context, config *ClientConfig, log logger.Logger) (*Client, error) {
	if config.RetryConfig == nil {
		config.RetryConfig = DefaultRetryConfig
	}
	if config.ConnectionTimeout == 0 {
		config.ConnectionTimeout = 10 * time.Second
	}

	zeebeClient, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         config.GatewayAddress,
		UsePlaintextConnection: config.UsePlaintextConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}

	c := &Client{client: zeebeClient, config: config}
	err = Retry(ctx, config.RetryConfig, log, "zeebe topology", func(ctx context.Context) error {
		return c.HealthCheck(ctx)
	})
	if err != nil {
		zeebeClient.Close()
		return nil, fmt.Errorf("failed to connect to Zeebe broker at %s: %w", config.GatewayAddress, err)
	}
	return c, nil
}

// Zeebe returns the raw client used to open job workers.
func (c *Client) Zeebe() zbc.Client {
	return c.client
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// HealthCheck requests the broker topology.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.ConnectionTimeout)
	defer cancel()

	if _, err := c.client.NewTopologyCommand().Send(ctx); err != nil {
		return fmt.Errorf("zeebe health check failed: %w", err)
	}
	return nil
}

// Retry runs op until it succeeds, a non-transient error is returned, or the
// attempts in cfg are used up. The delay doubles after each attempt.
func Retry(ctx context.Context, cfg *RetryConfig, log logger.Logger, operation string, op func(context.Context) error) error {
	var err error
	delay := cfg.BaseDelay

	for attempt := 1; attempt <= cfg.MaxRetries; attempt++ {
		if err = op(ctx); err == nil {
			return nil
		}
		if !IsTransient(err) || attempt == cfg.MaxRetries {
			break
		}

		log.Warn(operation+" failed, retrying", map[string]interface{}{
			"error":       err.Error(),
			"attempt":     attempt,
			"maxRetries":  cfg.MaxRetries,
			"nextRetryIn": delay.String(),
		})

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("%s cancelled after %d attempts: %w", operation, attempt, ctx.Err())
		}

		delay *= 2
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	return fmt.Errorf("%s failed: %w", operation, err)
}

// IsTransient reports whether err looks like a connectivity problem.
func IsTransient(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, phrase := range []string{
		"connection refused",
		"connection reset",
		"timeout",
		"deadline exceeded",
		"unavailable",
		"unreachable",
		"broken pipe",
		"no such host",
		"i/o timeout",
	} {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}
