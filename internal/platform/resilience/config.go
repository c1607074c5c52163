package resilience

import (
	"fmt"
	"time"
)

// CircuitBreakerConfig is the zero-value-disabled breaker setup shared by
// upstream clients.
type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
}

func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
		HalfOpenMaxReq:   1,
	}
}

func NormalizeCircuitBreakerConfig(cfg CircuitBreakerConfig) CircuitBreakerConfig {
	defaults := DefaultCircuitBreakerConfig()
	if cfg.FailureThreshold < 1 {
		cfg.FailureThreshold = defaults.FailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = defaults.OpenTimeout
	}
	if cfg.HalfOpenMaxReq < 1 {
		cfg.HalfOpenMaxReq = defaults.HalfOpenMaxReq
	}
	return cfg
}

// Validate rejects negative values that NormalizeCircuitBreakerConfig would
// otherwise silently replace.
func (c CircuitBreakerConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.FailureThreshold < 0 {
		return fmt.Errorf("failure threshold must be >= 0, got %d", c.FailureThreshold)
	}
	if c.OpenTimeout < 0 {
		return fmt.Errorf("open timeout must be >= 0, got %s", c.OpenTimeout)
	}
	if c.HalfOpenMaxReq < 0 {
		return fmt.Errorf("half-open max requests must be >= 0, got %d", c.HalfOpenMaxReq)
	}
	return nil
}
