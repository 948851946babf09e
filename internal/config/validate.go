package config

import "fmt"

// Validate checks that the configuration can produce a working session.
// Call after applying defaults.
func (c *Config) Validate() error {
	if c.Instance.Tenant == "" {
		return fmt.Errorf("instance.tenant is required")
	}

	if c.API.BaseURL == "" && c.API.WSURL == "" {
		return fmt.Errorf("api.base_url or api.ws_url is required")
	}

	r := c.Realtime.Reconnect
	if r.MaxAttempts < 0 {
		return fmt.Errorf("realtime.reconnect.max_attempts cannot be negative")
	}
	if r.InitialDelay <= 0 {
		return fmt.Errorf("realtime.reconnect.initial_delay must be positive")
	}
	if r.MaxDelay < r.InitialDelay {
		return fmt.Errorf("realtime.reconnect.max_delay (%v) cannot be less than initial_delay (%v)", r.MaxDelay, r.InitialDelay)
	}

	h := c.Realtime.Heartbeat
	if h.Interval <= 0 {
		return fmt.Errorf("realtime.heartbeat.interval must be positive")
	}
	if h.Timeout <= 0 {
		return fmt.Errorf("realtime.heartbeat.timeout must be positive")
	}
	if h.Timeout >= h.Interval {
		return fmt.Errorf("realtime.heartbeat.timeout (%v) must be less than interval (%v)", h.Timeout, h.Interval)
	}

	if c.Metrics.Port < 0 || c.Metrics.Port > 65535 {
		return fmt.Errorf("metrics.port (%d) is out of range", c.Metrics.Port)
	}

	return nil
}
