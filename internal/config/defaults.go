package config

import (
	"strings"
	"time"
)

// Default values for optional configuration fields.
const (
	DefaultReconnectMaxAttempts  = 5
	DefaultReconnectInitialDelay = 1 * time.Second
	DefaultReconnectMaxDelay     = 30 * time.Second
	DefaultHeartbeatInterval     = 30 * time.Second
	DefaultHeartbeatTimeout      = 10 * time.Second
	DefaultMetricsPort           = 9090
	DefaultMetricsPath           = "/metrics"

	// DefaultRealtimePath is appended to the API base URL to derive the
	// realtime endpoint when ws_url is not set explicitly.
	DefaultRealtimePath = "/realtime"
)

func (c *Config) applyDefaults() {
	if c.API.WSURL == "" {
		c.API.WSURL = DeriveWSURL(c.API.BaseURL)
	}

	enabled := true
	if c.Realtime.Reconnect.Enabled == nil {
		c.Realtime.Reconnect.Enabled = &enabled
	}
	if c.Realtime.Reconnect.MaxAttempts == 0 {
		c.Realtime.Reconnect.MaxAttempts = DefaultReconnectMaxAttempts
	}
	if c.Realtime.Reconnect.InitialDelay == 0 {
		c.Realtime.Reconnect.InitialDelay = DefaultReconnectInitialDelay
	}
	if c.Realtime.Reconnect.MaxDelay == 0 {
		c.Realtime.Reconnect.MaxDelay = DefaultReconnectMaxDelay
	}

	hbEnabled := true
	if c.Realtime.Heartbeat.Enabled == nil {
		c.Realtime.Heartbeat.Enabled = &hbEnabled
	}
	if c.Realtime.Heartbeat.Interval == 0 {
		c.Realtime.Heartbeat.Interval = DefaultHeartbeatInterval
	}
	if c.Realtime.Heartbeat.Timeout == 0 {
		c.Realtime.Heartbeat.Timeout = DefaultHeartbeatTimeout
	}

	if c.Metrics.Port == 0 {
		c.Metrics.Port = DefaultMetricsPort
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
}

// DeriveWSURL converts an HTTP(S) base URL into the websocket endpoint for
// the realtime stream. An empty base yields an empty result so validation
// can report the missing field.
func DeriveWSURL(baseURL string) string {
	if baseURL == "" {
		return ""
	}

	ws := baseURL
	switch {
	case strings.HasPrefix(ws, "https://"):
		ws = "wss://" + strings.TrimPrefix(ws, "https://")
	case strings.HasPrefix(ws, "http://"):
		ws = "ws://" + strings.TrimPrefix(ws, "http://")
	}

	return strings.TrimRight(ws, "/") + DefaultRealtimePath
}
