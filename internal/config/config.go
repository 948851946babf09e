package config

import "time"

// Config is the root configuration for the realtime dashboard core.
type Config struct {
	Instance InstanceConfig `yaml:"instance"`
	API      APIConfig      `yaml:"api"`
	Realtime RealtimeConfig `yaml:"realtime"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// InstanceConfig identifies the tenant this dashboard instance serves.
type InstanceConfig struct {
	Tenant string `yaml:"tenant"`
}

// APIConfig holds server endpoints and credentials.
type APIConfig struct {
	BaseURL   string `yaml:"base_url"`   // REST base URL, e.g. https://api.trysamm.com/v1
	WSURL     string `yaml:"ws_url"`     // realtime endpoint; derived from base_url when empty
	Token     string `yaml:"token"`      // bearer token (supports ${VAR} expansion)
	TokenPath string `yaml:"token_path"` // path to a file holding the token; wins over token
}

// RealtimeConfig holds connection-manager settings.
type RealtimeConfig struct {
	Reconnect ReconnectConfig `yaml:"reconnect"`
	Heartbeat HeartbeatConfig `yaml:"heartbeat"`
}

// ReconnectConfig controls automatic reconnection after unexpected closes.
type ReconnectConfig struct {
	Enabled      *bool         `yaml:"enabled"` // pointer so "absent" defaults to true
	MaxAttempts  int           `yaml:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
}

// HeartbeatConfig controls liveness probing of the connection.
type HeartbeatConfig struct {
	Enabled  *bool         `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
	Timeout  time.Duration `yaml:"timeout"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}
