package realtime

import (
	"math/rand"
	"time"
)

// Policy decides whether a dropped connection is retried, and how long to
// wait before each attempt.
type Policy struct {
	cfg ReconnectConfig
}

// NewPolicy creates a reconnection policy from its immutable config.
func NewPolicy(cfg ReconnectConfig) Policy {
	return Policy{cfg: cfg}
}

// ShouldRetry reports whether a close with the given code, after the given
// number of prior retry attempts, warrants another connection attempt.
// closeCode 0 means the close code is unknown (e.g. a failed dial) and is
// treated as retryable.
func (p Policy) ShouldRetry(closeCode, attempts int) bool {
	if !p.cfg.Enabled {
		return false
	}

	switch closeCode {
	case CloseNormal, CloseInvalidCredentials, CloseForbidden:
		// Intentional teardown and credential rejections never retry.
		return false
	}

	return attempts < p.cfg.MaxAttempts
}

// NextDelay computes the backoff before retry attempt number attempts:
// min(initial * 2^attempts, max), plus up to 20% uniform jitter so fleets of
// clients do not reconnect in lockstep after a server restart.
func (p Policy) NextDelay(attempts int) time.Duration {
	base := p.cfg.InitialDelay
	for i := 0; i < attempts; i++ {
		base *= 2
		if base <= 0 || base >= p.cfg.MaxDelay {
			base = p.cfg.MaxDelay
			break
		}
	}
	if base > p.cfg.MaxDelay {
		base = p.cfg.MaxDelay
	}

	jitter := time.Duration(rand.Int63n(int64(base/5) + 1))
	return base + jitter
}
