// Package resilience turns an unreliable remote call into one with bounded,
// predictable failure behavior. Transient failures are retried with
// exponential backoff and jitter until a wall-clock deadline; anything else
// is returned to the caller unchanged on first occurrence.
package resilience

import "time"

// Policy configures WithRetry. The zero value disables retries.
type Policy struct {
	Enabled      bool          // when false the operation runs exactly once
	InitialDelay time.Duration // wait before the first retry
	MaxDelay     time.Duration // cap on the un-jittered wait
	Multiplier   float64       // growth factor applied after each wait
	Timeout      time.Duration // total wall-clock budget for all attempts
}

// DefaultPolicy returns the policy used for Gemini calls unless configured otherwise.
func DefaultPolicy() Policy {
	return Policy{
		Enabled:      true,
		InitialDelay: 2 * time.Second,
		MaxDelay:     60 * time.Second,
		Multiplier:   2.0,
		Timeout:      180 * time.Second,
	}
}

// Validate checks that an enabled policy describes a growing, bounded backoff.
func (p Policy) Validate() error {
	if !p.Enabled {
		return nil
	}
	switch {
	case p.InitialDelay <= 0:
		return ErrInvalidPolicy.Msg("initial delay must be positive")
	case p.MaxDelay <= 0:
		return ErrInvalidPolicy.Msg("max delay must be positive")
	case p.InitialDelay > p.MaxDelay:
		return ErrInvalidPolicy.Msg("initial delay must not exceed max delay")
	case p.Multiplier <= 1:
		return ErrInvalidPolicy.Msg("multiplier must be greater than 1")
	case p.Timeout <= 0:
		return ErrInvalidPolicy.Msg("timeout must be positive")
	}
	return nil
}
