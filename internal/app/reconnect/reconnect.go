package reconnect

import (
	"time"

	"fleetsync/internal/config"
)

// Policy is the bounded fixed-interval retry rule applied after an unexpected closure
type Policy struct {
	MaxAttempts int
	Interval    time.Duration
}

// Decision is the outcome of consulting the policy
type Decision struct {
	Retry   bool
	Attempt int
	Delay   time.Duration
}

// NewPolicy creates a policy from the retry configuration
func NewPolicy(cfg *config.Config) Policy {
	return Policy{
		MaxAttempts: cfg.Retry.Attempts,
		Interval:    cfg.Retry.Interval,
	}
}

// Next decides whether another attempt is allowed after attempts have already been made.
// Attempt is the counter value to store when Retry is true.
func (p Policy) Next(attempts int) Decision {
	if attempts < 0 {
		attempts = 0
	}

	if attempts >= p.MaxAttempts {
		return Decision{Retry: false, Attempt: attempts}
	}

	return Decision{
		Retry:   true,
		Attempt: attempts + 1,
		Delay:   p.Interval,
	}
}
