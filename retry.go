package requester

import (
	"math"
	"math/rand"
	"time"
)

// Backoffer calculates how long to wait between attempts.  The attempt argument is the attempt which
// just completed, and starts at 1.  So attempt=1 should return the time to wait between attempt 1 and 2.
//
// contract.RetryPolicy.Backoff holds a Backoffer; contract.DefaultRetryPolicy
// uses ExponentialBackoff below.
type Backoffer interface {
	Backoff(attempt int) time.Duration
}

// ExponentialBackoff defines the configuration options for an exponential backoff strategy.
// The implementation is based on the one from grpc.
//
// The zero value of this struct implements a zero backoff, i.e. no delay between retries.
//
// Examples:
//
//	// exponential backoff.  First delay is one second, each subsequent
//	// delay is 1.6x higher, plus or minus %20 jitter, up to a max
//	// of 120 seconds.
//	&ExponentialBackoff{
//	  BaseDelay:  1.0 * time.Second,
//	  Multiplier: 1.6,
//	  Jitter:     0.2,
//	  MaxDelay:   120 * time.Second,
//	}
//
//	// no backoff
//	&ExponentialBackoff{}
//
//	// fixed backoff
//	&ExponentialBackoff{
//	  BaseDelay: 1 * time.Second,
//	}
//
//	// fixed backoff with some jitter
//	&ExponentialBackoff{
//	  BaseDelay: 1 * time.Second,
//	  Jitter: 0.2,
//	}
type ExponentialBackoff struct {
	// BaseDelay is the amount of time to backoff after the first failure.
	BaseDelay time.Duration
	// Multiplier is the factor with which to multiply backoffs after a
	// failed retry. Should ideally be greater than 1.  0 means no multiplier: delay
	// will be fixed (plus jitter).  This is equivalent to a Multiplier of 1.
	Multiplier float64
	// Jitter is the factor with which backoffs are randomized.  Should ideally be
	// less than 1.  If added jitter would make the delay greater than MaxDelay, the jitter
	// will be redistributed below the MaxDelay.  0 means no jitter.
	Jitter float64
	// MaxDelay is the upper bound of backoff delay.  0 means no max.
	MaxDelay time.Duration
}

func (c *ExponentialBackoff) Backoff(attempt int) time.Duration {
	backoff := float64(c.BaseDelay)

	if c.Multiplier > 0 {
		backoff *= math.Pow(c.Multiplier, float64(attempt-1))
	}

	maxDelayf := float64(c.MaxDelay)
	if c.MaxDelay > 0 {
		backoff = math.Min(backoff, maxDelayf)
	}

	backoff = math.Max(0, backoff)

	if c.Jitter > 0 {
		// nolint:gosec
		backoff *= 1 + c.Jitter*(rand.Float64()*2-1)
		if c.MaxDelay > 0 {
			if delta := backoff - maxDelayf; delta > 0 {
				// jitter bumped the backoff above max delay.  Redistribute
				// below max
				backoff = maxDelayf - delta
			}
		}
	}

	return time.Duration(backoff)
}
