package contract

import (
	"errors"
	"time"

	req "github.com/cartage-http/declare"
)

// DefaultRetryPolicy matches spec §4.5's design defaults: five attempts,
// 100ms initial backoff, 1.5x multiplier, capped at 1s.
// nolint:gochecknoglobals
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts: 5,
	Backoff: &req.ExponentialBackoff{
		BaseDelay:  100 * time.Millisecond,
		Multiplier: 1.5,
		MaxDelay:   1 * time.Second,
	},
}

// RetryPolicy configures a Retryer. ShouldRetry, if set, is an additional
// gate consulted after a RetryableError has already been identified — for
// example IdempotentOnly restricts retries to idempotent HTTP verbs,
// mirroring the teacher's OnlyIdempotentShouldRetry combinator.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     req.Backoffer
	ShouldRetry func(attempt int, err error) bool
}

func (p RetryPolicy) normalize() RetryPolicy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = DefaultRetryPolicy.MaxAttempts
	}
	if p.Backoff == nil {
		p.Backoff = DefaultRetryPolicy.Backoff
	}
	return p
}

// IdempotentOnly wraps a RetryPolicy so it only ever retries when verb is
// one of GET/HEAD/OPTIONS/TRACE, mirroring the teacher's
// OnlyIdempotentShouldRetry (retry.go).
func IdempotentOnly(policy RetryPolicy, verb string) RetryPolicy {
	inner := policy.ShouldRetry
	idempotent := isIdempotentVerb(verb)
	policy.ShouldRetry = func(attempt int, err error) bool {
		if !idempotent {
			return false
		}
		if inner != nil {
			return inner(attempt, err)
		}
		return true
	}
	return policy
}

func isIdempotentVerb(verb string) bool {
	switch verb {
	case "GET", "HEAD", "OPTIONS", "TRACE":
		return true
	default:
		return false
	}
}

// Retryer holds the mutable state (attempt count) of a single top-level
// invocation of a MethodHandler (spec §4.5). Construct a fresh one per
// invocation; never share across calls.
type Retryer struct {
	policy  RetryPolicy
	attempt int
	stopped bool
}

// NewRetryer constructs a fresh Retryer for one invocation.
func NewRetryer(policy RetryPolicy) *Retryer {
	return &Retryer{policy: policy.normalize()}
}

// ContinueOrPropagate decides what to do after a pipeline attempt failed
// with err. If err is not a *RetryableError, it returns false immediately
// (the caller should propagate err as a terminal failure). Otherwise it
// increments the attempt count; if attempts remain and the policy's
// ShouldRetry gate (if any) passes, it sleeps for the backoff/RetryAfter
// duration and returns true (the caller should retry); otherwise it
// returns false (attempts exhausted — propagate).
func (r *Retryer) ContinueOrPropagate(err error) bool {
	var re *RetryableError
	if !errors.As(err, &re) {
		return false
	}

	r.attempt++
	if r.attempt >= r.policy.MaxAttempts {
		r.stopped = true
		return false
	}
	if r.policy.ShouldRetry != nil && !r.policy.ShouldRetry(r.attempt, err) {
		r.stopped = true
		return false
	}

	wait := re.RetryAfter
	if wait <= 0 {
		wait = r.policy.Backoff.Backoff(r.attempt)
	}
	if wait > 0 {
		time.Sleep(wait)
	}
	return true
}

// Attempts returns the number of attempts the Retryer has seen so far
// (including the first, successful-or-not, attempt the caller already
// made before ever calling ContinueOrPropagate).
func (r *Retryer) Attempts() int {
	if r.stopped {
		return r.attempt
	}
	return r.attempt + 1
}
