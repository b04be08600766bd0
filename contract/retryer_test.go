package contract

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryer_TerminalErrorNeverRetries(t *testing.T) {
	r := NewRetryer(RetryPolicy{MaxAttempts: 5, Backoff: DefaultRetryPolicy.Backoff})
	assert.False(t, r.ContinueOrPropagate(errors.New("boom")))
}

func TestRetryer_StopsAtMaxAttempts(t *testing.T) {
	r := NewRetryer(RetryPolicy{MaxAttempts: 2, Backoff: &zeroBackoff{}})
	err := Retryable(errors.New("transient"), 0)

	assert.True(t, r.ContinueOrPropagate(err))
	assert.False(t, r.ContinueOrPropagate(err))
	assert.Equal(t, 2, r.Attempts())
}

func TestRetryer_IdempotentOnlyGatesNonIdempotentVerbs(t *testing.T) {
	policy := IdempotentOnly(RetryPolicy{MaxAttempts: 5, Backoff: &zeroBackoff{}}, "POST")
	r := NewRetryer(policy)
	assert.False(t, r.ContinueOrPropagate(Retryable(errors.New("transient"), 0)))
}

func TestRetryer_IdempotentOnlyAllowsIdempotentVerbs(t *testing.T) {
	policy := IdempotentOnly(RetryPolicy{MaxAttempts: 5, Backoff: &zeroBackoff{}}, "GET")
	r := NewRetryer(policy)
	assert.True(t, r.ContinueOrPropagate(Retryable(errors.New("transient"), 0)))
}

func TestRetryer_RetryAfterOverridesBackoff(t *testing.T) {
	r := NewRetryer(RetryPolicy{MaxAttempts: 5, Backoff: &panicBackoff{}})
	start := time.Now()
	assert.True(t, r.ContinueOrPropagate(Retryable(errors.New("transient"), 5*time.Millisecond)))
	assert.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)
}

type zeroBackoff struct{}

func (zeroBackoff) Backoff(int) time.Duration { return 0 }

type panicBackoff struct{}

func (panicBackoff) Backoff(int) time.Duration {
	panic("backoff should not be consulted when RetryAfter is set")
}

func TestDefaultRetryPolicy_Normalize(t *testing.T) {
	p := RetryPolicy{}.normalize()
	require.Equal(t, DefaultRetryPolicy.MaxAttempts, p.MaxAttempts)
	require.NotNil(t, p.Backoff)
}
