package contract

import (
	"fmt"
	"time"

	"github.com/ansel1/merry"
)

// ContractError is returned by Contract.Parse and ClientFactory.Build when an
// operation description is malformed. It is always fatal: there is no retry
// or fallback for a construction-time error.
type ContractError struct {
	ConfigKey string
	Reason    string
}

func (e *ContractError) Error() string {
	if e.ConfigKey == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.ConfigKey, e.Reason)
}

func newContractError(configKey, reason string) error {
	return merry.WithMessage(&ContractError{ConfigKey: configKey, Reason: reason}, reason)
}

// Sentinel contract error reasons. Compare with errors.As(err, &ce) and
// ce.Reason. Unbound-placeholder and form-name failures append ": <name>"
// to the reason.
const (
	ReasonMissingOrAmbiguousVerb   = "missing or ambiguous HTTP verb marker"
	ReasonObserverMethodMustVoid   = "observer-bearing operation must declare a void return"
	ReasonObserverMustBeLast       = "observer parameter must be the last parameter"
	ReasonUnboundPlaceholder       = "template placeholder is not bound to any parameter"
	ReasonRoleConflict             = "url, observer, and body parameter roles must be pairwise distinct"
	ReasonNoDecoderForOperation    = "no decoder registered for operation"
	ReasonFormRequiresBodyTemplate = "form parameters require a body template"
)

// RetryableError marks a failure the Retryer may absorb and re-drive the
// pipeline from. RetryAfter is advisory; zero means "use the policy's normal
// backoff".
type RetryableError struct {
	Err        error
	RetryAfter time.Duration
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err as a RetryableError. A nil err returns nil.
func Retryable(err error, retryAfter time.Duration) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err, RetryAfter: retryAfter}
}

// ExecutionError is a terminal failure from the request/response pipeline.
// Phase distinguishes where in the pipeline the failure happened, which
// governs whether it was eligible for retry (ExecutingPhase) or not
// (ReadingPhase, DecodingPhase).
type ExecutionError struct {
	Phase      Phase
	ConfigKey  string
	Method     string
	URL        string
	StatusCode int
	Err        error
}

// Phase identifies where in the request pipeline a terminal error occurred.
type Phase string

const (
	// ExecutingPhase is before any response bytes were read: transport
	// failures here (connection refused, TLS handshake failure, timeout)
	// are retryable.
	ExecutingPhase Phase = "executing"
	// ReadingPhase is while reading/decoding an already-started response:
	// failures here are never retried.
	ReadingPhase Phase = "reading"
	// DecodingPhase is a status-derived error from an ErrorDecoder.
	// DefaultErrorDecoder wraps it in a RetryableError for 429 and for
	// 5xx other than 501; otherwise it is terminal.
	DecodingPhase Phase = "decoding"
)

func (e *ExecutionError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s %s: status %d: %s", e.Phase, e.Method, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s %s: %s", e.Phase, e.Method, e.URL, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

func newExecutionError(phase Phase, configKey, method, url string, status int, err error) error {
	wrapped := merry.Wrap(err)
	if status != 0 {
		wrapped = wrapped.WithHTTPCode(status)
	}
	return &ExecutionError{
		Phase:      phase,
		ConfigKey:  configKey,
		Method:     method,
		URL:        url,
		StatusCode: status,
		Err:        wrapped,
	}
}

// TemplateError is a programming error raised while rendering a
// RequestTemplate: RequestTemplate.Request returns one when a {name}
// placeholder survived Resolve. JSONArrayObserverDecoder also returns one
// when the response body is not a JSON array.
type TemplateError struct {
	Reason      string
	Placeholder string
}

func (e *TemplateError) Error() string {
	if e.Placeholder == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: {%s}", e.Reason, e.Placeholder)
}

const (
	ReasonTemplateNotFullyResolved = "template not fully resolved"
	ReasonUnboundTemplateParameter = "unbound template parameter"
)

func newTemplateError(reason, placeholder string) error {
	return &TemplateError{Reason: reason, Placeholder: placeholder}
}

// ErrRuntimeClosed is returned by Dispatcher.Call after Close() for any
// streaming operation.
var ErrRuntimeClosed = merry.New("requester/contract: runtime closed")

// TypeResolver failure sentinels (spec §4.2).
var (
	ErrNotAssignable        = merry.New("requester/contract: type is not an observer (missing OnNext/OnSuccess/OnFailure)")
	ErrUnboundTypeParameter = merry.New("requester/contract: observer element type is unbound (interface{})")
)
