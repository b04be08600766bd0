package contract

import (
	"context"
	"io"
	"reflect"
	"time"

	"github.com/ansel1/merry"
)

// MethodHandler orchestrates one operation end to end: bind, target, execute,
// classify, decode or observe (spec §4.6). Invoke's first return value is
// always nil for the streaming variant (the operation's declared return is
// void); any error it returns there is a synchronous binding failure or
// ErrRuntimeClosed, both of which predate the observer task ever starting.
type MethodHandler interface {
	Invoke(ctx context.Context, argv []interface{}) (interface{}, error)
}

// handlerBase holds the collaborators shared by the synchronous and
// streaming variants.
type handlerBase struct {
	meta        *MethodMetadata
	binder      *ArgumentBinder
	target      Target
	transport   Transport
	wire        Wire
	retryPolicy RetryPolicy
	options     Options

	errorDecoder ErrorDecoder
}

// attempt runs exactly one request/response round trip: target rewriting,
// wire hooks, transport execution, status classification. A non-nil error
// is either a *RetryableError (transport failure, or an ErrorDecoder
// upgrade) or a terminal error.
func (h *handlerBase) attempt(ctx context.Context, boundReq *Request) (*Response, error) {
	req, err := h.target.Apply(boundReq)
	if err != nil {
		return nil, err
	}
	h.wire.OnRequest(h.target, req)

	start := time.Now()
	resp, err := h.transport.Execute(ctx, req, h.options)
	if err != nil {
		return nil, Retryable(newExecutionError(ExecutingPhase, h.meta.ConfigKey, req.Method, req.URL, 0, err), 0)
	}
	elapsed := time.Since(start)

	resp, err = h.wire.OnResponse(h.target, h.meta.ConfigKey, elapsed, resp)
	if err != nil {
		return nil, newExecutionError(ReadingPhase, h.meta.ConfigKey, req.Method, req.URL, 0, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	defer resp.Body.Close()
	return nil, h.errorDecoder.Decode(h.meta.ConfigKey, resp)
}

// runPipeline drives attempt through the retry loop (spec §4.5/§4.6): a
// fresh Retryer is constructed per top-level invocation and is never shared
// across calls.
func (h *handlerBase) runPipeline(ctx context.Context, boundReq *Request) (*Response, error) {
	retryer := NewRetryer(h.retryPolicy)
	for {
		resp, err := h.attempt(ctx, boundReq)
		if err == nil {
			return resp, nil
		}
		if !retryer.ContinueOrPropagate(err) {
			return nil, err
		}
	}
}

// syncHandler is the non-observer MethodHandler variant: it runs the
// pipeline on the caller's goroutine and returns the decoded value (or the
// raw Response, or nothing, per meta.DecodeKind).
type syncHandler struct {
	handlerBase
	decoder Decoder
}

func (h *syncHandler) Invoke(ctx context.Context, argv []interface{}) (interface{}, error) {
	boundReq, err := h.binder.Bind(h.meta, argv)
	if err != nil {
		return nil, err
	}
	resp, err := h.runPipeline(ctx, boundReq)
	if err != nil {
		return nil, err
	}
	return h.decode(resp)
}

func (h *syncHandler) decode(resp *Response) (interface{}, error) {
	switch h.meta.DecodeKind {
	case DecodeResponse:
		// Ownership of the body transfers to the caller; the "finally
		// close" step is suppressed for this path (spec §5).
		return resp, nil
	case DecodeVoid:
		defer resp.Body.Close()
		if _, err := io.Copy(io.Discard, resp.Body); err != nil {
			return nil, newExecutionError(ReadingPhase, h.meta.ConfigKey, "", "", resp.StatusCode, err)
		}
		return nil, nil
	default:
		defer resp.Body.Close()
		val, err := h.decoder.Decode(resp.Body, h.meta.DecodeInto)
		if err != nil {
			return nil, newExecutionError(ReadingPhase, h.meta.ConfigKey, "", "", resp.StatusCode, err)
		}
		return val, nil
	}
}

// streamHandler is the observer-bearing MethodHandler variant: invoke
// submits the entire pipeline to the owned executor and returns immediately
// (spec §4.6); the observer receives elements and exactly one terminal call
// on the executor's worker goroutine.
type streamHandler struct {
	handlerBase
	exec            *executor
	observerDecoder ObserverDecoder
}

func (h *streamHandler) Invoke(ctx context.Context, argv []interface{}) (interface{}, error) {
	boundReq, err := h.binder.Bind(h.meta, argv)
	if err != nil {
		return nil, err
	}

	obs := newDynamicObserver(argv[*h.meta.ObserverIndex])

	err = h.exec.submit(func() {
		resp, err := h.runPipeline(ctx, boundReq)
		if err != nil {
			obs.deliverTerminal(err)
			return
		}
		obs.deliverTerminal(h.pushAndDrain(resp, obs))
	})
	return nil, err
}

// pushAndDrain delivers decoded elements to obs and returns the error (if
// any) the terminal call should carry. A panic raised from the observer's
// OnNext is recovered here and becomes that terminal error.
func (h *streamHandler) pushAndDrain(resp *Response, obs *dynamicObserver) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = merry.Errorf("observer OnNext panicked: %v", r)
		}
	}()
	switch h.meta.DecodeKind {
	case DecodeResponse:
		// Ownership of the body transfers to the observer's caller.
		obs.Push(reflect.ValueOf(*resp))
		return nil
	case DecodeVoid:
		defer resp.Body.Close()
		_, err := io.Copy(io.Discard, resp.Body)
		return err
	default:
		defer resp.Body.Close()
		return h.observerDecoder.Decode(resp.Body, h.meta.DecodeInto, obs.Push)
	}
}
