package contract

import (
	"context"
)

// Collaborators holds what a ClientFactory consults to pick, per operation,
// the encoder/decoders/retry policy/options it should use (spec §4.7 step
// 2); Transport and Wire are shared by every operation. The encoder and
// decoder maps are consulted first by exact configKey, then by
// interfaceName, before a sensible default is used; RetryPolicyByOp and
// OptionsByKey are consulted by configKey only. A decoder or error-decoder
// map entry present but explicitly nil disables the default for that key
// (used to force NoDecoderForOperation at construction time).
type Collaborators struct {
	Transport Transport
	Wire      Wire

	RetryPolicy     RetryPolicy
	RetryPolicyByOp map[string]RetryPolicy

	OptionsByKey map[string]Options

	BodyEncodersByKey map[string]BodyEncoder
	BodyEncodersByIface map[string]BodyEncoder

	DecodersByKey   map[string]Decoder
	DecodersByIface map[string]Decoder

	ObserverDecodersByKey   map[string]ObserverDecoder
	ObserverDecodersByIface map[string]ObserverDecoder

	ErrorDecodersByKey   map[string]ErrorDecoder
	ErrorDecodersByIface map[string]ErrorDecoder
}

// ClientFactory binds a set of described operations to a Target, producing
// a Dispatcher (spec §4.7).
type ClientFactory struct {
	Contract Contract
}

// Build parses every operation in ops, selects collaborators, and returns a
// ready-to-use Dispatcher. interfaceName is the key for the by-interface
// collaborator maps; each operation's configKey comes from its own
// OperationSpec.InterfaceName.
func (f ClientFactory) Build(target Target, interfaceName string, ops []OperationSpec, collab Collaborators) (*Dispatcher, error) {
	if collab.Transport == nil {
		collab.Transport = NewDefaultTransport()
	}
	if collab.Wire == nil {
		collab.Wire = NopWire{}
	}

	exec := newExecutor()
	handlers := make(map[string]MethodHandler, len(ops))

	for _, op := range ops {
		meta, err := f.Contract.Parse(op)
		if err != nil {
			return nil, err
		}
		configKey := meta.ConfigKey

		base := handlerBase{
			meta:        meta,
			binder:      NewArgumentBinder(resolveBodyEncoder(collab, configKey, interfaceName)),
			target:      target,
			transport:   collab.Transport,
			wire:        collab.Wire,
			retryPolicy: resolveRetryPolicy(collab, configKey),
			options:     collab.OptionsByKey[configKey],
		}
		errDec, ok := resolveErrorDecoder(collab, configKey, interfaceName)
		if !ok {
			return nil, newContractError(configKey, ReasonNoDecoderForOperation)
		}
		base.errorDecoder = errDec

		if meta.ObserverIndex != nil {
			obsDec, ok := resolveObserverDecoder(collab, configKey, interfaceName, meta.DecodeKind)
			if !ok {
				return nil, newContractError(configKey, ReasonNoDecoderForOperation)
			}
			handlers[configKey] = &streamHandler{handlerBase: base, exec: exec, observerDecoder: obsDec}
			continue
		}

		dec, ok := resolveDecoder(collab, configKey, interfaceName, meta.DecodeKind)
		if !ok {
			return nil, newContractError(configKey, ReasonNoDecoderForOperation)
		}
		handlers[configKey] = &syncHandler{handlerBase: base, decoder: dec}
	}

	return &Dispatcher{handlers: handlers, exec: exec}, nil
}

func resolveBodyEncoder(c Collaborators, configKey, iface string) BodyEncoder {
	if e, ok := c.BodyEncodersByKey[configKey]; ok {
		return e
	}
	if e, ok := c.BodyEncodersByIface[iface]; ok {
		return e
	}
	return JSONBodyEncoder{}
}

func resolveRetryPolicy(c Collaborators, configKey string) RetryPolicy {
	if p, ok := c.RetryPolicyByOp[configKey]; ok {
		return p
	}
	if c.RetryPolicy.MaxAttempts != 0 || c.RetryPolicy.Backoff != nil {
		return c.RetryPolicy
	}
	return DefaultRetryPolicy
}

// resolveDecoder returns (decoder, ok). ok is false only when DecodeKind
// requires a decoder and none is available (explicit nil, no default).
func resolveDecoder(c Collaborators, configKey, iface string, kind DecodeKind) (Decoder, bool) {
	if kind != DecodeValue {
		return nil, true
	}
	if d, present := c.DecodersByKey[configKey]; present {
		return d, d != nil
	}
	if d, present := c.DecodersByIface[iface]; present {
		return d, d != nil
	}
	return JSONDecoder{}, true
}

func resolveObserverDecoder(c Collaborators, configKey, iface string, kind DecodeKind) (ObserverDecoder, bool) {
	if kind != DecodeValue {
		return nil, true
	}
	if d, present := c.ObserverDecodersByKey[configKey]; present {
		return d, d != nil
	}
	if d, present := c.ObserverDecodersByIface[iface]; present {
		return d, d != nil
	}
	return JSONArrayObserverDecoder{}, true
}

func resolveErrorDecoder(c Collaborators, configKey, iface string) (ErrorDecoder, bool) {
	if d, present := c.ErrorDecodersByKey[configKey]; present {
		return d, d != nil
	}
	if d, present := c.ErrorDecodersByIface[iface]; present {
		return d, d != nil
	}
	return DefaultErrorDecoder{}, true
}

// Dispatcher is the generic handle-lookup object of spec §9 Design Note (b):
// in the absence of Go dynamic proxies, callers address an operation by its
// configKey rather than through a synthesized interface method.
type Dispatcher struct {
	handlers map[string]MethodHandler
	exec     *executor
	closed   bool
}

// Call looks up the handler for configKey and invokes it with argv. Returns
// ErrRuntimeClosed if Close has already been called and configKey names a
// streaming (observer-bearing) operation.
func (d *Dispatcher) Call(ctx context.Context, configKey string, argv ...interface{}) (interface{}, error) {
	h, ok := d.handlers[configKey]
	if !ok {
		return nil, newContractError(configKey, "no handler registered for operation")
	}
	return h.Invoke(ctx, argv)
}

// Close shuts down the owned executor: no further streaming calls are
// accepted, but in-flight streaming work is allowed to finish. Idempotent.
func (d *Dispatcher) Close() error {
	d.exec.close()
	d.closed = true
	return nil
}
