package contract

import (
	"encoding/json"
	"io"
	"reflect"
)

// Decoder decodes a successful response body into a value of type into
// (spec §6's Decoder.decode).
type Decoder interface {
	Decode(r io.Reader, into reflect.Type) (interface{}, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(r io.Reader, into reflect.Type) (interface{}, error)

func (f DecoderFunc) Decode(r io.Reader, into reflect.Type) (interface{}, error) { return f(r, into) }

// JSONDecoder is the default Decoder, backed by encoding/json: the decoding
// counterpart of the root package's JSONMarshaler.
type JSONDecoder struct{}

func (JSONDecoder) Decode(r io.Reader, into reflect.Type) (interface{}, error) {
	ptr := reflect.New(into)
	if err := json.NewDecoder(r).Decode(ptr.Interface()); err != nil {
		return nil, err
	}
	return ptr.Elem().Interface(), nil
}

// ObserverDecoder decodes a streamed response body, pushing each decoded
// element to push (spec §6's ObserverDecoder.decode). It may call push zero
// or more times; the runtime delivers the terminal call itself once Decode
// returns.
type ObserverDecoder interface {
	Decode(r io.Reader, into reflect.Type, push func(reflect.Value)) error
}

// ObserverDecoderFunc adapts a function to the ObserverDecoder interface.
type ObserverDecoderFunc func(r io.Reader, into reflect.Type, push func(reflect.Value)) error

func (f ObserverDecoderFunc) Decode(r io.Reader, into reflect.Type, push func(reflect.Value)) error {
	return f(r, into, push)
}

// JSONArrayObserverDecoder is the default ObserverDecoder: it streams a JSON
// array, decoding and pushing one element at a time rather than buffering
// the whole array in memory.
type JSONArrayObserverDecoder struct{}

func (JSONArrayObserverDecoder) Decode(r io.Reader, into reflect.Type, push func(reflect.Value)) error {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return &TemplateError{Reason: "observer decoder expected a JSON array"}
	}

	for dec.More() {
		ptr := reflect.New(into)
		if err := dec.Decode(ptr.Interface()); err != nil {
			return err
		}
		push(ptr.Elem())
	}

	_, err = dec.Token() // consume closing ']'
	if err != nil && err != io.EOF {
		return err
	}
	return nil
}

// ErrorDecoder converts a non-2xx Response into an error, optionally
// upgrading it to a RetryableError (spec §6's ErrorDecoder.decode).
type ErrorDecoder interface {
	Decode(configKey string, resp *Response) error
}

// ErrorDecoderFunc adapts a function to the ErrorDecoder interface.
type ErrorDecoderFunc func(configKey string, resp *Response) error

func (f ErrorDecoderFunc) Decode(configKey string, resp *Response) error { return f(configKey, resp) }

// DefaultErrorDecoder reproduces the teacher repo's DefaultShouldRetry
// judgment as a status-code rule: 429 and every 5xx except 501 are
// retryable; everything else is terminal.
type DefaultErrorDecoder struct{}

func (DefaultErrorDecoder) Decode(configKey string, resp *Response) error {
	body, _ := io.ReadAll(resp.Body)
	execErr := newExecutionError(DecodingPhase, configKey, "", "", resp.StatusCode, errorBody(body, resp.Status))

	if resp.StatusCode == 429 || (resp.StatusCode >= 500 && resp.StatusCode != 501) {
		return Retryable(execErr, 0)
	}
	return execErr
}

type statusError struct {
	status string
	body   string
}

func (e *statusError) Error() string {
	if e.body == "" {
		return e.status
	}
	return e.status + ": " + e.body
}

func errorBody(body []byte, status string) error {
	return &statusError{status: status, body: string(body)}
}
