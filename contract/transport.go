package contract

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/cartage-http/declare"
)

// Response is the frozen (status, headers, body) tuple the transport returns
// (spec §3). Body is always non-nil; callers must close it exactly once
// unless ownership was explicitly transferred (the DecodeResponse path).
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       io.ReadCloser
}

// Transport executes a resolved Request (spec §6's Transport.execute). It is
// the one collaborator the core never implements itself — only its shape is
// specified — so any *http.Client-compatible Doer plugs in directly.
type Transport interface {
	Execute(ctx context.Context, req *Request, opts Options) (*Response, error)
}

// HTTPTransport adapts the root package's Doer (an *http.Client or any
// middleware-wrapped stack built from it) to the Transport interface.
type HTTPTransport struct {
	Doer interface {
		Do(*http.Request) (*http.Response, error)
	}
}

// NewHTTPTransport constructs an HTTPTransport around doer. A nil doer
// defaults to http.DefaultClient.
func NewHTTPTransport(doer interface {
	Do(*http.Request) (*http.Response, error)
}) *HTTPTransport {
	if doer == nil {
		doer = http.DefaultClient
	}
	return &HTTPTransport{Doer: doer}
}

// NewDefaultTransport builds the Transport the default collaborators use:
// the root package's Requester, carrying whatever Doer-wrapping middleware
// is supplied (gzip/brotli decompression, custom auth, ...). This is what
// lets a declared interface run through the root package's Middleware
// stack instead of talking to *http.Client directly.
func NewDefaultTransport(mw ...requester.Middleware) *HTTPTransport {
	return NewHTTPTransport(&requester.Requester{Middleware: mw})
}

func (t *HTTPTransport) Execute(ctx context.Context, req *Request, opts Options) (*Response, error) {
	if opts.ConnectTimeout > 0 || opts.ReadTimeout > 0 {
		var cancel context.CancelFunc
		timeout := opts.ReadTimeout
		if timeout == 0 || (opts.ConnectTimeout > 0 && opts.ConnectTimeout > timeout) {
			timeout = opts.ConnectTimeout
		}
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, err
	}
	for name, vals := range req.Headers {
		for _, v := range vals {
			httpReq.Header.Add(name, v)
		}
	}

	resp, err := t.Doer.Do(httpReq)
	if err != nil {
		return nil, err
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       resp.Body,
	}, nil
}
