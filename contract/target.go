package contract

import (
	"strings"

	"github.com/google/uuid"
)

// Target rewrites a resolved Request before it reaches the transport: it
// owns the base URL and any per-call rewriting (authentication, signing,
// tracing headers). Target.Apply must be safe for concurrent use (spec §5).
type Target interface {
	Apply(*Request) (*Request, error)
}

// TargetFunc adapts a function to the Target interface.
type TargetFunc func(*Request) (*Request, error)

func (f TargetFunc) Apply(r *Request) (*Request, error) { return f(r) }

// BaseURLTarget is the default Target (spec §3): it prepends BaseURL to the
// template's url, unless the call supplied a full-URL-override argument (in
// which case ArgumentBinder has already replaced the template's url with
// that override, and BaseURLTarget leaves it alone).
type BaseURLTarget struct {
	// InterfaceName is carried for diagnostics/logging only.
	InterfaceName string
	// BaseURL is prepended to Request.URL when Request.URL does not
	// already look like an absolute URL.
	BaseURL string
}

// NewBaseURLTarget constructs a BaseURLTarget.
func NewBaseURLTarget(interfaceName, baseURL string) *BaseURLTarget {
	return &BaseURLTarget{InterfaceName: interfaceName, BaseURL: strings.TrimRight(baseURL, "/")}
}

func (t *BaseURLTarget) Apply(r *Request) (*Request, error) {
	if isAbsoluteURL(r.URL) {
		return r, nil
	}
	rewritten := *r
	if r.URL == "" || strings.HasPrefix(r.URL, "?") {
		rewritten.URL = t.BaseURL + r.URL
	} else if strings.HasPrefix(r.URL, "/") {
		rewritten.URL = t.BaseURL + r.URL
	} else {
		rewritten.URL = t.BaseURL + "/" + r.URL
	}
	return &rewritten, nil
}

func isAbsoluteURL(u string) bool {
	idx := strings.Index(u, "://")
	return idx > 0 && !strings.ContainsAny(u[:idx], "/?")
}

// RequestIDTarget wraps an inner Target and stamps a fresh UUIDv4 onto the
// named header (conventionally "X-Request-Id") for every call, the way
// infogulch-xtemplate stamps request-scoped identifiers.
type RequestIDTarget struct {
	Inner  Target
	Header string
}

// NewRequestIDTarget wraps inner, defaulting Header to "X-Request-Id".
func NewRequestIDTarget(inner Target, header string) *RequestIDTarget {
	if header == "" {
		header = "X-Request-Id"
	}
	return &RequestIDTarget{Inner: inner, Header: header}
}

func (t *RequestIDTarget) Apply(r *Request) (*Request, error) {
	rewritten := *r
	headers := make(map[string][]string, len(r.Headers)+1)
	for k, v := range r.Headers {
		headers[k] = v
	}
	headers[t.Header] = []string{uuid.NewString()}
	rewritten.Headers = headers

	if t.Inner != nil {
		return t.Inner.Apply(&rewritten)
	}
	return &rewritten, nil
}
