package requester

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
)

// Middleware can be used to wrap Doers with additional functionality.
type Middleware func(Doer) Doer

// Wrap applies a set of middleware to a Doer.  The returned Doer will invoke
// the middleware in the order of the arguments.
func Wrap(d Doer, m ...Middleware) Doer {
	for i := len(m) - 1; i > -1; i-- {
		d = m[i](d)
	}
	return d
}

// Decompress middleware will decompress the response body if the response
// Content-Encoding indicates the body is compressed.
//
// Normally, this is not needed.  Golang's default HTTP transport
// automatically requests compression and automatically decompresses
// the response.  However, the transport will only auto-decompress if
// it originally requested the compression.
//
// Cases where this middleware is needed:
//   - if the Accept-Encoding header is explicitly set to "gzip" by the
//     caller, the transport will not do any automatic compression processing
//   - if the server returns compressed responses even when compression
//     was not requested by the client (i.e. the Accept-Encoding header was
//     not set on the request).  Technically, servers should not use
//     compression unless the client requests it, but some servers are
//     known to violate this rule.
//
// This middleware currently only support gzip compression.
func Decompress() Middleware {
	return func(d Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			resp, err := d.Do(req)
			if err != nil || resp == nil {
				return resp, err
			}
			if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
				gr, err := gzip.NewReader(resp.Body)
				if err != nil {
					resp.Body.Close()
					return nil, err
				}
				// Replace the original Body with the decompressed reader
				resp.Body = struct {
					io.Reader
					io.Closer
				}{
					Reader: gr,
					Closer: resp.Body, // we keep closing the original
				}
				resp.Header.Del("Content-Encoding")
				resp.Header.Del("Content-Length")
				resp.ContentLength = -1
				resp.Uncompressed = true
			}
			return resp, err
		})
	}
}

// DecompressBrotli middleware decompresses the response body when
// Content-Encoding is "br". Same rationale and caveats as Decompress, for
// servers/APIs that respond with Brotli-encoded bodies (common among
// declarative HTTP API backends that prefer it over gzip for JSON payloads).
func DecompressBrotli() Middleware {
	return func(d Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			resp, err := d.Do(req)
			if err != nil || resp == nil {
				return resp, err
			}
			if strings.EqualFold(resp.Header.Get("Content-Encoding"), "br") {
				br := brotli.NewReader(resp.Body)
				resp.Body = struct {
					io.Reader
					io.Closer
				}{
					Reader: br,
					Closer: resp.Body,
				}
				resp.Header.Del("Content-Encoding")
				resp.Header.Del("Content-Length")
				resp.ContentLength = -1
				resp.Uncompressed = true
			}
			return resp, err
		})
	}
}
