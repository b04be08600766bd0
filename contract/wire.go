package contract

import (
	"bytes"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// Wire is a passive observer of request/response traffic (spec §6): it may
// rebuffer the response body (to log it) but must not alter status or
// headers. Wire implementations must be safe for concurrent use.
type Wire interface {
	OnRequest(target Target, req *Request)
	// OnResponse may return a replacement *Response (typically with a
	// re-buffered Body) which the pipeline will use going forward.
	OnResponse(target Target, configKey string, elapsed time.Duration, resp *Response) (*Response, error)
}

// NopWire discards all traffic; it is the default when no Wire is
// configured.
type NopWire struct{}

func (NopWire) OnRequest(Target, *Request) {}
func (NopWire) OnResponse(_ Target, _ string, _ time.Duration, resp *Response) (*Response, error) {
	return resp, nil
}

// DumpWire is a plain-text Wire implementation in the style of the teacher
// repo's Dump middleware, writing a human-readable line per request and
// response to w. Byte counts are rendered with github.com/dustin/go-humanize,
// the way a hand-written log line would.
type DumpWire struct {
	W io.Writer
}

func (d DumpWire) OnRequest(_ Target, req *Request) {
	if d.W == nil {
		return
	}
	_, _ = io.WriteString(d.W, req.Method+" "+req.URL+" ("+humanize.Bytes(uint64(len(req.Body)))+" body)\n")
}

func (d DumpWire) OnResponse(_ Target, configKey string, elapsed time.Duration, resp *Response) (*Response, error) {
	if resp == nil || resp.Body == nil {
		return resp, nil
	}
	buf, err := bufferBody(resp.Body)
	if err != nil {
		return resp, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(buf))
	if d.W != nil {
		_, _ = io.WriteString(d.W, configKey+" -> "+resp.Status+" ("+humanize.Bytes(uint64(len(buf)))+") in "+elapsed.String()+"\n")
	}
	return resp, nil
}

func bufferBody(r io.ReadCloser) ([]byte, error) {
	defer r.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ZapWire logs structured fields for every request/response via
// go.uber.org/zap, as a structured alternative to DumpWire's plain text.
type ZapWire struct {
	Logger *zap.Logger
}

// NewZapWire constructs a ZapWire around logger. A nil logger falls back to
// zap.NewNop().
func NewZapWire(logger *zap.Logger) *ZapWire {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapWire{Logger: logger}
}

func (z *ZapWire) OnRequest(_ Target, req *Request) {
	z.Logger.Debug("http request",
		zap.String("method", req.Method),
		zap.String("url", req.URL),
		zap.Int("bodyBytes", len(req.Body)),
	)
}

func (z *ZapWire) OnResponse(_ Target, configKey string, elapsed time.Duration, resp *Response) (*Response, error) {
	if resp == nil || resp.Body == nil {
		return resp, nil
	}
	buf, err := bufferBody(resp.Body)
	if err != nil {
		z.Logger.Warn("reading response body", zap.String("configKey", configKey), zap.Error(err))
		return resp, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(buf))

	z.Logger.Info("http response",
		zap.String("configKey", configKey),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", elapsed),
		zap.Int("bodyBytes", len(buf)),
	)
	return resp, nil
}
