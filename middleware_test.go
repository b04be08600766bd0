package requester

import (
	"compress/gzip"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap_InvokesMiddlewareInOrder(t *testing.T) {
	var order []string
	trace := func(name string) Middleware {
		return func(next Doer) Doer {
			return DoerFunc(func(req *http.Request) (*http.Response, error) {
				order = append(order, name)
				return next.Do(req)
			})
		}
	}

	base := DoerFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: 200}, nil
	})

	wrapped := Wrap(base, trace("outer"), trace("inner"))
	_, err := wrapped.Do(&http.Request{})
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestDecompress_GunzipsResponseBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		w.WriteHeader(200)
		gz := gzip.NewWriter(w)
		defer gz.Close()
		_, _ = gz.Write([]byte(`{"color":"green"}`))
	}))
	defer ts.Close()

	doer := Wrap(http.DefaultClient, Decompress())
	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	require.NoError(t, err)

	resp, err := doer.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Empty(t, resp.Header.Get("Content-Encoding"))
	assert.True(t, resp.Uncompressed)

	body := make([]byte, len(`{"color":"green"}`))
	n, _ := resp.Body.Read(body)
	assert.Equal(t, `{"color":"green"}`, string(body[:n]))
}

func TestDecompressBrotli_DecompressesResponseBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "br")
		w.WriteHeader(200)
		bw := brotli.NewWriter(w)
		defer bw.Close()
		_, _ = bw.Write([]byte(`{"color":"blue"}`))
	}))
	defer ts.Close()

	doer := Wrap(http.DefaultClient, DecompressBrotli())
	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	require.NoError(t, err)

	resp, err := doer.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Empty(t, resp.Header.Get("Content-Encoding"))
	assert.True(t, resp.Uncompressed)

	body := make([]byte, len(`{"color":"blue"}`))
	n, _ := resp.Body.Read(body)
	assert.Equal(t, `{"color":"blue"}`, string(body[:n]))
}
