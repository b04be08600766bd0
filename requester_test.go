package requester

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequester_Do_DefaultsToHTTPDefaultClient(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(204)
	}))
	defer ts.Close()

	r := &Requester{}
	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	require.NoError(t, err)

	resp, err := r.Do(req)
	require.NoError(t, err)
	assert.Equal(t, 204, resp.StatusCode)
}

func TestRequester_Do_RunsThroughMiddleware(t *testing.T) {
	var called bool
	mw := Middleware(func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			called = true
			return next.Do(req)
		})
	})

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
	}))
	defer ts.Close()

	r := &Requester{Middleware: []Middleware{mw}}
	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	require.NoError(t, err)

	_, err = r.Do(req)
	require.NoError(t, err)
	assert.True(t, called)
}
