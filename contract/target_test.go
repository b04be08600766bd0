package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseURLTarget_PrependsBaseURL(t *testing.T) {
	target := NewBaseURLTarget("Ops", "https://api.example.com/")
	req, err := target.Apply(&Request{Method: "GET", URL: "/users/1"})
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/users/1", req.URL)
}

func TestBaseURLTarget_LeavesAbsoluteURLAlone(t *testing.T) {
	target := NewBaseURLTarget("Ops", "https://api.example.com")
	req, err := target.Apply(&Request{Method: "GET", URL: "https://other.example.com/x"})
	require.NoError(t, err)
	assert.Equal(t, "https://other.example.com/x", req.URL)
}

func TestRequestIDTarget_StampsHeader(t *testing.T) {
	target := NewRequestIDTarget(NewBaseURLTarget("Ops", "https://api.example.com"), "")
	req, err := target.Apply(&Request{Method: "GET", URL: "/x", Headers: map[string][]string{}})
	require.NoError(t, err)
	ids, ok := req.Headers["X-Request-Id"]
	require.True(t, ok)
	require.Len(t, ids, 1)
	assert.NotEmpty(t, ids[0])
}
