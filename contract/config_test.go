package contract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOptionsTOML(t *testing.T) {
	doc := `
[operations."GitHub#contributors(String,String)"]
connectTimeout = "500ms"
readTimeout = "5s"

[operations."Route53#list()"]
readTimeout = "1h30m"
`
	opts, err := LoadOptionsTOML([]byte(doc))
	require.NoError(t, err)

	gh := opts["GitHub#contributors(String,String)"]
	assert.Equal(t, 500*time.Millisecond, gh.ConnectTimeout)
	assert.Equal(t, 5*time.Second, gh.ReadTimeout)

	r53 := opts["Route53#list()"]
	assert.Equal(t, time.Duration(0), r53.ConnectTimeout)
	assert.Equal(t, 90*time.Minute, r53.ReadTimeout)
}

func TestLoadOptionsTOML_InvalidDuration(t *testing.T) {
	doc := `
[operations."Bad#op()"]
connectTimeout = "not-a-duration"
`
	_, err := LoadOptionsTOML([]byte(doc))
	require.Error(t, err)
}

func TestLoadOptionsTOML_EmptyDocument(t *testing.T) {
	opts, err := LoadOptionsTOML([]byte(``))
	require.NoError(t, err)
	assert.Empty(t, opts)
}
