package requester

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONMarshaler_Marshal(t *testing.T) {
	data, contentType, err := (&JSONMarshaler{}).Marshal(map[string]string{"color": "red"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"color":"red"}`, string(data))
	assert.Equal(t, MediaTypeJSON, contentType)
}

func TestJSONMarshaler_Marshal_Indent(t *testing.T) {
	data, _, err := (&JSONMarshaler{Indent: true}).Marshal(map[string]string{"color": "red"})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"color\": \"red\"\n}", string(data))
}

func TestFormMarshaler_Marshal_URLValues(t *testing.T) {
	data, contentType, err := (&FormMarshaler{}).Marshal(url.Values{"color": []string{"red"}})
	require.NoError(t, err)
	assert.Equal(t, "color=red", string(data))
	assert.Equal(t, MediaTypeForm, contentType)
}

func TestFormMarshaler_Marshal_Struct(t *testing.T) {
	type params struct {
		Color string `url:"color"`
	}
	data, contentType, err := (&FormMarshaler{}).Marshal(params{Color: "blue"})
	require.NoError(t, err)
	assert.Equal(t, "color=blue", string(data))
	assert.Equal(t, MediaTypeForm, contentType)
}
