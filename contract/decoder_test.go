package contract

import (
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONDecoder_Decode(t *testing.T) {
	val, err := JSONDecoder{}.Decode(strings.NewReader(`{"name":"ada"}`), reflect.TypeOf(user{}))
	require.NoError(t, err)
	assert.Equal(t, user{Name: "ada"}, val)
}

func TestJSONArrayObserverDecoder_PushesEachElement(t *testing.T) {
	var got []user
	err := JSONArrayObserverDecoder{}.Decode(
		strings.NewReader(`[{"name":"ada"},{"name":"grace"}]`),
		reflect.TypeOf(user{}),
		func(v reflect.Value) { got = append(got, v.Interface().(user)) },
	)
	require.NoError(t, err)
	assert.Equal(t, []user{{Name: "ada"}, {Name: "grace"}}, got)
}

func TestJSONArrayObserverDecoder_EmptyArray(t *testing.T) {
	var got []user
	err := JSONArrayObserverDecoder{}.Decode(
		strings.NewReader(`[]`),
		reflect.TypeOf(user{}),
		func(v reflect.Value) { got = append(got, v.Interface().(user)) },
	)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDefaultErrorDecoder_UpgradesServerErrorsToRetryable(t *testing.T) {
	resp := &Response{
		StatusCode: http.StatusServiceUnavailable,
		Status:     "503 Service Unavailable",
		Body:       io.NopCloser(strings.NewReader("down")),
	}
	err := DefaultErrorDecoder{}.Decode("Ops#get()", resp)
	require.Error(t, err)
	var re *RetryableError
	require.ErrorAs(t, err, &re)
}

func TestDefaultErrorDecoder_NotFoundIsTerminal(t *testing.T) {
	resp := &Response{
		StatusCode: http.StatusNotFound,
		Status:     "404 Not Found",
		Body:       io.NopCloser(strings.NewReader("missing")),
	}
	err := DefaultErrorDecoder{}.Decode("Ops#get()", resp)
	require.Error(t, err)
	var re *RetryableError
	assert.False(t, errors.As(err, &re))
}
