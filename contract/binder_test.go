package contract

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgumentBinder_URLOverride(t *testing.T) {
	spec := OperationSpec{
		InterfaceName: "Ops",
		MethodName:    "patch",
		Verb:          "PATCH",
		Path:          "/default",
		Params: []ParamSpec{
			{Role: RoleURL, Type: reflect.TypeOf("")},
		},
		ReturnsVoid: true,
	}
	meta, err := Contract{}.Parse(spec)
	require.NoError(t, err)

	binder := NewArgumentBinder(nil)
	req, err := binder.Bind(meta, []interface{}{"https://override.example/x"})
	require.NoError(t, err)
	assert.Equal(t, "https://override.example/x", req.URL)
}

func TestArgumentBinder_NilQueryPlaceholderDropsKey(t *testing.T) {
	spec := OperationSpec{
		InterfaceName: "Ops",
		MethodName:    "search",
		Verb:          "GET",
		Path:          "/search",
		Params: []ParamSpec{
			{Role: RoleQuery, Name: "filter", Type: reflect.TypeOf("")},
		},
		ReturnsVoid: true,
	}
	meta, err := Contract{}.Parse(spec)
	require.NoError(t, err)

	binder := NewArgumentBinder(nil)
	req, err := binder.Bind(meta, []interface{}{nil})
	require.NoError(t, err)
	assert.Equal(t, "/search", req.URL)
}

func TestArgumentBinder_NilPathPlaceholderSubstitutesEmpty(t *testing.T) {
	spec := OperationSpec{
		InterfaceName: "Ops",
		MethodName:    "get",
		Verb:          "GET",
		Path:          "/things/{id}",
		Params: []ParamSpec{
			{Role: RolePath, Name: "id", Type: reflect.TypeOf("")},
		},
		ReturnsVoid: true,
	}
	meta, err := Contract{}.Parse(spec)
	require.NoError(t, err)

	binder := NewArgumentBinder(nil)
	req, err := binder.Bind(meta, []interface{}{nil})
	require.NoError(t, err)
	assert.Equal(t, "/things/", req.URL)
}

func TestArgumentBinder_BodyExclusivity(t *testing.T) {
	spec := OperationSpec{
		InterfaceName: "Ops",
		MethodName:    "create",
		Verb:          "POST",
		Params: []ParamSpec{
			{Role: RoleBody, Type: reflect.TypeOf(user{})},
		},
		ReturnsVoid: true,
	}
	meta, err := Contract{}.Parse(spec)
	require.NoError(t, err)

	binder := NewArgumentBinder(JSONBodyEncoder{})
	req, err := binder.Bind(meta, []interface{}{user{Name: "ada"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"ada"}`, string(req.Body))
	assert.Equal(t, []string{"application/json"}, req.Headers["Content-Type"])
}

func TestArgumentBinder_ProducesWinsOverBodyEncoder(t *testing.T) {
	spec := OperationSpec{
		InterfaceName: "Ops",
		MethodName:    "create",
		Verb:          "POST",
		Produces:      "application/vnd.custom+json",
		Params: []ParamSpec{
			{Role: RoleBody, Type: reflect.TypeOf(user{})},
		},
		ReturnsVoid: true,
	}
	meta, err := Contract{}.Parse(spec)
	require.NoError(t, err)

	binder := NewArgumentBinder(JSONBodyEncoder{})
	req, err := binder.Bind(meta, []interface{}{user{Name: "ada"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"application/vnd.custom+json"}, req.Headers["Content-Type"])
}
