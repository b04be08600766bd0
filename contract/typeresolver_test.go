package contract

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveObserverElement_ConcreteType(t *testing.T) {
	elem, err := ResolveObserverElement(reflect.TypeOf((*Observer[user])(nil)).Elem())
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeOf(user{}), elem)
}

func TestResolveObserverElement_SliceElement(t *testing.T) {
	elem, err := ResolveObserverElement(reflect.TypeOf((*Observer[[]string])(nil)).Elem())
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeOf([]string{}), elem)
}

func TestResolveObserverElement_UnboundWildcard(t *testing.T) {
	_, err := ResolveObserverElement(reflect.TypeOf((*Observer[interface{}])(nil)).Elem())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnboundTypeParameter)
}

func TestResolveObserverElement_NotAnObserver(t *testing.T) {
	_, err := ResolveObserverElement(reflect.TypeOf(user{}))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotAssignable)
}

func TestResolveObserverElement_ConcreteObserverFunc(t *testing.T) {
	elem, err := ResolveObserverElement(reflect.TypeOf(ObserverFunc[user]{}))
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeOf(user{}), elem)
}
