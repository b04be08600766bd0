package contract

import "reflect"

// Observer is a streaming sink for decoded response elements (spec §3). A
// session emits zero or more OnNext calls followed by exactly one terminal
// call, OnSuccess xor OnFailure. The runtime guarantees the terminal is
// called exactly once even if OnNext panics: the panic is recovered and
// delivered to OnFailure. A panic raised from OnFailure itself is not
// recovered; it propagates out of the executor goroutine rather than being
// swallowed (spec §7).
type Observer[T any] interface {
	OnNext(T)
	OnSuccess()
	OnFailure(error)
}

// ObserverFunc adapts three plain functions to the Observer interface. A
// nil OnSuccessFunc/OnFailureFunc is a no-op.
type ObserverFunc[T any] struct {
	OnNextFunc    func(T)
	OnSuccessFunc func()
	OnFailureFunc func(error)
}

func (f ObserverFunc[T]) OnNext(v T) {
	if f.OnNextFunc != nil {
		f.OnNextFunc(v)
	}
}

func (f ObserverFunc[T]) OnSuccess() {
	if f.OnSuccessFunc != nil {
		f.OnSuccessFunc()
	}
}

func (f ObserverFunc[T]) OnFailure(err error) {
	if f.OnFailureFunc != nil {
		f.OnFailureFunc(err)
	}
}

// dynamicObserver is how the handler pipeline drives an Observer[T] without
// knowing T at compile time: argv is untyped ([]interface{}), so the
// observer argument's concrete OnNext/OnSuccess/OnFailure methods are
// invoked through reflect, using the element type ResolveObserverElement (or
// an explicit ParamSpec.ElementType) already determined at parse time.
type dynamicObserver struct {
	value reflect.Value
}

func newDynamicObserver(observer interface{}) *dynamicObserver {
	return &dynamicObserver{value: reflect.ValueOf(observer)}
}

// onNext delivers v (which must be assignable to the observer's element
// type) to OnNext.
func (d *dynamicObserver) onNext(v reflect.Value) {
	d.value.MethodByName(onNextMethod).Call([]reflect.Value{v})
}

// Push is the exported form of onNext, called by an ObserverDecoder once per
// decoded element.
func (d *dynamicObserver) Push(v reflect.Value) {
	d.onNext(v)
}

func (d *dynamicObserver) onSuccess() {
	d.value.MethodByName(onSuccessMethod).Call(nil)
}

func (d *dynamicObserver) onFailure(err error) {
	d.value.MethodByName(onFailureMethod).Call([]reflect.Value{reflect.ValueOf(err)})
}

// deliverTerminal calls OnFailure(err) if err != nil, else OnSuccess(). A
// panic from OnFailure is not recovered here: it propagates out of the
// executor goroutine instead of being absorbed.
func (d *dynamicObserver) deliverTerminal(err error) {
	if err != nil {
		d.onFailure(err)
		return
	}
	d.onSuccess()
}
