/*
Package requester is the Doer/Middleware substrate the contract package's
declarative HTTP clients run on. It does not build requests itself — a
described operation's *http.Request is already fully assembled by the time
it reaches this package (see "github.com/cartage-http/declare/contract") —
it only executes them and lets Middleware observe or rewrite the exchange.

Doer and Middleware

Requester uses a Doer to execute requests, which is an interface implemented
by *http.Client:

	type Doer interface {
	        Do(req *http.Request) (*http.Response, error)
	}

Middleware wraps a Doer with additional behavior:

	type Middleware func(Doer) Doer

Wrap() composes a Doer with a stack of Middleware, invoked in the order
given:

	stack := requester.Wrap(http.DefaultClient, requester.Decompress())

Requester itself is a thin Doer: it holds an inner Doer (defaulting to
http.DefaultClient) plus a []Middleware, and its Do method just runs
Wrap(Doer, Middleware...).Do(req). contract.NewDefaultTransport builds one of
these to give a declarative client interface chances to carry the same
compression/logging middleware a hand-built HTTP call would:

	transport := contract.NewDefaultTransport(requester.Decompress(), requester.DecompressBrotli())

Marshaling

JSONMarshaler and FormMarshaler implement BodyMarshaler, the collaborator
contract.JSONBodyEncoder and contract.FormBodyEncoder delegate to when
rendering a declared operation's body argument.
*/
package requester
