package requester

import "net/http"

// Requester is the Doer/Middleware substrate the contract package's default
// Transport runs on (see contract.NewDefaultTransport). It carries no
// request-building state of its own: a described operation's Request is
// already fully built by the time it reaches a Requester; Requester's only
// job is to run it through Doer and whatever Middleware was installed.
//
//	r := &requester.Requester{
//	         Doer:       httpClient,
//	         Middleware: []requester.Middleware{requester.Decompress()},
//	     }
//	resp, err := r.Do(req)
type Requester struct {
	// Doer executes the final request. Defaults to http.DefaultClient.
	Doer Doer

	// Middleware wraps Doer. Middleware is invoked in the order it appears
	// in this slice, outermost first.
	Middleware []Middleware
}

// Do implements Doer: executes req through the configured Doer, wrapped in
// the configured Middleware.
func (r *Requester) Do(req *http.Request) (*http.Response, error) {
	doer := r.Doer
	if doer == nil {
		doer = http.DefaultClient
	}
	return Wrap(doer, r.Middleware...).Do(req)
}
