// Package request implements the asynchronous multi-query lookup engine
// shared by the remote dictionary sources.
//
// A lookup fans out one network query per word variant, reassembles the
// completions in submission order even though the transport finishes them
// in arbitrary order, rewrites each accepted body, and appends the result
// to a concurrently readable buffer. Redirect policies may splice new
// queries ahead of the remaining queue while a lookup is in flight.
package request

// QueryID is an opaque handle for one outbound query.
type QueryID string

// Outcome is the transport's result for one query.
type Outcome struct {
	Body   []byte
	Status int
	Err    error // non-nil on transport failure
}

// Completion pairs a query handle with its outcome.
type Completion struct {
	ID      QueryID
	Outcome Outcome
}

// Transport submits URLs and delivers completions asynchronously.
//
// Implementations must deliver exactly one Completion per Submit to the
// given sink, in arbitrary order relative to other submissions. Abort is
// best effort: an aborted query may still deliver a completion, which the
// owning request discards.
type Transport interface {
	Submit(url string, sink chan<- Completion) QueryID
	Abort(id QueryID)
}
