package revalidate

import (
	"net/http"

	"github.com/always-cache/revalidate/rfc9111"
)

// Fetcher is the HTTP capability used by the coordinator.
//
// FetchFromCache blocks until the cache has answered the request.
// FetchFromNetwork returns immediately and calls complete exactly once,
// on a goroutine of its own, when the request has completed or failed.
// Cancellation of either is driven by the request context.
type Fetcher interface {
	FetchFromCache(req *http.Request) Outcome
	FetchFromNetwork(req *http.Request, complete func(Outcome))
}

// ForceCache returns a copy of the request that may only be answered from the cache,
// with a stored response of any staleness. The original request is not modified.
func ForceCache(req *http.Request) *http.Request {
	r := req.Clone(req.Context())
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	r.Header.Set("Cache-Control", rfc9111.ForceCache)
	r.Header.Del("Pragma")
	return r
}
