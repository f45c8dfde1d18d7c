package httpcache

import (
	"net/http"

	"github.com/always-cache/revalidate"
)

// FetchFromCache answers the request from the cache only, blocking until done.
// The request is expected to carry the `only-if-cached` directive.
func (c *Client) FetchFromCache(req *http.Request) revalidate.Outcome {
	return revalidate.NewOutcome(c.Do(req))
}

// FetchFromNetwork sends the request on a goroutine of its own
// and calls complete with its outcome. A panic while fetching is a transport failure.
func (c *Client) FetchFromNetwork(req *http.Request, complete func(revalidate.Outcome)) {
	// a panicking completion handler must not be called twice
	completed := false
	c.runner.GoCatch("network-fetch", func() {
		outcome := revalidate.NewOutcome(c.Do(req))
		completed = true
		complete(outcome)
	}, func(err error) {
		if !completed {
			complete(revalidate.Outcome{Err: err})
		}
	})
}

// Wait blocks until all network fetches in flight have completed.
func (c *Client) Wait() {
	c.runner.Wait()
}
