package rfc9111

import (
	"net/http"
	"time"
)

// §  4.2.4.  Serving Stale Responses
// §
// §     A "stale" response is one that either has explicit expiry information
// §     or is allowed to have heuristic expiry calculated, but is not fresh
// §     according to the calculations in Section 4.2.
// §
// §     A cache MUST NOT generate a stale response if it is prohibited by an
// §     explicit in-protocol directive (e.g., by a no-cache response
// §     directive, a must-revalidate response directive, or an applicable
// §     s-maxage or proxy-revalidate response directive; see Section 5.2.2).
// §
// §     A cache MUST NOT generate a stale response unless it is disconnected
// §     or doing so is explicitly permitted by the client or origin server
// §     (e.g., by the max-stale request directive in Section 5.2.1, extension
// §     directives such as those defined in [RFC5861], or configuration in
// §     accordance with an out-of-band contract).
func staleAllowed(req *http.Request, res *http.Response, requestTime, responseTime time.Time) bool {
	resCacheControl := ParseCacheControl(res.Header.Values("Cache-Control"))
	if resCacheControl.HasDirective("must-revalidate") || resCacheControl.HasDirective("no-cache") {
		return false
	}
	reqCacheControl := ParseCacheControl(req.Header.Values("Cache-Control"))
	// §     The max-stale request directive indicates that the client will accept
	// §     a response that has exceeded its freshness lifetime.  If a value is
	// §     present, then the client is willing to accept a response that has
	// §     exceeded its freshness lifetime by no more than the specified number
	// §     of seconds.  If no value is assigned to max-stale, then the client
	// §     will accept a stale response of any age.
	maxStale, ok := reqCacheControl.MaxStale()
	if !ok {
		return false
	}
	staleness := currentAge(res, requestTime, responseTime) - freshnessLifetime(res)
	return staleness <= maxStale
}
