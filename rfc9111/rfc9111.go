// Package rfc9111 implements the parts of HTTP Caching (RFC 9111) needed by a
// private client-side cache: storability, freshness, age, reuse, validation
// and invalidation.
//
// Files are named after the RFC sections they implement, and the relevant
// requirements are quoted inline (lines starting with §).
package rfc9111

import (
	"net/http"
	"time"
)

// ForceCache is the request Cache-Control value for a cache-only lookup.
// The cache may answer with a stored response of any staleness,
// but must never contact the origin.
const ForceCache = "only-if-cached, max-stale"

// TimeToLive returns the remaining freshness of a stored response in whole seconds.
// The value is negative for stale responses.
func TimeToLive(res *http.Response, requestTime, responseTime time.Time) int {
	ttl := freshnessLifetime(res) - currentAge(res, requestTime, responseTime)
	return int(ttl.Seconds())
}

// AddAgeHeader adds the Age header to the response, as mandated by the standard.
// It directly mutates the response headers.
func AddAgeHeader(res *http.Response, requestTime, responseTime time.Time) {
	res.Header.Set("Age", toDeltaSeconds(currentAge(res, requestTime, responseTime)))
}
