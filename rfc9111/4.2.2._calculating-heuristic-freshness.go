package rfc9111

import (
	"net/http"
	"time"
)

// §  4.2.2.  Calculating Heuristic Freshness
// §
// §     Since origin servers do not always provide explicit expiration times,
// §     a cache MAY assign a heuristic expiration time when an explicit time
// §     is not specified, employing algorithms that use other field values
// §     (such as the Last-Modified time) to estimate a plausible expiration
// §     time.
// §
// §     When an explicit expiration time is not specified, a cache MAY use a
// §     heuristic freshness lifetime when the response status code is
// §     heuristically cacheable or the response is marked public.
// §
// §     If the response has a Last-Modified header field (Section 8.8.2 of
// §     [HTTP]), caches are encouraged to use a heuristic expiration value
// §     that is no more than some fraction of the interval since that time.
// §     A typical setting of this fraction might be 10%.

const heuristicFraction = 10

func heuristicFreshness(res *http.Response) time.Duration {
	resCacheControl := ParseCacheControl(res.Header.Values("Cache-Control"))
	if !heuristicallyCacheable(res.StatusCode) && !resCacheControl.HasDirective("public") {
		return 0
	}
	lastModified, err := HttpDate(res.Header.Get("Last-Modified"))
	if err != nil {
		return 0
	}
	if interval := date_value(res).Sub(lastModified); interval > 0 {
		return interval / heuristicFraction
	}
	return 0
}

// §     the following status codes are defined as heuristically
// §     cacheable: 200, 203, 204, 206, 300, 301, 308, 404, 405, 410, 414, and 501
func heuristicallyCacheable(statusCode int) bool {
	switch statusCode {
	case 200, 203, 204, 206, 300, 301, 308, 404, 405, 410, 414, 501:
		return true
	}
	return false
}
