package rfc9111

import (
	"net/http"
	"time"
)

// §  4.2.  Freshness
// §
// §     A "fresh" response is one whose age has not yet exceeded its
// §     freshness lifetime.  Conversely, a "stale" response is one where it
// §     has.
// §
// §     The calculation to determine if a response is fresh is:
// §
// §        response_is_fresh = (freshness_lifetime > current_age)
func isFresh(res *http.Response, requestTime, responseTime time.Time) bool {
	return freshnessLifetime(res) > currentAge(res, requestTime, responseTime)
}

// GetExpiration returns the time at which the response becomes stale.
func GetExpiration(res *http.Response, requestTime, responseTime time.Time) time.Time {
	return responseTime.Add(freshnessLifetime(res) - correctedInitialAge(res, requestTime, responseTime))
}

// §  4.2.1.  Calculating Freshness Lifetime
// §
// §     A cache can calculate the freshness lifetime (denoted as
// §     freshness_lifetime) of a response by evaluating the following rules
// §     and using the first match:
func freshnessLifetime(res *http.Response) time.Duration {
	resCacheControl := ParseCacheControl(res.Header.Values("Cache-Control"))
	// §     *  If the cache is shared and the s-maxage response directive
	// §        (Section 5.2.2.10) is present, use its value, or
	//
	// this is a private cache
	//
	// §     *  If the max-age response directive (Section 5.2.2.1) is present,
	// §        use its value, or
	if val, ok := resCacheControl.MaxAge(); ok {
		return val
	}
	// §     *  If the Expires response header field (Section 5.3) is present, use
	// §        its value minus the value of the Date response header field (using
	// §        the time the message was received if it is not present, as per
	// §        Section 6.6.1 of [HTTP]), or
	if res.Header.Get("Expires") != "" {
		expires, err := getExpires(res)
		if err != nil {
			return 0
		}
		return expires.Sub(date_value(res))
	}
	// §     *  Otherwise, no explicit expiration time is present in the response.
	// §        A heuristic freshness lifetime might be applicable; see
	// §        Section 4.2.2.
	return heuristicFreshness(res)
}
