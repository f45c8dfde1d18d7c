package rfc9111

import "net/http"

// §  3.  Storing Responses in Caches
// §
// §     A cache MUST NOT store a response to a request unless:
// §
// §     *  the request method is understood by the cache;
// §
// §     *  the response status code is final (see Section 15 of [HTTP]);
// §
// §     *  if the response status code is 206 or 304, or the must-understand
// §        cache directive (see Section 5.2.2.3) is present: the cache
// §        understands the response status code;
// §
// §     *  the no-store cache directive is not present in the response (see
// §        Section 5.2.2.5);
// §
// §     *  if the cache is shared: the private response directive is either
// §        not present or allows a shared cache to store a modified response;
// §        see Section 5.2.2.7);
// §
// §     *  if the cache is shared: the Authorization header field is not
// §        present in the request (see Section 11.6.2 of [HTTP]) or a response
// §        directive is present that explicitly allows shared caching (see
// §        Section 3.5); and
// §
// §     *  the response contains at least one of the following:
// §
// §        -  a public response directive (see Section 5.2.2.9);
// §
// §        -  a private response directive, if the cache is not shared (see
// §           Section 5.2.2.7);
// §
// §        -  an Expires header field (see Section 5.3);
// §
// §        -  a max-age response directive (see Section 5.2.2.1);
// §
// §        -  if the cache is shared: an s-maxage response directive (see
// §           Section 5.2.2.10);
// §
// §        -  a cache extension that allows it to be cached (see
// §           Section 5.2.3); or
// §
// §        -  a status code that is defined as heuristically cacheable (see
// §           Section 4.2.2).

// MustNotStore returns a boolean indicating if a particular origin response
// MUST NOT be stored by a private cache.
// The response must have its Header and StatusCode set.
func MustNotStore(req *http.Request, res *http.Response) bool {
	resCacheControl := ParseCacheControl(res.Header.Values("Cache-Control"))
	reqCacheControl := ParseCacheControl(req.Header.Values("Cache-Control"))

	if !requestMethodIsUnderstood(req.Method) {
		return true
	}
	if !responseStatusCodeIsFinal(res.StatusCode) {
		return true
	}
	if !statusCodeUnderstoodIfNeeded(res, resCacheControl) {
		return true
	}
	if resCacheControl.HasDirective("no-store") {
		return true
	}
	// §     The no-store request directive indicates that a cache MUST NOT store
	// §     any part of either this request or any response to it.
	if reqCacheControl.HasDirective("no-store") {
		return true
	}

	if resCacheControl.HasDirective("public") ||
		resCacheControl.HasDirective("private") ||
		res.Header.Get("Expires") != "" ||
		resCacheControl.HasDirective("max-age") ||
		heuristicallyCacheable(res.StatusCode) {
		return false
	}
	return true
}

// statusCodeUnderstoodIfNeeded returns false if the response status code needs to be understood but isn't.
func statusCodeUnderstoodIfNeeded(res *http.Response, resCacheControl CacheControl) bool {
	if res.StatusCode == http.StatusPartialContent ||
		res.StatusCode == http.StatusNotModified ||
		resCacheControl.HasDirective("must-understand") {
		return responseStatusCodeIsUnderstood(res.StatusCode)
	}
	return true
}

// Only plain GETs are stored.
func requestMethodIsUnderstood(method string) bool {
	return method == http.MethodGet
}

// Partial content and conditional responses are never stored as such.
func responseStatusCodeIsUnderstood(statusCode int) bool {
	return statusCode != http.StatusPartialContent && statusCode != http.StatusNotModified &&
		responseStatusCodeIsFinal(statusCode)
}

func responseStatusCodeIsFinal(statusCode int) bool {
	return statusCode >= 200 && statusCode <= 599
}
