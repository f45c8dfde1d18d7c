package rfc9111

import (
	"net/http"
	"time"

	"github.com/always-cache/revalidate/rfc9211"
)

// §  4.  Constructing Responses from Caches

// MustNotReuse returns a forward reason (RFC 9211) if the stored response MUST NOT be used
// to satisfy the request without contacting the origin.
// The stored response may be used as-is if the forward reason is empty.
// If the response may be used after successful validation, a conditional request
// for that validation is returned as well.
//
// The stored response must have its Header, StatusCode and Request set.
// The stored request needs to include the header fields nominated by Vary.
func MustNotReuse(
	req *http.Request, storedResponse *http.Response,
	requestTime time.Time, responseTime time.Time,
) (rfc9211.FwdReason, *http.Request) {
	fwdReason := mustNotReuse(req, storedResponse, requestTime, responseTime)
	switch fwdReason {
	case "", rfc9211.FwdReasonMethod, rfc9211.FwdReasonVaryMiss:
		return fwdReason, nil
	}
	return fwdReason, GenerateConditionalRequest(req, storedResponse)
}

// mustNotReuse checks to see whether a response MUST NOT be used to satisfy a request.
func mustNotReuse(req *http.Request, res *http.Response, requestTime time.Time, responseTime time.Time) rfc9211.FwdReason {
	// §     When presented with a request, a cache MUST NOT reuse a stored
	// §     response unless:
	// §
	// §     *  the presented target URI (Section 7.1 of [HTTP]) and that of the
	// §        stored response match, and
	// §
	// §     *  the request method associated with the stored response allows it
	// §        to be used for the presented request, and
	//
	// URI and method are both part of the cache key, so only the method semantics need checking
	if mustWriteThrough(req) {
		return rfc9211.FwdReasonMethod
	}
	// §
	// §     *  request header fields nominated by the stored response (if any)
	// §        match those presented (see Section 4.1), and
	if !HeaderFieldsMatch(req, res.Request, res) {
		return rfc9211.FwdReasonVaryMiss
	}
	// §
	// §     *  the stored response does not contain the no-cache directive
	// §        (Section 5.2.2.4), unless it is successfully validated
	// §        (Section 4.3), and
	resCacheControl := ParseCacheControl(res.Header.Values("Cache-Control"))
	if resCacheControl.HasDirective("no-cache") || pragmaNoCache(res.Header) {
		return rfc9211.FwdReasonStale
	}
	if requestDisallowsReuse(req, res, requestTime, responseTime) {
		return rfc9211.FwdReasonRequest
	}
	// §
	// §     *  the stored response is one of the following:
	// §
	// §        -  fresh (see Section 4.2), or
	// §
	// §        -  allowed to be served stale (see Section 4.2.4), or
	// §
	// §        -  successfully validated (see Section 4.3).
	if !isFresh(res, requestTime, responseTime) && !staleAllowed(req, res, requestTime, responseTime) {
		return rfc9211.FwdReasonStale
	}
	return ""
}

// requestDisallowsReuse applies the request directives of Section 5.2.1
// that restrict reuse of otherwise fresh responses.
func requestDisallowsReuse(req *http.Request, res *http.Response, requestTime, responseTime time.Time) bool {
	reqCacheControl := ParseCacheControl(req.Header.Values("Cache-Control"))
	// §     The no-cache request directive indicates that the client prefers a
	// §     stored response not be used to satisfy the request without successful
	// §     validation on the origin server.
	if reqCacheControl.HasDirective("no-cache") || pragmaNoCache(req.Header) {
		return true
	}
	age := currentAge(res, requestTime, responseTime)
	// §     The max-age request directive indicates that the client prefers a
	// §     response whose age is less than or equal to the specified number of
	// §     seconds.
	if maxAge, ok := reqCacheControl.MaxAge(); ok && age > maxAge {
		return true
	}
	// §     The min-fresh request directive indicates that the client prefers a
	// §     response whose freshness lifetime is no less than its current age
	// §     plus the specified time in seconds.
	if minFresh, ok := reqCacheControl.MinFresh(); ok && freshnessLifetime(res)-age < minFresh {
		return true
	}
	return false
}

// ConstructResponse creates the response to send downstream from a stored response.
// The body is shared with the stored response.
func ConstructResponse(storedResponse *http.Response, requestTime, responseTime time.Time) *http.Response {
	res := &http.Response{
		Status:        storedResponse.Status,
		StatusCode:    storedResponse.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        storedResponse.Header.Clone(),
		Body:          storedResponse.Body,
		ContentLength: storedResponse.ContentLength,
		Request:       storedResponse.Request,
	}
	if res.Body == nil {
		res.Body = http.NoBody
	}

	// §     When a stored response is used to satisfy a request without
	// §     validation, a cache MUST generate an Age header field (Section 5.1),
	// §     replacing any present in the response with a value equal to the
	// §     stored response's current_age; see Section 4.2.3.
	AddAgeHeader(res, requestTime, responseTime)

	return res
}

// §     A cache MUST write through requests with methods that are unsafe
// §     (Section 9.2.1 of [HTTP]) to the origin server; i.e., a cache is not
// §     allowed to generate a reply to such a request before having forwarded
// §     the request and having received a corresponding response.
func mustWriteThrough(req *http.Request) bool {
	return UnsafeRequest(req)
}
