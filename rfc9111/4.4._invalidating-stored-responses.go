package rfc9111

import (
	"net/http"
	"net/url"
)

// §  4.4.  Invalidating Stored Responses
// §
// §     Because unsafe request methods (Section 9.2.1 of [HTTP]) such as PUT,
// §     POST, or DELETE have the potential for changing state on the origin
// §     server, intervening caches are required to invalidate stored
// §     responses to keep their contents up to date.

// UnsafeRequest reports whether the request method is unsafe.
func UnsafeRequest(req *http.Request) bool {
	switch req.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return false
	}
	return true
}

// §     A cache MUST invalidate the target URI (Section 7.1 of [HTTP]) when
// §     it receives a non-error status code in response to an unsafe request
// §     method (including methods whose safety is unknown).
// §
// §     A cache MAY invalidate other URIs when it receives a non-error status
// §     code in response to an unsafe request method (including methods whose
// §     safety is unknown).  In particular, the URIs in the Location and
// §     Content-Location response header fields (if present) are candidates
// §     for invalidation; other URIs might be discovered through mechanisms
// §     not specified in this document.  However, a cache MUST NOT trigger an
// §     invalidation under these conditions if the origin (Section 4.3.1 of
// §     [HTTP]) of a candidate URI differs from the origin of the target URI.

// GetInvalidateURIs returns the URIs to invalidate after forwarding an unsafe request.
// Nothing is returned for safe requests and error responses.
func GetInvalidateURIs(req *http.Request, res *http.Response) []*url.URL {
	if !UnsafeRequest(req) || res.StatusCode < 200 || res.StatusCode >= 400 {
		return nil
	}
	target := req.URL
	uris := []*url.URL{target}
	for _, field := range []string{"Location", "Content-Location"} {
		value := res.Header.Get(field)
		if value == "" {
			continue
		}
		u, err := target.Parse(value)
		if err != nil {
			continue
		}
		if sameOrigin(target, u) {
			uris = append(uris, u)
		}
	}
	return uris
}

func sameOrigin(a, b *url.URL) bool {
	return a.Scheme == b.Scheme && a.Host == b.Host
}
