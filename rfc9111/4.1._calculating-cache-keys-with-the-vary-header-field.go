package rfc9111

import (
	"net/http"
	"strings"
)

// §  4.1.  Calculating Cache Keys with the Vary Header Field
// §
// §     When a cache receives a request that can be satisfied by a stored
// §     response and that stored response contains a Vary header field
// §     (Section 12.5.5 of [HTTP]), the cache MUST NOT use that stored
// §     response without revalidation unless all the presented request header
// §     fields nominated by that Vary field value match those fields in the
// §     original request (i.e., the request that caused the cached response
// §     to be stored).
// §
// §     A stored response with a Vary header field value containing a member
// §     "*" always fails to match.

// HeaderFieldsMatch reports whether the presented request matches the request
// that caused the response to be stored, for all fields nominated by Vary.
func HeaderFieldsMatch(req *http.Request, storedReq *http.Request, res *http.Response) bool {
	for _, name := range GetListHeader(res.Header, "Vary") {
		if name == "*" {
			return false
		}
		if storedReq == nil {
			return false
		}
		if normalizedFieldValue(req.Header, name) != normalizedFieldValue(storedReq.Header, name) {
			return false
		}
	}
	return true
}

// §     The header fields from two requests are defined to match if and only
// §     if those in the first request can be transformed to those in the
// §     second request by applying any of the following:
// §
// §     *  adding or removing whitespace, where allowed in the header field's
// §        syntax
// §
// §     *  combining multiple header field lines with the same field name (see
// §        Section 5.2 of [HTTP])
func normalizedFieldValue(header http.Header, name string) string {
	return strings.Join(GetListHeader(header, name), ",")
}
