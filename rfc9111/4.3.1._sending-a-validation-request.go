package rfc9111

import "net/http"

// §  4.3.1.  Sending a Validation Request
// §
// §     When generating a conditional request for validation, a cache either
// §     starts with a request it is attempting to satisfy or -- if it is
// §     initiating the request independently -- synthesizes a request using a
// §     stored response by copying the method, target URI, and request header
// §     fields identified by the Vary header field (Section 4.1).
// §
// §     It then updates that request with one or more precondition header
// §     fields.  These contain validator metadata sourced from a stored
// §     response(s) that has the same URI.

// GenerateConditionalRequest returns a conditional request for validating the stored response.
// If the stored response carries no validators, nil is returned.
// The returned request never carries only-if-cached, as it is meant for the origin.
func GenerateConditionalRequest(req *http.Request, storedResponse *http.Response) *http.Request {
	etag := storedResponse.Header.Get("ETag")
	lastModified := storedResponse.Header.Get("Last-Modified")
	if etag == "" && lastModified == "" {
		return nil
	}
	condReq := GetForwardRequest(req)
	// §     When generating a conditional request for validation, a cache MUST
	// §     send the relevant entity tags (using If-Match, If-None-Match, or
	// §     If-Range) if the entity tags were provided in the stored response(s)
	// §     being validated.
	if etag != "" {
		condReq.Header.Set("If-None-Match", etag)
	}
	// §     It SHOULD send the Last-Modified value (using If-Modified-Since) if
	// §     the request is not for a subrange, a single stored response is being
	// §     validated, and that response contains a Last-Modified value.
	if lastModified != "" {
		condReq.Header.Set("If-Modified-Since", lastModified)
	}
	return condReq
}
