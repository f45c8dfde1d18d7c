package rfc9111

import "net/http"

// §  4.3.4.  Freshening Stored Responses upon Validation
// §
// §     When the cache receives a 304 (Not Modified) response, it needs to
// §     identify stored responses that are suitable for updating with the new
// §     information provided, and then do so.
// §
// §     *  If the 304 response contains a strong entity tag, the stored
// §        responses with the same strong entity tag are selected for update.
// §
// §     *  If the 304 response contains a weak entity tag, the stored responses
// §        that have the same weak entity tag are selected for update.
// §
// §     *  If a 304 response contains no entity tag and the stored response has
// §        a Last-Modified value, that stored response is selected.
// §
// §     If a stored response is selected for update, the cache MUST:
// §
// §     *  delete any Warning header fields in the stored response with warn-
// §        code 1xx (see Section 5.5);
// §
// §     *  retain any Warning header fields in the stored response with warn-
// §        code 2xx; and
// §
// §     *  use other header fields provided in the 304 (Not Modified) response
// §        to replace all instances of the corresponding header fields in the
// §        stored response.

// Freshen updates the stored response header with the fields of a 304 response.
// It returns false if the stored response is not selected for update,
// in which case the stored response must not be used.
func Freshen(storedResponse *http.Response, notModified *http.Response) bool {
	if etag := notModified.Header.Get("ETag"); etag != "" {
		if etag != storedResponse.Header.Get("ETag") {
			return false
		}
	} else if storedResponse.Header.Get("Last-Modified") == "" && storedResponse.Header.Get("ETag") == "" {
		return false
	}
	storedResponse.Header.Del("Warning")
	updateStoredHeader(storedResponse.Header, notModified.Header)
	return true
}
