package rfc9111

import "net/http"

// §  3.2.  Updating Stored Header Fields
// §
// §     Caches are required to update a stored response's header fields from
// §     another (typically newer) response in several situations; for
// §     example, see Sections 3.4, 4.3.4, and 4.3.5.
// §
// §     When doing so, the cache MUST add each header field in the provided
// §     response to the stored response, replacing field values that are
// §     already present, with the following exceptions:
// §
// §     *  Header fields excepted from storage in Section 3.1,
// §
// §     *  Header fields that the cache's stored response depends upon, as
// §        described below,
// §
// §     *  Header fields that are automatically processed and removed by the
// §        recipient, as described below, and
// §
// §     *  The Content-Length header field.

func updateStoredHeader(stored, provided http.Header) {
	update := StorableHeader(provided)
	update.Del("Content-Length")
	// the stored body is decoded with the stored encoding
	update.Del("Content-Encoding")
	for name, values := range update {
		stored[name] = append([]string(nil), values...)
	}
}
