package rfc9111

import (
	"net/http"
	"strings"
)

// §  5.4.  Pragma
// §
// §     The "Pragma" request header field was defined for HTTP/1.0 caches, so
// §     that clients could specify a "no-cache" request.  However, support
// §     for Cache-Control was not consistently implemented by all clients.
// §
// §     When the Cache-Control header field is present, caches SHOULD ignore
// §     Pragma.
func pragmaNoCache(header http.Header) bool {
	if len(header.Values("Cache-Control")) > 0 {
		return false
	}
	for _, item := range GetListHeader(header, "Pragma") {
		if strings.EqualFold(item, "no-cache") {
			return true
		}
	}
	return false
}
