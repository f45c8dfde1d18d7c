package rfc9111

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"time"
)

// §  5.2.  Cache-Control
// §
// §     The "Cache-Control" header field is used to list directives for
// §     caches along the request/response chain.  Cache directives are
// §     unidirectional, in that the presence of a directive in a request does
// §     not imply that the same directive is present or copied in the
// §     response.
// §
// §     Cache directives are identified by a token, to be compared case-
// §     insensitively, and have an optional argument that can use both token
// §     and quoted-string syntax.
// §
// §       Cache-Control   = #cache-directive
// §
// §       cache-directive = token [ "=" ( token / quoted-string ) ]

// CacheControl holds the parsed directives of all Cache-Control field lines,
// keyed by the lowercased directive name.
type CacheControl map[string]string

// ParseCacheControl parses the given Cache-Control field lines.
// A directive repeated later in the list does not override the first occurrence.
func ParseCacheControl(headers []string) CacheControl {
	cc := make(CacheControl)
	for _, header := range headers {
		for _, directive := range strings.Split(header, ",") {
			directive = strings.TrimSpace(directive)
			if directive == "" {
				continue
			}
			name, value, _ := strings.Cut(directive, "=")
			name = strings.ToLower(strings.TrimSpace(name))
			value = strings.Trim(strings.TrimSpace(value), `"`)
			if _, exists := cc[name]; !exists {
				cc[name] = value
			}
		}
	}
	return cc
}

// Get returns the argument of the directive and whether it is present.
func (cc CacheControl) Get(directive string) (string, bool) {
	value, ok := cc[strings.ToLower(directive)]
	return value, ok
}

// HasDirective reports whether the directive is present, with or without an argument.
func (cc CacheControl) HasDirective(directive string) bool {
	_, ok := cc.Get(directive)
	return ok
}

// §  5.2.1.1.  max-age
// §
// §     Argument syntax:
// §
// §        delta-seconds (see Section 1.2.2)
//
// §  5.2.2.1.  max-age
// §
// §     The max-age response directive indicates that the response is to be
// §     considered stale after its age is greater than the specified number
// §     of seconds.
func (cc CacheControl) MaxAge() (time.Duration, bool) {
	return cc.deltaSeconds("max-age")
}

// §  5.2.2.10.  s-maxage
// §
// §     The s-maxage response directive indicates that, for a shared cache,
// §     the maximum age specified by this directive overrides the maximum age
// §     specified by either the max-age directive or the Expires header
// §     field.
func (cc CacheControl) SMaxAge() (time.Duration, bool) {
	return cc.deltaSeconds("s-maxage")
}

// §  5.2.1.2.  max-stale
// §
// §     Argument syntax:
// §
// §        delta-seconds (see Section 1.2.2)
//
// A max-stale directive without a valid argument accepts any staleness.
func (cc CacheControl) MaxStale() (time.Duration, bool) {
	value, ok := cc.Get("max-stale")
	if !ok {
		return 0, false
	}
	if seconds, valid := deltaSeconds(value); valid {
		return seconds, true
	}
	return time.Duration(1<<63 - 1), true
}

// §  5.2.1.3.  min-fresh
// §
// §     Argument syntax:
// §
// §        delta-seconds (see Section 1.2.2)
func (cc CacheControl) MinFresh() (time.Duration, bool) {
	return cc.deltaSeconds("min-fresh")
}

// §  5.2.1.7.  only-if-cached
// §
// §     The only-if-cached request directive indicates that the client only
// §     wishes to obtain a stored response.  Caches that honor this request
// §     directive SHOULD, upon receiving it, respond with either a stored
// §     response consistent with the other constraints of the request or a
// §     504 (Gateway Timeout) status code.
func (cc CacheControl) OnlyIfCached() bool {
	return cc.HasDirective("only-if-cached")
}

func (cc CacheControl) deltaSeconds(directive string) (time.Duration, bool) {
	value, ok := cc.Get(directive)
	if !ok {
		return 0, false
	}
	return deltaSeconds(value)
}

// UnsatisfiableResponse returns the 504 response for an only-if-cached request
// that the cache cannot satisfy.
func UnsatisfiableResponse(req *http.Request) *http.Response {
	body := []byte("Unsatisfiable Request (only-if-cached)\n")
	header := make(http.Header)
	header.Set("Content-Type", "text/plain; charset=utf-8")
	header.Set("Date", ToHttpDate(now()))
	return &http.Response{
		Status:        "504 Gateway Timeout",
		StatusCode:    http.StatusGatewayTimeout,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}
