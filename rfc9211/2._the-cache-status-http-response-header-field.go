package rfc9211

import (
	"fmt"
	"strings"
)

// §  2.  The Cache-Status HTTP Response Header Field
// §
// §     The Cache-Status HTTP response header field indicates caches' handling
// §     of the request corresponding to the response it occurs within.

// CacheName is the cache identifier used in Cache-Status fields written by this module.
const CacheName = "Revalidate"

// HeaderName is the name of the Cache-Status field.
const HeaderName = "Cache-Status"

type Status string

const (
	// §     hit: Indicates that the request was satisfied by the cache; that
	// §     is, it was not forwarded, and the response was obtained from the
	// §     cache.
	StatusHit Status = "hit"
	// §     fwd: Indicates that the request was forwarded towards the origin
	// §     server.
	StatusFwd Status = "fwd"
)

// FwdReason is the reason the request was forwarded towards the origin.
type FwdReason string

const (
	// §     bypass: The cache was configured to not handle this request.
	FwdReasonBypass FwdReason = "bypass"
	// §     method: The request method's semantics require the request to be
	// §     forwarded.
	FwdReasonMethod FwdReason = "method"
	// §     uri-miss: The cache did not contain any responses that matched the
	// §     request URI.
	FwdReasonUriMiss FwdReason = "uri-miss"
	// §     vary-miss: The cache contained a response that matched the request
	// §     URI, but it could not select a response based upon this request's
	// §     header fields and stored Vary header fields.
	FwdReasonVaryMiss FwdReason = "vary-miss"
	// §     miss: The cache did not contain any responses that could be used to
	// §     satisfy this request.
	FwdReasonMiss FwdReason = "miss"
	// §     request: The cache was able to select a fresh response for the
	// §     request, but the request's semantics (e.g., Cache-Control request
	// §     directives) did not allow its use.
	FwdReasonRequest FwdReason = "request"
	// §     stale: The cache was able to select a response for the request, but
	// §     it was stale.
	FwdReasonStale FwdReason = "stale"
)

// CacheStatus collects the parameters of a single Cache-Status field member.
// The zero value is a valid, empty status.
type CacheStatus struct {
	Status    Status
	FwdReason FwdReason
	// Status code of the forwarded response, e.g. 304 for a successful validation.
	FwdStatus int
	// Remaining freshness in seconds. Negative for stale responses.
	TimeToLive int
	ttlSet     bool
	Stored     bool
	Detail     string
}

// Hit marks the response as served from the cache.
func (cs *CacheStatus) Hit() {
	cs.Status = StatusHit
	cs.FwdReason = ""
}

// Forward marks the request as forwarded for the given reason.
func (cs *CacheStatus) Forward(reason FwdReason) {
	cs.Status = StatusFwd
	cs.FwdReason = reason
}

// TTL sets the ttl parameter from a remaining freshness in seconds.
func (cs *CacheStatus) TTL(seconds int) {
	cs.TimeToLive = seconds
	cs.ttlSet = true
}

// String returns the field member, e.g. `Revalidate; fwd=stale; fwd-status=304; stored`.
func (cs CacheStatus) String() string {
	var b strings.Builder
	b.WriteString(CacheName)
	switch cs.Status {
	case StatusHit:
		b.WriteString("; hit")
	case StatusFwd:
		reason := cs.FwdReason
		if reason == "" {
			reason = FwdReasonMiss
		}
		fmt.Fprintf(&b, "; fwd=%s", reason)
		if cs.FwdStatus != 0 {
			fmt.Fprintf(&b, "; fwd-status=%d", cs.FwdStatus)
		}
	}
	if cs.ttlSet {
		fmt.Fprintf(&b, "; ttl=%d", cs.TimeToLive)
	}
	if cs.Stored {
		b.WriteString("; stored")
	}
	if cs.Detail != "" {
		fmt.Fprintf(&b, "; detail=%s", cs.Detail)
	}
	return b.String()
}
