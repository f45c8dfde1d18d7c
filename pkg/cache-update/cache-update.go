// Package cacheupdate reads the `Cache-Update` response header, with which an origin names
// additional resources changed by an unsafe request.
//
//	Cache-Update: /items; delay=5, /items/42
package cacheupdate

import (
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/always-cache/revalidate/rfc9111"
)

const HeaderName = "Cache-Update"

var delayPattern = regexp.MustCompile(`(?i)\bdelay=(\d+)`)

// CacheUpdate represents a single `Cache-Update` entry.
type CacheUpdate struct {
	// Fully resolved URL of the changed resource.
	URL *url.URL
	// The resource changes only after this duration.
	Delay time.Duration
}

// GetCacheUpdates gets the updates specified by the response to an unsafe request.
// Relative references are resolved against the request URL, and only same-origin
// updates are returned.
func GetCacheUpdates(req *http.Request, res *http.Response) []CacheUpdate {
	if !rfc9111.UnsafeRequest(req) || res.StatusCode < 200 || res.StatusCode >= 400 {
		return nil
	}
	var updates []CacheUpdate
	for _, update := range rfc9111.GetListHeader(res.Header, HeaderName) {
		u, err := getURL(req.URL, update)
		if err != nil || u.Scheme != req.URL.Scheme || u.Host != req.URL.Host {
			continue
		}
		updates = append(updates, CacheUpdate{URL: u, Delay: getDelay(update)})
	}
	return updates
}

// getURL returns the URL from the first parameter of the header value.
func getURL(base *url.URL, update string) (*url.URL, error) {
	ref, _, _ := strings.Cut(update, ";")
	u, err := base.Parse(strings.TrimSpace(ref))
	if err != nil {
		return nil, err
	}
	u.Fragment = ""
	return u, nil
}

// getDelay returns the value of the `delay=N` directive, N being seconds.
// If no delay directive is found, it returns 0.
func getDelay(update string) time.Duration {
	if matches := delayPattern.FindStringSubmatch(update); matches != nil {
		if delay, err := strconv.Atoi(matches[1]); err == nil {
			return time.Duration(delay) * time.Second
		}
	}
	return 0
}
