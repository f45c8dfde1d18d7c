package cachekey

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

var ErrorURLNotAbsolute = fmt.Errorf("URL is not absolute")

const (
	namespaceSeparator = ":"
	methodSeparator    = ":"
	variantSeparator   = "\t"
)

// CacheKeyer creates the cache keys of requests.
// A key consists of the optional namespace, the method, the absolute target URI
// and the value of the `Cache-Key` request header, if any.
type CacheKeyer struct {
	// Namespace shared by all keys, allowing many clients to share a store.
	Namespace string
	// Cache key prefix for the namespace
	NamespacePrefix string
}

func NewCacheKeyer(namespace string) CacheKeyer {
	c := CacheKeyer{Namespace: namespace}
	if namespace != "" {
		c.NamespacePrefix = namespace + namespaceSeparator
	}
	return c
}

// GetKey returns the cache key for the request.
func (c CacheKeyer) GetKey(r *http.Request) (string, error) {
	if r.URL == nil || !r.URL.IsAbs() {
		return "", ErrorURLNotAbsolute
	}
	return c.GetURIKey(r.Method, r.URL, r.Header.Get("Cache-Key")), nil
}

// GetURIKey returns the cache key for a method and target URI.
// The fragment is not part of the key.
func (c CacheKeyer) GetURIKey(method string, u *url.URL, variant string) string {
	target := *u
	target.Fragment = ""
	target.RawFragment = ""
	return c.NamespacePrefix + method + methodSeparator + target.String() + variantSeparator + variant
}

// GetRequestFromKey generates a caching-wise equal request than the request that resulted in the
// provided key. It returns an error if the key was not created by this keyer.
func (c CacheKeyer) GetRequestFromKey(key string) (*http.Request, error) {
	if !strings.HasPrefix(key, c.NamespacePrefix) {
		return nil, fmt.Errorf("Key and namespace do not match")
	}
	keyNoNamespace := strings.TrimPrefix(key, c.NamespacePrefix)
	keyNoVariant, variant, found := strings.Cut(keyNoNamespace, variantSeparator)
	if !found {
		return nil, fmt.Errorf("Malformed key: %s", key)
	}
	method, uri, found := strings.Cut(keyNoVariant, methodSeparator)
	if !found {
		return nil, fmt.Errorf("Malformed key: %s", key)
	}
	req, err := http.NewRequest(method, uri, nil)
	if err != nil {
		return req, err
	}
	if variant != "" {
		req.Header.Set("Cache-Key", variant)
	}
	return req, nil
}
