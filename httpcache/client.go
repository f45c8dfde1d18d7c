// Package httpcache is an HTTP client with a private response cache (RFC 9111).
//
// The client serves the fetch capability of the stale-while-revalidate coordinator:
// cache-only lookups through the `only-if-cached` request directive,
// and network requests that revalidate and refresh the stored responses.
package httpcache

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/always-cache/revalidate/cache"
	cacheupdate "github.com/always-cache/revalidate/pkg/cache-update"
	cachekey "github.com/always-cache/revalidate/pkg/cache-key"
	serializer "github.com/always-cache/revalidate/pkg/response-serializer"
	responsetransformer "github.com/always-cache/revalidate/pkg/response-transformer"
	"github.com/always-cache/revalidate/pkg/routine"
	"github.com/always-cache/revalidate/rfc9111"
	"github.com/always-cache/revalidate/rfc9211"

	"github.com/rs/zerolog"
)

const defaultCacheTimeout = 2 * time.Second

type Config struct {
	// Storage for cache entries. An in-memory cache is used if nil.
	Cache cache.CacheProvider
	// Client used for network requests. http.DefaultClient is used if nil.
	HTTPClient *http.Client
	// Upper bound for each cache store operation. Defaults to 2 seconds.
	CacheTimeout time.Duration
	// Optional namespace for the cache keys.
	// Use it when many clients share the same store.
	Namespace string
	// Optional rules for transforming network responses before storing them.
	// Use them e.g. for adding Cache-Control to responses of origins that send none.
	Rules responsetransformer.Rules
	// Logger to use. A console logger is used if nil.
	Logger *zerolog.Logger
}

// Client is an HTTP client with a private cache.
// It is safe for concurrent use.
type Client struct {
	cache        cache.CacheProvider
	client       *http.Client
	keyer        cachekey.CacheKeyer
	cacheTimeout time.Duration
	rules        responsetransformer.Rules
	log          zerolog.Logger
	runner       *routine.Runner
}

// New creates a caching client.
func New(config Config) *Client {
	// use console logger if not specified in config
	var logger zerolog.Logger
	if config.Logger == nil {
		logger = zerolog.New(zerolog.NewConsoleWriter())
	} else {
		logger = *config.Logger
	}

	logger = logger.With().
		Str("component", "httpcache").
		Logger()

	c := &Client{
		cache:        config.Cache,
		client:       config.HTTPClient,
		keyer:        cachekey.NewCacheKeyer(config.Namespace),
		cacheTimeout: config.CacheTimeout,
		rules:        config.Rules,
		log:          logger,
		runner:       routine.New(logger),
	}
	if c.cache == nil {
		c.cache = cache.NewMemoryCache(0)
	}
	if c.client == nil {
		c.client = http.DefaultClient
	}
	if c.cacheTimeout <= 0 {
		c.cacheTimeout = defaultCacheTimeout
	}
	return c
}

// Do sends the request, answering it from the cache when allowed.
//
// Requests with the `only-if-cached` directive never reach the network:
// they are answered with a stored response or with 504 (Gateway Timeout).
// A failing cache store is a transport error for such requests, and a miss for others.
// Every returned response carries the Cache-Status header field.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	log := c.log.With().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Logger()
	onlyIfCached := rfc9111.ParseCacheControl(req.Header.Values("Cache-Control")).OnlyIfCached()

	if req.Method != http.MethodGet {
		if onlyIfCached {
			return c.unsatisfiable(req), nil
		}
		log.Trace().Msg("Method not cached, forwarding")
		return c.forwardUncached(req, log)
	}

	key, err := c.keyer.GetKey(req)
	if err != nil {
		return nil, fmt.Errorf("httpcache: %w", err)
	}

	stored, found, err := c.lookup(req.Context(), key)
	if err != nil {
		if onlyIfCached {
			return nil, fmt.Errorf("httpcache: reading cache: %w", err)
		}
		log.Warn().Err(err).Msg("Could not read cache, treating as miss")
	}

	cs := rfc9211.CacheStatus{}
	if !found {
		if onlyIfCached {
			log.Debug().Msg("Not in cache")
			return c.unsatisfiable(req), nil
		}
		cs.Forward(rfc9211.FwdReasonUriMiss)
		return c.forward(req, key, cs, log)
	}

	fwdReason, validationReq := rfc9111.MustNotReuse(req, stored.Response, stored.RequestTime, stored.ResponseTime)
	if fwdReason == "" {
		log.Debug().Msg("Serving from cache")
		cs.Hit()
		return c.constructResponse(stored, cs), nil
	}
	if onlyIfCached {
		log.Debug().Str("reason", string(fwdReason)).Msg("Stored response not usable")
		return c.unsatisfiable(req), nil
	}
	cs.Forward(fwdReason)
	if validationReq != nil {
		return c.validate(req, validationReq, key, stored, cs, log)
	}
	return c.forward(req, key, cs, log)
}

// lookup gets and parses the stored response for the key.
func (c *Client) lookup(ctx context.Context, key string) (serializer.TimedResponse, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cacheTimeout)
	defer cancel()
	ce, found, err := c.cache.Get(ctx, key)
	if err != nil || !found {
		return serializer.TimedResponse{}, false, err
	}
	stored, err := serializer.BytesToStoredResponse(ce.Bytes)
	if err != nil {
		// a broken entry is useless, get rid of it
		if purgeErr := c.cache.Purge(ctx, key); purgeErr != nil {
			c.log.Warn().Err(purgeErr).Str("key", key).Msg("Could not purge broken entry")
		}
		return stored, false, fmt.Errorf("parsing %s: %w", key, err)
	}
	if stored.Response.Request == nil {
		if stored.Response.Request, err = c.keyer.GetRequestFromKey(key); err != nil {
			return stored, false, err
		}
	}
	return stored, true, nil
}

// validate sends the conditional request and uses its response
// to either freshen the stored response or replace it.
func (c *Client) validate(req, validationReq *http.Request, key string, stored serializer.TimedResponse, cs rfc9211.CacheStatus, log zerolog.Logger) (*http.Response, error) {
	log.Debug().Msg("Validating stored response")
	requestTime := time.Now()
	res, err := c.client.Do(validationReq)
	if err != nil {
		return nil, err
	}
	responseTime := time.Now()

	if res.StatusCode != http.StatusNotModified {
		return c.handleResponse(req, key, res, requestTime, responseTime, cs, log)
	}
	io.Copy(io.Discard, res.Body)
	res.Body.Close()

	if !rfc9111.Freshen(stored.Response, res) {
		log.Debug().Msg("Validation response does not match stored response")
		return c.forward(req, key, cs, log)
	}
	if res.Header.Get("Date") == "" {
		stored.Response.Header.Set("Date", rfc9111.ToHttpDate(responseTime))
	}
	stored.RequestTime = requestTime
	stored.ResponseTime = responseTime
	cs.FwdStatus = http.StatusNotModified
	cs.Stored = c.put(req.Context(), key, stored, log)
	return c.constructResponse(stored, cs), nil
}

// forward sends the request without conditions and handles the response.
func (c *Client) forward(req *http.Request, key string, cs rfc9211.CacheStatus, log zerolog.Logger) (*http.Response, error) {
	log.Debug().Str("reason", string(cs.FwdReason)).Msg("Forwarding request")
	requestTime := time.Now()
	res, err := c.client.Do(rfc9111.GetForwardRequest(req))
	if err != nil {
		return nil, err
	}
	return c.handleResponse(req, key, res, requestTime, time.Now(), cs, log)
}

// handleResponse stores the network response if allowed.
func (c *Client) handleResponse(
	req *http.Request, key string, res *http.Response,
	requestTime, responseTime time.Time,
	cs rfc9211.CacheStatus, log zerolog.Logger,
) (*http.Response, error) {
	cs.FwdStatus = res.StatusCode
	if err := c.rules.Apply(res); err != nil {
		log.Warn().Err(err).Msg("Could not transform response")
	}

	if rfc9111.MustNotStore(req, res) {
		log.Trace().Int("status", res.StatusCode).Msg("Response not storable")
		res.Header.Set(rfc9211.HeaderName, cs.String())
		return res, nil
	}

	// §     A recipient with a clock that receives a response message without a
	// §     Date header field MUST record the time it was received and append a
	// §     corresponding Date header field to the message's header section if it
	// §     is cached or forwarded downstream.
	if res.Header.Get("Date") == "" {
		res.Header.Set("Date", rfc9111.ToHttpDate(responseTime))
	}

	// the stored copy refers to the request as sent by the caller
	storedRes := *res
	storedRes.Header = rfc9111.StorableHeader(res.Header)
	storedRes.Request = rfc9111.GetForwardRequest(req)
	stored := serializer.TimedResponse{
		Response:     &storedRes,
		RequestTime:  requestTime,
		ResponseTime: responseTime,
	}
	cs.Stored = c.put(req.Context(), key, stored, log)
	// serializing consumed the original body and left an unread copy
	res.Body = storedRes.Body
	res.ContentLength = storedRes.ContentLength

	if cs.Stored {
		cs.TTL(rfc9111.TimeToLive(res, requestTime, responseTime))
		rfc9111.AddAgeHeader(res, requestTime, responseTime)
	}
	res.Header.Set(rfc9211.HeaderName, cs.String())
	return res, nil
}

// put stores the response, returning whether it was stored.
func (c *Client) put(ctx context.Context, key string, stored serializer.TimedResponse, log zerolog.Logger) bool {
	bytes, err := serializer.StoredResponseToBytes(stored)
	if err != nil {
		log.Error().Err(err).Msg("Could not serialize response")
		return false
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cacheTimeout)
	defer cancel()
	err = c.cache.Put(ctx, cache.CacheEntry{
		Key:         key,
		Expires:     rfc9111.GetExpiration(stored.Response, stored.RequestTime, stored.ResponseTime),
		RequestedAt: stored.RequestTime,
		ReceivedAt:  stored.ResponseTime,
		Bytes:       bytes,
	})
	if err != nil {
		log.Error().Err(err).Msg("Could not store response")
		return false
	}
	log.Trace().Str("key", key).Msg("Stored response")
	return true
}

// forwardUncached sends a request whose method is never served from the cache,
// invalidating stored responses if the method is unsafe.
func (c *Client) forwardUncached(req *http.Request, log zerolog.Logger) (*http.Response, error) {
	res, err := c.client.Do(rfc9111.GetForwardRequest(req))
	if err != nil {
		return nil, err
	}
	for _, u := range rfc9111.GetInvalidateURIs(req, res) {
		c.invalidate(req, u, log)
	}
	for _, update := range cacheupdate.GetCacheUpdates(req, res) {
		if update.Delay == 0 {
			c.invalidate(req, update.URL, log)
			continue
		}
		u := update.URL
		log.Debug().Str("uri", u.String()).Dur("delay", update.Delay).Msg("Scheduling invalidation")
		time.AfterFunc(update.Delay, func() { c.invalidate(req, u, log) })
	}
	cs := rfc9211.CacheStatus{FwdStatus: res.StatusCode}
	cs.Forward(rfc9211.FwdReasonMethod)
	res.Header.Set(rfc9211.HeaderName, cs.String())
	return res, nil
}

// invalidate purges the stored response of a GET request to the URL.
func (c *Client) invalidate(req *http.Request, u *url.URL, log zerolog.Logger) {
	key := c.keyer.GetURIKey(http.MethodGet, u, req.Header.Get("Cache-Key"))
	if err := c.purge(req.Context(), key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Could not invalidate stored response")
	} else {
		log.Debug().Str("uri", u.String()).Msg("Invalidated stored response")
	}
}

func (c *Client) purge(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cacheTimeout)
	defer cancel()
	return c.cache.Purge(ctx, key)
}

// constructResponse creates the response to return from a stored response.
func (c *Client) constructResponse(stored serializer.TimedResponse, cs rfc9211.CacheStatus) *http.Response {
	res := rfc9111.ConstructResponse(stored.Response, stored.RequestTime, stored.ResponseTime)
	cs.TTL(rfc9111.TimeToLive(stored.Response, stored.RequestTime, stored.ResponseTime))
	res.Header.Set(rfc9211.HeaderName, cs.String())
	return res
}

// unsatisfiable returns the response for an only-if-cached request that cannot be answered.
func (c *Client) unsatisfiable(req *http.Request) *http.Response {
	res := rfc9111.UnsatisfiableResponse(req)
	cs := rfc9211.CacheStatus{Detail: "only-if-cached"}
	res.Header.Set(rfc9211.HeaderName, cs.String())
	return res
}
