package httpcache

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/always-cache/revalidate/cache"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

var errStoreDown = errors.New("store down")

// failingCache fails every operation.
type failingCache struct{}

func (failingCache) Get(context.Context, string) (cache.CacheEntry, bool, error) {
	return cache.CacheEntry{}, false, errStoreDown
}

func (failingCache) Put(context.Context, cache.CacheEntry) error {
	return errStoreDown
}

func (failingCache) Purge(context.Context, string) error {
	return errStoreDown
}

// origin is a test server counting the requests it receives.
type origin struct {
	*httptest.Server
	hits atomic.Int32
}

func newOrigin(t *testing.T, setup func(r chi.Router)) *origin {
	t.Helper()
	o := &origin{}
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			o.hits.Add(1)
			next.ServeHTTP(w, r)
		})
	})
	setup(r)
	o.Server = httptest.NewServer(r)
	t.Cleanup(o.Close)
	return o
}

func newTestClient(o *origin, config Config) *Client {
	logger := zerolog.Nop()
	config.Logger = &logger
	if o != nil {
		config.HTTPClient = o.Client()
	}
	return New(config)
}

func get(t *testing.T, c *Client, url string, headers ...string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("Error creating request: %v", err)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	res, err := c.Do(req)
	if err != nil {
		t.Fatalf("Error doing request: %v", err)
	}
	return res
}

func body(t *testing.T, res *http.Response) string {
	t.Helper()
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("Error reading body: %v", err)
	}
	return string(b)
}
