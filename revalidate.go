// Package revalidate coordinates stale-while-revalidate requests.
//
// A coordinated request is first answered from the local response cache,
// without touching the network, and then always re-fetched from the network.
// The caller is notified of every successful result through a ResultSink,
// so it can show previously seen data immediately and refresh it shortly after.
package revalidate

import (
	"net/http"

	"github.com/rs/zerolog"
)

// LogTag identifies the coordinator in log output.
const LogTag = "stale-while-revalidate"

type Config struct {
	// Fetch capability used for both the cache-only and the network attempt.
	Fetcher Fetcher
	// Logger to use. A console logger is used if nil.
	Logger *zerolog.Logger
	// Optional classification of response status codes.
	// Responses are successful if the status is 2xx by default.
	Successful func(statusCode int) bool
}

// Coordinator issues a cache-only fetch followed by a network fetch for each request.
// It holds no per-request state and may be shared between goroutines.
type Coordinator struct {
	fetcher    Fetcher
	log        zerolog.Logger
	successful func(int) bool
}

// New creates a coordinator using the fetcher of the config.
func New(config Config) *Coordinator {
	// use console logger if not specified in config
	var logger zerolog.Logger
	if config.Logger == nil {
		logger = zerolog.New(zerolog.NewConsoleWriter())
	} else {
		logger = *config.Logger
	}

	logger = logger.With().
		Str("component", LogTag).
		Logger()

	c := &Coordinator{
		fetcher:    config.Fetcher,
		log:        logger,
		successful: config.Successful,
	}
	if c.successful == nil {
		c.successful = IsSuccessful
	}
	return c
}

// IsSuccessful is the default success classification: any 2xx status.
func IsSuccessful(statusCode int) bool {
	return statusCode >= 200 && statusCode <= 299
}

// Coordinate answers the request from the cache, if possible, and then from the network.
//
// The cache-only attempt blocks the caller. A successful cached response is delivered
// to the sink before the network attempt is started. The network attempt is always made,
// and its completion is delivered on the fetcher's goroutine: a successful response
// with OnResult, a transport failure with OnFailure unless the cache already succeeded.
// Unsuccessful responses are never delivered.
func (c *Coordinator) Coordinate(req *http.Request, sink ResultSink) {
	c.coordinate(req, sink, nil)
}

// Results coordinates the request and returns the delivered results as a channel.
// The channel receives at most two responses, or a single failure,
// and is closed once the network attempt has completed.
func (c *Coordinator) Results(req *http.Request) <-chan Result {
	results := make(chan Result, 2)
	sink := SinkFuncs{
		Result: func(res *Response) {
			results <- Result{Response: res}
		},
		Failure: func(err error) {
			results <- Result{Err: err}
		},
	}
	c.coordinate(req, sink, func() { close(results) })
	return results
}

// coordinate runs the algorithm, calling done after the network outcome has been handled.
func (c *Coordinator) coordinate(req *http.Request, sink ResultSink, done func()) {
	log := c.log.With().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Logger()

	cacheSucceeded := false
	cached := normalize(c.fetcher.FetchFromCache(ForceCache(req)))
	switch {
	case cached.Err != nil:
		log.Debug().Err(cached.Err).Msg("No cached response")
	case c.successful(cached.Response.StatusCode):
		cacheSucceeded = true
		log.Debug().Int("status", cached.Response.StatusCode).Msg("Delivering cached response")
		sink.OnResult(cached.Response.from(SourceCache))
	default:
		log.Debug().Int("status", cached.Response.StatusCode).Msg("Cached response not successful")
	}

	c.fetcher.FetchFromNetwork(req, func(outcome Outcome) {
		if done != nil {
			defer done()
		}
		outcome = normalize(outcome)
		switch {
		case outcome.Err != nil:
			if cacheSucceeded {
				log.Debug().Err(outcome.Err).Msg("Network failed, cached response already delivered")
				return
			}
			log.Error().Err(outcome.Err).Msg("Request failed")
			sink.OnFailure(outcome.Err)
		case c.successful(outcome.Response.StatusCode):
			log.Debug().Int("status", outcome.Response.StatusCode).Msg("Delivering network response")
			sink.OnResult(outcome.Response.from(SourceNetwork))
		default:
			log.Warn().Int("status", outcome.Response.StatusCode).Msg("Network response not successful")
		}
	})
}
