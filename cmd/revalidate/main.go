package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/always-cache/revalidate"
	"github.com/always-cache/revalidate/cache"
	"github.com/always-cache/revalidate/httpcache"
	"github.com/always-cache/revalidate/rfc9211"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// CLI flags
	configFilenameFlag string
	providerFlag       string
	dbFilenameFlag     string
	redisAddrFlag      string
	namespaceFlag      string
	retentionFlag      time.Duration
	timeoutFlag        time.Duration
	directFlag         bool
	verbosityTraceFlag bool
	logFilenameFlag    string
	headerFlag         = headerFlags{}

	// this is set by goreleaser
	version string
)

func init() {
	flag.StringVar(&configFilenameFlag, "config", "", "YAML config file")
	flag.StringVar(&providerFlag, "provider", defaultProvider, "Cache provider: sqlite, memory or redis")
	flag.StringVar(&dbFilenameFlag, "db", defaultDB, "Cache DB file name (use 'memory' for in-memory db)")
	flag.StringVar(&redisAddrFlag, "redis", "", "Redis address for the redis provider")
	flag.StringVar(&namespaceFlag, "namespace", "", "Cache key namespace")
	flag.DurationVar(&retentionFlag, "retention", 0, "How long to keep stored responses (0 keeps them forever)")
	flag.DurationVar(&timeoutFlag, "timeout", defaultTimeout, "Network request timeout")
	flag.BoolVar(&directFlag, "direct", false, "Send plain network requests, without cache")
	flag.BoolVar(&verbosityTraceFlag, "vv", false, "Verbosity: trace logging")
	flag.StringVar(&logFilenameFlag, "log-file", "", "Log file to use (in addition to stderr)")
	flag.Var(headerFlag, "header", "Request header as 'Name: value' (repeatable)")

	if version == "" {
		version = "DEV"
	}
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [url...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	// set log level
	logLevel := zerolog.DebugLevel
	if verbosityTraceFlag {
		logLevel = zerolog.TraceLevel
	}

	// set up log output to stderr, stdout is for results
	// also output to logfile if specified
	logOutputs := make([]io.Writer, 0)
	logOutputs = append(logOutputs, zerolog.ConsoleWriter{Out: os.Stderr})
	if logFilenameFlag != "" {
		if logFileOutput, err := os.OpenFile(logFilenameFlag, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644); err != nil {
			log.Fatal().Err(err).Msg("Cannot open log file")
		} else {
			logOutputs = append(logOutputs, logFileOutput)
		}
	}
	multiWriter := zerolog.MultiLevelWriter(logOutputs...)
	log.Logger = log.Level(logLevel).Output(multiWriter).
		With().Str("version", version).Logger()

	config := Config{}
	if configFilenameFlag != "" {
		var err error
		if config, err = getConfig(configFilenameFlag); err != nil {
			log.Fatal().Err(err).Msg("Could not read config")
		}
	}
	config = applyFlags(config, flag.CommandLine, flag.Args()).withDefaults()
	if err := config.validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid config")
	}

	requests, err := config.httpRequests(http.Header(headerFlag))
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid request")
	}
	httpClient := &http.Client{Timeout: config.Timeout}

	if directFlag {
		os.Exit(runDirect(httpClient, requests, os.Stdout, os.Stderr))
	}

	provider, closeProvider, err := openProvider(config)
	if err != nil {
		log.Fatal().Err(err).Str("provider", config.Provider).Msg("Could not open cache")
	}

	client := httpcache.New(httpcache.Config{
		Cache:      provider,
		HTTPClient: httpClient,
		Namespace:  config.Namespace,
		Rules:      config.Rules,
		Logger:     &log.Logger,
	})
	coordinator := revalidate.New(revalidate.Config{
		Fetcher: client,
		Logger:  &log.Logger,
	})

	exitCode := runCoordinated(coordinator, client, requests, os.Stdout, os.Stderr)
	if err := closeProvider(); err != nil {
		log.Warn().Err(err).Msg("Could not close cache")
	}
	os.Exit(exitCode)
}

// applyFlags overrides the config file values with the flags given on the command line.
// URL arguments replace the configured requests.
func applyFlags(config Config, flags *flag.FlagSet, urls []string) Config {
	flags.Visit(func(f *flag.Flag) {
		value := f.Value.String()
		switch f.Name {
		case "provider":
			config.Provider = value
		case "db":
			config.DB = value
		case "redis":
			config.Redis = value
		case "namespace":
			config.Namespace = value
		case "retention":
			config.Retention = f.Value.(flag.Getter).Get().(time.Duration)
		case "timeout":
			config.Timeout = f.Value.(flag.Getter).Get().(time.Duration)
		}
	})
	if len(urls) > 0 {
		config.Requests = make([]ConfigRequest, 0, len(urls))
		for _, u := range urls {
			config.Requests = append(config.Requests, ConfigRequest{URL: u})
		}
	}
	return config
}

// openProvider creates the configured cache provider and a function for closing it.
func openProvider(config Config) (cache.CacheProvider, func() error, error) {
	noop := func() error { return nil }
	switch config.Provider {
	case "memory":
		return cache.NewMemoryCache(config.Retention), noop, nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: config.Redis})
		return cache.NewRedisCache(client, config.Retention, config.Namespace), client.Close, nil
	default:
		dbFilename := config.DB
		if dbFilename == "memory" {
			dbFilename = ""
		}
		s, err := cache.NewSQLiteCache(dbFilename, config.Retention)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	}
}

// runCoordinated coordinates the requests one at a time, printing every delivered result.
// It returns 1 if nothing was delivered for some request.
func runCoordinated(coordinator *revalidate.Coordinator, client *httpcache.Client, requests []*http.Request, stdout, stderr io.Writer) int {
	exitCode := 0
	for _, req := range requests {
		var mu sync.Mutex
		delivered := 0
		coordinator.Coordinate(req, revalidate.SinkFuncs{
			Result: func(res *revalidate.Response) {
				mu.Lock()
				defer mu.Unlock()
				delivered++
				printResult(stdout, req, res)
			},
			Failure: func(err error) {
				mu.Lock()
				defer mu.Unlock()
				fmt.Fprintf(stderr, "%s %s failed: %v\n", req.Method, req.URL, err)
			},
		})
		client.Wait()
		if delivered == 0 {
			exitCode = 1
		}
	}
	return exitCode
}

// runDirect sends the requests without the cache.
func runDirect(client *http.Client, requests []*http.Request, stdout, stderr io.Writer) int {
	exitCode := 0
	for _, req := range requests {
		outcome := revalidate.NewOutcome(client.Do(req))
		if outcome.Err != nil {
			fmt.Fprintf(stderr, "%s %s failed: %v\n", req.Method, req.URL, outcome.Err)
			exitCode = 1
			continue
		}
		outcome.Response.Source = revalidate.SourceNetwork
		printResult(stdout, req, outcome.Response)
	}
	return exitCode
}

func printResult(w io.Writer, req *http.Request, res *revalidate.Response) {
	fmt.Fprintf(w, "[%s] %s %s: %d\n", res.Source, req.Method, req.URL, res.StatusCode)
	if cs := res.Header.Get(rfc9211.HeaderName); cs != "" {
		fmt.Fprintf(w, "%s: %s\n", rfc9211.HeaderName, cs)
	}
	fmt.Fprintf(w, "\n%s\n", res.Body)
}
