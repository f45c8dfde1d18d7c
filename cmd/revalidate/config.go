package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	responsetransformer "github.com/always-cache/revalidate/pkg/response-transformer"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Cache provider: sqlite, memory or redis.
	Provider string `yaml:"provider"`
	// SQLite database file.
	DB string `yaml:"db"`
	// Redis server address.
	Redis string `yaml:"redis"`
	// Cache key namespace.
	Namespace string `yaml:"namespace"`
	// How long responses are kept after storing them. Zero keeps them forever.
	Retention time.Duration `yaml:"retention"`
	// Timeout of network requests.
	Timeout  time.Duration             `yaml:"timeout"`
	Requests []ConfigRequest           `yaml:"requests"`
	Rules    responsetransformer.Rules `yaml:"rules"`
}

type ConfigRequest struct {
	URL     string            `yaml:"url"`
	Method  string            `yaml:"method"`
	Headers map[string]string `yaml:"headers"`
}

const (
	defaultProvider = "sqlite"
	defaultDB       = "cache.db"
	defaultTimeout  = 30 * time.Second
	// requested when no URLs are given
	defaultURL = "http://www.google.com"
)

func getConfig(filename string) (Config, error) {
	var config Config
	configBytes, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	err = yaml.Unmarshal(configBytes, &config)
	return config, err
}

// withDefaults fills in the unset values.
func (c Config) withDefaults() Config {
	if c.Provider == "" {
		c.Provider = defaultProvider
	}
	if c.DB == "" {
		c.DB = defaultDB
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if len(c.Requests) == 0 {
		c.Requests = []ConfigRequest{{URL: defaultURL}}
	}
	return c
}

// validate checks the values that cannot be defaulted.
func (c Config) validate() error {
	switch c.Provider {
	case "sqlite", "memory":
	case "redis":
		if c.Redis == "" {
			return fmt.Errorf("redis provider needs a redis address")
		}
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	for _, r := range c.Requests {
		if r.URL == "" {
			return fmt.Errorf("request without url")
		}
	}
	return nil
}

// httpRequests creates the configured requests, adding the common header fields to each.
func (c Config) httpRequests(common http.Header) ([]*http.Request, error) {
	requests := make([]*http.Request, 0, len(c.Requests))
	for _, r := range c.Requests {
		method := strings.ToUpper(r.Method)
		if method == "" {
			method = http.MethodGet
		}
		req, err := http.NewRequest(method, r.URL, nil)
		if err != nil {
			return nil, fmt.Errorf("request %s: %w", r.URL, err)
		}
		for name, values := range common {
			for _, value := range values {
				req.Header.Add(name, value)
			}
		}
		for name, value := range r.Headers {
			req.Header.Set(name, value)
		}
		requests = append(requests, req)
	}
	return requests, nil
}

// headerFlags collects repeated `-header "Name: value"` flags.
type headerFlags http.Header

func (h headerFlags) String() string {
	parts := make([]string, 0, len(h))
	for name, values := range h {
		for _, value := range values {
			parts = append(parts, name+": "+value)
		}
	}
	return strings.Join(parts, ", ")
}

func (h headerFlags) Set(s string) error {
	name, value, found := strings.Cut(s, ":")
	if !found || strings.TrimSpace(name) == "" {
		return fmt.Errorf("header must be given as 'Name: value'")
	}
	http.Header(h).Add(strings.TrimSpace(name), strings.TrimSpace(value))
	return nil
}
