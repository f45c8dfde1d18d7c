package main

import (
	"flag"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testConfig = `
provider: redis
redis: localhost:6379
retention: 10m
timeout: 5s
requests:
  - url: http://example.com/a
    headers:
      Accept-Language: fi
  - url: http://example.com/b
    method: head
rules:
  - host: example.com
    default: max-age=60
`

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	filename := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(filename, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	return filename
}

func TestGetConfig(t *testing.T) {
	config, err := getConfig(writeConfig(t, testConfig))
	if err != nil {
		t.Fatalf("Error reading config: %v", err)
	}
	if config.Provider != "redis" || config.Redis != "localhost:6379" {
		t.Fatalf("Provider config is %+v", config)
	}
	if config.Retention != 10*time.Minute || config.Timeout != 5*time.Second {
		t.Fatalf("Durations are %v, %v", config.Retention, config.Timeout)
	}
	if len(config.Requests) != 2 || config.Requests[0].Headers["Accept-Language"] != "fi" {
		t.Fatalf("Requests are %+v", config.Requests)
	}
	if len(config.Rules) != 1 || config.Rules[0].Default != "max-age=60" {
		t.Fatalf("Rules are %+v", config.Rules)
	}
}

func TestGetConfigMissingFile(t *testing.T) {
	if _, err := getConfig(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Fatalf("Expected error")
	}
}

func TestGetConfigMalformed(t *testing.T) {
	if _, err := getConfig(writeConfig(t, "requests: [")); err == nil {
		t.Fatalf("Expected error")
	}
}

func TestConfigDefaults(t *testing.T) {
	config := Config{}.withDefaults()
	if config.Provider != defaultProvider || config.DB != defaultDB || config.Timeout != defaultTimeout {
		t.Fatalf("Defaults are %+v", config)
	}
	if len(config.Requests) != 1 || config.Requests[0].URL != defaultURL {
		t.Fatalf("Default requests are %+v", config.Requests)
	}
	if err := config.validate(); err != nil {
		t.Fatalf("Default config invalid: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{"unknown provider", Config{Provider: "disk"}},
		{"redis without address", Config{Provider: "redis"}},
		{"request without url", Config{Provider: "memory", Requests: []ConfigRequest{{Method: "GET"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.validate(); err == nil {
				t.Fatalf("Expected error for %+v", tt.config)
			}
		})
	}
}

func testFlagSet() *flag.FlagSet {
	flags := flag.NewFlagSet("test", flag.ContinueOnError)
	flags.String("provider", defaultProvider, "")
	flags.String("db", defaultDB, "")
	flags.String("redis", "", "")
	flags.String("namespace", "", "")
	flags.Duration("retention", 0, "")
	flags.Duration("timeout", defaultTimeout, "")
	return flags
}

func TestApplyFlagsOverridesFile(t *testing.T) {
	config, err := getConfig(writeConfig(t, testConfig))
	if err != nil {
		t.Fatal(err)
	}
	flags := testFlagSet()
	if err := flags.Parse([]string{"-provider", "memory", "-timeout", "1s", "http://example.com/c"}); err != nil {
		t.Fatal(err)
	}
	config = applyFlags(config, flags, flags.Args())
	if config.Provider != "memory" || config.Timeout != time.Second {
		t.Fatalf("Flags not applied: %+v", config)
	}
	// unset flags keep the file values
	if config.Redis != "localhost:6379" || config.Retention != 10*time.Minute {
		t.Fatalf("File values overridden: %+v", config)
	}
	if len(config.Requests) != 1 || config.Requests[0].URL != "http://example.com/c" {
		t.Fatalf("Requests are %+v", config.Requests)
	}
}

func TestApplyFlagsWithoutArgs(t *testing.T) {
	config, err := getConfig(writeConfig(t, testConfig))
	if err != nil {
		t.Fatal(err)
	}
	flags := testFlagSet()
	if err := flags.Parse(nil); err != nil {
		t.Fatal(err)
	}
	config = applyFlags(config, flags, flags.Args())
	if config.Provider != "redis" || len(config.Requests) != 2 {
		t.Fatalf("Config changed: %+v", config)
	}
}

func TestHTTPRequests(t *testing.T) {
	config, err := getConfig(writeConfig(t, testConfig))
	if err != nil {
		t.Fatal(err)
	}
	common := headerFlags{}
	if err := common.Set("Accept-Language: en"); err != nil {
		t.Fatal(err)
	}
	if err := common.Set("X-Test:  yes "); err != nil {
		t.Fatal(err)
	}
	requests, err := config.httpRequests(http.Header(common))
	if err != nil {
		t.Fatalf("Error creating requests: %v", err)
	}
	if len(requests) != 2 {
		t.Fatalf("Got %d requests", len(requests))
	}
	if requests[0].Method != http.MethodGet || requests[1].Method != http.MethodHead {
		t.Fatalf("Methods are %s, %s", requests[0].Method, requests[1].Method)
	}
	// request specific headers win
	if got := requests[0].Header.Get("Accept-Language"); got != "fi" {
		t.Fatalf("Accept-Language is %s", got)
	}
	if got := requests[1].Header.Get("Accept-Language"); got != "en" {
		t.Fatalf("Accept-Language is %s", got)
	}
	if got := requests[1].Header.Get("X-Test"); got != "yes" {
		t.Fatalf("X-Test is %q", got)
	}
}

func TestHeaderFlagsInvalid(t *testing.T) {
	h := headerFlags{}
	for _, value := range []string{"no colon", ": value"} {
		if err := h.Set(value); err == nil {
			t.Fatalf("Expected error for %q", value)
		}
	}
}
