// Package responsetransformer adjusts caching headers of network responses
// before they are stored, for origins that do not send useful Cache-Control.
package responsetransformer

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

type Rules []Rule

type Rule struct {
	// Host the rule applies to. Empty matches any host.
	Host string `yaml:"host"`
	// Path prefix the rule applies to.
	Prefix string `yaml:"prefix"`
	// Exact path the rule applies to.
	Path string `yaml:"path"`
	// Cache-Control to use when the response has none.
	Default string `yaml:"default"`
	// Cache-Control to use regardless of the response.
	Override string `yaml:"override"`
	// Query parameters that must be present. An empty value matches any value.
	Query map[string]string `yaml:"query"`
	// Extra header fields to set on the response.
	Headers map[string]string `yaml:"headers"`
}

// Apply applies the first matching rule to the response.
// Only successful responses to GET requests are transformed.
func (r Rules) Apply(res *http.Response) error {
	// only apply rules for successes
	if res.StatusCode != http.StatusOK || res.Request == nil {
		return nil
	}
	if res.Request.Method != http.MethodGet {
		return nil
	}
	// if rule found, apply to response
	if rule := r.find(res.Request); rule != nil {
		applyRuleToResponse(*rule, res)
	}
	return nil
}

func applyRuleToResponse(rule Rule, res *http.Response) {
	if rule.Override != "" {
		log.Trace().Msg("Overriding Cache-Control header")
		res.Header.Set("Cache-Control", rule.Override)
	} else if rule.Default != "" && res.Header.Get("Cache-Control") == "" {
		log.Trace().Msg("Applying default Cache-Control header")
		res.Header.Set("Cache-Control", rule.Default)
	}
	for name, value := range rule.Headers {
		log.Trace().Msgf("Setting header %s", name)
		res.Header.Set(name, value)
	}
}

func (r Rules) find(req *http.Request) *Rule {
	log.Trace().Msgf("Finding rule for request %s%s", req.URL.Host, req.URL.Path)
rulesLoop:
	for i := range r {
		rule := &r[i]
		if rule.Host != "" && !strings.EqualFold(rule.Host, req.URL.Host) {
			continue
		}
		if rule.Path != "" && rule.Path != req.URL.Path {
			continue
		}
		if rule.Prefix != "" && !strings.HasPrefix(req.URL.Path, rule.Prefix) {
			continue
		}
		if len(rule.Query) > 0 {
			qry := req.URL.Query()
			for name, value := range rule.Query {
				if value == "" && !qry.Has(name) {
					continue rulesLoop
				} else if value != "" && qry.Get(name) != value {
					continue rulesLoop
				}
			}
		}
		return rule
	}
	return nil
}
