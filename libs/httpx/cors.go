package httpx

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// CORSPolicy configures cross-origin access for the listing web front end.
// An AllowedOrigins entry may be "*", an exact origin, or "https://*.example.com"
// to admit any subdomain over that scheme.
type CORSPolicy struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	MaxAge           time.Duration
}

type originRule struct {
	any    bool
	scheme string
	host   string
	suffix bool
}

// WithCORS answers preflights and decorates responses for allowed origins.
// An empty AllowedOrigins list disables it.
func WithCORS(cfg CORSPolicy) Middleware {
	rules := parseOriginRules(cfg.AllowedOrigins)
	if len(rules) == 0 {
		return nil
	}

	methods := strings.Join(trimAll(cfg.AllowedMethods), ", ")
	headers := strings.Join(trimAll(cfg.AllowedHeaders), ", ")
	maxAge := ""
	if secs := int(cfg.MaxAge.Seconds()); secs > 0 {
		maxAge = strconv.Itoa(secs)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Add("Vary", "Origin")

			origin := r.Header.Get("Origin")
			allowOrigin, ok := allowedOrigin(origin, rules, cfg.AllowCredentials)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			h.Set("Access-Control-Allow-Origin", allowOrigin)
			if cfg.AllowCredentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}

			preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
			if !preflight {
				next.ServeHTTP(w, r)
				return
			}

			h.Add("Vary", "Access-Control-Request-Method")
			h.Add("Vary", "Access-Control-Request-Headers")
			if methods != "" {
				h.Set("Access-Control-Allow-Methods", methods)
			}
			if headers != "" {
				h.Set("Access-Control-Allow-Headers", headers)
			}
			if maxAge != "" {
				h.Set("Access-Control-Max-Age", maxAge)
			}
			w.WriteHeader(http.StatusNoContent)
		})
	}
}

func parseOriginRules(origins []string) []originRule {
	var rules []originRule
	for _, o := range trimAll(origins) {
		if o == "*" {
			rules = append(rules, originRule{any: true})
			continue
		}
		scheme, host, found := strings.Cut(strings.ToLower(o), "://")
		if !found || host == "" {
			continue
		}
		rule := originRule{scheme: scheme, host: host}
		if rest, ok := strings.CutPrefix(host, "*."); ok {
			rule.host = "." + rest
			rule.suffix = true
		}
		rules = append(rules, rule)
	}
	return rules
}

// allowedOrigin returns the value for Access-Control-Allow-Origin. With credentials a
// wildcard must be answered with the concrete origin.
func allowedOrigin(origin string, rules []originRule, allowCredentials bool) (string, bool) {
	if origin == "" {
		return "", false
	}
	u, err := url.Parse(strings.ToLower(origin))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}
	for _, rule := range rules {
		switch {
		case rule.any:
			if allowCredentials {
				return origin, true
			}
			return "*", true
		case rule.scheme != u.Scheme:
			continue
		case rule.suffix && strings.HasSuffix(u.Host, rule.host):
			return origin, true
		case !rule.suffix && rule.host == u.Host:
			return origin, true
		}
	}
	return "", false
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
