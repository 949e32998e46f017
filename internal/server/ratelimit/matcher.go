package ratelimit

import (
	"strings"
)

// unlimited is returned for the health check.
var unlimited = EndpointConfig{Path: "/health", Method: "GET"}

// MatchEndpoint matches a request path and method to an endpoint configuration.
// Returns the matching EndpointConfig or nil if no match is found. Exact
// patterns are tried before patterns containing "*" segments, so
// "/documents" never shadows "/documents/*/transformations".
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	path = "/" + strings.Trim(path, "/")
	if path == "/health" && method == "GET" {
		return &unlimited
	}

	for i := range configs {
		config := &configs[i]
		if config.Method == method && config.Path == path {
			return config
		}
	}

	segments := strings.Split(path, "/")
	for i := range configs {
		config := &configs[i]
		if config.Method == method && strings.Contains(config.Path, "*") && matchSegments(config.Path, segments) {
			return config
		}
	}

	return nil
}

func matchSegments(pattern string, segments []string) bool {
	parts := strings.Split(pattern, "/")
	if len(parts) != len(segments) {
		return false
	}
	for i, part := range parts {
		if part == "*" {
			if segments[i] == "" {
				return false
			}
			continue
		}
		if part != segments[i] {
			return false
		}
	}
	return true
}
