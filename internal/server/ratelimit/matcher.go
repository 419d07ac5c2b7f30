package ratelimit

import "path"

// MatchEndpoint returns the first configuration whose pattern and method
// match the request, or nil when the route is not limited.
func MatchEndpoint(urlPath string, method string, configs []EndpointConfig) *EndpointConfig {
	for i := range configs {
		config := &configs[i]
		if config.Method != "" && config.Method != method {
			continue
		}
		if ok, err := path.Match(config.Pattern, urlPath); err == nil && ok {
			return config
		}
	}
	return nil
}
