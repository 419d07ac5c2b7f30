package ratelimit

import "time"

// EndpointConfig limits the requests one client may send to the routes
// matching Pattern.
type EndpointConfig struct {
	Pattern string        // path.Match pattern, e.g. /companies/*/page.pdf
	Method  string        // HTTP method; empty matches any
	Limit   int           // Maximum requests per window
	Window  time.Duration // Time window
	Burst   int           // Burst capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration. Requests to routes without an
// endpoint configuration are never limited.
type Config struct {
	Enabled         bool
	CleanupInterval time.Duration
	// IdleTTL is how long an unused bucket is kept.
	IdleTTL   time.Duration
	Endpoints []EndpointConfig
	// Exempt lists client ids that are never limited.
	Exempt map[string]bool
}

// PDFRoutes are the routes that run the LaTeX compiler.
var PDFRoutes = []string{"/companies/*/page.pdf", "/guide.pdf"}

// CompileConfig limits every compile route to perMinute requests per client,
// with a small burst. A non-positive perMinute disables limiting.
func CompileConfig(perMinute int) *Config {
	if perMinute <= 0 {
		return &Config{Enabled: false}
	}

	burst := perMinute / 5
	if burst < 1 {
		burst = 1
	}

	endpoints := make([]EndpointConfig, 0, len(PDFRoutes))
	for _, pattern := range PDFRoutes {
		endpoints = append(endpoints, EndpointConfig{
			Pattern: pattern,
			Method:  "GET",
			Limit:   perMinute,
			Window:  time.Minute,
			Burst:   burst,
		})
	}

	return &Config{
		Enabled:         true,
		CleanupInterval: 5 * time.Minute,
		IdleTTL:         time.Hour,
		Endpoints:       endpoints,
	}
}
