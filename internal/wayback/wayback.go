// Package wayback drives the Wayback Machine CDX capture index: querying
// snapshot candidates for a watch page, filtering out unusable captures, and
// caching the result so repeat recoveries stay off the network.
package wayback

import (
	"fmt"
	"time"
)

// Config holds the CDX client knobs. The retry and threshold defaults are
// policy, not protocol; they are configurable but the defaults are load
// bearing for behavioral parity across deployments.
type Config struct {
	// Endpoint is the CDX search API base URL.
	Endpoint string `yaml:"endpoint"`

	// RateLimit is the shared outbound request budget in requests/second.
	RateLimit float64 `yaml:"rate_limit"`

	// ResultLimit caps how many rows one CDX query requests.
	ResultLimit int `yaml:"result_limit"`

	// MinContentLength is the smallest capture byte length considered a real
	// watch page. Archived error and removal pages fall below it.
	MinContentLength int64 `yaml:"min_content_length"`

	// MaxRetries bounds retries after the initial attempt for transient
	// failures (connection errors, timeouts, 429, 503).
	MaxRetries int `yaml:"max_retries"`

	// BackoffBase seeds the exponential backoff for connection errors and
	// 503 responses; it doubles per retry.
	BackoffBase time.Duration `yaml:"backoff_base"`

	// RateLimitWait is the fixed pause before each retry of a 429 response.
	RateLimitWait time.Duration `yaml:"rate_limit_wait"`

	// CacheTTL is how long cached CDX results stay fresh.
	CacheTTL time.Duration `yaml:"cache_ttl"`

	// RequestTimeout bounds a single CDX HTTP request.
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// DefaultConfig returns the reference policy: 100 rows, 1KB content floor,
// 3 retries with 2s-doubling backoff, 60s fixed wait on 429, 24h cache.
func DefaultConfig() Config {
	return Config{
		Endpoint:         "https://web.archive.org/cdx/search/cdx",
		RateLimit:        1,
		ResultLimit:      100,
		MinContentLength: 1024,
		MaxRetries:       3,
		BackoffBase:      2 * time.Second,
		RateLimitWait:    60 * time.Second,
		CacheTTL:         24 * time.Hour,
		RequestTimeout:   30 * time.Second,
	}
}

// CDXError is the single typed error the client surfaces once retries are
// exhausted or a non-retryable status arrives. StatusCode 0 means the request
// never got an HTTP response (connection failure or timeout).
type CDXError struct {
	VideoID    string
	StatusCode int
}

func (e *CDXError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("cdx query for video %s failed: connection error", e.VideoID)
	}
	return fmt.Sprintf("cdx query for video %s failed: http %d", e.VideoID, e.StatusCode)
}
