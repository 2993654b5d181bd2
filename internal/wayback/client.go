package wayback

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/davgn/waymeta/internal/cache"
	"github.com/davgn/waymeta/internal/core/domain"
	"github.com/davgn/waymeta/internal/metrics"
	"github.com/davgn/waymeta/internal/throttle"
)

// Client queries the CDX index for archived watch-page captures. All network
// calls go through the shared limiter; results are cached per
// (video, year-filter) key.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *throttle.Limiter
	store      cache.Store
	log        *slog.Logger
}

// NewClient creates a CDX client sharing the given limiter and cache store.
func NewClient(cfg Config, limiter *throttle.Limiter, store cache.Store, log *slog.Logger) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: limiter,
		store:   store,
		log:     log,
	}
}

// FetchSnapshots returns the ordered snapshot candidates for a video. Year
// filters are optional (0 = unbounded). Without an anchor the list is newest
// first; with a fromYear anchor it is reversed so iteration starts at the
// oldest surviving capture on/after that year.
func (c *Client) FetchSnapshots(ctx context.Context, videoID string, fromYear, toYear int) ([]*domain.Snapshot, error) {
	key := cache.Key(videoID, fromYear, toYear)

	if entry, err := c.store.Get(ctx, key); err == nil && entry != nil && entry.Valid(c.cfg.CacheTTL) {
		metrics.CDXCacheTotal.WithLabelValues("hit").Inc()
		c.log.Debug("CDX cache hit", "video_id", videoID, "snapshots", len(entry.Snapshots))
		return c.orient(entry.Snapshots, fromYear), nil
	} else if err != nil {
		c.log.Warn("CDX cache read failed, querying index", "video_id", videoID, "error", err)
	}
	metrics.CDXCacheTotal.WithLabelValues("miss").Inc()

	rows, err := c.query(ctx, videoID, fromYear, toYear)
	if err != nil {
		return nil, err
	}

	snapshots, rawCount := FilterRows(rows, c.cfg.MinContentLength)
	c.log.Info("CDX query complete",
		"video_id", videoID,
		"raw_rows", rawCount,
		"usable_snapshots", len(snapshots),
	)

	if err := c.store.Put(ctx, key, cache.NewEntry(videoID, snapshots, rawCount)); err != nil {
		// A cache write failure costs a future query, nothing more.
		c.log.Warn("Failed to cache CDX result", "video_id", videoID, "error", err)
	}

	return c.orient(snapshots, fromYear), nil
}

// orient returns the iteration order for the caller: descending by default,
// ascending (oldest first) when anchored by fromYear.
func (c *Client) orient(snapshots []*domain.Snapshot, fromYear int) []*domain.Snapshot {
	if fromYear == 0 {
		return snapshots
	}
	reversed := make([]*domain.Snapshot, len(snapshots))
	for i, s := range snapshots {
		reversed[len(snapshots)-1-i] = s
	}
	return reversed
}

// query performs the CDX GET with the retry policy: connection errors and 503
// retry with exponential backoff (base doubling per attempt), 429 waits a
// fixed interval, any other non-200 fails immediately.
func (c *Client) query(ctx context.Context, videoID string, fromYear, toYear int) ([][]string, error) {
	reqURL := c.buildURL(videoID, fromYear, toYear)

	var lastStatus int
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			var wait time.Duration
			if lastStatus == http.StatusTooManyRequests {
				wait = c.cfg.RateLimitWait
			} else {
				wait = c.cfg.BackoffBase << (attempt - 1)
			}
			c.log.Warn("Retrying CDX query",
				"video_id", videoID,
				"attempt", attempt,
				"wait", wait,
				"last_status", lastStatus,
			)
			if err := sleepCtx(ctx, wait); err != nil {
				return nil, err
			}
		}

		rows, status, err := c.doRequest(ctx, reqURL)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.log.Warn("CDX request failed", "video_id", videoID, "error", err)
			lastStatus = 0
			continue
		}

		switch {
		case status == http.StatusOK:
			return rows, nil
		case status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable:
			lastStatus = status
			continue
		default:
			// Non-retryable status.
			return nil, &CDXError{VideoID: videoID, StatusCode: status}
		}
	}

	return nil, &CDXError{VideoID: videoID, StatusCode: lastStatus}
}

// doRequest performs one rate-limited CDX request and decodes the JSON rows.
func (c *Client) doRequest(ctx context.Context, reqURL string) ([][]string, int, error) {
	c.limiter.Acquire()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.CDXRequestsTotal.WithLabelValues("error").Inc()
		return nil, 0, fmt.Errorf("cdx request: %w", err)
	}
	defer resp.Body.Close()

	metrics.CDXRequestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, resp.StatusCode, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read cdx response: %w", err)
	}

	var rows [][]string
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, 0, fmt.Errorf("failed to decode cdx response: %w", err)
	}

	return rows, http.StatusOK, nil
}

// buildURL assembles the CDX query. The limit is signed: positive (oldest
// first) when anchored by fromYear so the captures closest after the anchor
// arrive first, negative (newest first) otherwise.
func (c *Client) buildURL(videoID string, fromYear, toYear int) string {
	q := url.Values{}
	q.Set("url", fmt.Sprintf("youtube.com/watch?v=%s", videoID))
	q.Set("output", "json")
	q.Add("filter", "statuscode:200")
	q.Add("filter", "mimetype:text/html")
	q.Set("fl", "timestamp,original,mimetype,statuscode,digest,length")

	limit := c.cfg.ResultLimit
	if fromYear == 0 {
		limit = -limit
	}
	q.Set("limit", strconv.Itoa(limit))

	if fromYear > 0 {
		q.Set("from", strconv.Itoa(fromYear))
	}
	if toYear > 0 {
		q.Set("to", strconv.Itoa(toYear))
	}

	return c.cfg.Endpoint + "?" + q.Encode()
}

// sleepCtx sleeps unless the context expires first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

const userAgent = "waymeta/1.0 (metadata recovery; +https://github.com/davgn/waymeta)"
