// Package parser extracts video metadata from archived watch pages. Pages are
// fetched through the shared limiter; a page that was itself a takedown or
// consent interstitial yields nil rather than an error.
package parser

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/davgn/waymeta/internal/core/domain"
	"github.com/davgn/waymeta/internal/metrics"
	"github.com/davgn/waymeta/internal/throttle"
)

// maxPageBytes bounds how much of an archived page is read. Watch pages with
// all their inline JSON stay well under this.
const maxPageBytes = 8 << 20

var likeCountPattern = regexp.MustCompile(`"likeCount"\s*:\s*"?(\d+)"?`)

// WaybackExtractor fetches a snapshot's raw archive URL and mines the watch
// page markup for metadata.
type WaybackExtractor struct {
	httpClient *http.Client
	limiter    *throttle.Limiter
	log        *slog.Logger

	// rawURL is swappable in tests.
	rawURL func(*domain.Snapshot) string
}

// NewWaybackExtractor creates an extractor sharing the outbound limiter.
func NewWaybackExtractor(limiter *throttle.Limiter, timeout time.Duration, log *slog.Logger) *WaybackExtractor {
	return &WaybackExtractor{
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		log:        log,
		rawURL:     (*domain.Snapshot).RawURL,
	}
}

// ExtractMetadata fetches the archived page and extracts whatever metadata it
// still carries. Returns (nil, nil) when the page holds nothing usable.
func (e *WaybackExtractor) ExtractMetadata(ctx context.Context, snapshot *domain.Snapshot) (*domain.RecoveredData, error) {
	body, err := e.fetch(ctx, e.rawURL(snapshot))
	if err != nil {
		metrics.PageFetchesTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	data := parsePage(body, snapshot.Timestamp)
	if !data.HasMetadata() {
		metrics.PageFetchesTotal.WithLabelValues("empty").Inc()
		e.log.Debug("Archived page held no usable metadata", "timestamp", snapshot.Timestamp)
		return nil, nil
	}

	metrics.PageFetchesTotal.WithLabelValues("ok").Inc()
	return data, nil
}

func (e *WaybackExtractor) fetch(ctx context.Context, pageURL string) ([]byte, error) {
	e.limiter.Acquire()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("page fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page fetch: http %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read page: %w", err)
	}
	return body, nil
}

// parsePage mines the markup: Open Graph and schema.org meta tags first, with
// a regex fallback into the inline player JSON for the like count, which never
// appeared as a meta tag.
func parsePage(body []byte, timestamp string) *domain.RecoveredData {
	data := &domain.RecoveredData{Timestamp: timestamp}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return data
	}

	data.Title = metaContent(doc, `meta[property="og:title"]`)
	if data.Title == "" {
		title := strings.TrimSpace(doc.Find("title").First().Text())
		data.Title = strings.TrimSuffix(title, " - YouTube")
	}
	// The bare site name means the capture was an interstitial, not the video.
	if data.Title == "YouTube" {
		data.Title = ""
	}

	data.Description = metaContent(doc, `meta[property="og:description"]`)
	if data.Description == "" {
		data.Description = metaContent(doc, `meta[name="description"]`)
	}

	if id := metaContent(doc, `meta[itemprop="channelId"]`); domain.ValidChannelID(id) {
		data.ChannelID = id
	}
	data.ChannelName = doc.Find(`span[itemprop="author"] link[itemprop="name"]`).First().AttrOr("content", "")

	if v := metaContent(doc, `meta[itemprop="interactionCount"]`); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
			data.ViewCount = &n
		}
	}

	if m := likeCountPattern.FindSubmatch(body); m != nil {
		if n, err := strconv.ParseInt(string(m[1]), 10, 64); err == nil && n >= 0 {
			data.LikeCount = &n
		}
	}

	for _, sel := range []string{`meta[itemprop="datePublished"]`, `meta[itemprop="uploadDate"]`} {
		if v := metaContent(doc, sel); v != "" {
			if t, err := time.Parse("2006-01-02", v); err == nil {
				t = t.UTC()
				data.UploadDate = &t
				break
			}
		}
	}

	data.ThumbnailURL = metaContent(doc, `meta[property="og:image"]`)
	if data.ThumbnailURL == "" {
		data.ThumbnailURL = doc.Find(`link[itemprop="thumbnailUrl"]`).First().AttrOr("href", "")
	}

	if keywords := metaContent(doc, `meta[name="keywords"]`); keywords != "" {
		for _, tag := range strings.Split(keywords, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				data.Tags = append(data.Tags, tag)
			}
		}
	}

	data.CategoryID = metaContent(doc, `meta[itemprop="genre"]`)

	return data
}

func metaContent(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().AttrOr("content", ""))
}
