package domain

import (
	"fmt"
	"regexp"
	"time"
)

// timestampPattern matches the CDX capture timestamp format: exactly 14 digits
// (YYYYMMDDhhmmss).
var timestampPattern = regexp.MustCompile(`^\d{14}$`)

// Snapshot is a single archived capture of a watch page, as reported by the
// CDX index. Values are immutable once constructed.
type Snapshot struct {
	Timestamp string `json:"timestamp"`
	Original  string `json:"original"`
	Mimetype  string `json:"mimetype"`
	Status    int    `json:"status"`
	Digest    string `json:"digest"`
	Length    int64  `json:"length"`
}

// NewSnapshot validates and constructs a Snapshot.
func NewSnapshot(timestamp, original, mimetype string, status int, digest string, length int64) (*Snapshot, error) {
	if !ValidTimestamp(timestamp) {
		return nil, fmt.Errorf("invalid snapshot timestamp %q", timestamp)
	}
	if length <= 0 {
		return nil, fmt.Errorf("invalid snapshot length %d", length)
	}
	return &Snapshot{
		Timestamp: timestamp,
		Original:  original,
		Mimetype:  mimetype,
		Status:    status,
		Digest:    digest,
		Length:    length,
	}, nil
}

// ValidTimestamp reports whether ts is a well-formed 14-digit capture
// timestamp that parses as a real UTC instant.
func ValidTimestamp(ts string) bool {
	if !timestampPattern.MatchString(ts) {
		return false
	}
	_, err := time.Parse("20060102150405", ts)
	return err == nil
}

// Time parses the capture timestamp as a UTC instant.
func (s *Snapshot) Time() (time.Time, error) {
	t, err := time.Parse("20060102150405", s.Timestamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse snapshot timestamp %q: %w", s.Timestamp, err)
	}
	return t.UTC(), nil
}

// RawURL returns the archive URL serving the original bytes without the
// Wayback toolbar or rewritten links (the id_ variant). This is the URL the
// page extractor should fetch.
func (s *Snapshot) RawURL() string {
	return fmt.Sprintf("https://web.archive.org/web/%sid_/%s", s.Timestamp, s.Original)
}

// WebURL returns the archive URL as rendered in a browser.
func (s *Snapshot) WebURL() string {
	return fmt.Sprintf("https://web.archive.org/web/%s/%s", s.Timestamp, s.Original)
}
