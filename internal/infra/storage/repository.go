package storage

import (
	"context"
	"errors"
	"time"

	"github.com/davgn/waymeta/internal/core/domain"
)

// ErrVideoNotFound is returned when a video doesn't exist.
var ErrVideoNotFound = errors.New("video not found")

// VideoRepository handles video record storage. Recovery depends on nothing
// beyond these operations.
type VideoRepository interface {
	// GetByID retrieves a video, nil when absent.
	GetByID(ctx context.Context, id string) (*domain.Video, error)

	// UpdateFields applies a set of column assignments to one video.
	// recoveredAt and source stamp the recovery provenance.
	UpdateFields(ctx context.Context, id string, fields map[string]any, recoveredAt time.Time, source string) error
}

// ChannelRepository handles channel record storage.
type ChannelRepository interface {
	// GetByID retrieves a channel, nil when absent.
	GetByID(ctx context.Context, id string) (*domain.Channel, error)

	// Exists reports whether a channel row is present.
	Exists(ctx context.Context, id string) (bool, error)

	// Create inserts a channel row.
	Create(ctx context.Context, channel *domain.Channel) error
}

// TagRepository handles video tag storage.
type TagRepository interface {
	// AddTags attaches tags to a video, ignoring duplicates.
	AddTags(ctx context.Context, videoID string, tags []string) error
}

// Attempt is one audit row describing a recovery invocation.
type Attempt struct {
	ID            string        `db:"id"`
	VideoID       string        `db:"video_id"`
	Success       bool          `db:"success"`
	FailureReason string        `db:"failure_reason"`
	SnapshotUsed  string        `db:"snapshot_used"`
	DryRun        bool          `db:"dry_run"`
	Duration      time.Duration `db:"duration"`
	CreatedAt     time.Time     `db:"created_at"`
}

// AttemptRepository records the recovery audit trail. Writes are best-effort;
// callers log failures and move on.
type AttemptRepository interface {
	Record(ctx context.Context, attempt *Attempt) error
}
