package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/davgn/waymeta/internal/infra/storage"
)

// TagRepo implements storage.TagRepository using PostgreSQL.
type TagRepo struct {
	db *DB
}

// NewTagRepo creates a new PostgreSQL tag repository.
func NewTagRepo(db *DB) *TagRepo {
	return &TagRepo{db: db}
}

// AddTags attaches tags to a video. Duplicates are ignored so re-recovery is
// idempotent.
func (r *TagRepo) AddTags(ctx context.Context, videoID string, tags []string) error {
	if len(tags) == 0 {
		return nil
	}

	for _, tag := range tags {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO video_tags (id, video_id, name)
			VALUES ($1, $2, $3)
			ON CONFLICT (video_id, name) DO NOTHING`,
			uuid.New().String(), videoID, tag)
		if err != nil {
			return fmt.Errorf("failed to add tag %q: %w", tag, err)
		}
	}
	return nil
}

// AttemptRepo implements storage.AttemptRepository using PostgreSQL.
type AttemptRepo struct {
	db *DB
}

// NewAttemptRepo creates a new PostgreSQL attempt repository.
func NewAttemptRepo(db *DB) *AttemptRepo {
	return &AttemptRepo{db: db}
}

// Record inserts one audit row.
func (r *AttemptRepo) Record(ctx context.Context, attempt *storage.Attempt) error {
	if attempt.ID == "" {
		attempt.ID = uuid.New().String()
	}
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO recovery_attempts
			(id, video_id, success, failure_reason, snapshot_used, dry_run, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		attempt.ID, attempt.VideoID, attempt.Success, attempt.FailureReason,
		attempt.SnapshotUsed, attempt.DryRun, attempt.Duration.Milliseconds(), attempt.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record recovery attempt: %w", err)
	}
	return nil
}
