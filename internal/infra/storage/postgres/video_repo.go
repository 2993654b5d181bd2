package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/davgn/waymeta/internal/core/domain"
	"github.com/davgn/waymeta/internal/infra/storage"
)

// videoColumns are the columns the merge policy is allowed to assign.
var videoColumns = map[string]bool{
	domain.FieldTitle:        true,
	domain.FieldDescription:  true,
	domain.FieldChannelID:    true,
	domain.FieldChannelName:  true,
	domain.FieldViewCount:    true,
	domain.FieldLikeCount:    true,
	domain.FieldUploadDate:   true,
	domain.FieldThumbnailURL: true,
	domain.FieldCategoryID:   true,
}

// VideoRepo implements storage.VideoRepository using PostgreSQL.
type VideoRepo struct {
	db *DB
}

// NewVideoRepo creates a new PostgreSQL video repository.
func NewVideoRepo(db *DB) *VideoRepo {
	return &VideoRepo{db: db}
}

// GetByID retrieves a video by id, nil when absent.
func (r *VideoRepo) GetByID(ctx context.Context, id string) (*domain.Video, error) {
	var video domain.Video
	err := r.db.GetContext(ctx, &video, `
		SELECT id, title, description,
		       COALESCE(channel_id, '') AS channel_id,
		       channel_name, view_count, like_count, upload_date,
		       thumbnail_url, category_id, status,
		       recovery_source, recovered_at, created_at, updated_at
		FROM videos WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	return &video, nil
}

// UpdateFields applies the merge policy's column assignments plus the
// recovery stamp in a single UPDATE.
func (r *VideoRepo) UpdateFields(ctx context.Context, id string, fields map[string]any, recoveredAt time.Time, source string) error {
	// Deterministic column order keeps the statement stable for logs.
	names := make([]string, 0, len(fields))
	for name := range fields {
		if !videoColumns[name] {
			return fmt.Errorf("unknown video column %q", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var set strings.Builder
	args := make([]any, 0, len(fields)+3)
	for _, name := range names {
		args = append(args, fields[name])
		fmt.Fprintf(&set, "%s = $%d, ", name, len(args))
	}

	args = append(args, recoveredAt)
	fmt.Fprintf(&set, "recovered_at = $%d, ", len(args))
	args = append(args, source)
	fmt.Fprintf(&set, "recovery_source = $%d, updated_at = now()", len(args))

	args = append(args, id)
	query := fmt.Sprintf("UPDATE videos SET %s WHERE id = $%d", set.String(), len(args))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update video: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrVideoNotFound
	}
	return nil
}
