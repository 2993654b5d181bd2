package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/davgn/waymeta/internal/core/domain"
)

// ChannelRepo implements storage.ChannelRepository using PostgreSQL.
type ChannelRepo struct {
	db *DB
}

// NewChannelRepo creates a new PostgreSQL channel repository.
func NewChannelRepo(db *DB) *ChannelRepo {
	return &ChannelRepo{db: db}
}

// GetByID retrieves a channel by id, nil when absent.
func (r *ChannelRepo) GetByID(ctx context.Context, id string) (*domain.Channel, error) {
	var channel domain.Channel
	err := r.db.GetContext(ctx, &channel, `
		SELECT id, name, status, created_at, updated_at
		FROM channels WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get channel: %w", err)
	}
	return &channel, nil
}

// Exists reports whether a channel row is present.
func (r *ChannelRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM channels WHERE id = $1)`, id)
	if err != nil {
		return false, fmt.Errorf("failed to check channel existence: %w", err)
	}
	return exists, nil
}

// Create inserts a channel row. Conflicting ids are left untouched so a
// concurrent recovery creating the same stub is harmless.
func (r *ChannelRepo) Create(ctx context.Context, channel *domain.Channel) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO channels (id, name, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING`,
		channel.ID, channel.Name, channel.Status)
	if err != nil {
		return fmt.Errorf("failed to create channel: %w", err)
	}
	return nil
}
