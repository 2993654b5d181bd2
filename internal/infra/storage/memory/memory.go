package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/davgn/waymeta/internal/core/domain"
	"github.com/davgn/waymeta/internal/infra/storage"
)

// MemoryStorage keeps all records in process. It backs tests and the
// databaseless demo mode; the mutex makes concurrent recovery flows safe.
type MemoryStorage struct {
	mu       sync.RWMutex
	videos   map[string]*domain.Video
	channels map[string]*domain.Channel
	tags     map[string][]string
	attempts []*storage.Attempt
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		videos:   make(map[string]*domain.Video),
		channels: make(map[string]*domain.Channel),
		tags:     make(map[string][]string),
	}
}

// -----------------------------------------------------------------------------
// Video Repository
// -----------------------------------------------------------------------------

type VideoRepo struct {
	store *MemoryStorage
}

func NewVideoRepo(store *MemoryStorage) *VideoRepo {
	return &VideoRepo{store: store}
}

// Seed inserts a video directly, for tests and demo setup.
func (r *VideoRepo) Seed(video *domain.Video) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.videos[video.ID] = video
}

func (r *VideoRepo) GetByID(ctx context.Context, id string) (*domain.Video, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	v, ok := r.store.videos[id]
	if !ok {
		return nil, nil
	}
	clone := *v
	return &clone, nil
}

func (r *VideoRepo) UpdateFields(ctx context.Context, id string, fields map[string]any, recoveredAt time.Time, source string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	v, ok := r.store.videos[id]
	if !ok {
		return storage.ErrVideoNotFound
	}

	for field, value := range fields {
		applyField(v, field, value)
	}
	v.RecoveredAt = &recoveredAt
	v.RecoverySource = source
	v.UpdatedAt = time.Now()
	return nil
}

// applyField copies one update into the record. Unknown fields and
// mismatched value types are ignored rather than panicking the caller.
func applyField(v *domain.Video, field string, value any) {
	switch field {
	case domain.FieldTitle:
		if s, ok := value.(string); ok {
			v.Title = s
		}
	case domain.FieldDescription:
		if s, ok := value.(string); ok {
			v.Description = s
		}
	case domain.FieldChannelID:
		if s, ok := value.(string); ok {
			v.ChannelID = s
		}
	case domain.FieldChannelName:
		if s, ok := value.(string); ok {
			v.ChannelName = s
		}
	case domain.FieldViewCount:
		if n, ok := value.(*int64); ok {
			v.ViewCount = n
		}
	case domain.FieldLikeCount:
		if n, ok := value.(*int64); ok {
			v.LikeCount = n
		}
	case domain.FieldUploadDate:
		if ts, ok := value.(*time.Time); ok {
			v.UploadDate = ts
		}
	case domain.FieldThumbnailURL:
		if s, ok := value.(string); ok {
			v.ThumbnailURL = s
		}
	case domain.FieldCategoryID:
		if s, ok := value.(string); ok {
			v.CategoryID = s
		}
	}
}

// -----------------------------------------------------------------------------
// Channel Repository
// -----------------------------------------------------------------------------

type ChannelRepo struct {
	store *MemoryStorage

	// FailCreate makes Create fail, for degraded-path tests.
	FailCreate bool
}

func NewChannelRepo(store *MemoryStorage) *ChannelRepo {
	return &ChannelRepo{store: store}
}

func (r *ChannelRepo) Seed(channel *domain.Channel) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.channels[channel.ID] = channel
}

func (r *ChannelRepo) GetByID(ctx context.Context, id string) (*domain.Channel, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	c, ok := r.store.channels[id]
	if !ok {
		return nil, nil
	}
	clone := *c
	return &clone, nil
}

func (r *ChannelRepo) Exists(ctx context.Context, id string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	_, ok := r.store.channels[id]
	return ok, nil
}

// errInjected backs the Fail* switches repositories expose to tests.
var errInjected = errors.New("injected repository failure")

func (r *ChannelRepo) Create(ctx context.Context, channel *domain.Channel) error {
	if r.FailCreate {
		return errInjected
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	now := time.Now()
	channel.CreatedAt = now
	channel.UpdatedAt = now
	r.store.channels[channel.ID] = channel
	return nil
}

// -----------------------------------------------------------------------------
// Tag Repository
// -----------------------------------------------------------------------------

type TagRepo struct {
	store *MemoryStorage

	// FailAdd makes AddTags fail, for degraded-path tests.
	FailAdd bool
}

func NewTagRepo(store *MemoryStorage) *TagRepo {
	return &TagRepo{store: store}
}

func (r *TagRepo) AddTags(ctx context.Context, videoID string, tags []string) error {
	if r.FailAdd {
		return errInjected
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing := make(map[string]bool, len(r.store.tags[videoID]))
	for _, t := range r.store.tags[videoID] {
		existing[t] = true
	}
	for _, t := range tags {
		if !existing[t] {
			r.store.tags[videoID] = append(r.store.tags[videoID], t)
		}
	}
	return nil
}

// Tags returns the stored tags for a video, for assertions.
func (r *TagRepo) Tags(videoID string) []string {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return append([]string(nil), r.store.tags[videoID]...)
}

// -----------------------------------------------------------------------------
// Attempt Repository
// -----------------------------------------------------------------------------

type AttemptRepo struct {
	store *MemoryStorage
}

func NewAttemptRepo(store *MemoryStorage) *AttemptRepo {
	return &AttemptRepo{store: store}
}

func (r *AttemptRepo) Record(ctx context.Context, attempt *storage.Attempt) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.attempts = append(r.store.attempts, attempt)
	return nil
}

// Attempts returns recorded attempts, for assertions.
func (r *AttemptRepo) Attempts() []*storage.Attempt {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return append([]*storage.Attempt(nil), r.store.attempts...)
}
