package recovery

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/davgn/waymeta/internal/core/domain"
	"github.com/davgn/waymeta/internal/infra/storage"
)

// ServiceConfig holds the calling-layer policy around the orchestrator.
type ServiceConfig struct {
	// IdempotencyWindow short-circuits re-recovery of a record recovered
	// this recently, avoiding redundant archive traffic.
	IdempotencyWindow time.Duration `yaml:"idempotency_window"`

	// BatchDelay is the pause between items in a batch run.
	BatchDelay time.Duration `yaml:"batch_delay"`
}

// DefaultServiceConfig matches the reference policy: 5 minute window.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		IdempotencyWindow: 5 * time.Minute,
		BatchDelay:        2 * time.Second,
	}
}

// Service is the caller-side wrapper: idempotency window, audit trail, and
// sequential batch processing. The orchestrator itself stays a single-video
// state machine.
type Service struct {
	cfg      ServiceConfig
	orch     *Orchestrator
	videos   storage.VideoRepository
	attempts storage.AttemptRepository
	log      *slog.Logger
}

// NewService wires the recovery service.
func NewService(cfg ServiceConfig, orch *Orchestrator, videos storage.VideoRepository, attempts storage.AttemptRepository, log *slog.Logger) *Service {
	if cfg.IdempotencyWindow <= 0 {
		cfg.IdempotencyWindow = DefaultServiceConfig().IdempotencyWindow
	}
	return &Service{
		cfg:      cfg,
		orch:     orch,
		videos:   videos,
		attempts: attempts,
		log:      log,
	}
}

// Recover runs one recovery, short-circuiting to a no-op success when the
// record was already recovered within the idempotency window.
func (s *Service) Recover(ctx context.Context, videoID string, opts Options) *domain.RecoveryResult {
	if video, err := s.videos.GetByID(ctx, videoID); err == nil && video != nil &&
		video.RecoveredAt != nil && time.Since(*video.RecoveredAt) < s.cfg.IdempotencyWindow {
		s.log.Info("Recovery satisfied by idempotency window",
			"video_id", videoID, "recovered_at", *video.RecoveredAt)
		return &domain.RecoveryResult{VideoID: videoID, Success: true}
	}

	result := s.orch.Recover(ctx, videoID, opts)
	s.recordAttempt(ctx, result, opts)
	return result
}

// RecoverBatch processes videos sequentially with the configured delay
// between items. A cancelled context stops between invocations; in-flight
// work is never interrupted mid-video.
func (s *Service) RecoverBatch(ctx context.Context, videoIDs []string, opts Options) []*domain.RecoveryResult {
	results := make([]*domain.RecoveryResult, 0, len(videoIDs))

	for i, id := range videoIDs {
		if i > 0 && s.cfg.BatchDelay > 0 {
			select {
			case <-ctx.Done():
				return results
			case <-time.After(s.cfg.BatchDelay):
			}
		}
		if ctx.Err() != nil {
			return results
		}

		result := s.Recover(ctx, id, opts)
		results = append(results, result)

		// Chained candidates are logged for the operator; recovering them
		// is a separate invocation by choice, not recursion.
		for _, candidate := range result.ChannelCandidates {
			s.log.Info("Channel recovery candidate discovered",
				"video_id", id, "channel_id", candidate)
		}
	}

	return results
}

func (s *Service) recordAttempt(ctx context.Context, result *domain.RecoveryResult, opts Options) {
	attempt := &storage.Attempt{
		ID:            uuid.New().String(),
		VideoID:       result.VideoID,
		Success:       result.Success,
		FailureReason: string(result.FailureReason),
		DryRun:        opts.Mode == ModeDryRun,
		Duration:      result.Duration,
		CreatedAt:     time.Now().UTC(),
	}
	if result.SnapshotUsed != nil {
		attempt.SnapshotUsed = result.SnapshotUsed.Timestamp
	}

	if err := s.attempts.Record(ctx, attempt); err != nil {
		s.log.Warn("Failed to record recovery attempt", "video_id", result.VideoID, "error", err)
	}
}
