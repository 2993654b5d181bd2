// Package recovery ties the CDX client, page extractor, and persistence
// contracts into the per-video recovery state machine and its merge policy.
package recovery

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/davgn/waymeta/internal/core/domain"
	"github.com/davgn/waymeta/internal/infra/storage"
	"github.com/davgn/waymeta/internal/metrics"
	"github.com/davgn/waymeta/internal/wayback"
)

// SnapshotFetcher is the CDX client surface the orchestrator consumes.
type SnapshotFetcher interface {
	FetchSnapshots(ctx context.Context, videoID string, fromYear, toYear int) ([]*domain.Snapshot, error)
}

// Extractor is the archived-page parser contract. A nil result with nil error
// means the page held no usable data; errors and timeouts advance iteration
// to the next snapshot, never failing the recovery.
type Extractor interface {
	ExtractMetadata(ctx context.Context, snapshot *domain.Snapshot) (*domain.RecoveredData, error)
}

// Mode selects how far the state machine goes: fetch-only previews the first
// candidate without touching the page or the store, fetch-and-apply runs the
// full flow.
type Mode int

const (
	ModeApply Mode = iota
	ModeDryRun
)

// Options are the per-invocation parameters.
type Options struct {
	Mode     Mode
	FromYear int
	ToYear   int
}

// Config holds orchestrator policy knobs.
type Config struct {
	// MaxSnapshots bounds how many candidates one recovery iterates.
	MaxSnapshots int `yaml:"max_snapshots"`

	// FetchTimeout bounds the whole snapshot query, retries included.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

// DefaultConfig matches the reference policy: 20 candidates, 600s budget.
func DefaultConfig() Config {
	return Config{
		MaxSnapshots: 20,
		FetchTimeout: 600 * time.Second,
	}
}

// Orchestrator runs one sequential recovery flow per invocation. Multiple
// flows may run concurrently as long as they share the limiter and cache
// sitting under the fetcher.
type Orchestrator struct {
	cfg       Config
	cdx       SnapshotFetcher
	extractor Extractor
	videos    storage.VideoRepository
	channels  storage.ChannelRepository
	tags      storage.TagRepository
	log       *slog.Logger
}

// NewOrchestrator wires the recovery state machine.
func NewOrchestrator(
	cfg Config,
	cdx SnapshotFetcher,
	extractor Extractor,
	videos storage.VideoRepository,
	channels storage.ChannelRepository,
	tags storage.TagRepository,
	log *slog.Logger,
) *Orchestrator {
	if cfg.MaxSnapshots <= 0 {
		cfg.MaxSnapshots = DefaultConfig().MaxSnapshots
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultConfig().FetchTimeout
	}
	return &Orchestrator{
		cfg:       cfg,
		cdx:       cdx,
		extractor: extractor,
		videos:    videos,
		channels:  channels,
		tags:      tags,
		log:       log,
	}
}

// Recover runs the state machine for one video. Failures come back as
// structured results; nothing escapes as an error or panic, so one record can
// never abort a batch.
func (o *Orchestrator) Recover(ctx context.Context, videoID string, opts Options) (result *domain.RecoveryResult) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			o.log.Error("Recovery panicked", "video_id", videoID, "panic", r)
			result = domain.Failure(videoID, domain.FailureUnexpectedError)
		}
		result.Duration = time.Since(start)

		outcome := string(result.FailureReason)
		if result.Success {
			outcome = "success"
		}
		metrics.RecoveriesTotal.WithLabelValues(outcome).Inc()
		metrics.RecoveryDuration.Observe(result.Duration.Seconds())
	}()

	res, err := o.run(ctx, videoID, opts)
	if err != nil {
		o.log.Error("Recovery failed unexpectedly", "video_id", videoID, "error", err)
		return domain.Failure(videoID, domain.FailureUnexpectedError)
	}
	return res
}

func (o *Orchestrator) run(ctx context.Context, videoID string, opts Options) (*domain.RecoveryResult, error) {
	// Eligibility: both checks terminal, no network traffic.
	video, err := o.videos.GetByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return domain.Failure(videoID, domain.FailureVideoNotFound), nil
	}
	if video.Available() {
		return domain.Failure(videoID, domain.FailureVideoAvailable), nil
	}

	snapshots, result := o.fetchSnapshots(ctx, videoID, opts)
	if result != nil {
		return result, nil
	}
	if len(snapshots) == 0 {
		res := domain.Failure(videoID, domain.FailureNoSnapshotsFound)
		res.SnapshotsAvailable = 0
		return res, nil
	}

	data, used, tried := o.iterate(ctx, snapshots, opts)
	if data == nil {
		res := domain.Failure(videoID, domain.FailureAllSnapshotsFailed)
		res.SnapshotsAvailable = len(snapshots)
		res.SnapshotsTried = tried
		return res, nil
	}
	metrics.SnapshotsTried.Observe(float64(tried))

	merge := MergeFields(video, data)

	if opts.Mode != ModeDryRun {
		o.ensureChannel(ctx, merge, data)

		// The recovery stamp is applied unconditionally on success, even
		// when every field was skipped.
		now := time.Now().UTC()
		if err := o.videos.UpdateFields(ctx, videoID, merge.Updates, now, data.Provenance().String()); err != nil {
			return nil, err
		}

		o.writeTags(ctx, videoID, data, merge)
	}

	res := &domain.RecoveryResult{
		VideoID:            videoID,
		Success:            true,
		SnapshotUsed:       used,
		RecoveredFields:    merge.Recovered,
		SkippedFields:      merge.Skipped,
		SnapshotsAvailable: len(snapshots),
		SnapshotsTried:     tried,
		ChannelCandidates:  o.channelCandidates(ctx, data),
	}

	o.log.Info("Recovery succeeded",
		"video_id", videoID,
		"snapshot", used.Timestamp,
		"recovered", len(res.RecoveredFields),
		"skipped", len(res.SkippedFields),
		"dry_run", opts.Mode == ModeDryRun,
	)
	return res, nil
}

// fetchSnapshots queries the CDX client under the overall wall-clock budget,
// mapping timeouts and client errors to their typed failures.
func (o *Orchestrator) fetchSnapshots(ctx context.Context, videoID string, opts Options) ([]*domain.Snapshot, *domain.RecoveryResult) {
	fetchCtx, cancel := context.WithTimeout(ctx, o.cfg.FetchTimeout)
	defer cancel()

	snapshots, err := o.cdx.FetchSnapshots(fetchCtx, videoID, opts.FromYear, opts.ToYear)
	if err == nil {
		return snapshots, nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		o.log.Warn("CDX query timed out", "video_id", videoID)
		return nil, domain.Failure(videoID, domain.FailureCDXQueryTimeout)
	}

	var cdxErr *wayback.CDXError
	if errors.As(err, &cdxErr) {
		o.log.Warn("CDX query failed", "video_id", videoID, "status", cdxErr.StatusCode)
	} else {
		o.log.Warn("CDX query failed", "video_id", videoID, "error", err)
	}
	return nil, domain.Failure(videoID, domain.FailureCDXConnectionError)
}

// iterate walks the candidate list until one snapshot yields usable data. In
// dry-run mode the first candidate is accepted sight unseen, producing a
// timestamp-only preview with no page fetch.
func (o *Orchestrator) iterate(ctx context.Context, snapshots []*domain.Snapshot, opts Options) (data *domain.RecoveredData, used *domain.Snapshot, tried int) {
	limit := len(snapshots)
	if limit > o.cfg.MaxSnapshots {
		limit = o.cfg.MaxSnapshots
	}

	for _, snap := range snapshots[:limit] {
		tried++

		if opts.Mode == ModeDryRun {
			return &domain.RecoveredData{Timestamp: snap.Timestamp}, snap, tried
		}

		extracted, err := o.extractor.ExtractMetadata(ctx, snap)
		if err != nil {
			// Per-snapshot failures are recoverable: advance.
			o.log.Warn("Snapshot extraction failed", "timestamp", snap.Timestamp, "error", err)
			continue
		}
		if extracted == nil || !extracted.HasMetadata() {
			o.log.Debug("Snapshot held no usable data", "timestamp", snap.Timestamp)
			continue
		}

		return extracted, snap, tried
	}

	return nil, nil, tried
}

// ensureChannel creates a minimal stub when the recovered channel id
// references a channel absent from the store, so relational constraints hold.
// If the stub cannot be created the channel id is dropped from the update and
// reclassified as skipped.
func (o *Orchestrator) ensureChannel(ctx context.Context, merge *MergeResult, data *domain.RecoveredData) {
	if _, ok := merge.Updates[domain.FieldChannelID]; !ok {
		return
	}

	exists, err := o.channels.Exists(ctx, data.ChannelID)
	if err == nil && exists {
		return
	}
	if err == nil {
		err = o.channels.Create(ctx, domain.NewChannelStub(data.ChannelID, data.ChannelName))
	}
	if err != nil {
		o.log.Warn("Channel stub creation failed, skipping channel_id",
			"channel_id", data.ChannelID, "error", err)
		merge.DropField(domain.FieldChannelID)
	}
}

// writeTags persists recovered tags best-effort; a tag-write failure is
// logged and reported skipped, never failing the recovery.
func (o *Orchestrator) writeTags(ctx context.Context, videoID string, data *domain.RecoveredData, merge *MergeResult) {
	if len(data.Tags) == 0 {
		return
	}
	if err := o.tags.AddTags(ctx, videoID, data.Tags); err != nil {
		o.log.Warn("Tag write failed", "video_id", videoID, "error", err)
		merge.Skipped = append(merge.Skipped, domain.FieldTags)
		return
	}
	merge.Recovered = append(merge.Recovered, domain.FieldTags)
}

// channelCandidates surfaces a recovered channel id whose channel record
// exists but is itself not fully available: a chained recovery candidate.
func (o *Orchestrator) channelCandidates(ctx context.Context, data *domain.RecoveredData) []string {
	if data.ChannelID == "" {
		return nil
	}
	channel, err := o.channels.GetByID(ctx, data.ChannelID)
	if err != nil || channel == nil {
		return nil
	}
	if channel.Available() {
		return nil
	}
	return []string{channel.ID}
}
