package domain

import "time"

// FailureReason classifies why a recovery attempt did not produce an update.
type FailureReason string

const (
	FailureVideoNotFound      FailureReason = "video_not_found"
	FailureVideoAvailable     FailureReason = "video_available"
	FailureCDXQueryTimeout    FailureReason = "cdx_query_timeout"
	FailureCDXConnectionError FailureReason = "cdx_connection_error"
	FailureNoSnapshotsFound   FailureReason = "no_snapshots_found"
	FailureAllSnapshotsFailed FailureReason = "all_snapshots_failed"
	FailureUnexpectedError    FailureReason = "unexpected_error"
)

// RecoveryResult reports the outcome of one recovery invocation. It is the
// only surface the calling layer consumes; failures are data here, never
// escaping errors.
type RecoveryResult struct {
	VideoID            string        `json:"video_id"`
	Success            bool          `json:"success"`
	SnapshotUsed       *Snapshot     `json:"snapshot_used,omitempty"`
	RecoveredFields    []string      `json:"recovered_fields,omitempty"`
	SkippedFields      []string      `json:"skipped_fields,omitempty"`
	SnapshotsAvailable int           `json:"snapshots_available"`
	SnapshotsTried     int           `json:"snapshots_tried"`
	FailureReason      FailureReason `json:"failure_reason,omitempty"`
	Duration           time.Duration `json:"duration"`

	// ChannelCandidates lists recovered channel ids whose channel record
	// exists but is itself not fully available: candidates for a chained
	// channel recovery by the caller.
	ChannelCandidates []string `json:"channel_candidates,omitempty"`
}

// Failure builds a failed result for a video.
func Failure(videoID string, reason FailureReason) *RecoveryResult {
	return &RecoveryResult{VideoID: videoID, FailureReason: reason}
}
