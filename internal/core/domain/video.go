package domain

import "time"

// VideoStatus tracks the availability of a video on the live site.
type VideoStatus string

const (
	VideoStatusAvailable  VideoStatus = "available"
	VideoStatusDeleted    VideoStatus = "deleted"
	VideoStatusPrivate    VideoStatus = "private"
	VideoStatusTerminated VideoStatus = "terminated"
	VideoStatusUnknown    VideoStatus = "unknown"
)

// Persistence column names for the recoverable metadata fields. The merge
// policy and repositories share this vocabulary.
const (
	FieldTitle        = "title"
	FieldDescription  = "description"
	FieldChannelName  = "channel_name"
	FieldChannelID    = "channel_id"
	FieldViewCount    = "view_count"
	FieldLikeCount    = "like_count"
	FieldUploadDate   = "upload_date"
	FieldThumbnailURL = "thumbnail_url"
	FieldCategoryID   = "category_id"
	FieldTags         = "tags"
)

// Video is a tracked YouTube video record.
type Video struct {
	ID           string      `db:"id"`
	Title        string      `db:"title"`
	Description  string      `db:"description"`
	ChannelID    string      `db:"channel_id"`
	ChannelName  string      `db:"channel_name"`
	ViewCount    *int64      `db:"view_count"`
	LikeCount    *int64      `db:"like_count"`
	UploadDate   *time.Time  `db:"upload_date"`
	ThumbnailURL string      `db:"thumbnail_url"`
	CategoryID   string      `db:"category_id"`
	Status       VideoStatus `db:"status"`

	// RecoverySource is the serialized provenance of the last recovery,
	// empty if the record was never recovered.
	RecoverySource string     `db:"recovery_source"`
	RecoveredAt    *time.Time `db:"recovered_at"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Available reports whether the video is still fully available on the live
// site. Recovery targets only unavailable records.
func (v *Video) Available() bool {
	return v.Status == VideoStatusAvailable
}

// FieldValue returns the current value of a recoverable metadata column,
// normalized so the merge policy can test emptiness uniformly.
func (v *Video) FieldValue(field string) any {
	switch field {
	case FieldTitle:
		return v.Title
	case FieldDescription:
		return v.Description
	case FieldChannelName:
		return v.ChannelName
	case FieldChannelID:
		return v.ChannelID
	case FieldViewCount:
		return v.ViewCount
	case FieldLikeCount:
		return v.LikeCount
	case FieldUploadDate:
		return v.UploadDate
	case FieldThumbnailURL:
		return v.ThumbnailURL
	case FieldCategoryID:
		return v.CategoryID
	default:
		return nil
	}
}
