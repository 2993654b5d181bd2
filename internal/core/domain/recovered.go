package domain

import (
	"regexp"
	"time"
)

// channelIDPattern matches canonical YouTube channel identifiers.
var channelIDPattern = regexp.MustCompile(`^UC[0-9A-Za-z_-]{22}$`)

// ValidChannelID reports whether id is a canonical UC… channel identifier.
func ValidChannelID(id string) bool {
	return channelIDPattern.MatchString(id)
}

// RecoveredData holds metadata extracted from one archived watch page. Every
// field is optional; Timestamp records which capture it came from and is
// always set.
type RecoveredData struct {
	Title        string
	Description  string
	ChannelName  string
	ChannelID    string
	ViewCount    *int64
	LikeCount    *int64
	UploadDate   *time.Time
	ThumbnailURL string
	Tags         []string
	CategoryID   string

	// Timestamp is the 14-digit capture timestamp the data was extracted from.
	Timestamp string
}

// Provenance returns the structured provenance for this extraction.
func (r *RecoveredData) Provenance() Provenance {
	return NewProvenance(r.Timestamp)
}

// PopulatedFields lists the metadata fields that carry a value, using
// persistence column names.
func (r *RecoveredData) PopulatedFields() []string {
	var fields []string
	if r.Title != "" {
		fields = append(fields, FieldTitle)
	}
	if r.Description != "" {
		fields = append(fields, FieldDescription)
	}
	if r.ChannelName != "" {
		fields = append(fields, FieldChannelName)
	}
	if r.ChannelID != "" {
		fields = append(fields, FieldChannelID)
	}
	if r.ViewCount != nil {
		fields = append(fields, FieldViewCount)
	}
	if r.LikeCount != nil {
		fields = append(fields, FieldLikeCount)
	}
	if r.UploadDate != nil {
		fields = append(fields, FieldUploadDate)
	}
	if r.ThumbnailURL != "" {
		fields = append(fields, FieldThumbnailURL)
	}
	if r.CategoryID != "" {
		fields = append(fields, FieldCategoryID)
	}
	if len(r.Tags) > 0 {
		fields = append(fields, FieldTags)
	}
	return fields
}

// HasMetadata reports whether the extraction produced anything beyond the
// capture timestamp. Pages that were themselves takedown notices yield
// nothing usable.
func (r *RecoveredData) HasMetadata() bool {
	return len(r.PopulatedFields()) > 0
}
