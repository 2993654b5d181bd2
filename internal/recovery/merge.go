package recovery

import (
	"time"

	"github.com/davgn/waymeta/internal/core/domain"
)

// mergeOrder fixes the evaluation order so recovered/skipped lists are stable.
var mergeOrder = []string{
	domain.FieldTitle,
	domain.FieldDescription,
	domain.FieldChannelName,
	domain.FieldChannelID,
	domain.FieldViewCount,
	domain.FieldLikeCount,
	domain.FieldUploadDate,
	domain.FieldThumbnailURL,
	domain.FieldCategoryID,
}

// immutableFields are fill-once: set on the record, they are never overwritten
// by a later recovery regardless of snapshot recency.
var immutableFields = map[string]bool{
	domain.FieldChannelID:  true,
	domain.FieldCategoryID: true,
}

// MergeResult is the exact set of column assignments to apply, plus disjoint
// recovered/skipped field lists for observability.
type MergeResult struct {
	Updates   map[string]any
	Recovered []string
	Skipped   []string
}

// MergeFields computes the field-level update for recovered data against the
// current record. Three tiers: immutable fields fill only when empty; mutable
// fields overwrite only when the incoming capture is at least as recent as
// the record's provenance; an empty incoming value never blanks existing
// data. Fields empty on both sides are omitted entirely.
func MergeFields(video *domain.Video, data *domain.RecoveredData) *MergeResult {
	result := &MergeResult{Updates: make(map[string]any)}

	prov, hasProv := domain.ParseProvenance(video.RecoverySource)
	// No prior provenance: the incoming capture always counts as newer.
	incomingNewer := !hasProv || prov.NewerOrEqual(data.Timestamp)

	for _, field := range mergeOrder {
		incoming := incomingValue(data, field)
		current := video.FieldValue(field)

		switch {
		case isEmpty(incoming) && isEmpty(current):
			// Nothing on either side: omit from both lists.
		case isEmpty(incoming):
			// Empty-value protection: never blank existing data.
			result.Skipped = append(result.Skipped, field)
		case isEmpty(current):
			result.Updates[field] = incoming
			result.Recovered = append(result.Recovered, field)
		case immutableFields[field]:
			// Fill-once: already set, never overwritten.
			result.Skipped = append(result.Skipped, field)
		case incomingNewer:
			result.Updates[field] = incoming
			result.Recovered = append(result.Recovered, field)
		default:
			result.Skipped = append(result.Skipped, field)
		}
	}

	return result
}

// DropField reclassifies an update as skipped, used when a side effect the
// field depends on (channel stub creation) fails.
func (m *MergeResult) DropField(field string) {
	delete(m.Updates, field)
	for i, f := range m.Recovered {
		if f == field {
			m.Recovered = append(m.Recovered[:i], m.Recovered[i+1:]...)
			break
		}
	}
	m.Skipped = append(m.Skipped, field)
}

func incomingValue(data *domain.RecoveredData, field string) any {
	switch field {
	case domain.FieldTitle:
		return data.Title
	case domain.FieldDescription:
		return data.Description
	case domain.FieldChannelName:
		return data.ChannelName
	case domain.FieldChannelID:
		return data.ChannelID
	case domain.FieldViewCount:
		return data.ViewCount
	case domain.FieldLikeCount:
		return data.LikeCount
	case domain.FieldUploadDate:
		return data.UploadDate
	case domain.FieldThumbnailURL:
		return data.ThumbnailURL
	case domain.FieldCategoryID:
		return data.CategoryID
	default:
		return nil
	}
}

func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case *int64:
		return val == nil
	case *time.Time:
		return val == nil
	default:
		return false
	}
}
