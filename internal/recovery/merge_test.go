package recovery

import (
	"testing"

	"github.com/davgn/waymeta/internal/core/domain"
)

func hasField(fields []string, name string) bool {
	for _, f := range fields {
		if f == name {
			return true
		}
	}
	return false
}

func TestMergeFields_ImmutableNeverOverwritten(t *testing.T) {
	video := &domain.Video{
		ID:             "abc",
		ChannelID:      "UCaaaaaaaaaaaaaaaaaaaaaa",
		RecoverySource: "wayback:20180101000000",
	}
	data := &domain.RecoveredData{
		ChannelID: "UCbbbbbbbbbbbbbbbbbbbbbb",
		Timestamp: "20250101000000", // far newer than the stored provenance
	}

	m := MergeFields(video, data)

	if _, ok := m.Updates[domain.FieldChannelID]; ok {
		t.Error("immutable field must not be overwritten")
	}
	if !hasField(m.Skipped, domain.FieldChannelID) {
		t.Errorf("channel_id should be skipped, got skipped=%v", m.Skipped)
	}
	if hasField(m.Recovered, domain.FieldChannelID) {
		t.Error("channel_id must not be reported recovered")
	}
}

func TestMergeFields_ImmutableFilledWhenEmpty(t *testing.T) {
	video := &domain.Video{ID: "abc"}
	data := &domain.RecoveredData{
		ChannelID:  "UCbbbbbbbbbbbbbbbbbbbbbb",
		CategoryID: "10",
		Timestamp:  "20190101000000",
	}

	m := MergeFields(video, data)

	if m.Updates[domain.FieldChannelID] != "UCbbbbbbbbbbbbbbbbbbbbbb" {
		t.Errorf("empty immutable field should be filled, updates=%v", m.Updates)
	}
	if m.Updates[domain.FieldCategoryID] != "10" {
		t.Errorf("empty immutable field should be filled, updates=%v", m.Updates)
	}
	if !hasField(m.Recovered, domain.FieldChannelID) || !hasField(m.Recovered, domain.FieldCategoryID) {
		t.Errorf("filled fields should be reported recovered, got %v", m.Recovered)
	}
}

func TestMergeFields_MutableRecency(t *testing.T) {
	cases := []struct {
		name      string
		stored    string
		incoming  string
		overwrite bool
	}{
		{"incoming newer", "wayback:20180101000000", "20190101000000", true},
		{"incoming equal", "wayback:20180101000000", "20180101000000", true},
		{"incoming older", "wayback:20180101000000", "20170101000000", false},
		{"no prior provenance", "", "19970101000000", true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			video := &domain.Video{
				ID:             "abc",
				Title:          "old title",
				RecoverySource: c.stored,
			}
			data := &domain.RecoveredData{Title: "new title", Timestamp: c.incoming}

			m := MergeFields(video, data)

			_, updated := m.Updates[domain.FieldTitle]
			if updated != c.overwrite {
				t.Errorf("overwrite = %v, want %v", updated, c.overwrite)
			}
			if c.overwrite && !hasField(m.Recovered, domain.FieldTitle) {
				t.Errorf("title should be recovered, got %v", m.Recovered)
			}
			if !c.overwrite && !hasField(m.Skipped, domain.FieldTitle) {
				t.Errorf("title should be skipped, got %v", m.Skipped)
			}
		})
	}
}

func TestMergeFields_EmptyIncomingNeverBlanks(t *testing.T) {
	views := int64(500)
	video := &domain.Video{
		ID:          "abc",
		Title:       "existing title",
		Description: "existing description",
		ViewCount:   &views,
	}
	// Incoming carries nothing but the capture timestamp.
	data := &domain.RecoveredData{Timestamp: "20250101000000"}

	m := MergeFields(video, data)

	if len(m.Updates) != 0 {
		t.Errorf("no updates expected, got %v", m.Updates)
	}
	for _, f := range []string{domain.FieldTitle, domain.FieldDescription, domain.FieldViewCount} {
		if !hasField(m.Skipped, f) {
			t.Errorf("%s should be skipped, got %v", f, m.Skipped)
		}
	}
	if len(m.Recovered) != 0 {
		t.Errorf("nothing should be recovered, got %v", m.Recovered)
	}
}

func TestMergeFields_BothEmptyOmitted(t *testing.T) {
	video := &domain.Video{ID: "abc"}
	data := &domain.RecoveredData{Timestamp: "20250101000000"}

	m := MergeFields(video, data)

	if len(m.Updates) != 0 || len(m.Recovered) != 0 || len(m.Skipped) != 0 {
		t.Errorf("both-empty fields must be omitted entirely: %+v", m)
	}
}

func TestMergeFields_DisjointLists(t *testing.T) {
	video := &domain.Video{
		ID:             "abc",
		Title:          "old",
		ChannelID:      "UCaaaaaaaaaaaaaaaaaaaaaa",
		RecoverySource: "wayback:20200101000000",
	}
	incoming := int64(200)
	data := &domain.RecoveredData{
		Title:     "new",
		ChannelID: "UCbbbbbbbbbbbbbbbbbbbbbb",
		ViewCount: &incoming,
		Timestamp: "20210101000000",
	}

	m := MergeFields(video, data)

	for _, f := range m.Recovered {
		if hasField(m.Skipped, f) {
			t.Errorf("field %s appears in both recovered and skipped", f)
		}
	}
}

func TestMergeResult_DropField(t *testing.T) {
	m := &MergeResult{
		Updates:   map[string]any{domain.FieldChannelID: "UCbbbbbbbbbbbbbbbbbbbbbb"},
		Recovered: []string{domain.FieldTitle, domain.FieldChannelID},
	}

	m.DropField(domain.FieldChannelID)

	if _, ok := m.Updates[domain.FieldChannelID]; ok {
		t.Error("dropped field still in updates")
	}
	if hasField(m.Recovered, domain.FieldChannelID) {
		t.Error("dropped field still reported recovered")
	}
	if !hasField(m.Skipped, domain.FieldChannelID) {
		t.Error("dropped field should be reported skipped")
	}
}
