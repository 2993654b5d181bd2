package domain

import "testing"

func TestParseProvenance(t *testing.T) {
	p, ok := ParseProvenance("wayback:20190615123045")
	if !ok {
		t.Fatal("expected valid provenance")
	}
	if p.Source != "wayback" || p.Timestamp != "20190615123045" {
		t.Errorf("unexpected provenance: %+v", p)
	}

	for _, s := range []string{"", "wayback", "wayback:", ":20190615123045", "wayback:notatimestamp"} {
		if _, ok := ParseProvenance(s); ok {
			t.Errorf("ParseProvenance(%q) should not parse", s)
		}
	}
}

func TestProvenance_RoundTrip(t *testing.T) {
	p := NewProvenance("20190615123045")
	if p.String() != "wayback:20190615123045" {
		t.Errorf("String() = %q", p.String())
	}
	back, ok := ParseProvenance(p.String())
	if !ok || back != p {
		t.Errorf("round trip mismatch: %+v", back)
	}
}

func TestProvenance_NewerOrEqual(t *testing.T) {
	p := NewProvenance("20190615123045")

	if !p.NewerOrEqual("20190615123045") {
		t.Error("equal timestamp should be allowed to overwrite")
	}
	if !p.NewerOrEqual("20200101000000") {
		t.Error("newer timestamp should be allowed to overwrite")
	}
	if p.NewerOrEqual("20180101000000") {
		t.Error("older timestamp must not overwrite")
	}
}

func TestRecoveredData_PopulatedFields(t *testing.T) {
	views := int64(1200)
	r := &RecoveredData{
		Title:     "a title",
		ViewCount: &views,
		Tags:      []string{"music"},
		Timestamp: "20190615123045",
	}

	fields := r.PopulatedFields()
	want := map[string]bool{FieldTitle: true, FieldViewCount: true, FieldTags: true}
	if len(fields) != len(want) {
		t.Fatalf("PopulatedFields() = %v", fields)
	}
	for _, f := range fields {
		if !want[f] {
			t.Errorf("unexpected field %q", f)
		}
	}

	if !r.HasMetadata() {
		t.Error("HasMetadata() should be true")
	}

	empty := &RecoveredData{Timestamp: "20190615123045"}
	if empty.HasMetadata() {
		t.Error("timestamp-only extraction has no metadata")
	}
}

func TestValidChannelID(t *testing.T) {
	if !ValidChannelID("UCuAXFkgsw1L7xaCfnd5JJOw") {
		t.Error("canonical channel id should validate")
	}
	for _, id := range []string{"", "UCshort", "XXuAXFkgsw1L7xaCfnd5JJOw", "UCuAXFkgsw1L7xaCfnd5JJOw!"} {
		if ValidChannelID(id) {
			t.Errorf("ValidChannelID(%q) should be false", id)
		}
	}
}
