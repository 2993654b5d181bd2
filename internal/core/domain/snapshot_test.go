package domain

import (
	"testing"
	"time"
)

func TestValidTimestamp(t *testing.T) {
	cases := []struct {
		ts    string
		valid bool
	}{
		{"20190615123045", true},
		{"19960101000000", true},
		{"2019061512304", false},   // 13 digits
		{"201906151230455", false}, // 15 digits
		{"2019061512304x", false},
		{"20191315123045", false}, // month 13
		{"20190632123045", false}, // day 32
		{"", false},
	}

	for _, c := range cases {
		if got := ValidTimestamp(c.ts); got != c.valid {
			t.Errorf("ValidTimestamp(%q) = %v, want %v", c.ts, got, c.valid)
		}
	}
}

func TestSnapshot_Time(t *testing.T) {
	snap, err := NewSnapshot("20190615123045", "https://www.youtube.com/watch?v=abc", "text/html", 200, "DIGEST", 52340)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := snap.Time()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := time.Date(2019, 6, 15, 12, 30, 45, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Time() = %v, want %v", got, want)
	}
	if got.Location() != time.UTC {
		t.Errorf("Time() location = %v, want UTC", got.Location())
	}
}

func TestNewSnapshot_Invalid(t *testing.T) {
	if _, err := NewSnapshot("bogus", "u", "text/html", 200, "D", 100); err == nil {
		t.Error("expected error for malformed timestamp")
	}
	if _, err := NewSnapshot("20190615123045", "u", "text/html", 200, "D", 0); err == nil {
		t.Error("expected error for zero length")
	}
}

func TestSnapshot_URLs(t *testing.T) {
	snap := &Snapshot{Timestamp: "20190615123045", Original: "https://www.youtube.com/watch?v=abc"}

	wantRaw := "https://web.archive.org/web/20190615123045id_/https://www.youtube.com/watch?v=abc"
	if got := snap.RawURL(); got != wantRaw {
		t.Errorf("RawURL() = %q, want %q", got, wantRaw)
	}

	wantWeb := "https://web.archive.org/web/20190615123045/https://www.youtube.com/watch?v=abc"
	if got := snap.WebURL(); got != wantWeb {
		t.Errorf("WebURL() = %q, want %q", got, wantWeb)
	}
}
