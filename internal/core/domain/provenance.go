package domain

import (
	"fmt"
	"strings"
)

// SourceWayback is the only archival source this service recovers from.
const SourceWayback = "wayback"

// Provenance records which archival source and capture produced a recovered
// value. It is kept structured in memory and serialized to the compact
// "source:timestamp" form only at the persistence boundary.
type Provenance struct {
	Source    string
	Timestamp string
}

// NewProvenance builds a wayback provenance for a capture timestamp.
func NewProvenance(timestamp string) Provenance {
	return Provenance{Source: SourceWayback, Timestamp: timestamp}
}

// ParseProvenance parses the persisted "source:timestamp" form. An empty
// string yields (zero, false): the record has no prior recovery.
func ParseProvenance(s string) (Provenance, bool) {
	if s == "" {
		return Provenance{}, false
	}
	source, ts, found := strings.Cut(s, ":")
	if !found || source == "" || !ValidTimestamp(ts) {
		return Provenance{}, false
	}
	return Provenance{Source: source, Timestamp: ts}, true
}

// String serializes for storage.
func (p Provenance) String() string {
	return fmt.Sprintf("%s:%s", p.Source, p.Timestamp)
}

// NewerOrEqual reports whether a capture at ts should be allowed to overwrite
// a value carrying this provenance. Timestamps are fixed-width digit strings,
// so lexicographic comparison is chronological.
func (p Provenance) NewerOrEqual(ts string) bool {
	return ts >= p.Timestamp
}
