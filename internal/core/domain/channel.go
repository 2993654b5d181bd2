package domain

import "time"

// ChannelStatus tracks the availability of a channel on the live site.
type ChannelStatus string

const (
	ChannelStatusAvailable   ChannelStatus = "available"
	ChannelStatusTerminated  ChannelStatus = "terminated"
	ChannelStatusUnavailable ChannelStatus = "unavailable"
)

// Channel is a tracked YouTube channel record. Recovery creates minimal stub
// rows for channels it discovers so relational constraints hold.
type Channel struct {
	ID        string        `db:"id"`
	Name      string        `db:"name"`
	Status    ChannelStatus `db:"status"`
	CreatedAt time.Time     `db:"created_at"`
	UpdatedAt time.Time     `db:"updated_at"`
}

// NewChannelStub builds the minimal channel row recovery inserts when a
// recovered channel id references a channel absent from the store. The name
// falls back to the id itself when no hint was recovered.
func NewChannelStub(id, nameHint string) *Channel {
	name := nameHint
	if name == "" {
		name = id
	}
	return &Channel{
		ID:     id,
		Name:   name,
		Status: ChannelStatusUnavailable,
	}
}

// Available reports whether the channel is still fully available.
func (c *Channel) Available() bool {
	return c.Status == ChannelStatusAvailable
}

// Tag is a single tag attached to a video.
type Tag struct {
	ID      string `db:"id"`
	VideoID string `db:"video_id"`
	Name    string `db:"name"`
}
