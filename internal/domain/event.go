package domain

import "time"

// UnknownEmail is the recipient placeholder used when an open arrives for a
// tracking id that was never pre-registered by the sending side.
const UnknownEmail = "unknown@example.com"

// TrackingEvent is the open-tracking record for a single outbound email,
// keyed by the opaque tracking id embedded in the message. The record only
// carries the most recent open; repeated opens overwrite the requester
// metadata in place.
type TrackingEvent struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	SentTime  time.Time  `json:"sent_time"`
	Opened    bool       `json:"opened"`
	OpenTime  *time.Time `json:"open_time"`
	IPAddress string     `json:"ip_address"`
	UserAgent string     `json:"user_agent"`
}
