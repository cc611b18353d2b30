package domain

import "time"

const (
	EventInitialised = "initialised"
	EventConfigured  = "configured"
)

// UsageEvent is a single client action recovered from an access-log line.
type UsageEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Event     string    `json:"event"`
	ClientID  string    `json:"client"`
}
