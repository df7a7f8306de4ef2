package domain

import "time"

// EventEntry is one row of the user activity log.
type EventEntry struct {
	Timestamp time.Time `json:"ts"`
	UserID    string    `json:"user_id"`
	UserTag   string    `json:"user_tag"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
}
