package domain

// MessageRef identifies a previously sent Discord message.
// The zero value means "no message".
type MessageRef struct {
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id"`
}

// IsZero reports whether the reference points to nothing.
func (r MessageRef) IsZero() bool {
	return r.MessageID == ""
}

// AlertState is the per-phase one-shot notification record.
// Sent is the authoritative gate: once true, the phase's alert is never
// resent for the current deadline, even if Message no longer resolves.
type AlertState struct {
	Sent    bool       `json:"sent"`
	Message MessageRef `json:"message,omitempty"`
}
