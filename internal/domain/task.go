package domain

import "time"

// TaskKind is the fixed taxonomy of cooldown-gated actions.
type TaskKind string

const (
	// TaskTrabajo is the hourly paid job.
	TaskTrabajo TaskKind = "trabajo"
	// TaskRobo is the quick pickpocket attempt.
	TaskRobo TaskKind = "robo"
	// TaskCrimen is the mid-cooldown crime.
	TaskCrimen TaskKind = "crimen"
	// TaskAtraco is the long-cooldown heist.
	TaskAtraco TaskKind = "atraco"
)

// TaskKinds lists every valid kind, in display order.
var TaskKinds = []TaskKind{TaskTrabajo, TaskRobo, TaskCrimen, TaskAtraco}

// ValidTaskKind reports whether k is a known task kind.
func ValidTaskKind(k TaskKind) bool {
	for _, known := range TaskKinds {
		if k == known {
			return true
		}
	}
	return false
}

// CooldownTask tracks one cooldown window for a (owner, kind) pair.
// Tasks are DM-notified only and carry no persistent status message.
//
// NotifiedForReadyAt stores the ReadyAt value the last notification was
// delivered for. Equality with ReadyAt means the current window has
// already been announced; re-arming the cooldown writes a new ReadyAt so
// the comparison fails and a fresh notification fires.
type CooldownTask struct {
	ID                 int       `json:"id"`
	OwnerID            string    `json:"owner_id"`
	Kind               TaskKind  `json:"kind"`
	CreatedAt          time.Time `json:"created_at"`
	DMChannelID        string    `json:"dm_channel_id"`
	ReadyAt            time.Time `json:"ready_at"`
	NotifiedForReadyAt time.Time `json:"notified_for_ready_at,omitempty"`
	Completed          bool      `json:"completed"`
}

// Notified reports whether the current cooldown window was already announced.
func (t CooldownTask) Notified() bool {
	return !t.NotifiedForReadyAt.IsZero() && t.NotifiedForReadyAt.Equal(t.ReadyAt)
}
