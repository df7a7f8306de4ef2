package task

import (
	"time"

	"github.com/Nicolasvals/discord-bot-plantaciones/internal/domain"
)

// Cooldowns holds the fixed cooldown duration per task kind.
var Cooldowns = map[domain.TaskKind]time.Duration{
	domain.TaskTrabajo: 1 * time.Hour,
	domain.TaskRobo:    2 * time.Hour,
	domain.TaskCrimen:  3 * time.Hour,
	domain.TaskAtraco:  6 * time.Hour,
}

// Log messages
const (
	LogMsgCooldownStarted = "Cooldown started"
	LogMsgCooldownClaimed = "Cooldown claimed"
	LogMsgCooldownStatus  = "Cooldown status requested"
)
