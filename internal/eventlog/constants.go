package eventlog

// Action labels recorded in the activity log, in the bot's display language.
const (
	ActionCreated         = "Creó plantación"
	ActionWatered         = "Regó"
	ActionHarvested       = "Cosechó"
	ActionCultivated      = "Cultivó"
	ActionDeleted         = "Borró plantación"
	ActionCooldown        = "Inició cooldown"
	ActionCooldownClaimed = "Reclamó cooldown"
)

// Log messages
const (
	LogMsgEventLogged      = "Activity event logged"
	LogMsgFailedToLogEvent = "Failed to log activity event"
	LogMsgEventLogCleared  = "Activity log cleared"
)
