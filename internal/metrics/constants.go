package metrics

// Metric names
const (
	MetricNameReconcileTicks   = "reconcile_ticks_total"
	MetricNameTickDuration     = "reconcile_tick_duration_seconds"
	MetricNameAlertsSent       = "alerts_sent_total"
	MetricNameAlertsSuppressed = "alerts_suppressed_total"
	MetricNameBoundaryFailures = "discord_boundary_failures_total"
	MetricNameStoreWrites      = "store_writes_total"
	MetricNameStoreWriteErrors = "store_write_errors_total"
	MetricNameActionsPerformed = "actions_performed_total"
	MetricNameEmbedsRecreated  = "primary_embeds_recreated_total"
)

// Metric help text
const (
	HelpTextReconcileTicks   = "Total number of reconciliation ticks executed"
	HelpTextTickDuration     = "Reconciliation tick latency in seconds"
	HelpTextAlertsSent       = "Total number of alert messages sent"
	HelpTextAlertsSuppressed = "Total number of alerts suppressed by the deduplicator"
	HelpTextBoundaryFailures = "Total number of failed Discord API calls"
	HelpTextStoreWrites      = "Total number of successful store persists"
	HelpTextStoreWriteErrors = "Total number of failed store persists"
	HelpTextActionsPerformed = "Total number of user actions performed"
	HelpTextEmbedsRecreated  = "Total number of primary status embeds recreated"
)

// Label names
const (
	LabelPhase      = "phase"
	LabelReason     = "reason"
	LabelOp         = "op"
	LabelCollection = "collection"
	LabelAction     = "action"
)

// Suppression reasons
const (
	ReasonMessageLive = "message_live"
	ReasonFlagSet     = "flag_set"
	ReasonProbeError  = "probe_error"
)
