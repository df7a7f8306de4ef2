package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Reconciliation metrics
var (
	ReconcileTicks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameReconcileTicks,
			Help: HelpTextReconcileTicks,
		},
	)

	TickDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    MetricNameTickDuration,
			Help:    HelpTextTickDuration,
			Buckets: prometheus.DefBuckets,
		},
	)

	EmbedsRecreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameEmbedsRecreated,
			Help: HelpTextEmbedsRecreated,
		},
	)
)

// Notification metrics
var (
	AlertsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameAlertsSent,
			Help: HelpTextAlertsSent,
		},
		[]string{LabelPhase},
	)

	AlertsSuppressed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameAlertsSuppressed,
			Help: HelpTextAlertsSuppressed,
		},
		[]string{LabelReason},
	)

	BoundaryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameBoundaryFailures,
			Help: HelpTextBoundaryFailures,
		},
		[]string{LabelOp},
	)
)

// Store and action metrics
var (
	StoreWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameStoreWrites,
			Help: HelpTextStoreWrites,
		},
		[]string{LabelCollection},
	)

	StoreWriteErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameStoreWriteErrors,
			Help: HelpTextStoreWriteErrors,
		},
		[]string{LabelCollection},
	)

	ActionsPerformed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameActionsPerformed,
			Help: HelpTextActionsPerformed,
		},
		[]string{LabelAction},
	)
)
