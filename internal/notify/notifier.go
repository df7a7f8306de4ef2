package notify

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/Nicolasvals/discord-bot-plantaciones/internal/domain"
	"github.com/Nicolasvals/discord-bot-plantaciones/internal/logger"
	"github.com/Nicolasvals/discord-bot-plantaciones/internal/metrics"
)

const (
	// Positive liveness probes are cached briefly so overlapping ticks
	// don't hammer the message-fetch endpoint. Negative results are
	// never cached: "gone" must always be re-verified.
	probeCacheSize = 512
	probeCacheTTL  = 90 * time.Second
)

// Log messages
const (
	LogMsgAlertSent       = "Alert sent"
	LogMsgAlertSuppressed = "Alert suppressed"
	LogMsgProbeFailed     = "Liveness probe failed, suppressing alert"
	LogMsgAlertSendFailed = "Failed to send alert"
	LogMsgDeleteFailed    = "Failed to delete consumed message"
)

// Notifier enforces the at-most-once alert discipline.
//
// Two gates guard every send: the stored message reference is probed for
// liveness (so a slow previous send is found instead of repeated), and
// the durable Sent flag is consulted (so a manually deleted alert is
// never resent for the same deadline). The flag always wins once set.
type Notifier struct {
	messenger Messenger
	probes    *expirable.LRU[domain.MessageRef, struct{}]
}

// NewNotifier creates a notifier over the given platform boundary.
func NewNotifier(m Messenger) *Notifier {
	return &Notifier{
		messenger: m,
		probes:    expirable.NewLRU[domain.MessageRef, struct{}](probeCacheSize, nil, probeCacheTTL),
	}
}

// EnsureNotified delivers the phase alert unless it was already
// delivered for the current deadline. It returns the (possibly updated)
// alert state and whether it changed; the caller persists changes
// immediately.
func (n *Notifier) EnsureNotified(ctx context.Context, channelID string, phase domain.Phase, alert domain.AlertState, render func() Message) (domain.AlertState, bool, error) {
	log := logger.FromContext(ctx)

	if !alert.Message.IsZero() {
		live, err := n.MessageLive(ctx, alert.Message)
		if err != nil {
			// Unknown liveness: resending could double-notify, so the
			// safe direction is to suppress and let a later tick retry
			// the probe.
			log.Warn(LogMsgProbeFailed, "channel", channelID, "phase", phase, "error", err)
			metrics.AlertsSuppressed.WithLabelValues(metrics.ReasonProbeError).Inc()
			return alert, false, nil
		}
		if live {
			metrics.AlertsSuppressed.WithLabelValues(metrics.ReasonMessageLive).Inc()
			return alert, false, nil
		}
	}

	if alert.Sent {
		// The message is gone but the one-shot flag stands: the alert
		// was consumed, not lost.
		log.Debug(LogMsgAlertSuppressed, "channel", channelID, "phase", phase, "reason", metrics.ReasonFlagSet)
		metrics.AlertsSuppressed.WithLabelValues(metrics.ReasonFlagSet).Inc()
		return alert, false, nil
	}

	ref, err := n.messenger.Send(ctx, channelID, render())
	if err != nil {
		// Flag stays unset on failure so the next tick retries the send.
		log.Error(LogMsgAlertSendFailed, "channel", channelID, "phase", phase, "error", err)
		return alert, false, err
	}

	alert.Sent = true
	alert.Message = ref
	n.probes.Add(ref, struct{}{})

	metrics.AlertsSent.WithLabelValues(string(phase)).Inc()
	log.Info(LogMsgAlertSent, "channel", channelID, "phase", phase, "message_id", ref.MessageID)
	return alert, true, nil
}

// MessageLive probes whether ref still exists, caching positive results.
func (n *Notifier) MessageLive(ctx context.Context, ref domain.MessageRef) (bool, error) {
	if _, ok := n.probes.Get(ref); ok {
		return true, nil
	}
	live, err := n.messenger.Exists(ctx, ref)
	if err != nil {
		return false, err
	}
	if live {
		n.probes.Add(ref, struct{}{})
	}
	return live, nil
}

// CleanupMessages deletes consumed messages best-effort. Failures are
// logged and swallowed; a leftover prompt is cosmetic, not a correctness
// problem.
func (n *Notifier) CleanupMessages(ctx context.Context, refs []domain.MessageRef) {
	log := logger.FromContext(ctx)
	for _, ref := range refs {
		if ref.IsZero() {
			continue
		}
		if err := n.messenger.Delete(ctx, ref); err != nil {
			log.Warn(LogMsgDeleteFailed, "channel", ref.ChannelID, "message_id", ref.MessageID, "error", err)
		}
		n.probes.Remove(ref)
	}
}
