package plantation

import (
	"time"

	"github.com/Nicolasvals/discord-bot-plantaciones/internal/domain"
)

// Evaluate returns the phases of p that are due at now.
//
// It is pure and deterministic: a phase becomes due the instant its
// deadline passes and stays due on every evaluation until an action
// handler moves the deadline. Repeat detection is intentional; the
// notification deduplicator, not this function, prevents repeat alerts.
// A completed plantation never has due phases.
func Evaluate(p domain.Plantation, now time.Time) []domain.Phase {
	if p.Completed {
		return nil
	}

	switch p.Kind {
	case domain.KindDuplicate:
		if !now.Before(p.ReadyAt) {
			return []domain.Phase{domain.PhaseReady}
		}
		return nil
	case domain.KindHarvest:
		// Water and harvest can be due at the same time; both are
		// reported so a single alert can carry both buttons.
		var due []domain.Phase
		if !now.Before(p.NextWaterAt) {
			due = append(due, domain.PhaseWater)
		}
		if !now.Before(p.NextHarvestAt) {
			due = append(due, domain.PhaseHarvest)
		}
		return due
	default:
		return nil
	}
}

// Remaining returns how long until the phase's deadline, clamped at zero.
func Remaining(p domain.Plantation, phase domain.Phase, now time.Time) time.Duration {
	var deadline time.Time
	switch phase {
	case domain.PhaseWater:
		deadline = p.NextWaterAt
	case domain.PhaseHarvest:
		deadline = p.NextHarvestAt
	case domain.PhaseReady:
		deadline = p.ReadyAt
	}
	d := deadline.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
