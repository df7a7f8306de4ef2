package task

import (
	"context"
	"fmt"
	"time"

	"github.com/Nicolasvals/discord-bot-plantaciones/internal/domain"
	"github.com/Nicolasvals/discord-bot-plantaciones/internal/eventlog"
	"github.com/Nicolasvals/discord-bot-plantaciones/internal/logger"
	"github.com/Nicolasvals/discord-bot-plantaciones/internal/metrics"
	"github.com/Nicolasvals/discord-bot-plantaciones/internal/store"
)

// Service manages per-user cooldown tasks. One task exists per
// (owner, kind); starting a kind again replaces the previous instance
// and re-arms its notification.
type Service interface {
	// Start begins (or restarts) the cooldown of the given kind for the
	// owner. It always succeeds: an unexpired previous window is simply
	// discarded and the notification gate reset.
	Start(ctx context.Context, ownerID, ownerTag string, kind domain.TaskKind, dmChannelID string, now time.Time) (domain.CooldownTask, error)

	// Claim dismisses the owner's active cooldown of the given kind,
	// completing it without any further notification.
	Claim(ctx context.Context, ownerID, ownerTag string, kind domain.TaskKind) (domain.CooldownTask, error)

	// Status returns the owner's active cooldown tasks.
	Status(ctx context.Context, ownerID string) ([]domain.CooldownTask, error)
}

type service struct {
	repo   *store.Store
	events eventlog.Service
}

// NewService creates a new cooldown task service.
func NewService(repo *store.Store, events eventlog.Service) Service {
	return &service{repo: repo, events: events}
}

func (s *service) Start(ctx context.Context, ownerID, ownerTag string, kind domain.TaskKind, dmChannelID string, now time.Time) (domain.CooldownTask, error) {
	log := logger.FromContext(ctx)

	if !domain.ValidTaskKind(kind) {
		return domain.CooldownTask{}, fmt.Errorf("%w: %q", domain.ErrInvalidKind, kind)
	}

	t := domain.CooldownTask{
		OwnerID:     ownerID,
		Kind:        kind,
		CreatedAt:   now,
		DMChannelID: dmChannelID,
		ReadyAt:     now.Add(Cooldowns[kind]),
		// NotifiedForReadyAt stays zero: the new window is un-notified
		// even if the replaced task had already been announced.
	}

	stored, err := s.repo.ReplaceTask(ctx, t)
	if err != nil {
		return domain.CooldownTask{}, fmt.Errorf("failed to start cooldown: %w", err)
	}

	s.events.Record(ctx, ownerID, ownerTag, eventlog.ActionCooldown,
		fmt.Sprintf("%s • listo %s", kind, stored.ReadyAt.UTC().Format(time.RFC3339)))
	metrics.ActionsPerformed.WithLabelValues(string(kind)).Inc()
	log.Info(LogMsgCooldownStarted, "owner", ownerID, "kind", kind, "ready_at", stored.ReadyAt)

	return stored, nil
}

func (s *service) Claim(ctx context.Context, ownerID, ownerTag string, kind domain.TaskKind) (domain.CooldownTask, error) {
	log := logger.FromContext(ctx)

	t, err := s.repo.GetTaskByOwnerKind(ctx, ownerID, kind)
	if err != nil {
		return domain.CooldownTask{}, err
	}
	if t.Completed {
		return domain.CooldownTask{}, domain.ErrTaskNotFound
	}

	// Claiming also stamps the notification gate, so a tick racing this
	// call cannot DM for a window the owner already dismissed.
	notified := t.ReadyAt
	done := true
	updated, err := s.repo.PatchTask(ctx, t.ID, store.TaskPatch{
		NotifiedForReadyAt: &notified,
		Completed:          &done,
	})
	if err != nil {
		return domain.CooldownTask{}, fmt.Errorf("failed to claim cooldown: %w", err)
	}

	s.events.Record(ctx, ownerID, ownerTag, eventlog.ActionCooldownClaimed, string(kind))
	log.Info(LogMsgCooldownClaimed, "owner", ownerID, "kind", kind)

	return updated, nil
}

func (s *service) Status(ctx context.Context, ownerID string) ([]domain.CooldownTask, error) {
	tasks, err := s.repo.ListTasksByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cooldowns: %w", err)
	}
	return tasks, nil
}
