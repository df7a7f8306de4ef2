package plantation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Nicolasvals/discord-bot-plantaciones/internal/domain"
	"github.com/Nicolasvals/discord-bot-plantaciones/internal/eventlog"
	"github.com/Nicolasvals/discord-bot-plantaciones/internal/logger"
	"github.com/Nicolasvals/discord-bot-plantaciones/internal/metrics"
	"github.com/Nicolasvals/discord-bot-plantaciones/internal/store"
)

// CreateParams describes a new plantation.
type CreateParams struct {
	Kind            domain.PlantationKind
	Description     string
	ImageURL        string
	OwnerID         string
	EmbedChannelID  string
	NotifyChannelID string
}

// ActionResult is the outcome of a user action. ConsumedMessages lists
// alert (and, on completion, primary) messages the caller should delete
// from the channel, best-effort.
type ActionResult struct {
	Plantation       domain.Plantation
	Completed        bool
	ConsumedMessages []domain.MessageRef
}

// Actor identifies the user performing an action, for the activity log.
type Actor struct {
	ID  string
	Tag string
}

// Service defines the plantation lifecycle business logic.
type Service interface {
	// Create stores a new plantation with deadlines computed from now.
	Create(ctx context.Context, params CreateParams, now time.Time) (domain.Plantation, error)

	// Get returns one plantation by ID.
	Get(ctx context.Context, id int) (domain.Plantation, error)

	// List returns all non-completed plantations in ID order.
	List(ctx context.Context) ([]domain.Plantation, error)

	// Water advances the watering deadline. Fails with ErrNotReady while
	// the current deadline has not elapsed.
	Water(ctx context.Context, id int, actor Actor, now time.Time) (*ActionResult, error)

	// Harvest advances the harvest counter and deadline; reaching
	// MaxHarvests completes the plantation.
	Harvest(ctx context.Context, id int, actor Actor, now time.Time) (*ActionResult, error)

	// Cultivate completes a duplication plantation once it is ready.
	Cultivate(ctx context.Context, id int, actor Actor, now time.Time) (*ActionResult, error)

	// Delete removes a plantation entirely. Admin only.
	Delete(ctx context.Context, id int, actor Actor, admin bool) (*ActionResult, error)

	// SetPrimary records the posted status embed for a plantation.
	SetPrimary(ctx context.Context, id int, ref domain.MessageRef) error
}

type service struct {
	repo   *store.Store
	events eventlog.Service
}

// NewService creates a new plantation service.
func NewService(repo *store.Store, events eventlog.Service) Service {
	return &service{repo: repo, events: events}
}

func (s *service) Create(ctx context.Context, params CreateParams, now time.Time) (domain.Plantation, error) {
	log := logger.FromContext(ctx)

	if params.Kind != domain.KindHarvest && params.Kind != domain.KindDuplicate {
		return domain.Plantation{}, fmt.Errorf("%w: %q", domain.ErrInvalidKind, params.Kind)
	}

	p := domain.Plantation{
		Kind:            params.Kind,
		Description:     params.Description,
		ImageURL:        params.ImageURL,
		OwnerID:         params.OwnerID,
		CreatedAt:       now,
		EmbedChannelID:  params.EmbedChannelID,
		NotifyChannelID: params.NotifyChannelID,
	}
	switch params.Kind {
	case domain.KindHarvest:
		p.NextWaterAt = now.Add(WaterInterval)
		p.NextHarvestAt = now.Add(HarvestInterval)
	case domain.KindDuplicate:
		p.ReadyAt = now.Add(DuplicateReady)
	}

	created, err := s.repo.CreatePlantation(ctx, p)
	if err != nil {
		return domain.Plantation{}, fmt.Errorf("failed to create plantation: %w", err)
	}

	s.events.Record(ctx, params.OwnerID, "", eventlog.ActionCreated,
		fmt.Sprintf("%s • %s", describe(created), created.Kind))
	metrics.ActionsPerformed.WithLabelValues(ActionCreate).Inc()
	log.Info(LogMsgPlantationCreated, "id", created.ID, "kind", created.Kind, "owner", created.OwnerID)
	return created, nil
}

func (s *service) Get(ctx context.Context, id int) (domain.Plantation, error) {
	return s.repo.GetPlantation(ctx, id)
}

func (s *service) List(ctx context.Context) ([]domain.Plantation, error) {
	return s.repo.ListPlantations(ctx, true)
}

// getActionable loads a plantation and rejects actions on completed ones.
func (s *service) getActionable(ctx context.Context, id int) (domain.Plantation, error) {
	p, err := s.repo.GetPlantation(ctx, id)
	if err != nil {
		return domain.Plantation{}, err
	}
	if p.Completed {
		return domain.Plantation{}, domain.ErrAlreadyCompleted
	}
	return p, nil
}

func (s *service) Water(ctx context.Context, id int, actor Actor, now time.Time) (*ActionResult, error) {
	log := logger.FromContext(ctx)

	// The reconcile tick holds the same span lock across its
	// probe-send-patch sequence, so a tick suspended in a network send
	// cannot overwrite the re-arm this action is about to persist.
	unlock := s.repo.LockPlantation(id)
	defer unlock()

	p, err := s.getActionable(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Kind != domain.KindHarvest {
		return nil, fmt.Errorf("%w: only harvest plantations are watered", domain.ErrInvalidAction)
	}
	if now.Before(p.NextWaterAt) {
		return nil, domain.ErrNotReady{Action: ActionWater, Remaining: p.NextWaterAt.Sub(now)}
	}

	var consumed []domain.MessageRef
	if !p.WaterAlert.Message.IsZero() {
		consumed = append(consumed, p.WaterAlert.Message)
	}

	// Flag and deadline are decided and persisted before the caller
	// does any Discord I/O; the next tick sees the re-armed state.
	nextWater := now.Add(WaterInterval)
	waterCount := p.WaterCount + 1
	updated, err := s.repo.PatchPlantation(ctx, id, store.PlantationPatch{
		NextWaterAt: &nextWater,
		WaterCount:  &waterCount,
		WaterAlert:  &domain.AlertState{},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist watering: %w", err)
	}

	s.events.Record(ctx, actor.ID, actor.Tag, eventlog.ActionWatered, describe(updated))
	metrics.ActionsPerformed.WithLabelValues(ActionWater).Inc()
	log.Info(LogMsgPlantationWatered, "id", id, "actor", actor.ID, "next_water_at", nextWater)

	return &ActionResult{Plantation: updated, ConsumedMessages: consumed}, nil
}

func (s *service) Harvest(ctx context.Context, id int, actor Actor, now time.Time) (*ActionResult, error) {
	log := logger.FromContext(ctx)

	unlock := s.repo.LockPlantation(id)
	defer unlock()

	p, err := s.getActionable(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Kind != domain.KindHarvest {
		return nil, fmt.Errorf("%w: only harvest plantations are harvested", domain.ErrInvalidAction)
	}
	if now.Before(p.NextHarvestAt) {
		return nil, domain.ErrNotReady{Action: ActionHarvest, Remaining: p.NextHarvestAt.Sub(now)}
	}

	harvestCount := p.HarvestCount + 1
	completed := harvestCount >= domain.MaxHarvests

	var consumed []domain.MessageRef
	if !p.HarvestAlert.Message.IsZero() {
		consumed = append(consumed, p.HarvestAlert.Message)
	}

	patch := store.PlantationPatch{
		HarvestCount: &harvestCount,
		HarvestAlert: &domain.AlertState{},
	}
	if completed {
		// Completion short-circuits outstanding water deadlines; every
		// live message is handed back for cleanup.
		done := true
		patch.Completed = &done
		if !p.WaterAlert.Message.IsZero() {
			consumed = append(consumed, p.WaterAlert.Message)
		}
		if !p.Primary.IsZero() {
			consumed = append(consumed, p.Primary)
		}
	} else {
		nextHarvest := now.Add(HarvestInterval)
		patch.NextHarvestAt = &nextHarvest
	}

	updated, err := s.repo.PatchPlantation(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to persist harvest: %w", err)
	}

	details := fmt.Sprintf("%s • %d/%d", describe(updated), harvestCount, domain.MaxHarvests)
	s.events.Record(ctx, actor.ID, actor.Tag, eventlog.ActionHarvested, details)
	metrics.ActionsPerformed.WithLabelValues(ActionHarvest).Inc()

	if completed {
		log.Info(LogMsgPlantationCompleted, "id", id, "harvest_count", harvestCount)
	} else {
		log.Info(LogMsgPlantationHarvested, "id", id, "harvest_count", harvestCount)
	}

	return &ActionResult{Plantation: updated, Completed: completed, ConsumedMessages: consumed}, nil
}

func (s *service) Cultivate(ctx context.Context, id int, actor Actor, now time.Time) (*ActionResult, error) {
	log := logger.FromContext(ctx)

	unlock := s.repo.LockPlantation(id)
	defer unlock()

	p, err := s.getActionable(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Kind != domain.KindDuplicate {
		return nil, fmt.Errorf("%w: only duplication plantations are cultivated", domain.ErrInvalidAction)
	}
	if now.Before(p.ReadyAt) {
		return nil, domain.ErrNotReady{Action: ActionCultivate, Remaining: p.ReadyAt.Sub(now)}
	}

	var consumed []domain.MessageRef
	if !p.ReadyAlert.Message.IsZero() {
		consumed = append(consumed, p.ReadyAlert.Message)
	}
	if !p.Primary.IsZero() {
		consumed = append(consumed, p.Primary)
	}

	done := true
	updated, err := s.repo.PatchPlantation(ctx, id, store.PlantationPatch{
		Completed:  &done,
		ReadyAlert: &domain.AlertState{},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist cultivation: %w", err)
	}

	s.events.Record(ctx, actor.ID, actor.Tag, eventlog.ActionCultivated, describe(updated))
	metrics.ActionsPerformed.WithLabelValues(ActionCultivate).Inc()
	log.Info(LogMsgPlantationCultivated, "id", id, "actor", actor.ID)

	return &ActionResult{Plantation: updated, Completed: true, ConsumedMessages: consumed}, nil
}

func (s *service) Delete(ctx context.Context, id int, actor Actor, admin bool) (*ActionResult, error) {
	log := logger.FromContext(ctx)

	if !admin {
		return nil, domain.ErrForbidden
	}

	// Held until the record is gone, so a tick suspended in an embed
	// repost patches nothing and every live message lands in consumed.
	unlock := s.repo.LockPlantation(id)
	defer unlock()

	p, err := s.repo.GetPlantation(ctx, id)
	if err != nil {
		return nil, err
	}

	var consumed []domain.MessageRef
	for _, ref := range []domain.MessageRef{p.Primary, p.WaterAlert.Message, p.HarvestAlert.Message, p.ReadyAlert.Message} {
		if !ref.IsZero() {
			consumed = append(consumed, ref)
		}
	}

	removed, err := s.repo.DeletePlantation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete plantation: %w", err)
	}
	if !removed {
		return nil, domain.ErrPlantationNotFound
	}

	s.events.Record(ctx, actor.ID, actor.Tag, eventlog.ActionDeleted, describe(p))
	metrics.ActionsPerformed.WithLabelValues(ActionDelete).Inc()
	log.Info(LogMsgPlantationDeleted, "id", id, "actor", actor.ID)

	return &ActionResult{Plantation: p, Completed: true, ConsumedMessages: consumed}, nil
}

func (s *service) SetPrimary(ctx context.Context, id int, ref domain.MessageRef) error {
	if _, err := s.repo.PatchPlantation(ctx, id, store.PlantationPatch{Primary: &ref}); err != nil {
		return fmt.Errorf("failed to set status embed: %w", err)
	}
	return nil
}

func describe(p domain.Plantation) string {
	if p.Description != "" {
		return fmt.Sprintf("#%d • %s", p.ID, p.Description)
	}
	return fmt.Sprintf("#%d", p.ID)
}

// IsUserError reports whether err should be shown to the user as-is
// rather than logged as an internal failure.
func IsUserError(err error) bool {
	return errors.Is(err, domain.ErrNotReady{}) ||
		errors.Is(err, domain.ErrAlreadyCompleted) ||
		errors.Is(err, domain.ErrPlantationNotFound) ||
		errors.Is(err, domain.ErrForbidden) ||
		errors.Is(err, domain.ErrInvalidAction)
}
