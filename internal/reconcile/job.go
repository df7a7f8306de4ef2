package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/Nicolasvals/discord-bot-plantaciones/internal/domain"
	"github.com/Nicolasvals/discord-bot-plantaciones/internal/logger"
	"github.com/Nicolasvals/discord-bot-plantaciones/internal/metrics"
	"github.com/Nicolasvals/discord-bot-plantaciones/internal/notify"
	"github.com/Nicolasvals/discord-bot-plantaciones/internal/plantation"
	"github.com/Nicolasvals/discord-bot-plantaciones/internal/store"
)

// Log messages
const (
	LogMsgTickFailed       = "Reconciliation step failed"
	LogMsgPrimaryRecreated = "Primary embed recreated"
	LogMsgCooldownNotified = "Cooldown notification sent"
)

// Alert message templates, "<mention> <emoji> Plantación #N lista para <verbo>."
const (
	alertFmtWater    = "%s 🌱 **Plantación #%d** lista para **regar**."
	alertFmtHarvest  = "%s 🌾 **Plantación #%d** lista para **cosechar**."
	alertFmtReady    = "%s 🌿 **Plantación #%d** lista para **cultivar**."
	alertFmtCooldown = "⏰ Tu **%s** está disponible de nuevo. ¡A por ello!"
)

// Presenter posts and refreshes a plantation's status embed.
// Implemented by the Discord layer; the loop stays platform-agnostic.
type Presenter interface {
	PostPlantation(ctx context.Context, p domain.Plantation) (domain.MessageRef, error)
	RefreshPlantation(ctx context.Context, p domain.Plantation) error
}

// Mentioner resolves the configured alert role into a mention token,
// falling back to a plain @here.
type Mentioner interface {
	Mention(ctx context.Context) string
}

// Job is one reconciliation tick over every active entity. It implements
// worker.Job and is scheduled at a fixed interval; a single pool worker
// serializes ticks.
type Job struct {
	repo      *store.Store
	notifier  *notify.Notifier
	messenger notify.Messenger
	presenter Presenter
	mentioner Mentioner
	now       func() time.Time
}

// NewJob creates the reconciliation job.
func NewJob(repo *store.Store, notifier *notify.Notifier, messenger notify.Messenger, presenter Presenter, mentioner Mentioner) *Job {
	return &Job{
		repo:      repo,
		notifier:  notifier,
		messenger: messenger,
		presenter: presenter,
		mentioner: mentioner,
		now:       time.Now,
	}
}

// WithClock overrides the tick clock, for tests.
func (j *Job) WithClock(now func() time.Time) *Job {
	j.now = now
	return j
}

// Process runs one tick. Boundary failures are logged and swallowed;
// the next tick is the retry mechanism.
func (j *Job) Process(ctx context.Context) error {
	start := time.Now()
	defer func() {
		metrics.TickDuration.Observe(time.Since(start).Seconds())
		metrics.ReconcileTicks.Inc()
	}()

	now := j.now()
	j.reconcilePlantations(ctx, now)
	j.reconcileTasks(ctx, now)
	return nil
}

func (j *Job) reconcilePlantations(ctx context.Context, now time.Time) {
	log := logger.FromContext(ctx)

	active, err := j.repo.ListPlantations(ctx, true)
	if err != nil {
		log.Error(LogMsgTickFailed, "step", "list_plantations", "error", err)
		return
	}

	for _, stale := range active {
		j.reconcilePlantation(ctx, stale.ID, now)
	}
}

// reconcilePlantation holds the entity's span lock for the whole
// probe-decide-patch sequence. Interaction handlers take the same lock,
// so an action cannot re-arm a phase between this tick's liveness
// decision and its alert patch, and a delete cannot race the embed
// repost.
func (j *Job) reconcilePlantation(ctx context.Context, id int, now time.Time) {
	unlock := j.repo.LockPlantation(id)
	defer unlock()

	// Re-fetch under the lock: an action handler may have mutated the
	// record since the scan snapshot was taken.
	p, err := j.repo.GetPlantation(ctx, id)
	if err != nil || p.Completed {
		return
	}

	p = j.ensurePrimary(ctx, p)

	for _, phase := range plantation.Evaluate(p, now) {
		j.ensurePhaseAlert(ctx, p, phase)
		// Re-read so a second phase in the same tick sees the
		// just-persisted alert state.
		if refreshed, err := j.repo.GetPlantation(ctx, p.ID); err == nil {
			p = refreshed
		}
	}
}

// ensurePrimary recreates the status embed if it was deleted externally.
// Gated by a liveness probe, so repeating it every tick is idempotent.
func (j *Job) ensurePrimary(ctx context.Context, p domain.Plantation) domain.Plantation {
	log := logger.FromContext(ctx)

	if !p.Primary.IsZero() {
		live, err := j.notifier.MessageLive(ctx, p.Primary)
		if err != nil {
			// Unknown liveness: recreating could duplicate the embed.
			return p
		}
		if live {
			return p
		}
	}

	ref, err := j.presenter.PostPlantation(ctx, p)
	if err != nil {
		log.Warn(LogMsgTickFailed, "step", "post_primary", "id", p.ID, "error", err)
		return p
	}

	updated, err := j.repo.PatchPlantation(ctx, p.ID, store.PlantationPatch{Primary: &ref})
	if err != nil {
		log.Error(LogMsgTickFailed, "step", "patch_primary", "id", p.ID, "error", err)
		return p
	}

	metrics.EmbedsRecreated.Inc()
	log.Info(LogMsgPrimaryRecreated, "id", p.ID, "message_id", ref.MessageID)
	return updated
}

func (j *Job) ensurePhaseAlert(ctx context.Context, p domain.Plantation, phase domain.Phase) {
	log := logger.FromContext(ctx)

	alert, changed, err := j.notifier.EnsureNotified(ctx, p.NotifyChannel(), phase, p.Alert(phase), func() notify.Message {
		return j.renderAlert(ctx, p, phase)
	})
	if err != nil || !changed {
		return
	}

	patch := store.PlantationPatch{}
	switch phase {
	case domain.PhaseWater:
		patch.WaterAlert = &alert
	case domain.PhaseHarvest:
		patch.HarvestAlert = &alert
	case domain.PhaseReady:
		patch.ReadyAlert = &alert
	}
	if _, err := j.repo.PatchPlantation(ctx, p.ID, patch); err != nil {
		log.Error(LogMsgTickFailed, "step", "patch_alert", "id", p.ID, "phase", phase, "error", err)
		return
	}

	// Show "Disponible" on the status embed now that the phase is due.
	if err := j.presenter.RefreshPlantation(ctx, p); err != nil {
		log.Warn(LogMsgTickFailed, "step", "refresh_embed", "id", p.ID, "error", err)
	}
}

func (j *Job) renderAlert(ctx context.Context, p domain.Plantation, phase domain.Phase) notify.Message {
	mention := j.mentioner.Mention(ctx)

	switch phase {
	case domain.PhaseWater:
		return notify.Message{
			Content: fmt.Sprintf(alertFmtWater, mention, p.ID),
			Buttons: []notify.Button{{
				CustomID: domain.PlantButtonID(domain.ButtonActionWater, p.ID),
				Label:    "Regar",
				Style:    notify.ButtonPrimary,
			}},
		}
	case domain.PhaseHarvest:
		return notify.Message{
			Content: fmt.Sprintf(alertFmtHarvest, mention, p.ID),
			Buttons: []notify.Button{{
				CustomID: domain.PlantButtonID(domain.ButtonActionHarvest, p.ID),
				Label:    "Cosechar",
				Style:    notify.ButtonSuccess,
			}},
		}
	default:
		return notify.Message{
			Content: fmt.Sprintf(alertFmtReady, mention, p.ID),
			Buttons: []notify.Button{{
				CustomID: domain.PlantButtonID(domain.ButtonActionCultivate, p.ID),
				Label:    "Cultivar",
				Style:    notify.ButtonSuccess,
			}},
		}
	}
}

func (j *Job) reconcileTasks(ctx context.Context, now time.Time) {
	log := logger.FromContext(ctx)

	active, err := j.repo.ListTasks(ctx, true)
	if err != nil {
		log.Error(LogMsgTickFailed, "step", "list_tasks", "error", err)
		return
	}

	for _, stale := range active {
		t, err := j.repo.GetTask(ctx, stale.ID)
		if err != nil || t.Completed {
			continue
		}
		if now.Before(t.ReadyAt) || t.Notified() {
			continue
		}

		// DM notifications have no persistent message to probe; the
		// NotifiedForReadyAt comparison is the whole gate.
		_, err = j.messenger.Send(ctx, t.DMChannelID, notify.Message{
			Content: fmt.Sprintf(alertFmtCooldown, t.Kind),
		})
		if err != nil {
			log.Warn(LogMsgTickFailed, "step", "send_dm", "task_id", t.ID, "error", err)
			continue
		}

		notified := t.ReadyAt
		done := true
		if _, err := j.repo.PatchTask(ctx, t.ID, store.TaskPatch{
			NotifiedForReadyAt: &notified,
			Completed:          &done,
		}); err != nil {
			log.Error(LogMsgTickFailed, "step", "patch_task", "task_id", t.ID, "error", err)
			continue
		}

		metrics.AlertsSent.WithLabelValues(string(domain.PhaseCooldown)).Inc()
		log.Info(LogMsgCooldownNotified, "task_id", t.ID, "owner", t.OwnerID, "kind", t.Kind)
	}
}
