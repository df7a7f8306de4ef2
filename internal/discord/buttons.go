package discord

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/Nicolasvals/discord-bot-plantaciones/internal/domain"
	"github.com/Nicolasvals/discord-bot-plantaciones/internal/plantation"
)

// handleComponent routes button clicks from alert and log messages.
func (b *Bot) handleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID

	if customID == domain.ButtonClearLog {
		b.handleClearLog(s, i)
		return
	}
	if action, id, ok := domain.ParsePlantButtonID(customID); ok {
		b.handlePlantAction(s, i, action, id)
	}
}

func (b *Bot) handleClearLog(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := interactionContext()

	if !isAdmin(i) {
		respondEphemeral(s, i, MsgForbidden)
		return
	}
	if err := b.Events.Clear(ctx); err != nil {
		slog.Error("Failed to clear activity log", "error", err)
		respondEphemeral(s, i, MsgGenericError)
		return
	}
	respondEphemeral(s, i, MsgLogCleared)
}

func (b *Bot) handlePlantAction(s *discordgo.Session, i *discordgo.InteractionCreate, action string, id int) {
	ctx := interactionContext()
	user := getInteractionUser(i)
	actor := plantation.Actor{ID: user.ID, Tag: user.Username}
	now := time.Now()

	var result *plantation.ActionResult
	var err error
	switch action {
	case domain.ButtonActionWater:
		result, err = b.Plantations.Water(ctx, id, actor, now)
	case domain.ButtonActionHarvest:
		result, err = b.Plantations.Harvest(ctx, id, actor, now)
	case domain.ButtonActionCultivate:
		result, err = b.Plantations.Cultivate(ctx, id, actor, now)
	default:
		return
	}
	if err != nil {
		if !plantation.IsUserError(err) {
			slog.Error("Plantation action failed", "error", err, "action", action, "id", id)
		}
		respondFriendlyError(s, i, err)
		return
	}

	// State is already persisted; message cleanup and the embed refresh
	// are cosmetic and best-effort.
	b.Notifier.CleanupMessages(ctx, result.ConsumedMessages)
	if !result.Completed {
		if err := b.Messenger.RefreshPlantation(ctx, result.Plantation); err != nil {
			slog.Warn("Failed to refresh status embed", "error", err, "id", id)
		}
	}

	respondEphemeral(s, i, confirmAction(action, result))
}

func confirmAction(action string, result *plantation.ActionResult) string {
	p := result.Plantation
	switch action {
	case domain.ButtonActionWater:
		return fmt.Sprintf("💧 **Plantación #%d** regada. Próximo riego %s.", p.ID, deadlineLabel(p.NextWaterAt))
	case domain.ButtonActionHarvest:
		if result.Completed {
			return fmt.Sprintf("🌾 **Plantación #%d** cosechada por última vez (%d/%d). ¡Completada!",
				p.ID, p.HarvestCount, domain.MaxHarvests)
		}
		return fmt.Sprintf("🌾 **Plantación #%d** cosechada (%d/%d). Próxima cosecha %s.",
			p.ID, p.HarvestCount, domain.MaxHarvests, deadlineLabel(p.NextHarvestAt))
	default:
		return fmt.Sprintf("🌿 **Plantación #%d** cultivada. ¡Semilla duplicada!", p.ID)
	}
}
