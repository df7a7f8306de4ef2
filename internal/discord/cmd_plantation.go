package discord

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/Nicolasvals/discord-bot-plantaciones/internal/domain"
	"github.com/Nicolasvals/discord-bot-plantaciones/internal/plantation"
)

// PlantationCommand returns the plantation creation command and handler
func PlantationCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:        "plantacion",
		Description: "Crea una plantación y empieza a seguir sus tiempos",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "tipo",
				Description: "Tipo de plantación",
				Required:    true,
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "Cosecha", Value: string(domain.KindHarvest)},
					{Name: "Duplicación", Value: string(domain.KindDuplicate)},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "descripcion",
				Description: "Descripción corta",
				Required:    false,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "imagen",
				Description: "URL de la imagen",
				Required:    false,
			},
			{
				Type:        discordgo.ApplicationCommandOptionChannel,
				Name:        "canal_avisos",
				Description: "Canal para los avisos (por defecto, este canal)",
				Required:    false,
			},
		},
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot) {
		ctx := interactionContext()
		user := getInteractionUser(i)

		params := plantation.CreateParams{
			OwnerID:        user.ID,
			EmbedChannelID: i.ChannelID,
		}
		for _, opt := range getOptions(i) {
			switch opt.Name {
			case "tipo":
				params.Kind = domain.PlantationKind(opt.StringValue())
			case "descripcion":
				params.Description = opt.StringValue()
			case "imagen":
				params.ImageURL = opt.StringValue()
			case "canal_avisos":
				params.NotifyChannelID = opt.ChannelValue(nil).ID
			}
		}

		created, err := b.Plantations.Create(ctx, params, time.Now())
		if err != nil {
			slog.Error("Failed to create plantation", "error", err, "user", user.ID)
			respondFriendlyError(s, i, err)
			return
		}

		// The status embed goes up right away; if either step fails the
		// reconciliation loop posts it on the next tick.
		ref, err := b.Messenger.PostPlantation(ctx, created)
		if err == nil {
			if err := b.Plantations.SetPrimary(ctx, created.ID, ref); err != nil {
				slog.Error("Failed to record status embed", "error", err, "id", created.ID)
			}
		} else {
			slog.Warn("Failed to post status embed", "error", err, "id", created.ID)
		}

		respondEphemeral(s, i, formatCreated(created))
	}

	return cmd, handler
}

func formatCreated(p domain.Plantation) string {
	if p.Kind == domain.KindDuplicate {
		return fmt.Sprintf("🌿 **Plantación #%d** creada. Lista para cultivar %s.", p.ID, deadlineLabel(p.ReadyAt))
	}
	return fmt.Sprintf("🌱 **Plantación #%d** creada. Primer riego %s.", p.ID, deadlineLabel(p.NextWaterAt))
}
