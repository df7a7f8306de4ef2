package discord

import (
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

// ListCommand returns the active-plantations overview command and handler
func ListCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:        "plantaciones",
		Description: "Muestra todas las plantaciones activas",
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot) {
		ctx := interactionContext()

		plantations, err := b.Plantations.List(ctx)
		if err != nil {
			slog.Error("Failed to list plantations", "error", err)
			respondEphemeral(s, i, MsgGenericError)
			return
		}
		if len(plantations) == 0 {
			respondEphemeral(s, i, MsgNoPlantations)
			return
		}

		respondEmbedEphemeral(s, i, buildListEmbed(plantations), nil)
	}

	return cmd, handler
}
