package discord

import (
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/Nicolasvals/discord-bot-plantaciones/internal/plantation"
)

// DeleteCommand returns the admin plantation removal command and handler
func DeleteCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	adminPerm := int64(discordgo.PermissionManageServer)

	cmd := &discordgo.ApplicationCommand{
		Name:                     "borrarplantacion",
		Description:              "Borra una plantación y sus mensajes (solo administradores)",
		DefaultMemberPermissions: &adminPerm,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "id",
				Description: "Número de la plantación",
				Required:    true,
			},
		},
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot) {
		ctx := interactionContext()
		user := getInteractionUser(i)

		options := getOptions(i)
		if len(options) == 0 {
			respondEphemeral(s, i, MsgGenericError)
			return
		}
		id := int(options[0].IntValue())

		actor := plantation.Actor{ID: user.ID, Tag: user.Username}
		result, err := b.Plantations.Delete(ctx, id, actor, isAdmin(i))
		if err != nil {
			if !plantation.IsUserError(err) {
				slog.Error("Failed to delete plantation", "error", err, "id", id)
			}
			respondFriendlyError(s, i, err)
			return
		}

		b.Notifier.CleanupMessages(ctx, result.ConsumedMessages)
		respondEphemeral(s, i, fmt.Sprintf("🗑️ **Plantación #%d** borrada.", id))
	}

	return cmd, handler
}
