package discord

import (
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/Nicolasvals/discord-bot-plantaciones/internal/domain"
)

// RegistroCommand returns the admin activity log command and handler
func RegistroCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	adminPerm := int64(discordgo.PermissionManageServer)

	cmd := &discordgo.ApplicationCommand{
		Name:                     "registro",
		Description:              "Muestra el registro de actividad (solo administradores)",
		DefaultMemberPermissions: &adminPerm,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "usuario",
				Description: "Filtrar por usuario",
				Required:    false,
			},
		},
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot) {
		ctx := interactionContext()

		if !isAdmin(i) {
			respondEphemeral(s, i, MsgForbidden)
			return
		}

		userID := ""
		for _, opt := range getOptions(i) {
			if opt.Name == "usuario" {
				userID = opt.UserValue(nil).ID
			}
		}

		entries, err := b.Events.List(ctx, userID)
		if err != nil {
			slog.Error("Failed to list activity log", "error", err)
			respondEphemeral(s, i, MsgGenericError)
			return
		}
		if len(entries) == 0 {
			respondEphemeral(s, i, MsgEmptyLog)
			return
		}

		components := []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						CustomID: domain.ButtonClearLog,
						Label:    "Limpiar registro",
						Style:    discordgo.DangerButton,
					},
				},
			},
		}
		respondEmbedEphemeral(s, i, buildLogEmbed(entries), components)
	}

	return cmd, handler
}
