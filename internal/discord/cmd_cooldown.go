package discord

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/Nicolasvals/discord-bot-plantaciones/internal/domain"
)

// kindChoices builds the tipo option choices from the task taxonomy.
func kindChoices() []*discordgo.ApplicationCommandOptionChoice {
	labels := map[domain.TaskKind]string{
		domain.TaskTrabajo: "Trabajo",
		domain.TaskRobo:    "Robo",
		domain.TaskCrimen:  "Crimen",
		domain.TaskAtraco:  "Atraco",
	}
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(domain.TaskKinds))
	for _, kind := range domain.TaskKinds {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  labels[kind],
			Value: string(kind),
		})
	}
	return choices
}

// CooldownCommand returns the cooldown tracking command and handler
func CooldownCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:        "cooldown",
		Description: "Sigue tus cooldowns de trabajo, robo, crimen y atraco",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "iniciar",
				Description: "Inicia (o reinicia) un cooldown y avisa por MD cuando termine",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "tipo",
						Description: "Qué acabas de hacer",
						Required:    true,
						Choices:     kindChoices(),
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "reclamar",
				Description: "Descarta un cooldown activo sin esperar el aviso",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "tipo",
						Description: "Cooldown a descartar",
						Required:    true,
						Choices:     kindChoices(),
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "estado",
				Description: "Muestra tus cooldowns activos",
			},
		},
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot) {
		options := getOptions(i)
		if len(options) == 0 {
			respondEphemeral(s, i, MsgGenericError)
			return
		}

		switch options[0].Name {
		case "iniciar":
			handleCooldownStart(s, i, b, options[0].Options)
		case "reclamar":
			handleCooldownClaim(s, i, b, options[0].Options)
		case "estado":
			handleCooldownStatus(s, i, b)
		}
	}

	return cmd, handler
}

func handleCooldownStart(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := interactionContext()
	user := getInteractionUser(i)

	kind := domain.TaskKind("")
	for _, opt := range options {
		if opt.Name == "tipo" {
			kind = domain.TaskKind(opt.StringValue())
		}
	}

	// The DM channel is resolved up front so the completion notice has a
	// place to go even if the user later leaves the guild channel.
	dmChannelID, err := b.Messenger.UserDMChannel(ctx, user.ID)
	if err != nil {
		slog.Error("Failed to open DM channel", "error", err, "user", user.ID)
		respondEphemeral(s, i, MsgGenericError)
		return
	}

	started, err := b.Tasks.Start(ctx, user.ID, user.Username, kind, dmChannelID, time.Now())
	if err != nil {
		slog.Error("Failed to start cooldown", "error", err, "user", user.ID, "kind", kind)
		respondFriendlyError(s, i, err)
		return
	}

	respondEphemeral(s, i, fmt.Sprintf("⏱️ Cooldown de **%s** iniciado. Te aviso por MD %s.",
		started.Kind, deadlineLabel(started.ReadyAt)))
}

func handleCooldownClaim(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := interactionContext()
	user := getInteractionUser(i)

	kind := domain.TaskKind("")
	for _, opt := range options {
		if opt.Name == "tipo" {
			kind = domain.TaskKind(opt.StringValue())
		}
	}

	if _, err := b.Tasks.Claim(ctx, user.ID, user.Username, kind); err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			respondEphemeral(s, i, fmt.Sprintf("No tienes un cooldown de **%s** activo.", kind))
			return
		}
		slog.Error("Failed to claim cooldown", "error", err, "user", user.ID, "kind", kind)
		respondEphemeral(s, i, MsgGenericError)
		return
	}

	respondEphemeral(s, i, fmt.Sprintf("✅ Cooldown de **%s** descartado.", kind))
}

func handleCooldownStatus(s *discordgo.Session, i *discordgo.InteractionCreate, b *Bot) {
	ctx := interactionContext()
	user := getInteractionUser(i)

	tasks, err := b.Tasks.Status(ctx, user.ID)
	if err != nil {
		slog.Error("Failed to fetch cooldowns", "error", err, "user", user.ID)
		respondEphemeral(s, i, MsgGenericError)
		return
	}
	if len(tasks) == 0 {
		respondEphemeral(s, i, "No tienes cooldowns activos.")
		return
	}

	lines := make([]string, 0, len(tasks))
	for _, t := range tasks {
		lines = append(lines, fmt.Sprintf("**%s** — listo %s", t.Kind, deadlineLabel(t.ReadyAt)))
	}
	respondEphemeral(s, i, strings.Join(lines, "\n"))
}
