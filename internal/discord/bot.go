package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"

	"github.com/Nicolasvals/discord-bot-plantaciones/internal/eventlog"
	"github.com/Nicolasvals/discord-bot-plantaciones/internal/logger"
	"github.com/Nicolasvals/discord-bot-plantaciones/internal/notify"
	"github.com/Nicolasvals/discord-bot-plantaciones/internal/plantation"
	"github.com/Nicolasvals/discord-bot-plantaciones/internal/task"
)

// Bot represents the Discord bot
type Bot struct {
	Session  *discordgo.Session
	AppID    string
	GuildID  string
	Registry *CommandRegistry

	Messenger   *Messenger
	Notifier    *notify.Notifier
	Plantations plantation.Service
	Tasks       task.Service
	Events      eventlog.Service
}

// Config holds the bot configuration
type Config struct {
	Token         string
	AppID         string
	GuildID       string
	AlertRoleName string
}

// Deps are the wired services the command handlers call into.
type Deps struct {
	Plantations plantation.Service
	Tasks       task.Service
	Events      eventlog.Service
}

// New creates a new Discord bot
func New(cfg Config, deps Deps) (*Bot, error) {
	s, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	messenger := NewMessenger(s, cfg.GuildID, cfg.AlertRoleName)

	b := &Bot{
		Session:     s,
		AppID:       cfg.AppID,
		GuildID:     cfg.GuildID,
		Registry:    NewCommandRegistry(),
		Messenger:   messenger,
		Notifier:    notify.NewNotifier(messenger),
		Plantations: deps.Plantations,
		Tasks:       deps.Tasks,
		Events:      deps.Events,
	}
	b.registerAll()
	return b, nil
}

// registerAll wires every slash command into the registry.
func (b *Bot) registerAll() {
	register := func(cmd *discordgo.ApplicationCommand, h CommandHandler) {
		b.Registry.Register(cmd, h)
	}
	register(PlantationCommand())
	register(ListCommand())
	register(DeleteCommand())
	register(RegistroCommand())
	register(CooldownCommand())
}

// Start starts the bot
func (b *Bot) Start() error {
	b.Session.AddHandler(b.ready)
	b.Session.AddHandler(b.interactionCreate)

	if err := b.Session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	slog.Info("Discord bot is now running. Press CTRL-C to exit.")
	return nil
}

// Stop stops the bot
func (b *Bot) Stop() {
	b.Session.Close()
}

// Run runs the bot until a signal is received
func (b *Bot) Run() error {
	if err := b.Start(); err != nil {
		return err
	}
	defer b.Stop()

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	return nil
}

// CheckHealth reports readiness of the gateway connection.
func (b *Bot) CheckHealth(ctx context.Context) error {
	if b.Session == nil || !b.Session.DataReady {
		return errors.New("gateway not connected")
	}
	return nil
}

func (b *Bot) ready(s *discordgo.Session, r *discordgo.Ready) {
	slog.Info("Bot is ready", "user", s.State.User.Username)
}

func (b *Bot) interactionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.Registry.Handle(s, i, b)
	case discordgo.InteractionMessageComponent:
		b.handleComponent(s, i)
	}
}

// interactionContext returns a request-scoped context for one interaction.
func interactionContext() context.Context {
	return logger.WithRequestID(context.Background(), logger.GenerateRequestID())
}
