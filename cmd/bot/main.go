package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Nicolasvals/discord-bot-plantaciones/internal/config"
	"github.com/Nicolasvals/discord-bot-plantaciones/internal/discord"
	"github.com/Nicolasvals/discord-bot-plantaciones/internal/eventlog"
	"github.com/Nicolasvals/discord-bot-plantaciones/internal/logger"
	"github.com/Nicolasvals/discord-bot-plantaciones/internal/plantation"
	"github.com/Nicolasvals/discord-bot-plantaciones/internal/reconcile"
	"github.com/Nicolasvals/discord-bot-plantaciones/internal/scheduler"
	"github.com/Nicolasvals/discord-bot-plantaciones/internal/server"
	"github.com/Nicolasvals/discord-bot-plantaciones/internal/store"
	"github.com/Nicolasvals/discord-bot-plantaciones/internal/task"
	"github.com/Nicolasvals/discord-bot-plantaciones/internal/worker"
)

const serviceName = "plantaciones-bot"

func main() {
	if err := run(); err != nil {
		slog.Error("Bot failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger.InitLogger(logger.NewConfig(
		cfg.LogLevel, cfg.LogFormat, serviceName, cfg.Version, cfg.Environment, false))

	repo, err := store.New(cfg.DataDir)
	if err != nil {
		return err
	}

	events := eventlog.NewService(repo)
	plantations := plantation.NewService(repo, events)
	tasks := task.NewService(repo, events)

	bot, err := discord.New(discord.Config{
		Token:         cfg.DiscordToken,
		AppID:         cfg.AppID,
		GuildID:       cfg.GuildID,
		AlertRoleName: cfg.AlertRoleName,
	}, discord.Deps{
		Plantations: plantations,
		Tasks:       tasks,
		Events:      events,
	})
	if err != nil {
		return err
	}

	// One worker serializes ticks; a tick that outlives the interval is
	// skipped, never queued.
	pool := worker.NewPool(1, 1)
	pool.Start()
	defer pool.Stop()

	sched := scheduler.New(pool)
	defer sched.Stop()

	job := reconcile.NewJob(repo, bot.Notifier, bot.Messenger, bot.Messenger, bot.Messenger)
	sched.Schedule(cfg.TickInterval, job)

	httpServer := server.NewServer(cfg.Port, cfg.Version, bot)
	go func() {
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server failed", "error", err)
		}
	}()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Stop(ctx); err != nil {
			slog.Error("HTTP server shutdown failed", "error", err)
		}
	}()

	forceUpdate := os.Getenv("DISCORD_FORCE_COMMAND_UPDATE") == "true"
	if err := bot.RegisterCommands(forceUpdate); err != nil {
		// The bot can still run on previously registered commands.
		slog.Error("Failed to register commands", "error", err)
	}

	return bot.Run()
}
